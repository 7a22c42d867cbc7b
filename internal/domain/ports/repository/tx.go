package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// Its concrete type is infra-defined (pgx.Tx for Postgres); repositories
// must accept nil and fall back to their non-transactional path.
type Tx interface{}

// NoTX marks a deliberately non-transactional repository call.
var NoTX Tx

// TransactionManager runs a function inside a database transaction,
// handing the tx handle to repositories through the Tx argument. It keeps
// transaction types out of the use-case interfaces while still letting
// check-then-act sequences execute on one serializing boundary.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}

// TenantLocker serializes concurrent work on one tenant. Implementations
// take a per-tenant advisory lock bound to the surrounding transaction.
type TenantLocker interface {
	LockTenant(ctx context.Context, tx Tx, tenantID string) error
}
