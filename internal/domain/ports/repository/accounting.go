package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"driving-school-platform/internal/domain/model"
)

// AccountingRepository is the port for the append-only ledger.
type AccountingRepository interface {
	Save(ctx context.Context, tx Tx, e *model.AccountingEntry) error
	ListByTenant(ctx context.Context, tx Tx, tenantID string) ([]*model.AccountingEntry, error)
	SumByCategory(ctx context.Context, tx Tx, tenantID, category string) (decimal.Decimal, error)
}
