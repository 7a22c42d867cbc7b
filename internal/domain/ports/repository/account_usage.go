package repository

import "context"

// AccountUsageSource exposes read-only account counts owned by the CRUD
// subsystems outside this core.
type AccountUsageSource interface {
	Counts(ctx context.Context, tx Tx, tenantID string) (instructors, students int, err error)
}
