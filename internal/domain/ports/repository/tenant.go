package repository

import (
	"context"

	"driving-school-platform/internal/domain/model"
)

// TenantRepository is the port for tenant persistence.
type TenantRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Tenant) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Tenant, error)
	FindByOwner(ctx context.Context, tx Tx, ownerID string) (*model.Tenant, error)
	// ListIDs returns every tenant id; maintenance jobs iterate it and
	// open their own per-tenant transactions.
	ListIDs(ctx context.Context, tx Tx) ([]string, error)
	CountByPlan(ctx context.Context, tx Tx) (map[model.Plan]int, error)
}
