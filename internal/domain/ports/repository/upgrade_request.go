package repository

import (
	"context"

	"driving-school-platform/internal/domain/model"
)

// UpgradeRequestRepository is the port for upgrade-request persistence.
type UpgradeRequestRepository interface {
	Save(ctx context.Context, tx Tx, r *model.UpgradeRequest) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.UpgradeRequest, error)
	// ListPendingByTenant returns every pending request for the tenant.
	// The invariant allows at most one, but cascading cancellation must
	// still see duplicates left behind by a prior bug or race.
	ListPendingByTenant(ctx context.Context, tx Tx, tenantID string) ([]*model.UpgradeRequest, error)
	ListByTenant(ctx context.Context, tx Tx, tenantID string) ([]*model.UpgradeRequest, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.RequestStatus]int, error)
}
