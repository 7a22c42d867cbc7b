package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/repository"
)

// cascadeCancelPending transitions every pending request for the tenant
// (except excludeID) to cancelled. Shared by approve and the direct admin
// plan set; it both enforces and repairs the single-pending invariant.
func cascadeCancelPending(ctx context.Context, tx repository.Tx, requests repository.UpgradeRequestRepository, log *zerolog.Logger, tenantID, excludeID, reason string) error {
	pending, err := requests.ListPendingByTenant(ctx, tx, tenantID)
	if err != nil {
		return err
	}
	cancelled := 0
	for _, other := range pending {
		if other.ID == excludeID {
			continue
		}
		cancelRequest(other, reason, model.SystemPrincipal("workflow"))
		if err := requests.Save(ctx, tx, other); err != nil {
			return err
		}
		cancelled++
	}
	if cancelled > 0 {
		log.Info().
			Str("tenant_id", tenantID).
			Int("cancelled", cancelled).
			Msg("cascading cancellation of superseded requests")
	}
	return nil
}
