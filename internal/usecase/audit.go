package usecase

import (
	"time"

	"github.com/google/uuid"

	"driving-school-platform/internal/domain/model"
)

func newAudit(actor model.Principal, action, targetType, targetID string, before, after map[string]any) *model.AuditRecord {
	return &model.AuditRecord{
		ID:         uuid.NewString(),
		Actor:      actor.Identity(),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Before:     before,
		After:      after,
		CreatedAt:  time.Now(),
	}
}

func tenantSnapshot(t *model.Tenant) map[string]any {
	return map[string]any{
		"current_plan":     string(t.CurrentPlan),
		"plan_start_date":  t.PlanStartDate,
		"plan_end_date":    t.PlanEndDate,
		"max_accounts":     t.MaxAccounts,
		"renewal_count":    t.RenewalCount,
		"current_accounts": t.CurrentAccounts,
		"approval_status":  string(t.ApprovalStatus),
	}
}

func requestSnapshot(r *model.UpgradeRequest) map[string]any {
	return map[string]any{
		"status":         string(r.Status),
		"current_plan":   string(r.CurrentPlan),
		"requested_plan": string(r.RequestedPlan),
		"payment_method": string(r.PaymentMethod),
		"amount":         r.Amount.String(),
		"is_renewal":     r.IsRenewal,
	}
}
