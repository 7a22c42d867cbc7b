package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"driving-school-platform/internal/domain"
	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/adapter"
	"driving-school-platform/internal/domain/ports/repository"
	"driving-school-platform/internal/infra/logging"
	"driving-school-platform/internal/infra/metrics"
)

// Compile-time check
var _ UpgradeUseCase = (*upgradeUC)(nil)

// ProofInput carries an uploaded bank-transfer proof alongside a submit.
type ProofInput struct {
	FileRef           string
	TransferReference string
	TransferDate      *time.Time
}

// SubmitInput is the tenant-facing submit payload. The amount is never
// taken from the caller; it is derived from the catalog and the coupon.
type SubmitInput struct {
	TenantID      string
	RequestedPlan model.Plan
	PaymentMethod model.PaymentMethod
	IsRenewal     bool
	CouponCode    string
	Proof         *ProofInput
}

// UpgradeUseCase implements the request/approval workflow shared by the
// manual admin path and the automated gateway path.
type UpgradeUseCase interface {
	Submit(ctx context.Context, in SubmitInput) (*model.UpgradeRequest, error)
	Approve(ctx context.Context, requestID string, actor model.Principal, notes string) (*model.UpgradeRequest, error)
	Reject(ctx context.Context, requestID string, actor model.Principal, reason string) (*model.UpgradeRequest, error)
	Cancel(ctx context.Context, requestID string, actor model.Principal, reason string) (*model.UpgradeRequest, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*model.UpgradeRequest, error)
}

type upgradeUC struct {
	tenants    repository.TenantRepository
	requests   repository.UpgradeRequestRepository
	proofs     repository.PaymentProofRepository
	accounting repository.AccountingRepository
	coupons    repository.CouponRepository
	audit      repository.AuditLogRepository
	notifier   adapter.Notifier
	tm         repository.TransactionManager
	locker     repository.TenantLocker
	log        *zerolog.Logger
}

func NewUpgradeUseCase(
	tenants repository.TenantRepository,
	requests repository.UpgradeRequestRepository,
	proofs repository.PaymentProofRepository,
	accounting repository.AccountingRepository,
	coupons repository.CouponRepository,
	audit repository.AuditLogRepository,
	notifier adapter.Notifier,
	tm repository.TransactionManager,
	locker repository.TenantLocker,
	logger *zerolog.Logger,
) *upgradeUC {
	return &upgradeUC{
		tenants:    tenants,
		requests:   requests,
		proofs:     proofs,
		accounting: accounting,
		coupons:    coupons,
		audit:      audit,
		notifier:   notifier,
		tm:         tm,
		locker:     locker,
		log:        logger,
	}
}

var serializableTx = pgx.TxOptions{IsoLevel: pgx.Serializable}

// Submit validates against the tenant's plan state and the catalog, then
// persists a pending request. The whole check-then-insert runs under the
// per-tenant lock so two racing submits cannot both pass the
// single-pending check.
func (u *upgradeUC) Submit(ctx context.Context, in SubmitInput) (*model.UpgradeRequest, error) {
	defer logging.TraceDuration(u.log, "UpgradeUC.Submit")()

	if !in.RequestedPlan.Valid() || !in.PaymentMethod.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	ctx = logging.WithTenantID(ctx, in.TenantID)

	var req *model.UpgradeRequest
	err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		if err := u.locker.LockTenant(ctx, tx, in.TenantID); err != nil {
			return err
		}
		tenant, err := u.tenants.FindByID(ctx, tx, in.TenantID)
		if err != nil {
			return err
		}
		if tenant.ApprovalStatus == model.ApprovalStatusSuspended {
			return domain.ErrTenantSuspended
		}

		pending, err := u.requests.ListPendingByTenant(ctx, tx, tenant.ID)
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			return domain.ErrDuplicateRequest
		}

		now := time.Now()
		if in.IsRenewal {
			if in.RequestedPlan != tenant.CurrentPlan {
				return domain.ErrPlanMismatch
			}
			if !tenant.CanRenew(now) {
				return domain.ErrRenewalWindowClosed
			}
		} else {
			if model.PlanRank(in.RequestedPlan) <= model.PlanRank(tenant.CurrentPlan) {
				return domain.ErrNotAnUpgrade
			}
			// No-op while every higher tier also has a higher cap.
			if tenant.CurrentAccounts > model.PlanMaxAccounts(in.RequestedPlan, 0) {
				return domain.ErrCapacityExceeded
			}
		}

		amount := model.PlanPrice(in.RequestedPlan)
		notes := ""
		if code := strings.ToUpper(strings.TrimSpace(in.CouponCode)); code != "" {
			amount, notes, err = u.applyCoupon(ctx, tx, code, amount)
			if err != nil {
				return err
			}
		}

		req, err = model.NewUpgradeRequest(
			uuid.NewString(), tenant.ID,
			tenant.CurrentPlan, in.RequestedPlan,
			in.PaymentMethod, amount, in.IsRenewal,
		)
		if err != nil {
			return err
		}
		req.AdminNotes = notes
		if err := u.requests.Save(ctx, tx, req); err != nil {
			return err
		}

		if in.Proof != nil {
			proof, err := model.NewPaymentProof(req.ID, in.Proof.FileRef, in.Proof.TransferReference, in.Proof.TransferDate)
			if err != nil {
				return err
			}
			if err := u.proofs.Save(ctx, tx, proof); err != nil {
				return err
			}
		}

		actor := model.OwnerPrincipal(tenant.OwnerID, tenant.ID)
		return u.audit.Record(ctx, tx, newAudit(actor, "submit_upgrade_request",
			"UpgradeRequest", req.ID, nil, requestSnapshot(req)))
	})
	if err != nil {
		return nil, err
	}

	metrics.IncRequestSubmitted(req.PaymentMethod, req.IsRenewal)
	u.notifier.Notify(ctx, adapter.Event{
		Type:      adapter.EventRequestSubmitted,
		TenantID:  req.TenantID,
		RequestID: req.ID,
		Payload: map[string]any{
			"requested_plan": string(req.RequestedPlan),
			"payment_method": string(req.PaymentMethod),
			"amount":         req.Amount.String(),
			"is_renewal":     req.IsRenewal,
		},
	})
	logging.With(logging.WithRequestID(ctx, req.ID), u.log).Info().
		Str("requested_plan", string(req.RequestedPlan)).
		Bool("is_renewal", req.IsRenewal).
		Msg("upgrade request submitted")
	return req, nil
}

// applyCoupon validates and consumes the coupon, returning the discounted
// amount and the note that preserves the original amount for the admin.
func (u *upgradeUC) applyCoupon(ctx context.Context, tx repository.Tx, code string, amount decimal.Decimal) (decimal.Decimal, string, error) {
	coupon, err := u.coupons.FindByCode(ctx, tx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return amount, "", domain.ErrCouponInvalid
		}
		return amount, "", err
	}
	if !coupon.CanBeUsed(time.Now()) {
		return amount, "", domain.ErrCouponInvalid
	}
	used, err := u.coupons.Consume(ctx, tx, code)
	if err != nil {
		return amount, "", err
	}
	if !used {
		return amount, "", domain.ErrCouponExhausted
	}
	discounted := coupon.Discount(amount)
	note := fmt.Sprintf("Coupon %s applied (%s%% off). Original amount: %s",
		code, coupon.DiscountPercentage.String(), amount.String())
	return discounted, note, nil
}

// Approve moves a pending request to approved and applies the plan
// mutation, the accounting entry and the cascading cancellation in the
// same transaction.
func (u *upgradeUC) Approve(ctx context.Context, requestID string, actor model.Principal, notes string) (*model.UpgradeRequest, error) {
	defer logging.TraceDuration(u.log, "UpgradeUC.Approve")()

	if !actor.IsAdmin() && !actor.IsSystem() {
		return nil, domain.ErrInvalidArgument
	}
	ctx = logging.WithRequestID(ctx, requestID)
	if actor.IsAdmin() {
		ctx = logging.WithAdminID(ctx, actor.Identity())
	}

	var req *model.UpgradeRequest
	var tenant *model.Tenant
	err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		req, err = u.requests.FindByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if err := u.locker.LockTenant(ctx, tx, req.TenantID); err != nil {
			return err
		}
		// Re-read under the lock: a racing approve may have won.
		req, err = u.requests.FindByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !req.IsPending() {
			return domain.ErrInvalidStateTransition
		}
		tenant, err = u.tenants.FindByID(ctx, tx, req.TenantID)
		if err != nil {
			return err
		}
		before := tenantSnapshot(tenant)

		now := time.Now()
		req.Status = model.RequestStatusApproved
		req.ProcessedAt = &now
		identity := actor.Identity()
		req.ProcessedBy = &identity
		if notes != "" {
			if req.AdminNotes != "" {
				req.AdminNotes += "\n"
			}
			req.AdminNotes += notes
		}
		if err := u.requests.Save(ctx, tx, req); err != nil {
			return err
		}

		applyPlanMutation(tenant, req, now)
		if err := u.tenants.Save(ctx, tx, tenant); err != nil {
			return err
		}
		if tenant.OverCapacity() {
			metrics.IncTenantOverCapacity()
			u.log.Warn().
				Str("tenant_id", tenant.ID).
				Int("current_accounts", tenant.CurrentAccounts).
				Int("max_accounts", tenant.MaxAccounts).
				Msg("tenant over capacity after plan mutation")
		}

		entry, err := model.NewSubscriptionCharge(uuid.NewString(), tenant.ID,
			req.RequestedPlan, req.Amount, req.IsRenewal, now)
		if err != nil {
			return err
		}
		if err := u.accounting.Save(ctx, tx, entry); err != nil {
			return err
		}

		if err := u.cascadeCancel(ctx, tx, tenant.ID, req.ID, "Superseded by approved request "+req.ID); err != nil {
			return err
		}

		return u.audit.Record(ctx, tx, newAudit(actor, "approve_upgrade_request",
			"UpgradeRequest", req.ID, before, tenantSnapshot(tenant)))
	})
	if err != nil {
		return nil, err
	}

	metrics.IncRequestProcessed(model.RequestStatusApproved)
	u.notifier.Notify(ctx, adapter.Event{
		Type:      adapter.EventRequestApproved,
		TenantID:  req.TenantID,
		RequestID: req.ID,
		Payload: map[string]any{
			"plan":          string(req.RequestedPlan),
			"plan_end_date": tenant.PlanEndDate,
		},
	})
	logging.With(logging.WithTenantID(ctx, req.TenantID), u.log).Info().
		Str("actor", actor.Identity()).
		Msg("upgrade request approved")
	return req, nil
}

// applyPlanMutation carries the tenant to the requested plan state.
// Renewals anchor at the later of the current expiry date and today so a
// late approval never compounds and an early one never loses days.
func applyPlanMutation(tenant *model.Tenant, req *model.UpgradeRequest, now time.Time) {
	if req.IsRenewal {
		anchor := truncateToDay(now)
		if !tenant.PlanEndDate.IsZero() {
			end := truncateToDay(tenant.PlanEndDate)
			if end.After(anchor) {
				anchor = end
			}
		}
		tenant.PlanEndDate = anchor.AddDate(0, 0, model.PlanDurationDays)
		if req.RequestedPlan == model.PlanStandard {
			tenant.RenewalCount++
			tenant.MaxAccounts = model.PlanMaxAccounts(model.PlanStandard, tenant.RenewalCount)
		}
	} else {
		tenant.CurrentPlan = req.RequestedPlan
		tenant.PlanStartDate = now
		tenant.PlanEndDate = truncateToDay(now).AddDate(0, 0, model.PlanDurationDays)
		tenant.RenewalCount = 0
		tenant.MaxAccounts = model.PlanMaxAccounts(req.RequestedPlan, 0)
	}
	tenant.UpdatedAt = now
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Reject moves a pending request to rejected. The tenant is untouched.
func (u *upgradeUC) Reject(ctx context.Context, requestID string, actor model.Principal, reason string) (*model.UpgradeRequest, error) {
	defer logging.TraceDuration(u.log, "UpgradeUC.Reject")()

	if !actor.IsAdmin() && !actor.IsSystem() {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(reason) == "" {
		return nil, domain.ErrRejectionReasonRequired
	}
	ctx = logging.WithRequestID(ctx, requestID)
	if actor.IsAdmin() {
		ctx = logging.WithAdminID(ctx, actor.Identity())
	}

	var req *model.UpgradeRequest
	err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		req, err = u.requests.FindByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if err := u.locker.LockTenant(ctx, tx, req.TenantID); err != nil {
			return err
		}
		req, err = u.requests.FindByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !req.IsPending() {
			return domain.ErrInvalidStateTransition
		}

		now := time.Now()
		before := requestSnapshot(req)
		req.Status = model.RequestStatusRejected
		req.ProcessedAt = &now
		identity := actor.Identity()
		req.ProcessedBy = &identity
		req.AdminNotes = reason
		if err := u.requests.Save(ctx, tx, req); err != nil {
			return err
		}
		return u.audit.Record(ctx, tx, newAudit(actor, "reject_upgrade_request",
			"UpgradeRequest", req.ID, before, requestSnapshot(req)))
	})
	if err != nil {
		return nil, err
	}

	metrics.IncRequestProcessed(model.RequestStatusRejected)
	u.notifier.Notify(ctx, adapter.Event{
		Type:      adapter.EventRequestRejected,
		TenantID:  req.TenantID,
		RequestID: req.ID,
		Payload:   map[string]any{"reason": reason},
	})
	logging.With(logging.WithTenantID(ctx, req.TenantID), u.log).Info().
		Str("reason", reason).
		Msg("upgrade request rejected")
	return req, nil
}

// Cancel moves a pending request to cancelled. Used by cascading
// cancellation, maintenance sweeps, and admins.
func (u *upgradeUC) Cancel(ctx context.Context, requestID string, actor model.Principal, reason string) (*model.UpgradeRequest, error) {
	defer logging.TraceDuration(u.log, "UpgradeUC.Cancel")()

	var req *model.UpgradeRequest
	err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		req, err = u.requests.FindByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if err := u.locker.LockTenant(ctx, tx, req.TenantID); err != nil {
			return err
		}
		req, err = u.requests.FindByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !req.IsPending() {
			return domain.ErrInvalidStateTransition
		}
		before := requestSnapshot(req)
		cancelRequest(req, reason, actor)
		if err := u.requests.Save(ctx, tx, req); err != nil {
			return err
		}
		return u.audit.Record(ctx, tx, newAudit(actor, "cancel_upgrade_request",
			"UpgradeRequest", req.ID, before, requestSnapshot(req)))
	})
	if err != nil {
		return nil, err
	}
	metrics.IncRequestProcessed(model.RequestStatusCancelled)
	return req, nil
}

func cancelRequest(req *model.UpgradeRequest, reason string, actor model.Principal) {
	now := time.Now()
	req.Status = model.RequestStatusCancelled
	req.AdminNotes = reason
	req.ProcessedAt = &now
	if id := actor.Identity(); id != "" {
		req.ProcessedBy = &id
	}
}

func (u *upgradeUC) cascadeCancel(ctx context.Context, tx repository.Tx, tenantID, excludeID, reason string) error {
	return cascadeCancelPending(ctx, tx, u.requests, u.log, tenantID, excludeID, reason)
}

func (u *upgradeUC) ListByTenant(ctx context.Context, tenantID string) ([]*model.UpgradeRequest, error) {
	defer logging.TraceDuration(u.log, "UpgradeUC.ListByTenant")()
	return u.requests.ListByTenant(ctx, repository.NoTX, tenantID)
}
