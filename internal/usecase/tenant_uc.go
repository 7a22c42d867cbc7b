package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
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
var _ TenantUseCase = (*tenantUC)(nil)

// SubscriptionInfo is the read model served to a tenant's dashboard.
type SubscriptionInfo struct {
	CurrentPlan     model.Plan
	DisplayName     string
	Price           decimal.Decimal
	PlanStartDate   time.Time
	PlanEndDate     time.Time
	DaysRemaining   int
	MaxAccounts     int
	CurrentAccounts int
	CanUpgrade      bool
	CanRenew        bool
	Features        model.PlanFeatures
}

// TenantUseCase covers tenant onboarding and plan-state operations.
type TenantUseCase interface {
	Register(ctx context.Context, ownerID, name string) (*model.Tenant, error)
	GetByID(ctx context.Context, tenantID string) (*model.Tenant, error)
	SubscriptionInfo(ctx context.Context, tenantID string) (*SubscriptionInfo, error)
	// DirectSetPlan is the admin-only bypass of the request workflow.
	DirectSetPlan(ctx context.Context, tenantID string, newPlan model.Plan, actor model.Principal) (*model.Tenant, error)
	// RecomputeAccountUsage refreshes the cached account count from the
	// live instructor/student counts; call it from the same operation
	// that creates or removes an account.
	RecomputeAccountUsage(ctx context.Context, tenantID string) (int, error)
	SetApprovalStatus(ctx context.Context, tenantID string, status model.ApprovalStatus, actor model.Principal) error
	// BillingHistory lists the tenant's ledger entries with the running
	// subscription spend.
	BillingHistory(ctx context.Context, tenantID string) ([]*model.AccountingEntry, decimal.Decimal, error)
}

type tenantUC struct {
	tenants    repository.TenantRepository
	requests   repository.UpgradeRequestRepository
	usage      repository.AccountUsageSource
	accounting repository.AccountingRepository
	audit      repository.AuditLogRepository
	notifier   adapter.Notifier
	tm         repository.TransactionManager
	locker     repository.TenantLocker
	log        *zerolog.Logger
}

func NewTenantUseCase(
	tenants repository.TenantRepository,
	requests repository.UpgradeRequestRepository,
	usage repository.AccountUsageSource,
	accounting repository.AccountingRepository,
	audit repository.AuditLogRepository,
	notifier adapter.Notifier,
	tm repository.TransactionManager,
	locker repository.TenantLocker,
	logger *zerolog.Logger,
) *tenantUC {
	return &tenantUC{
		tenants:    tenants,
		requests:   requests,
		usage:      usage,
		accounting: accounting,
		audit:      audit,
		notifier:   notifier,
		tm:         tm,
		locker:     locker,
		log:        logger,
	}
}

// Register onboards a tenant on the default 30-day standard window.
func (u *tenantUC) Register(ctx context.Context, ownerID, name string) (*model.Tenant, error) {
	defer logging.TraceDuration(u.log, "TenantUC.Register")()

	switch _, err := u.tenants.FindByOwner(ctx, repository.NoTX, ownerID); {
	case err == nil:
		return nil, domain.ErrOwnerHasTenant
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	tenant, err := model.NewTenant(uuid.NewString(), ownerID, name)
	if err != nil {
		return nil, err
	}
	if err := u.tenants.Save(ctx, repository.NoTX, tenant); err != nil {
		return nil, err
	}
	u.log.Info().Str("tenant_id", tenant.ID).Str("name", name).Msg("tenant registered")
	return tenant, nil
}

func (u *tenantUC) GetByID(ctx context.Context, tenantID string) (*model.Tenant, error) {
	return u.tenants.FindByID(ctx, repository.NoTX, tenantID)
}

// SubscriptionInfo assembles the plan view using live account counts.
func (u *tenantUC) SubscriptionInfo(ctx context.Context, tenantID string) (*SubscriptionInfo, error) {
	defer logging.TraceDuration(u.log, "TenantUC.SubscriptionInfo")()

	tenant, err := u.tenants.FindByID(ctx, repository.NoTX, tenantID)
	if err != nil {
		return nil, err
	}
	def, err := model.PlanDefinitionOf(tenant.CurrentPlan)
	if err != nil {
		return nil, err
	}
	instructors, students, err := u.usage.Counts(ctx, repository.NoTX, tenantID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &SubscriptionInfo{
		CurrentPlan:     tenant.CurrentPlan,
		DisplayName:     def.DisplayName,
		Price:           def.Price,
		PlanStartDate:   tenant.PlanStartDate,
		PlanEndDate:     tenant.PlanEndDate,
		DaysRemaining:   tenant.DaysRemaining(now),
		MaxAccounts:     model.PlanMaxAccounts(tenant.CurrentPlan, tenant.RenewalCount),
		CurrentAccounts: 1 + instructors + students,
		CanUpgrade:      tenant.CurrentPlan != model.PlanPremium,
		CanRenew:        tenant.CanRenew(now),
		Features:        def.Features,
	}, nil
}

// DirectSetPlan sets the plan outright and cancels any pending request.
// It does not block on capacity; it only flags the overflow.
func (u *tenantUC) DirectSetPlan(ctx context.Context, tenantID string, newPlan model.Plan, actor model.Principal) (*model.Tenant, error) {
	defer logging.TraceDuration(u.log, "TenantUC.DirectSetPlan")()

	if !newPlan.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	if !actor.IsAdmin() {
		return nil, domain.ErrInvalidArgument
	}

	var tenant *model.Tenant
	err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		if err := u.locker.LockTenant(ctx, tx, tenantID); err != nil {
			return err
		}
		var err error
		tenant, err = u.tenants.FindByID(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		before := tenantSnapshot(tenant)

		now := time.Now()
		planChanged := tenant.CurrentPlan != newPlan
		tenant.CurrentPlan = newPlan
		tenant.PlanStartDate = now
		tenant.PlanEndDate = truncateToDay(now).AddDate(0, 0, model.PlanDurationDays)
		if planChanged {
			tenant.RenewalCount = 0
		}
		tenant.MaxAccounts = model.PlanMaxAccounts(newPlan, tenant.RenewalCount)
		tenant.UpdatedAt = now
		if err := u.tenants.Save(ctx, tx, tenant); err != nil {
			return err
		}

		if tenant.OverCapacity() {
			metrics.IncTenantOverCapacity()
			u.log.Warn().
				Str("tenant_id", tenant.ID).
				Str("plan", string(newPlan)).
				Int("current_accounts", tenant.CurrentAccounts).
				Int("max_accounts", tenant.MaxAccounts).
				Msg("tenant over capacity after direct plan set")
		}

		reason := "Plan changed directly to " + string(newPlan) + " by admin"
		if err := cascadeCancelPending(ctx, tx, u.requests, u.log, tenant.ID, "", reason); err != nil {
			return err
		}

		return u.audit.Record(ctx, tx, newAudit(actor, "direct_set_plan",
			"Tenant", tenant.ID, before, tenantSnapshot(tenant)))
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Notify(ctx, adapter.Event{
		Type:     adapter.EventPlanChanged,
		TenantID: tenant.ID,
		Payload: map[string]any{
			"plan":          string(tenant.CurrentPlan),
			"plan_end_date": tenant.PlanEndDate,
		},
	})
	u.log.Info().
		Str("tenant_id", tenant.ID).
		Str("plan", string(tenant.CurrentPlan)).
		Str("actor", actor.Identity()).
		Msg("plan set directly by admin")
	return tenant, nil
}

// RecomputeAccountUsage persists the fresh count only when it changed.
func (u *tenantUC) RecomputeAccountUsage(ctx context.Context, tenantID string) (int, error) {
	defer logging.TraceDuration(u.log, "TenantUC.RecomputeAccountUsage")()

	var count int
	err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		if err := u.locker.LockTenant(ctx, tx, tenantID); err != nil {
			return err
		}
		tenant, err := u.tenants.FindByID(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		instructors, students, err := u.usage.Counts(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		count = 1 + instructors + students
		if count == tenant.CurrentAccounts {
			return nil
		}
		tenant.CurrentAccounts = count
		tenant.UpdatedAt = time.Now()
		return u.tenants.Save(ctx, tx, tenant)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// BillingHistory returns the tenant's ledger newest first, plus the
// total spent on subscription charges.
func (u *tenantUC) BillingHistory(ctx context.Context, tenantID string) ([]*model.AccountingEntry, decimal.Decimal, error) {
	defer logging.TraceDuration(u.log, "TenantUC.BillingHistory")()

	entries, err := u.accounting.ListByTenant(ctx, repository.NoTX, tenantID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	total, err := u.accounting.SumByCategory(ctx, repository.NoTX, tenantID, model.CategorySubscription)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return entries, total, nil
}

// SetApprovalStatus drives the onboarding gate (approve, reject,
// suspend, reactivate). Suspension is the soft delete; tenants are never
// removed.
func (u *tenantUC) SetApprovalStatus(ctx context.Context, tenantID string, status model.ApprovalStatus, actor model.Principal) error {
	defer logging.TraceDuration(u.log, "TenantUC.SetApprovalStatus")()

	if !actor.IsAdmin() {
		return domain.ErrInvalidArgument
	}
	switch status {
	case model.ApprovalStatusApproved, model.ApprovalStatusRejected, model.ApprovalStatusSuspended:
	default:
		return domain.ErrInvalidArgument
	}

	return u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
		if err := u.locker.LockTenant(ctx, tx, tenantID); err != nil {
			return err
		}
		tenant, err := u.tenants.FindByID(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		before := tenantSnapshot(tenant)
		tenant.ApprovalStatus = status
		tenant.UpdatedAt = time.Now()
		if err := u.tenants.Save(ctx, tx, tenant); err != nil {
			return err
		}
		return u.audit.Record(ctx, tx, newAudit(actor, "set_approval_status",
			"Tenant", tenant.ID, before, tenantSnapshot(tenant)))
	})
}
