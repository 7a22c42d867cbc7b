package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/repository"
	"driving-school-platform/internal/infra/logging"
	"driving-school-platform/internal/infra/metrics"
)

// Compile-time check
var _ MaintenanceUseCase = (*maintenanceUC)(nil)

// SweepReport summarizes one obsolete-request sweep.
type SweepReport struct {
	Scanned   int
	Obsolete  int
	Cancelled int
	Applied   bool
}

// RecountReport summarizes one account-count recompute pass.
type RecountReport struct {
	Scanned int
	Fixed   int
}

// DateFixReport summarizes one expiry-date repair pass.
type DateFixReport struct {
	Scanned  int
	Suspect  int
	Repaired int
	Applied  bool
}

// MaintenanceUseCase holds the periodic and out-of-band repair jobs.
type MaintenanceUseCase interface {
	// SweepObsoleteRequests cancels pending requests that can no longer
	// lead anywhere: the tenant already reached the requested plan, or
	// the plan changed under a renewal request. With apply=false it only
	// reports.
	SweepObsoleteRequests(ctx context.Context, apply bool) (*SweepReport, error)
	// RecomputeAccountCounts refreshes every tenant's cached account
	// count from the live instructor and student counts.
	RecomputeAccountCounts(ctx context.Context) (*RecountReport, error)
	// FixExpiryDates repairs plan end dates corrupted by a historical
	// duration bug. Out-of-band only; never scheduled.
	FixExpiryDates(ctx context.Context, apply bool) (*DateFixReport, error)
}

type maintenanceUC struct {
	tenants  repository.TenantRepository
	requests repository.UpgradeRequestRepository
	usage    repository.AccountUsageSource
	audit    repository.AuditLogRepository
	tm       repository.TransactionManager
	locker   repository.TenantLocker
	log      *zerolog.Logger
}

func NewMaintenanceUseCase(
	tenants repository.TenantRepository,
	requests repository.UpgradeRequestRepository,
	usage repository.AccountUsageSource,
	audit repository.AuditLogRepository,
	tm repository.TransactionManager,
	locker repository.TenantLocker,
	logger *zerolog.Logger,
) *maintenanceUC {
	return &maintenanceUC{
		tenants:  tenants,
		requests: requests,
		usage:    usage,
		audit:    audit,
		tm:       tm,
		locker:   locker,
		log:      logger,
	}
}

var sweepActor = model.SystemPrincipal("maintenance")

// requestObsolete reports whether a pending request can no longer be
// meaningfully approved against the tenant's current plan state.
func requestObsolete(req *model.UpgradeRequest, tenant *model.Tenant) bool {
	if req.RequestedPlan == tenant.CurrentPlan {
		return true
	}
	if req.IsRenewal && req.CurrentPlan != tenant.CurrentPlan {
		return true
	}
	if !req.IsRenewal && model.PlanRank(req.RequestedPlan) <= model.PlanRank(tenant.CurrentPlan) {
		return true
	}
	return false
}

func (u *maintenanceUC) SweepObsoleteRequests(ctx context.Context, apply bool) (*SweepReport, error) {
	defer logging.TraceDuration(u.log, "MaintenanceUC.SweepObsoleteRequests")()

	tenantIDs, err := u.tenants.ListIDs(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Applied: apply}
	for _, tenantID := range tenantIDs {
		// Each tenant runs in its own transaction so one failure does
		// not abort the whole sweep.
		err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
			if err := u.locker.LockTenant(ctx, tx, tenantID); err != nil {
				return err
			}
			tenant, err := u.tenants.FindByID(ctx, tx, tenantID)
			if err != nil {
				return err
			}
			pending, err := u.requests.ListPendingByTenant(ctx, tx, tenantID)
			if err != nil {
				return err
			}
			for _, req := range pending {
				report.Scanned++
				if !requestObsolete(req, tenant) {
					continue
				}
				report.Obsolete++
				u.log.Info().
					Str("tenant_id", tenantID).
					Str("request_id", req.ID).
					Str("requested_plan", string(req.RequestedPlan)).
					Str("current_plan", string(tenant.CurrentPlan)).
					Bool("apply", apply).
					Msg("obsolete pending request")
				if !apply {
					continue
				}
				before := requestSnapshot(req)
				cancelRequest(req, "Obsolete: plan already reached or changed", sweepActor)
				if err := u.requests.Save(ctx, tx, req); err != nil {
					return err
				}
				if err := u.audit.Record(ctx, tx, newAudit(sweepActor, "sweep_cancel_request",
					"UpgradeRequest", req.ID, before, requestSnapshot(req))); err != nil {
					return err
				}
				report.Cancelled++
			}
			return nil
		})
		if err != nil {
			u.log.Error().Err(err).Str("tenant_id", tenantID).Msg("sweep failed for tenant, skipping")
			metrics.IncJobRun("obsolete_sweep", "tenant_error")
		}
	}

	metrics.IncJobRun("obsolete_sweep", "ok")
	metrics.AddJobItems("obsolete_sweep", report.Cancelled)
	u.log.Info().
		Int("scanned", report.Scanned).
		Int("obsolete", report.Obsolete).
		Int("cancelled", report.Cancelled).
		Bool("apply", apply).
		Msg("obsolete request sweep done")
	return report, nil
}

func (u *maintenanceUC) RecomputeAccountCounts(ctx context.Context) (*RecountReport, error) {
	defer logging.TraceDuration(u.log, "MaintenanceUC.RecomputeAccountCounts")()

	tenantIDs, err := u.tenants.ListIDs(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	report := &RecountReport{}
	for _, tenantID := range tenantIDs {
		report.Scanned++
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
			count := 1 + instructors + students
			if count == tenant.CurrentAccounts {
				return nil
			}
			u.log.Info().
				Str("tenant_id", tenantID).
				Int("old", tenant.CurrentAccounts).
				Int("new", count).
				Msg("account count corrected")
			tenant.CurrentAccounts = count
			tenant.UpdatedAt = time.Now()
			if err := u.tenants.Save(ctx, tx, tenant); err != nil {
				return err
			}
			report.Fixed++
			return nil
		})
		if err != nil {
			u.log.Error().Err(err).Str("tenant_id", tenantID).Msg("recount failed for tenant, skipping")
			metrics.IncJobRun("account_recount", "tenant_error")
		}
	}

	metrics.IncJobRun("account_recount", "ok")
	metrics.AddJobItems("account_recount", report.Fixed)
	u.log.Info().
		Int("scanned", report.Scanned).
		Int("fixed", report.Fixed).
		Msg("account count recompute done")
	return report, nil
}

// suspectThresholdDays flags end dates implausibly far out; a healthy
// window never exceeds the plan duration plus the renewal overlap.
const (
	suspectThresholdDays  = 100
	inflatedThresholdDays = 300
	inflatedExcessDays    = 330
)

func (u *maintenanceUC) FixExpiryDates(ctx context.Context, apply bool) (*DateFixReport, error) {
	defer logging.TraceDuration(u.log, "MaintenanceUC.FixExpiryDates")()

	tenantIDs, err := u.tenants.ListIDs(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	report := &DateFixReport{Applied: apply}
	now := time.Now()
	today := truncateToDay(now)
	for _, tenantID := range tenantIDs {
		report.Scanned++
		err := u.tm.WithTx(ctx, serializableTx, func(ctx context.Context, tx repository.Tx) error {
			if err := u.locker.LockTenant(ctx, tx, tenantID); err != nil {
				return err
			}
			tenant, err := u.tenants.FindByID(ctx, tx, tenantID)
			if err != nil {
				return err
			}
			days := tenant.DaysRemaining(now)
			if days <= suspectThresholdDays {
				return nil
			}
			report.Suspect++

			var newEnd time.Time
			if days > inflatedThresholdDays {
				// A 360-day write where 30 was meant: strip the excess
				// and keep the legitimate remainder.
				newEnd = truncateToDay(tenant.PlanEndDate).AddDate(0, 0, -inflatedExcessDays)
			} else {
				newEnd = today.AddDate(0, 0, model.PlanDurationDays)
			}
			u.log.Warn().
				Str("tenant_id", tenantID).
				Time("old_end", tenant.PlanEndDate).
				Time("new_end", newEnd).
				Int("days_remaining", days).
				Bool("apply", apply).
				Msg("suspect plan end date")
			if !apply {
				return nil
			}
			before := tenantSnapshot(tenant)
			tenant.PlanEndDate = newEnd
			tenant.UpdatedAt = now
			if err := u.tenants.Save(ctx, tx, tenant); err != nil {
				return err
			}
			if err := u.audit.Record(ctx, tx, newAudit(sweepActor, "fix_expiry_date",
				"Tenant", tenant.ID, before, tenantSnapshot(tenant))); err != nil {
				return err
			}
			report.Repaired++
			return nil
		})
		if err != nil {
			u.log.Error().Err(err).Str("tenant_id", tenantID).Msg("date fix failed for tenant, skipping")
		}
	}

	metrics.IncJobRun("expiry_fix", "ok")
	metrics.AddJobItems("expiry_fix", report.Repaired)
	u.log.Info().
		Int("scanned", report.Scanned).
		Int("suspect", report.Suspect).
		Int("repaired", report.Repaired).
		Bool("apply", apply).
		Msg("expiry date fix done")
	return report, nil
}
