//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/usecase"
)

type maintenanceFixture struct {
	tenants  *memTenantRepo
	requests *memRequestRepo
	usage    *mockUsageSource
	audit    *memAuditRepo
	uc       usecase.MaintenanceUseCase
}

func newMaintenanceFixture() *maintenanceFixture {
	f := &maintenanceFixture{
		tenants:  newMemTenantRepo(),
		requests: newMemRequestRepo(),
		usage:    newMockUsageSource(),
		audit:    newMemAuditRepo(),
	}
	f.uc = usecase.NewMaintenanceUseCase(
		f.tenants, f.requests, f.usage, f.audit,
		NewMockTxManager(), NewMockLocker(), newTestLogger(),
	)
	return f
}

func (f *maintenanceFixture) seedTenant(t *testing.T, id string, plan model.Plan, daysLeft int) *model.Tenant {
	t.Helper()
	tenant, err := model.NewTenant(id, "owner-"+id, "School "+id)
	if err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	tenant.ApprovalStatus = model.ApprovalStatusApproved
	tenant.CurrentPlan = plan
	tenant.PlanEndDate = time.Now().AddDate(0, 0, daysLeft)
	tenant.MaxAccounts = model.PlanMaxAccounts(plan, 0)
	if err := f.tenants.Save(context.Background(), nil, tenant); err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return tenant
}

func (f *maintenanceFixture) seedPending(t *testing.T, id, tenantID string, current, requested model.Plan, renewal bool) {
	t.Helper()
	req, err := model.NewUpgradeRequest(id, tenantID, current, requested,
		model.PaymentMethodBankTransfer, model.PlanPrice(requested), renewal)
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	if err := f.requests.Save(context.Background(), nil, req); err != nil {
		t.Fatalf("seed request: %v", err)
	}
}

func TestMaintenanceUseCase_SweepObsoleteRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels requests for plans already reached", func(t *testing.T) {
		f := newMaintenanceFixture()
		f.seedTenant(t, "t1", model.PlanPremium, 20)
		// Upgrade request left pending after the admin set premium directly.
		f.seedPending(t, "r1", "t1", model.PlanStandard, model.PlanPremium, false)

		report, err := f.uc.SweepObsoleteRequests(ctx, true)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if report.Cancelled != 1 {
			t.Errorf("expected 1 cancelled, got %d", report.Cancelled)
		}
		got, _ := f.requests.FindByID(ctx, nil, "r1")
		if got.Status != model.RequestStatusCancelled {
			t.Errorf("expected cancelled, got %s", got.Status)
		}
	})

	t.Run("cancels a renewal whose plan changed underneath", func(t *testing.T) {
		f := newMaintenanceFixture()
		f.seedTenant(t, "t1", model.PlanPremium, 20)
		// Renewal submitted while on standard; plan moved to premium since.
		f.seedPending(t, "r1", "t1", model.PlanStandard, model.PlanStandard, true)

		report, err := f.uc.SweepObsoleteRequests(ctx, true)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if report.Cancelled != 1 {
			t.Errorf("expected 1 cancelled, got %d", report.Cancelled)
		}
	})

	t.Run("cancels a renewal for the plan the tenant already holds", func(t *testing.T) {
		f := newMaintenanceFixture()
		f.seedTenant(t, "t1", model.PlanStandard, 3)
		f.seedPending(t, "r1", "t1", model.PlanStandard, model.PlanStandard, true)

		report, err := f.uc.SweepObsoleteRequests(ctx, true)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if report.Cancelled != 1 {
			t.Errorf("expected 1 cancelled, got %d", report.Cancelled)
		}
		got, _ := f.requests.FindByID(ctx, nil, "r1")
		if got.Status != model.RequestStatusCancelled {
			t.Errorf("expected cancelled, got %s", got.Status)
		}
	})

	t.Run("keeps live requests", func(t *testing.T) {
		f := newMaintenanceFixture()
		f.seedTenant(t, "t1", model.PlanStandard, 3)
		f.seedPending(t, "r1", "t1", model.PlanStandard, model.PlanPremium, false)

		report, err := f.uc.SweepObsoleteRequests(ctx, true)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if report.Cancelled != 0 {
			t.Errorf("expected nothing cancelled, got %d", report.Cancelled)
		}
	})

	t.Run("dry run reports without cancelling", func(t *testing.T) {
		f := newMaintenanceFixture()
		f.seedTenant(t, "t1", model.PlanPremium, 20)
		f.seedPending(t, "r1", "t1", model.PlanStandard, model.PlanPremium, false)

		report, err := f.uc.SweepObsoleteRequests(ctx, false)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if report.Obsolete != 1 || report.Cancelled != 0 {
			t.Errorf("expected 1 obsolete and 0 cancelled, got %d/%d", report.Obsolete, report.Cancelled)
		}
		got, _ := f.requests.FindByID(ctx, nil, "r1")
		if got.Status != model.RequestStatusPending {
			t.Errorf("expected still pending, got %s", got.Status)
		}
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		f := newMaintenanceFixture()
		f.seedTenant(t, "t1", model.PlanPremium, 20)
		f.seedPending(t, "r1", "t1", model.PlanStandard, model.PlanPremium, false)

		if _, err := f.uc.SweepObsoleteRequests(ctx, true); err != nil {
			t.Fatalf("first sweep: %v", err)
		}
		report, err := f.uc.SweepObsoleteRequests(ctx, true)
		if err != nil {
			t.Fatalf("second sweep: %v", err)
		}
		if report.Scanned != 0 || report.Cancelled != 0 {
			t.Errorf("expected nothing to scan, got scanned=%d cancelled=%d", report.Scanned, report.Cancelled)
		}
	})
}

func TestMaintenanceUseCase_RecomputeAccountCounts(t *testing.T) {
	ctx := context.Background()

	t.Run("fixes drifted counts and leaves correct ones alone", func(t *testing.T) {
		f := newMaintenanceFixture()
		drifted := f.seedTenant(t, "t1", model.PlanStandard, 20)
		drifted.CurrentAccounts = 99
		f.tenants.Save(ctx, nil, drifted)
		f.usage.Instructors["t1"] = 2
		f.usage.Students["t1"] = 30

		correct := f.seedTenant(t, "t2", model.PlanStandard, 20)
		correct.CurrentAccounts = 6
		f.tenants.Save(ctx, nil, correct)
		f.usage.Instructors["t2"] = 1
		f.usage.Students["t2"] = 4

		report, err := f.uc.RecomputeAccountCounts(ctx)
		if err != nil {
			t.Fatalf("recompute: %v", err)
		}
		if report.Scanned != 2 || report.Fixed != 1 {
			t.Errorf("expected scanned=2 fixed=1, got %d/%d", report.Scanned, report.Fixed)
		}
		got, _ := f.tenants.FindByID(ctx, nil, "t1")
		if got.CurrentAccounts != 33 {
			t.Errorf("expected 33, got %d", got.CurrentAccounts)
		}
	})
}

func TestMaintenanceUseCase_FixExpiryDates(t *testing.T) {
	ctx := context.Background()

	t.Run("strips the inflated excess from far-future dates", func(t *testing.T) {
		f := newMaintenanceFixture()
		broken := f.seedTenant(t, "t1", model.PlanStandard, 20)
		// A 360-day write where 30 was meant, 15 days ago.
		broken.PlanEndDate = time.Now().AddDate(0, 0, 345)
		f.tenants.Save(ctx, nil, broken)

		report, err := f.uc.FixExpiryDates(ctx, true)
		if err != nil {
			t.Fatalf("fix: %v", err)
		}
		if report.Repaired != 1 {
			t.Fatalf("expected 1 repaired, got %d", report.Repaired)
		}
		got, _ := f.tenants.FindByID(ctx, nil, "t1")
		wantEnd := dateOnly(broken.PlanEndDate).AddDate(0, 0, -330)
		if !got.PlanEndDate.Equal(wantEnd) {
			t.Errorf("expected end %s, got %s", wantEnd, got.PlanEndDate)
		}
	})

	t.Run("resets moderately suspect dates to a fresh window", func(t *testing.T) {
		f := newMaintenanceFixture()
		broken := f.seedTenant(t, "t1", model.PlanStandard, 20)
		broken.PlanEndDate = time.Now().AddDate(0, 0, 150)
		f.tenants.Save(ctx, nil, broken)

		report, err := f.uc.FixExpiryDates(ctx, true)
		if err != nil {
			t.Fatalf("fix: %v", err)
		}
		if report.Repaired != 1 {
			t.Fatalf("expected 1 repaired, got %d", report.Repaired)
		}
		got, _ := f.tenants.FindByID(ctx, nil, "t1")
		wantEnd := dateOnly(time.Now()).AddDate(0, 0, 30)
		if !got.PlanEndDate.Equal(wantEnd) {
			t.Errorf("expected end %s, got %s", wantEnd, got.PlanEndDate)
		}
	})

	t.Run("leaves healthy windows untouched and honors dry run", func(t *testing.T) {
		f := newMaintenanceFixture()
		f.seedTenant(t, "t1", model.PlanStandard, 25)
		broken := f.seedTenant(t, "t2", model.PlanStandard, 20)
		broken.PlanEndDate = time.Now().AddDate(0, 0, 150)
		f.tenants.Save(ctx, nil, broken)

		report, err := f.uc.FixExpiryDates(ctx, false)
		if err != nil {
			t.Fatalf("fix: %v", err)
		}
		if report.Suspect != 1 || report.Repaired != 0 {
			t.Errorf("expected suspect=1 repaired=0, got %d/%d", report.Suspect, report.Repaired)
		}
		got, _ := f.tenants.FindByID(ctx, nil, "t2")
		if !got.PlanEndDate.Equal(broken.PlanEndDate) {
			t.Error("expected dry run to leave the date untouched")
		}
	})
}
