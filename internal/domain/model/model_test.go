//go:build !integration

package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"driving-school-platform/internal/domain"
	"driving-school-platform/internal/domain/model"
)

func TestPlanMaxAccounts(t *testing.T) {
	t.Run("standard grows by 50 per renewal", func(t *testing.T) {
		for _, tc := range []struct {
			renewals int
			want     int
		}{
			{0, 200},
			{1, 250},
			{4, 400},
			{12, 800},
		} {
			if got := model.PlanMaxAccounts(model.PlanStandard, tc.renewals); got != tc.want {
				t.Errorf("renewals=%d: expected %d, got %d", tc.renewals, tc.want, got)
			}
		}
	})

	t.Run("premium is unlimited regardless of renewals", func(t *testing.T) {
		if got := model.PlanMaxAccounts(model.PlanPremium, 0); got != model.UnlimitedAccounts {
			t.Errorf("expected unlimited, got %d", got)
		}
		if got := model.PlanMaxAccounts(model.PlanPremium, 7); got != model.UnlimitedAccounts {
			t.Errorf("expected unlimited, got %d", got)
		}
	})
}

func TestPlanCatalog(t *testing.T) {
	t.Run("premium outranks standard", func(t *testing.T) {
		if model.PlanRank(model.PlanPremium) <= model.PlanRank(model.PlanStandard) {
			t.Error("expected premium to outrank standard")
		}
	})

	t.Run("unknown plan is rejected", func(t *testing.T) {
		if _, err := model.PlanDefinitionOf(model.Plan("gold")); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got: %v", err)
		}
	})
}

func TestNewUpgradeRequest(t *testing.T) {
	price := model.PlanPrice(model.PlanPremium)

	t.Run("constructs a pending request", func(t *testing.T) {
		req, err := model.NewUpgradeRequest("r1", "t1",
			model.PlanStandard, model.PlanPremium,
			model.PaymentMethodBankTransfer, price, false)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !req.IsPending() {
			t.Error("expected new request pending")
		}
		if req.ProcessedAt != nil || req.ProcessedBy != nil {
			t.Error("expected processing fields empty")
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []struct {
			name  string
			build func() (*model.UpgradeRequest, error)
		}{
			{"empty id", func() (*model.UpgradeRequest, error) {
				return model.NewUpgradeRequest("", "t1", model.PlanStandard, model.PlanPremium, model.PaymentMethodCard, price, false)
			}},
			{"unknown plan", func() (*model.UpgradeRequest, error) {
				return model.NewUpgradeRequest("r1", "t1", model.PlanStandard, model.Plan("gold"), model.PaymentMethodCard, price, false)
			}},
			{"unknown method", func() (*model.UpgradeRequest, error) {
				return model.NewUpgradeRequest("r1", "t1", model.PlanStandard, model.PlanPremium, model.PaymentMethod("cash"), price, false)
			}},
			{"negative amount", func() (*model.UpgradeRequest, error) {
				return model.NewUpgradeRequest("r1", "t1", model.PlanStandard, model.PlanPremium, model.PaymentMethodCard, decimal.NewFromInt(-1), false)
			}},
		}
		for _, tc := range cases {
			if _, err := tc.build(); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("%s: expected ErrInvalidArgument, got: %v", tc.name, err)
			}
		}
	})
}

func TestRequestStatusTerminal(t *testing.T) {
	if model.RequestStatusPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []model.RequestStatus{
		model.RequestStatusApproved,
		model.RequestStatusRejected,
		model.RequestStatusCancelled,
	} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestTenantPlanWindow(t *testing.T) {
	now := time.Now()

	t.Run("days remaining floors at zero", func(t *testing.T) {
		tenant := &model.Tenant{PlanEndDate: now.AddDate(0, 0, -3)}
		if got := tenant.DaysRemaining(now); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})

	t.Run("renewal opens at five days", func(t *testing.T) {
		tenant := &model.Tenant{PlanEndDate: now.Add(5 * 24 * time.Hour)}
		if !tenant.CanRenew(now) {
			t.Error("expected renewable at exactly 5 days")
		}
		tenant.PlanEndDate = now.Add(6*24*time.Hour + time.Minute)
		if tenant.CanRenew(now) {
			t.Error("expected not renewable at 6 days")
		}
	})

	t.Run("expiry flips once the end date passes", func(t *testing.T) {
		tenant := &model.Tenant{PlanEndDate: now.Add(time.Hour)}
		if tenant.IsPlanExpired(now) {
			t.Error("expected live plan not expired")
		}
		tenant.PlanEndDate = now.Add(-time.Minute)
		if !tenant.IsPlanExpired(now) {
			t.Error("expected lapsed plan expired")
		}
	})

	t.Run("capacity checks use the cached count", func(t *testing.T) {
		tenant := &model.Tenant{MaxAccounts: 200, CurrentAccounts: 200}
		if tenant.CanAddAccounts() {
			t.Error("expected full tenant unable to add")
		}
		if tenant.OverCapacity() {
			t.Error("expected exactly-full tenant not over capacity")
		}
		tenant.CurrentAccounts = 201
		if !tenant.OverCapacity() {
			t.Error("expected over capacity at 201/200")
		}
	})
}

func TestCoupon(t *testing.T) {
	now := time.Now()
	base := model.Coupon{
		ID:                 "c1",
		Code:               "WELCOME10",
		DiscountPercentage: decimal.NewFromInt(10),
		ValidFrom:          now.AddDate(0, 0, -1),
		ValidUntil:         now.AddDate(0, 0, 1),
		MaxUses:            5,
		Status:             model.CouponStatusActive,
	}

	t.Run("usable inside its window and cap", func(t *testing.T) {
		c := base
		if !c.CanBeUsed(now) {
			t.Error("expected usable")
		}
	})

	t.Run("unusable outside the window", func(t *testing.T) {
		c := base
		c.ValidUntil = now.AddDate(0, 0, -1)
		if c.CanBeUsed(now) {
			t.Error("expected expired coupon unusable")
		}
	})

	t.Run("unusable at the cap or when inactive", func(t *testing.T) {
		c := base
		c.CurrentUses = 5
		if c.CanBeUsed(now) {
			t.Error("expected exhausted coupon unusable")
		}
		c = base
		c.Status = model.CouponStatusInactive
		if c.CanBeUsed(now) {
			t.Error("expected inactive coupon unusable")
		}
	})

	t.Run("discount is a straight percentage", func(t *testing.T) {
		c := base
		got := c.Discount(decimal.NewFromInt(99))
		want := decimal.NewFromFloat(89.1)
		if !got.Equal(want) {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}

func TestNewSubscriptionCharge(t *testing.T) {
	t.Run("labels renewals distinctly", func(t *testing.T) {
		e, err := model.NewSubscriptionCharge("e1", "t1", model.PlanStandard,
			model.PlanPrice(model.PlanStandard), true, time.Now())
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if e.Description != "Standard plan renewal" {
			t.Errorf("unexpected description %q", e.Description)
		}
		if e.EntryType != model.EntryTypeExpense || e.Category != model.CategorySubscription {
			t.Errorf("unexpected classification %s/%s", e.EntryType, e.Category)
		}
	})
}
