package model

import (
	"time"

	"driving-school-platform/internal/domain"
)

// ApprovalStatus is the onboarding gate of a tenant, independent of plan.
type ApprovalStatus string

const (
	ApprovalStatusPending   ApprovalStatus = "pending"
	ApprovalStatusApproved  ApprovalStatus = "approved"
	ApprovalStatusRejected  ApprovalStatus = "rejected"
	ApprovalStatusSuspended ApprovalStatus = "suspended"
)

// Tenant is a driving-school organisation. Plan fields are mutated only by
// the workflow use-cases; the entity itself carries no side effects.
type Tenant struct {
	ID             string // UUID
	OwnerID        string // UUID of the owner account
	Name           string
	ApprovalStatus ApprovalStatus

	CurrentPlan   Plan
	PlanStartDate time.Time
	PlanEndDate   time.Time
	MaxAccounts   int
	RenewalCount  int

	// CurrentAccounts caches 1 (owner) + instructors + students. It is
	// refreshed explicitly via recompute, never by hidden listeners.
	CurrentAccounts int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTenant creates an onboarding tenant: standard plan, 30-day window,
// renewal counter at zero, only the owner account counted.
func NewTenant(id, ownerID, name string) (*Tenant, error) {
	if id == "" || ownerID == "" || name == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Tenant{
		ID:              id,
		OwnerID:         ownerID,
		Name:            name,
		ApprovalStatus:  ApprovalStatusPending,
		CurrentPlan:     PlanStandard,
		PlanStartDate:   now,
		PlanEndDate:     now.AddDate(0, 0, PlanDurationDays),
		MaxAccounts:     PlanMaxAccounts(PlanStandard, 0),
		RenewalCount:    0,
		CurrentAccounts: 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// DaysRemaining returns whole days left on the plan, floored at zero.
func (t *Tenant) DaysRemaining(now time.Time) int {
	if t.PlanEndDate.IsZero() {
		return 0
	}
	remaining := int(t.PlanEndDate.Sub(now).Hours() / 24)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanRenew reports whether the tenant is inside the renewal window.
func (t *Tenant) CanRenew(now time.Time) bool {
	return t.DaysRemaining(now) <= RenewalWindowDays
}

// IsPlanExpired reports whether the plan window has lapsed.
func (t *Tenant) IsPlanExpired(now time.Time) bool {
	return now.After(t.PlanEndDate)
}

// CanAddAccounts reports whether the cached usage is below the ceiling.
func (t *Tenant) CanAddAccounts() bool {
	return t.CurrentAccounts < t.MaxAccounts
}

// OverCapacity reports whether the cached usage exceeds the ceiling.
func (t *Tenant) OverCapacity() bool {
	return t.CurrentAccounts > t.MaxAccounts
}
