package model

import (
	"time"

	"github.com/shopspring/decimal"

	"driving-school-platform/internal/domain"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// Terminal reports whether the status is absorbing.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected || s == RequestStatusCancelled
}

type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodFlouci       PaymentMethod = "flouci"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodFlouci:
		return true
	}
	return false
}

// UpgradeRequest is a persisted intent to change (or renew) a tenant's
// plan. Its ID is a UUID safe to hand to a payment gateway as the order
// reference. It leaves pending exactly once and is never reopened.
type UpgradeRequest struct {
	ID       string // UUID, external order reference
	TenantID string

	// CurrentPlan snapshots the tenant's plan at submit time so the
	// obsolete-request sweep can detect a plan changed underneath it.
	CurrentPlan   Plan
	RequestedPlan Plan

	PaymentMethod PaymentMethod
	Amount        decimal.Decimal
	IsRenewal     bool

	Status      RequestStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
	ProcessedBy *string // nil until processed; system identity for gateway approvals
	AdminNotes  string
}

// NewUpgradeRequest validates and constructs a pending request.
func NewUpgradeRequest(id, tenantID string, currentPlan, requestedPlan Plan, method PaymentMethod, amount decimal.Decimal, isRenewal bool) (*UpgradeRequest, error) {
	if id == "" || tenantID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !currentPlan.Valid() || !requestedPlan.Valid() || !method.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	if amount.IsNegative() {
		return nil, domain.ErrInvalidArgument
	}
	return &UpgradeRequest{
		ID:            id,
		TenantID:      tenantID,
		CurrentPlan:   currentPlan,
		RequestedPlan: requestedPlan,
		PaymentMethod: method,
		Amount:        amount,
		IsRenewal:     isRenewal,
		Status:        RequestStatusPending,
		CreatedAt:     time.Now(),
	}, nil
}

func (r *UpgradeRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
