package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Upgrade-request workflow errors. Each submit/transition precondition
	// has its own sentinel so the boundary can translate them individually.
	ErrDuplicateRequest        = errors.New("tenant already has a pending upgrade request")
	ErrPlanMismatch            = errors.New("renewal must target the tenant's current plan")
	ErrRenewalWindowClosed     = errors.New("renewal is only possible in the last days of the plan")
	ErrNotAnUpgrade            = errors.New("requested plan is not an upgrade")
	ErrCapacityExceeded        = errors.New("active accounts exceed the requested plan's capacity")
	ErrInvalidStateTransition  = errors.New("request is not pending")
	ErrTenantSuspended         = errors.New("tenant is suspended")
	ErrOwnerHasTenant          = errors.New("owner already has a tenant")
	ErrRejectionReasonRequired = errors.New("a rejection reason is required")

	// Coupon errors
	ErrCouponInvalid   = errors.New("coupon is not valid")
	ErrCouponExhausted = errors.New("coupon has reached its usage limit")

	// ErrInvalidExecContext is returned when a repository receives a tx
	// handle of an unsupported concrete type.
	ErrInvalidExecContext = errors.New("invalid executor context")
)
