package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusInactive CouponStatus = "inactive"
	CouponStatusExpired  CouponStatus = "expired"
	CouponStatusUsedUp   CouponStatus = "used_up"
)

// Coupon is a single- or multi-use percentage discount code.
type Coupon struct {
	ID                 string // UUID
	Code               string // uppercase, unique
	Name               string
	DiscountPercentage decimal.Decimal
	ValidFrom          time.Time
	ValidUntil         time.Time
	MaxUses            int
	CurrentUses        int
	Status             CouponStatus
	CreatedAt          time.Time
}

// CanBeUsed reports whether the coupon is active, inside its validity
// window, and below its usage cap.
func (c *Coupon) CanBeUsed(now time.Time) bool {
	if c.Status != CouponStatusActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	return c.CurrentUses < c.MaxUses
}

// Discount applies the percentage reduction to amount.
func (c *Coupon) Discount(amount decimal.Decimal) decimal.Decimal {
	cut := amount.Mul(c.DiscountPercentage).Div(decimal.NewFromInt(100))
	return amount.Sub(cut)
}
