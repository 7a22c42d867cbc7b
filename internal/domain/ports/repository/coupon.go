package repository

import (
	"context"

	"driving-school-platform/internal/domain/model"
)

// CouponRepository is the port for discount coupons.
type CouponRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Coupon) error
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Coupon, error)
	// Consume atomically increments the usage counter up to the cap and
	// reports whether a use was taken. It flips the status to used_up
	// when the cap is reached. Re-running past the cap returns false.
	Consume(ctx context.Context, tx Tx, code string) (bool, error)
}
