package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"driving-school-platform/internal/domain"
	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/repository"
)

var _ repository.CouponRepository = (*couponRepo)(nil)

type couponRepo struct {
	pool *pgxpool.Pool
}

func NewCouponRepo(pool *pgxpool.Pool) *couponRepo {
	return &couponRepo{pool: pool}
}

func (r *couponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	const q = `
INSERT INTO coupons (id, code, name, discount_percentage, valid_from, valid_until, max_uses, current_uses, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (code) DO UPDATE SET
  name=$3, discount_percentage=$4, valid_from=$5, valid_until=$6,
  max_uses=$7, current_uses=$8, status=$9;`

	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.Code, c.Name, c.DiscountPercentage, c.ValidFrom, c.ValidUntil,
		c.MaxUses, c.CurrentUses, string(c.Status), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save coupon: %w", err)
	}
	return nil
}

func (r *couponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	const q = `
SELECT id, code, name, discount_percentage, valid_from, valid_until, max_uses, current_uses, status, created_at
  FROM coupons
 WHERE code = $1;`
	row, err := queryRowSQL(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	var c model.Coupon
	var status string
	err = row.Scan(&c.ID, &c.Code, &c.Name, &c.DiscountPercentage, &c.ValidFrom, &c.ValidUntil,
		&c.MaxUses, &c.CurrentUses, &status, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan coupon: %w", err)
	}
	c.Status = model.CouponStatus(status)
	return &c, nil
}

// Consume takes one use with a conditional update so concurrent submits
// can never push the counter past the cap. The status flips to used_up on
// the increment that reaches it.
func (r *couponRepo) Consume(ctx context.Context, tx repository.Tx, code string) (bool, error) {
	const q = `
UPDATE coupons
   SET current_uses = current_uses + 1,
       status = CASE WHEN current_uses + 1 >= max_uses THEN 'used_up' ELSE status END
 WHERE code = $1 AND current_uses < max_uses;`
	tag, err := execSQL(ctx, r.pool, tx, q, code)
	if err != nil {
		return false, fmt.Errorf("consume coupon: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
