// File: cmd/seed/main.go
// Seeds a demo tenant and a pair of coupons for local development.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"driving-school-platform/internal/config"
	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/repository"
	pg "driving-school-platform/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	tenants := pg.NewTenantRepo(pool)
	coupons := pg.NewCouponRepo(pool)

	tenant, err := model.NewTenant(uuid.NewString(), uuid.NewString(), "Demo Driving School")
	if err != nil {
		log.Fatalf("tenant: %v", err)
	}
	tenant.ApprovalStatus = model.ApprovalStatusApproved
	if err := tenants.Save(ctx, repository.NoTX, tenant); err != nil {
		log.Fatalf("save tenant: %v", err)
	}
	log.Printf("seeded tenant %s (%s)", tenant.ID, tenant.Name)

	now := time.Now()
	for _, c := range []*model.Coupon{
		{
			ID:                 uuid.NewString(),
			Code:               "WELCOME10",
			Name:               "Welcome discount",
			DiscountPercentage: decimal.NewFromInt(10),
			ValidFrom:          now,
			ValidUntil:         now.AddDate(0, 3, 0),
			MaxUses:            100,
			Status:             model.CouponStatusActive,
			CreatedAt:          now,
		},
		{
			ID:                 uuid.NewString(),
			Code:               "LAUNCH50",
			Name:               "Launch promotion",
			DiscountPercentage: decimal.NewFromInt(50),
			ValidFrom:          now,
			ValidUntil:         now.AddDate(0, 1, 0),
			MaxUses:            10,
			Status:             model.CouponStatusActive,
			CreatedAt:          now,
		},
	} {
		if err := coupons.Save(ctx, repository.NoTX, c); err != nil {
			log.Fatalf("save coupon %s: %v", c.Code, err)
		}
		log.Printf("seeded coupon %s (%s%%)", c.Code, c.DiscountPercentage)
	}
}
