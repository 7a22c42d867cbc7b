package model

import (
	"github.com/shopspring/decimal"

	"driving-school-platform/internal/domain"
)

// Plan identifies a subscription tier.
type Plan string

const (
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

func (p Plan) Valid() bool {
	return p == PlanStandard || p == PlanPremium
}

// UnlimitedAccounts is the sentinel capacity for tiers without an account cap.
const UnlimitedAccounts = 999999

// PlanDurationDays is the subscription window for every tier.
const PlanDurationDays = 30

// RenewalWindowDays is how close to expiry a renewal becomes possible.
const RenewalWindowDays = 5

const (
	standardBaseAccounts = 200
	standardRenewalBonus = 50
)

// PlanFeatures are the feature flags bundled with a tier.
type PlanFeatures struct {
	CanManageVehicles        bool
	CanAccessAdvancedStats   bool
	CanManageFinances        bool
	CanAccessPrioritySupport bool
	CanUseMessaging          bool
	CanExportData            bool
}

// PlanDefinition is an immutable description of a tier produced by the
// catalog and passed by value. It carries everything the workflow needs:
// price, capacity base, rank for upgrade-direction checks, and features.
type PlanDefinition struct {
	Name         Plan
	DisplayName  string
	Price        decimal.Decimal
	BaseAccounts int
	RenewalBonus int
	DurationDays int
	Rank         int
	Features     PlanFeatures
}

var planCatalog = map[Plan]PlanDefinition{
	PlanStandard: {
		Name:         PlanStandard,
		DisplayName:  "Standard",
		Price:        decimal.NewFromInt(49),
		BaseAccounts: standardBaseAccounts,
		RenewalBonus: standardRenewalBonus,
		DurationDays: PlanDurationDays,
		Rank:         1,
		Features: PlanFeatures{
			CanManageVehicles:        true,
			CanAccessPrioritySupport: true,
			CanExportData:            true,
		},
	},
	PlanPremium: {
		Name:         PlanPremium,
		DisplayName:  "Premium",
		Price:        decimal.NewFromInt(99),
		BaseAccounts: UnlimitedAccounts,
		RenewalBonus: 0,
		DurationDays: PlanDurationDays,
		Rank:         2,
		Features: PlanFeatures{
			CanManageVehicles:        true,
			CanAccessAdvancedStats:   true,
			CanManageFinances:        true,
			CanAccessPrioritySupport: true,
			CanUseMessaging:          true,
			CanExportData:            true,
		},
	},
}

// PlanDefinitionOf returns the catalog entry for a tier.
func PlanDefinitionOf(p Plan) (PlanDefinition, error) {
	def, ok := planCatalog[p]
	if !ok {
		return PlanDefinition{}, domain.ErrInvalidArgument
	}
	return def, nil
}

// AllPlans lists the catalog in rank order.
func AllPlans() []PlanDefinition {
	return []PlanDefinition{planCatalog[PlanStandard], planCatalog[PlanPremium]}
}

// PlanMaxAccounts computes the account ceiling for a tier at a given
// renewal count. Standard grows by 50 per renewal; premium is unlimited.
func PlanMaxAccounts(p Plan, renewalCount int) int {
	def, ok := planCatalog[p]
	if !ok {
		return 0
	}
	if def.BaseAccounts == UnlimitedAccounts {
		return UnlimitedAccounts
	}
	if renewalCount < 0 {
		renewalCount = 0
	}
	return def.BaseAccounts + renewalCount*def.RenewalBonus
}

// PlanRank returns the tier's position in the upgrade hierarchy; unknown
// plans rank 0 so they can never pass the strictly-greater upgrade check.
func PlanRank(p Plan) int {
	return planCatalog[p].Rank
}

// PlanPrice returns the tier's price in currency units.
func PlanPrice(p Plan) decimal.Decimal {
	return planCatalog[p].Price
}
