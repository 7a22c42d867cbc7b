package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"driving-school-platform/internal/domain"
)

type EntryType string

const (
	EntryTypeExpense EntryType = "expense"
	EntryTypeRevenue EntryType = "revenue"
)

// Accounting categories used by the subscription workflow.
const (
	CategorySubscription = "subscription"
)

// AccountingEntry is an append-only ledger line. Subscription charges are
// recorded as expenses from the tenant's point of view.
type AccountingEntry struct {
	ID          string // UUID
	TenantID    string
	EntryType   EntryType
	Category    string
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	CreatedAt   time.Time
}

// NewSubscriptionCharge builds the ledger line created when a subscription
// request is approved.
func NewSubscriptionCharge(id, tenantID string, plan Plan, amount decimal.Decimal, isRenewal bool, date time.Time) (*AccountingEntry, error) {
	if id == "" || tenantID == "" || !plan.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	def, err := PlanDefinitionOf(plan)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("%s plan subscription", def.DisplayName)
	if isRenewal {
		desc = fmt.Sprintf("%s plan renewal", def.DisplayName)
	}
	return &AccountingEntry{
		ID:          id,
		TenantID:    tenantID,
		EntryType:   EntryTypeExpense,
		Category:    CategorySubscription,
		Description: desc,
		Amount:      amount,
		Date:        date,
		CreatedAt:   time.Now(),
	}, nil
}
