package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LimitType scopes a budget ceiling to all spend on an account or to spend
// matching a purpose category.
type LimitType string

const (
	AccountBudget     LimitType = "account_budget"
	CategoricalBudget LimitType = "categorical_budget"
)

type LimitStatus string

const (
	LimitActive   LimitStatus = "active"
	LimitInactive LimitStatus = "inactive"
)

// ExpenseLimit is a budget ceiling with an inclusive validity window.
// AmountReserved tracks in-flight movements that passed the limit check but
// have not yet been confirmed posted.
type ExpenseLimit struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	AccountID      uuid.UUID       `json:"account_id"`
	Category       string          `json:"category,omitempty"`
	Type           LimitType       `json:"limit_type"`
	LimitAmount    decimal.Decimal `json:"limit_amount"`
	AmountSpent    decimal.Decimal `json:"amount_spent"`
	AmountReserved decimal.Decimal `json:"amount_reserved"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	Status         LimitStatus     `json:"status"`
}

// AppliesTo reports whether the limit constrains a movement with the given
// purpose on the given date. Account budgets constrain all spend; categorical
// budgets only spend whose purpose matches the category. The validity window
// is inclusive on both ends.
func (l *ExpenseLimit) AppliesTo(purpose string, asOf time.Time) bool {
	if l.Status != LimitActive {
		return false
	}
	day := asOf.Truncate(24 * time.Hour)
	if day.Before(l.StartDate.Truncate(24*time.Hour)) || day.After(l.EndDate.Truncate(24*time.Hour)) {
		return false
	}
	if l.Type == CategoricalBudget {
		return l.Category == purpose
	}
	return true
}

// WouldExceed reports whether accepting an additional amount would push
// confirmed plus reserved spend past the ceiling.
func (l *ExpenseLimit) WouldExceed(amount decimal.Decimal) bool {
	return l.AmountSpent.Add(l.AmountReserved).Add(amount).GreaterThan(l.LimitAmount)
}
