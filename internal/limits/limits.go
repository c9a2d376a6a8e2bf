// Package limits enforces budget ceilings on movements. The observed
// check-then-record flow is reframed as an atomic reserve-and-commit:
// Reserve increments a pending amount under a per-limit lock, Commit converts
// it to permanent spend, Release drops it on failure or abort.
package limits

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// ErrLimitExceeded is the only error an Accounting implementation returns for
// a business denial; everything else is infrastructure trouble.
var ErrLimitExceeded = errors.New("expense limit exceeded")

var accountingFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "corebank_accounting_failures_total",
	Help: "Expense-limit lookups or updates that failed open",
})

// Reservation names the limits an amount was reserved against. An empty
// reservation is valid: it means no active limit applied (or accounting
// failed open) and Commit/Release become no-ops.
type Reservation struct {
	Amount   decimal.Decimal
	LimitIDs []uuid.UUID
}

// Empty reports whether the reservation holds nothing to commit or release.
func (r *Reservation) Empty() bool {
	return r == nil || len(r.LimitIDs) == 0
}

// Accounting answers "would this movement exceed a limit?" and tracks spend
// against active budgets.
//
// Check evaluates all active, in-window limits for the account without
// reserving anything: denied iff any applicable limit has
// amount_spent + amount > limit_amount.
//
// Reserve applies the same matching rule but atomically increments
// amount_reserved on every applicable limit, holding a per-limit critical
// section across the check and the increment so two concurrent movements
// cannot both pass on stale spend. Commit moves reserved to spent; Release
// returns it.
//
// Implementations absorb their own infrastructure failures where the
// transaction must not be blocked on bookkeeping: callers may still receive
// an infrastructure error and should treat it as fail-open, logged.
type Accounting interface {
	Check(ctx context.Context, accountID uuid.UUID, purpose string, amount decimal.Decimal, asOf time.Time) error
	Reserve(ctx context.Context, accountID uuid.UUID, purpose string, amount decimal.Decimal, asOf time.Time) (*Reservation, error)
	Commit(ctx context.Context, r *Reservation) error
	Release(ctx context.Context, r *Reservation) error
}

// FailOpen records one fail-open accounting event. Exposed so orchestrators
// counting their own defensive fail-opens hit the same metric.
func FailOpen() {
	accountingFailures.Inc()
}
