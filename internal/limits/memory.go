package limits

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gtibank/corebank/internal/domain"
)

// Memory is an in-process Accounting with the same reserve-and-commit
// semantics as PG, for tests and local development. A single mutex stands in
// for the row locks.
type Memory struct {
	mu     sync.Mutex
	limits map[uuid.UUID]*domain.ExpenseLimit
}

func NewMemory(seed ...*domain.ExpenseLimit) *Memory {
	m := &Memory{limits: make(map[uuid.UUID]*domain.ExpenseLimit)}
	for _, l := range seed {
		m.limits[l.ID] = l
	}
	return m
}

// Limit returns a copy of the stored limit, for assertions.
func (m *Memory) Limit(id uuid.UUID) (domain.ExpenseLimit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.limits[id]
	if !ok {
		return domain.ExpenseLimit{}, false
	}
	return *l, true
}

func (m *Memory) applicable(accountID uuid.UUID, purpose string, asOf time.Time) []*domain.ExpenseLimit {
	var out []*domain.ExpenseLimit
	for _, l := range m.limits {
		if l.AccountID == accountID && l.AppliesTo(purpose, asOf) {
			out = append(out, l)
		}
	}
	return out
}

func (m *Memory) Check(_ context.Context, accountID uuid.UUID, purpose string, amount decimal.Decimal, asOf time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.applicable(accountID, purpose, asOf) {
		if l.AmountSpent.Add(amount).GreaterThan(l.LimitAmount) {
			return ErrLimitExceeded
		}
	}
	return nil
}

func (m *Memory) Reserve(_ context.Context, accountID uuid.UUID, purpose string, amount decimal.Decimal, asOf time.Time) (*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := m.applicable(accountID, purpose, asOf)
	res := &Reservation{Amount: amount}
	for _, l := range matched {
		if l.WouldExceed(amount) {
			return nil, ErrLimitExceeded
		}
		res.LimitIDs = append(res.LimitIDs, l.ID)
	}
	for _, l := range matched {
		l.AmountReserved = l.AmountReserved.Add(amount)
	}
	return res, nil
}

func (m *Memory) Commit(_ context.Context, r *Reservation) error {
	if r.Empty() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range r.LimitIDs {
		if l, ok := m.limits[id]; ok {
			l.AmountSpent = l.AmountSpent.Add(r.Amount)
			l.AmountReserved = l.AmountReserved.Sub(r.Amount)
		}
	}
	return nil
}

func (m *Memory) Release(_ context.Context, r *Reservation) error {
	if r.Empty() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range r.LimitIDs {
		if l, ok := m.limits[id]; ok {
			l.AmountReserved = l.AmountReserved.Sub(r.Amount)
		}
	}
	return nil
}
