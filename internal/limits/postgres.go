package limits

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PG is the production Accounting backed by Postgres. Reserve runs a single
// transaction that locks every applicable limit row with FOR UPDATE before
// evaluating it, so the applicability check and the reservation increment are
// one critical section per limit.
type PG struct {
	db     *pgxpool.Pool
	logger *logrus.Logger
}

func NewPG(db *pgxpool.Pool, logger *logrus.Logger) *PG {
	return &PG{db: db, logger: logger}
}

// The asOf parameter is cast to date on both comparisons: the columns are
// DATE and the window is inclusive on both ends, so comparing against a
// timestamp would drop the limit for the whole of its final day.
const selectApplicable = `
	SELECT id, category, limit_type, limit_amount, amount_spent, amount_reserved
	FROM expense_limits
	WHERE account_id = $1
	  AND status = 'active'
	  AND start_date <= $2::date AND end_date >= $2::date`

type limitRow struct {
	id          uuid.UUID
	category    string
	limitType   string
	limitAmount decimal.Decimal
	spent       decimal.Decimal
	reserved    decimal.Decimal
}

func scanLimits(rows pgx.Rows) ([]limitRow, error) {
	defer rows.Close()
	var out []limitRow
	for rows.Next() {
		var l limitRow
		if err := rows.Scan(&l.id, &l.category, &l.limitType, &l.limitAmount, &l.spent, &l.reserved); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (l limitRow) applies(purpose string) bool {
	if l.limitType == "categorical_budget" {
		return l.category == purpose
	}
	return true
}

// Check is the read-only preview: denied iff any applicable limit would be
// exceeded by the amount on top of confirmed spend. Lookup failures fail
// open, logged and counted.
func (p *PG) Check(ctx context.Context, accountID uuid.UUID, purpose string, amount decimal.Decimal, asOf time.Time) error {
	rows, err := p.db.Query(ctx, selectApplicable, accountID, asOf)
	if err != nil {
		p.failOpen("check", accountID, err)
		return nil
	}
	found, err := scanLimits(rows)
	if err != nil {
		p.failOpen("check", accountID, err)
		return nil
	}
	for _, lim := range found {
		if lim.applies(purpose) && lim.spent.Add(amount).GreaterThan(lim.limitAmount) {
			return ErrLimitExceeded
		}
	}
	return nil
}

// Reserve locks all applicable limits, denies if any would be exceeded by
// spent+reserved+amount, otherwise increments amount_reserved on each and
// returns the token. Infrastructure failures fail open with an empty
// reservation.
func (p *PG) Reserve(ctx context.Context, accountID uuid.UUID, purpose string, amount decimal.Decimal, asOf time.Time) (*Reservation, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		p.failOpen("reserve", accountID, err)
		return &Reservation{Amount: amount}, nil
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, selectApplicable+" FOR UPDATE", accountID, asOf)
	if err != nil {
		p.failOpen("reserve", accountID, err)
		return &Reservation{Amount: amount}, nil
	}
	found, err := scanLimits(rows)
	if err != nil {
		p.failOpen("reserve", accountID, err)
		return &Reservation{Amount: amount}, nil
	}

	res := &Reservation{Amount: amount}
	for _, lim := range found {
		if !lim.applies(purpose) {
			continue
		}
		if lim.spent.Add(lim.reserved).Add(amount).GreaterThan(lim.limitAmount) {
			return nil, ErrLimitExceeded
		}
		res.LimitIDs = append(res.LimitIDs, lim.id)
	}

	for _, id := range res.LimitIDs {
		if _, err := tx.Exec(ctx,
			"UPDATE expense_limits SET amount_reserved = amount_reserved + $1 WHERE id = $2",
			amount, id,
		); err != nil {
			p.failOpen("reserve", accountID, err)
			return &Reservation{Amount: amount}, nil
		}
	}

	if err := tx.Commit(ctx); err != nil {
		p.failOpen("reserve", accountID, err)
		return &Reservation{Amount: amount}, nil
	}
	return res, nil
}

// Commit converts the reservation into permanent spend. Errors are logged
// and absorbed: loss of spend accounting is preferred over failing a
// movement that already posted.
func (p *PG) Commit(ctx context.Context, r *Reservation) error {
	if r.Empty() {
		return nil
	}
	for _, id := range r.LimitIDs {
		if _, err := p.db.Exec(ctx,
			`UPDATE expense_limits
			 SET amount_spent = amount_spent + $1, amount_reserved = amount_reserved - $1
			 WHERE id = $2`,
			r.Amount, id,
		); err != nil {
			p.failOpen("commit", id, err)
		}
	}
	return nil
}

// Release drops the reservation without recording spend.
func (p *PG) Release(ctx context.Context, r *Reservation) error {
	if r.Empty() {
		return nil
	}
	for _, id := range r.LimitIDs {
		if _, err := p.db.Exec(ctx,
			"UPDATE expense_limits SET amount_reserved = amount_reserved - $1 WHERE id = $2",
			r.Amount, id,
		); err != nil {
			p.failOpen("release", id, err)
		}
	}
	return nil
}

func (p *PG) failOpen(op string, id uuid.UUID, err error) {
	FailOpen()
	p.logger.WithError(err).WithFields(logrus.Fields{
		"op": op,
		"id": id,
	}).Error("expense-limit accounting failed open")
}
