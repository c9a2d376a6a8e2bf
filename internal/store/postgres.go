// Package store is the pgx-backed persistence layer. Ledger and audit
// tables are append-only; movement status transitions are guarded so only a
// created movement can change state.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/gtibank/corebank/internal/domain"
)

var (
	// ErrNotFound is returned for any single-row lookup that matched nothing.
	ErrNotFound = errors.New("record not found")
	// ErrReferenceTaken surfaces the unique-constraint violation on a
	// movement's internal reference so the caller can regenerate and retry.
	ErrReferenceTaken = errors.New("internal reference already taken")
)

type Store struct {
	db     *pgxpool.Pool
	logger *logrus.Logger
}

func New(ctx context.Context, connString string, logger *logrus.Logger) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{db: pool, logger: logger}, nil
}

// NewWithPool wraps an existing pool, sharing it with other components.
func NewWithPool(pool *pgxpool.Pool, logger *logrus.Logger) *Store {
	return &Store{db: pool, logger: logger}
}

func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) Pool() *pgxpool.Pool {
	return s.db
}

// AccountByID fetches a local account record.
func (s *Store) AccountByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	return s.scanAccount(s.db.QueryRow(ctx,
		`SELECT id, user_id, account_number, account_name, account_category, currency, balance, restricted
		 FROM bank_accounts WHERE id = $1`, id))
}

// AccountByNumber resolves a counterparty account number against the local
// directory. Returns ErrNotFound when the number is not locally known.
func (s *Store) AccountByNumber(ctx context.Context, number string) (*domain.BankAccount, error) {
	return s.scanAccount(s.db.QueryRow(ctx,
		`SELECT id, user_id, account_number, account_name, account_category, currency, balance, restricted
		 FROM bank_accounts WHERE account_number = $1`, number))
}

func (s *Store) scanAccount(row pgx.Row) (*domain.BankAccount, error) {
	var a domain.BankAccount
	err := row.Scan(&a.ID, &a.UserID, &a.AccountNumber, &a.AccountName,
		&a.AccountCategory, &a.Currency, &a.Balance, &a.Restricted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// RefreshAccount applies a core-banking account snapshot to the local
// directory record, mirroring the out-of-band sync.
func (s *Store) RefreshAccount(ctx context.Context, number string, balance decimal.Decimal, restricted bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE bank_accounts SET balance = $1, restricted = $2, updated_at = now() WHERE account_number = $3`,
		balance, restricted, number)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EmailFor returns the notification address for a user.
func (s *Store) EmailFor(ctx context.Context, userID uuid.UUID) (string, error) {
	var email string
	err := s.db.QueryRow(ctx, "SELECT email FROM users WHERE id = $1", userID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return email, err
}
