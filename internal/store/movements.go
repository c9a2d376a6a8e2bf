package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gtibank/corebank/internal/domain"
)

const uniqueViolation = "23505"

const movementColumns = `id, kind, user_id, source_account_id, counterparty, rail, amount, currency,
	purpose, channel, status, COALESCE(failure_reason, ''), COALESCE(external_ref, ''), internal_ref,
	created_at, updated_at`

// CreateMovement persists a movement in its created state. The internal
// reference is enforced unique at the storage layer; a collision comes back
// as ErrReferenceTaken.
func (s *Store) CreateMovement(ctx context.Context, m *domain.Movement) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO movements
		 (id, kind, user_id, source_account_id, counterparty, rail, amount, currency,
		  purpose, channel, status, internal_ref, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		m.ID, m.Kind, m.UserID, m.SourceAccountID, m.Counterparty, m.Rail,
		m.Amount, m.Currency, m.Purpose, m.Channel, m.Status, m.InternalRef,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrReferenceTaken
		}
		return fmt.Errorf("movement insert failed: %w", err)
	}
	return nil
}

// MarkPosted transitions a created movement to its post-call status. The
// guard makes the transition monotonic: a movement that already left the
// created state is never updated again, and the call reports false.
func (s *Store) MarkPosted(ctx context.Context, id uuid.UUID, status domain.MovementStatus, externalRef, failureReason string) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE movements
		 SET status = $1,
		     external_ref = NULLIF($2, ''),
		     failure_reason = NULLIF($3, ''),
		     updated_at = now()
		 WHERE id = $4 AND status = 'created'`,
		status, externalRef, failureReason, id,
	)
	if err != nil {
		return false, fmt.Errorf("movement status update failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ResolveMovement settles a movement whose gateway outcome was unknown,
// once the true outcome has been confirmed against core banking records.
// Guarded the same way as MarkPosted: only posted_unknown rows move.
func (s *Store) ResolveMovement(ctx context.Context, id uuid.UUID, status domain.MovementStatus, externalRef, failureReason string) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE movements
		 SET status = $1,
		     external_ref = NULLIF($2, ''),
		     failure_reason = NULLIF($3, ''),
		     updated_at = now()
		 WHERE id = $4 AND status = 'posted_unknown'`,
		status, externalRef, failureReason, id,
	)
	if err != nil {
		return false, fmt.Errorf("movement resolution failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetMovement fetches one movement by id.
func (s *Store) GetMovement(ctx context.Context, id uuid.UUID) (*domain.Movement, error) {
	return s.scanMovement(s.db.QueryRow(ctx,
		"SELECT "+movementColumns+" FROM movements WHERE id = $1", id))
}

// MovementsByStatus lists movements in a given state, oldest first. The
// reconciliation queue is this query filtered on posted_unknown.
func (s *Store) MovementsByStatus(ctx context.Context, status domain.MovementStatus) ([]domain.Movement, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+movementColumns+" FROM movements WHERE status = $1 ORDER BY created_at", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Movement
	for rows.Next() {
		m, err := s.scanMovementRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// ReferenceExists implements the reference generator's existence check
// against the movement namespace.
func (s *Store) ReferenceExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM movements WHERE internal_ref = $1)", code).Scan(&exists)
	return exists, err
}

// AppendLedgerEntry writes one immutable ledger entry. There is no update or
// delete path for this table.
func (s *Store) AppendLedgerEntry(ctx context.Context, e *domain.LedgerEntry) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO ledger_entries (id, user_id, movement_kind, movement_id, direction, category, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.UserID, e.MovementKind, e.MovementID, e.Direction, e.Category, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ledger entry failed: %w", err)
	}
	return nil
}

// LedgerEntriesForUser lists a user's transaction history, newest first.
func (s *Store) LedgerEntriesForUser(ctx context.Context, userID uuid.UUID) ([]domain.LedgerEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, movement_kind, movement_id, direction, category, created_at
		 FROM ledger_entries WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.MovementKind, &e.MovementID, &e.Direction, &e.Category, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AppendAudit records one field diff in the manual-edit trail.
func (s *Store) AppendAudit(ctx context.Context, a *domain.MovementAudit) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO movement_audits (id, movement_id, field, old_value, new_value, edited_by, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.MovementID, a.Field, a.OldValue, a.NewValue, a.EditedBy, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit entry failed: %w", err)
	}
	return nil
}

func (s *Store) scanMovement(row pgx.Row) (*domain.Movement, error) {
	var m domain.Movement
	err := row.Scan(&m.ID, &m.Kind, &m.UserID, &m.SourceAccountID, &m.Counterparty, &m.Rail,
		&m.Amount, &m.Currency, &m.Purpose, &m.Channel, &m.Status, &m.FailureReason,
		&m.ExternalRef, &m.InternalRef, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) scanMovementRow(rows pgx.Rows) (*domain.Movement, error) {
	var m domain.Movement
	err := rows.Scan(&m.ID, &m.Kind, &m.UserID, &m.SourceAccountID, &m.Counterparty, &m.Rail,
		&m.Amount, &m.Currency, &m.Purpose, &m.Channel, &m.Status, &m.FailureReason,
		&m.ExternalRef, &m.InternalRef, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
