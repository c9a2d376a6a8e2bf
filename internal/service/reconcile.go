package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/gtibank/corebank/internal/domain"
)

var reconciliationBacklog = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "corebank_reconciliation_backlog",
	Help: "Movements in posted_unknown state awaiting manual reconciliation",
})

var (
	ErrNotReconcilable = errors.New("movement is not awaiting reconciliation")
	ErrNotReversible   = errors.New("movement cannot be reversed")
)

// Reverser requests a compensating reversal in core banking. Satisfied by
// t24.Client.
type Reverser interface {
	ReverseMovement(ctx context.Context, externalRef string) error
}

// BackOffice covers the manual side of the movement lifecycle: the
// reconciliation queue for unknown outcomes, operator resolution once the
// true outcome is confirmed against core records, and core-side reversals.
// Every action leaves field-level audit rows.
type BackOffice struct {
	movements MovementStore
	ledger    LedgerStore
	accounts  AccountDirectory
	tracker   *EditTracker
	reverser  Reverser
	logger    *logrus.Logger
}

func NewBackOffice(movements MovementStore, ledger LedgerStore, accounts AccountDirectory, audits AuditStore, reverser Reverser, logger *logrus.Logger) *BackOffice {
	return &BackOffice{
		movements: movements,
		ledger:    ledger,
		accounts:  accounts,
		tracker:   NewEditTracker(audits, logger),
		reverser:  reverser,
		logger:    logger,
	}
}

// Pending lists the current reconciliation queue, oldest first.
func (b *BackOffice) Pending(ctx context.Context) ([]domain.Movement, error) {
	return b.movements.MovementsByStatus(ctx, domain.StatusPostedUnknown)
}

// Sweep refreshes the backlog gauge and logs each stuck movement. Wired to
// a cron schedule in the api binary. Sweep only observes; resolution is
// always an explicit operator action.
func (b *BackOffice) Sweep(ctx context.Context) {
	pending, err := b.Pending(ctx)
	if err != nil {
		b.logger.WithError(err).Error("reconciliation sweep failed")
		return
	}
	reconciliationBacklog.Set(float64(len(pending)))
	for _, mv := range pending {
		b.logger.WithFields(logrus.Fields{
			"movement_id":  mv.ID,
			"internal_ref": mv.InternalRef,
			"kind":         mv.Kind,
			"created_at":   mv.CreatedAt,
		}).Warn("movement awaiting manual reconciliation")
	}
}

// Resolve settles a posted_unknown movement after the operator confirmed the
// outcome in core banking. A confirmed success also gets the ledger entries
// the original submission skipped when the outcome was lost: the initiator's
// debit and, when the counterparty resolves locally, the mirrored credit.
func (b *BackOffice) Resolve(ctx context.Context, id uuid.UUID, succeeded bool, externalRef, failureReason, editedBy string) (*domain.Movement, error) {
	before, err := b.movements.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	if before.Status.Terminal() || before.Status == domain.StatusCreated {
		return nil, ErrNotReconcilable
	}

	status := domain.StatusPostedFailed
	if succeeded {
		status = domain.StatusPostedSuccess
	}

	ok, err := b.movements.ResolveMovement(ctx, id, status, externalRef, failureReason)
	if err != nil {
		return nil, fmt.Errorf("resolving movement: %w", err)
	}
	if !ok {
		return nil, ErrNotReconcilable
	}

	after := *before
	after.Status = status
	after.ExternalRef = externalRef
	after.FailureReason = failureReason
	after.UpdatedAt = time.Now()

	if err := b.tracker.RecordEdits(ctx, before, &after, editedBy); err != nil {
		b.logger.WithError(err).WithField("movement_id", id).Error("resolution audit failed")
	}

	if succeeded {
		debit := &domain.LedgerEntry{
			ID:           uuid.New(),
			UserID:       after.UserID,
			MovementKind: after.Kind,
			MovementID:   after.ID,
			Direction:    domain.DirectionDebit,
			Category:     after.Kind,
			CreatedAt:    time.Now(),
		}
		if err := b.ledger.AppendLedgerEntry(ctx, debit); err != nil {
			b.logger.WithError(err).WithField("movement_id", id).Error("resolution ledger entry failed")
		}

		if cp := resolveCounterparty(ctx, b.accounts, b.logger, after.Counterparty); cp.Kind == domain.CounterpartyLocal {
			credit := &domain.LedgerEntry{
				ID:           uuid.New(),
				UserID:       cp.Account.UserID,
				MovementKind: after.Kind,
				MovementID:   after.ID,
				Direction:    domain.DirectionCredit,
				Category:     after.Kind,
				CreatedAt:    time.Now(),
			}
			if err := b.ledger.AppendLedgerEntry(ctx, credit); err != nil {
				b.logger.WithError(err).WithField("movement_id", id).Error("resolution credit entry failed")
			}
		}
	}

	b.logger.WithFields(logrus.Fields{
		"movement_id": id,
		"status":      status,
		"edited_by":   editedBy,
	}).Info("movement manually reconciled")
	return &after, nil
}

// Reverse asks core banking to book a compensating reversal for a
// successfully posted movement. Local status does not change; the reversal
// lands as a separate core-side transaction and is recorded in the audit
// trail.
func (b *BackOffice) Reverse(ctx context.Context, id uuid.UUID, editedBy string) error {
	mv, err := b.movements.GetMovement(ctx, id)
	if err != nil {
		return err
	}
	if mv.Status != domain.StatusPostedSuccess || mv.ExternalRef == "" {
		return ErrNotReversible
	}

	if err := b.reverser.ReverseMovement(ctx, mv.ExternalRef); err != nil {
		return fmt.Errorf("reversing movement in core banking: %w", err)
	}

	after := *mv
	after.FailureReason = "reversed by " + editedBy
	if err := b.tracker.RecordEdits(ctx, mv, &after, editedBy); err != nil {
		b.logger.WithError(err).WithField("movement_id", id).Error("reversal audit failed")
	}

	b.logger.WithFields(logrus.Fields{
		"movement_id":  id,
		"external_ref": mv.ExternalRef,
		"edited_by":    editedBy,
	}).Info("movement reversal booked in core banking")
	return nil
}
