package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gtibank/corebank/internal/domain"
)

// EditTracker records manual back-office corrections to a movement as
// field-level diffs. Edits never touch the ledger; the audit trail is the
// only record of what changed.
type EditTracker struct {
	audits AuditStore
	logger *logrus.Logger
}

func NewEditTracker(audits AuditStore, logger *logrus.Logger) *EditTracker {
	return &EditTracker{audits: audits, logger: logger}
}

// RecordEdits diffs the movement before and after an edit and appends one
// audit row per changed field. Unchanged fields produce no rows.
func (t *EditTracker) RecordEdits(ctx context.Context, before, after *domain.Movement, editedBy string) error {
	now := time.Now()
	for _, d := range diffMovements(before, after) {
		audit := &domain.MovementAudit{
			ID:         uuid.New(),
			MovementID: before.ID,
			Field:      d.field,
			OldValue:   d.old,
			NewValue:   d.new,
			EditedBy:   editedBy,
			CreatedAt:  now,
		}
		if err := t.audits.AppendAudit(ctx, audit); err != nil {
			return err
		}
		t.logger.WithFields(logrus.Fields{
			"movement_id": before.ID,
			"field":       d.field,
			"edited_by":   editedBy,
		}).Info("movement edit recorded")
	}
	return nil
}

type fieldDiff struct {
	field string
	old   string
	new   string
}

func diffMovements(before, after *domain.Movement) []fieldDiff {
	var diffs []fieldDiff
	add := func(field, old, new string) {
		if old != new {
			diffs = append(diffs, fieldDiff{field: field, old: old, new: new})
		}
	}
	add("counterparty", before.Counterparty, after.Counterparty)
	add("purpose", before.Purpose, after.Purpose)
	add("channel", before.Channel, after.Channel)
	add("amount", before.Amount.StringFixed(2), after.Amount.StringFixed(2))
	add("currency", before.Currency, after.Currency)
	add("status", string(before.Status), string(after.Status))
	add("external_ref", before.ExternalRef, after.ExternalRef)
	add("failure_reason", before.FailureReason, after.FailureReason)
	return diffs
}
