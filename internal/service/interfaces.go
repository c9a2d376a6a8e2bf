package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gtibank/corebank/internal/domain"
	"github.com/gtibank/corebank/internal/t24"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrAmountPrecision   = errors.New("amount must have at most two decimal places")
	ErrAccountNotOwned   = errors.New("source account does not belong to the user")
	ErrUnknownRail       = errors.New("unknown settlement rail")
	ErrRailNotConfigured = errors.New("no house account configured for rail")
)

// The orchestrators depend on these interfaces, not on concrete
// implementations; internal/store satisfies the storage ones.
//
//go:generate mockgen -destination=mocks/mock_collaborators.go -package=mocks -source=interfaces.go

// MovementStore persists movements. CreateMovement returns
// store.ErrReferenceTaken when the internal reference collides; MarkPosted
// reports false when the movement already left the created state.
type MovementStore interface {
	CreateMovement(ctx context.Context, m *domain.Movement) error
	MarkPosted(ctx context.Context, id uuid.UUID, status domain.MovementStatus, externalRef, failureReason string) (bool, error)
	ResolveMovement(ctx context.Context, id uuid.UUID, status domain.MovementStatus, externalRef, failureReason string) (bool, error)
	GetMovement(ctx context.Context, id uuid.UUID) (*domain.Movement, error)
	MovementsByStatus(ctx context.Context, status domain.MovementStatus) ([]domain.Movement, error)
}

// LedgerStore appends immutable transaction-history entries.
type LedgerStore interface {
	AppendLedgerEntry(ctx context.Context, e *domain.LedgerEntry) error
}

// AccountDirectory resolves local account records. AccountByNumber returns
// store.ErrNotFound for numbers not locally known.
type AccountDirectory interface {
	AccountByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error)
	AccountByNumber(ctx context.Context, number string) (*domain.BankAccount, error)
}

// AuditStore appends manual-edit diffs.
type AuditStore interface {
	AppendAudit(ctx context.Context, a *domain.MovementAudit) error
}

// CoreBankingGateway posts one debit/credit instruction to the core. It is
// not idempotent; the orchestrator calls it at most once per movement.
type CoreBankingGateway interface {
	PostMovement(ctx context.Context, ft t24.FundsTransfer) *t24.Result
}

// ReferenceSource yields collision-checked internal references.
type ReferenceSource interface {
	Generate(ctx context.Context) (string, error)
}
