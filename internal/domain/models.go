package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind tags the concrete variant of a monetary instruction.
type MovementKind string

const (
	MovementTransfer   MovementKind = "transfer"
	MovementPayment    MovementKind = "payment"
	MovementDeposit    MovementKind = "deposit"
	MovementWithdrawal MovementKind = "withdrawal"
)

// MovementStatus is the movement state machine. Only StatusCreated may
// transition; every post-call state is terminal or reconciliation-pending.
type MovementStatus string

const (
	StatusCreated       MovementStatus = "created"
	StatusPostedSuccess MovementStatus = "posted_success"
	StatusPostedFailed  MovementStatus = "posted_failed"
	StatusPostedUnknown MovementStatus = "posted_unknown"
)

// Terminal reports whether no further automatic transition is permitted.
// posted_unknown is not terminal: it waits for manual reconciliation.
func (s MovementStatus) Terminal() bool {
	return s == StatusPostedSuccess || s == StatusPostedFailed
}

// Rail selects the settlement route for a movement. Pooled rails settle
// against a configured house account; direct rails settle against the
// user-supplied recipient account.
type Rail string

const (
	RailOwnAccount    Rail = "own_account"
	RailSameBank      Rail = "same_bank"
	RailCrossBank     Rail = "cross_bank"
	RailInternational Rail = "international"
	RailWallet        Rail = "wallet"
	RailAirtime       Rail = "airtime"
	RailTax           Rail = "tax"
	RailBiller        Rail = "biller"
)

// Movement is a monetary instruction initiated by a user from a source
// account. The internal reference is globally unique and immutable once
// assigned; currency, once defaulted from the source account, is fixed.
type Movement struct {
	ID              uuid.UUID       `json:"id"`
	Kind            MovementKind    `json:"kind"`
	UserID          uuid.UUID       `json:"user_id"`
	SourceAccountID uuid.UUID       `json:"source_account_id"`
	Counterparty    string          `json:"counterparty"`
	Rail            Rail            `json:"rail"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Purpose         string          `json:"purpose"`
	Channel         string          `json:"channel"`
	Status          MovementStatus  `json:"status"`
	FailureReason   string          `json:"failure_reason,omitempty"`
	ExternalRef     string          `json:"external_ref,omitempty"`
	InternalRef     string          `json:"internal_ref"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Direction of a ledger entry relative to the entry's owner.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// LedgerEntry is an immutable record that a user's account was debited or
// credited by a movement. The movement association is a tagged pair
// (kind + id); consumers switch on MovementKind explicitly.
type LedgerEntry struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	MovementKind MovementKind `json:"movement_kind"`
	MovementID   uuid.UUID    `json:"movement_id"`
	Direction    Direction    `json:"direction"`
	Category     MovementKind `json:"category"`
	CreatedAt    time.Time    `json:"created_at"`
}

// BankAccount is a locally known account record, synced from core banking
// out of band.
type BankAccount struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	AccountNumber   string          `json:"account_number"`
	AccountName     string          `json:"account_name"`
	AccountCategory string          `json:"account_category"`
	Currency        string          `json:"currency"`
	Balance         decimal.Decimal `json:"balance"`
	Restricted      bool            `json:"restricted"`
}

// CounterpartyKind names the outcome of counterparty resolution so callers
// and tests can assert on which branch was taken.
type CounterpartyKind string

const (
	CounterpartyLocal    CounterpartyKind = "local"
	CounterpartyExternal CounterpartyKind = "external"
)

// Counterparty is the result of resolving a recipient account number
// against the local directory. Account is set only for CounterpartyLocal.
type Counterparty struct {
	Kind    CounterpartyKind
	Account *BankAccount
}

// MovementAudit is one field-level diff in the append-only manual-edit
// trail. This is a separate log from the ledger.
type MovementAudit struct {
	ID         uuid.UUID `json:"id"`
	MovementID uuid.UUID `json:"movement_id"`
	Field      string    `json:"field"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	EditedBy   string    `json:"edited_by"`
	CreatedAt  time.Time `json:"created_at"`
}
