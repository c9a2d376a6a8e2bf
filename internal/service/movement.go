package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/gtibank/corebank/internal/domain"
	"github.com/gtibank/corebank/internal/limits"
	"github.com/gtibank/corebank/internal/store"
	"github.com/gtibank/corebank/internal/t24"
)

var movementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "corebank_movements_total",
	Help: "Movements processed, labeled by kind and final status",
}, []string{"kind", "status"})

// How many times a unique-constraint collision on the internal reference is
// retried with a fresh code before giving up.
const insertAttempts = 5

// MovementInput carries the validated attributes of a submission from the
// inbound layer.
type MovementInput struct {
	UserID          uuid.UUID
	SourceAccountID uuid.UUID
	Counterparty    string
	Amount          decimal.Decimal
	Currency        string
	Purpose         string
	Channel         string
	Rail            domain.Rail
}

// Notifier is what the engine needs from the notification collaborator.
// Satisfied by notify.EmailSender.
type Notifier interface {
	MovementSucceeded(ctx context.Context, mv *domain.Movement)
	PaymentFailed(ctx context.Context, mv *domain.Movement)
}

// engine sequences a movement submission: validation and counterparty
// routing, local persistence, limit reservation, the single gateway post, status
// reconciliation, ledger writes and async side effects. Shared by the
// transfer and payment orchestrators.
type engine struct {
	movements  MovementStore
	ledger     LedgerStore
	accounts   AccountDirectory
	accounting limits.Accounting
	gateway    CoreBankingGateway
	refs       ReferenceSource
	notifier   Notifier
	routing    Routing
	logger     *logrus.Logger
}

// submit implements the orchestration workflow. Validation and limit
// failures are the only errors returned without a posted movement; every
// gateway outcome comes back as a movement in its reconciled state.
func (e *engine) submit(ctx context.Context, kind domain.MovementKind, in MovementInput) (*domain.Movement, error) {
	now := time.Now()

	// 1. Validate.
	if !in.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if in.Amount.Exponent() < -2 {
		return nil, ErrAmountPrecision
	}
	source, err := e.accounts.AccountByID(ctx, in.SourceAccountID)
	if err != nil {
		return nil, fmt.Errorf("resolving source account: %w", err)
	}
	if source.UserID != in.UserID {
		return nil, ErrAccountNotOwned
	}

	currency := in.Currency
	if currency == "" {
		currency = source.Currency
	}

	// Routing misconfiguration is a validation failure: resolving the
	// settlement counterparty here means a refused rail leaves nothing
	// behind in created state.
	settlement, err := e.routing.SettlementAccount(in.Rail, in.Counterparty)
	if err != nil {
		return nil, err
	}

	// 2. Persist in created state with a unique internal reference.
	mv := &domain.Movement{
		ID:              uuid.New(),
		Kind:            kind,
		UserID:          in.UserID,
		SourceAccountID: source.ID,
		Counterparty:    in.Counterparty,
		Rail:            in.Rail,
		Amount:          in.Amount,
		Currency:        currency,
		Purpose:         in.Purpose,
		Channel:         in.Channel,
		Status:          domain.StatusCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.persistWithReference(ctx, mv); err != nil {
		return nil, err
	}

	// 3. Reserve against all applicable expense limits. A denial aborts
	// before any remote call; the movement stays in created state and is
	// not resubmitted automatically.
	reservation, err := e.accounting.Reserve(ctx, source.ID, mv.Purpose, mv.Amount, now)
	if err != nil {
		if errors.Is(err, limits.ErrLimitExceeded) {
			e.logger.WithFields(logrus.Fields{
				"movement_id": mv.ID,
				"account_id":  source.ID,
				"amount":      mv.Amount.StringFixed(2),
			}).Warn("movement denied by expense limit")
			return nil, limits.ErrLimitExceeded
		}
		// Bookkeeping trouble never blocks a movement.
		limits.FailOpen()
		e.logger.WithError(err).WithField("movement_id", mv.ID).
			Error("expense-limit reservation failed open")
		reservation = &limits.Reservation{Amount: mv.Amount}
	}

	// 4. Post to core banking - at most once per movement.
	result := e.gateway.PostMovement(ctx, t24.FundsTransfer{
		DebitAccount:    source.AccountNumber,
		CreditAccount:   settlement,
		Amount:          mv.Amount,
		Currency:        mv.Currency,
		Narrative:       mv.Purpose,
		TransactionType: transactionType(kind),
		Channel:         mv.Channel,
	})

	// 5-7. Reconcile the gateway outcome into the movement.
	switch result.Outcome {
	case t24.OutcomeSuccess:
		e.transition(ctx, mv, domain.StatusPostedSuccess, result.ExternalRef, "")
		e.writeLedger(ctx, mv)
		e.commitAsync(reservation, mv)

	case t24.OutcomeFailure:
		e.transition(ctx, mv, domain.StatusPostedFailed, "", result.Reason)
		e.releaseAsync(reservation)
		if kind == domain.MovementPayment {
			// Transfers intentionally send no failure notification.
			e.notifyFailureAsync(mv)
		}

	case t24.OutcomeTransportError:
		e.transition(ctx, mv, domain.StatusPostedUnknown, "", result.Reason)
		e.releaseAsync(reservation)
		e.logger.WithFields(logrus.Fields{
			"movement_id":  mv.ID,
			"internal_ref": mv.InternalRef,
			"reason":       result.Reason,
		}).Error("movement outcome unknown, queued for reconciliation")
	}

	movementsTotal.WithLabelValues(string(kind), string(mv.Status)).Inc()
	return mv, nil
}

func (e *engine) persistWithReference(ctx context.Context, mv *domain.Movement) error {
	for attempt := 0; attempt < insertAttempts; attempt++ {
		ref, err := e.refs.Generate(ctx)
		if err != nil {
			return fmt.Errorf("generating internal reference: %w", err)
		}
		mv.InternalRef = ref

		err = e.movements.CreateMovement(ctx, mv)
		if err == nil {
			return nil
		}
		if errors.Is(err, store.ErrReferenceTaken) {
			// Lost the check-then-write race; draw again.
			continue
		}
		return err
	}
	return fmt.Errorf("persisting movement: %w", store.ErrReferenceTaken)
}

// transition applies the guarded status update. The store refuses to touch a
// movement that already left the created state, which is what makes the
// state machine monotonic.
func (e *engine) transition(ctx context.Context, mv *domain.Movement, status domain.MovementStatus, externalRef, failureReason string) {
	ok, err := e.movements.MarkPosted(ctx, mv.ID, status, externalRef, failureReason)
	if err != nil {
		e.logger.WithError(err).WithField("movement_id", mv.ID).
			Error("failed to record movement status")
		return
	}
	if !ok {
		e.logger.WithFields(logrus.Fields{
			"movement_id": mv.ID,
			"status":      status,
		}).Warn("movement already reconciled, refusing second transition")
		return
	}
	mv.Status = status
	mv.ExternalRef = externalRef
	mv.FailureReason = failureReason
	mv.UpdatedAt = time.Now()
}

// writeLedger records the initiator's debit and, when the recipient account
// number resolves locally, the mirrored credit. The debit completes before
// submit returns; a failed credit resolution skips the credit silently.
func (e *engine) writeLedger(ctx context.Context, mv *domain.Movement) {
	debit := &domain.LedgerEntry{
		ID:           uuid.New(),
		UserID:       mv.UserID,
		MovementKind: mv.Kind,
		MovementID:   mv.ID,
		Direction:    domain.DirectionDebit,
		Category:     mv.Kind,
		CreatedAt:    time.Now(),
	}
	if err := e.ledger.AppendLedgerEntry(ctx, debit); err != nil {
		e.logger.WithError(err).WithField("movement_id", mv.ID).
			Error("debit ledger entry failed")
	}

	cp := resolveCounterparty(ctx, e.accounts, e.logger, mv.Counterparty)
	if cp.Kind != domain.CounterpartyLocal {
		return
	}
	credit := &domain.LedgerEntry{
		ID:           uuid.New(),
		UserID:       cp.Account.UserID,
		MovementKind: mv.Kind,
		MovementID:   mv.ID,
		Direction:    domain.DirectionCredit,
		Category:     mv.Kind,
		CreatedAt:    time.Now(),
	}
	if err := e.ledger.AppendLedgerEntry(ctx, credit); err != nil {
		e.logger.WithError(err).WithField("movement_id", mv.ID).
			Error("credit ledger entry failed")
	}
}

// resolveCounterparty is best-effort: a miss or lookup error yields the
// external branch, never an error. Shared with the back-office resolution
// path so both write the same credit entries.
func resolveCounterparty(ctx context.Context, accounts AccountDirectory, logger *logrus.Logger, number string) domain.Counterparty {
	account, err := accounts.AccountByNumber(ctx, number)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.WithError(err).WithField("counterparty", number).
				Warn("counterparty lookup failed, treating as external")
		}
		return domain.Counterparty{Kind: domain.CounterpartyExternal}
	}
	return domain.Counterparty{Kind: domain.CounterpartyLocal, Account: account}
}

// Side effects below run detached from the request context: the movement's
// own state is already settled and these must not be cancelled with it.

func (e *engine) commitAsync(r *limits.Reservation, mv *domain.Movement) {
	go func() {
		ctx := context.Background()
		if err := e.accounting.Commit(ctx, r); err != nil {
			e.logger.WithError(err).Error("expense-limit commit failed")
		}
		e.notifier.MovementSucceeded(ctx, mv)
	}()
}

func (e *engine) releaseAsync(r *limits.Reservation) {
	go func() {
		if err := e.accounting.Release(context.Background(), r); err != nil {
			e.logger.WithError(err).Error("expense-limit release failed")
		}
	}()
}

func (e *engine) notifyFailureAsync(mv *domain.Movement) {
	go e.notifier.PaymentFailed(context.Background(), mv)
}

func transactionType(kind domain.MovementKind) string {
	if kind == domain.MovementPayment {
		return "ACPAY"
	}
	return "ACTRF"
}
