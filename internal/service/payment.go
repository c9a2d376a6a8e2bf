package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gtibank/corebank/internal/domain"
	"github.com/gtibank/corebank/internal/limits"
)

// PaymentService orchestrates bill-style payments over the payment rails
// (airtime, tax, biller). Payments share the transfer workflow but notify
// the user on business failure.
type PaymentService struct {
	engine *engine
}

func NewPaymentService(
	movements MovementStore,
	ledger LedgerStore,
	accounts AccountDirectory,
	accounting limits.Accounting,
	gateway CoreBankingGateway,
	refs ReferenceSource,
	notifier Notifier,
	routing Routing,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{engine: &engine{
		movements:  movements,
		ledger:     ledger,
		accounts:   accounts,
		accounting: accounting,
		gateway:    gateway,
		refs:       refs,
		notifier:   notifier,
		routing:    routing,
		logger:     logger,
	}}
}

// Submit runs a payment end to end.
func (s *PaymentService) Submit(ctx context.Context, in MovementInput) (*domain.Movement, error) {
	if !paymentRails[in.Rail] {
		return nil, ErrUnknownRail
	}
	return s.engine.submit(ctx, domain.MovementPayment, in)
}

// Movement fetches a single movement by id.
func (s *PaymentService) Movement(ctx context.Context, id string) (*domain.Movement, error) {
	return fetchMovement(ctx, s.engine.movements, id)
}

func fetchMovement(ctx context.Context, movements MovementStore, id string) (*domain.Movement, error) {
	movementID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return movements.GetMovement(ctx, movementID)
}
