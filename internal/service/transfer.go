package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gtibank/corebank/internal/domain"
	"github.com/gtibank/corebank/internal/limits"
)

// TransferService orchestrates account-to-account transfers over the
// transfer rails (own account, same bank, cross bank, international,
// wallet).
type TransferService struct {
	engine *engine
}

func NewTransferService(
	movements MovementStore,
	ledger LedgerStore,
	accounts AccountDirectory,
	accounting limits.Accounting,
	gateway CoreBankingGateway,
	refs ReferenceSource,
	notifier Notifier,
	routing Routing,
	logger *logrus.Logger,
) *TransferService {
	return &TransferService{engine: &engine{
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

// Submit runs a transfer end to end and returns the movement in its
// reconciled state. Callers inspect Status; a non-nil error means the
// movement never reached core banking.
func (s *TransferService) Submit(ctx context.Context, in MovementInput) (*domain.Movement, error) {
	if !transferRails[in.Rail] {
		return nil, ErrUnknownRail
	}
	return s.engine.submit(ctx, domain.MovementTransfer, in)
}

// Movement fetches a single movement by id.
func (s *TransferService) Movement(ctx context.Context, id string) (*domain.Movement, error) {
	return fetchMovement(ctx, s.engine.movements, id)
}
