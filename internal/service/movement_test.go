package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtibank/corebank/internal/domain"
	"github.com/gtibank/corebank/internal/limits"
	"github.com/gtibank/corebank/internal/service/mocks"
	"github.com/gtibank/corebank/internal/store"
	"github.com/gtibank/corebank/internal/t24"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// fakeMovements is a mutexed in-memory MovementStore with the same
// reference-uniqueness and guarded-transition behavior as the postgres
// store. collisions forces the first N inserts to report a taken reference.
type fakeMovements struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*domain.Movement
	refs       map[string]bool
	collisions int
}

func newFakeMovements() *fakeMovements {
	return &fakeMovements{
		byID: make(map[uuid.UUID]*domain.Movement),
		refs: make(map[string]bool),
	}
}

func (f *fakeMovements) CreateMovement(_ context.Context, m *domain.Movement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.collisions > 0 {
		f.collisions--
		return store.ErrReferenceTaken
	}
	if f.refs[m.InternalRef] {
		return store.ErrReferenceTaken
	}
	f.refs[m.InternalRef] = true
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeMovements) MarkPosted(_ context.Context, id uuid.UUID, status domain.MovementStatus, externalRef, failureReason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok || m.Status != domain.StatusCreated {
		return false, nil
	}
	m.Status = status
	m.ExternalRef = externalRef
	m.FailureReason = failureReason
	m.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeMovements) ResolveMovement(_ context.Context, id uuid.UUID, status domain.MovementStatus, externalRef, failureReason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok || m.Status != domain.StatusPostedUnknown {
		return false, nil
	}
	m.Status = status
	m.ExternalRef = externalRef
	m.FailureReason = failureReason
	m.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeMovements) GetMovement(_ context.Context, id uuid.UUID) (*domain.Movement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMovements) MovementsByStatus(_ context.Context, status domain.MovementStatus) ([]domain.Movement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Movement
	for _, m := range f.byID {
		if m.Status == status {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMovements) stored(id uuid.UUID) domain.Movement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

type fakeLedger struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func (f *fakeLedger) AppendLedgerEntry(_ context.Context, e *domain.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeLedger) all() []domain.LedgerEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.LedgerEntry(nil), f.entries...)
}

type fakeNotifier struct {
	mu        sync.Mutex
	succeeded int
	failed    int
}

func (f *fakeNotifier) MovementSucceeded(context.Context, *domain.Movement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.succeeded++
}

func (f *fakeNotifier) PaymentFailed(context.Context, *domain.Movement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed++
}

func (f *fakeNotifier) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.succeeded, f.failed
}

type seqRefs struct {
	mu   sync.Mutex
	next int
}

func (s *seqRefs) Generate(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return "REF" + string(rune('A'+s.next%26)) + "000" + string(rune('0'+s.next%10)), nil
}

type harness struct {
	movements *fakeMovements
	ledger    *fakeLedger
	notifier  *fakeNotifier
	accounts  *mocks.MockAccountDirectory
	gateway   *mocks.MockCoreBankingGateway
	limits    *limits.Memory
	routing   Routing

	user    uuid.UUID
	source  *domain.BankAccount
	limitID uuid.UUID
}

func newHarness(t *testing.T, limitAmount string) *harness {
	ctrl := gomock.NewController(t)
	h := &harness{
		movements: newFakeMovements(),
		ledger:    &fakeLedger{},
		notifier:  &fakeNotifier{},
		accounts:  mocks.NewMockAccountDirectory(ctrl),
		gateway:   mocks.NewMockCoreBankingGateway(ctrl),
		routing: Routing{
			CrossBankAccount:     "GL-CROSS-1",
			InternationalAccount: "GL-INTL-1",
			WalletAccount:        "GL-WALLET-1",
			AirtimeAccount:       "GL-AIRTIME-1",
			TaxAccount:           "GL-TAX-1",
		},
		user:    uuid.New(),
		limitID: uuid.New(),
	}
	h.source = &domain.BankAccount{
		ID:            uuid.New(),
		UserID:        h.user,
		AccountNumber: "1000100010",
		Currency:      "STN",
	}
	h.limits = limits.NewMemory(&domain.ExpenseLimit{
		ID:          h.limitID,
		UserID:      h.user,
		AccountID:   h.source.ID,
		Type:        domain.AccountBudget,
		LimitAmount: dec(limitAmount),
		StartDate:   time.Now().Add(-24 * time.Hour),
		EndDate:     time.Now().Add(24 * time.Hour),
		Status:      domain.LimitActive,
	})
	return h
}

func (h *harness) transfers() *TransferService {
	return NewTransferService(h.movements, h.ledger, h.accounts, h.limits,
		h.gateway, &seqRefs{}, h.notifier, h.routing, testLogger())
}

func (h *harness) payments() *PaymentService {
	return NewPaymentService(h.movements, h.ledger, h.accounts, h.limits,
		h.gateway, &seqRefs{}, h.notifier, h.routing, testLogger())
}

func (h *harness) input(amount string, rail domain.Rail) MovementInput {
	return MovementInput{
		UserID:          h.user,
		SourceAccountID: h.source.ID,
		Counterparty:    "2000200020",
		Amount:          dec(amount),
		Purpose:         "groceries",
		Channel:         "mobile",
		Rail:            rail,
	}
}

func TestSubmit_SuccessWritesLedgerAndCommitsLimit(t *testing.T) {
	h := newHarness(t, "500")
	recipient := &domain.BankAccount{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		AccountNumber: "2000200020",
		Currency:      "STN",
	}
	h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).Return(h.source, nil)
	h.accounts.EXPECT().AccountByNumber(gomock.Any(), "2000200020").Return(recipient, nil)
	h.gateway.EXPECT().PostMovement(gomock.Any(), gomock.Any()).
		Return(&t24.Result{Outcome: t24.OutcomeSuccess, ExternalRef: "FT24001XYZ"})

	mv, err := h.transfers().Submit(context.Background(), h.input("120.50", domain.RailSameBank))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPostedSuccess, mv.Status)
	assert.Equal(t, "FT24001XYZ", mv.ExternalRef)
	assert.Equal(t, domain.StatusPostedSuccess, h.movements.stored(mv.ID).Status)

	entries := h.ledger.all()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.DirectionDebit, entries[0].Direction)
	assert.Equal(t, h.user, entries[0].UserID)
	assert.Equal(t, domain.DirectionCredit, entries[1].Direction)
	assert.Equal(t, recipient.UserID, entries[1].UserID)
	assert.Equal(t, mv.ID, entries[1].MovementID)

	assert.Eventually(t, func() bool {
		l, _ := h.limits.Limit(h.limitID)
		succeeded, _ := h.notifier.counts()
		return l.AmountSpent.Equal(dec("120.50")) &&
			l.AmountReserved.IsZero() &&
			succeeded == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSubmit_LimitDeniedBeforeGatewayCall(t *testing.T) {
	h := newHarness(t, "100")
	h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).Return(h.source, nil)
	// No gateway expectation: a denied movement must never reach the core.

	_, err := h.transfers().Submit(context.Background(), h.input("100.01", domain.RailSameBank))
	require.ErrorIs(t, err, limits.ErrLimitExceeded)

	created, err := h.movements.MovementsByStatus(context.Background(), domain.StatusCreated)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Empty(t, h.ledger.all())
}

func TestSubmit_TransportErrorMarksUnknownAndReleases(t *testing.T) {
	h := newHarness(t, "500")
	h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).Return(h.source, nil)
	h.gateway.EXPECT().PostMovement(gomock.Any(), gomock.Any()).
		Return(&t24.Result{Outcome: t24.OutcomeTransportError, Reason: "request timed out"})

	mv, err := h.transfers().Submit(context.Background(), h.input("75.00", domain.RailSameBank))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPostedUnknown, mv.Status)
	assert.Equal(t, "request timed out", mv.FailureReason)
	assert.Empty(t, mv.ExternalRef)
	assert.Empty(t, h.ledger.all())

	assert.Eventually(t, func() bool {
		l, _ := h.limits.Limit(h.limitID)
		return l.AmountSpent.IsZero() && l.AmountReserved.IsZero()
	}, time.Second, 5*time.Millisecond)

	succeeded, failed := h.notifier.counts()
	assert.Zero(t, succeeded)
	assert.Zero(t, failed)
}

func TestSubmit_PaymentFailureNotifiesUser(t *testing.T) {
	h := newHarness(t, "500")
	h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).Return(h.source, nil)
	h.gateway.EXPECT().PostMovement(gomock.Any(), gomock.Any()).
		Return(&t24.Result{Outcome: t24.OutcomeFailure, Reason: "Account posting restricted"})

	in := h.input("30.00", domain.RailAirtime)
	mv, err := h.payments().Submit(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPostedFailed, mv.Status)
	assert.Equal(t, "Account posting restricted", mv.FailureReason)
	assert.Empty(t, h.ledger.all())

	assert.Eventually(t, func() bool {
		_, failed := h.notifier.counts()
		return failed == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSubmit_TransferFailureStaysSilent(t *testing.T) {
	h := newHarness(t, "500")
	h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).Return(h.source, nil)
	h.gateway.EXPECT().PostMovement(gomock.Any(), gomock.Any()).
		Return(&t24.Result{Outcome: t24.OutcomeFailure, Reason: "Balance below minimum"})

	mv, err := h.transfers().Submit(context.Background(), h.input("30.00", domain.RailSameBank))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPostedFailed, mv.Status)

	// Reservation release is the only async effect; once it lands, no
	// notification may have fired.
	assert.Eventually(t, func() bool {
		l, _ := h.limits.Limit(h.limitID)
		return l.AmountReserved.IsZero()
	}, time.Second, 5*time.Millisecond)
	succeeded, failed := h.notifier.counts()
	assert.Zero(t, succeeded)
	assert.Zero(t, failed)
}

func TestSubmit_CurrencyDefaultsFromSourceAccount(t *testing.T) {
	h := newHarness(t, "500")
	h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).Return(h.source, nil)
	h.accounts.EXPECT().AccountByNumber(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound)

	var sent t24.FundsTransfer
	h.gateway.EXPECT().PostMovement(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ft t24.FundsTransfer) *t24.Result {
			sent = ft
			return &t24.Result{Outcome: t24.OutcomeSuccess, ExternalRef: "FT24002ABC"}
		})

	in := h.input("10.00", domain.RailSameBank)
	in.Currency = ""
	mv, err := h.transfers().Submit(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "STN", mv.Currency)
	assert.Equal(t, "STN", sent.Currency)
	assert.Equal(t, "10.00", sent.Amount.StringFixed(2))
	assert.Equal(t, h.source.AccountNumber, sent.DebitAccount)
	assert.Equal(t, "ACTRF", sent.TransactionType)
}

func TestSubmit_ExternalCounterpartySkipsCreditEntry(t *testing.T) {
	h := newHarness(t, "500")
	h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).Return(h.source, nil)
	h.accounts.EXPECT().AccountByNumber(gomock.Any(), "2000200020").Return(nil, store.ErrNotFound)
	h.gateway.EXPECT().PostMovement(gomock.Any(), gomock.Any()).
		Return(&t24.Result{Outcome: t24.OutcomeSuccess, ExternalRef: "FT24003DEF"})

	mv, err := h.transfers().Submit(context.Background(), h.input("10.00", domain.RailSameBank))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPostedSuccess, mv.Status)

	entries := h.ledger.all()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.DirectionDebit, entries[0].Direction)
}

func TestSubmit_CrossBankRoutesToHouseAccount(t *testing.T) {
	h := newHarness(t, "500")
	h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).Return(h.source, nil)
	h.accounts.EXPECT().AccountByNumber(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound)

	var sent t24.FundsTransfer
	h.gateway.EXPECT().PostMovement(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ft t24.FundsTransfer) *t24.Result {
			sent = ft
			return &t24.Result{Outcome: t24.OutcomeSuccess, ExternalRef: "FT24004GHI"}
		})

	_, err := h.transfers().Submit(context.Background(), h.input("10.00", domain.RailCrossBank))
	require.NoError(t, err)
	assert.Equal(t, "GL-CROSS-1", sent.CreditAccount)
}

func TestSubmit_UnconfiguredHouseAccountRejectedBeforePersist(t *testing.T) {
	h := newHarness(t, "500")
	h.routing.WalletAccount = ""
	h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).Return(h.source, nil)

	mv, err := h.transfers().Submit(context.Background(), h.input("10.00", domain.RailWallet))
	require.ErrorIs(t, err, ErrRailNotConfigured)
	assert.Nil(t, mv)

	// Refused during validation: nothing persisted, nothing reserved.
	created, err := h.movements.MovementsByStatus(context.Background(), domain.StatusCreated)
	require.NoError(t, err)
	assert.Empty(t, created)
	l, _ := h.limits.Limit(h.limitID)
	assert.True(t, l.AmountReserved.IsZero())
}

func TestSubmit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(h *harness, in *MovementInput)
		wantErr error
	}{
		{
			name: "zero amount",
			mutate: func(h *harness, in *MovementInput) {
				in.Amount = decimal.Zero
			},
			wantErr: ErrNonPositiveAmount,
		},
		{
			name: "negative amount",
			mutate: func(h *harness, in *MovementInput) {
				in.Amount = dec("-5")
			},
			wantErr: ErrNonPositiveAmount,
		},
		{
			name: "sub-cent precision",
			mutate: func(h *harness, in *MovementInput) {
				in.Amount = dec("10.005")
			},
			wantErr: ErrAmountPrecision,
		},
		{
			name: "account owned by someone else",
			mutate: func(h *harness, in *MovementInput) {
				h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).
					Return(&domain.BankAccount{ID: h.source.ID, UserID: uuid.New()}, nil)
			},
			wantErr: ErrAccountNotOwned,
		},
		{
			name: "payment rail on transfer service",
			mutate: func(h *harness, in *MovementInput) {
				in.Rail = domain.RailAirtime
			},
			wantErr: ErrUnknownRail,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, "500")
			in := h.input("10.00", domain.RailSameBank)
			tc.mutate(h, &in)

			_, err := h.transfers().Submit(context.Background(), in)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, h.ledger.all())
		})
	}
}

func TestSubmit_RetriesOnReferenceCollision(t *testing.T) {
	h := newHarness(t, "500")
	h.movements.collisions = 2
	h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).Return(h.source, nil)
	h.accounts.EXPECT().AccountByNumber(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound)
	h.gateway.EXPECT().PostMovement(gomock.Any(), gomock.Any()).
		Return(&t24.Result{Outcome: t24.OutcomeSuccess, ExternalRef: "FT24005JKL"})

	mv, err := h.transfers().Submit(context.Background(), h.input("10.00", domain.RailSameBank))
	require.NoError(t, err)
	assert.NotEmpty(t, mv.InternalRef)
	assert.Equal(t, domain.StatusPostedSuccess, mv.Status)
}

func TestSubmit_ExhaustedCollisionRetriesFails(t *testing.T) {
	h := newHarness(t, "500")
	h.movements.collisions = insertAttempts
	h.accounts.EXPECT().AccountByID(gomock.Any(), h.source.ID).Return(h.source, nil)

	_, err := h.transfers().Submit(context.Background(), h.input("10.00", domain.RailSameBank))
	require.ErrorIs(t, err, store.ErrReferenceTaken)
}

func TestMarkPosted_SecondTransitionRefused(t *testing.T) {
	f := newFakeMovements()
	mv := &domain.Movement{ID: uuid.New(), InternalRef: "ABC123XYZ0", Status: domain.StatusCreated}
	require.NoError(t, f.CreateMovement(context.Background(), mv))

	ok, err := f.MarkPosted(context.Background(), mv.ID, domain.StatusPostedSuccess, "FT1", "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.MarkPosted(context.Background(), mv.ID, domain.StatusPostedFailed, "", "late failure")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, domain.StatusPostedSuccess, f.stored(mv.ID).Status)
}
