package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/gtibank/corebank/internal/domain"
	"github.com/gtibank/corebank/internal/limits"
	"github.com/gtibank/corebank/internal/service"
	"github.com/gtibank/corebank/internal/store"
	"github.com/gtibank/corebank/internal/t24"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corebank_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "corebank_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "endpoint"})
)

// AccountInspector fetches live account details from core banking.
// Satisfied by t24.Client.
type AccountInspector interface {
	AccountDetails(ctx context.Context, accountNumber string) (*t24.AccountDetail, error)
}

// Records is the slice of the storage layer the handlers read and refresh
// directly. Satisfied by store.Store.
type Records interface {
	LedgerEntriesForUser(ctx context.Context, userID uuid.UUID) ([]domain.LedgerEntry, error)
	RefreshAccount(ctx context.Context, accountNumber string, balance decimal.Decimal, restricted bool) error
}

type Handler struct {
	store      Records
	transfers  *service.TransferService
	payments   *service.PaymentService
	backOffice *service.BackOffice
	inspector  AccountInspector
	logger     *logrus.Logger
}

func NewHandler(s Records, transfers *service.TransferService, payments *service.PaymentService, backOffice *service.BackOffice, inspector AccountInspector, logger *logrus.Logger) *Handler {
	return &Handler{
		store:      s,
		transfers:  transfers,
		payments:   payments,
		backOffice: backOffice,
		inspector:  inspector,
		logger:     logger,
	}
}

type movementRequest struct {
	UserID          string `json:"user_id"`
	SourceAccountID string `json:"source_account_id"`
	Counterparty    string `json:"counterparty"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Purpose         string `json:"purpose"`
	Channel         string `json:"channel"`
	Rail            string `json:"rail"`
}

func (r movementRequest) toInput() (service.MovementInput, error) {
	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		return service.MovementInput{}, errors.New("invalid user_id")
	}
	accountID, err := uuid.Parse(r.SourceAccountID)
	if err != nil {
		return service.MovementInput{}, errors.New("invalid source_account_id")
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return service.MovementInput{}, errors.New("invalid amount")
	}
	if r.Counterparty == "" {
		return service.MovementInput{}, errors.New("counterparty is required")
	}
	return service.MovementInput{
		UserID:          userID,
		SourceAccountID: accountID,
		Counterparty:    r.Counterparty,
		Amount:          amount,
		Currency:        r.Currency,
		Purpose:         r.Purpose,
		Channel:         r.Channel,
		Rail:            domain.Rail(r.Rail),
	}, nil
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	h.submitMovement(w, r, "/transfers", func(in service.MovementInput) (*domain.Movement, error) {
		return h.transfers.Submit(r.Context(), in)
	})
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	h.submitMovement(w, r, "/payments", func(in service.MovementInput) (*domain.Movement, error) {
		return h.payments.Submit(r.Context(), in)
	})
}

func (h *Handler) submitMovement(w http.ResponseWriter, r *http.Request, endpoint string, submit func(service.MovementInput) (*domain.Movement, error)) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", endpoint))
	defer timer.ObserveDuration()

	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpRequestsTotal.WithLabelValues("POST", endpoint, "400").Inc()
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpRequestsTotal.WithLabelValues("POST", endpoint, "400").Inc()
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	mv, err := submit(in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNonPositiveAmount),
			errors.Is(err, service.ErrAmountPrecision),
			errors.Is(err, service.ErrUnknownRail),
			errors.Is(err, service.ErrRailNotConfigured):
			httpRequestsTotal.WithLabelValues("POST", endpoint, "422").Inc()
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrAccountNotOwned):
			httpRequestsTotal.WithLabelValues("POST", endpoint, "403").Inc()
			respondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, limits.ErrLimitExceeded):
			httpRequestsTotal.WithLabelValues("POST", endpoint, "422").Inc()
			respondWithError(w, http.StatusUnprocessableEntity, "Expense limit exceeded")
		case errors.Is(err, store.ErrNotFound):
			httpRequestsTotal.WithLabelValues("POST", endpoint, "404").Inc()
			respondWithError(w, http.StatusNotFound, "Source account not found")
		default:
			h.logger.WithError(err).Error("movement submission failed")
			httpRequestsTotal.WithLabelValues("POST", endpoint, "500").Inc()
			respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	// The movement is persisted and reconciled whatever the core said; the
	// caller reads the outcome from status and failure_reason.
	httpRequestsTotal.WithLabelValues("POST", endpoint, "201").Inc()
	respondWithJSON(w, http.StatusCreated, mv)
}

func (h *Handler) GetMovement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mv, err := h.transfers.Movement(r.Context(), vars["id"])
	if err != nil {
		httpRequestsTotal.WithLabelValues("GET", "/movements/{id}", "404").Inc()
		respondWithError(w, http.StatusNotFound, "Movement not found")
		return
	}
	httpRequestsTotal.WithLabelValues("GET", "/movements/{id}", "200").Inc()
	respondWithJSON(w, http.StatusOK, mv)
}

// ReconciliationQueue lists movements stuck in posted_unknown for the
// back office.
func (h *Handler) ReconciliationQueue(w http.ResponseWriter, r *http.Request) {
	pending, err := h.backOffice.Pending(r.Context())
	if err != nil {
		httpRequestsTotal.WithLabelValues("GET", "/reconciliation", "500").Inc()
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	httpRequestsTotal.WithLabelValues("GET", "/reconciliation", "200").Inc()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(pending),
		"movements": pending,
	})
}

type resolveRequest struct {
	Outcome       string `json:"outcome"`
	ExternalRef   string `json:"external_ref"`
	FailureReason string `json:"failure_reason"`
	EditedBy      string `json:"edited_by"`
}

// ResolveMovement settles a posted_unknown movement with the outcome the
// operator confirmed against core banking records.
func (h *Handler) ResolveMovement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		httpRequestsTotal.WithLabelValues("POST", "/reconciliation/{id}/resolve", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpRequestsTotal.WithLabelValues("POST", "/reconciliation/{id}/resolve", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Outcome != "success" && req.Outcome != "failure" {
		httpRequestsTotal.WithLabelValues("POST", "/reconciliation/{id}/resolve", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "outcome must be success or failure")
		return
	}
	if req.EditedBy == "" {
		httpRequestsTotal.WithLabelValues("POST", "/reconciliation/{id}/resolve", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "edited_by is required")
		return
	}

	mv, err := h.backOffice.Resolve(r.Context(), id, req.Outcome == "success", req.ExternalRef, req.FailureReason, req.EditedBy)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpRequestsTotal.WithLabelValues("POST", "/reconciliation/{id}/resolve", "404").Inc()
			respondWithError(w, http.StatusNotFound, "Movement not found")
		case errors.Is(err, service.ErrNotReconcilable):
			httpRequestsTotal.WithLabelValues("POST", "/reconciliation/{id}/resolve", "409").Inc()
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			h.logger.WithError(err).Error("movement resolution failed")
			httpRequestsTotal.WithLabelValues("POST", "/reconciliation/{id}/resolve", "500").Inc()
			respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	httpRequestsTotal.WithLabelValues("POST", "/reconciliation/{id}/resolve", "200").Inc()
	respondWithJSON(w, http.StatusOK, mv)
}

type reverseRequest struct {
	EditedBy string `json:"edited_by"`
}

// ReverseMovement books a compensating reversal in core banking for a
// successfully posted movement.
func (h *Handler) ReverseMovement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		httpRequestsTotal.WithLabelValues("POST", "/movements/{id}/reverse", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	var req reverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EditedBy == "" {
		httpRequestsTotal.WithLabelValues("POST", "/movements/{id}/reverse", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "edited_by is required")
		return
	}

	if err := h.backOffice.Reverse(r.Context(), id, req.EditedBy); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpRequestsTotal.WithLabelValues("POST", "/movements/{id}/reverse", "404").Inc()
			respondWithError(w, http.StatusNotFound, "Movement not found")
		case errors.Is(err, service.ErrNotReversible):
			httpRequestsTotal.WithLabelValues("POST", "/movements/{id}/reverse", "409").Inc()
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			h.logger.WithError(err).Error("movement reversal failed")
			httpRequestsTotal.WithLabelValues("POST", "/movements/{id}/reverse", "502").Inc()
			respondWithError(w, http.StatusBadGateway, "Core banking rejected the reversal")
		}
		return
	}

	httpRequestsTotal.WithLabelValues("POST", "/movements/{id}/reverse", "202").Inc()
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "reversal booked"})
}

func (h *Handler) GetUserLedger(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := uuid.Parse(vars["id"])
	if err != nil {
		httpRequestsTotal.WithLabelValues("GET", "/users/{id}/ledger", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	entries, err := h.store.LedgerEntriesForUser(r.Context(), userID)
	if err != nil {
		httpRequestsTotal.WithLabelValues("GET", "/users/{id}/ledger", "500").Inc()
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	httpRequestsTotal.WithLabelValues("GET", "/users/{id}/ledger", "200").Inc()
	respondWithJSON(w, http.StatusOK, entries)
}

// GetAccountDetails proxies a live balance lookup to core banking and
// refreshes the local record on success.
func (h *Handler) GetAccountDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	number := vars["number"]

	detail, err := h.inspector.AccountDetails(r.Context(), number)
	if err != nil {
		httpRequestsTotal.WithLabelValues("GET", "/accounts/{number}/details", "502").Inc()
		respondWithError(w, http.StatusBadGateway, "Core banking unavailable")
		return
	}
	if detail == nil {
		httpRequestsTotal.WithLabelValues("GET", "/accounts/{number}/details", "404").Inc()
		respondWithError(w, http.StatusNotFound, "Account not found in core banking")
		return
	}

	if err := h.store.RefreshAccount(r.Context(), number, detail.WorkingBalance, detail.Restricted); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.WithError(err).WithField("account_number", number).
			Warn("local account refresh failed")
	}

	httpRequestsTotal.WithLabelValues("GET", "/accounts/{number}/details", "200").Inc()
	respondWithJSON(w, http.StatusOK, detail)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
