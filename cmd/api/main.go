package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/gtibank/corebank/internal/api"
	"github.com/gtibank/corebank/internal/config"
	"github.com/gtibank/corebank/internal/limits"
	"github.com/gtibank/corebank/internal/notify"
	"github.com/gtibank/corebank/internal/refgen"
	"github.com/gtibank/corebank/internal/service"
	"github.com/gtibank/corebank/internal/store"
	"github.com/gtibank/corebank/internal/t24"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("loading configuration")
	}
	if cfg.Env == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx := context.Background()
	st, err := store.New(ctx, cfg.DBSource, logger)
	if err != nil {
		logger.WithError(err).Fatal("connecting to database")
	}
	defer st.Close()

	accounting := limits.NewPG(st.Pool(), logger)
	refs := refgen.New(refgen.MovementReference, refgen.CheckerFunc(st.ReferenceExists))
	gateway := t24.NewClient(cfg.T24BaseURL, cfg.T24CompanyID, cfg.T24Timeout, logger)
	notifier := notify.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
		cfg.EmailEnabled, st, logger)

	routing := service.Routing{
		CrossBankAccount:     cfg.CrossBankAccount,
		InternationalAccount: cfg.InternationalAccount,
		WalletAccount:        cfg.WalletAccount,
		AirtimeAccount:       cfg.AirtimeAccount,
		TaxAccount:           cfg.TaxAccount,
	}
	transfers := service.NewTransferService(st, st, st, accounting, gateway, refs, notifier, routing, logger)
	payments := service.NewPaymentService(st, st, st, accounting, gateway, refs, notifier, routing, logger)
	backOffice := service.NewBackOffice(st, st, st, st, gateway, logger)

	handler := api.NewHandler(st, transfers, payments, backOffice, gateway, logger)

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/transfers", handler.CreateTransfer).Methods("POST")
	apiV1.HandleFunc("/payments", handler.CreatePayment).Methods("POST")
	apiV1.HandleFunc("/movements/{id}", handler.GetMovement).Methods("GET")
	apiV1.HandleFunc("/movements/{id}/reverse", handler.ReverseMovement).Methods("POST")
	apiV1.HandleFunc("/reconciliation", handler.ReconciliationQueue).Methods("GET")
	apiV1.HandleFunc("/reconciliation/{id}/resolve", handler.ResolveMovement).Methods("POST")
	apiV1.HandleFunc("/users/{id}/ledger", handler.GetUserLedger).Methods("GET")
	apiV1.HandleFunc("/accounts/{number}/details", handler.GetAccountDetails).Methods("GET")

	// Periodic sweep keeps the reconciliation backlog gauge current and
	// surfaces stuck movements in the logs.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 15m", func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		backOffice.Sweep(sweepCtx)
	}); err != nil {
		logger.WithError(err).Fatal("scheduling reconciliation sweep")
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
