package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/seyi-aluko/payrun/internal/config"
	"github.com/seyi-aluko/payrun/internal/gateway"
	"github.com/seyi-aluko/payrun/internal/handler"
	"github.com/seyi-aluko/payrun/internal/logging"
	"github.com/seyi-aluko/payrun/internal/middleware"
	"github.com/seyi-aluko/payrun/internal/notify"
	"github.com/seyi-aluko/payrun/internal/payroll"
	"github.com/seyi-aluko/payrun/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("payrun-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	orgs := repository.NewOrganizationRepository(db)
	employees := repository.NewEmployeeRepository(db)
	taxConfigs := repository.NewTaxConfigRepository(db)
	adjustments := repository.NewAdjustmentRepository(db)
	runs := repository.NewRunRepository(db)
	slips := repository.NewSlipRepository(db)

	transfers := gateway.NewClient(
		cfg.GatewayBaseURL,
		cfg.GatewayAPIKey,
		cfg.GatewaySecretKey,
		cfg.GatewaySourceAccount,
	)

	var mailer notify.Mailer = notify.NopMailer{}
	if cfg.EmailEnabled {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			FromName:    cfg.EmailFromName,
			FromAddress: cfg.EmailFromAddress,
		})
	}

	runner := payroll.NewRunner(orgs, employees, taxConfigs, adjustments, runs, slips, transfers, mailer)
	dispatcher := payroll.NewDispatcher(cfg.MaxConcurrentRuns, cfg.RunTimeout)
	payrollSvc := payroll.NewService(orgs, runs, slips, runner, dispatcher)

	payrollHandler := handler.NewPayrollHandler(payrollSvc)
	healthHandler := handler.NewHealthHandler(db)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.Tracing)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)

	r.Get("/health", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Route("/api/v1/organizations/{orgID}/payroll/runs", func(r chi.Router) {
		r.Post("/", payrollHandler.Trigger)
		r.Get("/", payrollHandler.List)
		r.Get("/{runID}", payrollHandler.Get)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// in-flight payroll runs finish before the process exits
	slog.Info("waiting for in-flight payroll runs")
	dispatcher.Wait()

	slog.Info("server stopped")
}
