package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/scardogs/justines-cargo-backoffice/internal/app"
	"github.com/scardogs/justines-cargo-backoffice/internal/auth"
	"github.com/scardogs/justines-cargo-backoffice/internal/inventory"
	"github.com/scardogs/justines-cargo-backoffice/internal/invoice"
	"github.com/scardogs/justines-cargo-backoffice/internal/masterdata"
	"github.com/scardogs/justines-cargo-backoffice/internal/payroll"
	"github.com/scardogs/justines-cargo-backoffice/internal/platform/cache"
	"github.com/scardogs/justines-cargo-backoffice/internal/platform/db"
	"github.com/scardogs/justines-cargo-backoffice/internal/renewal"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
	"github.com/scardogs/justines-cargo-backoffice/jobs"
	"github.com/scardogs/justines-cargo-backoffice/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := shared.NewTokenStore(redisClient, cfg.TokenTTL)
	auditLogger := shared.NewAuditLogger(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)

	invoiceRepo := invoice.NewRepository(pool)
	invoiceService := invoice.NewService(invoiceRepo, auditLogger, redisClient, logger)
	invoiceHandler := invoice.NewHandler(logger, invoiceService)

	payrollRepo := payroll.NewRepository(pool)
	payrollService := payroll.NewService(payrollRepo, auditLogger, logger)
	payrollHandler := payroll.NewHandler(logger, payrollService)

	masterdataRepo := masterdata.NewRepository(pool)
	masterdataService := masterdata.NewService(masterdataRepo, auditLogger, logger)
	masterdataHandler := masterdata.NewHandler(logger, masterdataService)

	renewalRepo := renewal.NewRepository(pool)
	renewalService := renewal.NewService(renewalRepo, auditLogger, logger)
	renewalHandler := renewal.NewHandler(logger, renewalService)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, auditLogger, logger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportService := report.NewService(reportClient, payrollService, masterdataService, inventoryService, renewalService)
	reportHandler := report.NewHandler(logger, reportClient, reportService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Config:            cfg,
		AuthHandler:       authHandler,
		InvoiceHandler:    invoiceHandler,
		PayrollHandler:    payrollHandler,
		MasterDataHandler: masterdataHandler,
		RenewalHandler:    renewalHandler,
		InventoryHandler:  inventoryHandler,
		ReportHandler:     reportHandler,
		JobHandler:        jobHandler,
	}, app.MiddlewareConfig{
		Logger: logger,
		Config: cfg,
		Tokens: tokens,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
