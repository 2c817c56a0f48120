package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/scardogs/justines-cargo-backoffice/internal/app"
	"github.com/scardogs/justines-cargo-backoffice/internal/inventory"
	"github.com/scardogs/justines-cargo-backoffice/internal/masterdata"
	"github.com/scardogs/justines-cargo-backoffice/internal/payroll"
	"github.com/scardogs/justines-cargo-backoffice/internal/platform/db"
	"github.com/scardogs/justines-cargo-backoffice/internal/renewal"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
	"github.com/scardogs/justines-cargo-backoffice/jobs"
	"github.com/scardogs/justines-cargo-backoffice/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	auditLogger := shared.NewAuditLogger(pool)

	payrollService := payroll.NewService(payroll.NewRepository(pool), auditLogger, logger)
	masterdataService := masterdata.NewService(masterdata.NewRepository(pool), auditLogger, logger)
	renewalService := renewal.NewService(renewal.NewRepository(pool), auditLogger, logger)
	inventoryService := inventory.NewService(inventory.NewRepository(pool), auditLogger, logger)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportService := report.NewService(reportClient, payrollService, masterdataService, inventoryService, renewalService)

	renderJob := jobs.NewReportRenderJob(reportService, pool, logger)
	scanJob := jobs.NewRenewalScanJob(renewalService, pool, logger)

	nightlyScan, err := jobs.NightlyRenewalScan(cfg.RenewalWindowDays)
	if err != nil {
		logger.Error("build renewal scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Render:    renderJob,
		Scan:      scanJob,
		Cron: []jobs.CronRegistration{
			nightlyScan,
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
