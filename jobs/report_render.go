package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scardogs/justines-cargo-backoffice/internal/renewal"
	"github.com/scardogs/justines-cargo-backoffice/report"
)

// ReportRenderJob renders a report to PDF out-of-band and stores the
// bytes, so heavy exports never block an interactive request.
type ReportRenderJob struct {
	Reports *report.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
}

// NewReportRenderJob initialises the render handler.
func NewReportRenderJob(reports *report.Service, pool *pgxpool.Pool, logger *slog.Logger) *ReportRenderJob {
	return &ReportRenderJob{Reports: reports, Pool: pool, Logger: logger}
}

// Handle executes the render.
func (j *ReportRenderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("report render: handler not configured")
	}
	var payload ReportRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	var (
		pdf []byte
		err error
	)
	switch payload.Report {
	case "payroll":
		pdf, err = j.Reports.PayrollPDF(ctx, payload.ReportID)
	case "fleet":
		pdf, err = j.Reports.FleetPDF(ctx)
	case "inventory":
		pdf, err = j.Reports.InventoryPDF(ctx)
	case "renewal-history":
		pdf, err = j.Reports.RenewalHistoryPDF(ctx, renewal.Kind(payload.Kind))
	case "truck-expenses":
		pdf, err = j.Reports.TruckExpensesPDF(ctx, payload.TruckID)
	default:
		return asynq.SkipRetry
	}
	if err != nil {
		j.logger().Error("render report", slog.String("report", payload.Report), slog.Any("error", err))
		return err
	}

	if j.Pool != nil {
		name := fmt.Sprintf("%s-%d", payload.Report, payload.ReportID)
		if _, err := j.Pool.Exec(ctx, `
			INSERT INTO report_files (name, content, rendered_at)
			VALUES ($1, $2, NOW())`,
			name, pdf); err != nil {
			return err
		}
	}

	j.logger().Info("rendered report",
		slog.String("report", payload.Report),
		slog.Int("bytes", len(pdf)),
	)
	return nil
}

func (j *ReportRenderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
