package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scardogs/justines-cargo-backoffice/internal/renewal"
)

// RenewalScanJob walks the compliance records and flags those expiring
// inside the window. Each finding is logged and recorded as a notification
// row, deduplicated per record and expiry date.
type RenewalScanJob struct {
	Renewals *renewal.Service
	Pool     *pgxpool.Pool
	Logger   *slog.Logger
	clock    func() time.Time
}

// NewRenewalScanJob initialises the scan handler.
func NewRenewalScanJob(renewals *renewal.Service, pool *pgxpool.Pool, logger *slog.Logger) *RenewalScanJob {
	return &RenewalScanJob{
		Renewals: renewals,
		Pool:     pool,
		Logger:   logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the scan.
func (j *RenewalScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Renewals == nil {
		return errors.New("renewal scan: handler not configured")
	}
	var payload RenewalScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowDays <= 0 {
		payload.WindowDays = 30
	}

	now := j.clock()
	window := time.Duration(payload.WindowDays) * 24 * time.Hour
	logger := j.logger().With(slog.Int("window_days", payload.WindowDays))
	logger.Info("starting renewal scan")

	expiring, err := j.Renewals.ExpiringWithin(ctx, now, window)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}

	recorded := 0
	for _, rec := range expiring {
		logger.Warn("document expiring",
			slog.String("plate", rec.PlateNumber),
			slog.String("kind", string(rec.Kind)),
			slog.String("expiry", rec.ExpiryDate),
		)
		ok, err := j.recordNotification(ctx, rec)
		if err != nil {
			logger.Error("record notification", slog.Any("error", err))
			return err
		}
		if ok {
			recorded++
		}
	}

	logger.Info("completed renewal scan",
		slog.Int("expiring", len(expiring)),
		slog.Int("new_notifications", recorded),
	)
	return nil
}

func (j *RenewalScanJob) recordNotification(ctx context.Context, rec renewal.Record) (bool, error) {
	if j.Pool == nil {
		return false, nil
	}
	tag, err := j.Pool.Exec(ctx, `
		INSERT INTO renewal_notifications (record_id, expiry_date, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (record_id, expiry_date) DO NOTHING`,
		rec.ID, rec.ExpiryDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (j *RenewalScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
