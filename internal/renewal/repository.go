package renewal

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/scardogs/justines-cargo-backoffice/internal/platform/db"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

// Repository provides PostgreSQL backed persistence for renewal records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `r.id, r.truck_id, t.plate_number, r.kind, r.reference_no, r.provider,
	r.issued_date::text, r.expiry_date::text, r.remarks, r.created_at, r.updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.TruckID, &rec.PlateNumber, &rec.Kind, &rec.ReferenceNo, &rec.Provider,
		&rec.IssuedDate, &rec.ExpiryDate, &rec.Remarks, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) ListRecords(ctx context.Context, kind Kind) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM renewal_records r JOIN trucks t ON t.id = r.truck_id
		WHERE r.kind = $1
		ORDER BY r.expiry_date`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *Repository) GetRecord(ctx context.Context, id int64) (*Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM renewal_records r JOIN trucks t ON t.id = r.truck_id
		WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *Repository) CreateRecord(ctx context.Context, kind Kind, in RecordInput) (*Record, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO renewal_records (truck_id, kind, reference_no, provider, issued_date, expiry_date, remarks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`,
		in.TruckID, kind, in.ReferenceNo, in.Provider, in.IssuedDate, in.ExpiryDate, in.Remarks).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetRecord(ctx, id)
}

func (r *Repository) UpdateRecord(ctx context.Context, id int64, in RecordInput) (*Record, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE renewal_records
		SET truck_id = $2, reference_no = $3, provider = $4, issued_date = $5, expiry_date = $6, remarks = $7, updated_at = NOW()
		WHERE id = $1`,
		id, in.TruckID, in.ReferenceNo, in.Provider, in.IssuedDate, in.ExpiryDate, in.Remarks)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetRecord(ctx, id)
}

func (r *Repository) DeleteRecord(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM renewal_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Renew updates the record and appends the history entry in one
// transaction so the log never drifts from the record.
func (r *Repository) Renew(ctx context.Context, id int64, newExpiry, referenceNo string, cost decimal.Decimal) (*Record, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var previousExpiry string
		err := tx.QueryRow(ctx,
			`SELECT expiry_date::text FROM renewal_records WHERE id = $1 FOR UPDATE`, id).
			Scan(&previousExpiry)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE renewal_records
			SET expiry_date = $2, reference_no = $3, updated_at = NOW()
			WHERE id = $1`, id, newExpiry, referenceNo); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO renewal_history (record_id, previous_expiry, new_expiry, cost, renewed_at)
			VALUES ($1, $2, $3, $4, NOW())`,
			id, previousExpiry, newExpiry, cost.String())
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetRecord(ctx, id)
}

func (r *Repository) ListHistory(ctx context.Context, kind Kind) ([]History, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT h.id, h.record_id, t.plate_number, rec.kind, h.previous_expiry::text, h.new_expiry::text, h.cost::text, h.renewed_at
		FROM renewal_history h
		JOIN renewal_records rec ON rec.id = h.record_id
		JOIN trucks t ON t.id = rec.truck_id
		WHERE rec.kind = $1
		ORDER BY h.renewed_at DESC`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []History
	for rows.Next() {
		var h History
		var cost string
		if err := rows.Scan(&h.ID, &h.RecordID, &h.PlateNumber, &h.Kind, &h.PreviousExpiry, &h.NewExpiry, &cost, &h.RenewedAt); err != nil {
			return nil, err
		}
		if h.Cost, err = decimal.NewFromString(cost); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repository) ExpiringWithin(ctx context.Context, asOf time.Time, window time.Duration) ([]Record, error) {
	cutoff := asOf.Add(window).Format("2006-01-02")
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM renewal_records r JOIN trucks t ON t.id = r.truck_id
		WHERE r.expiry_date <= $1
		ORDER BY r.expiry_date`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
