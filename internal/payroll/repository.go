package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/scardogs/justines-cargo-backoffice/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for payroll drafts,
// reports and the category lookup.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadDrafts returns the persisted rows for the exact period, in the order
// they were saved.
func (r *Repository) LoadDrafts(ctx context.Context, period Period) ([]DraftRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT row_id, employee_id, name, payment_type, category, kilo, rate, deduction, manual_entry
		FROM payroll_drafts
		WHERE period_start = $1 AND period_end = $2
		ORDER BY position`,
		period.Start, period.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DraftRow
	for rows.Next() {
		var row DraftRow
		if err := rows.Scan(&row.RowID, &row.EmployeeID, &row.Name, &row.PaymentType, &row.Category, &row.Kilo, &row.Rate, &row.Deduction, &row.ManualEntry); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ReplaceDrafts swaps the period's entire row set inside one transaction,
// so a failed upsert never leaves a half-written draft.
func (r *Repository) ReplaceDrafts(ctx context.Context, period Period, draftRows []DraftRow) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM payroll_drafts WHERE period_start = $1 AND period_end = $2`,
			period.Start, period.End); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, row := range draftRows {
			batch.Queue(`
				INSERT INTO payroll_drafts
					(period_start, period_end, position, row_id, employee_id, name, payment_type, category, kilo, rate, deduction, manual_entry, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())`,
				period.Start, period.End, i, row.RowID, row.EmployeeID, row.Name, row.PaymentType, row.Category, row.Kilo, row.Rate, row.Deduction, row.ManualEntry)
		}
		results := tx.SendBatch(ctx, batch)
		defer results.Close()
		for range draftRows {
			if _, err := results.Exec(); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearDrafts deletes every draft row for the period.
func (r *Repository) ClearDrafts(ctx context.Context, period Period) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM payroll_drafts WHERE period_start = $1 AND period_end = $2`,
		period.Start, period.End)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// PieceRateRoster lists the employees eligible for the pakyaw baseline:
// piece-rate payment type, currently active, scrap department.
func (r *Repository) PieceRateRoster(ctx context.Context) ([]RosterEmployee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT employee_id, name, payment_type, COALESCE(category, ''), wage::text
		FROM employees
		WHERE payment_type = 'Pakyaw' AND is_active AND department = 'Scrap'
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RosterEmployee
	for rows.Next() {
		var emp RosterEmployee
		var wage string
		if err := rows.Scan(&emp.EmployeeID, &emp.Name, &emp.PaymentType, &emp.Category, &wage); err != nil {
			return nil, err
		}
		emp.Wage, err = decimal.NewFromString(wage)
		if err != nil {
			return nil, fmt.Errorf("payroll: employee %s wage: %w", emp.EmployeeID, err)
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

// CreateReport inserts the frozen report and its rows in one transaction.
func (r *Repository) CreateReport(ctx context.Context, report *Report) (*Report, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO payroll_reports (period_start, period_end, total_pay, generated_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING id, generated_at`,
			report.PeriodStart, report.PeriodEnd, report.TotalPay.String()).Scan(&report.ID, &report.GeneratedAt); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, row := range report.Rows {
			batch.Queue(`
				INSERT INTO payroll_report_rows
					(report_id, employee_id, name, payment_type, category, kilo, rate, deduction, total, net_total)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				report.ID, row.EmployeeID, row.Name, row.PaymentType, row.Category,
				row.Kilo.String(), row.Rate.String(), row.Deduction.String(), row.Total.String(), row.NetTotal.String())
		}
		results := tx.SendBatch(ctx, batch)
		defer results.Close()
		for range report.Rows {
			if _, err := results.Exec(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// GetReport fetches one report with its rows.
func (r *Repository) GetReport(ctx context.Context, id int64) (*Report, error) {
	var report Report
	var totalPay string
	err := r.pool.QueryRow(ctx, `
		SELECT id, period_start::text, period_end::text, total_pay::text, generated_at
		FROM payroll_reports WHERE id = $1`, id).
		Scan(&report.ID, &report.PeriodStart, &report.PeriodEnd, &totalPay, &report.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	report.TotalPay, err = decimal.NewFromString(totalPay)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT employee_id, name, payment_type, category, kilo::text, rate::text, deduction::text, total::text, net_total::text
		FROM payroll_report_rows WHERE report_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var row ReportRow
		var kilo, rate, deduction, total, netTotal string
		if err := rows.Scan(&row.EmployeeID, &row.Name, &row.PaymentType, &row.Category, &kilo, &rate, &deduction, &total, &netTotal); err != nil {
			return nil, err
		}
		for _, pair := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&row.Kilo, kilo}, {&row.Rate, rate}, {&row.Deduction, deduction}, {&row.Total, total}, {&row.NetTotal, netTotal},
		} {
			if *pair.dst, err = decimal.NewFromString(pair.src); err != nil {
				return nil, err
			}
		}
		report.Rows = append(report.Rows, row)
	}
	return &report, rows.Err()
}

// ListReports returns report headers, newest first.
func (r *Repository) ListReports(ctx context.Context) ([]Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, period_start::text, period_end::text, total_pay::text, generated_at
		FROM payroll_reports ORDER BY generated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var report Report
		var totalPay string
		if err := rows.Scan(&report.ID, &report.PeriodStart, &report.PeriodEnd, &totalPay, &report.GeneratedAt); err != nil {
			return nil, err
		}
		if report.TotalPay, err = decimal.NewFromString(totalPay); err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

// ListCategories returns the pakyaw category lookup.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM pakyaw_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
