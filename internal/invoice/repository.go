package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for invoice stubs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

// CreateRange inserts one UNUSED slot per number in [start, end] as a single
// statement, so the range commits atomically or not at all. A concurrent
// allocation racing past the overlap scan trips the unique index on
// invoice_no and is reported as ErrRangeConflict.
func (r *Repository) CreateRange(ctx context.Context, stub string, start, end int64) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO invoice_slots (stub, invoice_no, status, created_at, updated_at)
		SELECT $1, gs, 'UNUSED', NOW(), NOW()
		FROM generate_series($2::bigint, $3::bigint) AS gs`,
		stub, start, end)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("%w: [%d, %d]", ErrRangeConflict, start, end)
		}
		return 0, fmt.Errorf("invoice: create range: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// RangeOverlaps reports whether any existing slot, under any stub, falls
// inside [start, end].
func (r *Repository) RangeOverlaps(ctx context.Context, start, end int64) (bool, error) {
	var overlaps bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoice_slots WHERE invoice_no BETWEEN $1 AND $2)`,
		start, end).Scan(&overlaps)
	if err != nil {
		return false, err
	}
	return overlaps, nil
}

// ListStubs aggregates slots per stub.
func (r *Repository) ListStubs(ctx context.Context) ([]StubSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT stub,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'USED'),
		       MIN(invoice_no),
		       MAX(invoice_no)
		FROM invoice_slots
		GROUP BY stub`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stubs []StubSummary
	for rows.Next() {
		var s StubSummary
		if err := rows.Scan(&s.Stub, &s.SlotCount, &s.UsedCount, &s.LowestNo, &s.HighestNo); err != nil {
			return nil, err
		}
		stubs = append(stubs, s)
	}
	return stubs, rows.Err()
}

const slotColumns = `id, stub, invoice_no, status, COALESCE(customer_name, ''), created_at, updated_at`

// ListSlots returns every slot under a stub ordered by invoice number.
func (r *Repository) ListSlots(ctx context.Context, stub string) ([]InvoiceSlot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+slotColumns+` FROM invoice_slots WHERE stub = $1 ORDER BY invoice_no`, stub)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slots []InvoiceSlot
	for rows.Next() {
		var s InvoiceSlot
		if err := rows.Scan(&s.ID, &s.Stub, &s.InvoiceNo, &s.Status, &s.CustomerName, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// UpdateSlotStatus flips a slot between USED and UNUSED, setting or clearing
// the customer name with it.
func (r *Repository) UpdateSlotStatus(ctx context.Context, stub string, invoiceNo int64, status SlotStatus, customerName string) (*InvoiceSlot, error) {
	var customer any
	if customerName != "" {
		customer = customerName
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE invoice_slots
		SET status = $3, customer_name = $4, updated_at = NOW()
		WHERE stub = $1 AND invoice_no = $2
		RETURNING `+slotColumns,
		stub, invoiceNo, status, customer)
	var s InvoiceSlot
	if err := row.Scan(&s.ID, &s.Stub, &s.InvoiceNo, &s.Status, &s.CustomerName, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%d", ErrStubNotFound, stub, invoiceNo)
		}
		return nil, err
	}
	return &s, nil
}

// StubExists reports whether any slot carries the exact stub label.
// Matching is case-sensitive on purpose.
func (r *Repository) StubExists(ctx context.Context, stub string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoice_slots WHERE stub = $1)`, stub).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// RenameStub relabels every slot under currentStub in one statement.
func (r *Repository) RenameStub(ctx context.Context, currentStub, newStub string) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoice_slots SET stub = $2, updated_at = NOW() WHERE stub = $1`,
		currentStub, newStub)
	if err != nil {
		return 0, fmt.Errorf("invoice: rename stub: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteStub removes every slot under the stub in one statement.
func (r *Repository) DeleteStub(ctx context.Context, stub string) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoice_slots WHERE stub = $1`, stub)
	if err != nil {
		return 0, fmt.Errorf("invoice: delete stub: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// LatestSlot returns the slot with the highest invoice number, nil when no
// slot exists yet.
func (r *Repository) LatestSlot(ctx context.Context) (*InvoiceSlot, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+slotColumns+` FROM invoice_slots ORDER BY invoice_no DESC LIMIT 1`)
	var s InvoiceSlot
	if err := row.Scan(&s.ID, &s.Stub, &s.InvoiceNo, &s.Status, &s.CustomerName, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
