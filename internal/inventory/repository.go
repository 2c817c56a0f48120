package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/scardogs/justines-cargo-backoffice/internal/platform/db"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

// Repository provides PostgreSQL backed persistence for inventory.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, sku, name, unit, on_hand::text, warehouse_id, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var item Item
	var onHand string
	err := row.Scan(&item.ID, &item.SKU, &item.Name, &item.Unit, &onHand, &item.WarehouseID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if item.OnHand, err = decimal.NewFromString(onHand); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *Repository) GetItem(ctx context.Context, id int64) (*Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *Repository) CreateItem(ctx context.Context, in ItemInput) (*Item, error) {
	return scanItem(r.pool.QueryRow(ctx, `
		INSERT INTO items (sku, name, unit, on_hand, warehouse_id, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, NOW(), NOW())
		RETURNING `+itemColumns,
		in.SKU, in.Name, in.Unit, in.WarehouseID))
}

func (r *Repository) UpdateItem(ctx context.Context, id int64, in ItemInput) (*Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `
		UPDATE items SET sku = $2, name = $3, unit = $4, warehouse_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+itemColumns,
		id, in.SKU, in.Name, in.Unit, in.WarehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// PostMovement locks the item row, applies the delta, and records the
// movement with the balance it produced.
func (r *Repository) PostMovement(ctx context.Context, itemID int64, typ MovementType, delta decimal.Decimal, reference, note string) (*StockMovement, error) {
	var movement StockMovement
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var balance string
		err := tx.QueryRow(ctx, `
			UPDATE items SET on_hand = on_hand + $2, updated_at = NOW()
			WHERE id = $1
			RETURNING on_hand::text`, itemID, delta.String()).Scan(&balance)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO stock_movements (item_id, movement_type, quantity, balance, reference, note, posted_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING id, posted_at`,
			itemID, typ, delta.String(), balance, reference, note).Scan(&movement.ID, &movement.PostedAt)
		if err != nil {
			return err
		}
		movement.ItemID = itemID
		movement.Type = typ
		movement.Quantity = delta
		movement.Reference = reference
		movement.Note = note
		movement.Balance, err = decimal.NewFromString(balance)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *Repository) ListMovements(ctx context.Context, itemID int64) ([]StockMovement, error) {
	query := `
		SELECT m.id, m.item_id, i.sku, m.movement_type, m.quantity::text, m.balance::text, m.reference, m.note, m.posted_at
		FROM stock_movements m JOIN items i ON i.id = m.item_id`
	args := []any{}
	if itemID > 0 {
		query += ` WHERE m.item_id = $1`
		args = append(args, itemID)
	}
	query += ` ORDER BY m.posted_at DESC, m.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockMovement
	for rows.Next() {
		var m StockMovement
		var qty, balance string
		if err := rows.Scan(&m.ID, &m.ItemID, &m.SKU, &m.Type, &qty, &balance, &m.Reference, &m.Note, &m.PostedAt); err != nil {
			return nil, err
		}
		if m.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, err
		}
		if m.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) CreatePurchase(ctx context.Context, in PurchaseInput, qty, unitCost decimal.Decimal) (*Purchase, error) {
	var p Purchase
	total := qty.Mul(unitCost)
	err := r.pool.QueryRow(ctx, `
		INSERT INTO purchases (item_id, supplier, quantity, unit_cost, total_cost, purchase_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`,
		in.ItemID, in.Supplier, qty.String(), unitCost.String(), total.String(), in.Date).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ItemID = in.ItemID
	p.Supplier = in.Supplier
	p.Quantity = qty
	p.UnitCost = unitCost
	p.TotalCost = total
	p.Date = in.Date
	return &p, nil
}

func (r *Repository) ListPurchases(ctx context.Context) ([]Purchase, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.item_id, i.sku, p.supplier, p.quantity::text, p.unit_cost::text, p.total_cost::text, p.purchase_date::text, p.created_at
		FROM purchases p JOIN items i ON i.id = p.item_id
		ORDER BY p.purchase_date DESC, p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		var p Purchase
		var qty, unitCost, total string
		if err := rows.Scan(&p.ID, &p.ItemID, &p.SKU, &p.Supplier, &qty, &unitCost, &total, &p.Date, &p.CreatedAt); err != nil {
			return nil, err
		}
		if p.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, err
		}
		if p.UnitCost, err = decimal.NewFromString(unitCost); err != nil {
			return nil, err
		}
		if p.TotalCost, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const requestColumns = `r.id, r.item_id, i.sku, r.quantity::text, r.requested_by, r.purpose, r.status, r.created_at, r.updated_at`

func scanRequest(row pgx.Row) (*MaterialRequest, error) {
	var req MaterialRequest
	var qty string
	err := row.Scan(&req.ID, &req.ItemID, &req.SKU, &qty, &req.RequestedBy, &req.Purpose, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if req.Quantity, err = decimal.NewFromString(qty); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *Repository) CreateMaterialRequest(ctx context.Context, in MaterialRequestInput, qty decimal.Decimal) (*MaterialRequest, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO material_requests (item_id, quantity, requested_by, purpose, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'PENDING', NOW(), NOW())
		RETURNING id`,
		in.ItemID, qty.String(), in.RequestedBy, in.Purpose).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetMaterialRequest(ctx, id)
}

func (r *Repository) GetMaterialRequest(ctx context.Context, id int64) (*MaterialRequest, error) {
	req, err := scanRequest(r.pool.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM material_requests r JOIN items i ON i.id = r.item_id
		WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *Repository) UpdateMaterialRequestStatus(ctx context.Context, id int64, status RequestStatus) (*MaterialRequest, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE material_requests SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetMaterialRequest(ctx, id)
}

func (r *Repository) ListMaterialRequests(ctx context.Context) ([]MaterialRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM material_requests r JOIN items i ON i.id = r.item_id
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MaterialRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}
