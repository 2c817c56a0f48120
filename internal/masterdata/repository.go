package masterdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

// Repository provides PostgreSQL backed persistence for masterdata entities.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	return err
}

func deleted(tag interface{ RowsAffected() int64 }) error {
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Individuals

func (r *Repository) ListIndividuals(ctx context.Context) ([]Individual, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, contact_number, address, tin, created_at, updated_at
		FROM individuals ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Individual
	for rows.Next() {
		var ind Individual
		if err := rows.Scan(&ind.ID, &ind.Name, &ind.ContactNumber, &ind.Address, &ind.TIN, &ind.CreatedAt, &ind.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ind)
	}
	return out, rows.Err()
}

func (r *Repository) GetIndividual(ctx context.Context, id int64) (*Individual, error) {
	var ind Individual
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, contact_number, address, tin, created_at, updated_at
		FROM individuals WHERE id = $1`, id).
		Scan(&ind.ID, &ind.Name, &ind.ContactNumber, &ind.Address, &ind.TIN, &ind.CreatedAt, &ind.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &ind, nil
}

func (r *Repository) CreateIndividual(ctx context.Context, in IndividualInput) (*Individual, error) {
	var ind Individual
	err := r.pool.QueryRow(ctx, `
		INSERT INTO individuals (name, contact_number, address, tin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, name, contact_number, address, tin, created_at, updated_at`,
		in.Name, in.ContactNumber, in.Address, in.TIN).
		Scan(&ind.ID, &ind.Name, &ind.ContactNumber, &ind.Address, &ind.TIN, &ind.CreatedAt, &ind.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ind, nil
}

func (r *Repository) UpdateIndividual(ctx context.Context, id int64, in IndividualInput) (*Individual, error) {
	var ind Individual
	err := r.pool.QueryRow(ctx, `
		UPDATE individuals SET name = $2, contact_number = $3, address = $4, tin = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, contact_number, address, tin, created_at, updated_at`,
		id, in.Name, in.ContactNumber, in.Address, in.TIN).
		Scan(&ind.ID, &ind.Name, &ind.ContactNumber, &ind.Address, &ind.TIN, &ind.CreatedAt, &ind.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &ind, nil
}

func (r *Repository) DeleteIndividual(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM individuals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return deleted(tag)
}

// Consignees are stored in two tables with identical shape; owner selects
// which one a query touches.

type ConsigneeOwner string

const (
	OwnerIndividual ConsigneeOwner = "individual"
	OwnerCompany    ConsigneeOwner = "company"
)

func consigneeTable(owner ConsigneeOwner) (string, string, error) {
	switch owner {
	case OwnerIndividual:
		return "individual_consignees", "individual_id", nil
	case OwnerCompany:
		return "company_consignees", "company_id", nil
	}
	return "", "", fmt.Errorf("masterdata: unknown consignee owner %q", owner)
}

func (r *Repository) ListConsignees(ctx context.Context, owner ConsigneeOwner, ownerID int64) ([]Consignee, error) {
	table, fk, err := consigneeTable(owner)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, %s, name, contact_number, address, created_at, updated_at
		FROM %s WHERE %s = $1 ORDER BY name`, fk, table, fk), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Consignee
	for rows.Next() {
		var c Consignee
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.ContactNumber, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) CreateConsignee(ctx context.Context, owner ConsigneeOwner, ownerID int64, in ConsigneeInput) (*Consignee, error) {
	table, fk, err := consigneeTable(owner)
	if err != nil {
		return nil, err
	}
	var c Consignee
	err = r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s, name, contact_number, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, %s, name, contact_number, address, created_at, updated_at`, table, fk, fk),
		ownerID, in.Name, in.ContactNumber, in.Address).
		Scan(&c.ID, &c.OwnerID, &c.Name, &c.ContactNumber, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) UpdateConsignee(ctx context.Context, owner ConsigneeOwner, id int64, in ConsigneeInput) (*Consignee, error) {
	table, fk, err := consigneeTable(owner)
	if err != nil {
		return nil, err
	}
	var c Consignee
	err = r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s SET name = $2, contact_number = $3, address = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, %s, name, contact_number, address, created_at, updated_at`, table, fk),
		id, in.Name, in.ContactNumber, in.Address).
		Scan(&c.ID, &c.OwnerID, &c.Name, &c.ContactNumber, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *Repository) DeleteConsignee(ctx context.Context, owner ConsigneeOwner, id int64) error {
	table, _, err := consigneeTable(owner)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return err
	}
	return deleted(tag)
}

// Companies

func (r *Repository) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, contact_person, contact_number, address, tin, created_at, updated_at
		FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.ContactPerson, &c.ContactNumber, &c.Address, &c.TIN, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) GetCompany(ctx context.Context, id int64) (*Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, contact_person, contact_number, address, tin, created_at, updated_at
		FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.ContactPerson, &c.ContactNumber, &c.Address, &c.TIN, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *Repository) CreateCompany(ctx context.Context, in CompanyInput) (*Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `
		INSERT INTO companies (name, contact_person, contact_number, address, tin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, name, contact_person, contact_number, address, tin, created_at, updated_at`,
		in.Name, in.ContactPerson, in.ContactNumber, in.Address, in.TIN).
		Scan(&c.ID, &c.Name, &c.ContactPerson, &c.ContactNumber, &c.Address, &c.TIN, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) UpdateCompany(ctx context.Context, id int64, in CompanyInput) (*Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `
		UPDATE companies SET name = $2, contact_person = $3, contact_number = $4, address = $5, tin = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, contact_person, contact_number, address, tin, created_at, updated_at`,
		id, in.Name, in.ContactPerson, in.ContactNumber, in.Address, in.TIN).
		Scan(&c.ID, &c.Name, &c.ContactPerson, &c.ContactNumber, &c.Address, &c.TIN, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *Repository) DeleteCompany(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return deleted(tag)
}

// Warehouses

func (r *Repository) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, location, contact_number, created_at, updated_at
		FROM warehouses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Warehouse
	for rows.Next() {
		var wh Warehouse
		if err := rows.Scan(&wh.ID, &wh.Name, &wh.Location, &wh.ContactNumber, &wh.CreatedAt, &wh.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, wh)
	}
	return out, rows.Err()
}

func (r *Repository) GetWarehouse(ctx context.Context, id int64) (*Warehouse, error) {
	var wh Warehouse
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, location, contact_number, created_at, updated_at
		FROM warehouses WHERE id = $1`, id).
		Scan(&wh.ID, &wh.Name, &wh.Location, &wh.ContactNumber, &wh.CreatedAt, &wh.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &wh, nil
}

func (r *Repository) CreateWarehouse(ctx context.Context, in WarehouseInput) (*Warehouse, error) {
	var wh Warehouse
	err := r.pool.QueryRow(ctx, `
		INSERT INTO warehouses (name, location, contact_number, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, name, location, contact_number, created_at, updated_at`,
		in.Name, in.Location, in.ContactNumber).
		Scan(&wh.ID, &wh.Name, &wh.Location, &wh.ContactNumber, &wh.CreatedAt, &wh.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &wh, nil
}

func (r *Repository) UpdateWarehouse(ctx context.Context, id int64, in WarehouseInput) (*Warehouse, error) {
	var wh Warehouse
	err := r.pool.QueryRow(ctx, `
		UPDATE warehouses SET name = $2, location = $3, contact_number = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, location, contact_number, created_at, updated_at`,
		id, in.Name, in.Location, in.ContactNumber).
		Scan(&wh.ID, &wh.Name, &wh.Location, &wh.ContactNumber, &wh.CreatedAt, &wh.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &wh, nil
}

func (r *Repository) DeleteWarehouse(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return deleted(tag)
}

// Trucks

const truckColumns = `id, plate_number, make, model, year, status, driver, created_at, updated_at`

func scanTruck(row pgx.Row) (*Truck, error) {
	var t Truck
	err := row.Scan(&t.ID, &t.PlateNumber, &t.Make, &t.Model, &t.Year, &t.Status, &t.Driver, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) ListTrucks(ctx context.Context) ([]Truck, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+truckColumns+` FROM trucks ORDER BY plate_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Truck
	for rows.Next() {
		t, err := scanTruck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repository) GetTruck(ctx context.Context, id int64) (*Truck, error) {
	t, err := scanTruck(r.pool.QueryRow(ctx, `SELECT `+truckColumns+` FROM trucks WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *Repository) CreateTruck(ctx context.Context, in TruckInput) (*Truck, error) {
	return scanTruck(r.pool.QueryRow(ctx, `
		INSERT INTO trucks (plate_number, make, model, year, status, driver, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING `+truckColumns,
		in.PlateNumber, in.Make, in.Model, in.Year, in.Status, in.Driver))
}

func (r *Repository) UpdateTruck(ctx context.Context, id int64, in TruckInput) (*Truck, error) {
	t, err := scanTruck(r.pool.QueryRow(ctx, `
		UPDATE trucks SET plate_number = $2, make = $3, model = $4, year = $5, status = $6, driver = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+truckColumns,
		id, in.PlateNumber, in.Make, in.Model, in.Year, in.Status, in.Driver))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *Repository) DeleteTruck(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trucks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return deleted(tag)
}

// Trip expenses

func (r *Repository) ListTripExpenses(ctx context.Context, truckID int64) ([]TripExpense, error) {
	query := `
		SELECT e.id, e.truck_id, t.plate_number, e.expense_date::text, e.description, e.amount::text, e.created_at
		FROM trip_expenses e JOIN trucks t ON t.id = e.truck_id`
	args := []any{}
	if truckID > 0 {
		query += ` WHERE e.truck_id = $1`
		args = append(args, truckID)
	}
	query += ` ORDER BY e.expense_date DESC, e.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TripExpense
	for rows.Next() {
		var e TripExpense
		var amount string
		if err := rows.Scan(&e.ID, &e.TruckID, &e.PlateNumber, &e.Date, &e.Description, &amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) CreateTripExpense(ctx context.Context, in TripExpenseInput, amount decimal.Decimal) (*TripExpense, error) {
	var e TripExpense
	err := r.pool.QueryRow(ctx, `
		INSERT INTO trip_expenses (truck_id, expense_date, description, amount, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, truck_id, expense_date::text, description, created_at`,
		in.TruckID, in.Date, in.Description, amount.String()).
		Scan(&e.ID, &e.TruckID, &e.Date, &e.Description, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Amount = amount
	return &e, nil
}

func (r *Repository) DeleteTripExpense(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trip_expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return deleted(tag)
}
