package masterdata_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scardogs/justines-cargo-backoffice/internal/masterdata"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
	_ "github.com/scardogs/justines-cargo-backoffice/testing"
)

type memoryRepo struct {
	individuals map[int64]*masterdata.Individual
	warehouses  map[int64]*masterdata.Warehouse
	trucks      map[int64]*masterdata.Truck
	expenses    []masterdata.TripExpense
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		individuals: make(map[int64]*masterdata.Individual),
		warehouses:  make(map[int64]*masterdata.Warehouse),
		trucks:      make(map[int64]*masterdata.Truck),
	}
}

func (m *memoryRepo) id() int64 { m.nextID++; return m.nextID }

func (m *memoryRepo) ListIndividuals(context.Context) ([]masterdata.Individual, error) {
	out := make([]masterdata.Individual, 0, len(m.individuals))
	for _, ind := range m.individuals {
		out = append(out, *ind)
	}
	return out, nil
}

func (m *memoryRepo) GetIndividual(_ context.Context, id int64) (*masterdata.Individual, error) {
	ind, ok := m.individuals[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return ind, nil
}

func (m *memoryRepo) CreateIndividual(_ context.Context, in masterdata.IndividualInput) (*masterdata.Individual, error) {
	ind := &masterdata.Individual{ID: m.id(), Name: in.Name, ContactNumber: in.ContactNumber, Address: in.Address, TIN: in.TIN}
	m.individuals[ind.ID] = ind
	return ind, nil
}

func (m *memoryRepo) UpdateIndividual(_ context.Context, id int64, in masterdata.IndividualInput) (*masterdata.Individual, error) {
	ind, ok := m.individuals[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	ind.Name, ind.ContactNumber, ind.Address, ind.TIN = in.Name, in.ContactNumber, in.Address, in.TIN
	return ind, nil
}

func (m *memoryRepo) DeleteIndividual(_ context.Context, id int64) error {
	if _, ok := m.individuals[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.individuals, id)
	return nil
}

func (m *memoryRepo) ListConsignees(context.Context, masterdata.ConsigneeOwner, int64) ([]masterdata.Consignee, error) {
	return nil, nil
}

func (m *memoryRepo) CreateConsignee(_ context.Context, _ masterdata.ConsigneeOwner, ownerID int64, in masterdata.ConsigneeInput) (*masterdata.Consignee, error) {
	return &masterdata.Consignee{ID: m.id(), OwnerID: ownerID, Name: in.Name}, nil
}

func (m *memoryRepo) UpdateConsignee(_ context.Context, _ masterdata.ConsigneeOwner, id int64, in masterdata.ConsigneeInput) (*masterdata.Consignee, error) {
	return &masterdata.Consignee{ID: id, Name: in.Name}, nil
}

func (m *memoryRepo) DeleteConsignee(context.Context, masterdata.ConsigneeOwner, int64) error {
	return nil
}

func (m *memoryRepo) ListCompanies(context.Context) ([]masterdata.Company, error) { return nil, nil }
func (m *memoryRepo) GetCompany(context.Context, int64) (*masterdata.Company, error) {
	return nil, shared.ErrNotFound
}
func (m *memoryRepo) CreateCompany(_ context.Context, in masterdata.CompanyInput) (*masterdata.Company, error) {
	return &masterdata.Company{ID: m.id(), Name: in.Name}, nil
}
func (m *memoryRepo) UpdateCompany(_ context.Context, id int64, in masterdata.CompanyInput) (*masterdata.Company, error) {
	return &masterdata.Company{ID: id, Name: in.Name}, nil
}
func (m *memoryRepo) DeleteCompany(context.Context, int64) error { return nil }

func (m *memoryRepo) ListWarehouses(context.Context) ([]masterdata.Warehouse, error) {
	out := make([]masterdata.Warehouse, 0, len(m.warehouses))
	for _, wh := range m.warehouses {
		out = append(out, *wh)
	}
	return out, nil
}

func (m *memoryRepo) GetWarehouse(_ context.Context, id int64) (*masterdata.Warehouse, error) {
	wh, ok := m.warehouses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return wh, nil
}

func (m *memoryRepo) CreateWarehouse(_ context.Context, in masterdata.WarehouseInput) (*masterdata.Warehouse, error) {
	wh := &masterdata.Warehouse{ID: m.id(), Name: in.Name, Location: in.Location}
	m.warehouses[wh.ID] = wh
	return wh, nil
}

func (m *memoryRepo) UpdateWarehouse(_ context.Context, id int64, in masterdata.WarehouseInput) (*masterdata.Warehouse, error) {
	wh, ok := m.warehouses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	wh.Name, wh.Location = in.Name, in.Location
	return wh, nil
}

func (m *memoryRepo) DeleteWarehouse(_ context.Context, id int64) error {
	if _, ok := m.warehouses[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.warehouses, id)
	return nil
}

func (m *memoryRepo) ListTrucks(context.Context) ([]masterdata.Truck, error) {
	out := make([]masterdata.Truck, 0, len(m.trucks))
	for _, t := range m.trucks {
		out = append(out, *t)
	}
	return out, nil
}

func (m *memoryRepo) GetTruck(_ context.Context, id int64) (*masterdata.Truck, error) {
	t, ok := m.trucks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return t, nil
}

func (m *memoryRepo) CreateTruck(_ context.Context, in masterdata.TruckInput) (*masterdata.Truck, error) {
	t := &masterdata.Truck{ID: m.id(), PlateNumber: in.PlateNumber, Status: in.Status, Year: in.Year}
	m.trucks[t.ID] = t
	return t, nil
}

func (m *memoryRepo) UpdateTruck(_ context.Context, id int64, in masterdata.TruckInput) (*masterdata.Truck, error) {
	t, ok := m.trucks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	t.PlateNumber, t.Status, t.Year = in.PlateNumber, in.Status, in.Year
	return t, nil
}

func (m *memoryRepo) DeleteTruck(_ context.Context, id int64) error {
	if _, ok := m.trucks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.trucks, id)
	return nil
}

func (m *memoryRepo) ListTripExpenses(context.Context, int64) ([]masterdata.TripExpense, error) {
	return m.expenses, nil
}

func (m *memoryRepo) CreateTripExpense(_ context.Context, in masterdata.TripExpenseInput, amount decimal.Decimal) (*masterdata.TripExpense, error) {
	e := masterdata.TripExpense{ID: m.id(), TruckID: in.TruckID, Date: in.Date, Description: in.Description, Amount: amount}
	m.expenses = append(m.expenses, e)
	return &e, nil
}

func (m *memoryRepo) DeleteTripExpense(context.Context, int64) error { return nil }

func newTestService(repo masterdata.RepositoryPort) *masterdata.Service {
	return masterdata.NewService(repo, nil, nil)
}

func TestCreateIndividualValidatesName(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.CreateIndividual(context.Background(), masterdata.IndividualInput{})
	require.Error(t, err)

	ind, err := svc.CreateIndividual(context.Background(), masterdata.IndividualInput{Name: "Dela Cruz"})
	require.NoError(t, err)
	require.Equal(t, "Dela Cruz", ind.Name)
}

func TestDeleteRequiresToken(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ind, err := svc.CreateIndividual(context.Background(), masterdata.IndividualInput{Name: "Dela Cruz"})
	require.NoError(t, err)

	err = svc.DeleteIndividual(context.Background(), nil, ind.ID)
	require.ErrorIs(t, err, shared.ErrTokenRequired)
	require.Len(t, repo.individuals, 1, "missing token must short-circuit before the repository")

	err = svc.DeleteIndividual(context.Background(), &shared.Token{UserID: 3}, ind.ID)
	require.NoError(t, err)
	require.Empty(t, repo.individuals)
}

func TestConsigneeMutationsRequireToken(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.CreateConsignee(context.Background(), nil, masterdata.OwnerCompany, 1, masterdata.ConsigneeInput{Name: "Receiving"})
	require.ErrorIs(t, err, shared.ErrTokenRequired)

	c, err := svc.CreateConsignee(context.Background(), &shared.Token{UserID: 3}, masterdata.OwnerCompany, 1, masterdata.ConsigneeInput{Name: "Receiving"})
	require.NoError(t, err)
	require.Equal(t, int64(1), c.OwnerID)
}

func TestCreateTruckDefaultsStatus(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	truck, err := svc.CreateTruck(context.Background(), masterdata.TruckInput{PlateNumber: "ABC-1234"})
	require.NoError(t, err)
	require.Equal(t, "ACTIVE", truck.Status)

	_, err = svc.CreateTruck(context.Background(), masterdata.TruckInput{PlateNumber: "XYZ-1", Status: "PARKED"})
	require.Error(t, err, "unknown status must fail validation")
}

func TestCreateTripExpenseParsesAmount(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.CreateTripExpense(context.Background(), masterdata.TripExpenseInput{
		TruckID: 1, Date: "2025-06-10", Description: "fuel", Amount: "abc",
	})
	require.ErrorIs(t, err, masterdata.ErrInvalidAmount)

	_, err = svc.CreateTripExpense(context.Background(), masterdata.TripExpenseInput{
		TruckID: 1, Date: "2025-06-10", Description: "fuel", Amount: "-5",
	})
	require.ErrorIs(t, err, masterdata.ErrInvalidAmount)

	e, err := svc.CreateTripExpense(context.Background(), masterdata.TripExpenseInput{
		TruckID: 1, Date: "2025-06-10", Description: "fuel", Amount: "1520.75",
	})
	require.NoError(t, err)
	require.True(t, e.Amount.Equal(decimal.RequireFromString("1520.75")))
}
