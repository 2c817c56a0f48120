package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scardogs/justines-cargo-backoffice/internal/inventory"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
	_ "github.com/scardogs/justines-cargo-backoffice/testing"
)

type memoryRepo struct {
	items     map[int64]*inventory.Item
	movements []inventory.StockMovement
	purchases []inventory.Purchase
	requests  map[int64]*inventory.MaterialRequest
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		items:    make(map[int64]*inventory.Item),
		requests: make(map[int64]*inventory.MaterialRequest),
	}
}

func (m *memoryRepo) id() int64 { m.nextID++; return m.nextID }

func (m *memoryRepo) ListItems(context.Context) ([]inventory.Item, error) {
	out := make([]inventory.Item, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, *item)
	}
	return out, nil
}

func (m *memoryRepo) GetItem(_ context.Context, id int64) (*inventory.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (m *memoryRepo) CreateItem(_ context.Context, in inventory.ItemInput) (*inventory.Item, error) {
	item := &inventory.Item{ID: m.id(), SKU: in.SKU, Name: in.Name, Unit: in.Unit, WarehouseID: in.WarehouseID}
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryRepo) UpdateItem(_ context.Context, id int64, in inventory.ItemInput) (*inventory.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	item.SKU, item.Name, item.Unit = in.SKU, in.Name, in.Unit
	return item, nil
}

func (m *memoryRepo) DeleteItem(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRepo) PostMovement(_ context.Context, itemID int64, typ inventory.MovementType, delta decimal.Decimal, reference, note string) (*inventory.StockMovement, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	item.OnHand = item.OnHand.Add(delta)
	movement := inventory.StockMovement{
		ID: m.id(), ItemID: itemID, SKU: item.SKU, Type: typ,
		Quantity: delta, Balance: item.OnHand, Reference: reference, Note: note,
	}
	m.movements = append(m.movements, movement)
	return &movement, nil
}

func (m *memoryRepo) ListMovements(_ context.Context, itemID int64) ([]inventory.StockMovement, error) {
	if itemID == 0 {
		return m.movements, nil
	}
	var out []inventory.StockMovement
	for _, mv := range m.movements {
		if mv.ItemID == itemID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m *memoryRepo) CreatePurchase(_ context.Context, in inventory.PurchaseInput, qty, unitCost decimal.Decimal) (*inventory.Purchase, error) {
	p := inventory.Purchase{
		ID: m.id(), ItemID: in.ItemID, Supplier: in.Supplier,
		Quantity: qty, UnitCost: unitCost, TotalCost: qty.Mul(unitCost), Date: in.Date,
	}
	m.purchases = append(m.purchases, p)
	return &p, nil
}

func (m *memoryRepo) ListPurchases(context.Context) ([]inventory.Purchase, error) {
	return m.purchases, nil
}

func (m *memoryRepo) CreateMaterialRequest(_ context.Context, in inventory.MaterialRequestInput, qty decimal.Decimal) (*inventory.MaterialRequest, error) {
	req := &inventory.MaterialRequest{
		ID: m.id(), ItemID: in.ItemID, Quantity: qty,
		RequestedBy: in.RequestedBy, Purpose: in.Purpose, Status: inventory.RequestPending,
	}
	m.requests[req.ID] = req
	return req, nil
}

func (m *memoryRepo) GetMaterialRequest(_ context.Context, id int64) (*inventory.MaterialRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return req, nil
}

func (m *memoryRepo) UpdateMaterialRequestStatus(_ context.Context, id int64, status inventory.RequestStatus) (*inventory.MaterialRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	req.Status = status
	return req, nil
}

func (m *memoryRepo) ListMaterialRequests(context.Context) ([]inventory.MaterialRequest, error) {
	out := make([]inventory.MaterialRequest, 0, len(m.requests))
	for _, req := range m.requests {
		out = append(out, *req)
	}
	return out, nil
}

func fixture(t *testing.T) (*inventory.Service, *memoryRepo, *inventory.Item) {
	t.Helper()
	repo := newMemoryRepo()
	svc := inventory.NewService(repo, nil, nil)
	item, err := svc.CreateItem(context.Background(), inventory.ItemInput{SKU: "SCRAP-01", Name: "Scrap metal", Unit: "kg"})
	require.NoError(t, err)
	return svc, repo, item
}

func TestPostMovementTracksBalance(t *testing.T) {
	svc, _, item := fixture(t)

	in, err := svc.PostMovement(context.Background(), inventory.MovementInput{
		ItemID: item.ID, Type: inventory.MovementIn, Quantity: "120.5", Reference: "GRN-1",
	})
	require.NoError(t, err)
	require.True(t, in.Balance.Equal(decimal.RequireFromString("120.5")))

	out, err := svc.PostMovement(context.Background(), inventory.MovementInput{
		ItemID: item.ID, Type: inventory.MovementOut, Quantity: "20.5",
	})
	require.NoError(t, err)
	require.True(t, out.Quantity.IsNegative())
	require.True(t, out.Balance.Equal(decimal.NewFromInt(100)))
}

func TestPostMovementGuardsNegativeStock(t *testing.T) {
	svc, repo, item := fixture(t)

	_, err := svc.PostMovement(context.Background(), inventory.MovementInput{
		ItemID: item.ID, Type: inventory.MovementOut, Quantity: "1",
	})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	require.Empty(t, repo.movements)
}

func TestPostMovementRejectsBadQuantity(t *testing.T) {
	svc, _, item := fixture(t)

	for _, quantity := range []string{"0", "-3", "abc"} {
		_, err := svc.PostMovement(context.Background(), inventory.MovementInput{
			ItemID: item.ID, Type: inventory.MovementIn, Quantity: quantity,
		})
		require.ErrorIs(t, err, inventory.ErrInvalidQuantity, "quantity %q", quantity)
	}

	// ADJUST accepts signed deltas but not zero.
	_, err := svc.PostMovement(context.Background(), inventory.MovementInput{
		ItemID: item.ID, Type: inventory.MovementAdjust, Quantity: "0",
	})
	require.ErrorIs(t, err, inventory.ErrInvalidQuantity)
}

func TestRecordPurchasePostsInboundMovement(t *testing.T) {
	svc, repo, item := fixture(t)

	purchase, err := svc.RecordPurchase(context.Background(), inventory.PurchaseInput{
		ItemID: item.ID, Supplier: "Steelworks", Quantity: "50", UnitCost: "12.25", Date: "2025-06-10",
	})
	require.NoError(t, err)
	require.True(t, purchase.TotalCost.Equal(decimal.RequireFromString("612.5")))

	require.Len(t, repo.movements, 1)
	require.Equal(t, inventory.MovementIn, repo.movements[0].Type)
	require.Contains(t, repo.movements[0].Reference, "purchase:")
	require.True(t, repo.items[item.ID].OnHand.Equal(decimal.NewFromInt(50)))
}

func TestMaterialRequestLifecycle(t *testing.T) {
	svc, repo, item := fixture(t)
	actor := &shared.Token{UserID: 5}

	// Stock the item first so fulfillment can draw from it.
	_, err := svc.PostMovement(context.Background(), inventory.MovementInput{
		ItemID: item.ID, Type: inventory.MovementIn, Quantity: "10",
	})
	require.NoError(t, err)

	req, err := svc.CreateMaterialRequest(context.Background(), inventory.MaterialRequestInput{
		ItemID: item.ID, Quantity: "4", RequestedBy: "Reyes",
	})
	require.NoError(t, err)
	require.Equal(t, inventory.RequestPending, req.Status)

	// PENDING cannot jump straight to FULFILLED.
	_, err = svc.TransitionMaterialRequest(context.Background(), actor, req.ID, inventory.RequestFulfilled)
	require.ErrorIs(t, err, inventory.ErrInvalidTransition)

	_, err = svc.TransitionMaterialRequest(context.Background(), actor, req.ID, inventory.RequestApproved)
	require.NoError(t, err)

	fulfilled, err := svc.TransitionMaterialRequest(context.Background(), actor, req.ID, inventory.RequestFulfilled)
	require.NoError(t, err)
	require.Equal(t, inventory.RequestFulfilled, fulfilled.Status)
	require.True(t, repo.items[item.ID].OnHand.Equal(decimal.NewFromInt(6)))
}

func TestTransitionRequiresToken(t *testing.T) {
	svc, _, item := fixture(t)
	req, err := svc.CreateMaterialRequest(context.Background(), inventory.MaterialRequestInput{
		ItemID: item.ID, Quantity: "1", RequestedBy: "Reyes",
	})
	require.NoError(t, err)

	_, err = svc.TransitionMaterialRequest(context.Background(), nil, req.ID, inventory.RequestApproved)
	require.ErrorIs(t, err, shared.ErrTokenRequired)
}
