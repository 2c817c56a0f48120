package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementIn represents an inbound movement.
	MovementIn MovementType = "IN"
	// MovementOut represents an outbound movement.
	MovementOut MovementType = "OUT"
	// MovementAdjust indicates a manual correction, positive or negative.
	MovementAdjust MovementType = "ADJUST"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust:
		return true
	}
	return false
}

// Item is a catalog entry.
type Item struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	OnHand      decimal.Decimal `json:"onHand"`
	WarehouseID int64           `json:"warehouseId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// StockMovement is one posted change to an item's on-hand quantity.
type StockMovement struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"itemId"`
	SKU       string          `json:"sku"`
	Type      MovementType    `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Balance   decimal.Decimal `json:"balance"`
	Reference string          `json:"reference"`
	Note      string          `json:"note"`
	PostedAt  time.Time       `json:"postedAt"`
}

// Purchase records goods bought in; posting one also posts the matching
// inbound movement.
type Purchase struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"itemId"`
	SKU       string          `json:"sku"`
	Supplier  string          `json:"supplier"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	TotalCost decimal.Decimal `json:"totalCost"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
}

// RequestStatus is the material request lifecycle.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestApproved  RequestStatus = "APPROVED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestFulfilled RequestStatus = "FULFILLED"
)

// MaterialRequest asks for stock to be released to a requester; fulfilling
// it posts the matching outbound movement.
type MaterialRequest struct {
	ID          int64           `json:"id"`
	ItemID      int64           `json:"itemId"`
	SKU         string          `json:"sku"`
	Quantity    decimal.Decimal `json:"quantity"`
	RequestedBy string          `json:"requestedBy"`
	Purpose     string          `json:"purpose"`
	Status      RequestStatus   `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ItemInput carries create/update fields for a catalog item.
type ItemInput struct {
	SKU         string `json:"sku" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Unit        string `json:"unit" validate:"required"`
	WarehouseID int64  `json:"warehouseId"`
}

// MovementInput carries the fields of a stock movement post.
type MovementInput struct {
	ItemID    int64        `json:"itemId" validate:"required"`
	Type      MovementType `json:"type" validate:"required"`
	Quantity  string       `json:"quantity" validate:"required"`
	Reference string       `json:"reference"`
	Note      string       `json:"note"`
}

// PurchaseInput carries the fields of a purchase post.
type PurchaseInput struct {
	ItemID   int64  `json:"itemId" validate:"required"`
	Supplier string `json:"supplier" validate:"required"`
	Quantity string `json:"quantity" validate:"required"`
	UnitCost string `json:"unitCost" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
}

// MaterialRequestInput carries the fields of a new material request.
type MaterialRequestInput struct {
	ItemID      int64  `json:"itemId" validate:"required"`
	Quantity    string `json:"quantity" validate:"required"`
	RequestedBy string `json:"requestedBy" validate:"required"`
	Purpose     string `json:"purpose"`
}
