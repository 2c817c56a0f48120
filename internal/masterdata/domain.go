package masterdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Individual is a client person. Consignees hang off the individual and are
// the parties goods get released to.
type Individual struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactNumber string    `json:"contactNumber"`
	Address       string    `json:"address"`
	TIN           string    `json:"tin"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Consignee is a receiving party tied to either an individual or a company
// through OwnerID plus the mounting route.
type Consignee struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"ownerId"`
	Name          string    `json:"name"`
	ContactNumber string    `json:"contactNumber"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Company is a corporate client.
type Company struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contactPerson"`
	ContactNumber string    `json:"contactNumber"`
	Address       string    `json:"address"`
	TIN           string    `json:"tin"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Warehouse is a storage location.
type Warehouse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Location      string    `json:"location"`
	ContactNumber string    `json:"contactNumber"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Truck is a fleet vehicle. Renewal records reference it by plate number.
type Truck struct {
	ID          int64     `json:"id"`
	PlateNumber string    `json:"plateNumber"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	Status      string    `json:"status"`
	Driver      string    `json:"driver"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TripExpense is a cost entry logged against a truck trip.
type TripExpense struct {
	ID          int64           `json:"id"`
	TruckID     int64           `json:"truckId"`
	PlateNumber string          `json:"plateNumber"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// IndividualInput carries create/update fields for an individual client.
type IndividualInput struct {
	Name          string `json:"name" validate:"required"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
	TIN           string `json:"tin"`
}

// ConsigneeInput carries create/update fields for a consignee.
type ConsigneeInput struct {
	Name          string `json:"name" validate:"required"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
}

// CompanyInput carries create/update fields for a company.
type CompanyInput struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contactPerson"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
	TIN           string `json:"tin"`
}

// WarehouseInput carries create/update fields for a warehouse.
type WarehouseInput struct {
	Name          string `json:"name" validate:"required"`
	Location      string `json:"location" validate:"required"`
	ContactNumber string `json:"contactNumber"`
}

// TruckInput carries create/update fields for a truck.
type TruckInput struct {
	PlateNumber string `json:"plateNumber" validate:"required"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year" validate:"omitempty,gte=1950"`
	Status      string `json:"status" validate:"omitempty,oneof=ACTIVE MAINTENANCE RETIRED"`
	Driver      string `json:"driver"`
}

// TripExpenseInput carries create fields for a trip expense.
type TripExpenseInput struct {
	TruckID     int64  `json:"truckId" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
}
