package renewal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind names a compliance document tracked per truck.
type Kind string

const (
	KindLTO       Kind = "LTO"
	KindLTFRB     Kind = "LTFRB"
	KindInsurance Kind = "INSURANCE"
)

// Valid reports whether k is a known document kind.
func (k Kind) Valid() bool {
	switch k {
	case KindLTO, KindLTFRB, KindInsurance:
		return true
	}
	return false
}

// Record is the current compliance document of one kind for one truck.
// Each renewal moves end dates forward and appends a History entry; the
// record itself always reflects the latest state.
type Record struct {
	ID          int64     `json:"id"`
	TruckID     int64     `json:"truckId"`
	PlateNumber string    `json:"plateNumber"`
	Kind        Kind      `json:"kind"`
	ReferenceNo string    `json:"referenceNo"`
	Provider    string    `json:"provider"`
	IssuedDate  string    `json:"issuedDate"`
	ExpiryDate  string    `json:"expiryDate"`
	Remarks     string    `json:"remarks"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// History is one append-only renewal event for a record.
type History struct {
	ID             int64           `json:"id"`
	RecordID       int64           `json:"recordId"`
	PlateNumber    string          `json:"plateNumber"`
	Kind           Kind            `json:"kind"`
	PreviousExpiry string          `json:"previousExpiry"`
	NewExpiry      string          `json:"newExpiry"`
	Cost           decimal.Decimal `json:"cost"`
	RenewedAt      time.Time       `json:"renewedAt"`
}

// RecordInput carries create/update fields for a compliance record.
type RecordInput struct {
	TruckID     int64  `json:"truckId" validate:"required"`
	ReferenceNo string `json:"referenceNo" validate:"required"`
	Provider    string `json:"provider"`
	IssuedDate  string `json:"issuedDate" validate:"required,datetime=2006-01-02"`
	ExpiryDate  string `json:"expiryDate" validate:"required,datetime=2006-01-02"`
	Remarks     string `json:"remarks"`
}

// RenewInput carries the fields of a renewal event.
type RenewInput struct {
	NewExpiry   string `json:"newExpiry" validate:"required,datetime=2006-01-02"`
	ReferenceNo string `json:"referenceNo"`
	Cost        string `json:"cost"`
}
