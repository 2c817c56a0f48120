package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period is a pay window keyed by its exact start and end dates
// (YYYY-MM-DD). Draft rows belong to exactly one period.
type Period struct {
	Start string `json:"startDate"`
	End   string `json:"endDate"`
}

// Validate checks both bounds parse as dates and are ordered.
func (p Period) Validate() error {
	start, err := time.Parse("2006-01-02", p.Start)
	if err != nil {
		return fmt.Errorf("%w: start date %q", ErrInvalidPeriod, p.Start)
	}
	end, err := time.Parse("2006-01-02", p.End)
	if err != nil {
		return fmt.Errorf("%w: end date %q", ErrInvalidPeriod, p.End)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start %s after end %s", ErrInvalidPeriod, p.Start, p.End)
	}
	return nil
}

// Key is the canonical period identifier used by the autosaver.
func (p Period) Key() string {
	return p.Start + ".." + p.End
}

// DraftRow is one editable pay entry in the pakyaw grid. Kilo, Rate and
// Deduction hold the raw text the clerk typed; derived totals are
// recomputed from them on every edit. Text that fails the numeric pattern
// is kept so typing can continue, with Invalid flagged for display.
type DraftRow struct {
	RowID       string          `json:"rowId"`
	EmployeeID  string          `json:"employeeId"`
	Name        string          `json:"name"`
	PaymentType string          `json:"paymentType"`
	Category    string          `json:"category"`
	Kilo        string          `json:"kilo"`
	Rate        string          `json:"rate"`
	Deduction   string          `json:"deduction"`
	Total       decimal.Decimal `json:"total"`
	NetTotal    decimal.Decimal `json:"netTotal"`
	ManualEntry bool            `json:"isManualEntry"`
	Invalid     bool            `json:"invalid"`
}

// RosterEmployee is the baseline input when no draft exists for a period.
type RosterEmployee struct {
	EmployeeID  string
	Name        string
	PaymentType string
	Category    string
	Wage        decimal.Decimal
}

// Category labels a pakyaw work type.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Report is the immutable record generated from a selected set of rows.
type Report struct {
	ID          int64           `json:"id"`
	PeriodStart string          `json:"startDate"`
	PeriodEnd   string          `json:"endDate"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Rows        []ReportRow     `json:"rows"`
	TotalPay    decimal.Decimal `json:"totalPay"`
}

// ReportRow is a frozen copy of a draft row at generation time.
type ReportRow struct {
	EmployeeID  string          `json:"employeeId"`
	Name        string          `json:"name"`
	PaymentType string          `json:"paymentType"`
	Category    string          `json:"category"`
	Kilo        decimal.Decimal `json:"kilo"`
	Rate        decimal.Decimal `json:"rate"`
	Deduction   decimal.Decimal `json:"deduction"`
	Total       decimal.Decimal `json:"total"`
	NetTotal    decimal.Decimal `json:"netTotal"`
}
