package invoice

import "time"

// SlotStatus enumerates invoice slot statuses.
type SlotStatus string

const (
	SlotUnused SlotStatus = "UNUSED"
	SlotUsed   SlotStatus = "USED"
)

// InvoiceSlot is one allocated invoice number within a stub, usable exactly
// once. Uniqueness is enforced over the whole number space: the unique index
// on invoice_no treats every stub as sharing one sequence.
type InvoiceSlot struct {
	ID           int64      `json:"id"`
	Stub         string     `json:"stub"`
	InvoiceNo    int64      `json:"invoiceNumber"`
	Status       SlotStatus `json:"status"`
	CustomerName string     `json:"customerName,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// StubSummary aggregates a stub's slots for the listing screen.
type StubSummary struct {
	Stub      string `json:"stub"`
	SlotCount int    `json:"slotCount"`
	UsedCount int    `json:"usedCount"`
	LowestNo  int64  `json:"lowestNumber"`
	HighestNo int64  `json:"highestNumber"`
}

// AllocateRangeRequest asks for the inclusive range [RangeStart, RangeEnd]
// to be materialized under Stub.
type AllocateRangeRequest struct {
	Stub       string `json:"stub"`
	RangeStart int64  `json:"rangeStart"`
	RangeEnd   int64  `json:"rangeEnd"`
}

// RenameStubRequest relabels every slot under CurrentStub.
type RenameStubRequest struct {
	CurrentStub string `json:"currentStub"`
	NewStub     string `json:"newStub"`
}

// LatestInvoiceInfo suggests the next contiguous starting point before the
// allocation form opens. NextInvoice is "N/A" when no prior number exists.
type LatestInvoiceInfo struct {
	LatestStub    string `json:"latestStub"`
	LatestInvoice string `json:"latestInvoiceNumber"`
	NextInvoice   string `json:"nextInvoice"`
}
