package report

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/scardogs/justines-cargo-backoffice/internal/inventory"
	"github.com/scardogs/justines-cargo-backoffice/internal/masterdata"
	"github.com/scardogs/justines-cargo-backoffice/internal/payroll"
	"github.com/scardogs/justines-cargo-backoffice/internal/renewal"
)

// BuildPayrollDocument lays out a frozen scrap pakyaw report.
func BuildPayrollDocument(rep *payroll.Report) Document {
	doc := Document{
		Title:    "Scrap Pakyaw Payroll Report",
		Subtitle: rep.PeriodStart + " to " + rep.PeriodEnd,
		Columns:  []string{"Employee", "Category", "Kilo", "Rate", "Gross", "Deduction", "Net Pay"},
	}
	for _, row := range rep.Rows {
		doc.Rows = append(doc.Rows, []string{
			row.Name,
			row.Category,
			FormatAmount(row.Kilo),
			FormatAmount(row.Rate),
			FormatAmount(row.Total),
			FormatAmount(row.Deduction),
			FormatAmount(row.NetTotal),
		})
	}
	doc.Footer = []string{"Total", "", "", "", "", "", FormatAmount(rep.TotalPay)}
	return doc
}

// BuildFleetDocument lays out the vehicle fleet roster.
func BuildFleetDocument(trucks []masterdata.Truck) Document {
	doc := Document{
		Title:   "Vehicle Fleet Report",
		Columns: []string{"Plate No.", "Make", "Model", "Year", "Driver", "Status"},
	}
	for _, t := range trucks {
		year := ""
		if t.Year > 0 {
			year = strconv.Itoa(t.Year)
		}
		doc.Rows = append(doc.Rows, []string{t.PlateNumber, t.Make, t.Model, year, t.Driver, t.Status})
	}
	return doc
}

// BuildInventoryDocument lays out the current stock position.
func BuildInventoryDocument(items []inventory.Item) Document {
	doc := Document{
		Title:   "Inventory Report",
		Columns: []string{"SKU", "Item", "Unit", "On Hand"},
	}
	for _, item := range items {
		doc.Rows = append(doc.Rows, []string{item.SKU, item.Name, item.Unit, FormatAmount(item.OnHand)})
	}
	return doc
}

// BuildRenewalHistoryDocument lays out the renewal log for one document
// kind, with the total cost footed.
func BuildRenewalHistoryDocument(kind renewal.Kind, history []renewal.History) Document {
	doc := Document{
		Title:   string(kind) + " Renewal History",
		Columns: []string{"Plate No.", "Previous Expiry", "New Expiry", "Cost", "Renewed"},
	}
	total := decimal.Zero
	for _, h := range history {
		doc.Rows = append(doc.Rows, []string{
			h.PlateNumber,
			h.PreviousExpiry,
			h.NewExpiry,
			FormatAmount(h.Cost),
			h.RenewedAt.Format("2006-01-02"),
		})
		total = total.Add(h.Cost)
	}
	doc.Footer = []string{"Total", "", "", FormatAmount(total), ""}
	return doc
}

// BuildTruckExpensesDocument lays out trip expenses with the total footed.
func BuildTruckExpensesDocument(expenses []masterdata.TripExpense) Document {
	doc := Document{
		Title:   "Truck Expenses Report",
		Columns: []string{"Date", "Plate No.", "Description", "Amount"},
	}
	total := decimal.Zero
	for _, e := range expenses {
		doc.Rows = append(doc.Rows, []string{e.Date, e.PlateNumber, e.Description, FormatAmount(e.Amount)})
		total = total.Add(e.Amount)
	}
	doc.Footer = []string{"Total", "", "", FormatAmount(total)}
	return doc
}
