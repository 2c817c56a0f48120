package report_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scardogs/justines-cargo-backoffice/internal/masterdata"
	"github.com/scardogs/justines-cargo-backoffice/internal/payroll"
	"github.com/scardogs/justines-cargo-backoffice/internal/renewal"
	"github.com/scardogs/justines-cargo-backoffice/report"
	_ "github.com/scardogs/justines-cargo-backoffice/testing"
)

func TestFormatAmountGroupsThousands(t *testing.T) {
	require.Equal(t, "1,520.75", report.FormatAmount(decimal.RequireFromString("1520.75")))
	require.Equal(t, "0.00", report.FormatAmount(decimal.Zero))
	require.Equal(t, "12,000.00", report.FormatAmount(decimal.NewFromInt(12000)))
}

func TestBuildPayrollDocumentFootsTotal(t *testing.T) {
	rep := &payroll.Report{
		PeriodStart: "2025-06-01",
		PeriodEnd:   "2025-06-15",
		TotalPay:    decimal.RequireFromString("1009.5"),
		Rows: []payroll.ReportRow{
			{Name: "Reyes", Category: "Sorting", Kilo: decimal.NewFromInt(4), Rate: decimal.RequireFromString("2.5"),
				Total: decimal.NewFromInt(10), Deduction: decimal.NewFromInt(1), NetTotal: decimal.NewFromInt(9)},
			{Name: "Santos", Kilo: decimal.NewFromInt(100), Rate: decimal.NewFromInt(10),
				Total: decimal.NewFromInt(1000), Deduction: decimal.RequireFromString("-0.5"), NetTotal: decimal.RequireFromString("1000.5")},
		},
	}

	doc := report.BuildPayrollDocument(rep)
	require.Len(t, doc.Rows, 2)
	require.Equal(t, "Reyes", doc.Rows[0][0])
	require.Equal(t, "9.00", doc.Rows[0][6])
	require.Equal(t, "1,009.50", doc.Footer[6])
	require.Contains(t, doc.Subtitle, "2025-06-01")
}

func TestBuildTruckExpensesDocumentFootsTotal(t *testing.T) {
	doc := report.BuildTruckExpensesDocument([]masterdata.TripExpense{
		{Date: "2025-06-01", PlateNumber: "ABC-1234", Description: "fuel", Amount: decimal.RequireFromString("1500")},
		{Date: "2025-06-02", PlateNumber: "ABC-1234", Description: "toll", Amount: decimal.RequireFromString("250.25")},
	})
	require.Equal(t, "1,750.25", doc.Footer[3])
}

func TestBuildRenewalHistoryDocumentTitleCarriesKind(t *testing.T) {
	doc := report.BuildRenewalHistoryDocument(renewal.KindLTFRB, []renewal.History{
		{PlateNumber: "ABC-1234", PreviousExpiry: "2025-12-31", NewExpiry: "2026-12-31",
			Cost: decimal.NewFromInt(3200), RenewedAt: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.Equal(t, "LTFRB Renewal History", doc.Title)
	require.Equal(t, "3,200.00", doc.Rows[0][3])
}

func TestRenderHTMLDocumentEscapesAndLaysOut(t *testing.T) {
	html, err := report.RenderHTMLDocument(report.Document{
		Title:   "Inventory Report",
		Columns: []string{"SKU", "Item"},
		Rows:    [][]string{{"SCRAP-01", `Scrap <metal> & "wire"`}},
	})
	require.NoError(t, err)
	require.Contains(t, html, "Justines Cargo Services")
	require.Contains(t, html, "Inventory Report")
	require.Contains(t, html, "Scrap &lt;metal&gt;")
	require.NotContains(t, html, "<metal>")
}
