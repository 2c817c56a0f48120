package payroll_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scardogs/justines-cargo-backoffice/internal/payroll"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
	_ "github.com/scardogs/justines-cargo-backoffice/testing"
)

type memoryRepo struct {
	drafts  map[string][]payroll.DraftRow
	roster  []payroll.RosterEmployee
	reports map[int64]*payroll.Report
	nextID  int64

	replaceCalls int
	createCalls  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		drafts:  make(map[string][]payroll.DraftRow),
		reports: make(map[int64]*payroll.Report),
	}
}

func (m *memoryRepo) LoadDrafts(_ context.Context, period payroll.Period) ([]payroll.DraftRow, error) {
	return append([]payroll.DraftRow(nil), m.drafts[period.Key()]...), nil
}

func (m *memoryRepo) ReplaceDrafts(_ context.Context, period payroll.Period, rows []payroll.DraftRow) error {
	m.replaceCalls++
	m.drafts[period.Key()] = append([]payroll.DraftRow(nil), rows...)
	return nil
}

func (m *memoryRepo) ClearDrafts(_ context.Context, period payroll.Period) (int, error) {
	n := len(m.drafts[period.Key()])
	delete(m.drafts, period.Key())
	return n, nil
}

func (m *memoryRepo) PieceRateRoster(context.Context) ([]payroll.RosterEmployee, error) {
	return m.roster, nil
}

func (m *memoryRepo) CreateReport(_ context.Context, report *payroll.Report) (*payroll.Report, error) {
	m.createCalls++
	m.nextID++
	report.ID = m.nextID
	m.reports[report.ID] = report
	return report, nil
}

func (m *memoryRepo) GetReport(_ context.Context, id int64) (*payroll.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, payroll.ErrReportNotFound
	}
	return report, nil
}

func (m *memoryRepo) ListReports(context.Context) ([]payroll.Report, error) {
	out := make([]payroll.Report, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, *r)
	}
	return out, nil
}

func (m *memoryRepo) ListCategories(context.Context) ([]payroll.Category, error) {
	return []payroll.Category{{ID: 1, Name: "Sorting"}, {ID: 2, Name: "Baling"}}, nil
}

func period() payroll.Period {
	return payroll.Period{Start: "2025-06-01", End: "2025-06-15"}
}

func TestLoadPeriodBaselineFromRoster(t *testing.T) {
	repo := newMemoryRepo()
	repo.roster = []payroll.RosterEmployee{
		{EmployeeID: "EMP-1", Name: "Reyes", PaymentType: "Pakyaw", Category: "Sorting", Wage: decimal.NewFromFloat(2.5)},
		{EmployeeID: "EMP-2", Name: "Santos", PaymentType: "Pakyaw", Wage: decimal.NewFromInt(3)},
	}
	svc := payroll.NewService(repo, nil, nil)

	rows, err := svc.LoadPeriod(context.Background(), period())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "EMP-1", rows[0].RowID)
	require.Equal(t, "0", rows[0].Kilo)
	require.Equal(t, "2.5", rows[0].Rate)
	require.True(t, rows[0].Total.IsZero())

	// A fresh baseline was never persisted, so it counts as unsaved.
	require.True(t, svc.Autosaver().HasUnsavedChanges(period(), rows))
}

func TestLoadPeriodPrefersPersistedDraft(t *testing.T) {
	repo := newMemoryRepo()
	repo.roster = []payroll.RosterEmployee{{EmployeeID: "EMP-1", Name: "Reyes", Wage: decimal.NewFromInt(2)}}
	repo.drafts[period().Key()] = []payroll.DraftRow{
		{RowID: "EMP-1", EmployeeID: "EMP-1", Name: "Reyes", Kilo: "10", Rate: "2", Deduction: "0"},
	}
	svc := payroll.NewService(repo, nil, nil)

	rows, err := svc.LoadPeriod(context.Background(), period())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "10", rows[0].Kilo)
	require.True(t, rows[0].Total.Equal(decimal.NewFromInt(20)), "total recomputed on load")

	// Loading a persisted draft establishes the saved baseline.
	require.False(t, svc.Autosaver().HasUnsavedChanges(period(), rows))
}

func TestLoadPeriodRejectsInvalidPeriod(t *testing.T) {
	svc := payroll.NewService(newMemoryRepo(), nil, nil)

	_, err := svc.LoadPeriod(context.Background(), payroll.Period{Start: "2025-06-15", End: "2025-06-01"})
	require.ErrorIs(t, err, payroll.ErrInvalidPeriod)

	_, err = svc.LoadPeriod(context.Background(), payroll.Period{Start: "junk", End: "2025-06-01"})
	require.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestNewManualRowIsDistinctAndFlagged(t *testing.T) {
	svc := payroll.NewService(newMemoryRepo(), nil, nil)

	a := svc.NewManualRow()
	b := svc.NewManualRow()
	require.True(t, a.ManualEntry)
	require.True(t, strings.HasPrefix(a.RowID, "manual-"))
	require.Equal(t, a.RowID, a.EmployeeID)
	require.NotEqual(t, a.RowID, b.RowID)
}

func TestSaveDraftsPersistsAndClearsUnsaved(t *testing.T) {
	repo := newMemoryRepo()
	svc := payroll.NewService(repo, nil, nil)
	rows := []payroll.DraftRow{{RowID: "EMP-1", Name: "Reyes", Kilo: "4", Rate: "2.5", Deduction: "1"}}

	require.NoError(t, svc.SaveDrafts(context.Background(), period(), rows))
	require.Equal(t, 1, repo.replaceCalls)
	require.False(t, svc.Autosaver().HasUnsavedChanges(period(), rows))

	saved := repo.drafts[period().Key()]
	require.True(t, saved[0].NetTotal.Equal(decimal.NewFromInt(9)), "totals normalized before persisting")
}

func TestClearDraftsResetsAutosaveState(t *testing.T) {
	repo := newMemoryRepo()
	repo.drafts[period().Key()] = []payroll.DraftRow{{RowID: "EMP-1"}}
	svc := payroll.NewService(repo, nil, nil)

	cleared, err := svc.ClearDrafts(context.Background(), &shared.Token{UserID: 7}, period())
	require.NoError(t, err)
	require.Equal(t, 1, cleared)
	require.Empty(t, repo.drafts[period().Key()])
	require.False(t, svc.Autosaver().HasPending(period()))
}

func TestGenerateReportRequiresSelection(t *testing.T) {
	svc := payroll.NewService(newMemoryRepo(), nil, nil)
	rows := []payroll.DraftRow{{RowID: "EMP-1", Kilo: "1", Rate: "1", Deduction: "0"}}

	_, err := svc.GenerateReport(context.Background(), period(), rows, nil, true)
	require.ErrorIs(t, err, payroll.ErrNoSelection)

	// Ids that match nothing in the grid are an empty selection too.
	_, err = svc.GenerateReport(context.Background(), period(), rows, []string{"ghost"}, true)
	require.ErrorIs(t, err, payroll.ErrNoSelection)
}

func TestGenerateReportNamesInvalidRows(t *testing.T) {
	repo := newMemoryRepo()
	svc := payroll.NewService(repo, nil, nil)
	rows := []payroll.DraftRow{
		{RowID: "EMP-1", Name: "Reyes", Kilo: "4x", Rate: "2", Deduction: "0"},
		{RowID: "EMP-2", Name: "Santos", Kilo: "3", Rate: "bad", Deduction: "0"},
		{RowID: "EMP-3", Name: "Cruz", Kilo: "3", Rate: "2", Deduction: "0"},
	}

	_, err := svc.GenerateReport(context.Background(), period(), rows, []string{"EMP-1", "EMP-2", "EMP-3"}, true)
	var invalid *payroll.InvalidRowsError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, []string{"Reyes", "Santos"}, invalid.Names)
	require.Zero(t, repo.createCalls)
}

func TestGenerateReportBlocksOnUnsavedChanges(t *testing.T) {
	repo := newMemoryRepo()
	svc := payroll.NewService(repo, nil, nil)
	rows := []payroll.DraftRow{{RowID: "EMP-1", Name: "Reyes", Kilo: "4", Rate: "2.5", Deduction: "1"}}

	_, err := svc.GenerateReport(context.Background(), period(), rows, []string{"EMP-1"}, false)
	require.ErrorIs(t, err, payroll.ErrUnsavedChanges)
	require.Zero(t, repo.createCalls)

	// Saving first lifts the guard; force bypasses it outright.
	require.NoError(t, svc.SaveDrafts(context.Background(), period(), rows))
	report, err := svc.GenerateReport(context.Background(), period(), rows, []string{"EMP-1"}, false)
	require.NoError(t, err)
	require.True(t, report.TotalPay.Equal(decimal.NewFromInt(9)))
}

func TestGenerateReportFreezesSelectedRows(t *testing.T) {
	repo := newMemoryRepo()
	svc := payroll.NewService(repo, nil, nil)
	rows := []payroll.DraftRow{
		{RowID: "EMP-1", Name: "Reyes", Category: "Sorting", Kilo: "4", Rate: "2.5", Deduction: "1"},
		{RowID: "EMP-2", Name: "Santos", Kilo: "100", Rate: "9", Deduction: "0"},
	}

	report, err := svc.GenerateReport(context.Background(), period(), rows, []string{"EMP-1"}, true)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	require.Equal(t, "Reyes", report.Rows[0].Name)
	require.True(t, report.Rows[0].Total.Equal(decimal.NewFromInt(10)))
	require.True(t, report.Rows[0].NetTotal.Equal(decimal.NewFromInt(9)))
	require.True(t, report.TotalPay.Equal(decimal.NewFromInt(9)))
	require.Equal(t, "2025-06-01", report.PeriodStart)

	fetched, err := svc.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	require.Equal(t, report.ID, fetched.ID)

	_, err = svc.GetReport(context.Background(), 999)
	require.ErrorIs(t, err, payroll.ErrReportNotFound)
}
