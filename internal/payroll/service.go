package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

var (
	// ErrInvalidPeriod rejects malformed or inverted pay windows.
	ErrInvalidPeriod = errors.New("payroll: invalid period")
	// ErrNoSelection rejects report generation with nothing selected.
	ErrNoSelection = errors.New("payroll: no rows selected")
	// ErrUnsavedChanges stops report generation while edits are not yet
	// persisted; the caller decides whether to save first or force through.
	ErrUnsavedChanges = errors.New("payroll: unsaved changes for period")
	// ErrReportNotFound indicates an unknown report id.
	ErrReportNotFound = errors.New("payroll: report not found")
)

// InvalidRowsError aggregates every row that failed numeric validation,
// named so the clerk can find them in the grid.
type InvalidRowsError struct {
	Names []string
}

func (e *InvalidRowsError) Error() string {
	return "payroll: invalid numeric input for: " + strings.Join(e.Names, ", ")
}

// RepositoryPort defines data access methods for payroll drafts and reports.
type RepositoryPort interface {
	LoadDrafts(ctx context.Context, period Period) ([]DraftRow, error)
	ReplaceDrafts(ctx context.Context, period Period, rows []DraftRow) error
	ClearDrafts(ctx context.Context, period Period) (int, error)
	PieceRateRoster(ctx context.Context) ([]RosterEmployee, error)
	CreateReport(ctx context.Context, report *Report) (*Report, error)
	GetReport(ctx context.Context, id int64) (*Report, error)
	ListReports(ctx context.Context) ([]Report, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// Service reconciles the editable pakyaw grid against persisted drafts and
// the employee roster.
type Service struct {
	repo      RepositoryPort
	autosaver *Autosaver
	audit     *shared.AuditLogger
	logger    *slog.Logger
}

// NewService builds Service instance. The autosaver dispatches into this
// service's own persist path.
func NewService(repo RepositoryPort, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	s := &Service{repo: repo, audit: audit, logger: logger}
	s.autosaver = NewAutosaver(s.persistDrafts, logger)
	return s
}

// Autosaver exposes the scheduler for status queries.
func (s *Service) Autosaver() *Autosaver {
	return s.autosaver
}

// LoadPeriod returns the grid for a pay window: persisted draft rows when
// any exist, otherwise a baseline synthesized from the piece-rate roster
// with zeroed inputs.
func (s *Service) LoadPeriod(ctx context.Context, period Period) ([]DraftRow, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.repo.LoadDrafts(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("payroll: load drafts: %w", err)
	}
	if len(rows) > 0 {
		for i := range rows {
			Recompute(&rows[i])
		}
		// A draft loaded from the store is by definition saved.
		s.autosaver.MarkSaved(period, rows)
		return rows, nil
	}

	roster, err := s.repo.PieceRateRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("payroll: load roster: %w", err)
	}
	baseline := make([]DraftRow, 0, len(roster))
	for _, emp := range roster {
		row := DraftRow{
			RowID:       emp.EmployeeID,
			EmployeeID:  emp.EmployeeID,
			Name:        emp.Name,
			PaymentType: emp.PaymentType,
			Category:    emp.Category,
			Kilo:        "0",
			Rate:        emp.Wage.String(),
			Deduction:   "0",
		}
		Recompute(&row)
		baseline = append(baseline, row)
	}
	return baseline, nil
}

// NewManualRow appends a synthetic entry with a generated placeholder
// identifier; it never comes back from the roster baseline.
func (s *Service) NewManualRow() DraftRow {
	row := DraftRow{
		RowID:       "manual-" + uuid.NewString(),
		PaymentType: "Pakyaw",
		Kilo:        "0",
		Rate:        "0",
		Deduction:   "0",
		ManualEntry: true,
	}
	row.EmployeeID = row.RowID
	Recompute(&row)
	return row
}

// QueueAutosave normalizes the rows and schedules a coalesced save.
func (s *Service) QueueAutosave(period Period, rows []DraftRow) error {
	if err := period.Validate(); err != nil {
		return err
	}
	normalize(rows)
	s.autosaver.Enqueue(period, rows)
	return nil
}

// SaveDrafts persists the full row set immediately.
func (s *Service) SaveDrafts(ctx context.Context, period Period, rows []DraftRow) error {
	if err := period.Validate(); err != nil {
		return err
	}
	normalize(rows)
	return s.autosaver.FlushNow(ctx, period, rows)
}

// persistDrafts is the autosaver's dispatch target.
func (s *Service) persistDrafts(ctx context.Context, period Period, rows []DraftRow) error {
	if err := s.repo.ReplaceDrafts(ctx, period, rows); err != nil {
		return fmt.Errorf("payroll: replace drafts: %w", err)
	}
	return nil
}

// ClearDrafts irreversibly removes every draft row for the period.
func (s *Service) ClearDrafts(ctx context.Context, actor *shared.Token, period Period) (int, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}
	cleared, err := s.repo.ClearDrafts(ctx, period)
	if err != nil {
		return 0, fmt.Errorf("payroll: clear drafts: %w", err)
	}
	s.autosaver.Reset(period)

	if s.audit != nil {
		var actorID int64
		if actor != nil {
			actorID = actor.UserID
		}
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "payroll.clear_drafts",
			Entity:   "payroll_period",
			EntityID: period.Key(),
			Meta:     map[string]any{"rows": cleared},
		}); err != nil && s.logger != nil {
			s.logger.Warn("audit record", slog.Any("error", err))
		}
	}
	return cleared, nil
}

// GenerateReport freezes the selected rows into an immutable report.
// Generation never saves implicitly: with unsaved edits present and force
// unset, it refuses so the caller can choose to save first or proceed.
func (s *Service) GenerateReport(ctx context.Context, period Period, rows []DraftRow, selectedIDs []string, force bool) (*Report, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if len(selectedIDs) == 0 {
		return nil, ErrNoSelection
	}
	normalize(rows)

	selected := make([]DraftRow, 0, len(selectedIDs))
	wanted := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		wanted[id] = true
	}
	for _, row := range rows {
		if wanted[row.RowID] {
			selected = append(selected, row)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoSelection
	}

	var invalid []string
	for _, row := range selected {
		if !ValidNumericText(row.Kilo) || !ValidNumericText(row.Rate) || !ValidNumericText(row.Deduction) {
			invalid = append(invalid, row.Name)
		}
	}
	if len(invalid) > 0 {
		return nil, &InvalidRowsError{Names: invalid}
	}

	if !force && s.autosaver.HasUnsavedChanges(period, rows) {
		return nil, ErrUnsavedChanges
	}

	report := &Report{PeriodStart: period.Start, PeriodEnd: period.End}
	for _, row := range selected {
		rr := ReportRow{
			EmployeeID:  row.EmployeeID,
			Name:        row.Name,
			PaymentType: row.PaymentType,
			Category:    row.Category,
			Kilo:        ParseAmount(row.Kilo),
			Rate:        ParseAmount(row.Rate),
			Deduction:   ParseAmount(row.Deduction),
			Total:       row.Total,
			NetTotal:    row.NetTotal,
		}
		report.Rows = append(report.Rows, rr)
		report.TotalPay = report.TotalPay.Add(rr.NetTotal)
	}

	created, err := s.repo.CreateReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("payroll: create report: %w", err)
	}
	return created, nil
}

// GetReport fetches one immutable report.
func (s *Service) GetReport(ctx context.Context, id int64) (*Report, error) {
	return s.repo.GetReport(ctx, id)
}

// ListReports returns generated reports, newest first.
func (s *Service) ListReports(ctx context.Context) ([]Report, error) {
	return s.repo.ListReports(ctx)
}

// ListCategories returns the pakyaw category lookup.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func normalize(rows []DraftRow) {
	for i := range rows {
		Recompute(&rows[i])
	}
}
