package report

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/scardogs/justines-cargo-backoffice/internal/inventory"
	"github.com/scardogs/justines-cargo-backoffice/internal/masterdata"
	"github.com/scardogs/justines-cargo-backoffice/internal/payroll"
	"github.com/scardogs/justines-cargo-backoffice/internal/renewal"
)

// Renderer converts letterhead HTML to PDF bytes.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Service assembles report documents from the domain services and renders
// them. Concurrent requests for the same report share one render via
// singleflight.
type Service struct {
	renderer   Renderer
	payroll    *payroll.Service
	masterdata *masterdata.Service
	inventory  *inventory.Service
	renewal    *renewal.Service
	group      singleflight.Group
}

// NewService builds Service instance.
func NewService(renderer Renderer, pay *payroll.Service, md *masterdata.Service, inv *inventory.Service, ren *renewal.Service) *Service {
	return &Service{
		renderer:   renderer,
		payroll:    pay,
		masterdata: md,
		inventory:  inv,
		renewal:    ren,
	}
}

func (s *Service) render(ctx context.Context, key string, build func(context.Context) (Document, error)) ([]byte, error) {
	pdf, err, _ := s.group.Do(key, func() (any, error) {
		doc, err := build(ctx)
		if err != nil {
			return nil, err
		}
		html, err := RenderHTMLDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("report: render html: %w", err)
		}
		return s.renderer.RenderHTML(ctx, html)
	})
	if err != nil {
		return nil, err
	}
	return pdf.([]byte), nil
}

// PayrollPDF renders a frozen payroll report.
func (s *Service) PayrollPDF(ctx context.Context, reportID int64) ([]byte, error) {
	return s.render(ctx, "payroll:"+strconv.FormatInt(reportID, 10), func(ctx context.Context) (Document, error) {
		rep, err := s.payroll.GetReport(ctx, reportID)
		if err != nil {
			return Document{}, err
		}
		return BuildPayrollDocument(rep), nil
	})
}

// FleetPDF renders the vehicle fleet roster.
func (s *Service) FleetPDF(ctx context.Context) ([]byte, error) {
	return s.render(ctx, "fleet", func(ctx context.Context) (Document, error) {
		trucks, err := s.masterdata.ListTrucks(ctx)
		if err != nil {
			return Document{}, err
		}
		return BuildFleetDocument(trucks), nil
	})
}

// InventoryPDF renders the current stock position.
func (s *Service) InventoryPDF(ctx context.Context) ([]byte, error) {
	return s.render(ctx, "inventory", func(ctx context.Context) (Document, error) {
		items, err := s.inventory.ListItems(ctx)
		if err != nil {
			return Document{}, err
		}
		return BuildInventoryDocument(items), nil
	})
}

// RenewalHistoryPDF renders the renewal log for one document kind.
func (s *Service) RenewalHistoryPDF(ctx context.Context, kind renewal.Kind) ([]byte, error) {
	return s.render(ctx, "renewal-history:"+string(kind), func(ctx context.Context) (Document, error) {
		history, err := s.renewal.ListHistory(ctx, kind)
		if err != nil {
			return Document{}, err
		}
		return BuildRenewalHistoryDocument(kind, history), nil
	})
}

// TruckExpensesPDF renders trip expenses, optionally filtered to one truck.
func (s *Service) TruckExpensesPDF(ctx context.Context, truckID int64) ([]byte, error) {
	key := "truck-expenses:" + strconv.FormatInt(truckID, 10)
	return s.render(ctx, key, func(ctx context.Context) (Document, error) {
		expenses, err := s.masterdata.ListTripExpenses(ctx, truckID)
		if err != nil {
			return Document{}, err
		}
		return BuildTruckExpensesDocument(expenses), nil
	})
}
