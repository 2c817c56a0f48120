package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/scardogs/justines-cargo-backoffice/internal/auth"
	"github.com/scardogs/justines-cargo-backoffice/internal/inventory"
	"github.com/scardogs/justines-cargo-backoffice/internal/invoice"
	"github.com/scardogs/justines-cargo-backoffice/internal/masterdata"
	"github.com/scardogs/justines-cargo-backoffice/internal/payroll"
	"github.com/scardogs/justines-cargo-backoffice/internal/renewal"
	"github.com/scardogs/justines-cargo-backoffice/jobs"
	"github.com/scardogs/justines-cargo-backoffice/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Config *Config

	AuthHandler       *auth.Handler
	InvoiceHandler    *invoice.Handler
	PayrollHandler    *payroll.Handler
	MasterDataHandler *masterdata.Handler
	RenewalHandler    *renewal.Handler
	InventoryHandler  *inventory.Handler
	ReportHandler     *report.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router serving the back-office API.
func NewRouter(params RouterParams, mwCfg MiddlewareConfig) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(mwCfg) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		r.Route("/control-panel", params.AuthHandler.MountControlPanel)

		r.Route("/service-invoice", params.InvoiceHandler.MountRoutes)

		r.Route("/payroll/scrap-pakyaw", params.PayrollHandler.MountRoutes)
		r.Route("/pakyaw-categories", params.PayrollHandler.MountCategories)

		r.Route("/reports", func(r chi.Router) {
			r.Route("/payroll/scrap-pakyaw", func(r chi.Router) {
				params.PayrollHandler.MountReports(r)
				params.ReportHandler.MountPayrollPDF(r)
			})
			params.ReportHandler.MountRoutes(r)
		})

		r.Route("/individuals", params.MasterDataHandler.MountIndividuals)
		r.Route("/companies", params.MasterDataHandler.MountCompanies)
		r.Route("/warehouses", params.MasterDataHandler.MountWarehouses)
		r.Route("/trucks", params.MasterDataHandler.MountTrucks)
		r.Route("/trip-expenses", params.MasterDataHandler.MountTripExpenses)

		r.Route("/lto", func(r chi.Router) {
			params.RenewalHandler.MountKind(r, renewal.KindLTO)
		})
		r.Route("/lto-history", func(r chi.Router) {
			params.RenewalHandler.MountHistory(r, renewal.KindLTO)
		})
		r.Route("/ltfrb", func(r chi.Router) {
			params.RenewalHandler.MountKind(r, renewal.KindLTFRB)
		})
		r.Route("/ltfrb-history", func(r chi.Router) {
			params.RenewalHandler.MountHistory(r, renewal.KindLTFRB)
		})
		r.Route("/insurance", func(r chi.Router) {
			params.RenewalHandler.MountKind(r, renewal.KindInsurance)
		})
		r.Route("/insurance-history", func(r chi.Router) {
			params.RenewalHandler.MountHistory(r, renewal.KindInsurance)
		})

		r.Route("/items", params.InventoryHandler.MountItems)
		r.Route("/stock-movements", params.InventoryHandler.MountMovements)
		r.Route("/purchases", params.InventoryHandler.MountPurchases)
		r.Route("/material-requests", params.InventoryHandler.MountMaterialRequests)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
