package report

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scardogs/justines-cargo-backoffice/internal/payroll"
	"github.com/scardogs/justines-cargo-backoffice/internal/platform/httpx"
	"github.com/scardogs/justines-cargo-backoffice/internal/renewal"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

// Handler streams generated PDF reports.
type Handler struct {
	logger  *slog.Logger
	client  *Client
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, client *Client, service *Service) *Handler {
	return &Handler{logger: logger, client: client, service: service}
}

// MountRoutes registers the PDF export routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/fleet/pdf", h.fleetPDF)
	r.Get("/inventory/pdf", h.inventoryPDF)
	r.Get("/renewal-history/{kind}/pdf", h.renewalHistoryPDF)
	r.Get("/truck-expenses/pdf", h.truckExpensesPDF)
}

// MountPayrollPDF registers the payroll export alongside the report reads.
func (h *Handler) MountPayrollPDF(r chi.Router) {
	r.Get("/{id}/pdf", h.payrollPDF)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Renderer Unavailable", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) payrollPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report id")
		return
	}
	pdf, err := h.service.PayrollPDF(r.Context(), id)
	if err != nil {
		h.respondError(w, "payroll pdf", err)
		return
	}
	httpx.PDF(w, "scrap-pakyaw-"+strconv.FormatInt(id, 10)+".pdf", pdf)
}

func (h *Handler) fleetPDF(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.service.FleetPDF(r.Context())
	if err != nil {
		h.respondError(w, "fleet pdf", err)
		return
	}
	httpx.PDF(w, "vehicle-fleet.pdf", pdf)
}

func (h *Handler) inventoryPDF(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.service.InventoryPDF(r.Context())
	if err != nil {
		h.respondError(w, "inventory pdf", err)
		return
	}
	httpx.PDF(w, "inventory.pdf", pdf)
}

func (h *Handler) renewalHistoryPDF(w http.ResponseWriter, r *http.Request) {
	kind := renewal.Kind(chi.URLParam(r, "kind"))
	pdf, err := h.service.RenewalHistoryPDF(r.Context(), kind)
	if err != nil {
		h.respondError(w, "renewal history pdf", err)
		return
	}
	httpx.PDF(w, string(kind)+"-history.pdf", pdf)
}

func (h *Handler) truckExpensesPDF(w http.ResponseWriter, r *http.Request) {
	truckID, _ := strconv.ParseInt(r.URL.Query().Get("truckId"), 10, 64)
	pdf, err := h.service.TruckExpensesPDF(r.Context(), truckID)
	if err != nil {
		h.respondError(w, "truck expenses pdf", err)
		return
	}
	httpx.PDF(w, "truck-expenses.pdf", pdf)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, payroll.ErrReportNotFound), errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "report source not found")
	case errors.Is(err, renewal.ErrUnknownKind):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "")
	}
}
