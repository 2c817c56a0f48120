package payroll

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scardogs/justines-cargo-backoffice/internal/auth"
	"github.com/scardogs/justines-cargo-backoffice/internal/platform/httpx"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

// Handler manages the scrap pakyaw payroll endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the draft grid routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.loadPeriod)
	r.Get("/status", h.status)
	r.Post("/manual-row", h.manualRow)
	r.Post("/autosave", h.autosave)
	r.Post("/bulk-upsert", h.saveDrafts)
	r.Post("/generate-report", h.generateReport)

	// Clearing a period's drafts is destructive and requires a token.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken)
		r.Delete("/clear-drafts", h.clearDrafts)
	})
}

// MountCategories registers the pakyaw category lookup.
func (h *Handler) MountCategories(r chi.Router) {
	r.Get("/", h.listCategories)
}

// MountReports registers the generated-report read routes.
func (h *Handler) MountReports(r chi.Router) {
	r.Get("/", h.listReports)
	r.Get("/{id}", h.getReport)
}

func periodFromQuery(r *http.Request) Period {
	return Period{
		Start: r.URL.Query().Get("startDate"),
		End:   r.URL.Query().Get("endDate"),
	}
}

func (h *Handler) loadPeriod(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)
	rows, err := h.service.LoadPeriod(r.Context(), period)
	if err != nil {
		h.respondError(w, "load period", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"period": period,
		"rows":   rows,
	})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)
	if err := period.Validate(); err != nil {
		h.respondError(w, "autosave status", err)
		return
	}
	saver := h.service.Autosaver()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"pending": saver.HasPending(period),
		"warning": saver.Warning(period),
	})
}

func (h *Handler) manualRow(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusCreated, h.service.NewManualRow())
}

type draftRequest struct {
	Period
	Rows []DraftRow `json:"rows"`
}

func (h *Handler) autosave(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.service.QueueAutosave(req.Period, req.Rows); err != nil {
		h.respondError(w, "queue autosave", err)
		return
	}
	// The save itself happens after the quiet window.
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handler) saveDrafts(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.service.SaveDrafts(r.Context(), req.Period, req.Rows); err != nil {
		h.respondError(w, "save drafts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "saved", "rows": len(req.Rows)})
}

func (h *Handler) clearDrafts(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)
	cleared, err := h.service.ClearDrafts(r.Context(), shared.TokenFromContext(r.Context()), period)
	if err != nil {
		h.respondError(w, "clear drafts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"cleared": cleared})
}

type generateReportRequest struct {
	Period
	Rows   []DraftRow `json:"rows"`
	RowIDs []string   `json:"rowIds"`
	Force  bool       `json:"force"`
}

func (h *Handler) generateReport(w http.ResponseWriter, r *http.Request) {
	var req generateReportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}

	report, err := h.service.GenerateReport(r.Context(), req.Period, req.Rows, req.RowIDs, req.Force)
	if err != nil {
		h.respondError(w, "generate report", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, report)
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListReports(r.Context())
	if err != nil {
		h.respondError(w, "list reports", err)
		return
	}

	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(reports, q, func(rep Report, term string) bool {
		return shared.MatchesSearch(term, rep.PeriodStart, rep.PeriodEnd)
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"reports": page, "pagination": p})
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report id")
		return
	}
	report, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		h.respondError(w, "get report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.respondError(w, "list categories", err)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var invalid *InvalidRowsError
	switch {
	case errors.Is(err, ErrInvalidPeriod):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNoSelection):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &invalid):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrUnsavedChanges):
		httpx.Problem(w, http.StatusConflict, "Unsaved Changes", err.Error())
	case errors.Is(err, ErrReportNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrTokenRequired):
		httpx.RespondError(w, httpx.ErrAuthRequired)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
