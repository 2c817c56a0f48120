package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scardogs/justines-cargo-backoffice/internal/auth"
	"github.com/scardogs/justines-cargo-backoffice/internal/platform/httpx"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

// Handler manages service invoice endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers service invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stubs", h.listStubs)
	r.Get("/stub/{stub}", h.listSlots)
	r.Get("/latest-invoice-info", h.latestInfo)
	r.Post("/", h.allocateRange)
	r.Post("/validate-batch", h.validateBatch)
	r.Put("/slot/{stub}/{no}", h.updateSlot)

	// Stub relabeling and retirement are destructive; both require a token.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken)
		r.Put("/update-stub", h.renameStub)
		r.Delete("/stub/{stub}", h.deleteStub)
	})
}

// allocateRangeRequest mirrors the allocation form. Bounds arrive as
// json.Number so non-numeric input fails validation here instead of being
// silently coerced.
type allocateRangeRequest struct {
	Stub       string      `json:"stub"`
	RangeStart json.Number `json:"rangeStart"`
	RangeEnd   json.Number `json:"rangeEnd"`
}

func (req allocateRangeRequest) toDomain() (AllocateRangeRequest, error) {
	start, err := req.RangeStart.Int64()
	if err != nil {
		return AllocateRangeRequest{}, errors.New("rangeStart must be an integer")
	}
	end, err := req.RangeEnd.Int64()
	if err != nil {
		return AllocateRangeRequest{}, errors.New("rangeEnd must be an integer")
	}
	return AllocateRangeRequest{Stub: req.Stub, RangeStart: start, RangeEnd: end}, nil
}

func (h *Handler) allocateRange(w http.ResponseWriter, r *http.Request) {
	var req allocateRangeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	domainReq, err := req.toDomain()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.AllocateRange(r.Context(), domainReq)
	if err != nil {
		h.respondError(w, "allocate range", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"stub":    domainReq.Stub,
		"created": created,
	})
}

func (h *Handler) validateBatch(w http.ResponseWriter, r *http.Request) {
	var req allocateRangeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	domainReq, err := req.toDomain()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.CheckRange(r.Context(), domainReq); err != nil {
		h.respondError(w, "validate batch", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "available"})
}

func (h *Handler) listStubs(w http.ResponseWriter, r *http.Request) {
	stubs, err := h.service.ListStubs(r.Context())
	if err != nil {
		h.respondError(w, "list stubs", err)
		return
	}

	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(stubs, q, func(s StubSummary, term string) bool {
		return shared.MatchesSearch(term, s.Stub)
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"stubs": page, "pagination": p})
}

func (h *Handler) listSlots(w http.ResponseWriter, r *http.Request) {
	stub := chi.URLParam(r, "stub")
	slots, err := h.service.ListSlots(r.Context(), stub)
	if err != nil {
		h.respondError(w, "list slots", err)
		return
	}

	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(slots, q, func(s InvoiceSlot, term string) bool {
		return shared.MatchesSearch(term, strconv.FormatInt(s.InvoiceNo, 10), s.CustomerName)
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"slots": page, "pagination": p})
}

func (h *Handler) latestInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.LatestInfo(r.Context())
	if err != nil {
		// Hints are advisory; the form opens with blanks instead of failing.
		h.logger.Warn("latest invoice info", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, info)
}

type updateSlotRequest struct {
	Status       SlotStatus `json:"status"`
	CustomerName string     `json:"customerName"`
}

func (h *Handler) updateSlot(w http.ResponseWriter, r *http.Request) {
	stub := chi.URLParam(r, "stub")
	no, err := strconv.ParseInt(chi.URLParam(r, "no"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice number")
		return
	}
	var req updateSlotRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}

	var slot *InvoiceSlot
	switch req.Status {
	case SlotUsed:
		slot, err = h.service.MarkSlotUsed(r.Context(), stub, no, req.CustomerName)
	case SlotUnused:
		slot, err = h.service.ReleaseSlot(r.Context(), stub, no)
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "status must be USED or UNUSED")
		return
	}
	if err != nil {
		h.respondError(w, "update slot", err)
		return
	}
	httpx.JSON(w, http.StatusOK, slot)
}

func (h *Handler) renameStub(w http.ResponseWriter, r *http.Request) {
	var req RenameStubRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}

	renamed, err := h.service.RenameStub(r.Context(), shared.TokenFromContext(r.Context()), req)
	if err != nil {
		h.respondError(w, "rename stub", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"stub": req.NewStub, "renamed": renamed})
}

func (h *Handler) deleteStub(w http.ResponseWriter, r *http.Request) {
	stub := chi.URLParam(r, "stub")
	deleted, err := h.service.DeleteStub(r.Context(), shared.TokenFromContext(r.Context()), stub)
	if err != nil {
		h.respondError(w, "delete stub", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"stub": stub, "deleted": deleted})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidRange):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrRangeConflict):
		httpx.Problem(w, http.StatusConflict, "Validation Conflict", err.Error())
	case errors.Is(err, ErrDuplicateStub):
		httpx.Problem(w, http.StatusConflict, "Validation Conflict", err.Error())
	case errors.Is(err, ErrStubNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrTokenRequired):
		httpx.RespondError(w, httpx.ErrAuthRequired)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
