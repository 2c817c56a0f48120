package renewal

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/scardogs/justines-cargo-backoffice/internal/auth"
	"github.com/scardogs/justines-cargo-backoffice/internal/platform/httpx"
	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

// Handler manages the vehicle compliance endpoints. One handler serves all
// three document kinds; the mount point fixes the kind.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountKind registers the record routes for one document kind.
func (h *Handler) MountKind(r chi.Router, kind Kind) {
	r.Get("/", h.listRecords(kind))
	r.Get("/paginate", h.listRecords(kind))
	r.Get("/{id}", h.getRecord)
	r.Post("/", h.createRecord(kind))
	r.Put("/{id}", h.updateRecord)
	r.Post("/{id}/renew", h.renew)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken)
		r.Delete("/{id}", h.deleteRecord)
	})
}

// MountHistory registers the history routes for one document kind.
func (h *Handler) MountHistory(r chi.Router, kind Kind) {
	r.Get("/", h.listHistory(kind))
	r.Get("/paginate", h.listHistory(kind))
}

func (h *Handler) listRecords(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.service.ListRecords(r.Context(), kind)
		if err != nil {
			h.respondError(w, "list records", err)
			return
		}
		q := shared.QueryFromRequest(r)
		page, p := shared.Paginate(records, q, func(rec Record, term string) bool {
			return shared.MatchesSearch(term, rec.PlateNumber, rec.ReferenceNo, rec.Provider)
		})
		httpx.JSON(w, http.StatusOK, map[string]any{"records": page, "pagination": p})
	}
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	rec, err := h.service.GetRecord(r.Context(), id)
	if err != nil {
		h.respondError(w, "get record", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) createRecord(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in RecordInput
		if err := httpx.DecodeJSON(r, &in); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
			return
		}
		rec, err := h.service.CreateRecord(r.Context(), kind, in)
		if err != nil {
			h.respondError(w, "create record", err)
			return
		}
		httpx.JSON(w, http.StatusCreated, rec)
	}
}

func (h *Handler) updateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	var in RecordInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	rec, err := h.service.UpdateRecord(r.Context(), id, in)
	if err != nil {
		h.respondError(w, "update record", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) renew(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	var in RenewInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	rec, err := h.service.Renew(r.Context(), shared.TokenFromContext(r.Context()), id, in)
	if err != nil {
		h.respondError(w, "renew record", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if err := h.service.DeleteRecord(r.Context(), shared.TokenFromContext(r.Context()), id); err != nil {
		h.respondError(w, "delete record", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

func (h *Handler) listHistory(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := h.service.ListHistory(r.Context(), kind)
		if err != nil {
			h.respondError(w, "list history", err)
			return
		}
		q := shared.QueryFromRequest(r)
		page, p := shared.Paginate(history, q, func(hx History, term string) bool {
			return shared.MatchesSearch(term, hx.PlateNumber, hx.NewExpiry)
		})
		httpx.JSON(w, http.StatusOK, map[string]any{"history": page, "pagination": p})
	}
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var verr validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", verr.Error())
	case errors.Is(err, ErrUnknownKind), errors.Is(err, ErrExpiryNotAdvanced):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	case errors.Is(err, shared.ErrTokenRequired):
		httpx.RespondError(w, httpx.ErrAuthRequired)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
