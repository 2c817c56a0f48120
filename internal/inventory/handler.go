package inventory

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

// Handler manages inventory endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountItems registers catalog routes.
func (h *Handler) MountItems(r chi.Router) {
	r.Get("/", h.listItems)
	r.Get("/{id}", h.getItem)
	r.Post("/", h.createItem)
	r.Put("/{id}", h.updateItem)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken)
		r.Delete("/{id}", h.deleteItem)
	})
}

// MountMovements registers stock movement routes.
func (h *Handler) MountMovements(r chi.Router) {
	r.Get("/", h.listMovements)
	r.Post("/", h.postMovement)
}

// MountPurchases registers purchase routes.
func (h *Handler) MountPurchases(r chi.Router) {
	r.Get("/", h.listPurchases)
	r.Post("/", h.recordPurchase)
}

// MountMaterialRequests registers material request routes.
func (h *Handler) MountMaterialRequests(r chi.Router) {
	r.Get("/", h.listMaterialRequests)
	r.Post("/", h.createMaterialRequest)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken)
		r.Put("/{id}/status", h.transitionMaterialRequest)
	})
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		h.respondError(w, "list items", err)
		return
	}
	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(items, q, func(item Item, term string) bool {
		return shared.MatchesSearch(term, item.SKU, item.Name)
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"items": page, "pagination": p})
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		h.respondError(w, "get item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	item, err := h.service.CreateItem(r.Context(), in)
	if err != nil {
		h.respondError(w, "create item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	var in ItemInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	item, err := h.service.UpdateItem(r.Context(), id, in)
	if err != nil {
		h.respondError(w, "update item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if err := h.service.DeleteItem(r.Context(), shared.TokenFromContext(r.Context()), id); err != nil {
		h.respondError(w, "delete item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	itemID, _ := strconv.ParseInt(r.URL.Query().Get("itemId"), 10, 64)
	movements, err := h.service.ListMovements(r.Context(), itemID)
	if err != nil {
		h.respondError(w, "list movements", err)
		return
	}
	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(movements, q, func(m StockMovement, term string) bool {
		return shared.MatchesSearch(term, m.SKU, m.Reference, string(m.Type))
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"movements": page, "pagination": p})
}

func (h *Handler) postMovement(w http.ResponseWriter, r *http.Request) {
	var in MovementInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	movement, err := h.service.PostMovement(r.Context(), in)
	if err != nil {
		h.respondError(w, "post movement", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.service.ListPurchases(r.Context())
	if err != nil {
		h.respondError(w, "list purchases", err)
		return
	}
	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(purchases, q, func(p Purchase, term string) bool {
		return shared.MatchesSearch(term, p.SKU, p.Supplier, p.Date)
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"purchases": page, "pagination": p})
}

func (h *Handler) recordPurchase(w http.ResponseWriter, r *http.Request) {
	var in PurchaseInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	purchase, err := h.service.RecordPurchase(r.Context(), in)
	if err != nil {
		h.respondError(w, "record purchase", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, purchase)
}

func (h *Handler) listMaterialRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListMaterialRequests(r.Context())
	if err != nil {
		h.respondError(w, "list material requests", err)
		return
	}
	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(requests, q, func(req MaterialRequest, term string) bool {
		return shared.MatchesSearch(term, req.SKU, req.RequestedBy, string(req.Status))
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": page, "pagination": p})
}

func (h *Handler) createMaterialRequest(w http.ResponseWriter, r *http.Request) {
	var in MaterialRequestInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	req, err := h.service.CreateMaterialRequest(r.Context(), in)
	if err != nil {
		h.respondError(w, "create material request", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, req)
}

type transitionRequest struct {
	Status RequestStatus `json:"status"`
}

func (h *Handler) transitionMaterialRequest(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	var in transitionRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	req, err := h.service.TransitionMaterialRequest(r.Context(), shared.TokenFromContext(r.Context()), id, in.Status)
	if err != nil {
		h.respondError(w, "transition material request", err)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var verr validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", verr.Error())
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Validation Conflict", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, shared.ErrTokenRequired):
		httpx.RespondError(w, httpx.ErrAuthRequired)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
