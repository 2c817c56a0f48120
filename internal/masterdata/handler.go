package masterdata

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

// Handler manages the masterdata endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountIndividuals registers client (individual) routes, with the
// individual-consignee subtree.
func (h *Handler) MountIndividuals(r chi.Router) {
	r.Get("/", h.listIndividuals)
	r.Get("/{id}", h.getIndividual)
	r.Post("/", h.createIndividual)
	r.Put("/{id}", h.updateIndividual)
	r.Get("/{id}/consignees", h.listConsignees(OwnerIndividual))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken)
		r.Delete("/{id}", h.deleteIndividual)
		r.Post("/{id}/consignees", h.createConsignee(OwnerIndividual))
		r.Put("/consignees/{id}", h.updateConsignee(OwnerIndividual))
		r.Delete("/consignees/{id}", h.deleteConsignee(OwnerIndividual))
	})
}

// MountCompanies registers company routes with the multiple-consignee
// subtree.
func (h *Handler) MountCompanies(r chi.Router) {
	r.Get("/", h.listCompanies)
	r.Get("/{id}", h.getCompany)
	r.Post("/", h.createCompany)
	r.Put("/{id}", h.updateCompany)
	r.Get("/{id}/consignees", h.listConsignees(OwnerCompany))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken)
		r.Delete("/{id}", h.deleteCompany)
		r.Post("/{id}/consignees", h.createConsignee(OwnerCompany))
		r.Put("/consignees/{id}", h.updateConsignee(OwnerCompany))
		r.Delete("/consignees/{id}", h.deleteConsignee(OwnerCompany))
	})
}

// MountWarehouses registers warehouse routes.
func (h *Handler) MountWarehouses(r chi.Router) {
	r.Get("/", h.listWarehouses)
	r.Get("/{id}", h.getWarehouse)
	r.Post("/", h.createWarehouse)
	r.Put("/{id}", h.updateWarehouse)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken)
		r.Delete("/{id}", h.deleteWarehouse)
	})
}

// MountTrucks registers fleet routes.
func (h *Handler) MountTrucks(r chi.Router) {
	r.Get("/", h.listTrucks)
	r.Get("/{id}", h.getTruck)
	r.Post("/", h.createTruck)
	r.Put("/{id}", h.updateTruck)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken)
		r.Delete("/{id}", h.deleteTruck)
	})
}

// MountTripExpenses registers trip expense routes.
func (h *Handler) MountTripExpenses(r chi.Router) {
	r.Get("/", h.listTripExpenses)
	r.Post("/", h.createTripExpense)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken)
		r.Delete("/{id}", h.deleteTripExpense)
	})
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Individuals

func (h *Handler) listIndividuals(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListIndividuals(r.Context())
	if err != nil {
		h.respondError(w, "list individuals", err)
		return
	}
	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(items, q, func(ind Individual, term string) bool {
		return shared.MatchesSearch(term, ind.Name, ind.Address, ind.ContactNumber)
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"individuals": page, "pagination": p})
}

func (h *Handler) getIndividual(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	ind, err := h.service.GetIndividual(r.Context(), id)
	if err != nil {
		h.respondError(w, "get individual", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ind)
}

func (h *Handler) createIndividual(w http.ResponseWriter, r *http.Request) {
	var in IndividualInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	ind, err := h.service.CreateIndividual(r.Context(), in)
	if err != nil {
		h.respondError(w, "create individual", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ind)
}

func (h *Handler) updateIndividual(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	var in IndividualInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	ind, err := h.service.UpdateIndividual(r.Context(), id, in)
	if err != nil {
		h.respondError(w, "update individual", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ind)
}

func (h *Handler) deleteIndividual(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if err := h.service.DeleteIndividual(r.Context(), shared.TokenFromContext(r.Context()), id); err != nil {
		h.respondError(w, "delete individual", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

// Consignees, parameterized by owner type so both subtrees share handlers.

func (h *Handler) listConsignees(owner ConsigneeOwner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := idParam(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
			return
		}
		items, err := h.service.ListConsignees(r.Context(), owner, ownerID)
		if err != nil {
			h.respondError(w, "list consignees", err)
			return
		}
		q := shared.QueryFromRequest(r)
		page, p := shared.Paginate(items, q, func(c Consignee, term string) bool {
			return shared.MatchesSearch(term, c.Name, c.Address)
		})
		httpx.JSON(w, http.StatusOK, map[string]any{"consignees": page, "pagination": p})
	}
}

func (h *Handler) createConsignee(owner ConsigneeOwner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := idParam(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
			return
		}
		var in ConsigneeInput
		if err := httpx.DecodeJSON(r, &in); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
			return
		}
		c, err := h.service.CreateConsignee(r.Context(), shared.TokenFromContext(r.Context()), owner, ownerID, in)
		if err != nil {
			h.respondError(w, "create consignee", err)
			return
		}
		httpx.JSON(w, http.StatusCreated, c)
	}
}

func (h *Handler) updateConsignee(owner ConsigneeOwner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
			return
		}
		var in ConsigneeInput
		if err := httpx.DecodeJSON(r, &in); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
			return
		}
		c, err := h.service.UpdateConsignee(r.Context(), shared.TokenFromContext(r.Context()), owner, id, in)
		if err != nil {
			h.respondError(w, "update consignee", err)
			return
		}
		httpx.JSON(w, http.StatusOK, c)
	}
}

func (h *Handler) deleteConsignee(owner ConsigneeOwner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
			return
		}
		if err := h.service.DeleteConsignee(r.Context(), shared.TokenFromContext(r.Context()), owner, id); err != nil {
			h.respondError(w, "delete consignee", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": id})
	}
}

// Companies

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListCompanies(r.Context())
	if err != nil {
		h.respondError(w, "list companies", err)
		return
	}
	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(items, q, func(c Company, term string) bool {
		return shared.MatchesSearch(term, c.Name, c.ContactPerson, c.Address)
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"companies": page, "pagination": p})
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	c, err := h.service.GetCompany(r.Context(), id)
	if err != nil {
		h.respondError(w, "get company", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var in CompanyInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	c, err := h.service.CreateCompany(r.Context(), in)
	if err != nil {
		h.respondError(w, "create company", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) updateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	var in CompanyInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	c, err := h.service.UpdateCompany(r.Context(), id, in)
	if err != nil {
		h.respondError(w, "update company", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if err := h.service.DeleteCompany(r.Context(), shared.TokenFromContext(r.Context()), id); err != nil {
		h.respondError(w, "delete company", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

// Warehouses

func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListWarehouses(r.Context())
	if err != nil {
		h.respondError(w, "list warehouses", err)
		return
	}
	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(items, q, func(wh Warehouse, term string) bool {
		return shared.MatchesSearch(term, wh.Name, wh.Location)
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"warehouses": page, "pagination": p})
}

func (h *Handler) getWarehouse(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	wh, err := h.service.GetWarehouse(r.Context(), id)
	if err != nil {
		h.respondError(w, "get warehouse", err)
		return
	}
	httpx.JSON(w, http.StatusOK, wh)
}

func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	var in WarehouseInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	wh, err := h.service.CreateWarehouse(r.Context(), in)
	if err != nil {
		h.respondError(w, "create warehouse", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, wh)
}

func (h *Handler) updateWarehouse(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	var in WarehouseInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	wh, err := h.service.UpdateWarehouse(r.Context(), id, in)
	if err != nil {
		h.respondError(w, "update warehouse", err)
		return
	}
	httpx.JSON(w, http.StatusOK, wh)
}

func (h *Handler) deleteWarehouse(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if err := h.service.DeleteWarehouse(r.Context(), shared.TokenFromContext(r.Context()), id); err != nil {
		h.respondError(w, "delete warehouse", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

// Trucks

func (h *Handler) listTrucks(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListTrucks(r.Context())
	if err != nil {
		h.respondError(w, "list trucks", err)
		return
	}
	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(items, q, func(t Truck, term string) bool {
		return shared.MatchesSearch(term, t.PlateNumber, t.Make, t.Model, t.Driver)
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"trucks": page, "pagination": p})
}

func (h *Handler) getTruck(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	t, err := h.service.GetTruck(r.Context(), id)
	if err != nil {
		h.respondError(w, "get truck", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) createTruck(w http.ResponseWriter, r *http.Request) {
	var in TruckInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	t, err := h.service.CreateTruck(r.Context(), in)
	if err != nil {
		h.respondError(w, "create truck", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) updateTruck(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	var in TruckInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	t, err := h.service.UpdateTruck(r.Context(), id, in)
	if err != nil {
		h.respondError(w, "update truck", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) deleteTruck(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if err := h.service.DeleteTruck(r.Context(), shared.TokenFromContext(r.Context()), id); err != nil {
		h.respondError(w, "delete truck", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

// Trip expenses

func (h *Handler) listTripExpenses(w http.ResponseWriter, r *http.Request) {
	truckID, _ := strconv.ParseInt(r.URL.Query().Get("truckId"), 10, 64)
	items, err := h.service.ListTripExpenses(r.Context(), truckID)
	if err != nil {
		h.respondError(w, "list trip expenses", err)
		return
	}
	q := shared.QueryFromRequest(r)
	page, p := shared.Paginate(items, q, func(e TripExpense, term string) bool {
		return shared.MatchesSearch(term, e.PlateNumber, e.Description, e.Date)
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"expenses": page, "pagination": p})
}

func (h *Handler) createTripExpense(w http.ResponseWriter, r *http.Request) {
	var in TripExpenseInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	e, err := h.service.CreateTripExpense(r.Context(), in)
	if err != nil {
		h.respondError(w, "create trip expense", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) deleteTripExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if err := h.service.DeleteTripExpense(r.Context(), shared.TokenFromContext(r.Context()), id); err != nil {
		h.respondError(w, "delete trip expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var verr validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", verr.Error())
	case errors.Is(err, ErrInvalidAmount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, shared.ErrTokenRequired):
		httpx.RespondError(w, httpx.ErrAuthRequired)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
