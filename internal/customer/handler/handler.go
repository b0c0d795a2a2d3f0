package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pawdesk/petshop-service/internal/customer"
	"github.com/pawdesk/petshop-service/internal/customer/dto"
	"github.com/pawdesk/petshop-service/internal/httputil"
	"github.com/pawdesk/petshop-service/pkg/logger"
)

type CustomerHandler struct {
	uc     customer.UseCase
	logger logger.ZapLogger
}

func NewCustomerHandler(uc customer.UseCase, log logger.ZapLogger) *CustomerHandler {
	return &CustomerHandler{uc: uc, logger: log}
}

func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	r.Route("/pets", func(r chi.Router) {
		r.Post("/", h.createPet)
		r.Get("/{id}", h.getPet)
		r.Put("/{id}", h.updatePet)
		r.Delete("/{id}", h.deletePet)
	})
}

type customerRequest struct {
	StoreID string  `json:"store_id"`
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   string  `json:"notes"`
}

func (h *CustomerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.uc.CreateCustomer(r.Context(), &dto.CustomerInput{
		StoreID: req.StoreID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.CustomerFilters{
		StoreID:     q.Get("store_id"),
		SearchQuery: q.Get("search"),
		Page:        httputil.ParsePage(q.Get("page")),
		PageSize:    httputil.ParsePageSize(q.Get("page_size")),
	}

	items, total, err := h.uc.ListCustomers(r.Context(), filters)
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

func (h *CustomerHandler) update(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.uc.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), &dto.CustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type petRequest struct {
	CustomerID string     `json:"customer_id"`
	Name       string     `json:"name"`
	Species    string     `json:"species"`
	Breed      *string    `json:"breed"`
	BirthDate  *time.Time `json:"birth_date"`
	Weight     *float64   `json:"weight"`
	Notes      string     `json:"notes"`
}

func (h *CustomerHandler) createPet(w http.ResponseWriter, r *http.Request) {
	var req petRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.uc.CreatePet(r.Context(), &dto.PetInput{
		CustomerID: req.CustomerID,
		Name:       req.Name,
		Species:    req.Species,
		Breed:      req.Breed,
		BirthDate:  req.BirthDate,
		Weight:     req.Weight,
		Notes:      req.Notes,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, p)
}

func (h *CustomerHandler) getPet(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetPet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, p)
}

func (h *CustomerHandler) updatePet(w http.ResponseWriter, r *http.Request) {
	var req petRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.uc.UpdatePet(r.Context(), chi.URLParam(r, "id"), &dto.PetInput{
		Name:      req.Name,
		Species:   req.Species,
		Breed:     req.Breed,
		BirthDate: req.BirthDate,
		Weight:    req.Weight,
		Notes:     req.Notes,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, p)
}

func (h *CustomerHandler) deletePet(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeletePet(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
