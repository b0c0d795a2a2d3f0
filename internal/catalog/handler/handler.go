package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pawdesk/petshop-service/internal/catalog"
	"github.com/pawdesk/petshop-service/internal/catalog/dto"
	"github.com/pawdesk/petshop-service/internal/httputil"
	"github.com/pawdesk/petshop-service/pkg/logger"
)

type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{uc: uc, logger: log}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/services", func(r chi.Router) {
		r.Post("/", h.createService)
		r.Get("/", h.listServices)
		r.Get("/{id}", h.getService)
		r.Put("/{id}", h.updateService)
		r.Delete("/{id}", h.deleteService)
	})
	r.Route("/suppliers", func(r chi.Router) {
		r.Post("/", h.createSupplier)
		r.Get("/", h.listSuppliers)
		r.Get("/{id}", h.getSupplier)
		r.Put("/{id}", h.updateSupplier)
		r.Delete("/{id}", h.deleteSupplier)
	})
}

type serviceRequest struct {
	StoreID         string                `json:"store_id"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	DurationMinutes int                   `json:"duration_minutes"`
	Price           float64               `json:"price"`
	VATRate         float64               `json:"vat_rate"`
	IsActive        *bool                 `json:"is_active"`
	Consumables     []dto.ConsumableInput `json:"consumables"`
}

func (h *CatalogHandler) createService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.uc.CreateService(r.Context(), &dto.CreateServiceInput{
		StoreID:         req.StoreID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		VATRate:         req.VATRate,
		Consumables:     req.Consumables,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, s)
}

func (h *CatalogHandler) getService(w http.ResponseWriter, r *http.Request) {
	s, err := h.uc.GetService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, s)
}

func (h *CatalogHandler) listServices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.ServiceFilters{
		StoreID:     q.Get("store_id"),
		SearchQuery: q.Get("search"),
		Page:        httputil.ParsePage(q.Get("page")),
		PageSize:    httputil.ParsePageSize(q.Get("page_size")),
	}
	if s := q.Get("is_active"); s != "" {
		active := s == "true"
		filters.IsActive = &active
	}

	items, total, err := h.uc.ListServices(r.Context(), filters)
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

func (h *CatalogHandler) updateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	s, err := h.uc.UpdateService(r.Context(), &dto.UpdateServiceInput{
		ID:              chi.URLParam(r, "id"),
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		VATRate:         req.VATRate,
		IsActive:        isActive,
		Consumables:     req.Consumables,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, s)
}

func (h *CatalogHandler) deleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type supplierRequest struct {
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (h *CatalogHandler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.uc.CreateSupplier(r.Context(), &dto.SupplierInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, s)
}

func (h *CatalogHandler) getSupplier(w http.ResponseWriter, r *http.Request) {
	s, err := h.uc.GetSupplier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, s)
}

func (h *CatalogHandler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, total, err := h.uc.ListSuppliers(r.Context(),
		httputil.ParsePage(q.Get("page")), httputil.ParsePageSize(q.Get("page_size")))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

func (h *CatalogHandler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.uc.UpdateSupplier(r.Context(), chi.URLParam(r, "id"), &dto.SupplierInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, s)
}

func (h *CatalogHandler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
