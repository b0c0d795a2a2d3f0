package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pawdesk/petshop-service/internal/auth"
	"github.com/pawdesk/petshop-service/internal/httputil"
	"github.com/pawdesk/petshop-service/internal/product"
	"github.com/pawdesk/petshop-service/internal/product/dto"
	"github.com/pawdesk/petshop-service/pkg/logger"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{uc: uc, logger: log}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type productRequest struct {
	StoreID          string   `json:"store_id"`
	SupplierID       *string  `json:"supplier_id"`
	SKU              string   `json:"sku"`
	Barcode          string   `json:"barcode"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	UnitPrice        float64  `json:"unit_price"`
	CostPrice        *float64 `json:"cost_price"`
	VATRate          float64  `json:"vat_rate"`
	StockTracked     bool     `json:"stock_tracked"`
	ReorderThreshold float64  `json:"reorder_threshold"`
	OpeningStock     float64  `json:"opening_stock"`
	IsActive         *bool    `json:"is_active"`
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.uc.CreateProduct(r.Context(), &dto.CreateProductInput{
		StoreID:          req.StoreID,
		SupplierID:       req.SupplierID,
		SKU:              req.SKU,
		Barcode:          req.Barcode,
		Name:             req.Name,
		Description:      req.Description,
		UnitPrice:        req.UnitPrice,
		CostPrice:        req.CostPrice,
		VATRate:          req.VATRate,
		StockTracked:     req.StockTracked,
		ReorderThreshold: req.ReorderThreshold,
		OpeningStock:     req.OpeningStock,
		PerformedBy:      auth.PerformedBy(r.Context()),
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.ProductFilters{
		StoreID:     q.Get("store_id"),
		SupplierID:  q.Get("supplier_id"),
		SearchQuery: q.Get("search"),
		SortBy:      q.Get("sort_by"),
		SortOrder:   q.Get("sort_order"),
		Page:        httputil.ParsePage(q.Get("page")),
		PageSize:    httputil.ParsePageSize(q.Get("page_size")),
	}
	if s := q.Get("is_active"); s != "" {
		active := s == "true"
		filters.IsActive = &active
	}

	items, total, err := h.uc.ListProducts(r.Context(), filters)
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	p, err := h.uc.UpdateProduct(r.Context(), &dto.UpdateProductInput{
		ID:               chi.URLParam(r, "id"),
		SupplierID:       req.SupplierID,
		SKU:              req.SKU,
		Barcode:          req.Barcode,
		Name:             req.Name,
		Description:      req.Description,
		UnitPrice:        req.UnitPrice,
		CostPrice:        req.CostPrice,
		VATRate:          req.VATRate,
		StockTracked:     req.StockTracked,
		ReorderThreshold: req.ReorderThreshold,
		IsActive:         isActive,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
