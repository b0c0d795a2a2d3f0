package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pawdesk/petshop-service/internal/auth"
	"github.com/pawdesk/petshop-service/internal/httputil"
	"github.com/pawdesk/petshop-service/internal/inventory"
	"github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/pkg/logger"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{uc: uc, logger: log}
}

func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/inventory-reservations", func(r chi.Router) {
		r.Post("/", h.createReservation)
		r.Post("/{id}/release", h.releaseReservation)
		r.Post("/{id}/consume", h.consumeReservation)
	})
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/availability/{productID}", h.availability)
		r.Post("/adjustments", h.adjustStock)
		r.Get("/movements", h.listMovements)
		r.Get("/low-stock", h.listLowStock)
	})
}

type createReservationRequest struct {
	ProductID       string     `json:"product_id"`
	Quantity        float64    `json:"quantity"`
	ReservedForType string     `json:"reserved_for_type"`
	ReservedForID   string     `json:"reserved_for_id"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

func (h *InventoryHandler) createReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.uc.CreateReservation(r.Context(), &dto.CreateReservationInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Owner: model.OwnerRef{
			Type: model.OwnerType(req.ReservedForType),
			ID:   req.ReservedForID,
		},
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, res)
}

func (h *InventoryHandler) releaseReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.uc.ReleaseReservation(r.Context(), id, auth.PerformedBy(r.Context())); err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

func (h *InventoryHandler) consumeReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.uc.ConsumeReservation(r.Context(), id, auth.PerformedBy(r.Context()))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, res)
}

func (h *InventoryHandler) availability(w http.ResponseWriter, r *http.Request) {
	av, err := h.uc.Availability(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, av)
}

type adjustStockRequest struct {
	ProductID      string  `json:"product_id"`
	StoreID        *string `json:"store_id"`
	QuantityChange float64 `json:"quantity_change"`
	Reason         string  `json:"reason"`
	Notes          string  `json:"notes"`
	ReferenceType  string  `json:"reference_type"`
	ReferenceID    string  `json:"reference_id"`
}

func (h *InventoryHandler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.uc.AdjustStock(r.Context(), &dto.AdjustStockInput{
		ProductID:      req.ProductID,
		StoreID:        req.StoreID,
		QuantityChange: req.QuantityChange,
		Reason:         model.MovementReason(req.Reason),
		Notes:          req.Notes,
		ReferenceType:  req.ReferenceType,
		ReferenceID:    req.ReferenceID,
		PerformedBy:    auth.PerformedBy(r.Context()),
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, p)
}

func (h *InventoryHandler) listMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.MovementFilters{
		ProductID: q.Get("product_id"),
		Reason:    q.Get("reason"),
		Page:      httputil.ParsePage(q.Get("page")),
		PageSize:  httputil.ParsePageSize(q.Get("page_size")),
	}
	if storeID := q.Get("store_id"); storeID != "" {
		filters.StoreID = &storeID
	}

	items, total, err := h.uc.ListMovements(r.Context(), filters)
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

func (h *InventoryHandler) listLowStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var storeID *string
	if s := q.Get("store_id"); s != "" {
		storeID = &s
	}

	items, total, err := h.uc.ListLowStock(r.Context(), storeID,
		httputil.ParsePage(q.Get("page")), httputil.ParsePageSize(q.Get("page_size")))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}
