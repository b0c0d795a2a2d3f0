package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pawdesk/petshop-service/internal/auth"
	"github.com/pawdesk/petshop-service/internal/httputil"
	"github.com/pawdesk/petshop-service/internal/transaction"
	"github.com/pawdesk/petshop-service/internal/transaction/dto"
	"github.com/pawdesk/petshop-service/pkg/logger"
)

type TransactionHandler struct {
	uc     transaction.UseCase
	logger logger.ZapLogger
}

func NewTransactionHandler(uc transaction.UseCase, log logger.ZapLogger) *TransactionHandler {
	return &TransactionHandler{uc: uc, logger: log}
}

func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/{id}/complete", h.complete)
		r.Post("/{id}/void", h.void)
	})
	r.Get("/invoices/{id}", h.getInvoice)
}

type createTransactionRequest struct {
	StoreID       string          `json:"store_id"`
	CompanyID     string          `json:"company_id"`
	CustomerID    *string         `json:"customer_id"`
	Lines         []dto.LineInput `json:"lines"`
	CreateInvoice bool            `json:"create_invoice"`
}

func (h *TransactionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := h.uc.Create(r.Context(), &dto.CreateTransactionInput{
		StoreID:       req.StoreID,
		CompanyID:     req.CompanyID,
		CustomerID:    req.CustomerID,
		Lines:         req.Lines,
		CreateInvoice: req.CreateInvoice,
		PerformedBy:   auth.PerformedBy(r.Context()),
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, txn)
}

func (h *TransactionHandler) get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.uc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, txn)
}

func (h *TransactionHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, total, err := h.uc.List(r.Context(), &dto.TransactionFilters{
		StoreID:       q.Get("store_id"),
		CustomerID:    q.Get("customer_id"),
		PaymentStatus: q.Get("payment_status"),
		Page:          httputil.ParsePage(q.Get("page")),
		PageSize:      httputil.ParsePageSize(q.Get("page_size")),
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

type completeTransactionRequest struct {
	PaymentMethod     string  `json:"payment_method"`
	ExternalReference *string `json:"external_reference"`
}

func (h *TransactionHandler) complete(w http.ResponseWriter, r *http.Request) {
	var req completeTransactionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := h.uc.Complete(r.Context(), &dto.CompleteTransactionInput{
		TransactionID:     chi.URLParam(r, "id"),
		PaymentMethod:     req.PaymentMethod,
		ExternalReference: req.ExternalReference,
		PerformedBy:       auth.PerformedBy(r.Context()),
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, txn)
}

type voidTransactionRequest struct {
	Reason string `json:"reason"`
}

func (h *TransactionHandler) void(w http.ResponseWriter, r *http.Request) {
	var req voidTransactionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := h.uc.Void(r.Context(), &dto.VoidTransactionInput{
		TransactionID: chi.URLParam(r, "id"),
		Reason:        req.Reason,
		PerformedBy:   auth.PerformedBy(r.Context()),
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, txn)
}

func (h *TransactionHandler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.uc.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, inv)
}
