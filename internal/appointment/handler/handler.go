package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pawdesk/petshop-service/internal/appointment"
	"github.com/pawdesk/petshop-service/internal/appointment/dto"
	"github.com/pawdesk/petshop-service/internal/auth"
	"github.com/pawdesk/petshop-service/internal/httputil"
	"github.com/pawdesk/petshop-service/pkg/logger"
)

type AppointmentHandler struct {
	uc     appointment.UseCase
	logger logger.ZapLogger
}

func NewAppointmentHandler(uc appointment.UseCase, log logger.ZapLogger) *AppointmentHandler {
	return &AppointmentHandler{uc: uc, logger: log}
}

func (h *AppointmentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/{id}/confirm", h.confirm)
		r.Post("/{id}/complete", h.complete)
		r.Post("/{id}/cancel", h.cancel)
	})
}

type createAppointmentRequest struct {
	StoreID              string                 `json:"store_id"`
	CustomerID           string                 `json:"customer_id"`
	PetID                string                 `json:"pet_id"`
	StaffID              string                 `json:"staff_id"`
	StartAt              time.Time              `json:"start_at"`
	EndAt                time.Time              `json:"end_at"`
	Notes                string                 `json:"notes"`
	Lines                []dto.ServiceLineInput `json:"lines"`
	ReservationExpiresAt *time.Time             `json:"reservation_expires_at"`
}

func (h *AppointmentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appt, err := h.uc.Create(r.Context(), &dto.CreateAppointmentInput{
		StoreID:              req.StoreID,
		CustomerID:           req.CustomerID,
		PetID:                req.PetID,
		StaffID:              req.StaffID,
		StartAt:              req.StartAt,
		EndAt:                req.EndAt,
		Notes:                req.Notes,
		Lines:                req.Lines,
		ReservationExpiresAt: req.ReservationExpiresAt,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, appt)
}

func (h *AppointmentHandler) get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.uc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.AppointmentFilters{
		StoreID:    q.Get("store_id"),
		CustomerID: q.Get("customer_id"),
		StaffID:    q.Get("staff_id"),
		Status:     q.Get("status"),
		Page:       httputil.ParsePage(q.Get("page")),
		PageSize:   httputil.ParsePageSize(q.Get("page_size")),
	}
	if from := q.Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.From = &t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.To = &t
		}
	}

	items, total, err := h.uc.List(r.Context(), filters)
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": total})
}

func (h *AppointmentHandler) confirm(w http.ResponseWriter, r *http.Request) {
	appt, err := h.uc.Confirm(r.Context(), chi.URLParam(r, "id"), auth.PerformedBy(r.Context()))
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, appt)
}

type completeAppointmentRequest struct {
	ConsumedItems []dto.ConsumedItemInput `json:"consumed_items"`
}

func (h *AppointmentHandler) complete(w http.ResponseWriter, r *http.Request) {
	req := completeAppointmentRequest{}
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.uc.Complete(r.Context(), &dto.CompleteAppointmentInput{
		AppointmentID: chi.URLParam(r, "id"),
		PerformedBy:   auth.PerformedBy(r.Context()),
		ConsumedItems: req.ConsumedItems,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	if !result.Done {
		// Partial failure: status stays confirmed, the body lists what is
		// still pending so the caller can retry.
		httputil.RespondJSON(w, http.StatusConflict, result)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

type cancelAppointmentRequest struct {
	Reason string `json:"reason"`
	NoShow bool   `json:"no_show"`
}

func (h *AppointmentHandler) cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelAppointmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.uc.Cancel(r.Context(), &dto.CancelAppointmentInput{
		AppointmentID: chi.URLParam(r, "id"),
		PerformedBy:   auth.PerformedBy(r.Context()),
		Reason:        req.Reason,
		NoShow:        req.NoShow,
	})
	if err != nil {
		httputil.RespondAppError(w, err)
		return
	}
	if !result.Done {
		httputil.RespondJSON(w, http.StatusConflict, result)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}
