package dto

import (
	"time"

	"github.com/pawdesk/petshop-service/internal/model"
)

type AppointmentFilters struct {
	StoreID    string
	CustomerID string
	StaffID    string
	Status     string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// ReservationOutcome records what happened to one reservation during a
// lifecycle transition, so a caller can retry only the remainder.
type ReservationOutcome struct {
	ReservationID string  `json:"reservation_id"`
	ProductID     string  `json:"product_id"`
	Quantity      float64 `json:"quantity"`
	Status        string  `json:"status"` // consumed, released, failed, pending
	Error         string  `json:"error,omitempty"`
}

const (
	OutcomeConsumed = "consumed"
	OutcomeReleased = "released"
	OutcomeFailed   = "failed"
	OutcomePending  = "pending"
)

// TransitionResult is the saga report for complete/cancel. Done is false when
// some reservations could not be processed; the appointment status is then
// unchanged and the transition can be retried safely.
type TransitionResult struct {
	Appointment *model.Appointment   `json:"appointment"`
	Outcomes    []ReservationOutcome `json:"outcomes"`
	Done        bool                 `json:"done"`
}
