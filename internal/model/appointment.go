package model

import "time"

type AppointmentStatus string

const (
	AppointmentBooked    AppointmentStatus = "booked"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	BaseModel
	StoreID      string            `db:"store_id" json:"store_id"`
	CustomerID   string            `db:"customer_id" json:"customer_id"`
	PetID        string            `db:"pet_id" json:"pet_id"`
	StaffID      string            `db:"staff_id" json:"staff_id"`
	StartAt      time.Time         `db:"start_at" json:"start_at"`
	EndAt        time.Time         `db:"end_at" json:"end_at"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        string            `db:"notes" json:"notes"`
	NoShow       bool              `db:"no_show" json:"no_show"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason"`
	CancelledAt  *time.Time        `db:"cancelled_at" json:"cancelled_at"`
	CancelledBy  *string           `db:"cancelled_by" json:"cancelled_by"`
	CompletedAt  *time.Time        `db:"completed_at" json:"completed_at"`
	ServiceLines []AppointmentLine `db:"-" json:"service_lines"`
}

// Terminal reports whether the appointment reached a final state.
func (a *Appointment) Terminal() bool {
	return a.Status == AppointmentCompleted || a.Status == AppointmentCancelled
}

type AppointmentLine struct {
	ID            string   `db:"id" json:"id"`
	AppointmentID string   `db:"appointment_id" json:"appointment_id"`
	ServiceID     string   `db:"service_id" json:"service_id"`
	Quantity      float64  `db:"quantity" json:"quantity"`
	PriceOverride *float64 `db:"price_override" json:"price_override"`
}
