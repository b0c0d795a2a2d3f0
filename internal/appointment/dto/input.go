package dto

import "time"

type ServiceLineInput struct {
	ServiceID     string   `json:"service_id"`
	Quantity      float64  `json:"quantity"`
	PriceOverride *float64 `json:"price_override"`
}

type CreateAppointmentInput struct {
	StoreID    string
	CustomerID string
	PetID      string
	StaffID    string
	StartAt    time.Time
	EndAt      time.Time
	Notes      string
	Lines      []ServiceLineInput
	// Optional expiry applied to the inventory holds created for this booking.
	ReservationExpiresAt *time.Time
}

type ConsumedItemInput struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

type CompleteAppointmentInput struct {
	AppointmentID string
	PerformedBy   string
	// ConsumedItems overrides the planned reservations with actual usage.
	ConsumedItems []ConsumedItemInput
}

type CancelAppointmentInput struct {
	AppointmentID string
	PerformedBy   string
	Reason        string
	NoShow        bool
}
