package model

import "time"

// OwnerType identifies the kind of entity a reservation is held for.
type OwnerType string

const (
	OwnerAppointment OwnerType = "appointment"
	OwnerTransaction OwnerType = "transaction"
)

// OwnerRef ties a reservation to the appointment or transaction that owns it.
type OwnerRef struct {
	Type OwnerType `db:"reserved_for_type" json:"reserved_for_type"`
	ID   string    `db:"reserved_for_id" json:"reserved_for_id"`
}

type ReservationStatus string

const (
	ReservationActive   ReservationStatus = "active"
	ReservationReleased ReservationStatus = "released"
	ReservationConsumed ReservationStatus = "consumed"
)

type InventoryReservation struct {
	ID        string            `db:"id" json:"id"`
	ProductID string            `db:"product_id" json:"product_id"`
	Quantity  float64           `db:"quantity" json:"quantity"`
	OwnerRef
	Status    ReservationStatus `db:"status" json:"status"`
	ExpiresAt *time.Time        `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether the reservation can no longer change state.
func (r *InventoryReservation) Terminal() bool {
	return r.Status == ReservationReleased || r.Status == ReservationConsumed
}

type MovementReason string

const (
	MovementReceipt        MovementReason = "receipt"
	MovementSale           MovementReason = "sale"
	MovementAdjustment     MovementReason = "adjustment"
	MovementRelease        MovementReason = "reservation-release"
	MovementConsumption    MovementReason = "consumption"
	MovementReconciliation MovementReason = "reconciliation"
)

// StockMovement is an append-only ledger entry. Rows are never updated or
// deleted once written.
type StockMovement struct {
	ID             string         `db:"id" json:"id"`
	ProductID      string         `db:"product_id" json:"product_id"`
	StoreID        *string        `db:"store_id" json:"store_id"`
	Reason         MovementReason `db:"reason" json:"reason"`
	QuantityChange float64        `db:"quantity_change" json:"quantity_change"`
	QuantityBefore float64        `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  float64        `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string        `db:"reference_type" json:"reference_type"`
	ReferenceID    *string        `db:"reference_id" json:"reference_id"`
	Notes          string         `db:"notes" json:"notes"`
	PerformedBy    *string        `db:"performed_by" json:"performed_by"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}
