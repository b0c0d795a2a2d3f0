package dto

import (
	"time"

	"github.com/pawdesk/petshop-service/internal/model"
)

type CreateReservationInput struct {
	ProductID string
	Quantity  float64
	Owner     model.OwnerRef
	ExpiresAt *time.Time
}

type AdjustStockInput struct {
	ProductID      string
	StoreID        *string
	QuantityChange float64
	Reason         model.MovementReason // receipt, adjustment or reconciliation
	Notes          string
	ReferenceType  string
	ReferenceID    string
	PerformedBy    string
}

type SaleLine struct {
	ProductID string
	Quantity  float64
}
