package dto

import "time"

// Availability is current stock minus all active reservations for a product.
type Availability struct {
	ProductID    string  `json:"product_id"`
	CurrentStock float64 `json:"current_stock"`
	Reserved     float64 `json:"reserved"`
	Available    float64 `json:"available"`
}

type LowStockItem struct {
	ProductID        string  `json:"product_id"`
	SKU              string  `json:"sku"`
	Name             string  `json:"name"`
	CurrentStock     float64 `json:"current_stock"`
	Reserved         float64 `json:"reserved"`
	Available        float64 `json:"available"`
	ReorderThreshold float64 `json:"reorder_threshold"`
}

type MovementFilters struct {
	ProductID string
	StoreID   *string
	Reason    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}
