package model

// Service is a bookable catalog entry (grooming, consultation, vaccination).
type Service struct {
	BaseModel
	StoreID         string              `db:"store_id" json:"store_id"`
	Name            string              `db:"name" json:"name"`
	Description     *string             `db:"description" json:"description"`
	DurationMinutes int                 `db:"duration_minutes" json:"duration_minutes"`
	Price           float64             `db:"price" json:"price"`
	VATRate         float64             `db:"vat_rate" json:"vat_rate"`
	IsActive        bool                `db:"is_active" json:"is_active"`
	Consumables     []ServiceConsumable `db:"-" json:"consumables"`
}

// ServiceConsumable is the recipe line linking a service to the product
// quantity it consumes per booking.
type ServiceConsumable struct {
	ID        string  `db:"id" json:"id"`
	ServiceID string  `db:"service_id" json:"service_id"`
	ProductID string  `db:"product_id" json:"product_id"`
	Quantity  float64 `db:"quantity" json:"quantity"`
}

type Supplier struct {
	BaseModel
	Name     string  `db:"name" json:"name"`
	Email    *string `db:"email" json:"email"`
	Phone    *string `db:"phone" json:"phone"`
	Address  *string `db:"address" json:"address"`
	IsActive bool    `db:"is_active" json:"is_active"`
}
