package dto

type ConsumableInput struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

type CreateServiceInput struct {
	StoreID         string
	Name            string
	Description     string
	DurationMinutes int
	Price           float64
	VATRate         float64
	Consumables     []ConsumableInput
}

type UpdateServiceInput struct {
	ID              string
	Name            string
	Description     string
	DurationMinutes int
	Price           float64
	VATRate         float64
	IsActive        bool
	Consumables     []ConsumableInput
}

type SupplierInput struct {
	Name    string
	Email   *string
	Phone   *string
	Address *string
}
