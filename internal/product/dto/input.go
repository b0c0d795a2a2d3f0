package dto

type CreateProductInput struct {
	StoreID          string
	SupplierID       *string
	SKU              string
	Barcode          string
	Name             string
	Description      string
	UnitPrice        float64
	CostPrice        *float64
	VATRate          float64
	StockTracked     bool
	ReorderThreshold float64
	OpeningStock     float64
	PerformedBy      string
}

type UpdateProductInput struct {
	ID               string
	SupplierID       *string
	SKU              string
	Barcode          string
	Name             string
	Description      string
	UnitPrice        float64
	CostPrice        *float64
	VATRate          float64
	StockTracked     bool
	ReorderThreshold float64
	IsActive         bool
}
