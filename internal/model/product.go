package model

type Product struct {
	BaseModel
	StoreID          string   `db:"store_id" json:"store_id"`
	SupplierID       *string  `db:"supplier_id" json:"supplier_id"` // Nullable
	SKU              string   `db:"sku" json:"sku"`
	Barcode          *string  `db:"barcode" json:"barcode"` // Nullable
	Name             string   `db:"name" json:"name"`
	Description      *string  `db:"description" json:"description"`
	UnitPrice        float64  `db:"unit_price" json:"unit_price"`
	CostPrice        *float64 `db:"cost_price" json:"cost_price"`
	VATRate          float64  `db:"vat_rate" json:"vat_rate"`
	StockTracked     bool     `db:"stock_tracked" json:"stock_tracked"`
	ReorderThreshold float64  `db:"reorder_threshold" json:"reorder_threshold"`
	CurrentStock     float64  `db:"current_stock" json:"current_stock"`
	IsActive         bool     `db:"is_active" json:"is_active"`
}
