package model

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentVoided    PaymentStatus = "voided"
)

type Transaction struct {
	BaseModel
	StoreID           string            `db:"store_id" json:"store_id"`
	CustomerID        *string           `db:"customer_id" json:"customer_id"` // Nullable for walk-in sales
	InvoiceID         *string           `db:"invoice_id" json:"invoice_id"`
	TotalAmount       float64           `db:"total_amount" json:"total_amount"`
	VATAmount         float64           `db:"vat_amount" json:"vat_amount"`
	PaymentStatus     PaymentStatus     `db:"payment_status" json:"payment_status"`
	PaymentMethod     *string           `db:"payment_method" json:"payment_method"`
	PaidAt            *time.Time        `db:"paid_at" json:"paid_at"`
	ExternalReference *string           `db:"external_reference" json:"external_reference"`
	VoidReason        *string           `db:"void_reason" json:"void_reason"`
	VoidedAt          *time.Time        `db:"voided_at" json:"voided_at"`
	Lines             []TransactionLine `db:"-" json:"lines"`
}

type TransactionLine struct {
	ID            string  `db:"id" json:"id"`
	TransactionID string  `db:"transaction_id" json:"transaction_id"`
	ProductID     *string `db:"product_id" json:"product_id"` // Either a product...
	ServiceID     *string `db:"service_id" json:"service_id"` // ...or a service
	Description   string  `db:"description" json:"description"`
	Quantity      float64 `db:"quantity" json:"quantity"`
	UnitPrice     float64 `db:"unit_price" json:"unit_price"`
	VATRate       float64 `db:"vat_rate" json:"vat_rate"`
	LineTotal     float64 `db:"line_total" json:"line_total"`
}
