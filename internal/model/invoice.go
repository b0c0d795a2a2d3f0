package model

import "time"

type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "draft"
	InvoiceIssued InvoiceStatus = "issued"
	InvoicePaid   InvoiceStatus = "paid"
	InvoiceVoid   InvoiceStatus = "void"
)

// Invoice totals and number are computed once at issue time and never change
// afterwards; only payment/void metadata may be written later.
type Invoice struct {
	BaseModel
	CompanyID  string        `db:"company_id" json:"company_id"`
	StoreID    string        `db:"store_id" json:"store_id"`
	CustomerID *string       `db:"customer_id" json:"customer_id"`
	Number     *string       `db:"number" json:"number"` // Assigned at issue
	Status     InvoiceStatus `db:"status" json:"status"`
	Subtotal   float64       `db:"subtotal" json:"subtotal"`
	VATTotal   float64       `db:"vat_total" json:"vat_total"`
	Total      float64       `db:"total" json:"total"`
	IssuedAt   *time.Time    `db:"issued_at" json:"issued_at"`
	PaidAt     *time.Time    `db:"paid_at" json:"paid_at"`
	VoidedAt   *time.Time    `db:"voided_at" json:"voided_at"`
	VoidReason *string       `db:"void_reason" json:"void_reason"`
	Lines      []InvoiceLine `db:"-" json:"lines"`
}

type InvoiceLine struct {
	ID          string  `db:"id" json:"id"`
	InvoiceID   string  `db:"invoice_id" json:"invoice_id"`
	Description string  `db:"description" json:"description"`
	Quantity    float64 `db:"quantity" json:"quantity"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
	VATRate     float64 `db:"vat_rate" json:"vat_rate"`
	LineTotal   float64 `db:"line_total" json:"line_total"`
}
