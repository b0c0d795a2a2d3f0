package dto

type LineInput struct {
	ProductID     *string  `json:"product_id"`
	ServiceID     *string  `json:"service_id"`
	Quantity      float64  `json:"quantity"`
	PriceOverride *float64 `json:"price_override"`
}

type CreateTransactionInput struct {
	StoreID       string
	CompanyID     string
	CustomerID    *string
	Lines         []LineInput
	CreateInvoice bool
	PerformedBy   string
}

type CompleteTransactionInput struct {
	TransactionID     string
	PaymentMethod     string
	ExternalReference *string
	PerformedBy       string
}

type VoidTransactionInput struct {
	TransactionID string
	Reason        string
	PerformedBy   string
}
