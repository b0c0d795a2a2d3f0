package dto

import "time"

type TransactionFilters struct {
	StoreID       string
	CustomerID    string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}
