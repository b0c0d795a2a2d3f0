package dto

type ProductFilters struct {
	StoreID     string
	SupplierID  string
	IsActive    *bool
	SearchQuery string
	SortBy      string
	SortOrder   string
	Page        int
	PageSize    int
}
