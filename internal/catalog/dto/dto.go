package dto

type ServiceFilters struct {
	StoreID     string
	IsActive    *bool
	SearchQuery string
	Page        int
	PageSize    int
}
