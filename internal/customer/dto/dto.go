package dto

type CustomerFilters struct {
	StoreID     string
	SearchQuery string
	Page        int
	PageSize    int
}
