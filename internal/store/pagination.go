package store

// Page holds one page of a paginated result set.
// TotalPages is always at least 1, even for an empty result set, so a
// client can render "page 1 of 1" without special-casing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPage builds a Page from the items of the requested page and the total
// row count. A page beyond the last one carries empty items.
func NewPage[T any](items []T, page, pageSize, totalItems int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: TotalPages(totalItems, pageSize),
	}
}

// TotalPages computes ceil(totalItems / pageSize) with a floor of 1.
func TotalPages(totalItems, pageSize int) int {
	if pageSize <= 0 || totalItems <= 0 {
		return 1
	}
	return (totalItems + pageSize - 1) / pageSize
}
