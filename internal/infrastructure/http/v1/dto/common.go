// Package dto holds request and response bodies of the HTTP API.
package dto

// OKResponse is returned by mutations that have no entity to return.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ListQuery holds the pagination and search parameters shared by list endpoints.
type ListQuery struct {
	Search   string `form:"search"`
	DealerID string `form:"dealerId"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

// ListResponse wraps a list with its length.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse never returns a nil Items slice so the body is always an array.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}
