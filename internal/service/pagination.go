package service

import "github.com/schalkje/DiagramDesigner/internal/storage"

const (
	// DefaultPageSize applies when a list request names no size.
	DefaultPageSize = 100
	// MaxPageSize caps any requested size.
	MaxPageSize = 1000
)

// PageRequest is a list window expressed as offset and limit. Page-based
// callers convert with PageOf.
type PageRequest struct {
	Offset int
	Limit  int
}

// PageOf converts a 1-based page number and size into a PageRequest.
func PageOf(page, pageSize int) PageRequest {
	if page < 1 {
		page = 1
	}
	pageSize = clampSize(pageSize)
	return PageRequest{Offset: (page - 1) * pageSize, Limit: pageSize}
}

func clampSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	}
	return n
}

func (r PageRequest) normalize() PageRequest {
	if r.Offset < 0 {
		r.Offset = 0
	}
	r.Limit = clampSize(r.Limit)
	return r
}

func (r PageRequest) options() storage.ListOptions {
	r = r.normalize()
	return storage.ListOptions{Offset: r.Offset, Limit: r.Limit}
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Page is one window of a list result.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func newPage[T any](items []T, total int64, req PageRequest) *Page[T] {
	req = req.normalize()
	if items == nil {
		items = []T{}
	}
	size := int64(req.Limit)
	return &Page[T]{
		Data: items,
		Pagination: Pagination{
			Page:       req.Offset/req.Limit + 1,
			PageSize:   req.Limit,
			Total:      total,
			TotalPages: int((total + size - 1) / size),
		},
	}
}
