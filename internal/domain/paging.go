package domain

const (
	// MaxPageSize bounds the work a single paged request can cause.
	MaxPageSize = 50

	// DefaultPageSize is used at the API boundary when no size is given.
	DefaultPageSize = 10
)

// PageRequest holds paging parameters for list operations.
// Out-of-range values are clamped by Normalize rather than rejected.
type PageRequest struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// Normalize returns a copy with PageNumber ≥ 1 and PageSize in [1, MaxPageSize].
func (p PageRequest) Normalize() PageRequest {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = 1
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset is the number of rows skipped before this page. ok is false when
// the page starts at or beyond total, including page numbers whose offset
// would not fit in an int64. Call on a normalized request.
func (p PageRequest) Offset(total int64) (offset int64, ok bool) {
	skipped := int64(p.PageNumber - 1)
	size := int64(p.PageSize)
	if skipped >= (total+size-1)/size {
		return 0, false
	}
	return skipped * size, true
}

// PagedResult is one bounded page of records plus the metadata needed to
// navigate the rest.
type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewPagedResult builds a PagedResult for a normalized page request.
func NewPagedResult[T any](items []T, total int64, page PageRequest) *PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if total > 0 && page.PageSize > 0 {
		pages = int((total + int64(page.PageSize) - 1) / int64(page.PageSize))
	}
	return &PagedResult[T]{
		Items:      items,
		TotalCount: total,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
		TotalPages: pages,
	}
}

// HasPrevious reports whether a page precedes this one.
func (r *PagedResult[T]) HasPrevious() bool {
	return r.PageNumber > 1
}

// HasNext reports whether a page follows this one.
func (r *PagedResult[T]) HasNext() bool {
	return r.PageNumber < r.TotalPages
}
