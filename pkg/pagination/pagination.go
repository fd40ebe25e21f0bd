package pagination

const (
	// DefaultPage is used when the caller omits or sends a non-positive page.
	DefaultPage = 1
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds page-based pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit into their accepted ranges.
func (p Params) Normalize() Params {
	out := p
	if out.Page < 1 {
		out.Page = DefaultPage
	}
	out.Limit = NormalizeLimit(out.Limit)
	return out
}

// Offset returns the row offset for the (normalized) page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// NormalizeLimit clamps the requested limit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Page is the list envelope returned by paginated queries.
type Page[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// NewPage builds the envelope for items fetched with params out of total rows.
func NewPage[T any](items []T, params Params, total int64) Page[T] {
	n := params.Normalize()
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(n.Limit) - 1) / int64(n.Limit))
	}
	return Page[T]{
		Items:       items,
		CurrentPage: n.Page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNext:     n.Page < totalPages,
		HasPrev:     n.Page > 1,
	}
}

// Map converts the items of a page while preserving its metadata.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, fn(item))
	}
	return Page[U]{
		Items:       items,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		TotalCount:  page.TotalCount,
		HasNext:     page.HasNext,
		HasPrev:     page.HasPrev,
	}
}
