package store

import (
	"fmt"
	"math"
	"strings"
)

// Paging limits applied by NewPageRequest.
const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
)

// SortOrder orders results by a public field name.
type SortOrder struct {
	Field string
	Desc  bool
}

// PageRequest selects one page of a sorted listing. Page is zero-based.
type PageRequest struct {
	Page int
	Size int
	Sort []SortOrder
}

// NewPageRequest clamps page and size into their valid ranges. Page is
// capped so that Offset cannot overflow.
func NewPageRequest(page, size int, sort ...SortOrder) PageRequest {
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)
	page = min(max(page, 0), math.MaxInt/size)
	return PageRequest{Page: page, Size: size, Sort: sort}
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// ParseSort parses "field" or "field,asc|desc" as sent in ?sort= parameters.
func ParseSort(raw string) (SortOrder, error) {
	parts := strings.Split(raw, ",")
	field := strings.TrimSpace(parts[0])
	if field == "" {
		return SortOrder{}, fmt.Errorf("%w: empty field", ErrInvalidSort)
	}
	order := SortOrder{Field: field}
	if len(parts) > 1 {
		switch strings.ToLower(strings.TrimSpace(parts[1])) {
		case "asc", "":
		case "desc":
			order.Desc = true
		default:
			return SortOrder{}, fmt.Errorf("%w: direction %q", ErrInvalidSort, parts[1])
		}
	}
	return order, nil
}

// OrderByClause renders sort orders as a SQL ORDER BY list. Only fields in
// columns (public name -> column) are accepted. The fallback column is
// appended so that paging is stable.
func OrderByClause(sort []SortOrder, columns map[string]string, fallback string) (string, error) {
	parts := make([]string, 0, len(sort)+1)
	seenFallback := false
	for _, s := range sort {
		col, ok := columns[s.Field]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrInvalidSort, s.Field)
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		if col == fallback {
			seenFallback = true
		}
		parts = append(parts, col+" "+dir)
	}
	if !seenFallback {
		parts = append(parts, fallback+" ASC")
	}
	return strings.Join(parts, ", "), nil
}
