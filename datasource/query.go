/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datasource

import "strings"

// SortOrder is either SortAsc or SortDesc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder maps user input to a SortOrder, defaulting to SortAsc.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(s, string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// Toggle returns the opposite order.
func (o SortOrder) Toggle() SortOrder {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Query carries the pagination, sort, search and filter parameters of a request.
type Query struct {
	// Limit is the page size. Zero means the whole result is requested.
	Limit int `json:"limit"`
	// Page is 1-based; values below 1 are treated as 1.
	Page int `json:"page"`
	// SortField is empty when no explicit ordering is requested.
	SortField string    `json:"sort,omitempty"`
	SortOrder SortOrder `json:"order,omitempty"`
	// Search is a full-text search string.
	Search string `json:"search,omitempty"`
	// Filters maps a field to the values it may equal.
	Filters map[string][]string `json:"filters,omitempty"`
}

// IsPaginated reports whether a page size was requested.
func (q *Query) IsPaginated() bool { return q.Limit > 0 }

// IsSearch reports whether a non-blank search string was requested.
func (q *Query) IsSearch() bool { return strings.TrimSpace(q.Search) != "" }

// IsSorted reports whether an explicit sort field was requested.
func (q *Query) IsSorted() bool { return q.SortField != "" }

// HasFilters reports whether at least one filter carries values.
func (q *Query) HasFilters() bool {
	for _, values := range q.Filters {
		if len(values) > 0 {
			return true
		}
	}
	return false
}

// CurrentPage returns Page clamped to 1.
func (q *Query) CurrentPage() int {
	if q.Page < 1 {
		return 1
	}
	return q.Page
}

// Offset returns the number of items to skip for the current page.
func (q *Query) Offset() int {
	if q.Limit <= 0 {
		return 0
	}
	return (q.CurrentPage() - 1) * q.Limit
}

// Matches reports whether value satisfies the filter on field. Fields without
// a filter always match.
func (q *Query) Matches(field, value string) bool {
	values := q.Filters[field]
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
