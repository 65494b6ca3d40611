/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datasource

import (
	"context"
	"strings"

	"github.com/suparena/dashboard/errors"
)

// Capability is a bitmask of the query features a backend declares.
type Capability uint8

const (
	// Streaming means items can be iterated lazily without materializing the whole set.
	Streaming Capability = 1 << iota
	// Pagination means the backend honors Query.Limit and Query.Page.
	Pagination
	// FulltextSearch means the backend honors Query.Search.
	FulltextSearch
	// Sorting means the backend honors Query.SortField and Query.SortOrder.
	Sorting
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{Streaming, "streaming"},
	{Pagination, "pagination"},
	{FulltextSearch, "fulltext search"},
	{Sorting, "sorting"},
}

// Has reports whether every capability in o is declared in c.
func (c Capability) Has(o Capability) bool {
	return c&o == o
}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for _, cn := range capabilityNames {
		if c.Has(cn.c) {
			names = append(names, cn.name)
		}
	}
	return strings.Join(names, "|")
}

// Capable is anything that declares capabilities.
type Capable interface {
	Capabilities() Capability
}

// Datasource exposes items of type T for a query under declared capability constraints.
type Datasource[T any] interface {
	Capable

	// GetItems returns a Result pairing a lazy item sequence with a count, if the count
	// is cheap to obtain. Each call owns a fresh underlying reader.
	GetItems(ctx context.Context, q *Query) (*Result[T], error)
}

// SupportsStreaming reports whether the datasource can stream items.
func SupportsStreaming(ds Capable) bool { return ds.Capabilities().Has(Streaming) }

// SupportsPagination reports whether the datasource honors limit and page.
func SupportsPagination(ds Capable) bool { return ds.Capabilities().Has(Pagination) }

// SupportsFulltextSearch reports whether the datasource honors a search string.
func SupportsFulltextSearch(ds Capable) bool { return ds.Capabilities().Has(FulltextSearch) }

// SupportsSorting reports whether the datasource honors a sort field.
func SupportsSorting(ds Capable) bool { return ds.Capabilities().Has(Sorting) }

// Check verifies q only asks for features ds declares. The name is used in the
// returned error and may be empty.
func Check(name string, ds Capable, q *Query) error {
	if q == nil {
		return nil
	}
	caps := ds.Capabilities()
	switch {
	case q.IsPaginated() && !caps.Has(Pagination):
		return errors.NewUnsupportedError(name, Pagination.String())
	case q.IsSearch() && !caps.Has(FulltextSearch):
		return errors.NewUnsupportedError(name, FulltextSearch.String())
	case q.IsSorted() && !caps.Has(Sorting):
		return errors.NewUnsupportedError(name, Sorting.String())
	}
	return nil
}
