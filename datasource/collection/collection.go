/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package collection provides a Datasource over an in-memory slice
package collection

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/suparena/dashboard/datasource"
	"github.com/suparena/dashboard/property"
)

// Matcher reports whether item matches a full-text search term.
type Matcher[T any] func(item T, term string) bool

// Source serves items from memory. It supports every capability and always
// knows its count.
type Source[T any] struct {
	mu           sync.RWMutex
	items        []T
	searchFields []string
	matcher      Matcher[T]
}

// New creates a Source over a copy of items.
func New[T any](items []T) *Source[T] {
	return &Source[T]{items: slices.Clone(items)}
}

// WithSearchFields sets the fields scanned by full-text search. Without fields or
// a matcher, every string-formatted field is scanned.
func (s *Source[T]) WithSearchFields(fields ...string) *Source[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchFields = slices.Clone(fields)
	return s
}

// WithMatcher replaces the default search with a custom matcher.
func (s *Source[T]) WithMatcher(m Matcher[T]) *Source[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matcher = m
	return s
}

// SetItems replaces the served items.
func (s *Source[T]) SetItems(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
}

// Append adds items to the end of the collection.
func (s *Source[T]) Append(items ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// Len returns the number of stored items.
func (s *Source[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Source[T]) Capabilities() datasource.Capability {
	return datasource.Streaming | datasource.Pagination | datasource.FulltextSearch | datasource.Sorting
}

// GetItems filters, searches and sorts a snapshot of the collection, then returns
// the requested page. The count is the number of matches before paging.
func (s *Source[T]) GetItems(ctx context.Context, q *datasource.Query) (*datasource.Result[T], error) {
	if q == nil {
		q = &datasource.Query{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if s.matchesFilters(item, q) && s.matchesSearch(item, q) {
			matched = append(matched, item)
		}
	}
	s.mu.RUnlock()

	if q.IsSorted() {
		sortItems(matched, q.SortField, q.SortOrder)
	}

	total := int64(len(matched))
	if q.IsPaginated() {
		start := min(q.Offset(), len(matched))
		end := min(start+q.Limit, len(matched))
		matched = matched[start:end]
	}
	return datasource.NewResult(datasource.FromSlice(matched), total), nil
}

func (s *Source[T]) matchesFilters(item T, q *datasource.Query) bool {
	for field := range q.Filters {
		v, _ := property.Value(item, field)
		if !q.Matches(field, property.Format(v, property.Property{Name: field})) {
			return false
		}
	}
	return true
}

// matchesSearch must be called with s.mu held.
func (s *Source[T]) matchesSearch(item T, q *datasource.Query) bool {
	if !q.IsSearch() {
		return true
	}
	term := strings.TrimSpace(q.Search)
	if s.matcher != nil {
		return s.matcher(item, term)
	}

	fields := s.searchFields
	if len(fields) == 0 {
		fields = property.Names(item)
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		v, ok := property.Value(item, f)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(property.Format(v, property.Property{Name: f})), term) {
			return true
		}
	}
	return false
}

func sortItems[T any](items []T, field string, order datasource.SortOrder) {
	slices.SortStableFunc(items, func(a, b T) int {
		av, _ := property.Value(a, field)
		bv, _ := property.Value(b, field)
		c := compareValues(av, bv)
		if order == datasource.SortDesc {
			return -c
		}
		return c
	})
}

// compareValues orders numbers numerically, times chronologically and anything
// else by its formatted text. Missing values sort first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return cmp.Compare(af, bf)
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
