/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datasource

import (
	"context"
	"iter"
)

// Iterator provides pull-based sequential access to items.
// Close must be called when done to release resources; it is safe to call twice.
type Iterator[T any] interface {
	// Next returns the next item. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Result pairs a lazy item sequence with an optional total count.
type Result[T any] struct {
	items Iterator[T]
	count *int64
}

// NewResult returns a Result whose total count is known to be n.
func NewResult[T any](items Iterator[T], n int64) *Result[T] {
	return &Result[T]{items: items, count: &n}
}

// NewUncountedResult returns a Result whose total count is unknown.
func NewUncountedResult[T any](items Iterator[T]) *Result[T] {
	return &Result[T]{items: items}
}

// Count returns the total number of matching items and whether it is known.
// For a query without pagination, iterating yields exactly that many items; for a
// paginated query it is the total across all pages.
func (r *Result[T]) Count() (int64, bool) {
	if r.count == nil {
		return 0, false
	}
	return *r.count, true
}

// Items returns the underlying iterator. The caller owns it and must close it.
func (r *Result[T]) Items() Iterator[T] {
	return r.items
}

// Close releases the underlying iterator.
func (r *Result[T]) Close() error {
	return r.items.Close()
}

// All ranges over the items. The iterator is closed when the loop ends, whether
// by exhaustion, error or break. An error is yielded once, as the final element.
func (r *Result[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer r.items.Close()
		for {
			item, ok, err := r.items.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Collect drains it into a slice and closes it.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	defer it.Close()
	var out []T
	for {
		item, ok, err := it.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, item)
	}
}

type sliceIterator[T any] struct {
	items []T
	pos   int
}

// FromSlice returns an iterator over items.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIterator[T]{items: items}
}

func (s *sliceIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if s.pos >= len(s.items) {
		return zero, false, nil
	}
	item := s.items[s.pos]
	s.pos++
	return item, true, nil
}

func (s *sliceIterator[T]) Close() error {
	s.pos = len(s.items)
	return nil
}

type filterIterator[T any] struct {
	src  Iterator[T]
	keep func(T) bool
}

// Filter returns an iterator yielding the items of src for which keep returns true.
// Closing it closes src.
func Filter[T any](src Iterator[T], keep func(T) bool) Iterator[T] {
	return &filterIterator[T]{src: src, keep: keep}
}

func (f *filterIterator[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		item, ok, err := f.src.Next(ctx)
		if err != nil || !ok {
			return item, ok, err
		}
		if f.keep(item) {
			return item, true, nil
		}
	}
}

func (f *filterIterator[T]) Close() error {
	return f.src.Close()
}
