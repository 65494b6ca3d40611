/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datasource

import "context"

// Erase adapts a typed datasource to Datasource[any] for item-type agnostic callers
// such as the rendering layer.
func Erase[T any](ds Datasource[T]) Datasource[any] {
	if same, ok := any(ds).(Datasource[any]); ok {
		return same
	}
	return erased[T]{ds: ds}
}

type erased[T any] struct {
	ds Datasource[T]
}

func (e erased[T]) Capabilities() Capability {
	return e.ds.Capabilities()
}

func (e erased[T]) GetItems(ctx context.Context, q *Query) (*Result[any], error) {
	res, err := e.ds.GetItems(ctx, q)
	if err != nil {
		return nil, err
	}
	items := erasedIterator[T]{src: res.Items()}
	if n, ok := res.Count(); ok {
		return NewResult[any](items, n), nil
	}
	return NewUncountedResult[any](items), nil
}

type erasedIterator[T any] struct {
	src Iterator[T]
}

func (e erasedIterator[T]) Next(ctx context.Context) (any, bool, error) {
	item, ok, err := e.src.Next(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	return item, true, nil
}

func (e erasedIterator[T]) Close() error {
	return e.src.Close()
}
