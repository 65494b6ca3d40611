/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dashboard

import (
	"sort"
	"sync"

	"github.com/suparena/dashboard/datasource"
	"github.com/suparena/dashboard/errors"
)

// Registry is a thread-safe set of named datasources. Sources are stored type-erased
// so that pages over different item types can share one registry.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]datasource.Datasource[any]
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]datasource.Datasource[any]),
	}
}

// RegisterSource stores ds under name.
func (r *Registry) RegisterSource(name string, ds datasource.Datasource[any]) error {
	if name == "" {
		return errors.NewValidationError("name", "datasource name is required")
	}
	if ds == nil {
		return errors.NewValidationError("datasource", "datasource is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return errors.NewAlreadyExistsError("datasource", name)
	}
	r.sources[name] = ds
	return nil
}

// Source retrieves the datasource registered under name.
func (r *Registry) Source(name string) (datasource.Datasource[any], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, exists := r.sources[name]
	if !exists {
		return nil, errors.NewNotFoundError("datasource", name)
	}
	return ds, nil
}

// RemoveSource deletes a datasource by name
func (r *Registry) RemoveSource(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; !exists {
		return errors.NewNotFoundError("datasource", name)
	}
	delete(r.sources, name)
	return nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register is a convenience function to register a typed datasource
func Register[T any](r *Registry, name string, ds datasource.Datasource[T]) error {
	if ds == nil {
		return errors.NewValidationError("datasource", "datasource is nil")
	}
	return r.RegisterSource(name, datasource.Erase(ds))
}
