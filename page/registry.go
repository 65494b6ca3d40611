/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package page

import (
	"sort"
	"sync"

	"github.com/suparena/dashboard/errors"
)

// Registry holds pages by name.
type Registry struct {
	mu    sync.RWMutex
	pages map[string]*Page
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]*Page)}
}

// Register adds a page after applying defaults. Names must be unique.
func (r *Registry) Register(p *Page) error {
	if p == nil || p.Name == "" {
		return errors.NewValidationError("name", "page name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[p.Name]; exists {
		return errors.NewAlreadyExistsError("page", p.Name)
	}
	p.ApplyDefaults()
	r.pages[p.Name] = p
	return nil
}

// Get returns the named page or a NotFoundError.
func (r *Registry) Get(name string) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pages[name]
	if !ok {
		return nil, errors.NewNotFoundError("page", name)
	}
	return p, nil
}

// List returns all pages ordered by name.
func (r *Registry) List() []*Page {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pages := make([]*Page, 0, len(r.pages))
	for _, p := range r.pages {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Name < pages[j].Name })
	return pages
}
