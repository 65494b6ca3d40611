/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package action

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/suparena/dashboard/property"
)

// Action is a link or operation offered for an item or a page.
type Action struct {
	Name     string `json:"name" yaml:"name"`
	Title    string `json:"title" yaml:"title"`
	URL      string `json:"url" yaml:"url"`
	Icon     string `json:"icon,omitempty" yaml:"icon"`
	Group    string `json:"group,omitempty" yaml:"group"`
	Primary  bool   `json:"primary,omitempty" yaml:"primary"`
	Weight   int    `json:"-" yaml:"weight"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled"`
}

// Target identifies what actions are requested for. Item is nil for page-level actions.
type Target struct {
	Page string
	Item any
}

// Provider contributes actions for the targets it supports.
type Provider interface {
	// Supports reports whether the provider has anything to say about target.
	Supports(target Target) bool
	// Actions returns the actions for target. Only called when Supports returned true.
	Actions(ctx context.Context, target Target) []Action
}

// Registry aggregates providers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends p to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Actions collects the actions of every provider supporting target, ordered by
// weight then name.
func (r *Registry) Actions(ctx context.Context, target Target) []Action {
	r.mu.RLock()
	providers := append([]Provider(nil), r.providers...)
	r.mu.RUnlock()

	var out []Action
	for _, p := range providers {
		if !p.Supports(target) {
			continue
		}
		out = append(out, p.Actions(ctx, target)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight < out[j].Weight
		}
		return out[i].Name < out[j].Name
	})
	return out
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// ExpandURL replaces {field} macros in template with the item's property values.
// Unknown fields expand to the empty string.
func ExpandURL(template string, item any) string {
	return macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
		key := strings.Trim(macro, "{}")
		v, ok := property.Value(item, key)
		if !ok {
			return ""
		}
		return property.Format(v, property.Property{Name: key})
	})
}

// Static is a Provider returning a fixed set of actions for a set of pages.
// URLs are expanded against the target item.
type Static struct {
	Pages      []string
	ItemLevel  bool
	Definition []Action
}

// Supports matches the page name, and whether an item is present against ItemLevel.
func (s Static) Supports(target Target) bool {
	if (target.Item != nil) != s.ItemLevel {
		return false
	}
	if len(s.Pages) == 0 {
		return true
	}
	for _, p := range s.Pages {
		if p == target.Page {
			return true
		}
	}
	return false
}

func (s Static) Actions(_ context.Context, target Target) []Action {
	out := make([]Action, 0, len(s.Definition))
	for _, a := range s.Definition {
		if target.Item != nil {
			a.URL = ExpandURL(a.URL, target.Item)
		}
		out = append(out, a)
	}
	return out
}
