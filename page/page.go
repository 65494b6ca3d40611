/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package page

import (
	"fmt"
	"slices"

	"github.com/suparena/dashboard/datasource"
	"github.com/suparena/dashboard/errors"
	"github.com/suparena/dashboard/property"
)

// Display modes understood by the renderer.
const (
	DisplayTable = "table"
	DisplayList  = "list"
	DisplayGrid  = "grid"
)

// Page is a named view over a datasource.
type Page struct {
	Name       string `yaml:"name"`
	Title      string `yaml:"title"`
	Datasource string `yaml:"datasource"`

	// Limit is the page size used when Pager is on.
	Limit int  `yaml:"limit"`
	Pager bool `yaml:"pager"`
	// Search enables the full-text search box.
	Search bool `yaml:"search"`

	Columns      []property.Property `yaml:"columns"`
	DisplayModes []string            `yaml:"display_modes"`
	Sorts        []Sort              `yaml:"sorts"`
	DefaultSort  string              `yaml:"default_sort"`
	DefaultOrder datasource.SortOrder `yaml:"default_order"`
	Filters      []Filter            `yaml:"filters"`

	// MaxItems caps the rows rendered for a page without a pager.
	MaxItems int `yaml:"max_items"`
}

// Sort is a column users may order by.
type Sort struct {
	Field string `yaml:"field"`
	Label string `yaml:"label"`
}

// Filter restricts a field to a set of choices.
type Filter struct {
	Field    string   `yaml:"field"`
	Label    string   `yaml:"label"`
	Multiple bool     `yaml:"multiple"`
	Choices  []Choice `yaml:"choices"`
}

// Choice is one selectable filter value.
type Choice struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

const (
	defaultLimit    = 20
	defaultMaxItems = 1000
)

// ApplyDefaults fills zero values. Parse and Registry.Register call it.
func (p *Page) ApplyDefaults() {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.MaxItems <= 0 {
		p.MaxItems = defaultMaxItems
	}
	if len(p.DisplayModes) == 0 {
		p.DisplayModes = []string{DisplayTable}
	}
	if p.DefaultOrder != "" {
		p.DefaultOrder = datasource.ParseSortOrder(string(p.DefaultOrder))
	}
	if p.Title == "" {
		p.Title = p.Name
	}
}

// Sortable reports whether field is one of the configured sorts.
func (p *Page) Sortable(field string) bool {
	return slices.ContainsFunc(p.Sorts, func(s Sort) bool { return s.Field == field })
}

// Filter returns the filter configured for field.
func (p *Page) Filter(field string) (Filter, bool) {
	for _, f := range p.Filters {
		if f.Field == field {
			return f, true
		}
	}
	return Filter{}, false
}

// HasDisplayMode reports whether mode is available on the page.
func (p *Page) HasDisplayMode(mode string) bool {
	return slices.Contains(p.DisplayModes, mode)
}

// Allows reports whether value is one of the filter's choices. A filter without
// choices accepts any value.
func (f Filter) Allows(value string) bool {
	if len(f.Choices) == 0 {
		return true
	}
	return slices.ContainsFunc(f.Choices, func(c Choice) bool { return c.Value == value })
}

// check validates the page on its own, without knowledge of the datasource.
func (p *Page) check() error {
	if p.Name == "" {
		return errors.NewValidationError("name", "page name is required")
	}
	if p.Datasource == "" {
		return errors.NewValidationError("datasource", fmt.Sprintf("page %q has no datasource", p.Name))
	}
	if len(p.Columns) == 0 {
		return errors.NewValidationError("columns", fmt.Sprintf("page %q has no columns", p.Name))
	}
	for _, mode := range p.DisplayModes {
		switch mode {
		case DisplayTable, DisplayList, DisplayGrid:
		default:
			return errors.NewValidationError("display_modes", fmt.Sprintf("page %q: unknown display mode %q", p.Name, mode))
		}
	}
	if p.DefaultSort != "" && !p.Sortable(p.DefaultSort) {
		return errors.NewValidationError("default_sort", fmt.Sprintf("page %q: %q is not a configured sort", p.Name, p.DefaultSort))
	}
	for _, f := range p.Filters {
		if f.Field == "" {
			return errors.NewValidationError("filters", fmt.Sprintf("page %q has a filter without a field", p.Name))
		}
	}
	return nil
}

// Validate checks the page against the capabilities of its datasource. A pager
// needs Pagination, a search box FulltextSearch and sorts Sorting. Violations are
// configuration errors reported as UnsupportedError.
func Validate(p *Page, caps datasource.Capability) error {
	if err := p.check(); err != nil {
		return err
	}
	if p.Pager && !caps.Has(datasource.Pagination) {
		return errors.NewUnsupportedError(p.Datasource, datasource.Pagination.String())
	}
	if p.Search && !caps.Has(datasource.FulltextSearch) {
		return errors.NewUnsupportedError(p.Datasource, datasource.FulltextSearch.String())
	}
	if len(p.Sorts) > 0 && !caps.Has(datasource.Sorting) {
		return errors.NewUnsupportedError(p.Datasource, datasource.Sorting.String())
	}
	return nil
}
