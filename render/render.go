/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package render

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/suparena/dashboard/action"
	"github.com/suparena/dashboard/datasource"
	"github.com/suparena/dashboard/errors"
	"github.com/suparena/dashboard/page"
	"github.com/suparena/dashboard/property"
)

// Sources resolves a datasource by name.
type Sources interface {
	Source(name string) (datasource.Datasource[any], error)
}

// Observer receives fetch measurements. The metrics package implements it.
type Observer interface {
	ObserveFetch(page string, elapsed time.Duration, err error)
	ObserveItems(page string, n int)
}

// Renderer turns a page and a request into a Response.
type Renderer struct {
	Sources Sources
	// Actions is optional; rows carry no actions without it.
	Actions *action.Registry
	// Observer is optional.
	Observer Observer
}

// New creates a Renderer without actions or observer.
func New(sources Sources) *Renderer {
	return &Renderer{Sources: sources}
}

// Query builds the datasource query for a request. Parts of the request the page
// does not enable are dropped; sorts and filters outside the page configuration
// are rejected.
func Query(p *page.Page, req *Request) (*datasource.Query, error) {
	q := &datasource.Query{}

	if p.Pager {
		q.Limit = p.Limit
		if req.Limit > 0 {
			q.Limit = req.Limit
		}
		if p.MaxItems > 0 {
			q.Limit = min(q.Limit, p.MaxItems)
		}
		q.Page = max(req.Page, 1)
	}
	if p.Search {
		q.Search = req.Search
	}

	switch {
	case req.Sort != "":
		if !p.Sortable(req.Sort) {
			return nil, errors.NewValidationError(ParamSort, fmt.Sprintf("%q is not sortable", req.Sort))
		}
		q.SortField = req.Sort
		q.SortOrder = datasource.ParseSortOrder(string(req.Order))
	case p.DefaultSort != "":
		q.SortField = p.DefaultSort
		q.SortOrder = datasource.ParseSortOrder(string(p.DefaultOrder))
	}

	for field, values := range req.Filters {
		f, ok := p.Filter(field)
		if !ok {
			return nil, errors.NewValidationError(filterPrefix+field+filterSuffix, "unknown filter")
		}
		if len(values) > 1 && !f.Multiple {
			return nil, errors.NewValidationError(filterPrefix+field+filterSuffix, "accepts a single value")
		}
		for _, value := range values {
			if !f.Allows(value) {
				return nil, errors.NewValidationError(filterPrefix+field+filterSuffix, fmt.Sprintf("%q is not a valid choice", value))
			}
		}
		if q.Filters == nil {
			q.Filters = make(map[string][]string)
		}
		q.Filters[field] = slices.Clone(values)
	}
	return q, nil
}

// Render fetches the items of p for req and assembles every block of the response.
func (r *Renderer) Render(ctx context.Context, p *page.Page, req *Request) (*Response, error) {
	if req == nil {
		req = &Request{}
	}
	q, err := Query(p, req)
	if err != nil {
		return nil, err
	}

	src, err := r.Sources.Source(p.Datasource)
	if err != nil {
		return nil, err
	}
	if err := datasource.Check(p.Datasource, src, q); err != nil {
		return nil, err
	}

	list, count, err := r.fetch(ctx, p, src, q)
	if err != nil {
		return nil, fmt.Errorf("render page %q: %w", p.Name, err)
	}
	list.Mode = displayMode(p, req)
	if r.Actions != nil {
		list.Actions = r.Actions.Actions(ctx, action.Target{Page: p.Name})
	}

	return &Response{
		Query: q,
		Blocks: Blocks{
			Filters:     filterBlocks(p, req),
			DisplayMode: displayModeBlock(p, req, list.Mode),
			SortLinks:   sortLinks(p, req, q),
			ItemList:    list,
			Pager:       pager(req, q, len(list.Rows), count),
		},
	}, nil
}

type total struct {
	n  int64
	ok bool
}

func (r *Renderer) fetch(ctx context.Context, p *page.Page, src datasource.Datasource[any], q *datasource.Query) (ItemList, total, error) {
	start := time.Now()
	list, count, err := r.collect(ctx, p, src, q)
	if r.Observer != nil {
		r.Observer.ObserveFetch(p.Name, time.Since(start), err)
		if err == nil {
			r.Observer.ObserveItems(p.Name, len(list.Rows))
		}
	}
	return list, count, err
}

func (r *Renderer) collect(ctx context.Context, p *page.Page, src datasource.Datasource[any], q *datasource.Query) (ItemList, total, error) {
	list := ItemList{Columns: columns(p), Rows: []Row{}}

	res, err := src.GetItems(ctx, q)
	if err != nil {
		return list, total{}, err
	}
	defer res.Close()

	var count total
	count.n, count.ok = res.Count()

	for item, err := range res.All(ctx) {
		if err != nil {
			return list, total{}, err
		}
		if !q.IsPaginated() && p.MaxItems > 0 && len(list.Rows) == p.MaxItems {
			list.Truncated = true
			break
		}
		list.Rows = append(list.Rows, r.row(ctx, p, item))
	}
	return list, count, nil
}

func (r *Renderer) row(ctx context.Context, p *page.Page, item any) Row {
	row := Row{Values: make(map[string]string, len(p.Columns))}
	for _, col := range p.Columns {
		if col.Hidden() {
			continue
		}
		v, _ := property.Value(item, col.Name)
		row.Values[col.Name] = property.Format(v, col)
	}
	if r.Actions != nil {
		row.Actions = r.Actions.Actions(ctx, action.Target{Page: p.Name, Item: item})
	}
	return row
}

func columns(p *page.Page) []Column {
	cols := make([]Column, 0, len(p.Columns))
	for _, col := range p.Columns {
		if col.Hidden() {
			continue
		}
		cols = append(cols, Column{Name: col.Name, Label: col.DisplayLabel()})
	}
	return cols
}

func displayMode(p *page.Page, req *Request) string {
	if req.Display != "" && p.HasDisplayMode(req.Display) {
		return req.Display
	}
	if len(p.DisplayModes) == 0 {
		return page.DisplayTable
	}
	return p.DisplayModes[0]
}

func displayModeBlock(p *page.Page, req *Request, active string) DisplayMode {
	block := DisplayMode{Active: active, Modes: []DisplayModeLink{}}
	for _, mode := range p.DisplayModes {
		block.Modes = append(block.Modes, DisplayModeLink{
			Mode:   mode,
			Active: mode == active,
			URL:    req.link(func(c *Request) { c.Display = mode }),
		})
	}
	return block
}

func sortLinks(p *page.Page, req *Request, q *datasource.Query) []SortLink {
	links := make([]SortLink, 0, len(p.Sorts))
	for _, s := range p.Sorts {
		active := q.SortField == s.Field
		order := datasource.SortAsc
		if active {
			order = q.SortOrder.Toggle()
		}
		label := s.Label
		if label == "" {
			label = property.Property{Name: s.Field}.DisplayLabel()
		}
		links = append(links, SortLink{
			Field:  s.Field,
			Label:  label,
			Active: active,
			Order:  order,
			URL: req.link(func(c *Request) {
				c.Sort, c.Order, c.Page = s.Field, order, 0
			}),
		})
	}
	return links
}

func filterBlocks(p *page.Page, req *Request) []FilterBlock {
	blocks := make([]FilterBlock, 0, len(p.Filters))
	for _, f := range p.Filters {
		selected := req.Filters[f.Field]
		label := f.Label
		if label == "" {
			label = property.Property{Name: f.Field}.DisplayLabel()
		}
		block := FilterBlock{
			Field:    f.Field,
			Label:    label,
			Multiple: f.Multiple,
			Selected: append([]string{}, selected...),
			Choices:  make([]FilterChoice, 0, len(f.Choices)),
			ClearURL: req.link(func(c *Request) {
				delete(c.Filters, f.Field)
				c.Page = 0
			}),
		}
		for _, choice := range f.Choices {
			isSelected := slices.Contains(selected, choice.Value)
			block.Choices = append(block.Choices, FilterChoice{
				Value:    choice.Value,
				Label:    choice.Label,
				Selected: isSelected,
				URL: req.link(func(c *Request) {
					c.Filters[f.Field] = toggle(c.Filters[f.Field], choice.Value, f.Multiple)
					c.Page = 0
				}),
			})
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// toggle adds value to selected, or removes it when present. Single-value filters
// replace the selection.
func toggle(selected []string, value string, multiple bool) []string {
	if i := slices.Index(selected, value); i >= 0 {
		return slices.Delete(selected, i, i+1)
	}
	if !multiple {
		return []string{value}
	}
	return append(selected, value)
}

func pager(req *Request, q *datasource.Query, rows int, count total) *Pager {
	if !q.IsPaginated() {
		return nil
	}

	current := q.CurrentPage()
	pg := &Pager{
		Page:    current,
		Limit:   q.Limit,
		HasPrev: current > 1,
	}
	if count.ok {
		pages := (count.n + int64(q.Limit) - 1) / int64(q.Limit)
		pg.Total = &count.n
		pg.TotalPages = &pages
		pg.HasNext = int64(current) < pages
	} else {
		// Without a total a full page is the only hint that more may follow.
		pg.HasNext = rows == q.Limit
	}

	if pg.HasNext {
		pg.NextURL = req.link(func(c *Request) { c.Page = current + 1 })
	}
	if pg.HasPrev {
		pg.PrevURL = req.link(func(c *Request) { c.Page = current - 1 })
	}
	return pg
}
