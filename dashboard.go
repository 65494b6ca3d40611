/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dashboard

import (
	"context"
	"io"

	"github.com/suparena/dashboard/action"
	"github.com/suparena/dashboard/page"
	"github.com/suparena/dashboard/render"
)

// Dashboard ties datasources, pages and action providers together.
type Dashboard struct {
	Sources  *Registry
	Pages    *page.Registry
	Actions  *action.Registry
	Renderer *render.Renderer
}

// New creates an empty Dashboard. Observer may be nil.
func New(observer render.Observer) *Dashboard {
	d := &Dashboard{
		Sources: NewRegistry(),
		Pages:   page.NewRegistry(),
		Actions: action.NewRegistry(),
	}
	d.Renderer = &render.Renderer{
		Sources:  d.Sources,
		Actions:  d.Actions,
		Observer: observer,
	}
	return d
}

// AddPage registers p after validating it against its datasource, which must
// already be registered.
func (d *Dashboard) AddPage(p *page.Page) error {
	p.ApplyDefaults()
	ds, err := d.Sources.Source(p.Datasource)
	if err != nil {
		return err
	}
	if err := page.Validate(p, ds.Capabilities()); err != nil {
		return err
	}
	return d.Pages.Register(p)
}

// Render renders the named page. Unknown pages give a NotFoundError.
func (d *Dashboard) Render(ctx context.Context, name string, req *render.Request) (*render.Response, error) {
	p, err := d.Pages.Get(name)
	if err != nil {
		return nil, err
	}
	return d.Renderer.Render(ctx, p, req)
}

// Export writes the named page as CSV to w.
func (d *Dashboard) Export(ctx context.Context, w io.Writer, name string, req *render.Request) (int64, error) {
	p, err := d.Pages.Get(name)
	if err != nil {
		return 0, err
	}
	return d.Renderer.Export(ctx, w, p, req)
}
