/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package render

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/suparena/dashboard/datasource"
	"github.com/suparena/dashboard/errors"
	"github.com/suparena/dashboard/page"
	"github.com/suparena/dashboard/property"
)

// Export streams every item matching req as CSV, one row per item with a header
// of column labels. Pagination and MaxItems do not apply; the datasource must
// support streaming. It returns the number of rows written.
func (r *Renderer) Export(ctx context.Context, w io.Writer, p *page.Page, req *Request) (int64, error) {
	if req == nil {
		req = &Request{}
	}
	q, err := Query(p, req)
	if err != nil {
		return 0, err
	}
	q.Limit, q.Page = 0, 0

	src, err := r.Sources.Source(p.Datasource)
	if err != nil {
		return 0, err
	}
	if !datasource.SupportsStreaming(src) {
		return 0, errors.NewUnsupportedError(p.Datasource, datasource.Streaming.String())
	}
	if err := datasource.Check(p.Datasource, src, q); err != nil {
		return 0, err
	}

	start := time.Now()
	n, err := r.export(ctx, w, p, src, q)
	if r.Observer != nil {
		r.Observer.ObserveFetch(p.Name, time.Since(start), err)
		r.Observer.ObserveItems(p.Name, int(n))
	}
	if err != nil {
		return n, fmt.Errorf("export page %q: %w", p.Name, err)
	}
	return n, nil
}

func (r *Renderer) export(ctx context.Context, w io.Writer, p *page.Page, src datasource.Datasource[any], q *datasource.Query) (int64, error) {
	res, err := src.GetItems(ctx, q)
	if err != nil {
		return 0, err
	}
	defer res.Close()

	cols := make([]property.Property, 0, len(p.Columns))
	header := make([]string, 0, len(p.Columns))
	for _, col := range p.Columns {
		if col.Hidden() {
			continue
		}
		cols = append(cols, col)
		header = append(header, col.DisplayLabel())
	}

	out := csv.NewWriter(w)
	if err := out.Write(header); err != nil {
		return 0, err
	}

	var n int64
	record := make([]string, len(cols))
	for item, err := range res.All(ctx) {
		if err != nil {
			return n, err
		}
		for i, col := range cols {
			v, _ := property.Value(item, col.Name)
			record[i] = property.Format(v, col)
		}
		if err := out.Write(record); err != nil {
			return n, err
		}
		n++
	}

	out.Flush()
	return n, out.Error()
}
