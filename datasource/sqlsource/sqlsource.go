/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suparena/dashboard/datasource"
	"github.com/suparena/dashboard/errors"
)

// Options configures which table is listed and which columns user input may touch.
type Options struct {
	// Table is required when T is a map type; otherwise the model of T is used.
	Table string
	// SearchColumns are matched with LIKE '%term%' and combined with OR.
	SearchColumns []string
	// FilterColumns may appear in Query.Filters.
	FilterColumns []string
	// SortColumns may be used as Query.SortField.
	SortColumns []string
	// DefaultOrder is applied when no sort is requested, e.g. "id DESC".
	DefaultOrder string
	// SkipCount disables the COUNT(*) query for very large tables.
	SkipCount bool
}

// Source lists rows of a table through gorm. Search and sorting are only declared
// when Options names columns for them.
type Source[T any] struct {
	db   *gorm.DB
	opts Options
}

// Open connects to MySQL with the given DSN.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// New creates a Source over db.
func New[T any](db *gorm.DB, opts Options) (*Source[T], error) {
	if db == nil {
		return nil, errors.NewValidationError("db", "sql source requires a database handle")
	}
	var zero T
	if opts.Table == "" && isMap(zero) {
		return nil, errors.NewValidationError("table", "map items require a table name")
	}
	return &Source[T]{db: db, opts: opts}, nil
}

func isMap(v any) bool {
	switch v.(type) {
	case map[string]any, map[string]string:
		return true
	}
	return false
}

func (s *Source[T]) Capabilities() datasource.Capability {
	caps := datasource.Streaming | datasource.Pagination
	if len(s.opts.SearchColumns) > 0 {
		caps |= datasource.FulltextSearch
	}
	if len(s.opts.SortColumns) > 0 {
		caps |= datasource.Sorting
	}
	return caps
}

func (s *Source[T]) name() string {
	if s.opts.Table != "" {
		return s.opts.Table
	}
	var zero T
	return fmt.Sprintf("%T", zero)
}

// GetItems counts the matching rows (unless SkipCount) and streams the requested
// page from a database cursor. The count covers every page.
func (s *Source[T]) GetItems(ctx context.Context, q *datasource.Query) (*datasource.Result[T], error) {
	if q == nil {
		q = &datasource.Query{}
	}
	if err := datasource.Check(s.name(), s, q); err != nil {
		return nil, err
	}

	base, err := s.relation(ctx, q)
	if err != nil {
		return nil, err
	}

	var total int64
	if !s.opts.SkipCount {
		if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return nil, fmt.Errorf("count rows: %w", err)
		}
	}

	tx := base.Session(&gorm.Session{})
	switch {
	case q.IsSorted():
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: q.SortField},
			Desc:   q.SortOrder == datasource.SortDesc,
		})
	case s.opts.DefaultOrder != "":
		tx = tx.Order(s.opts.DefaultOrder)
	}
	if q.IsPaginated() {
		tx = tx.Limit(q.Limit).Offset(q.Offset())
	}

	rows, err := tx.Rows()
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}

	it := &rowIterator[T]{db: s.db.WithContext(ctx), rows: rows}
	if s.opts.SkipCount {
		return datasource.NewUncountedResult[T](it), nil
	}
	return datasource.NewResult[T](it, total), nil
}

// relation builds the filtered and searched statement shared by count and fetch.
func (s *Source[T]) relation(ctx context.Context, q *datasource.Query) (*gorm.DB, error) {
	tx := s.db.WithContext(ctx)
	if s.opts.Table != "" {
		tx = tx.Table(s.opts.Table)
	} else {
		tx = tx.Model(new(T))
	}

	if q.IsSorted() && !slices.Contains(s.opts.SortColumns, q.SortField) {
		return nil, errors.NewValidationError("sort", fmt.Sprintf("column %q is not sortable", q.SortField))
	}

	for field, values := range q.Filters {
		if len(values) == 0 {
			continue
		}
		if !slices.Contains(s.opts.FilterColumns, field) {
			return nil, errors.NewValidationError("filters", fmt.Sprintf("column %q is not filterable", field))
		}
		tx = tx.Where(clause.IN{Column: clause.Column{Name: field}, Values: toAny(values)})
	}

	if q.IsSearch() {
		pattern := "%" + escapeLike(strings.TrimSpace(q.Search)) + "%"
		exprs := make([]clause.Expression, 0, len(s.opts.SearchColumns))
		for _, col := range s.opts.SearchColumns {
			exprs = append(exprs, clause.Expr{
				SQL:  "? LIKE ? ESCAPE '!'",
				Vars: []any{clause.Column{Name: col}, pattern},
			})
		}
		tx = tx.Where(clause.Or(exprs...))
	}
	return tx, nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// '!' needs no quoting in either MySQL or sqlite string literals.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// rowIterator scans one row per Next from an open cursor.
type rowIterator[T any] struct {
	db     *gorm.DB
	rows   *sql.Rows
	closed bool
}

func (r *rowIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var item T
	if r.closed {
		return item, false, nil
	}
	if err := ctx.Err(); err != nil {
		r.Close()
		return item, false, err
	}
	if !r.rows.Next() {
		err := r.rows.Err()
		r.Close()
		if err != nil {
			return item, false, fmt.Errorf("iterate rows: %w", err)
		}
		return item, false, nil
	}

	if isMap(item) {
		m := map[string]any{}
		if err := r.db.ScanRows(r.rows, &m); err != nil {
			r.Close()
			return item, false, fmt.Errorf("scan row: %w", err)
		}
		converted, err := convertMap[T](m)
		if err != nil {
			r.Close()
			return item, false, err
		}
		return converted, true, nil
	}

	if err := r.db.ScanRows(r.rows, &item); err != nil {
		r.Close()
		return item, false, fmt.Errorf("scan row: %w", err)
	}
	return item, true, nil
}

func convertMap[T any](m map[string]any) (T, error) {
	var zero T
	switch any(zero).(type) {
	case map[string]any:
		return any(m).(T), nil
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, v := range m {
			switch tv := v.(type) {
			case nil:
				out[k] = ""
			case []byte:
				out[k] = string(tv)
			default:
				out[k] = fmt.Sprint(tv)
			}
		}
		return any(out).(T), nil
	}
	return zero, fmt.Errorf("unsupported map item type %T", zero)
}

// Close releases the database cursor. It is safe to call more than once.
func (r *rowIterator[T]) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.rows.Close()
}
