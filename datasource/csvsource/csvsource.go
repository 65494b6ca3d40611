/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package csvsource

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/suparena/dashboard/datasource"
	"github.com/suparena/dashboard/errors"
)

// Row is one CSV record keyed by column name.
type Row map[string]string

// Options configures how a file is located and parsed.
type Options struct {
	// Path of the file inside Fs.
	Path string
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Delimiter defaults to ','.
	Delimiter rune
	// Comment, if set, marks lines to skip.
	Comment          rune
	LazyQuotes       bool
	TrimLeadingSpace bool
	// Encoding is an IANA or WHATWG charset name. Empty means UTF-8.
	// A leading byte order mark is always stripped.
	Encoding string
	// HasHeader means the first record names the columns.
	HasHeader bool
	// Columns names the columns, overriding the header row when both are present.
	// Unnamed columns are keyed by their zero-based index.
	Columns []string
	// CountPolicy decides whether a total is reported. Defaults to Never.
	CountPolicy CountPolicy
}

// Source streams the rows of a CSV file. Each GetItems call opens the file anew.
type Source struct {
	opts    Options
	enc     encoding.Encoding
	encName string
}

var _ datasource.Datasource[Row] = (*Source)(nil)

// New validates opts and returns a Source. The file is not opened until GetItems.
func New(opts Options) (*Source, error) {
	if opts.Path == "" {
		return nil, errors.NewValidationError("path", "csv source requires a file path")
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.CountPolicy == nil {
		opts.CountPolicy = Never()
	}

	enc, name, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	return &Source{opts: opts, enc: enc, encName: name}, nil
}

// lookupEncoding resolves name and returns its canonical form.
func lookupEncoding(name string) (encoding.Encoding, string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, "utf-8", nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, "", errors.NewValidationError("encoding", fmt.Sprintf("unknown encoding %q", name))
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(strings.TrimSpace(name))
	}
	return enc, canonical, nil
}

// Path returns the configured file path.
func (s *Source) Path() string {
	return s.opts.Path
}

// Capabilities declares streaming only: no pagination, no full-text search, no sorting.
func (s *Source) Capabilities() datasource.Capability {
	return datasource.Streaming
}

// GetItems opens a fresh reader over the file. Equality filters are applied while
// streaming; the count is reported only when there are no filters and the count
// policy accepts the file.
func (s *Source) GetItems(ctx context.Context, q *datasource.Query) (*datasource.Result[Row], error) {
	if q == nil {
		q = &datasource.Query{}
	}
	if err := datasource.Check(s.opts.Path, s, q); err != nil {
		return nil, err
	}

	f, err := s.openFile()
	if err != nil {
		return nil, err
	}

	if q.HasFilters() {
		r, err := s.newReader(f)
		if err != nil {
			return nil, err
		}
		items := datasource.Filter[Row](r, func(row Row) bool {
			for field := range q.Filters {
				if !q.Matches(field, row[field]) {
					return false
				}
			}
			return true
		})
		return datasource.NewUncountedResult(items), nil
	}

	stat, err := s.stat(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	// Counting and iteration share f so a replaced file cannot split them.
	n, ok, err := s.opts.CountPolicy.Count(ctx, stat, func(ctx context.Context) (int64, error) {
		return s.scan(ctx, f)
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("count rows of %q: %w", s.opts.Path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("rewind %q: %w", s.opts.Path, err)
	}
	r, err := s.newReader(f)
	if err != nil {
		return nil, err
	}
	if !ok {
		return datasource.NewUncountedResult[Row](r), nil
	}
	return datasource.NewResult[Row](r, n), nil
}

func (s *Source) stat(f afero.File) (FileStat, error) {
	info, err := f.Stat()
	if err != nil {
		return FileStat{}, fmt.Errorf("stat %q: %w", s.opts.Path, err)
	}
	return FileStat{
		Path:    s.opts.Path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Key: fmt.Sprintf("%s:%d:%d:%s:%t:%q:%q:%t:%t", s.opts.Path, info.Size(), info.ModTime().UnixNano(),
			s.encName, s.opts.HasHeader, s.opts.Delimiter, s.opts.Comment, s.opts.LazyQuotes, s.opts.TrimLeadingSpace),
	}, nil
}

func (s *Source) openFile() (afero.File, error) {
	f, err := s.opts.Fs.Open(s.opts.Path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("csv file", s.opts.Path)
		}
		return nil, fmt.Errorf("open %q: %w", s.opts.Path, err)
	}
	return f, nil
}

// newReader takes ownership of f and returns a reader positioned after the header
// row, if any. f is closed when this fails.
func (s *Source) newReader(f afero.File) (*reader, error) {
	cr := s.newCSVReader(f)
	r := &reader{file: f, csv: cr, path: s.opts.Path}

	var header []string
	if s.opts.HasHeader {
		var err error
		header, err = cr.Read()
		if err != nil && err != io.EOF {
			f.Close()
			return nil, fmt.Errorf("read header of %q: %w", s.opts.Path, err)
		}
	}
	r.names = columnNames(s.opts.Columns, header)
	return r, nil
}

func (s *Source) newCSVReader(f io.Reader) *csv.Reader {
	decoded := transform.NewReader(f, unicode.BOMOverride(s.enc.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.Comma = s.opts.Delimiter
	cr.Comment = s.opts.Comment
	cr.LazyQuotes = s.opts.LazyQuotes
	cr.TrimLeadingSpace = s.opts.TrimLeadingSpace
	cr.FieldsPerRecord = -1
	return cr
}

// scan counts the data records of f from its start with the parser settings used
// for iteration. It leaves f open and at an unspecified offset.
func (s *Source) scan(ctx context.Context, f afero.File) (int64, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind %q: %w", s.opts.Path, err)
	}
	cr := s.newCSVReader(f)
	if s.opts.HasHeader {
		if _, err := cr.Read(); err == io.EOF {
			return 0, nil
		} else if err != nil {
			return 0, fmt.Errorf("scan header of %q: %w", s.opts.Path, err)
		}
	}

	var n int64
	for {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		_, err := cr.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return 0, fmt.Errorf("scan %q: %w", s.opts.Path, err)
		}
		n++
	}
}

func columnNames(columns, header []string) []string {
	n := len(header)
	if len(columns) > n {
		n = len(columns)
	}
	names := make([]string, n)
	for i := range names {
		switch {
		case i < len(columns) && columns[i] != "":
			names[i] = columns[i]
		case i < len(header) && header[i] != "":
			names[i] = header[i]
		default:
			names[i] = strconv.Itoa(i)
		}
	}
	return names
}

// reader owns one open file handle for the duration of an iteration.
type reader struct {
	file   afero.File
	csv    *csv.Reader
	names  []string
	path   string
	closed bool
}

func (r *reader) Next(ctx context.Context) (Row, bool, error) {
	if r.closed {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		r.Close()
		return nil, false, err
	}

	rec, err := r.csv.Read()
	if err == io.EOF {
		return nil, false, r.Close()
	}
	if err != nil {
		r.Close()
		return nil, false, fmt.Errorf("read %q: %w", r.path, err)
	}
	row := make(Row, len(rec))
	for i, v := range rec {
		if i < len(r.names) {
			row[r.names[i]] = v
		} else {
			row[strconv.Itoa(i)] = v
		}
	}
	return row, true, nil
}

// Close releases the file handle. It is safe to call more than once.
func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}
