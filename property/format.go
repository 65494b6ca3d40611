/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package property

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-openapi/strfmt"
)

// Format renders value as display text according to p.Options.
//
// Recognized options:
//
//	format            "date-time" or "date": parse strings as RFC 3339 timestamps/dates
//	time_format       Go layout used for time values (default time.RFC3339)
//	bool_value_true   text for true (default "yes")
//	bool_value_false  text for false (default "no")
//	list_separator    separator for slices (default ", ")
//	string_maxlength  truncate longer strings (runes)
//	string_ellipsis   append "..." when truncated (default true)
func Format(value any, p Property) string {
	opts := p.Options
	var s string

	switch v := value.(type) {
	case nil:
		return ""
	case string:
		s = formatString(v, opts)
	case []byte:
		s = formatString(string(v), opts)
	case bool:
		if v {
			s = opts.String("bool_value_true", "yes")
		} else {
			s = opts.String("bool_value_false", "no")
		}
	case time.Time:
		s = v.Format(opts.String("time_format", time.RFC3339))
	case *time.Time:
		if v == nil {
			return ""
		}
		s = v.Format(opts.String("time_format", time.RFC3339))
	case strfmt.DateTime:
		s = time.Time(v).Format(opts.String("time_format", time.RFC3339))
	case *strfmt.DateTime:
		if v == nil {
			return ""
		}
		s = time.Time(*v).Format(opts.String("time_format", time.RFC3339))
	case strfmt.Date:
		s = time.Time(v).Format(opts.String("time_format", strfmt.RFC3339FullDate))
	case fmt.Stringer:
		s = v.String()
	default:
		s = formatReflect(value, p)
	}

	return truncate(s, opts)
}

func formatString(v string, opts Options) string {
	switch opts.String("format", "") {
	case "date-time":
		dt, err := strfmt.ParseDateTime(v)
		if err != nil {
			return v
		}
		return time.Time(dt).Format(opts.String("time_format", time.RFC3339))
	case "date":
		t, err := time.Parse(strfmt.RFC3339FullDate, v)
		if err != nil {
			return v
		}
		return t.Format(opts.String("time_format", strfmt.RFC3339FullDate))
	}
	return v
}

func formatReflect(value any, p Property) string {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
		return Format(rv.Elem().Interface(), Property{Name: p.Name})
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts = append(parts, Format(rv.Index(i).Interface(), Property{Name: p.Name}))
		}
		return strings.Join(parts, p.Options.String("list_separator", ", "))
	}
	return fmt.Sprint(value)
}

func truncate(s string, opts Options) string {
	max := opts.Int("string_maxlength", 0)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	out := string(runes[:max])
	if opts.Bool("string_ellipsis", true) {
		out += "..."
	}
	return out
}
