/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package render

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/suparena/dashboard/datasource"
	"github.com/suparena/dashboard/errors"
)

// Request parameters. Filters are passed as filter[<field>]=<value>, repeated for
// multiple values.
const (
	ParamPage    = "page"
	ParamLimit   = "limit"
	ParamSort    = "sort"
	ParamOrder   = "order"
	ParamSearch  = "search"
	ParamDisplay = "display"

	filterPrefix = "filter["
	filterSuffix = "]"
)

// Request is what a client asked for. The page configuration decides which parts
// are honored.
type Request struct {
	Page    int
	Limit   int
	Sort    string
	Order   datasource.SortOrder
	Search  string
	Filters map[string][]string
	Display string
}

// ParseRequest reads a Request from query parameters. Malformed numbers and sort
// orders are reported as ValidationError.
func ParseRequest(v url.Values) (*Request, error) {
	req := &Request{
		Sort:    strings.TrimSpace(v.Get(ParamSort)),
		Search:  strings.TrimSpace(v.Get(ParamSearch)),
		Display: strings.TrimSpace(v.Get(ParamDisplay)),
		Filters: make(map[string][]string),
	}

	var err error
	if req.Page, err = positiveInt(v, ParamPage); err != nil {
		return nil, err
	}
	if req.Limit, err = positiveInt(v, ParamLimit); err != nil {
		return nil, err
	}

	switch order := strings.ToLower(strings.TrimSpace(v.Get(ParamOrder))); order {
	case "":
	case string(datasource.SortAsc), string(datasource.SortDesc):
		req.Order = datasource.SortOrder(order)
	default:
		return nil, errors.NewValidationError(ParamOrder, "must be asc or desc")
	}

	for key, values := range v {
		if !strings.HasPrefix(key, filterPrefix) || !strings.HasSuffix(key, filterSuffix) {
			continue
		}
		field := key[len(filterPrefix) : len(key)-len(filterSuffix)]
		if field == "" {
			return nil, errors.NewValidationError(key, "filter field is empty")
		}
		for _, value := range values {
			if value = strings.TrimSpace(value); value != "" {
				req.Filters[field] = append(req.Filters[field], value)
			}
		}
	}
	return req, nil
}

func positiveInt(v url.Values, key string) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.NewValidationError(key, "must be a positive integer")
	}
	return n, nil
}

// Values encodes the request back into query parameters.
func (r *Request) Values() url.Values {
	v := url.Values{}
	if r.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(r.Page))
	}
	if r.Limit > 0 {
		v.Set(ParamLimit, strconv.Itoa(r.Limit))
	}
	if r.Sort != "" {
		v.Set(ParamSort, r.Sort)
		if r.Order != "" {
			v.Set(ParamOrder, string(r.Order))
		}
	}
	if r.Search != "" {
		v.Set(ParamSearch, r.Search)
	}
	if r.Display != "" {
		v.Set(ParamDisplay, r.Display)
	}
	for field, values := range r.Filters {
		for _, value := range values {
			v.Add(filterPrefix+field+filterSuffix, value)
		}
	}
	return v
}

// clone returns a deep copy, so links can be derived without touching r.
func (r *Request) clone() *Request {
	c := *r
	c.Filters = make(map[string][]string, len(r.Filters))
	for field, values := range r.Filters {
		c.Filters[field] = slices.Clone(values)
	}
	return &c
}

// link returns a query string for r after applying modify to a copy.
func (r *Request) link(modify func(*Request)) string {
	c := r.clone()
	modify(c)
	return "?" + c.Values().Encode()
}
