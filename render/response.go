/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package render

import (
	"github.com/suparena/dashboard/action"
	"github.com/suparena/dashboard/datasource"
)

// Response is the JSON document returned for a page refresh.
type Response struct {
	Query  *datasource.Query `json:"query"`
	Blocks Blocks            `json:"blocks"`
}

// Blocks are the independently re-rendered parts of a page.
type Blocks struct {
	Filters     []FilterBlock `json:"filters"`
	DisplayMode DisplayMode   `json:"display_mode"`
	SortLinks   []SortLink    `json:"sort_links"`
	ItemList    ItemList      `json:"item_list"`
	// Pager is nil when the page is not paginated.
	Pager *Pager `json:"pager"`
}

type FilterBlock struct {
	Field    string         `json:"field"`
	Label    string         `json:"label"`
	Multiple bool           `json:"multiple"`
	Selected []string       `json:"selected"`
	Choices  []FilterChoice `json:"choices"`
	// ClearURL drops every value of the filter.
	ClearURL string `json:"clear_url"`
}

type FilterChoice struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
	// URL toggles the choice.
	URL string `json:"url"`
}

type DisplayMode struct {
	Active string            `json:"active"`
	Modes  []DisplayModeLink `json:"modes"`
}

type DisplayModeLink struct {
	Mode   string `json:"mode"`
	Active bool   `json:"active"`
	URL    string `json:"url"`
}

type SortLink struct {
	Field  string `json:"field"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
	// Order is the order the link switches to.
	Order datasource.SortOrder `json:"order"`
	URL   string               `json:"url"`
}

type Column struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type Row struct {
	Values  map[string]string `json:"values"`
	Actions []action.Action   `json:"actions,omitempty"`
}

type ItemList struct {
	Mode    string          `json:"mode"`
	Columns []Column        `json:"columns"`
	Rows    []Row           `json:"rows"`
	Actions []action.Action `json:"actions,omitempty"`
	// Truncated is set when a page without a pager had more than MaxItems rows.
	Truncated bool `json:"truncated,omitempty"`
}

type Pager struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	// Total and TotalPages are nil when the datasource reported no count.
	Total      *int64 `json:"total"`
	TotalPages *int64 `json:"total_pages"`
	HasNext    bool   `json:"has_next"`
	HasPrev    bool   `json:"has_prev"`
	NextURL    string `json:"next_url,omitempty"`
	PrevURL    string `json:"prev_url,omitempty"`
}
