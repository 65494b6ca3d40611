/*
Package render produces the JSON document behind a dashboard page and its CSV export.

A client refreshes a page by sending the page's query parameters:

	GET /api/v1/pages/products?page=2&limit=25&sort=price&order=desc&search=mouse&filter[status]=active

ParseRequest decodes them and the Renderer combines the Request with the page
configuration into a datasource.Query. The page decides what is honored: a limit is
ignored unless the pager is enabled, search unless the search box is, and a sort or
filter outside the configured ones is rejected as invalid input. The query is then
checked against the datasource's capabilities before any item is read.

The response has two top-level keys:

	{
	  "query":  {...effective datasource query...},
	  "blocks": {
	    "filters":      [...],
	    "display_mode": {...},
	    "sort_links":   [...],
	    "item_list":    {"columns": [...], "rows": [...]},
	    "pager":        {...} | null
	  }
	}

Every link in the blocks is a query string derived from the current request, so the
client can follow it without knowing the parameter names.
*/
package render
