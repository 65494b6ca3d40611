/*
Package page defines named pages: the view configuration the renderer applies to a
datasource.

Pages are plain structs, usually loaded from YAML:

	pages:
	  - name: products
	    title: Products
	    datasource: products_db
	    pager: true
	    limit: 25
	    search: true
	    columns:
	      - name: name
	        label: Product
	      - name: price
	        options: {format: currency}
	    sorts:
	      - {field: name, label: Name}
	      - {field: price, label: Price}
	    default_sort: name
	    filters:
	      - field: status
	        multiple: true
	        choices:
	          - {value: active, label: Active}
	          - {value: retired, label: Retired}

Validate checks a page against the capabilities its datasource declares, so a pager
on a CSV file or a search box on a DynamoDB query is rejected when the page is
registered rather than when it is first rendered.
*/
package page
