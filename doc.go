/*
Package dashboard provides a listing layer that renders pages of items drawn from
heterogeneous datasources: CSV files, SQL tables, DynamoDB queries and in-memory
collections.

Each backend implements datasource.Datasource[T] and declares the query features it
honors (streaming, pagination, full-text search, sorting). Pages describe what is
shown and which features the user may use; a page that asks its datasource for a
feature it lacks is rejected when it is added.

Basic Usage:

	d := dashboard.New(nil)

	// Register typed datasources
	products, _ := sqlsource.New[Product](db, sqlsource.Options{
	    SearchColumns: []string{"name"},
	    SortColumns:   []string{"name", "price"},
	})
	dashboard.Register(d.Sources, "products", products)

	imports, _ := csvsource.New(csvsource.Options{Path: "imports.csv", HasHeader: true})
	dashboard.Register(d.Sources, "imports", imports)

	// Add pages and render them
	pages, _ := page.Load(afero.NewOsFs(), "pages.yaml")
	for _, p := range pages {
	    if err := d.AddPage(p); err != nil {
	        log.Fatal(err)
	    }
	}
	resp, err := d.Render(ctx, "products", &render.Request{Page: 2})

The cmd/dashboard command serves pages over HTTP as JSON and CSV.
*/
package dashboard
