/*
Package datasource defines the contract between listing backends and the rendering layer.

A backend declares which query features it honors as a Capability bitmask and maps a
Query to a Result:

	type Datasource[T any] interface {
	    Capabilities() Capability
	    GetItems(ctx context.Context, q *Query) (*Result[T], error)
	}

A Result pairs a lazy Iterator with a total count that is only present when the
backend can compute it cheaply. When present and the query is not paginated,
iterating yields exactly that many items; for paginated queries it is the total
across all pages.

	res, err := ds.GetItems(ctx, &datasource.Query{})
	if err != nil {
	    return err
	}
	if n, ok := res.Count(); ok {
	    log.Printf("%d rows", n)
	}
	for item, err := range res.All(ctx) {
	    if err != nil {
	        return err
	    }
	    // ...
	}

All closes the iterator on every exit path, including break.

Callers should run Check before dispatching a query: asking a backend for a
capability it does not declare is a configuration error (errors.ErrUnsupported).

Implementations:
  - csvsource: streaming CSV files with a pluggable count policy
  - collection: in-memory slices
  - sqlsource: gorm-backed tables
  - ddbsource: DynamoDB queries
*/
package datasource
