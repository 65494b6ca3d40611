/*
Package sqlsource lists database tables through gorm.

A Source supports pagination, full-text search (LIKE over configured columns),
sorting and streaming, and always reports a reliable count computed with COUNT(*)
over the filtered relation, unless SkipCount is set.

User input never reaches SQL as identifiers without a whitelist check: sort fields
must appear in SortColumns and filter fields in FilterColumns, otherwise GetItems
returns a validation error.

	db, err := sqlsource.Open(cfg.MySQL.DSN)
	orders, err := sqlsource.New[map[string]any](db, sqlsource.Options{
	    Table:         "orders",
	    SearchColumns: []string{"reference", "customer"},
	    FilterColumns: []string{"status"},
	    SortColumns:   []string{"id", "created_at"},
	    DefaultOrder:  "id DESC",
	})

Rows stream from a cursor that stays open until the iterator is exhausted or closed.
*/
package sqlsource
