/*
Package csvsource adapts delimited files to the datasource contract.

A Source declares streaming only. Every GetItems call opens the file again, so two
results never share a cursor, and the returned iterator owns the file handle until
it is exhausted or closed:

	src, err := csvsource.New(csvsource.Options{
	    Path:        "/srv/data/products.csv",
	    HasHeader:   true,
	    Encoding:    "iso-8859-1",
	    CountPolicy: csvsource.MaxSize(8 << 20),
	})

Whether a total is reported is decided by a CountPolicy. Never and Always are the
trivial policies; MaxSize only scans files below a threshold; Cached memoizes another
policy's answers in a countcache.Cache keyed on path, size, modification time and
parser settings. A reported count always equals the number of rows iterated:
scanning and iteration share the parser configuration and the open file handle.
*/
package csvsource
