// Package countcache memoizes item counts that are expensive to compute, such as
// the number of records in a large CSV file. Memory serves a single process;
// Redis shares counts between replicas.
package countcache
