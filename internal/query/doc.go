// Package query serves read requests against the aggregated token
// catalog with filtering, sorting, and cursor pagination. Materialized
// result views are cached per request shape so identical queries
// within the view TTL are answered without recomputation.
package query
