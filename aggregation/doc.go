// Package aggregation computes metrics over the matched-document set of a
// query execution. The executor hands every matched document to each
// requested aggregation's collector after integration, so an aggregation
// always reflects the union of the KNN and lexical sides.
package aggregation
