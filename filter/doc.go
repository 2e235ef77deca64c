// Package filter implements the filter side of the query path: the request
// filter grammar (term, terms, terms lookup), the literal Resolved predicate
// evaluated by candidate sources, and the Resolver that rewrites a filter
// specification into its resolved form before shard fan-out.
//
// Resolution happens once per clause per query execution. All shards
// evaluating a clause share the identical Resolved value; no shard redoes a
// lookup. The only remote reads on the query path happen here.
package filter
