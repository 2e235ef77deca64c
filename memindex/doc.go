// Package memindex provides an exact in-memory shard implementing the
// per-shard search contracts: brute-force vector candidates with metadata
// filtering, BM25 lexical matching over string fields, stored field
// retrieval and s2-compressed snapshots.
package memindex
