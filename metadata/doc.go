// Package metadata provides the typed field model shared by the filter
// grammar, the lookup stores, and the in-memory reference shard.
//
// Values are a small tagged union (null, int, float, string, bool, array)
// that round-trips through native JSON, so lookup documents stored as plain
// JSON objects decode directly into Documents. The package also provides a
// Roaring-bitmap wrapper used to materialize resolved filters against one
// shard's ordinal space.
package metadata
