// Package lexical defines the interface for the lexical (keyword) side of a
// hybrid query. Each shard owns one lexical index per text field; the
// coordination layer fans the lexical query out next to the KNN clauses and
// unions the matches into the final hit set.
package lexical

// Match is one matching document with its relevance score, identified by
// its shard-local ordinal.
type Match struct {
	Ordinal uint32
	Score   float32
}

// Index is a shard-local lexical search index.
//
// Search returns every matching document, not a truncated page: the query
// integrator counts the full match set when computing total hits.
type Index interface {
	// Add indexes the text of a document. Re-adding an ordinal replaces the
	// previous text.
	Add(ordinal uint32, text string) error

	// Delete removes a document from the index.
	Delete(ordinal uint32) error

	// Search returns all documents matching the query text, best first.
	Search(text string) []Match
}
