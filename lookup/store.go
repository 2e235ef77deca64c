package lookup

import (
	"context"
	"errors"

	"github.com/hupe1980/vecquery/metadata"
)

// ErrNotFound is returned when a lookup document does not exist.
//
// Implementations must return an error that satisfies
// `errors.Is(err, ErrNotFound)` for missing documents. The filter resolver
// translates it into a match-nothing filter rather than a query failure.
var ErrNotFound = errors.New("lookup: document not found")

// Store reads lookup documents: the remote documents whose field values a
// terms-lookup filter substitutes into the query before shard fan-out.
//
// Get returns the stored fields of document id in the named index.
type Store interface {
	Get(ctx context.Context, index, id string) (metadata.Document, error)
}
