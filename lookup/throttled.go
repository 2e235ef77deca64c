package lookup

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/hupe1980/vecquery/metadata"
)

// Throttled wraps a Store and limits the rate of remote fetches.
//
// Terms-lookup resolution is the only stage of a query that performs a
// remote read; a burst of queries against uncached lookups would otherwise
// translate directly into object-store request bursts.
type Throttled struct {
	inner   Store
	limiter *rate.Limiter
}

// NewThrottled creates a rate-limited view of inner.
// limit is fetches per second; burst is the allowed burst size.
func NewThrottled(inner Store, limit rate.Limit, burst int) *Throttled {
	return &Throttled{
		inner:   inner,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Get waits for limiter admission, then delegates to the inner store.
// It returns early if ctx is cancelled while waiting.
func (t *Throttled) Get(ctx context.Context, index, id string) (metadata.Document, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.Get(ctx, index, id)
}
