package vecquery

import (
	"context"

	"github.com/hupe1980/vecquery/aggregation"
	"github.com/hupe1980/vecquery/engine"
)

// Search creates a new fluent search builder.
//
// Example:
//
//	resp, err := eng.Search().
//	    Knn(vecquery.NewKnn("vector", query, 5, 10)).
//	    Alias("recent").
//	    Size(5).
//	    Execute(ctx)
func (e *Engine) Search() *SearchBuilder {
	return &SearchBuilder{eng: e}
}

// SearchBuilder is a fluent builder for constructing queries.
//
// Knn and QueryKnn select between the two integration paths: dedicated KNN
// clauses count their deduplicated global top-k as hits, while a generic
// KNN query counts every shard-local candidate without global truncation.
type SearchBuilder struct {
	eng   *Engine
	req   engine.Request
	alias string
}

// Knn adds dedicated KNN clauses. Multiple clauses are combined by adding
// their scores per document.
func (sb *SearchBuilder) Knn(clauses ...Knn) *SearchBuilder {
	for _, kn := range clauses {
		c := kn.clause()
		sb.req.Clauses = append(sb.req.Clauses, c)
	}
	return sb
}

// QueryKnn sets a generic KNN query instead of dedicated clauses.
func (sb *SearchBuilder) QueryKnn(kn Knn) *SearchBuilder {
	c := kn.clause()
	sb.req.Query = &c
	return sb
}

// Match adds a lexical query over a string field, combined with the KNN
// clauses by adding scores per document.
func (sb *SearchBuilder) Match(field, text string) *SearchBuilder {
	sb.req.Lexical = &engine.LexicalQuery{Field: field, Text: text}
	return sb
}

// Alias routes the query through a registered alias, conjoining its filter
// into every clause.
func (sb *SearchBuilder) Alias(name string) *SearchBuilder {
	sb.alias = name
	return sb
}

// Size sets the page size. Default: 10.
func (sb *SearchBuilder) Size(n int) *SearchBuilder {
	sb.req.Size = n
	return sb
}

// Aggregation requests a named aggregation over the full matched-document
// set, not just the returned page.
func (sb *SearchBuilder) Aggregation(name string, agg aggregation.Aggregation) *SearchBuilder {
	if sb.req.Aggregations == nil {
		sb.req.Aggregations = make(map[string]aggregation.Aggregation)
	}
	sb.req.Aggregations[name] = agg
	return sb
}

// Strict makes any shard failure fail the whole query instead of degrading
// to a best-effort result.
func (sb *SearchBuilder) Strict() *SearchBuilder {
	sb.req.Strict = true
	return sb
}

// Execute runs the query.
func (sb *SearchBuilder) Execute(ctx context.Context) (*Response, error) {
	aliasFilter, err := sb.eng.aliasFilter(sb.alias)
	if err != nil {
		return nil, err
	}
	req := sb.req
	req.Alias = aliasFilter
	return sb.eng.execute(ctx, &req)
}

// MustExecute runs the query, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (sb *SearchBuilder) MustExecute(ctx context.Context) *Response {
	resp, err := sb.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return resp
}

// First returns only the best hit, or ErrNotFound if nothing matched.
func (sb *SearchBuilder) First(ctx context.Context) (Hit, error) {
	resp, err := sb.Execute(ctx)
	if err != nil {
		return Hit{}, err
	}
	if len(resp.Hits) == 0 {
		return Hit{}, ErrNotFound
	}
	return resp.Hits[0], nil
}

// Count executes the query and returns the total hit count.
func (sb *SearchBuilder) Count(ctx context.Context) (int, error) {
	resp, err := sb.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return resp.TotalHits, nil
}

// Exists checks if at least one document matches the query.
func (sb *SearchBuilder) Exists(ctx context.Context) (bool, error) {
	count, err := sb.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
