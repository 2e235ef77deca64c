// Package vecquery provides a coordination layer for distributed KNN
// vector search: filter resolution with terms lookups and alias filters,
// clause×shard fan-out over pluggable candidate sources, per-clause global
// top-k merging, additive multi-clause score combination and integration
// with an optional lexical query.
//
// A minimal setup over the in-memory reference shards:
//
//	shards := []engine.CandidateSource{
//	    memindex.NewShard(0),
//	    memindex.NewShard(1),
//	}
//
//	eng, err := vecquery.New(map[string]int{"vector": 3}, shards)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	resp, err := eng.Search().
//	    Knn(vecquery.NewKnn("vector", []float32{0.2, 0.1, 0.9}, 5, 10)).
//	    Size(5).
//	    Execute(ctx)
package vecquery
