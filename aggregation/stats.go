package aggregation

import "github.com/hupe1980/vecquery/metadata"

// Aggregation describes an aggregation requested by a query. A fresh
// Collector is created per execution; the executor feeds it every document
// of the final matched set, so results are calibrated against the reported
// total hit count rather than either query side alone.
type Aggregation interface {
	NewCollector() Collector
}

// Collector accumulates documents for one execution.
type Collector interface {
	Collect(doc metadata.Document)
	Result() Result
}

// Result is the computed value of an aggregation.
type Result any

// Stats computes count/min/max/sum/avg over a numeric field.
type Stats struct {
	Field string
}

// NewStats creates a stats aggregation over field.
func NewStats(field string) Stats {
	return Stats{Field: field}
}

// NewCollector implements Aggregation.
func (s Stats) NewCollector() Collector {
	return &statsCollector{field: s.Field}
}

// StatsResult is the result of a Stats aggregation. Min, Max and Avg are
// zero when Count is zero.
type StatsResult struct {
	Count int64
	Min   float64
	Max   float64
	Sum   float64
	Avg   float64
}

type statsCollector struct {
	field string
	count int64
	min   float64
	max   float64
	sum   float64
}

func (c *statsCollector) Collect(doc metadata.Document) {
	value, ok := doc[c.field]
	if !ok {
		return
	}
	if arr, isArr := value.AsArray(); isArr {
		for _, elem := range arr {
			if n, numeric := elem.AsNumber(); numeric {
				c.add(n)
			}
		}
		return
	}
	if n, numeric := value.AsNumber(); numeric {
		c.add(n)
	}
}

func (c *statsCollector) add(n float64) {
	if c.count == 0 {
		c.min = n
		c.max = n
	} else {
		if n < c.min {
			c.min = n
		}
		if n > c.max {
			c.max = n
		}
	}
	c.count++
	c.sum += n
}

func (c *statsCollector) Result() Result {
	res := StatsResult{Count: c.count, Min: c.min, Max: c.max, Sum: c.sum}
	if c.count > 0 {
		res.Avg = c.sum / float64(c.count)
	}
	return res
}
