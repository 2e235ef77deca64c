package memindex

import "math"

func score(m Metric, query, stored []float32) float32 {
	switch m {
	case MetricDot:
		return (1 + dot(query, stored)) / 2
	case MetricCosine:
		qn := norm(query)
		sn := norm(stored)
		if qn == 0 || sn == 0 {
			return 0.5
		}
		return (1 + dot(query, stored)/(qn*sn)) / 2
	default:
		return 1 / (1 + l2Squared(query, stored))
	}
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func l2Squared(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func norm(a []float32) float32 {
	return float32(math.Sqrt(float64(dot(a, a))))
}
