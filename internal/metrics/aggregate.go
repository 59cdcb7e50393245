package metrics

import "sort"

// quantileBins is the number of bins used by the percentile approximation.
// Windows with quantileBins samples or fewer fall back to max.
const quantileBins = 20

// Aggregate is a windowed summary of one series.
type Aggregate struct {
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	P95   float64 `json:"p95"`
}

// aggregate summarizes values. ok is false when values is empty.
func aggregate(values []float64) (Aggregate, bool) {
	if len(values) == 0 {
		return Aggregate{}, false
	}

	agg := Aggregate{
		Count: len(values),
		Min:   values[0],
		Max:   values[0],
	}
	var sum float64
	for _, v := range values {
		sum += v
		if v < agg.Min {
			agg.Min = v
		}
		if v > agg.Max {
			agg.Max = v
		}
	}
	agg.Avg = sum / float64(len(values))
	agg.P95 = p95(values, agg.Max)
	return agg, true
}

// p95 approximates the 95th percentile. With quantileBins samples or fewer it
// returns max; above that it returns the 19th of quantileBins exclusive-method
// quantile cut points, interpolated over the sorted values.
func p95(values []float64, max float64) float64 {
	n := len(values)
	if n <= quantileBins {
		return max
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	// Cut point i = quantileBins-1 of the exclusive method: position
	// i*(n+1)/bins with linear interpolation between neighbors.
	i := quantileBins - 1
	pos := i * (n + 1)
	j := pos / quantileBins
	delta := pos - j*quantileBins
	if j < 1 {
		j = 1
	}
	if j > n-1 {
		j = n - 1
	}
	return (sorted[j-1]*float64(quantileBins-delta) + sorted[j]*float64(delta)) / float64(quantileBins)
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
