package calculator

import (
	"math"
	"sort"
)

// BoxStats summarises one group for a box plot. Whiskers reach the furthest
// values within 1.5 IQR of the box; anything beyond is an outlier.
type BoxStats struct {
	Min      float64   `json:"min"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	Max      float64   `json:"max"`
	Outliers []float64 `json:"outliers,omitempty"`
	Count    int       `json:"count"`
}

// Quantile returns the p-quantile (0..1) of sorted values using linear
// interpolation between closest ranks.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Box computes BoxStats for values. The input is not modified. An empty
// input gives a zero BoxStats.
func Box(values []float64) BoxStats {
	if len(values) == 0 {
		return BoxStats{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	b := BoxStats{
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
		Count:  len(sorted),
	}
	iqr := b.Q3 - b.Q1
	lowFence, highFence := b.Q1-1.5*iqr, b.Q3+1.5*iqr

	b.Min, b.Max = math.Inf(1), math.Inf(-1)
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.Min = math.Min(b.Min, v)
		b.Max = math.Max(b.Max, v)
	}
	return b
}

// GroupValues splits values by key, keeping keys in first-appearance order.
func GroupValues[T any](items []T, key func(T) string, value func(T) float64) ([]string, map[string][]float64) {
	var keys []string
	groups := make(map[string][]float64)
	for _, it := range items {
		k := key(it)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], value(it))
	}
	return keys, groups
}
