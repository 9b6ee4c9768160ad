// Package stats provides the pure statistical primitives used to build
// industry benchmarks: interpolated percentiles, IQR outlier removal,
// and basic descriptive statistics.
package stats

import (
	"math"
	"sort"
)

// Constants for the IQR outlier rule.
const (
	iqrFenceFactor = 1.5
	// minOutlierSampleSize is the smallest set the IQR rule is applied to;
	// smaller sets pass through unfiltered.
	minOutlierSampleSize = 4
)

// Percentile returns the p-th percentile of sorted values using linear
// interpolation between the two bracketing order statistics:
//
//	index = p/100 * (n-1)
//	result = v[floor]*(1-frac) + v[ceil]*frac
//
// The input must already be sorted ascending. This exact method (not
// nearest-rank) is required for reproducible benchmark output.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}
	idx := p / 100 * float64(n-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// RemoveOutliers applies the classic IQR rule: values outside
// [p25 - 1.5*IQR, p75 + 1.5*IQR] are dropped. Sets smaller than four
// values pass through unchanged. The returned slice is sorted ascending
// and freshly allocated; the input is not modified.
func RemoveOutliers(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) < minOutlierSampleSize {
		return sorted
	}

	p25 := Percentile(sorted, 25)
	p75 := Percentile(sorted, 75)
	iqr := p75 - p25
	lower := p25 - iqrFenceFactor*iqr
	upper := p75 + iqrFenceFactor*iqr

	kept := sorted[:0]
	for _, v := range sorted {
		if v >= lower && v <= upper {
			kept = append(kept, v)
		}
	}
	out := make([]float64, len(kept))
	copy(out, kept)
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty set.
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

// Median returns the 50th percentile of values (input need not be sorted).
func Median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Percentile(sorted, 50)
}

// StdDev returns the population standard deviation (variance divided by n,
// not n-1), or 0 for an empty set.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}
