// Package stats provides the scalar statistics used for background
// estimation and outlier control.  All functions treat their input as
// read-only and return 0 for empty slices.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of v.
func Mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// Median returns the middle value of v, averaging the two middle values for
// even lengths.  v is copied, not reordered.
func Median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// Mode estimates the modal value as 3*median - 2*mean, the usual estimator
// for mildly skewed sky distributions.
func Mode(v []float64) float64 {
	return 3*Median(v) - 2*Mean(v)
}

// StdDev returns the population standard deviation of v.
func StdDev(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	m := Mean(v)
	var ss float64
	for _, x := range v {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(v)))
}

// Quantile returns the q-th quantile of v, q in [0, 1], with linear
// interpolation between order statistics.  v is copied, not reordered.
func Quantile(v []float64, q float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	if q <= 0 {
		return s[0]
	}
	if q >= 1 {
		return s[len(s)-1]
	}
	pos := q * float64(len(s)-1)
	i := int(pos)
	frac := pos - float64(i)
	return s[i] + frac*(s[i+1]-s[i])
}

// SigmaClip clamps every value of v into
// [median - lo*std, median + hi*std] and returns the result as a new slice.
// Values inside the band pass through unchanged; v is not modified.
func SigmaClip(v []float64, lo, hi float64) []float64 {
	return SigmaClipFunc(v, lo, hi, Median, StdDev)
}

// SigmaClipFunc clamps like SigmaClip with caller-chosen center and spread
// statistics, both evaluated once over the whole input.
func SigmaClipFunc(v []float64, lo, hi float64, center, spread func([]float64) float64) []float64 {
	out := append([]float64(nil), v...)
	if len(out) == 0 {
		return out
	}
	c := center(v)
	s := spread(v)
	lower, upper := c-lo*s, c+hi*s
	for i, x := range out {
		if x < lower {
			out[i] = lower
		} else if x > upper {
			out[i] = upper
		}
	}
	return out
}
