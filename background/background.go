// Package background estimates sky levels over a grid, either as a single
// scalar or as a full-resolution mesh map.  Photometry callers subtract the
// estimate from their image before measuring; nothing here is invoked by the
// engine itself.
package background

import (
	"fmt"

	"github.com/nasa-jpl/apphot/grid"
	"github.com/nasa-jpl/apphot/stats"
)

// Estimator selects the statistic reduced over a region.
type Estimator int

const (
	// Mean is the arithmetic mean.
	Mean Estimator = iota
	// Median is the 50th percentile, robust to sources in the region.
	Median
	// Mode estimates the distribution peak as 3*median - 2*mean.
	Mode
)

// ParseEstimator reads an estimator selector: "mean", "median", or "mode".
func ParseEstimator(s string) (Estimator, error) {
	switch s {
	case "mean":
		return Mean, nil
	case "median":
		return Median, nil
	case "mode":
		return Mode, nil
	}
	return 0, fmt.Errorf("background: unrecognized estimator %q", s)
}

// String returns the selector form accepted by ParseEstimator.
func (e Estimator) String() string {
	switch e {
	case Mean:
		return "mean"
	case Median:
		return "median"
	case Mode:
		return "mode"
	}
	return "invalid"
}

func (e Estimator) reduce(v []float64) float64 {
	switch e {
	case Mean:
		return stats.Mean(v)
	case Median:
		return stats.Median(v)
	case Mode:
		return stats.Mode(v)
	}
	return 0
}

func (e Estimator) valid() bool {
	return e == Mean || e == Median || e == Mode
}

// Estimate reduces the whole grid to a scalar background level.
func Estimate(g *grid.Grid, e Estimator) (float64, error) {
	if !e.valid() {
		return 0, fmt.Errorf("background: unrecognized estimator %d", e)
	}
	return e.reduce(g.Data), nil
}

// EstimateClipped sigma-clips the samples into
// [median - lo*std, median + hi*std] before reducing, so bright sources
// inside the region drag the estimate less.
func EstimateClipped(g *grid.Grid, e Estimator, lo, hi float64) (float64, error) {
	if !e.valid() {
		return 0, fmt.Errorf("background: unrecognized estimator %d", e)
	}
	return e.reduce(stats.SigmaClip(g.Data, lo, hi)), nil
}
