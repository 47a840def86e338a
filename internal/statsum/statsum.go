// Package statsum summarizes a lithosphere's current topography into
// aggregate statistics, for telemetry or a driver's end-of-run report.
package statsum

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Topography is the minimal read surface statsum needs from an engine.
type Topography interface {
	Topography() []float64
	PlatesMap() []int
	Width() int
	Height() int
}

// Summary bundles the aggregate height statistics for one snapshot.
type Summary struct {
	Mean, Variance, StdDev float64
	Min, Max               float64
	Q1, Median, Q3         float64
	LandFraction           float64
	PlateCellCounts        []int
}

// Summarize computes Summary from the engine's current world grids.
// continentalBase is the height threshold at or above which a cell counts as land.
func Summarize(l Topography, continentalBase float64) Summary {
	height := l.Topography()
	owners := l.PlatesMap()

	mean, variance := stat.MeanVariance(height, nil)

	sorted := append([]float64(nil), height...)
	sort.Float64s(sorted)
	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)

	land := 0
	for _, h := range height {
		if h >= continentalBase {
			land++
		}
	}

	maxOwner := -1
	for _, o := range owners {
		if o > maxOwner {
			maxOwner = o
		}
	}
	counts := make([]int, maxOwner+1)
	for _, o := range owners {
		if o >= 0 {
			counts[o]++
		}
	}

	return Summary{
		Mean:            mean,
		Variance:        variance,
		StdDev:          stat.StdDev(height, nil),
		Min:             floats.Min(height),
		Max:             floats.Max(height),
		Q1:              q1,
		Median:          median,
		Q3:              q3,
		LandFraction:    float64(land) / float64(len(height)),
		PlateCellCounts: counts,
	}
}
