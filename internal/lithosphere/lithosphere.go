// Package lithosphere implements the global orchestrator: it composites
// per-plate crust onto a shared world grid, detects and resolves collisions
// and subductions, aggregates continental segments, and restarts the
// simulation once activity ceases.
package lithosphere

import (
	"fmt"
	"log"

	"github.com/onuse/lithogen/internal/geom"
	"github.com/onuse/lithogen/internal/grid"
	"github.com/onuse/lithogen/internal/noise"
	"github.com/onuse/lithogen/internal/plate"
	"github.com/onuse/lithogen/internal/prng"
	"github.com/onuse/lithogen/internal/worldparams"
)

// NoOwner is the "no owner" sentinel stored in the world owner grid wherever
// no plate currently carries crust.
const NoOwner = -1

// ConfigError reports a construction-time configuration problem: world
// dimensions below the minimum, or any Params field rejected by
// Params.Validate (such as zero plates).
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// InvariantError reports a programmer-error-class invariant violation
// surfaced by Update: out-of-range coordinates, impossible segment ids,
// growth beyond world bounds. Update recovers any panic raised by the
// plate/segment/geom packages during a step and reports it here, since those
// packages fail fast via panic rather than threading an error return through
// every private helper.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "lithosphere: invariant violation: " + e.Msg }

// Stats bundles the per-run telemetry an embedder or query surface wants in
// one read.
type Stats struct {
	IterationCount int
	CycleCount     int
	PlateCount     int
	TotalKinetic   float64
	PeakKinetic    float64
	LastCollCount  int
}

// Lithosphere is the global simulation state: the world grids, the live
// plates, and the bookkeeping the restart/collision logic needs between
// steps.
type Lithosphere struct {
	worldDim geom.Dimension
	params   worldparams.Params
	rng      *prng.PRNG
	logger   *log.Logger

	height *grid.Grid[float64]
	owner  *grid.Grid[int]
	age    *grid.Grid[int]

	plates []*plate.Plate

	iterCount     int
	cycleCount    int
	peakEk        float64
	lastCollCount int
}

// New constructs a Lithosphere: it validates the configuration, generates
// the initial heightmap via source, and partitions it into params.NumPlates
// plates.
func New(width, height int, params worldparams.Params, source noise.Source, logger *log.Logger) (*Lithosphere, error) {
	if width < 5 || height < 5 {
		return nil, &ConfigError{Msg: fmt.Sprintf("lithosphere: world dimensions must each be >= 5, got %dx%d", width, height)}
	}
	if err := params.Validate(); err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	if logger == nil {
		logger = log.Default()
	}

	l := &Lithosphere{
		worldDim: geom.NewDimension(width, height),
		params:   params,
		rng:      prng.New(params.Seed),
		logger:   logger,
		height:   grid.New[float64](width, height),
		owner:    grid.Fill[int](width, height, NoOwner),
		age:      grid.New[int](width, height),
	}

	if err := l.generateInitialHeightmap(source); err != nil {
		return nil, err
	}
	l.createPlates()
	return l, nil
}

// generateInitialHeightmap consumes the external noise collaborator once, at
// (W+1)x(H+1) resolution, normalizes it, binary-searches a sea-level
// threshold, and flattens the result to the two base elevations.
func (l *Lithosphere) generateInitialHeightmap(source noise.Source) error {
	w, h := l.worldDim.W, l.worldDim.H
	field, err := source.Generate(w+1, h+1, l.rng)
	if err != nil {
		return fmt.Errorf("lithosphere: noise generation failed: %w", err)
	}

	area := float64((w + 1) * (h + 1))
	threshold := 0.5
	step := 0.5
	for step > 0.01 {
		count := 0
		for i := 0; i < field.Len(); i++ {
			if field.Get(i) < threshold {
				count++
			}
		}
		step *= 0.5
		if float64(count)/area < l.params.SeaLevel {
			threshold += step
		} else {
			threshold -= step
		}
	}

	// Drop the redundant +1 row/column: only the top-left WxH block is kept.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if field.At(x, y) > threshold {
				l.height.Set(x, y, worldparams.ContinentalBase)
			} else {
				l.height.Set(x, y, worldparams.OceanicBase)
			}
		}
	}
	return nil
}

// Logger exposes the injected logger, e.g. so a driver can redirect it.
func (l *Lithosphere) Logger() *log.Logger { return l.logger }

func wrapSigned(d, size int) int {
	d = ((d % size) + size) % size
	if d > size/2 {
		d -= size
	}
	return d
}
