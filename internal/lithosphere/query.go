package lithosphere

import "github.com/onuse/lithogen/internal/plate"

// Width and Height report the world's toroidal dimensions.
func (l *Lithosphere) Width() int  { return l.worldDim.W }
func (l *Lithosphere) Height() int { return l.worldDim.H }

// Topography returns the current world heightmap, row-major, one value per
// cell.
func (l *Lithosphere) Topography() []float64 {
	out := make([]float64, l.height.Len())
	copy(out, l.height.Raw())
	return out
}

// PlatesMap returns the current plate-ownership grid, row-major, NoOwner
// where no plate currently carries crust.
func (l *Lithosphere) PlatesMap() []int {
	out := make([]int, l.owner.Len())
	copy(out, l.owner.Raw())
	return out
}

// AgeMap returns the current world crust-age grid, row-major.
func (l *Lithosphere) AgeMap() []int {
	out := make([]int, l.age.Len())
	copy(out, l.age.Raw())
	return out
}

// OwnerAt returns the plate index owning world cell (x,y), or NoOwner.
func (l *Lithosphere) OwnerAt(x, y int) int {
	return l.owner.At(x, y)
}

// PlateCount returns the number of currently live plates.
func (l *Lithosphere) PlateCount() int { return len(l.plates) }

// Plate returns a read-only handle to the live plate at index i, exposing its
// mass, velocity unit vector, and bounds.
func (l *Lithosphere) Plate(i int) *plate.Plate { return l.plates[i] }

// IterationCount returns the current iteration timestamp. Plate creation sets
// it to the plate count plus MaxBuoyancyAge, and each non-restarting step
// advances it by one.
func (l *Lithosphere) IterationCount() int { return l.iterCount }

// CycleCount returns the number of restarts counted against a bounded cycle
// budget. Restarts are not counted in an unbounded run (NumCycles == 0), where
// it stays 0.
func (l *Lithosphere) CycleCount() int { return l.cycleCount }

// IsFinished reports whether the simulation has no plates left to advance.
// The plate list empties only on the final restart of a bounded-cycle run,
// so an unbounded run never finishes.
func (l *Lithosphere) IsFinished() bool {
	return len(l.plates) == 0
}

// Snapshot bundles the engine's current telemetry in one read.
func (l *Lithosphere) Snapshot() Stats {
	total := 0.0
	for _, pl := range l.plates {
		total += pl.Mass() * pl.Speed()
	}
	return Stats{
		IterationCount: l.iterCount,
		CycleCount:     l.cycleCount,
		PlateCount:     len(l.plates),
		TotalKinetic:   total,
		PeakKinetic:    l.peakEk,
		LastCollCount:  l.lastCollCount,
	}
}
