// Package mass implements the incremental center-of-mass and total-mass
// tracking for a plate.
package mass

import "github.com/go-gl/mathgl/mgl64"

// Mass is the accumulated total crust mass and its center, or the null mass when
// total is zero.
type Mass struct {
	total float64
	cx, cy float64
}

// Null returns the zero mass, equivalent to a plate carrying no crust at all.
func Null() Mass {
	return Mass{}
}

// IsNull reports mass <= 0.
func (m Mass) IsNull() bool {
	return m.total <= 0
}

// Total returns the accumulated mass.
func (m Mass) Total() float64 {
	return m.total
}

// Center returns the center of mass. Undefined (zero vector) when IsNull.
func (m Mass) Center() mgl64.Vec2 {
	return mgl64.Vec2{m.cx, m.cy}
}

// IncMass adjusts the total mass by delta, clamping to zero on underflow. The
// clamp tolerates accumulated float error rather than a logic error:
// oscillating crust writes can walk the running total slightly negative.
func (m Mass) IncMass(delta float64) Mass {
	m.total += delta
	if m.total < 0 {
		m.total = 0
	}
	return m
}

// Accumulator is the builder that sums crust contributions into a Mass.
type Accumulator struct {
	total  float64
	sumX   float64
	sumY   float64
}

// AddPoint accumulates crust at (x,y): total += crust, sumX += x*crust, sumY += y*crust.
func (a *Accumulator) AddPoint(x, y int, crust float64) {
	a.total += crust
	a.sumX += float64(x) * crust
	a.sumY += float64(y) * crust
}

// Build yields the accumulated Mass, or the null Mass if total is zero.
func (a *Accumulator) Build() Mass {
	if a.total <= 0 {
		return Null()
	}
	return Mass{
		total: a.total,
		cx:    a.sumX / a.total,
		cy:    a.sumY / a.total,
	}
}
