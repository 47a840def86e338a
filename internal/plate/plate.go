// Package plate implements a single rigid plate: its local height/age grids,
// bounds, mass, movement, segmentation, and the crust-exchange operations the
// lithosphere orchestrator drives each step.
package plate

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/onuse/lithogen/internal/geom"
	"github.com/onuse/lithogen/internal/grid"
	"github.com/onuse/lithogen/internal/mass"
	"github.com/onuse/lithogen/internal/movement"
	"github.com/onuse/lithogen/internal/prng"
	"github.com/onuse/lithogen/internal/segment"
	"github.com/onuse/lithogen/internal/worldparams"
)

// CollisionEvent records one continental-continental juxtaposition discovered
// during compositing.
type CollisionEvent struct {
	OtherIndex int
	Point      geom.Point
	Crust      float64
}

// SubductionEvent records one oceanic-under-continental subduction discovered
// during compositing, to be applied to the overriding plate.
type SubductionEvent struct {
	OtherIndex int
	Point      geom.Point
	Crust      float64
}

// Plate is a movable rectangular sub-grid of the world carrying its own crust.
type Plate struct {
	index    int
	worldDim geom.Dimension
	params   *worldparams.Params

	bounds   geom.Bounds
	height   *grid.Grid[float64]
	age      *grid.Grid[int]
	segments *segment.Segments
	massAcc  mass.Mass
	move     *movement.Movement
	rng      *prng.PRNG

	Collisions  []CollisionEvent
	Subductions []SubductionEvent
}

// New builds a plate with the given local grids already populated (typically by
// lithosphere.createPlates, which owns the flood-partition of the initial
// heightmap).
func New(index int, worldDim geom.Dimension, bounds geom.Bounds, height *grid.Grid[float64], age *grid.Grid[int], params *worldparams.Params, rng *prng.PRNG) *Plate {
	p := &Plate{
		index:    index,
		worldDim: worldDim,
		params:   params,
		bounds:   bounds,
		height:   height,
		age:      age,
		segments: segment.New(bounds.Width(), bounds.Height()),
		move:     movement.New(rng),
		rng:      rng,
	}
	p.recomputeMass()
	return p
}

func (p *Plate) recomputeMass() {
	var acc mass.Accumulator
	for y := 0; y < p.height.Height(); y++ {
		for x := 0; x < p.height.Width(); x++ {
			acc.AddPoint(x, y, p.height.At(x, y))
		}
	}
	p.massAcc = acc.Build()
}

// Index is the stable identifier used as the owner value in the world grid.
func (p *Plate) Index() int { return p.index }

// SetIndex rewrites the plate's stable identifier, used by the lithosphere's
// remove-empty-plates compaction when a plate is moved to fill a vacated slot.
func (p *Plate) SetIndex(i int) { p.index = i }

// Bounds returns the plate's current world-coordinate footprint.
func (p *Plate) Bounds() geom.Bounds { return p.bounds }

// Mass returns the plate's current total crust mass.
func (p *Plate) Mass() float64 { return p.massAcc.Total() }

// CenterOfMass returns the plate's current center of mass.
func (p *Plate) CenterOfMass() mgl64.Vec2 { return p.massAcc.Center() }

// VelocityUnit returns the plate's current unit heading.
func (p *Plate) VelocityUnit() mgl64.Vec2 { return p.move.VelocityUnit() }

// Speed returns the plate's current scalar speed.
func (p *Plate) Speed() float64 { return p.move.Speed() }

// DecImpulse satisfies movement.Collider so another plate's Collide call can
// apply a counter-impulse to this one.
func (p *Plate) DecImpulse(v mgl64.Vec2) { p.move.DecImpulse(v) }

// AddImpulse accumulates an impulse to be applied on the next Move.
func (p *Plate) AddImpulse(v mgl64.Vec2) { p.move.AddImpulse(v) }

// HeightGrid, AgeGrid expose the local grids read-only for compositing.
func (p *Plate) HeightGrid() *grid.Grid[float64] { return p.height }
func (p *Plate) AgeGrid() *grid.Grid[int]        { return p.age }

// WorldPointOf translates a local coordinate into wrapped world coordinates.
func (p *Plate) WorldPointOf(local geom.Point) geom.Point {
	return p.bounds.WorldPointOf(local)
}

// wraps reports whether the plate's footprint spans the whole world on each
// axis, which governs whether segment flood fill wraps on that axis.
func (p *Plate) wraps() (wrapX, wrapY bool) {
	return p.bounds.Width() == p.worldDim.W, p.bounds.Height() == p.worldDim.H
}

// GetCrust returns the crust height at a world point, or 0 if outside bounds.
func (p *Plate) GetCrust(wp geom.Point) float64 {
	_, local, ok := p.bounds.GetMapIndex(wp)
	if !ok {
		return 0
	}
	return p.height.At(local.X, local.Y)
}

// GetCrustTimestamp returns the crust age at a world point, or 0 if outside
// bounds.
func (p *Plate) GetCrustTimestamp(wp geom.Point) int {
	_, local, ok := p.bounds.GetMapIndex(wp)
	if !ok {
		return 0
	}
	return p.age.At(local.X, local.Y)
}

// wrapDist returns the number of forward (toroidal) steps from a to b within
// [0,size).
func wrapDist(a, b, size int) int {
	d := (b - a) % size
	if d < 0 {
		d += size
	}
	return d
}

// growAmount returns the smallest multiple of 8 strictly greater than a
// positive minimum growth distance d (so d = 8 yields 16), or 0 for d <= 0.
func growAmount(d int) int {
	if d <= 0 {
		return 0
	}
	return 8 * (1 + d/8)
}

// growToContain extends the plate's bounds by a growAmount multiple of 8
// in at most one horizontal and one vertical direction so that wp falls inside,
// without exceeding the world's dimensions, then reallocates the local grids at
// the new offset.
func (p *Plate) growToContain(wp geom.Point) {
	w := p.worldDim
	wp = w.Wrap(wp)

	left, top := p.bounds.Left(), p.bounds.Top()
	width, height := p.bounds.Width(), p.bounds.Height()

	// An axis that already contains the point grows by nothing; an axis that
	// doesn't grows towards whichever edge is toroidally nearer, preferring
	// the (+x,+y) side on a tie.
	var dLft, dRgt int
	if off := wrapDist(left, wp.X, w.W); off >= width {
		distLeft := w.W - off
		distRight := off - width + 1
		if distLeft < distRight {
			dLft = growAmount(distLeft)
		} else {
			dRgt = growAmount(distRight)
		}
	}

	var dTop, dBtm int
	if off := wrapDist(top, wp.Y, w.H); off >= height {
		distTop := w.H - off
		distBottom := off - height + 1
		if distTop < distBottom {
			dTop = growAmount(distTop)
		} else {
			dBtm = growAmount(distBottom)
		}
	}

	if width+dLft+dRgt > w.W {
		dLft = 0
		dRgt = w.W - width
	}
	if height+dTop+dBtm > w.H {
		dTop = 0
		dBtm = w.H - height
	}
	if dLft+dRgt+dTop+dBtm == 0 {
		panic(fmt.Sprintf("plate %d: point %v unreachable by growth without exceeding world bounds", p.index, wp))
	}

	newWidth, newHeight := width+dLft+dRgt, height+dTop+dBtm
	p.height = p.height.Resize(newWidth, newHeight, dLft, dTop, 0)
	p.age = p.age.Resize(newWidth, newHeight, dLft, dTop, 0)
	newIDs := p.segments.IDsGrid().Resize(newWidth, newHeight, dLft, dTop, segment.Unassigned)

	p.bounds.Shift(mgl64.Vec2{-float64(dLft), -float64(dTop)})
	p.bounds.Grow(dLft+dRgt, dTop+dBtm)
	p.segments.Reassign(newIDs)
	p.segments.Shift(dLft, dTop)
}

// SetCrust sets the absolute crust height at a world point to z (clamped to
// >=0), stamping age t, growing the plate first if necessary.
func (p *Plate) SetCrust(wp geom.Point, z float64, t int) {
	if z < 0 {
		z = 0
	}

	_, local, ok := p.bounds.GetMapIndex(wp)
	if !ok {
		if z <= 0 {
			return // nothing to place; never grow just to write a zero.
		}
		p.growToContain(wp)
		_, local, ok = p.bounds.GetMapIndex(wp)
		if !ok {
			panic(fmt.Sprintf("plate %d: %v still out of bounds after growth", p.index, wp))
		}
	}

	oldHeight := p.height.At(local.X, local.Y)
	oldAge := p.age.At(local.X, local.Y)

	var newAge int
	switch {
	case oldHeight > 0 && z > 0:
		newAge = int((oldHeight*float64(oldAge) + z*float64(t)) / (oldHeight + z))
	case oldHeight <= 0 && z > 0:
		newAge = t
	default:
		newAge = oldAge
	}

	p.massAcc = p.massAcc.IncMass(z - oldHeight)
	p.height.Set(local.X, local.Y, z)
	p.age.Set(local.X, local.Y, newAge)
}

// Move advances the plate's rigid-body motion for one step and translates its
// bounds accordingly.
func (p *Plate) Move() {
	p.move.Move(p.worldDim)
	p.bounds.Shift(p.move.Velocity())
}

// ResetSegments clears all segment bookkeeping, ready for re-discovery this
// step.
func (p *Plate) ResetSegments() {
	p.segments.Reset()
}

// ClearCollisions empties the collision bucket gathered during this step's
// compositing pass, once updateCollisions has drained it.
func (p *Plate) ClearCollisions() {
	p.Collisions = p.Collisions[:0]
}

// ClearSubductions empties the subduction bucket, once the subduction drain
// pass has applied it.
func (p *Plate) ClearSubductions() {
	p.Subductions = p.Subductions[:0]
}

// AddCollision increments the collision counter of the segment containing wp
// and returns its area.
func (p *Plate) AddCollision(wp geom.Point) int {
	_, local, ok := p.bounds.GetMapIndex(wp)
	if !ok {
		panic(fmt.Sprintf("plate %d: AddCollision at %v outside bounds", p.index, wp))
	}
	wrapX, wrapY := p.wraps()
	id := p.segments.GetContinentAt(p.height, worldparams.ContinentalBase, wrapX, wrapY, local.X, local.Y)
	return p.segments.IncCollision(id)
}

// CollisionInfo returns the collision count and overlap ratio (collisions per
// unit area, +1 avoiding a division by zero) of the segment at wp, the pair
// lithosphere.updateCollisions compares against the aggregation thresholds.
func (p *Plate) CollisionInfo(wp geom.Point) (count int, ratio float64) {
	_, local, ok := p.bounds.GetMapIndex(wp)
	if !ok {
		panic(fmt.Sprintf("plate %d: CollisionInfo at %v outside bounds", p.index, wp))
	}
	wrapX, wrapY := p.wraps()
	id := p.segments.GetContinentAt(p.height, worldparams.ContinentalBase, wrapX, wrapY, local.X, local.Y)
	rec := p.segments.Record(id)
	return rec.Collisions, float64(rec.Collisions) / float64(1+rec.Area)
}

// SelectCollisionSegment returns the segment id at wp on this plate, lazily
// creating it if necessary — the "active" segment a donor plate's crust is
// folded into.
func (p *Plate) SelectCollisionSegment(wp geom.Point) int {
	_, local, ok := p.bounds.GetMapIndex(wp)
	if !ok {
		panic(fmt.Sprintf("plate %d: SelectCollisionSegment at %v outside bounds", p.index, wp))
	}
	wrapX, wrapY := p.wraps()
	return p.segments.GetContinentAt(p.height, worldparams.ContinentalBase, wrapX, wrapY, local.X, local.Y)
}

// AddCrustByCollision adds z crust at wp (via SetCrust, growing if necessary),
// then assigns the affected cell to activeSegmentID, growing that segment's
// area and bounding box.
func (p *Plate) AddCrustByCollision(wp geom.Point, z float64, t int, activeSegmentID int) {
	p.SetCrust(wp, p.GetCrust(wp)+z, t)
	_, local, ok := p.bounds.GetMapIndex(wp)
	if !ok {
		panic(fmt.Sprintf("plate %d: AddCrustByCollision at %v outside bounds after growth", p.index, wp))
	}
	p.segments.AssignCell(local.X, local.Y, activeSegmentID)
}

// AddCrustBySubduction places sediment slightly inland from the impact point,
// deterministic-stochastically biased away from the direction both plates are
// already moving together in.
func (p *Plate) AddCrustBySubduction(wp geom.Point, z float64, t int, otherVelocity mgl64.Vec2) {
	_, local, ok := p.bounds.GetMapIndex(wp)
	if !ok {
		panic(fmt.Sprintf("plate %d: AddCrustBySubduction at %v outside bounds", p.index, wp))
	}

	bias := otherVelocity
	if p.move.VelocityUnit().Dot(otherVelocity) > 0 {
		bias = bias.Sub(p.move.VelocityUnit())
	}

	r1 := p.rng.NextDouble()
	sign1 := 1.0
	if !p.rng.NextBool() {
		sign1 = -1.0
	}
	r2 := p.rng.NextDouble()
	sign2 := 1.0
	if !p.rng.NextBool() {
		sign2 = -1.0
	}

	dx := 10*bias.X() + 3*r1*r1*r1*sign1
	dy := 10*bias.Y() + 3*r2*r2*r2*sign2

	fx := float64(local.X) + dx
	fy := float64(local.Y) + dy
	ix, iy := int(math.Floor(fx)), int(math.Floor(fy))
	if ix < 0 || ix >= p.bounds.Width() || iy < 0 || iy >= p.bounds.Height() {
		return // target outside the plate: no-op.
	}

	oldHeight := p.height.At(ix, iy)
	if oldHeight <= 0 {
		return
	}
	oldAge := p.age.At(ix, iy)
	newAge := 0
	if z > 0 {
		newAge = int((oldHeight*float64(oldAge) + z*float64(t)) / (oldHeight + z))
	}
	p.age.Set(ix, iy, newAge)
	p.height.Set(ix, iy, oldHeight+z)
	p.massAcc = p.massAcc.IncMass(z)
}

// otherPlate is the capability AggregateCrust needs from the receiving plate.
type otherPlate interface {
	SelectCollisionSegment(wp geom.Point) int
	AddCrustByCollision(wp geom.Point, z float64, t int, activeSegmentID int)
}

// AggregateCrust donates an entire connected continental segment at wp to
// other, returning the mass donated. Returns 0 if the segment at wp is already
// empty (e.g. already donated earlier this step).
func (p *Plate) AggregateCrust(other otherPlate, wp geom.Point) float64 {
	_, local, ok := p.bounds.GetMapIndex(wp)
	if !ok {
		panic(fmt.Sprintf("plate %d: AggregateCrust at %v outside bounds", p.index, wp))
	}
	segID := p.segments.IDAt(local.X, local.Y)
	if !p.segments.Exists(segID) {
		return 0
	}

	activeID := other.SelectCollisionSegment(wp)
	rec := p.segments.Record(segID)
	oldMass := p.massAcc.Total()

	for y := rec.Top; y < rec.Bottom; y++ {
		for x := rec.Left; x < rec.Right; x++ {
			if p.segments.IDAt(x, y) != segID {
				continue
			}
			h := p.height.At(x, y)
			if h <= 0 {
				continue
			}
			cellWorld := p.bounds.WorldPointOf(geom.Point{X: x, Y: y})
			other.AddCrustByCollision(cellWorld, h, p.age.At(x, y), activeID)
			p.massAcc = p.massAcc.IncMass(-h)
			p.height.Set(x, y, 0)
		}
	}

	p.segments.MarkDonated(segID)
	return oldMass - p.massAcc.Total()
}

// collideOther is the capability Collide needs from the other party.
type collideOther interface {
	movement.Collider
}

// Collide exchanges an elastic impulse with other via this plate's movement,
// only when this plate's mass and collMass are both nonzero.
func (p *Plate) Collide(other collideOther, collMass float64) {
	if p.massAcc.IsNull() || collMass <= 0 {
		return
	}
	p.move.Collide(p, other, collMass)
}

// ApplyFriction reduces this plate's speed in proportion to deformedMass.
func (p *Plate) ApplyFriction(deformedMass float64) {
	if p.massAcc.IsNull() {
		return
	}
	movement.ApplyFriction(p.move, worldparams.DeformationWeight, deformedMass, p.massAcc.Total())
}
