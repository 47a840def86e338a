package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bounds is the axis-aligned, wrap-aware world-coordinate footprint of a plate.
// The top-left corner is stored as a float so that shift() can accumulate
// sub-cell motion; width/height are always integral cell counts.
type Bounds struct {
	world          Dimension
	topLeft        mgl64.Vec2
	width, height int
}

// NewBounds builds a Bounds for worldDim, anchored at topLeft, sized dim. dim must
// not exceed worldDim on either axis.
func NewBounds(worldDim Dimension, topLeft mgl64.Vec2, dim Point) Bounds {
	if dim.X > worldDim.W || dim.Y > worldDim.H {
		panic(fmt.Sprintf("geom: bounds size %dx%d exceeds world %dx%d", dim.X, dim.Y, worldDim.W, worldDim.H))
	}
	b := Bounds{world: worldDim, width: dim.X, height: dim.Y}
	b.topLeft = wrapFloat(topLeft, worldDim)
	return b
}

func wrapFloat(v mgl64.Vec2, d Dimension) mgl64.Vec2 {
	x := math.Mod(v.X(), float64(d.W))
	if x < 0 {
		x += float64(d.W)
	}
	y := math.Mod(v.Y(), float64(d.H))
	if y < 0 {
		y += float64(d.H)
	}
	return mgl64.Vec2{x, y}
}

// Width, Height, Area are the plate's cell-count footprint.
func (b Bounds) Width() int  { return b.width }
func (b Bounds) Height() int { return b.height }
func (b Bounds) Area() int   { return b.width * b.height }

// Left and Top are the integer, toroidally-wrapped world coordinates of the
// top-left cell.
func (b Bounds) Left() int { return b.world.XMod(int(math.Floor(b.topLeft.X()))) }
func (b Bounds) Top() int  { return b.world.YMod(int(math.Floor(b.topLeft.Y()))) }

// Right and Bottom are exclusive — the first world column/row beyond the footprint,
// expressed relative to Left/Top (may exceed world dimensions, meaning the
// footprint wraps across the edge).
func (b Bounds) Right() int  { return b.Left() + b.width }
func (b Bounds) Bottom() int { return b.Top() + b.height }

// TopLeftFloat returns the float top-left position, wrapped into the world.
func (b Bounds) TopLeftFloat() mgl64.Vec2 { return b.topLeft }

// Index returns the flat local index of local, asserting it lies inside the
// footprint.
func (b Bounds) Index(local Point) int {
	if local.X < 0 || local.X >= b.width || local.Y < 0 || local.Y >= b.height {
		panic(fmt.Sprintf("geom: local point %v outside bounds %dx%d", local, b.width, b.height))
	}
	return local.Y*b.width + local.X
}

// ContainsWorldPoint reports whether wp, after toroidal wrapping of both the
// bounds rectangle and the query, lies inside the footprint.
func (b Bounds) ContainsWorldPoint(wp Point) bool {
	dx := b.world.XMod(wp.X - b.Left())
	if dx >= b.width {
		return false
	}
	dy := b.world.YMod(wp.Y - b.Top())
	return dy < b.height
}

// GetMapIndex translates a world point into a local index and wrapped local
// coordinate. ok is false ("out of range") when wp does not fall inside the
// footprint.
func (b Bounds) GetMapIndex(wp Point) (localIndex int, local Point, ok bool) {
	dx := b.world.XMod(wp.X - b.Left())
	if dx >= b.width {
		return -1, Point{}, false
	}
	dy := b.world.YMod(wp.Y - b.Top())
	if dy >= b.height {
		return -1, Point{}, false
	}
	local = Point{X: dx, Y: dy}
	return dy*b.width + dx, local, true
}

// WorldPointOf translates a local coordinate back into wrapped world coordinates.
func (b Bounds) WorldPointOf(local Point) Point {
	return b.world.Wrap(Point{X: b.Left() + local.X, Y: b.Top() + local.Y})
}

// Shift translates the floating top-left by delta, re-wrapping into the world.
// The local grid contents are never touched by a shift.
func (b *Bounds) Shift(delta mgl64.Vec2) {
	b.topLeft = wrapFloat(b.topLeft.Add(delta), b.world)
}

// Grow increases width/height by dx/dy, one-sided towards (+x,+y). It panics
// if the result would exceed the world's dimensions; growth beyond the world
// is a programmer error.
func (b *Bounds) Grow(dx, dy int) {
	if b.width+dx > b.world.W {
		panic(fmt.Sprintf("geom: growth would make width %d exceed world width %d", b.width+dx, b.world.W))
	}
	if b.height+dy > b.world.H {
		panic(fmt.Sprintf("geom: growth would make height %d exceed world height %d", b.height+dy, b.world.H))
	}
	b.width += dx
	b.height += dy
}

// World returns the world Dimension this Bounds was built against.
func (b Bounds) World() Dimension { return b.world }
