// Package geom implements the toroidal world Dimension and per-plate Bounds
// footprint, with world<->local index translation, wrap-aware growth, and
// origin shifting.
package geom

import "fmt"

// Point is an integer world or local coordinate.
type Point struct {
	X, Y int
}

// Dimension is the fixed, toroidal size of the world grid.
type Dimension struct {
	W, H int
}

// NewDimension builds a Dimension, asserting both axes are positive.
func NewDimension(w, h int) Dimension {
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("geom: non-positive dimension %dx%d", w, h))
	}
	return Dimension{W: w, H: h}
}

// Contains reports whether p lies within [0,W) x [0,H) without wrapping.
func (d Dimension) Contains(p Point) bool {
	return p.X >= 0 && p.X < d.W && p.Y >= 0 && p.Y < d.H
}

// IndexOf returns the row-major flat index of p, assumed already in range.
func (d Dimension) IndexOf(p Point) int {
	return p.Y*d.W + p.X
}

// CoordOf is the inverse of IndexOf.
func (d Dimension) CoordOf(i int) Point {
	return Point{X: i % d.W, Y: i / d.W}
}

// XMod reduces x into [0,W) toroidally.
func (d Dimension) XMod(x int) int {
	x %= d.W
	if x < 0 {
		x += d.W
	}
	return x
}

// YMod reduces y into [0,H) toroidally.
func (d Dimension) YMod(y int) int {
	y %= d.H
	if y < 0 {
		y += d.H
	}
	return y
}

// Wrap reduces both coordinates of p toroidally.
func (d Dimension) Wrap(p Point) Point {
	return Point{X: d.XMod(p.X), Y: d.YMod(p.Y)}
}

// XCap clamps x to the last valid column index.
func (d Dimension) XCap(x int) int {
	if x > d.W-1 {
		return d.W - 1
	}
	if x < 0 {
		return 0
	}
	return x
}

// YCap clamps y to the last valid row index.
func (d Dimension) YCap(y int) int {
	if y > d.H-1 {
		return d.H - 1
	}
	if y < 0 {
		return 0
	}
	return y
}

// Area returns W*H.
func (d Dimension) Area() int {
	return d.W * d.H
}
