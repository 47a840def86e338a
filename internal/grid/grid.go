// Package grid is the flat, row-major 2D array used to back height (float),
// age, owner, and segment-id data.
package grid

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Numeric is satisfied by the two cell types the engine stores: floats (height)
// and integers (age, owner, segment id).
type Numeric interface {
	constraints.Float | constraints.Integer
}

// Grid is a flat row-major width x height array of T.
type Grid[T Numeric] struct {
	width, height int
	cells         []T
}

// New allocates a width x height grid, zero-initialized.
func New[T Numeric](width, height int) *Grid[T] {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("grid: negative dimension %dx%d", width, height))
	}
	return &Grid[T]{width: width, height: height, cells: make([]T, width*height)}
}

// Fill allocates a width x height grid with every cell set to v.
func Fill[T Numeric](width, height int, v T) *Grid[T] {
	g := New[T](width, height)
	for i := range g.cells {
		g.cells[i] = v
	}
	return g
}

func (g *Grid[T]) Width() int  { return g.width }
func (g *Grid[T]) Height() int { return g.height }
func (g *Grid[T]) Len() int    { return len(g.cells) }

// Index converts (x,y) to a flat offset, asserting it lies inside the grid.
func (g *Grid[T]) Index(x, y int) int {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		panic(fmt.Sprintf("grid: coordinate (%d,%d) out of range for %dx%d grid", x, y, g.width, g.height))
	}
	return y*g.width + x
}

// At returns the cell at (x,y).
func (g *Grid[T]) At(x, y int) T {
	return g.cells[g.Index(x, y)]
}

// Set writes the cell at (x,y).
func (g *Grid[T]) Set(x, y int, v T) {
	g.cells[g.Index(x, y)] = v
}

// Get returns the cell at flat index i.
func (g *Grid[T]) Get(i int) T {
	return g.cells[i]
}

// SetAt writes the cell at flat index i.
func (g *Grid[T]) SetAt(i int, v T) {
	g.cells[i] = v
}

// Raw exposes the backing slice for bulk read access (e.g. serialization), in
// row-major order. Callers must not retain it across a Resize.
func (g *Grid[T]) Raw() []T {
	return g.cells
}

// Clear resets every cell to v.
func (g *Grid[T]) Clear(v T) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

// Clone returns an independent copy.
func (g *Grid[T]) Clone() *Grid[T] {
	out := &Grid[T]{width: g.width, height: g.height, cells: make([]T, len(g.cells))}
	copy(out.cells, g.cells)
	return out
}

// Resize builds a new newW x newH grid filled with fill, then copies this grid's
// contents into it at (offsetX, offsetY) — used when a plate grows and its local
// origin needs to shift relative to the enlarged grid.
func (g *Grid[T]) Resize(newW, newH, offsetX, offsetY int, fill T) *Grid[T] {
	out := Fill[T](newW, newH, fill)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			out.Set(x+offsetX, y+offsetY, g.At(x, y))
		}
	}
	return out
}
