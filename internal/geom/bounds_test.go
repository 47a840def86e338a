package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// A 500x400 plate anchored at (10.2, 48.9) inside an 800x600 world covers
// world columns [10,510) and rows [48,448).
func TestContainsWorldPoint(t *testing.T) {
	world := NewDimension(800, 600)
	b := NewBounds(world, mgl64.Vec2{10.2, 48.9}, Point{X: 500, Y: 400})

	cases := []struct {
		p    Point
		want bool
	}{
		{Point{10, 48}, true},
		{Point{509, 447}, true},
		{Point{509, 448}, false},
		{Point{9, 48}, false},
	}
	for _, tc := range cases {
		if got := b.ContainsWorldPoint(tc.p); got != tc.want {
			t.Errorf("ContainsWorldPoint(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

// A plate anchored at (700.4, 500.3) wraps across both world edges; world
// point (50,50) lands at local (150,150), while (500,200) is outside.
func TestGetMapIndexWrapped(t *testing.T) {
	world := NewDimension(800, 600)
	b := NewBounds(world, mgl64.Vec2{700.4, 500.3}, Point{X: 500, Y: 400})

	idx, local, ok := b.GetMapIndex(Point{X: 50, Y: 50})
	if !ok {
		t.Fatal("GetMapIndex((50,50)) reported out of range")
	}
	if local != (Point{X: 150, Y: 150}) {
		t.Errorf("local = %v, want (150,150)", local)
	}
	if want := 150*500 + 150; idx != want {
		t.Errorf("index = %d, want %d", idx, want)
	}

	if _, _, ok := b.GetMapIndex(Point{X: 500, Y: 200}); ok {
		t.Error("GetMapIndex((500,200)) should be out of range")
	}
}

func TestWorldPointOfInvertsGetMapIndex(t *testing.T) {
	world := NewDimension(800, 600)
	b := NewBounds(world, mgl64.Vec2{700.4, 500.3}, Point{X: 500, Y: 400})

	for _, wp := range []Point{{700, 500}, {50, 50}, {799, 599}, {0, 0}} {
		_, local, ok := b.GetMapIndex(wp)
		if !ok {
			t.Fatalf("%v unexpectedly out of range", wp)
		}
		if got := b.WorldPointOf(local); got != wp {
			t.Errorf("WorldPointOf(%v) = %v, want %v", local, got, wp)
		}
	}
}

func TestShiftWrapsOrigin(t *testing.T) {
	world := NewDimension(100, 80)
	b := NewBounds(world, mgl64.Vec2{95, 75}, Point{X: 20, Y: 10})

	b.Shift(mgl64.Vec2{7.5, 6.5})
	if got := b.Left(); got != 2 {
		t.Errorf("Left after shift = %d, want 2", got)
	}
	if got := b.Top(); got != 1 {
		t.Errorf("Top after shift = %d, want 1", got)
	}
	// Size is untouched by shifts.
	if b.Width() != 20 || b.Height() != 10 {
		t.Errorf("size changed to %dx%d", b.Width(), b.Height())
	}
}

func TestShiftAccumulatesSubCellMotion(t *testing.T) {
	world := NewDimension(100, 80)
	b := NewBounds(world, mgl64.Vec2{10, 10}, Point{X: 5, Y: 5})

	for i := 0; i < 4; i++ {
		b.Shift(mgl64.Vec2{0.25, 0})
	}
	if got := b.Left(); got != 11 {
		t.Errorf("Left after 4 quarter-cell shifts = %d, want 11", got)
	}
}

func TestGrow(t *testing.T) {
	world := NewDimension(100, 80)
	b := NewBounds(world, mgl64.Vec2{10, 10}, Point{X: 5, Y: 5})

	b.Grow(8, 16)
	if b.Width() != 13 || b.Height() != 21 {
		t.Errorf("size after grow = %dx%d, want 13x21", b.Width(), b.Height())
	}
	// Growth is one-sided towards (+x,+y): origin does not move.
	if b.Left() != 10 || b.Top() != 10 {
		t.Errorf("origin moved to (%d,%d)", b.Left(), b.Top())
	}
}

func TestGrowPanicsBeyondWorld(t *testing.T) {
	world := NewDimension(100, 80)
	b := NewBounds(world, mgl64.Vec2{0, 0}, Point{X: 95, Y: 10})
	defer func() {
		if recover() == nil {
			t.Error("expected panic growing width past the world")
		}
	}()
	b.Grow(6, 0)
}

func TestIndexPanicsOutsideFootprint(t *testing.T) {
	world := NewDimension(100, 80)
	b := NewBounds(world, mgl64.Vec2{0, 0}, Point{X: 10, Y: 10})
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-footprint local point")
		}
	}()
	b.Index(Point{X: 10, Y: 0})
}

func TestNewBoundsPanicsWhenLargerThanWorld(t *testing.T) {
	world := NewDimension(100, 80)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for oversized bounds")
		}
	}()
	NewBounds(world, mgl64.Vec2{0, 0}, Point{X: 101, Y: 10})
}
