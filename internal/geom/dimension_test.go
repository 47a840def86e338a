package geom

import "testing"

func TestDimensionIndexRoundTrip(t *testing.T) {
	d := NewDimension(7, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			p := Point{X: x, Y: y}
			i := d.IndexOf(p)
			if i != y*7+x {
				t.Fatalf("IndexOf(%v) = %d, want %d", p, i, y*7+x)
			}
			if got := d.CoordOf(i); got != p {
				t.Fatalf("CoordOf(%d) = %v, want %v", i, got, p)
			}
		}
	}
}

func TestDimensionWrap(t *testing.T) {
	d := NewDimension(10, 6)
	cases := []struct {
		in, want Point
	}{
		{Point{0, 0}, Point{0, 0}},
		{Point{10, 6}, Point{0, 0}},
		{Point{-1, -1}, Point{9, 5}},
		{Point{23, 13}, Point{3, 1}},
		{Point{-11, -7}, Point{9, 5}},
	}
	for _, tc := range cases {
		if got := d.Wrap(tc.in); got != tc.want {
			t.Errorf("Wrap(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDimensionContains(t *testing.T) {
	d := NewDimension(10, 6)
	if !d.Contains(Point{0, 0}) || !d.Contains(Point{9, 5}) {
		t.Error("corner points should be contained")
	}
	for _, p := range []Point{{10, 0}, {0, 6}, {-1, 0}, {0, -1}} {
		if d.Contains(p) {
			t.Errorf("Contains(%v) = true, want false", p)
		}
	}
}

func TestDimensionCaps(t *testing.T) {
	d := NewDimension(10, 6)
	if got := d.XCap(42); got != 9 {
		t.Errorf("XCap(42) = %d, want 9", got)
	}
	if got := d.YCap(42); got != 5 {
		t.Errorf("YCap(42) = %d, want 5", got)
	}
	if got := d.XCap(3); got != 3 {
		t.Errorf("XCap(3) = %d, want 3", got)
	}
}

func TestNewDimensionPanicsOnNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero width")
		}
	}()
	NewDimension(0, 5)
}
