package grid

import "testing"

func TestSetAndAt(t *testing.T) {
	g := New[float64](4, 3)
	g.Set(2, 1, 7.5)
	if got := g.At(2, 1); got != 7.5 {
		t.Errorf("At(2,1) = %v, want 7.5", got)
	}
	if got := g.Get(1*4 + 2); got != 7.5 {
		t.Errorf("flat Get = %v, want 7.5", got)
	}
}

func TestFill(t *testing.T) {
	g := Fill[int](3, 3, -1)
	for i := 0; i < g.Len(); i++ {
		if g.Get(i) != -1 {
			t.Fatalf("cell %d = %d, want -1", i, g.Get(i))
		}
	}
}

func TestIndexPanicsOutOfRange(t *testing.T) {
	g := New[int](4, 3)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range coordinate")
		}
	}()
	g.At(4, 0)
}

func TestCloneIsIndependent(t *testing.T) {
	g := New[float64](2, 2)
	g.Set(0, 0, 1)
	c := g.Clone()
	c.Set(0, 0, 9)
	if g.At(0, 0) != 1 {
		t.Error("mutating clone leaked into original")
	}
}

func TestResizeCopiesAtOffset(t *testing.T) {
	g := New[int](2, 2)
	g.Set(0, 0, 1)
	g.Set(1, 0, 2)
	g.Set(0, 1, 3)
	g.Set(1, 1, 4)

	out := g.Resize(5, 4, 2, 1, -1)
	if out.Width() != 5 || out.Height() != 4 {
		t.Fatalf("resized to %dx%d, want 5x4", out.Width(), out.Height())
	}
	if out.At(2, 1) != 1 || out.At(3, 1) != 2 || out.At(2, 2) != 3 || out.At(3, 2) != 4 {
		t.Error("original contents not found at offset (2,1)")
	}
	if out.At(0, 0) != -1 || out.At(4, 3) != -1 {
		t.Error("padding cells not set to fill value")
	}
}

func TestClear(t *testing.T) {
	g := Fill[float64](3, 2, 5)
	g.Clear(0)
	for i := 0; i < g.Len(); i++ {
		if g.Get(i) != 0 {
			t.Fatalf("cell %d not cleared", i)
		}
	}
}
