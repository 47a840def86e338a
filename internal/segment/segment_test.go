package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onuse/lithogen/internal/grid"
)

const continentalBase = 1.0

// heightsFrom builds a height grid where '#' marks continental crust.
func heightsFrom(rows []string) *grid.Grid[float64] {
	g := grid.New[float64](len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				g.Set(x, y, continentalBase)
			} else {
				g.Set(x, y, 0.1)
			}
		}
	}
	return g
}

func TestCreateSegmentFloodFillsRegion(t *testing.T) {
	heights := heightsFrom([]string{
		".....",
		".##..",
		".##..",
		".....",
	})
	s := New(5, 4)

	id := s.CreateSegment(heights, continentalBase, false, false, 1, 1)
	require.Equal(t, 0, id)

	rec := s.Record(id)
	assert.True(t, rec.Exists)
	assert.Equal(t, 4, rec.Area)
	assert.Equal(t, 1, rec.Left)
	assert.Equal(t, 3, rec.Right)
	assert.Equal(t, 1, rec.Top)
	assert.Equal(t, 3, rec.Bottom)

	// Every blob cell is assigned, nothing else is.
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			want := Unassigned
			if x >= 1 && x <= 2 && y >= 1 && y <= 2 {
				want = id
			}
			assert.Equal(t, want, s.IDAt(x, y), "cell (%d,%d)", x, y)
		}
	}
}

func TestCreateSegmentSeparatesDisconnectedRegions(t *testing.T) {
	heights := heightsFrom([]string{
		"#...#",
		".....",
	})
	s := New(5, 2)

	a := s.CreateSegment(heights, continentalBase, false, false, 0, 0)
	b := s.CreateSegment(heights, continentalBase, false, false, 4, 0)
	require.NotEqual(t, a, b)
	assert.Equal(t, 1, s.Record(a).Area)
	assert.Equal(t, 1, s.Record(b).Area)
	assert.Equal(t, 2, s.Len())
}

func TestCreateSegmentWrapsOnlyWhenAxisSpansWorld(t *testing.T) {
	heights := heightsFrom([]string{
		"#..#",
		"....",
	})

	// With horizontal wrap the two edge cells form one region.
	s := New(4, 2)
	id := s.CreateSegment(heights, continentalBase, true, false, 0, 0)
	assert.Equal(t, 2, s.Record(id).Area)
	assert.Equal(t, id, s.IDAt(3, 0))

	// Without wrap they stay separate.
	s = New(4, 2)
	id = s.CreateSegment(heights, continentalBase, false, false, 0, 0)
	assert.Equal(t, 1, s.Record(id).Area)
	assert.Equal(t, Unassigned, s.IDAt(3, 0))
}

func TestCreateSegmentNeverReclassifies(t *testing.T) {
	heights := heightsFrom([]string{
		"##",
		"..",
	})
	s := New(2, 2)

	a := s.CreateSegment(heights, continentalBase, false, false, 0, 0)
	require.Equal(t, 2, s.Record(a).Area)

	// The whole row is already assigned: addressing it again materializes a
	// fresh empty segment rather than stealing cells.
	b := s.CreateSegment(heights, continentalBase, false, false, 1, 0)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 0, s.Record(b).Area)
	assert.Equal(t, a, s.IDAt(1, 0))
}

func TestGetContinentAtIsLazy(t *testing.T) {
	heights := heightsFrom([]string{
		"##.",
		"...",
	})
	s := New(3, 2)

	a := s.GetContinentAt(heights, continentalBase, false, false, 0, 0)
	b := s.GetContinentAt(heights, continentalBase, false, false, 1, 0)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, s.Len())
}

func TestIncCollision(t *testing.T) {
	heights := heightsFrom([]string{
		"##",
		"#.",
	})
	s := New(2, 2)
	id := s.CreateSegment(heights, continentalBase, false, false, 0, 0)

	area := s.IncCollision(id)
	assert.Equal(t, 3, area)
	assert.Equal(t, 1, s.Record(id).Collisions)
	s.IncCollision(id)
	assert.Equal(t, 2, s.Record(id).Collisions)
}

func TestAssignCellGrowsAreaAndBox(t *testing.T) {
	heights := heightsFrom([]string{
		"#..",
		"...",
	})
	s := New(3, 2)
	id := s.CreateSegment(heights, continentalBase, false, false, 0, 0)

	s.AssignCell(2, 1, id)
	rec := s.Record(id)
	assert.Equal(t, 2, rec.Area)
	assert.Equal(t, 3, rec.Right)
	assert.Equal(t, 2, rec.Bottom)
	assert.Equal(t, id, s.IDAt(2, 1))

	// Re-assigning the same cell must not double-count its area.
	s.AssignCell(2, 1, id)
	assert.Equal(t, 2, s.Record(id).Area)
}

func TestMarkDonated(t *testing.T) {
	heights := heightsFrom([]string{"#"})
	s := New(1, 1)
	id := s.CreateSegment(heights, continentalBase, false, false, 0, 0)

	assert.True(t, s.Exists(id))
	s.MarkDonated(id)
	assert.False(t, s.Exists(id))
	// The slot itself is not reclaimed until Reset.
	assert.Equal(t, 1, s.Len())
}

func TestResetClearsEverything(t *testing.T) {
	heights := heightsFrom([]string{
		"##",
		"##",
	})
	s := New(2, 2)
	s.CreateSegment(heights, continentalBase, false, false, 0, 0)

	s.Reset()
	assert.Equal(t, 0, s.Len())
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, Unassigned, s.IDAt(x, y))
		}
	}
}

func TestShiftTranslatesBoundingBoxes(t *testing.T) {
	heights := heightsFrom([]string{
		"#.",
		"..",
	})
	s := New(2, 2)
	id := s.CreateSegment(heights, continentalBase, false, false, 0, 0)

	s.Shift(3, 5)
	rec := s.Record(id)
	assert.Equal(t, 3, rec.Left)
	assert.Equal(t, 4, rec.Right)
	assert.Equal(t, 5, rec.Top)
	assert.Equal(t, 6, rec.Bottom)
}

func TestReassignAfterGrowth(t *testing.T) {
	heights := heightsFrom([]string{
		"#.",
		"..",
	})
	s := New(2, 2)
	id := s.CreateSegment(heights, continentalBase, false, false, 0, 0)

	bigger := s.IDsGrid().Resize(4, 4, 1, 2, Unassigned)
	s.Reassign(bigger)
	s.Shift(1, 2)

	assert.Equal(t, id, s.IDAt(1, 2))
	assert.Equal(t, Unassigned, s.IDAt(0, 0))
	rec := s.Record(id)
	assert.Equal(t, 1, rec.Left)
	assert.Equal(t, 2, rec.Top)
}

func TestRecordPanicsOutOfRange(t *testing.T) {
	s := New(2, 2)
	assert.Panics(t, func() { s.Record(0) })
}
