// Package segment implements per-plate bookkeeping of connected continental
// regions: bounding box, area, collision count, and lazy 4-connected
// flood-fill discovery.
package segment

import (
	"fmt"

	"github.com/onuse/lithogen/internal/grid"
)

// Unassigned marks a cell that has not yet been claimed by a segment.
const Unassigned = -1

// Record is one connected continental region within a single plate.
type Record struct {
	Left, Top, Right, Bottom int // local coords; Right/Bottom exclusive
	Area                     int
	Collisions               int
	Exists                   bool
}

func (r *Record) enlargeToContain(x, y int) {
	if x < r.Left {
		r.Left = x
	}
	if x+1 > r.Right {
		r.Right = x + 1
	}
	if y < r.Top {
		r.Top = y
	}
	if y+1 > r.Bottom {
		r.Bottom = y + 1
	}
}

// Segments is the per-plate segment-id grid plus the segment records it indexes.
type Segments struct {
	ids           *grid.Grid[int]
	records       []Record
	width, height int
}

// New allocates an empty Segments for a width x height plate.
func New(width, height int) *Segments {
	return &Segments{
		ids:    grid.Fill[int](width, height, Unassigned),
		width:  width,
		height: height,
	}
}

// Reset clears every segment record and marks every cell unassigned. Segment
// ids start again from 0 afterwards.
func (s *Segments) Reset() {
	s.ids.Clear(Unassigned)
	s.records = s.records[:0]
}

// Shift adds (dx,dy) to every record's bounding box — used when the plate grows
// and local coordinates shift.
func (s *Segments) Shift(dx, dy int) {
	for i := range s.records {
		s.records[i].Left += dx
		s.records[i].Right += dx
		s.records[i].Top += dy
		s.records[i].Bottom += dy
	}
}

// Reassign installs a resized/remapped id grid after plate growth. The caller is
// responsible for building newIDs (typically via Grid.Resize with Unassigned
// fill) so that existing cell->segment assignments carry over at their new
// offset.
func (s *Segments) Reassign(newIDs *grid.Grid[int]) {
	s.ids = newIDs
	s.width = newIDs.Width()
	s.height = newIDs.Height()
}

// IDsGrid exposes the backing id grid, e.g. for Grid.Resize when a plate grows.
func (s *Segments) IDsGrid() *grid.Grid[int] {
	return s.ids
}

// IDAt returns the raw segment id at (x,y), or Unassigned.
func (s *Segments) IDAt(x, y int) int {
	return s.ids.At(x, y)
}

// Exists reports whether segment id is a valid, non-donated record.
func (s *Segments) Exists(id int) bool {
	return id >= 0 && id < len(s.records) && s.records[id].Exists
}

// Record returns the record for id, asserting it is in range.
func (s *Segments) Record(id int) Record {
	if id < 0 || id >= len(s.records) {
		panic(fmt.Sprintf("segment: id %d out of range (have %d records)", id, len(s.records)))
	}
	return s.records[id]
}

// Len returns the number of records ever created (including donated ones).
func (s *Segments) Len() int {
	return len(s.records)
}

// IncCollision increments the collision counter of id and returns its area.
func (s *Segments) IncCollision(id int) int {
	s.records[id].Collisions++
	return s.records[id].Area
}

// MarkDonated marks id non-existent (after its crust has been donated away).
func (s *Segments) MarkDonated(id int) {
	s.records[id].Exists = false
}

// AssignCell sets the segment id of (x,y) to id, growing id's bounding box and
// area counter to include the cell. Used when crust is added to an existing
// segment from outside its current box.
func (s *Segments) AssignCell(x, y, id int) {
	prev := s.ids.At(x, y)
	s.ids.Set(x, y, id)
	if prev != id {
		s.records[id].Area++
	}
	s.records[id].enlargeToContain(x, y)
}

// eligible reports whether (x,y) is unassigned, continental crust.
func (s *Segments) eligible(heights *grid.Grid[float64], continentalBase float64, x, y int) bool {
	return s.ids.At(x, y) == Unassigned && heights.At(x, y) >= continentalBase
}

// wrapNeighbor computes the neighbor of (x,y) in direction (dx,dy), wrapping
// on an axis only when that axis spans the whole world (wrapX/wrapY). Returns
// ok=false when the neighbor would fall outside a non-wrapping axis.
func wrapNeighbor(x, y, dx, dy, width, height int, wrapX, wrapY bool) (nx, ny int, ok bool) {
	nx, ny = x+dx, y+dy
	if nx < 0 || nx >= width {
		if !wrapX {
			return 0, 0, false
		}
		nx = ((nx % width) + width) % width
	}
	if ny < 0 || ny >= height {
		if !wrapY {
			return 0, 0, false
		}
		ny = ((ny % height) + height) % height
	}
	return nx, ny, true
}

// GetContinentAt returns the segment id assigned at (x,y), lazily invoking
// CreateSegment when the cell is not yet assigned.
func (s *Segments) GetContinentAt(heights *grid.Grid[float64], continentalBase float64, wrapX, wrapY bool, x, y int) int {
	if id := s.ids.At(x, y); id != Unassigned {
		return id
	}
	return s.CreateSegment(heights, continentalBase, wrapX, wrapY, x, y)
}

// CreateSegment performs a 4-connected flood fill from (x,y) across cells whose
// height is at least continentalBase and whose segment id is still unassigned.
// It never reclassifies an already-assigned cell. Queue-driven, so each cell is
// visited at most once: O(area) in the size of the discovered region.
func (s *Segments) CreateSegment(heights *grid.Grid[float64], continentalBase float64, wrapX, wrapY bool, x, y int) int {
	id := len(s.records)
	rec := Record{Left: x, Right: x + 1, Top: y, Bottom: y + 1, Exists: true}

	if !s.eligible(heights, continentalBase, x, y) {
		// The addressed point itself doesn't qualify; still materialize an empty
		// segment so that callers always get back a valid, if empty, id.
		s.records = append(s.records, rec)
		return id
	}

	type cell struct{ x, y int }
	queue := []cell{{x, y}}
	s.ids.Set(x, y, id)
	area := 0

	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		area++
		rec.enlargeToContain(c.x, c.y)

		for _, d := range dirs {
			nx, ny, ok := wrapNeighbor(c.x, c.y, d[0], d[1], s.width, s.height, wrapX, wrapY)
			if !ok {
				continue
			}
			if !s.eligible(heights, continentalBase, nx, ny) {
				continue
			}
			s.ids.Set(nx, ny, id)
			queue = append(queue, cell{nx, ny})
		}
	}

	rec.Area = area
	s.records = append(s.records, rec)
	return id
}
