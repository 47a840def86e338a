package lithosphere

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/onuse/lithogen/internal/geom"
	"github.com/onuse/lithogen/internal/grid"
	"github.com/onuse/lithogen/internal/plate"
	"github.com/onuse/lithogen/internal/worldparams"
)

// plateArea tracks one plate's territory while it grows by flood-fill: the
// list of owned cells still adjacent to unclaimed territory, and the seed
// cell the plate grew from (used afterwards to compute a toroidal-aware
// bounding box).
type plateArea struct {
	border           []int
	originX, originY int
}

// createPlates selects params.NumPlates random seed cells, grows them
// concurrently across the world grid by repeated random-border expansion
// until every cell is owned, then instantiates one Plate per owned region.
func (l *Lithosphere) createPlates() {
	numPlates := l.params.NumPlates
	w, h := l.worldDim.W, l.worldDim.H
	area := w * h

	areas := make([]plateArea, numPlates)
	l.owner.Clear(NoOwner)

	for i := 0; i < numPlates; i++ {
		p := l.rng.NextIntn(area)
		origin := l.worldDim.CoordOf(p)
		areas[i] = plateArea{border: []int{p}, originX: origin.X, originY: origin.Y}
		l.owner.SetAt(p, i)
	}

	l.growPlates(areas)

	for i := 0; i < l.owner.Len(); i++ {
		o := l.owner.Get(i)
		if o < 0 || o >= numPlates {
			panic(fmt.Sprintf("lithosphere: world cell %d was not assigned to any plate during create_plates", i))
		}
	}

	bounds := l.computeBoundingBoxes(areas)

	l.plates = make([]*plate.Plate, numPlates)
	for i := 0; i < numPlates; i++ {
		b := bounds[i]
		left, top := b.Left(), b.Top()
		width, height := b.Width(), b.Height()

		hg := grid.New[float64](width, height)
		ag := grid.New[int](width, height)
		for ly := 0; ly < height; ly++ {
			for lx := 0; lx < width; lx++ {
				wp := l.worldDim.Wrap(geom.Point{X: left + lx, Y: top + ly})
				idx := l.worldDim.IndexOf(wp)
				if l.owner.Get(idx) == i {
					hg.Set(lx, ly, l.height.Get(idx))
				}
			}
		}

		plateRNG := l.rng.Fork()
		l.plates[i] = plate.New(i, l.worldDim, b, hg, ag, &l.params, plateRNG)
	}

	l.iterCount = numPlates + worldparams.MaxBuoyancyAge
	l.peakEk = 0
	l.lastCollCount = 0
}

// growPlates repeatedly picks a uniformly random border cell from each plate
// with a nonempty border, claims any still-unowned 4-neighbor for that
// plate, and pops the processed cell by swap-with-back, until every plate's
// border is empty (equivalently, until every world cell is owned).
func (l *Lithosphere) growPlates(areas []plateArea) {
	for {
		maxBorder := 0
		for i := range areas {
			n := len(areas[i].border)
			if n == 0 {
				continue
			}
			if n > maxBorder {
				maxBorder = n
			}

			j := l.rng.NextIntn(n)
			pt := l.worldDim.CoordOf(areas[i].border[j])

			neighbors := [4]geom.Point{
				{X: pt.X, Y: l.worldDim.YMod(pt.Y - 1)},
				{X: pt.X, Y: l.worldDim.YMod(pt.Y + 1)},
				{X: l.worldDim.XMod(pt.X - 1), Y: pt.Y},
				{X: l.worldDim.XMod(pt.X + 1), Y: pt.Y},
			}
			for _, np := range neighbors {
				ni := l.worldDim.IndexOf(np)
				if l.owner.Get(ni) == NoOwner {
					l.owner.SetAt(ni, i)
					areas[i].border = append(areas[i].border, ni)
				}
			}

			last := len(areas[i].border) - 1
			areas[i].border[j] = areas[i].border[last]
			areas[i].border = areas[i].border[:last]
		}
		if maxBorder == 0 {
			return
		}
	}
}

// computeBoundingBoxes derives each plate's tight world-coordinate bounding
// box in a single pass over the owner grid, tracking each plate's min/max
// signed toroidal offset from its seed cell. Deriving the box from the
// finished partition, rather than incrementally during growth, means it can
// never drift from the true occupied footprint.
func (l *Lithosphere) computeBoundingBoxes(areas []plateArea) []geom.Bounds {
	w, h := l.worldDim.W, l.worldDim.H
	n := len(areas)
	minDX, maxDX := make([]int, n), make([]int, n)
	minDY, maxDY := make([]int, n), make([]int, n)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := l.worldDim.IndexOf(geom.Point{X: x, Y: y})
			p := l.owner.Get(idx)
			dx := wrapSigned(x-areas[p].originX, w)
			dy := wrapSigned(y-areas[p].originY, h)
			if dx < minDX[p] {
				minDX[p] = dx
			}
			if dx > maxDX[p] {
				maxDX[p] = dx
			}
			if dy < minDY[p] {
				minDY[p] = dy
			}
			if dy > maxDY[p] {
				maxDY[p] = dy
			}
		}
	}

	out := make([]geom.Bounds, n)
	for i := 0; i < n; i++ {
		left := l.worldDim.XMod(areas[i].originX + minDX[i])
		top := l.worldDim.YMod(areas[i].originY + minDY[i])
		width := maxDX[i] - minDX[i] + 1
		if width > w {
			width = w
		}
		height := maxDY[i] - minDY[i] + 1
		if height > h {
			height = h
		}
		out[i] = geom.NewBounds(l.worldDim, mgl64.Vec2{float64(left), float64(top)}, geom.Point{X: width, Y: height})
	}
	return out
}
