package plate

import (
	"github.com/onuse/lithogen/internal/geom"
	"github.com/onuse/lithogen/internal/grid"
	"github.com/onuse/lithogen/internal/mass"
)

// neighborSample is one of the four axis-aligned neighbors of a cell, with its
// height masked to zero when the direction is inaccessible (a non-wrapping
// plate edge) or not lower than the cell itself.
type neighborSample struct {
	point  geom.Point
	height float64
}

// neighbors returns the four masked neighbor samples of (x,y): a direction
// counts only when it is reachable (wrap-aware per wrapX/wrapY) and strictly
// lower than the current cell, so water only ever flows downhill.
func (p *Plate) neighbors(x, y int, wrapX, wrapY bool) (w, e, n, s neighborSample) {
	width, height := p.height.Width(), p.height.Height()
	current := p.height.At(x, y)

	sample := func(px, py int, ok bool) neighborSample {
		if !ok {
			return neighborSample{point: geom.Point{X: x, Y: y}}
		}
		h := p.height.At(px, py)
		if h >= current {
			return neighborSample{point: geom.Point{X: px, Y: py}}
		}
		return neighborSample{point: geom.Point{X: px, Y: py}, height: h}
	}

	switch {
	case x > 0:
		w = sample(x-1, y, true)
	case wrapX:
		w = sample(width-1, y, true)
	default:
		w = sample(x, y, false)
	}

	switch {
	case x < width-1:
		e = sample(x+1, y, true)
	case wrapX:
		e = sample(0, y, true)
	default:
		e = sample(x, y, false)
	}

	switch {
	case y > 0:
		n = sample(x, y-1, true)
	case wrapY:
		n = sample(x, height-1, true)
	default:
		n = sample(x, y, false)
	}

	switch {
	case y < height-1:
		s = sample(x, y+1, true)
	case wrapY:
		s = sample(x, 0, true)
	default:
		s = sample(x, y, false)
	}

	return w, e, n, s
}

// findRiverSources locates every cell at or above lowerBound whose four
// neighbors are all reachable and strictly lower (with nonzero height): the
// candidate tops rivers flow from. A cell on a non-wrapping plate edge never
// qualifies.
func (p *Plate) findRiverSources(lowerBound float64, wrapX, wrapY bool) []geom.Point {
	var sources []geom.Point
	width, height := p.height.Width(), p.height.Height()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if p.height.At(x, y) < lowerBound {
				continue
			}
			w, e, n, s := p.neighbors(x, y, wrapX, wrapY)
			if w.height*e.height*n.height*s.height == 0 {
				continue
			}
			sources = append(sources, geom.Point{X: x, Y: y})
		}
	}
	return sources
}

// flowRivers walks water downhill from each source in waves, eroding every
// cell it passes through into tmp by 20% of its height above lowerBound, and
// never revisiting a cell once it has flowed through it.
func (p *Plate) flowRivers(lowerBound float64, sources []geom.Point, tmp *grid.Grid[float64], wrapX, wrapY bool) {
	width, height := p.height.Width(), p.height.Height()
	visited := make([]bool, width*height)

	for len(sources) > 0 {
		var sinks []geom.Point
		for len(sources) > 0 {
			pt := sources[len(sources)-1]
			sources = sources[:len(sources)-1]
			x, y := pt.X, pt.Y

			if p.height.At(x, y) < lowerBound {
				continue
			}

			w, e, n, s := p.neighbors(x, y, wrapX, wrapY)
			if w.height+e.height+n.height+s.height == 0 {
				continue
			}

			current := p.height.At(x, y)
			fill := func(ns neighborSample) neighborSample {
				if ns.height == 0 {
					ns.height = current
				}
				return ns
			}
			w, e, n, s = fill(w), fill(e), fill(n), fill(s)

			dest, lowest := w.point, w.height
			if e.height < lowest {
				dest, lowest = e.point, e.height
			}
			if n.height < lowest {
				dest, lowest = n.point, n.height
			}
			if s.height < lowest {
				dest = s.point
			}

			destIdx := dest.Y*width + dest.X
			if !visited[destIdx] {
				visited[destIdx] = true
				sinks = append(sinks, dest)
			}

			v := tmp.At(x, y)
			tmp.Set(x, y, v-(v-lowerBound)*0.2)
		}
		sources = sinks
	}
}

func clampNonNegative(g *grid.Grid[float64]) {
	for i := 0; i < g.Len(); i++ {
		if g.Get(i) < 0 {
			g.SetAt(i, 0)
		}
	}
}

// Erode performs one pass of river-flow erosion followed by crust
// redistribution away from local peaks, leaving cell ages untouched.
func (p *Plate) Erode(lowerBound float64) {
	wrapX, wrapY := p.wraps()
	width, height := p.height.Width(), p.height.Height()

	tmp := p.height.Clone()
	sources := p.findRiverSources(lowerBound, wrapX, wrapY)
	p.flowRivers(lowerBound, sources, tmp, wrapX, wrapY)

	for i := 0; i < tmp.Len(); i++ {
		v := tmp.Get(i)
		alpha := 0.2 * p.rng.NextDouble()
		tmp.SetAt(i, v+0.1*v-alpha*v)
	}
	clampNonNegative(tmp)
	p.height = tmp

	redistributed := grid.Fill[float64](width, height, 0)
	var acc mass.Accumulator

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			h := p.height.At(x, y)
			acc.AddPoint(x, y, h)
			redistributed.Set(x, y, redistributed.At(x, y)+h)

			if h < lowerBound {
				continue
			}
			w, e, n, s := p.neighbors(x, y, wrapX, wrapY)
			if w.height+e.height+n.height+s.height == 0 {
				continue
			}

			wDiff, eDiff, nDiff, sDiff := h-w.height, h-e.height, h-n.height, h-s.height
			minDiff := wDiff
			if eDiff < minDiff {
				minDiff = eDiff
			}
			if nDiff < minDiff {
				minDiff = nDiff
			}
			if sDiff < minDiff {
				minDiff = sDiff
			}

			diffSum := 0.0
			count := 0
			add := func(ns neighborSample, diff float64) {
				if ns.height <= 0 {
					return
				}
				diffSum += diff - minDiff
				count++
			}
			add(w, wDiff)
			add(e, eDiff)
			add(n, nDiff)
			add(s, sDiff)

			if diffSum < minDiff {
				spill := func(ns neighborSample, diff float64) {
					if ns.height <= 0 {
						return
					}
					redistributed.Set(ns.point.X, ns.point.Y, redistributed.At(ns.point.X, ns.point.Y)+(diff-minDiff))
				}
				spill(w, wDiff)
				spill(e, eDiff)
				spill(n, nDiff)
				spill(s, sDiff)
				redistributed.Set(x, y, redistributed.At(x, y)-minDiff)

				remainder := (minDiff - diffSum) / float64(1+count)
				redistributed.Set(x, y, redistributed.At(x, y)+remainder)
				levelOut := func(ns neighborSample) {
					if ns.height <= 0 {
						return
					}
					redistributed.Set(ns.point.X, ns.point.Y, redistributed.At(ns.point.X, ns.point.Y)+remainder)
				}
				levelOut(w)
				levelOut(e)
				levelOut(n)
				levelOut(s)
			} else {
				unit := minDiff / diffSum
				redistributed.Set(x, y, redistributed.At(x, y)-minDiff)
				spread := func(ns neighborSample, diff float64) {
					if ns.height <= 0 {
						return
					}
					redistributed.Set(ns.point.X, ns.point.Y, redistributed.At(ns.point.X, ns.point.Y)+unit*(diff-minDiff))
				}
				spread(w, wDiff)
				spread(e, eDiff)
				spread(n, nDiff)
				spread(s, sDiff)
			}
		}
	}

	clampNonNegative(redistributed)
	p.height = redistributed
	p.massAcc = acc.Build()
}
