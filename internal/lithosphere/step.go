package lithosphere

import (
	"fmt"

	"github.com/onuse/lithogen/internal/geom"
	"github.com/onuse/lithogen/internal/grid"
	"github.com/onuse/lithogen/internal/plate"
	"github.com/onuse/lithogen/internal/worldparams"
)

// Update advances the simulation by one iteration. Any invariant violation
// raised as a panic by a lower package during the step is recovered here and
// reported as an *InvariantError; the engine should be discarded by the
// caller if that ever happens. The returned bool is the post-step
// IsFinished() value, so a driver doesn't need a second call after a restart
// that emptied the plate list.
func (l *Lithosphere) Update() (finished bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &InvariantError{Msg: fmt.Sprint(r)}
		}
	}()
	l.step()
	return l.IsFinished(), nil
}

func (l *Lithosphere) step() {
	totalSpeed := 0.0
	totalKinetic := 0.0
	for _, pl := range l.plates {
		totalSpeed += pl.Speed()
		totalKinetic += pl.Mass() * pl.Speed()
	}
	if totalKinetic > l.peakEk {
		l.peakEk = totalKinetic
	}

	if totalSpeed < worldparams.RestartSpeedLimit ||
		totalKinetic/l.peakEk < worldparams.RestartEnergyRatio ||
		l.lastCollCount > worldparams.NoCollisionTimeLimit ||
		l.iterCount > worldparams.RestartIterations {
		l.restart()
		return
	}

	prevOwner := l.owner.Clone()

	for _, pl := range l.plates {
		pl.ResetSegments()
		pl.Move()
	}

	if l.params.ErosionPeriod > 0 && l.iterCount%l.params.ErosionPeriod == 0 {
		for _, pl := range l.plates {
			pl.Erode(worldparams.ContinentalBase)
		}
	}

	continentalCollisions := l.compositePlates()
	if continentalCollisions == 0 {
		l.lastCollCount++
	}

	for _, pl := range l.plates {
		for _, ev := range pl.Subductions {
			other := l.plates[ev.OtherIndex]
			pl.AddCrustBySubduction(ev.Point, ev.Crust, l.iterCount, other.VelocityUnit())
		}
		pl.ClearSubductions()
	}

	l.updateCollisions()

	l.regenerateCrust(prevOwner)
	l.removeEmptyPlates()
	l.applyBuoyancyAging()

	l.iterCount++
}

// compositePlates clears the world grids and re-derives them from every
// plate's local crust, classifying each write as first-owner, subduction, or
// continental juxtaposition. It returns the number of continental-continental
// juxtapositions resolved.
func (l *Lithosphere) compositePlates() int {
	l.height.Clear(0)
	l.owner.Clear(NoOwner)
	continentalCollisions := 0

	for _, pl := range l.plates {
		hg := pl.HeightGrid()
		ag := pl.AgeGrid()
		b := pl.Bounds()
		x0, y0 := b.Left(), b.Top()
		w, h := b.Width(), b.Height()

		for ly := 0; ly < h; ly++ {
			for lx := 0; lx < w; lx++ {
				localHeight := hg.At(lx, ly)
				if localHeight < 2*worldparams.FloatEpsilon {
					continue
				}

				wp := l.worldDim.Wrap(geom.Point{X: x0 + lx, Y: y0 + ly})
				idx := l.worldDim.IndexOf(wp)
				localAge := ag.At(lx, ly)

				if l.owner.Get(idx) == NoOwner {
					l.height.SetAt(idx, localHeight)
					l.owner.SetAt(idx, pl.Index())
					l.age.SetAt(idx, localAge)
					continue
				}

				worldHeight := l.height.Get(idx)
				otherIdx := l.owner.Get(idx)
				other := l.plates[otherIdx]

				prevIsOceanic := worldHeight < worldparams.ContinentalBase
				thisIsOceanic := localHeight < worldparams.ContinentalBase
				// Heights within 2*epsilon of each other are a tie, broken
				// by crust timestamp: the previous crust counts as buoyant
				// when its timestamp is at least this plate's.
				prevTimestamp := other.GetCrustTimestamp(wp)
				prevIsBuoyant := worldHeight > localHeight ||
					(worldHeight+2*worldparams.FloatEpsilon > localHeight &&
						worldHeight < localHeight+2*worldparams.FloatEpsilon &&
						prevTimestamp >= localAge)

				if thisIsOceanic && prevIsBuoyant {
					// This plate subducts. The sediment transferred scales
					// with how much water sits on the submerging crust.
					sediment := worldparams.SubductRatio * worldparams.OceanicBase *
						(worldparams.ContinentalBase - localHeight) / worldparams.ContinentalBase
					other.Subductions = append(other.Subductions, plate.SubductionEvent{OtherIndex: pl.Index(), Point: wp, Crust: sediment})

					// Remove subducted oceanic lithosphere so the remaining
					// crust collides with the correct amount below.
					pl.SetCrust(wp, localHeight-worldparams.OceanicBase, localAge)
					localHeight = hg.At(lx, ly)
					if localHeight <= 0 {
						continue // Nothing more to collide.
					}
				} else if prevIsOceanic {
					sediment := worldparams.SubductRatio * worldparams.OceanicBase *
						(worldparams.ContinentalBase - worldHeight) / worldparams.ContinentalBase
					pl.Subductions = append(pl.Subductions, plate.SubductionEvent{OtherIndex: otherIdx, Point: wp, Crust: sediment})
					other.SetCrust(wp, worldHeight-worldparams.OceanicBase, prevTimestamp)

					newWorldHeight := worldHeight - worldparams.OceanicBase
					l.height.SetAt(idx, newWorldHeight)
					if newWorldHeight <= 0 {
						l.owner.SetAt(idx, pl.Index())
						l.height.SetAt(idx, localHeight)
						l.age.SetAt(idx, localAge)
						continue
					}
				}

				l.resolveJuxtaposition(pl, otherIdx, localAge, localHeight, wp)
				continentalCollisions++
			}
		}
	}
	return continentalCollisions
}

// resolveJuxtaposition handles two continental crusts meeting at wp: the
// smaller participant (by segment area) folds crust onto the larger, and a
// collision event is logged on the donor's bucket.
func (l *Lithosphere) resolveJuxtaposition(this *plate.Plate, otherIdx int, localAge int, localHeight float64, wp geom.Point) {
	other := l.plates[otherIdx]
	idx := l.worldDim.IndexOf(wp)

	thisArea := this.AddCollision(wp)
	otherArea := other.AddCollision(wp)

	if thisArea < otherArea {
		donation := localHeight * l.params.FoldingRatio
		newWorldHeight := l.height.Get(idx) + donation
		l.height.SetAt(idx, newWorldHeight)
		other.SetCrust(wp, newWorldHeight, localAge)
		this.SetCrust(wp, localHeight*(1-l.params.FoldingRatio), localAge)
		this.Collisions = append(this.Collisions, plate.CollisionEvent{OtherIndex: otherIdx, Point: wp, Crust: donation})
		return
	}

	donation := l.height.Get(idx) * l.params.FoldingRatio
	worldAge := l.age.Get(idx)
	worldHeight := l.height.Get(idx)
	this.SetCrust(wp, localHeight+donation, worldAge)
	other.SetCrust(wp, worldHeight*(1-l.params.FoldingRatio), worldAge)
	other.Collisions = append(other.Collisions, plate.CollisionEvent{OtherIndex: this.Index(), Point: wp, Crust: donation})

	l.height.SetAt(idx, localHeight)
	l.owner.SetAt(idx, this.Index())
	l.age.SetAt(idx, localAge)
}

// updateCollisions drains every plate's collision bucket: each event applies
// friction to both participants, then aggregates the smaller's segment into
// the larger (with a Newtonian impulse exchange) once the collision count or
// overlap ratio crosses a threshold.
func (l *Lithosphere) updateCollisions() {
	for _, pl := range l.plates {
		for _, coll := range pl.Collisions {
			other := l.plates[coll.OtherIndex]

			pl.ApplyFriction(coll.Crust)
			other.ApplyFriction(coll.Crust)

			countI, ratioI := pl.CollisionInfo(coll.Point)
			countJ, ratioJ := other.CollisionInfo(coll.Point)

			count := countI
			if countJ < count {
				count = countJ
			}
			ratio := ratioI
			if ratioJ > ratio {
				ratio = ratioJ
			}

			if count > l.params.AggrOverlapAbs || ratio > l.params.AggrOverlapRel {
				donated := pl.AggregateCrust(other, coll.Point)
				other.Collide(pl, donated)
			}
		}
		pl.ClearCollisions()
	}
}

// regenerateCrust gives any cell still lacking an owner after compositing
// fresh oceanic crust, re-healing it onto whichever plate owned it before
// this step. When that plate no longer exists the cell keeps the fresh crust
// but stays unowned for this step.
func (l *Lithosphere) regenerateCrust(prevOwner *grid.Grid[int]) {
	if !l.params.RegenerateOceanicCrust {
		return
	}

	for i := 0; i < l.owner.Len(); i++ {
		if l.owner.Get(i) == NoOwner {
			l.age.SetAt(i, l.iterCount)
			l.height.SetAt(i, worldparams.OceanicBase*worldparams.BuoyancyBonus)
		}
	}

	for i := 0; i < l.owner.Len(); i++ {
		if l.owner.Get(i) != NoOwner {
			continue
		}
		prev := prevOwner.Get(i)
		l.owner.SetAt(i, prev)
		if prev != NoOwner && prev < len(l.plates) {
			l.plates[prev].SetCrust(l.worldDim.CoordOf(i), worldparams.OceanicBase, l.iterCount)
		}
	}

	for i := 0; i < l.height.Len(); i++ {
		if l.height.Get(i) <= 0 {
			l.height.SetAt(i, 2*worldparams.FloatEpsilon)
		}
	}
}

// removeEmptyPlates tallies how many world cells each plate owns after
// compositing and regeneration, and swap-removes any plate that owns none,
// rewriting its slot's occupant's index and every owner-grid reference to
// match. Counting ownership directly off the owner grid keeps the tally
// correct even when oceanic-crust regeneration is disabled.
func (l *Lithosphere) removeEmptyPlates() {
	if len(l.plates) <= 1 {
		return
	}

	counts := make([]int, len(l.plates))
	for i := 0; i < l.owner.Len(); i++ {
		o := l.owner.Get(i)
		if o != NoOwner {
			counts[o]++
		}
	}

	for i := 0; i < len(l.plates); {
		if counts[i] > 0 {
			i++
			continue
		}

		last := len(l.plates) - 1
		l.plates[i] = l.plates[last]
		l.plates[i].SetIndex(i)
		l.plates = l.plates[:last]

		counts[i] = counts[last]
		counts = counts[:last]

		for k := 0; k < l.owner.Len(); k++ {
			if l.owner.Get(k) == last {
				l.owner.SetAt(k, i)
			}
		}
		// Re-examine slot i: the plate swapped in might itself be empty.
	}
}

// applyBuoyancyAging adds a synthetic height boost to young oceanic crust,
// proportional to how recently it formed.
func (l *Lithosphere) applyBuoyancyAging() {
	if worldparams.BuoyancyBonus <= 0 {
		return
	}
	for i := 0; i < l.height.Len(); i++ {
		if l.height.Get(i) >= worldparams.ContinentalBase {
			continue
		}
		// Cells stamped before a restart can carry ages beyond the current
		// (reset) iteration count; they get no bonus.
		crustAge := l.iterCount - l.age.Get(i)
		if crustAge < 0 || crustAge > worldparams.MaxBuoyancyAge {
			continue
		}
		bonus := worldparams.BuoyancyBonus * worldparams.OceanicBase *
			float64(worldparams.MaxBuoyancyAge-crustAge) / float64(worldparams.MaxBuoyancyAge)
		l.height.SetAt(i, l.height.Get(i)+bonus)
	}
}

// restart flattens every plate onto the world heightmap (summing heights,
// averaging ages weighted by height), clears the plate list, and, unless the
// configured cycle budget is exhausted, re-partitions the world into a fresh
// set of plates, restoring each cell's age from the flattened world age grid.
func (l *Lithosphere) restart() {
	unbounded := l.params.NumCycles == 0
	if !unbounded {
		l.cycleCount++
		if l.cycleCount > l.params.NumCycles {
			return
		}
	}

	l.height.Clear(0)
	for _, pl := range l.plates {
		hg := pl.HeightGrid()
		ag := pl.AgeGrid()
		b := pl.Bounds()
		x0, y0 := b.Left(), b.Top()
		w, h := b.Width(), b.Height()

		for ly := 0; ly < h; ly++ {
			for lx := 0; lx < w; lx++ {
				h1 := hg.At(lx, ly)
				wp := l.worldDim.Wrap(geom.Point{X: x0 + lx, Y: y0 + ly})
				idx := l.worldDim.IndexOf(wp)

				h0 := l.height.Get(idx)
				a0 := l.age.Get(idx)
				a1 := ag.At(lx, ly)

				sum := h0 + h1
				if sum > 0 {
					l.age.SetAt(idx, int((h0*float64(a0)+h1*float64(a1))/sum))
				}
				l.height.SetAt(idx, sum)
			}
		}
	}

	l.plates = nil

	if unbounded || l.cycleCount < l.params.NumCycles {
		l.createPlates()
		for _, pl := range l.plates {
			ag := pl.AgeGrid()
			b := pl.Bounds()
			x0, y0 := b.Left(), b.Top()
			w, h := b.Width(), b.Height()
			for ly := 0; ly < h; ly++ {
				for lx := 0; lx < w; lx++ {
					wp := l.worldDim.Wrap(geom.Point{X: x0 + lx, Y: y0 + ly})
					ag.Set(lx, ly, l.age.Get(l.worldDim.IndexOf(wp)))
				}
			}
		}
		return
	}

	l.applyBuoyancyAging()
}
