// Package noise generates the initial heightmap the lithosphere partitions
// into plates.
package noise

import (
	"github.com/onuse/lithogen/internal/grid"
	"github.com/onuse/lithogen/internal/prng"
)

// Source produces a width x height noise field, normalized to [0,1].
type Source interface {
	Generate(width, height int, rng *prng.PRNG) (*grid.Grid[float64], error)
}

func normalize(g *grid.Grid[float64]) {
	if g.Len() == 0 {
		return
	}
	min, max := g.Get(0), g.Get(0)
	for i := 0; i < g.Len(); i++ {
		v := g.Get(i)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	diff := max - min
	if diff <= 0 {
		return
	}
	for i := 0; i < g.Len(); i++ {
		g.SetAt(i, (g.Get(i)-min)/diff)
	}
}
