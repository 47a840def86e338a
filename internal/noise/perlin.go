package noise

import (
	"github.com/aquilax/go-perlin"

	"github.com/onuse/lithogen/internal/grid"
	"github.com/onuse/lithogen/internal/prng"
)

// Perlin generates fractal terrain by summing octaves of coherent gradient
// noise, sampled on a grid scaled by Frequency.
type Perlin struct {
	// Alpha weights each successive octave's contribution; Beta scales the
	// sampling frequency between octaves; Octaves is the number of summed
	// layers. Zero values fall back to the library's own defaults (2, 2, 3).
	Alpha, Beta float64
	Octaves     int32

	// Frequency controls how many noise periods span the generated field;
	// smaller values produce broader, smoother continents.
	Frequency float64
}

// Generate builds a width x height noise field. The master rng's next u32
// seeds the perlin generator, keeping the whole construction deterministic
// from a single PRNG stream.
func (p Perlin) Generate(width, height int, rng *prng.PRNG) (*grid.Grid[float64], error) {
	alpha, beta, octaves := p.Alpha, p.Beta, p.Octaves
	if alpha == 0 {
		alpha = 2
	}
	if beta == 0 {
		beta = 2
	}
	if octaves == 0 {
		octaves = 3
	}
	freq := p.Frequency
	if freq <= 0 {
		freq = 0.05
	}

	gen := perlin.NewPerlin(alpha, beta, int(octaves), int64(rng.NextU32()))

	field := grid.New[float64](width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			field.Set(x, y, gen.Noise2D(float64(x)*freq, float64(y)*freq))
		}
	}

	normalize(field)
	return field, nil
}
