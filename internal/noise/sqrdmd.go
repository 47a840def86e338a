package noise

import (
	"github.com/onuse/lithogen/internal/grid"
	"github.com/onuse/lithogen/internal/prng"
)

// SquareDiamond generates fractal terrain by midpoint displacement on a
// toroidal power-of-two grid, cropped to the requested size. Because every
// edge wraps, there is exactly one distinct corner instead of four, and the
// diamond/square passes need no special-cased edge handling.
type SquareDiamond struct {
	// Roughness scales the per-pass random displacement; each halving of step
	// size multiplies the remaining displacement by Roughness again.
	Roughness float64
}

// Generate builds a width x height noise field.
func (s SquareDiamond) Generate(width, height int, rng *prng.PRNG) (*grid.Grid[float64], error) {
	m := nextPowerOfTwo(maxInt(width, height))
	field := grid.New[float64](m, m)
	field.Set(0, 0, rng.NextFloatSigned())

	at := func(x, y int) float64 {
		return field.At(((x % m) + m) % m, ((y % m) + m) % m)
	}
	set := func(x, y int, v float64) {
		field.Set(((x%m)+m)%m, ((y%m)+m)%m, v)
	}

	scale := s.Roughness
	for step := m; step > 1; step /= 2 {
		half := step / 2

		for y := 0; y < m; y += step {
			for x := 0; x < m; x += step {
				avg := (at(x, y) + at(x+step, y) + at(x, y+step) + at(x+step, y+step)) / 4
				set(x+half, y+half, avg+rng.NextFloatSigned()*scale)
			}
		}

		for y := 0; y < m; y += half {
			xOffset := 0
			if (y/half)%2 == 0 {
				xOffset = half
			}
			for x := xOffset; x < m; x += step {
				avg := (at(x-half, y) + at(x+half, y) + at(x, y-half) + at(x, y+half)) / 4
				set(x, y, avg+rng.NextFloatSigned()*scale)
			}
		}

		scale *= s.Roughness
	}

	normalize(field)
	if m == width && m == height {
		return field, nil
	}
	return cropTopLeft(field, width, height), nil
}

func cropTopLeft(src *grid.Grid[float64], width, height int) *grid.Grid[float64] {
	out := grid.New[float64](width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out.Set(x, y, src.At(x%src.Width(), y%src.Height()))
		}
	}
	return out
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
