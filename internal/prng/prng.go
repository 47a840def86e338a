// Package prng implements the deterministic, seedable uniform stream that drives
// every stochastic decision in the lithosphere engine. Consumption order is part of
// the engine's behavioral contract: the same seed visited in the same call order
// must reproduce the same sequence within a build.
package prng

// multiplier and increment of the linear congruential generator. Changing
// either breaks reproducibility of existing seeds.
const (
	multiplier uint32 = 69069
	increment  uint32 = 12345
)

// PRNG is a 32-bit linear congruential generator: state <- state*69069 + 12345 (mod 2^32).
type PRNG struct {
	state uint32
}

// New creates a PRNG with its state set directly to seed.
func New(seed uint32) *PRNG {
	return &PRNG{state: seed}
}

// Seed resets the generator's state directly, as if newly constructed.
func (p *PRNG) Seed(seed uint32) {
	p.state = seed
}

// NextU32 advances the state and returns the new state.
func (p *PRNG) NextU32() uint32 {
	p.state = p.state*multiplier + increment
	return p.state
}

// NextDouble returns NextU32() / 2^32, a value in [0,1).
func (p *PRNG) NextDouble() float64 {
	return float64(p.NextU32()) / 4294967296.0
}

// NextFloatSigned returns NextDouble() - 0.5, a value in [-0.5, 0.5).
func (p *PRNG) NextFloatSigned() float64 {
	return p.NextDouble() - 0.5
}

// NextIntn returns a uniform value in [0, n) for n > 0, consuming exactly one NextU32.
func (p *PRNG) NextIntn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(p.NextU32() % uint32(n))
}

// NextBool consumes one NextU32 and returns a fair coin flip.
func (p *PRNG) NextBool() bool {
	return p.NextU32()%2 == 0
}

// Fork derives a new, independently-seeded PRNG from the master stream. Each
// plate gets its own shard, seeded deterministically from the master, so that
// per-plate draws happen in the same relative order regardless of how the
// plates are stepped.
func (p *PRNG) Fork() *PRNG {
	return New(p.NextU32())
}
