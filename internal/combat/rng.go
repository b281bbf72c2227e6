package combat

import "math/rand"

// rng is the single seeded PRNG threaded through the simulator and shared
// with the skill executor. No other source of
// randomness may be used anywhere in a combat: two runs with the same
// seed, inputs, dt, and tick schedule must produce byte-identical event
// streams, which rules out time-seeded or global rand state.
type rng struct {
	r *rand.Rand
}

func newRNG(seed int64) *rng {
	return &rng{r: rand.New(rand.NewSource(seed))}
}

// NewRNG constructs the combat's single seeded generator. Exported so the
// engine package can create it once per combat and thread the same
// handle through the simulator, the skill executor, and targeting.
func NewRNG(seed int64) RNG {
	return newRNG(seed)
}

// RNG is the handle the skill and targeting packages thread the combat's
// single seeded generator through. Aliased rather than wrapped so those
// packages call the same Float64/Intn/Bernoulli/Pick this package uses
// internally, with no second source of randomness ever in scope.
type RNG = *rng

// Float64 returns a pseudo-random value in [0, 1).
func (g *rng) Float64() float64 {
	return g.r.Float64()
}

// Intn returns a pseudo-random value in [0, n).
func (g *rng) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return g.r.Intn(n)
}

// Bernoulli reports success with probability p (clamped to [0, 1]).
func (g *rng) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return g.r.Float64() < p
}

// Pick returns a uniformly random element of items, along with ok=false
// when items is empty.
func Pick[T any](g *rng, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[g.Intn(len(items))], true
}
