package accum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tacticsforge/combatcore/internal/combat/accum"
)

func TestAccumulator_AccumulatesFractionalRateAcrossTicks(t *testing.T) {
	var a accum.Accumulator

	// 2 points/sec at dt=0.1 is 0.2 per tick; five ticks must yield
	// exactly 1 whole point and never more, never early.
	var total int
	for i := 0; i < 5; i++ {
		total += a.Add(2, 0.1)
	}
	assert.Equal(t, 1, total)
	assert.InDelta(t, 0.0, a.Carry(), 1e-9)
}

func TestAccumulator_ZeroOrNegativeRateProducesNothing(t *testing.T) {
	var a accum.Accumulator
	assert.Equal(t, 0, a.Add(0, 0.1))
	assert.Equal(t, 0, a.Add(-5, 0.1))
}

func TestAccumulator_ResetClearsCarry(t *testing.T) {
	var a accum.Accumulator
	a.Add(3, 0.1)
	assert.NotZero(t, a.Carry())
	a.Reset()
	assert.Zero(t, a.Carry())
}

func TestAccumulator_SetCarryRestoresSnapshot(t *testing.T) {
	var a accum.Accumulator
	a.SetCarry(0.9)
	// One more tenth of a point pushes it over 1.0.
	got := a.Add(1, 0.1)
	assert.Equal(t, 1, got)
}
