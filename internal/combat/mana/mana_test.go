package mana_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tacticsforge/combatcore/internal/combat/mana"
)

func TestPool_TickAccumulatesWholePointsOnly(t *testing.T) {
	var p mana.Pool

	assert.Equal(t, 0, p.Tick(5, 0.1)) // 0.5 carried, nothing due yet
	assert.Equal(t, 1, p.Tick(5, 0.1)) // 1.0 carried, one point due
}

func TestPool_CarryRoundTripsThroughSetCarry(t *testing.T) {
	var p mana.Pool
	p.Tick(5, 0.1)
	saved := p.Carry()

	var restored mana.Pool
	restored.SetCarry(saved)
	assert.Equal(t, saved, restored.Carry())
}
