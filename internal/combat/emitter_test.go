package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUnit(id string, hp, attack, defense int) *unit {
	return newUnit(id, &UnitTemplate{
		ID:          id,
		DisplayName: id,
		Base: BaseStats{
			HP:      hp,
			Attack:  attack,
			Defense: defense,
			MaxMana: 100,
		},
	}, SideA, PositionFront, 1)
}

func TestEmitDamage_ShieldAbsorbsBeforeHP(t *testing.T) {
	em := NewEmitter("c1", nil, nil, nil)
	attacker := newTestUnit("atk", 500, 50, 10)
	target := newTestUnit("tgt", 500, 50, 10)
	target.shield = 30

	em.EmitDamage(attacker, target, 50, "physical", "basic_attack", 0)

	require.Equal(t, 0, target.shield)
	assert.Equal(t, 480, target.hp)
}

func TestEmitDamage_MinimumOneDamage(t *testing.T) {
	em := NewEmitter("c1", nil, nil, nil)
	attacker := newTestUnit("atk", 500, 50, 10)
	target := newTestUnit("tgt", 500, 50, 10)

	em.EmitDamage(attacker, target, 0, "physical", "basic_attack", 0)

	assert.Equal(t, 499, target.hp)
}

func TestEmitDamage_CascadesToUnitDied(t *testing.T) {
	em := NewEmitter("c1", nil, nil, nil)
	attacker := newTestUnit("atk", 500, 500, 10)
	target := newTestUnit("tgt", 10, 50, 10)

	em.EmitDamage(attacker, target, 500, "physical", "basic_attack", 0)

	require.True(t, target.dead)
	require.True(t, target.deathProcessed)

	log := em.Log()
	require.Len(t, log, 2)
	assert.Equal(t, "unit_attack", log[0].Payload["type"])
	assert.Equal(t, "unit_died", log[1].Payload["type"])
}

func TestEmitUnitDied_IsIdempotent(t *testing.T) {
	em := NewEmitter("c1", nil, nil, nil)
	u := newTestUnit("u", 10, 50, 10)

	_, ok1 := em.EmitUnitDied(u, 0)
	_, ok2 := em.EmitUnitDied(u, 1)

	assert.True(t, ok1)
	assert.False(t, ok2)
	assert.Len(t, em.Log(), 1)
}

func TestEmitStatBuff_PercentageAndAmplifier(t *testing.T) {
	em := NewEmitter("c1", nil, nil, nil)
	u := newTestUnit("u", 500, 100, 10)
	u.effects = append(u.effects, &ActiveEffect{ID: "amp1", Stat: StatBuffAmplifier, Value: 50})

	ev := em.EmitStatBuff(u, nil, StatAttack, 10, ValuePercentage, 5, false, "skill", 0)

	// base attack 100 * 10% * 1.5 amplifier = 15
	assert.Equal(t, 115, u.attack)
	assert.Equal(t, 15, ev.Payload["applied_delta"])
}

func TestEmitStatBuff_PermanentAccumulatesNoEffect(t *testing.T) {
	em := NewEmitter("c1", nil, nil, nil)
	u := newTestUnit("u", 500, 100, 10)

	em.EmitStatBuff(u, nil, StatAttack, 5, ValueFlat, 0, true, "trait", 0)

	assert.Equal(t, 105, u.attack)
	assert.Equal(t, 5, u.permanentBuffs[StatAttack])
	assert.Empty(t, u.effects)
}

func TestEmitEffectExpired_RevertsBuffAndShield(t *testing.T) {
	em := NewEmitter("c1", nil, nil, nil)
	u := newTestUnit("u", 500, 100, 10)

	buffEv := em.EmitStatBuff(u, nil, StatAttack, 20, ValueFlat, 5, false, "skill", 0)
	require.Equal(t, 120, u.attack)

	em.EmitShieldApplied(u, nil, 40, 5, 0)
	require.Equal(t, 40, u.shield)

	_, ok := em.EmitEffectExpired(u, buffEv.Payload["effect_id"].(string), 5)
	require.True(t, ok)
	assert.Equal(t, 100, u.attack)

	shieldEffectID := u.effects[0].ID
	_, ok = em.EmitEffectExpired(u, shieldEffectID, 5)
	require.True(t, ok)
	assert.Equal(t, 0, u.shield)
}

func TestEmitHeal_NoOpOnDeadUnit(t *testing.T) {
	em := NewEmitter("c1", nil, nil, nil)
	u := newTestUnit("u", 0, 100, 10)
	u.dead = true

	_, applied := em.EmitHeal(nil, u, 50, "regen", 0)

	assert.False(t, applied)
	assert.Empty(t, em.Log())
}
