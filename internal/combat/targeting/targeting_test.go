package targeting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacticsforge/combatcore/internal/combat"
	"github.com/tacticsforge/combatcore/internal/combat/targeting"
)

func unitAt(id string, side combat.Side, pos combat.Position) combat.UnitRef {
	return combat.NewUnit(id, &combat.UnitTemplate{ID: id, DisplayName: id, Base: combat.BaseStats{HP: 100, Attack: 10}}, side, pos, 1)
}

func unitWithDefense(id string, side combat.Side, pos combat.Position, defense int) combat.UnitRef {
	return combat.NewUnit(id, &combat.UnitTemplate{ID: id, DisplayName: id, Base: combat.BaseStats{HP: 100, Attack: 10, Defense: defense}}, side, pos, 1)
}

func TestResolve_EnemyFrontFallsBackToWholeTeamWhenNoFrontAlive(t *testing.T) {
	back1 := unitAt("b1", combat.SideB, combat.PositionBack)
	roster := targeting.Roster{Enemies: []combat.UnitRef{back1}}

	targets, _ := targeting.Resolve(combat.TargetEnemyFront, nil, roster, combat.NewRNG(1), nil)

	require.Len(t, targets, 1)
	assert.Equal(t, "b1", targets[0].ID())
}

func TestResolve_EnemyFrontPrefersFrontRow(t *testing.T) {
	front := unitAt("f1", combat.SideB, combat.PositionFront)
	back := unitAt("b1", combat.SideB, combat.PositionBack)
	roster := targeting.Roster{Enemies: []combat.UnitRef{front, back}}

	targets, _ := targeting.Resolve(combat.TargetEnemyFront, nil, roster, combat.NewRNG(1), nil)

	require.Len(t, targets, 1)
	assert.Equal(t, "f1", targets[0].ID())
}

func TestResolve_SingleEnemyPersistentLocksUntilTargetDies(t *testing.T) {
	e1 := unitAt("e1", combat.SideB, combat.PositionFront)
	e2 := unitAt("e2", combat.SideB, combat.PositionFront)
	roster := targeting.Roster{Enemies: []combat.UnitRef{e1, e2}}
	rng := combat.NewRNG(42)

	_, persistent := targeting.Resolve(combat.TargetSingleEnemyPersistent, nil, roster, rng, nil)
	require.NotNil(t, persistent)

	targets2, persistent2 := targeting.Resolve(combat.TargetSingleEnemyPersistent, nil, roster, rng, persistent)

	require.Len(t, targets2, 1)
	assert.Equal(t, persistent.ID(), targets2[0].ID())
	assert.Equal(t, persistent.ID(), persistent2.ID())
}

func TestResolve_SelfTargetsCaster(t *testing.T) {
	caster := unitAt("c1", combat.SideA, combat.PositionFront)

	targets, _ := targeting.Resolve(combat.TargetSelf, caster, targeting.Roster{}, combat.NewRNG(1), nil)

	require.Len(t, targets, 1)
	assert.Equal(t, "c1", targets[0].ID())
}

func TestPickBasicAttackTarget_PrefersFrontRowOverBack(t *testing.T) {
	front := unitAt("f1", combat.SideB, combat.PositionFront)
	back := unitAt("b1", combat.SideB, combat.PositionBack)

	for seed := int64(0); seed < 20; seed++ {
		target, ok := targeting.PickBasicAttackTarget(combat.NewRNG(seed), []combat.UnitRef{front, back})
		require.True(t, ok)
		assert.Equal(t, "f1", target.ID())
	}
}

func TestPickBasicAttackTarget_FallsBackToBackRowWhenFrontEmpty(t *testing.T) {
	back := unitAt("b1", combat.SideB, combat.PositionBack)

	target, ok := targeting.PickBasicAttackTarget(combat.NewRNG(1), []combat.UnitRef{back})

	require.True(t, ok)
	assert.Equal(t, "b1", target.ID())
}

func TestPickBasicAttackTarget_NoAliveEnemiesReturnsNotOK(t *testing.T) {
	_, ok := targeting.PickBasicAttackTarget(combat.NewRNG(1), nil)
	assert.False(t, ok)
}

func TestPickBasicAttackTarget_EventuallyPicksHighestDefenseCandidate(t *testing.T) {
	tanky := unitWithDefense("tanky", combat.SideB, combat.PositionFront, 50)
	squishy := unitWithDefense("squishy", combat.SideB, combat.PositionFront, 1)
	enemies := []combat.UnitRef{squishy, tanky}

	sawTanky := false
	for seed := int64(0); seed < 50; seed++ {
		target, ok := targeting.PickBasicAttackTarget(combat.NewRNG(seed), enemies)
		require.True(t, ok)
		if target.ID() == "tanky" {
			sawTanky = true
			break
		}
	}
	assert.True(t, sawTanky, "expected the 60%% highest-defense roll to pick the tankier candidate across seeds")
}

func TestResolve_AllyTeamExcludesNothingButReturnsAllAlive(t *testing.T) {
	a1 := unitAt("a1", combat.SideA, combat.PositionFront)
	a2 := unitAt("a2", combat.SideA, combat.PositionBack)
	roster := targeting.Roster{Allies: []combat.UnitRef{a1, a2}}

	targets, _ := targeting.Resolve(combat.TargetAllyTeam, a1, roster, combat.NewRNG(1), nil)

	assert.Len(t, targets, 2)
}
