package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacticsforge/combatcore/internal/combat"
	"github.com/tacticsforge/combatcore/internal/combat/combattest"
)

func TestRunCombat_StrongerTeamWins(t *testing.T) {
	h := combattest.New(t)

	result := h.Run(combattest.RunInput{
		Seed: 7,
		TeamA: []combattest.UnitSpec{
			{ID: "a1", Side: combat.SideA, HP: 1000, Attack: 200, AttackSpeed: 1.2},
		},
		TeamB: []combattest.UnitSpec{
			{ID: "b1", Side: combat.SideB, HP: 50, Attack: 5, AttackSpeed: 0.5},
		},
	})

	assert.Equal(t, combat.WinnerA, result.Winner)
	assert.False(t, result.Timeout)
	require.Len(t, result.TeamASurvivors, 1)
	assert.Empty(t, result.TeamBSurvivors)
}

func TestRunCombat_EvenlyMatchedTeamsTimeOutOrResolve(t *testing.T) {
	h := combattest.New(t)

	result := h.Run(combattest.RunInput{
		Seed: 3,
		TeamA: []combattest.UnitSpec{
			{ID: "a1", Side: combat.SideA, HP: 300, Attack: 40, AttackSpeed: 1},
		},
		TeamB: []combattest.UnitSpec{
			{ID: "b1", Side: combat.SideB, HP: 300, Attack: 40, AttackSpeed: 1},
		},
	})

	assert.Contains(t, []combat.Winner{combat.WinnerA, combat.WinnerB, combat.WinnerTimeout}, result.Winner)
	assert.NotEmpty(t, result.Events)
}

func TestRunCombat_IsDeterministicForFixedSeed(t *testing.T) {
	build := func() combattest.RunInput {
		return combattest.RunInput{
			Seed: 99,
			TeamA: []combattest.UnitSpec{
				{ID: "a1", Side: combat.SideA, HP: 400, Attack: 35, AttackSpeed: 0.9},
				{ID: "a2", Side: combat.SideA, HP: 400, Attack: 35, AttackSpeed: 0.9, Position: combat.PositionBack},
			},
			TeamB: []combattest.UnitSpec{
				{ID: "b1", Side: combat.SideB, HP: 400, Attack: 35, AttackSpeed: 0.9},
				{ID: "b2", Side: combat.SideB, HP: 400, Attack: 35, AttackSpeed: 0.9, Position: combat.PositionBack},
			},
		}
	}

	h1 := combattest.New(t)
	r1 := h1.Run(build())
	h2 := combattest.New(t)
	r2 := h2.Run(build())

	assert.Equal(t, r1.Winner, r2.Winner)
	assert.Equal(t, r1.Duration, r2.Duration)
	require.Equal(t, len(r1.Events), len(r2.Events))
	for i := range r1.Events {
		assert.Equal(t, r1.Events[i].Type, r2.Events[i].Type)
	}
}

func TestRunCombat_OnEnemyDeathFiresTraitRewardOnKillerSide(t *testing.T) {
	h := combattest.New(t)

	enemyDeathTrait := &combat.Trait{
		Name:       "Reapers",
		Type:       combat.TraitClass,
		Thresholds: []int{1},
		Tiers: []combat.ModularEffect{{
			Trigger: combat.TriggerOnEnemyDeath,
			Rewards: []combat.Reward{{Kind: combat.RewardStatBuff, Stat: combat.StatAttack, Value: 1000, ValueType: combat.ValueFlat, Permanent: true}},
		}},
	}

	result := h.Run(combattest.RunInput{
		Seed: 5,
		TeamA: []combattest.UnitSpec{
			{ID: "a1", Side: combat.SideA, HP: 500, Attack: 300, AttackSpeed: 2, ClassTags: []string{"Reapers"}},
		},
		TeamB: []combattest.UnitSpec{
			{ID: "b1", Side: combat.SideB, HP: 50, Attack: 1, AttackSpeed: 0.1},
		},
		TeamATraits: []*combat.Trait{enemyDeathTrait},
	})

	require.Equal(t, combat.WinnerA, result.Winner)

	foundDied, foundBuffAfterDeath := false, false
	for _, ev := range result.Events {
		if ev.Type == "unit_died" {
			foundDied = true
			continue
		}
		if foundDied && ev.Type == "stat_buff" && ev.Payload["unit_id"] == "a1" {
			foundBuffAfterDeath = true
		}
	}
	assert.True(t, foundDied, "expected b1 to die")
	assert.True(t, foundBuffAfterDeath, "expected on_enemy_death reward to land on a1 after b1 died")
}

func TestRunCombat_OnAllyDeathFiresOnVictimsOwnSide(t *testing.T) {
	h := combattest.New(t)

	allyDeathTrait := &combat.Trait{
		Name:       "Martyrs",
		Type:       combat.TraitClass,
		Thresholds: []int{1},
		Tiers: []combat.ModularEffect{{
			Trigger: combat.TriggerOnAllyDeath,
			Rewards: []combat.Reward{{Kind: combat.RewardStatBuff, Stat: combat.StatAttack, Value: 500, ValueType: combat.ValueFlat, Permanent: true}},
		}},
	}

	result := h.Run(combattest.RunInput{
		Seed: 11,
		TeamA: []combattest.UnitSpec{
			{ID: "a1", Side: combat.SideA, HP: 20, Attack: 5, AttackSpeed: 0.2, ClassTags: []string{"Martyrs"}},
			{ID: "a2", Side: combat.SideA, HP: 500, Attack: 5, AttackSpeed: 0.1, ClassTags: []string{"Martyrs"}},
		},
		TeamB: []combattest.UnitSpec{
			{ID: "b1", Side: combat.SideB, HP: 500, Attack: 400, AttackSpeed: 2},
		},
		TeamATraits: []*combat.Trait{allyDeathTrait},
	})

	foundBuffOnSurvivor := false
	for _, ev := range result.Events {
		if ev.Type == "stat_buff" && ev.Payload["unit_id"] == "a2" {
			foundBuffOnSurvivor = true
		}
	}
	assert.True(t, foundBuffOnSurvivor, "expected on_ally_death reward to land on a2 once a1 died")
}

func TestRunCombat_PerRoundTraitScalesWithCompletedRounds(t *testing.T) {
	h := combattest.New(t)

	perRoundTrait := &combat.Trait{
		Name:       "Veterans",
		Type:       combat.TraitClass,
		Thresholds: []int{1},
		Tiers: []combat.ModularEffect{{
			Trigger: combat.TriggerPerRound,
			Rewards: []combat.Reward{{Kind: combat.RewardStatBuff, Stat: combat.StatAttack, Value: 10, ValueType: combat.ValueFlat, Permanent: true}},
		}},
	}

	result := h.Run(combattest.RunInput{
		Seed: 2,
		TeamA: []combattest.UnitSpec{
			{ID: "a1", Side: combat.SideA, HP: 100, Attack: 1, AttackSpeed: 0.01, ClassTags: []string{"Veterans"}},
		},
		TeamB: []combattest.UnitSpec{
			{ID: "b1", Side: combat.SideB, HP: 100000, Attack: 0, AttackSpeed: 0.01},
		},
		TeamATraits:     []*combat.Trait{perRoundTrait},
		CompletedRounds: 3,
	})

	applied := 0
	for _, ev := range result.Events {
		if ev.Type == "stat_buff" && ev.Payload["unit_id"] == "a1" {
			if d, ok := ev.Payload["applied_delta"].(int); ok {
				applied = d
			}
		}
	}
	assert.Equal(t, 30, applied, "per_round reward value (10) should scale by completed rounds (3)")
}

func TestRunCombat_BasicAttackDamageSubtractsDefense(t *testing.T) {
	h := combattest.New(t)

	result := h.Run(combattest.RunInput{
		Seed: 1,
		TeamA: []combattest.UnitSpec{
			{ID: "a1", Side: combat.SideA, HP: 600, Attack: 30, AttackSpeed: 1},
		},
		TeamB: []combattest.UnitSpec{
			{ID: "b1", Side: combat.SideB, HP: 600, Attack: 0, Defense: 2, AttackSpeed: 0.01},
		},
	})

	foundDamage := false
	for _, ev := range result.Events {
		if ev.Type != "unit_attack" {
			continue
		}
		if ev.Payload["attacker_id"] != "a1" {
			continue
		}
		foundDamage = true
		assert.Equal(t, 28, ev.Payload["applied_damage"], "expected attack (30) minus defense (2)")
		break
	}
	assert.True(t, foundDamage, "expected a1 to land at least one basic attack on b1")
}

func TestRunCombat_BasicAttackDamageFloorsAtOne(t *testing.T) {
	h := combattest.New(t)

	result := h.Run(combattest.RunInput{
		Seed: 1,
		TeamA: []combattest.UnitSpec{
			{ID: "a1", Side: combat.SideA, HP: 600, Attack: 5, AttackSpeed: 1},
		},
		TeamB: []combattest.UnitSpec{
			{ID: "b1", Side: combat.SideB, HP: 600, Attack: 0, Defense: 500, AttackSpeed: 0.01},
		},
	})

	foundDamage := false
	for _, ev := range result.Events {
		if ev.Type != "unit_attack" || ev.Payload["attacker_id"] != "a1" {
			continue
		}
		foundDamage = true
		assert.Equal(t, 1, ev.Payload["applied_damage"], "damage should floor at 1 even when defense exceeds attack")
		break
	}
	assert.True(t, foundDamage, "expected a1 to land at least one basic attack on b1")
}

func TestRunCombat_SkillCastDrainsMana(t *testing.T) {
	h := combattest.New(t)

	skillTmpl := &combat.SkillTemplate{
		Name:       "Bolt",
		ManaCost:   10,
		TargetMode: combat.TargetSingleEnemy,
		Effects: []combat.EffectStep{
			{Type: combat.EffectTypeDamage, Value: 50, ValueType: combat.ValueFlat, DamageType: "magic"},
		},
	}

	result := h.Run(combattest.RunInput{
		Seed: 1,
		TeamA: []combattest.UnitSpec{
			{ID: "caster", Side: combat.SideA, HP: 500, Attack: 20, AttackSpeed: 1, MaxMana: 10, ManaRegen: 100, Skill: skillTmpl},
		},
		TeamB: []combattest.UnitSpec{
			{ID: "target", Side: combat.SideB, HP: 2000, Attack: 1, AttackSpeed: 0.1},
		},
	})

	foundSkillCast, foundManaDrain := false, false
	for _, ev := range result.Events {
		if ev.Type == "skill_cast" {
			foundSkillCast = true
		}
		if ev.Type == "mana_update" && ev.Payload["cause"] == "skill_cast" {
			if amount, ok := ev.Payload["amount"].(int); ok && amount == -10 {
				foundManaDrain = true
			}
		}
	}
	assert.True(t, foundSkillCast)
	assert.True(t, foundManaDrain, "expected casting Bolt to spend its 10 mana")
}
