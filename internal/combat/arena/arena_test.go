package arena_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tacticsforge/combatcore/internal/combat"
	"github.com/tacticsforge/combatcore/internal/combat/arena"
	"github.com/tacticsforge/combatcore/internal/combat/config"
	"github.com/tacticsforge/combatcore/internal/combat/engine"
)

func lopsidedTeams() (engine.TeamInput, engine.TeamInput) {
	strong := engine.TeamInput{Units: []engine.UnitSpec{{
		ID: "strong", Side: combat.SideA, Position: combat.PositionFront, Star: 1,
		Template: &combat.UnitTemplate{ID: "strong", DisplayName: "strong", Base: combat.BaseStats{HP: 1000, Attack: 300, AttackSpeed: 1.5}},
	}}}
	weak := engine.TeamInput{Units: []engine.UnitSpec{{
		ID: "weak", Side: combat.SideB, Position: combat.PositionFront, Star: 1,
		Template: &combat.UnitTemplate{ID: "weak", DisplayName: "weak", Base: combat.BaseStats{HP: 20, Attack: 1, AttackSpeed: 0.2}},
	}}}
	return strong, weak
}

func TestRunAll_RunsEveryJobConcurrently(t *testing.T) {
	a := arena.New(config.Default(), zaptest.NewLogger(t), nil, 0)
	strong, weak := lopsidedTeams()

	jobs := make([]arena.Job, 0, 5)
	for i := 0; i < 5; i++ {
		jobs = append(jobs, arena.Job{Seed: int64(i), TeamA: strong, TeamB: weak})
	}

	results := a.RunAll(context.Background(), jobs)

	require.Len(t, results, 5)
	for _, r := range results {
		assert.Equal(t, "team_a", r.Winner)
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, 0, a.RunningCount())
}

func TestRunAll_RespectsWorkerLimit(t *testing.T) {
	a := arena.New(config.Default(), zaptest.NewLogger(t), nil, 2)
	strong, weak := lopsidedTeams()

	jobs := make([]arena.Job, 0, 6)
	for i := 0; i < 6; i++ {
		jobs = append(jobs, arena.Job{Seed: int64(i), TeamA: strong, TeamB: weak})
	}

	results := a.RunAll(context.Background(), jobs)

	assert.Len(t, results, 6)
}
