// Package combattest provides test utilities for building rosters and
// running combats in package tests, mirroring the shape of this
// codebase's other test harness: a struct wrapping *testing.T and a
// zaptest logger, with small builder methods instead of hand-assembled
// literals in every test.
package combattest

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/tacticsforge/combatcore/internal/combat"
	"github.com/tacticsforge/combatcore/internal/combat/config"
	"github.com/tacticsforge/combatcore/internal/combat/engine"
	"github.com/tacticsforge/combatcore/internal/combat/events"
)

// Harness collects the boilerplate most combat scenario tests need: a
// logger, an event recorder, and convenience constructors for unit
// templates.
type Harness struct {
	t      *testing.T
	logger *zap.Logger
	bus    *events.Bus

	recorded []events.Event
}

// New constructs a Harness whose logger writes to t's test output.
func New(t *testing.T) *Harness {
	h := &Harness{
		t:      t,
		logger: zaptest.NewLogger(t),
		bus:    events.NewBus(),
	}
	h.bus.Subscribe(func(ev events.Event) { h.recorded = append(h.recorded, ev) })
	return h
}

// Recorded returns every event captured so far, in emission order.
func (h *Harness) Recorded() []events.Event { return h.recorded }

// UnitSpec is a convenience builder for engine.UnitSpec with sensible
// combat-ready defaults, so a test needs to name only what it cares
// about.
type UnitSpec struct {
	ID          string
	Side        combat.Side
	Position    combat.Position
	Star        int
	HP          int
	Attack      int
	Defense     int
	AttackSpeed float64
	MaxMana     int
	ManaRegen   float64
	Skill       *combat.SkillTemplate
	FactionTags []string
	ClassTags   []string
}

// Build turns a UnitSpec into an engine.UnitSpec, filling in a minimal
// UnitTemplate from the given fields.
func (s UnitSpec) Build() engine.UnitSpec {
	star := s.Star
	if star == 0 {
		star = 1
	}
	attackSpeed := s.AttackSpeed
	if attackSpeed == 0 {
		attackSpeed = 1
	}
	return engine.UnitSpec{
		ID:   s.ID,
		Side: s.Side,
		Position: func() combat.Position {
			if s.Position == "" {
				return combat.PositionFront
			}
			return s.Position
		}(),
		Star: star,
		Template: &combat.UnitTemplate{
			ID:          s.ID,
			DisplayName: s.ID,
			FactionTags: s.FactionTags,
			ClassTags:   s.ClassTags,
			Base: combat.BaseStats{
				HP:          s.HP,
				Attack:      s.Attack,
				Defense:     s.Defense,
				AttackSpeed: attackSpeed,
				MaxMana:     s.MaxMana,
				ManaRegen:   s.ManaRegen,
			},
			Skill: s.Skill,
		},
	}
}

// RunInput is a minimal scenario: two sides, a seed, and an optional
// config override.
type RunInput struct {
	TeamA       []UnitSpec
	TeamB       []UnitSpec
	TeamATraits []*combat.Trait
	TeamBTraits []*combat.Trait
	Seed        int64
	Config      *config.Config

	// CompletedRounds scales per_round trait rewards, see engine.Input.
	CompletedRounds int
}

// Run builds both rosters and runs the combat to completion via
// engine.RunCombat, wired to this harness's logger and event recorder.
func (h *Harness) Run(in RunInput) combat.Result {
	cfg := config.Default()
	if in.Config != nil {
		cfg = *in.Config
	}

	return engine.RunCombat(engine.Input{
		CombatID:        "test-combat",
		Seed:            in.Seed,
		TeamA:           engine.TeamInput{Units: build(in.TeamA), Traits: in.TeamATraits},
		TeamB:           engine.TeamInput{Units: build(in.TeamB), Traits: in.TeamBTraits},
		Config:          cfg,
		Logger:          h.logger,
		Bus:             h.bus,
		CompletedRounds: in.CompletedRounds,
	})
}

func build(specs []UnitSpec) []engine.UnitSpec {
	out := make([]engine.UnitSpec, len(specs))
	for i, s := range specs {
		out[i] = s.Build()
	}
	return out
}
