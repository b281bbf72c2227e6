// Command combat-demo runs a single scripted combat and prints its event
// log, for manual inspection of the simulator's output.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tacticsforge/combatcore/internal/combat"
	"github.com/tacticsforge/combatcore/internal/combat/config"
	"github.com/tacticsforge/combatcore/internal/combat/engine"
	"github.com/tacticsforge/combatcore/internal/combat/events"
)

func main() {
	configPath := flag.String("config", "", "path to a combat config file (optional)")
	seed := flag.Int64("seed", 1, "PRNG seed")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "combat-demo: logger init:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}

	bus := events.NewBus()
	bus.Subscribe(func(ev events.Event) {
		fmt.Printf("[%6.2fs] seq=%d %s\n", ev.Timestamp, ev.Seq, ev.Type)
	})

	result := engine.RunCombat(engine.Input{
		CombatID: "demo-combat",
		Seed:     *seed,
		Config:   cfg,
		Logger:   logger,
		Bus:      bus,
		TeamA:    demoTeam(combat.SideA, "warrior-a", "mage-a"),
		TeamB:    demoTeam(combat.SideB, "warrior-b", "mage-b"),
	})

	fmt.Printf("\nwinner=%s duration=%.2fs survivors(A=%d,B=%d) star_sum=%d\n",
		result.Winner, result.Duration, len(result.TeamASurvivors), len(result.TeamBSurvivors), result.SurvivingStarSum)
}

func demoTeam(side combat.Side, ids ...string) engine.TeamInput {
	units := make([]engine.UnitSpec, 0, len(ids))
	for i, id := range ids {
		pos := combat.PositionFront
		if i%2 == 1 {
			pos = combat.PositionBack
		}
		units = append(units, engine.UnitSpec{
			ID:       id,
			Side:     side,
			Position: pos,
			Star:     2,
			Template: &combat.UnitTemplate{
				ID:          id,
				DisplayName: id,
				Base: combat.BaseStats{
					HP:          800,
					Attack:      60,
					Defense:     20,
					AttackSpeed: 0.8,
					MaxMana:     100,
					ManaOnAttack: 10,
					ManaRegen:   2,
				},
				Skill: &combat.SkillTemplate{
					ID:         id + "-skill",
					Name:       "Strike",
					ManaCost:   100,
					TargetMode: combat.TargetSingleEnemy,
					Effects: []combat.EffectStep{
						{Type: combat.EffectTypeDamage, Value: 150, ValueType: combat.ValueFlat, DamageType: "magic"},
					},
				},
			},
		})
	}
	return engine.TeamInput{Units: units}
}
