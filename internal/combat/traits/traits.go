// Package traits evaluates faction/class synergy thresholds and fires
// their Modular Effects when a Trigger condition is met. The Watcher shape below — track, reset,
// report — mirrors how this codebase's rule engine tracks conditional
// abilities, generalized here to trait-tier activation instead of
// single-card conditions.
package traits

import (
	"sort"

	"github.com/tacticsforge/combatcore/internal/combat"
)

// Watcher tracks whether one trait tier is currently active for a side.
type Watcher interface {
	ConditionMet() bool
	Reset()
	Key() string
}

// ActiveTier is one (Trait, tier-index) pairing currently active for a
// side because the unit count on that side meets Thresholds[tier].
type ActiveTier struct {
	Trait     *combat.Trait
	TierIndex int
	fired     map[combat.Trigger]bool // trigger_once bookkeeping, per trigger
}

func (a *ActiveTier) Key() string {
	return a.Trait.Name
}

func (a *ActiveTier) ConditionMet() bool { return true }

func (a *ActiveTier) Reset() { a.fired = make(map[combat.Trigger]bool) }

func (a *ActiveTier) effect() combat.ModularEffect { return a.Trait.Tiers[a.TierIndex] }

// Effect returns the ModularEffect this tier currently runs, for callers
// that need to inspect e.g. HPBelowPercent ahead of firing a trigger.
func (a *ActiveTier) Effect() combat.ModularEffect { return a.effect() }

// Registry computes the active tier for every trait present on a side
// and dispatches trigger events to them.
type Registry struct {
	active []*ActiveTier
}

// NewRegistry computes, for each trait, the highest threshold tier met
// by count (the number of units on the side carrying that trait).
func NewRegistry(traitsBySide map[string]*combat.Trait, counts map[string]int) *Registry {
	names := make([]string, 0, len(traitsBySide))
	for name := range traitsBySide {
		names = append(names, name)
	}
	// Deterministic order: event emission order must not depend on Go's
	// randomized map iteration, or two runs with the same seed could
	// produce different event streams.
	sort.Strings(names)

	r := &Registry{}
	for _, name := range names {
		trait := traitsBySide[name]
		count := counts[name]
		tier := -1
		for i, threshold := range trait.Thresholds {
			if count >= threshold {
				tier = i
			}
		}
		if tier < 0 {
			continue
		}
		r.active = append(r.active, &ActiveTier{Trait: trait, TierIndex: tier, fired: make(map[combat.Trigger]bool)})
	}
	return r
}

// Active returns the currently active tiers, for inspection/testing.
func (r *Registry) Active() []*ActiveTier { return r.active }

// Fire dispatches trig to every active tier whose ModularEffect.Trigger
// matches, applying rewards through apply for each tier that passes its
// Condition. thresholdPercent is only consulted for on_ally_hp_below;
// other triggers ignore it.
func (r *Registry) Fire(trig combat.Trigger, rng combat.RNG, thresholdPercent float64, apply func(combat.Reward)) {
	for _, tier := range r.active {
		eff := tier.effect()
		if eff.Trigger != trig {
			continue
		}
		if trig == combat.TriggerOnAllyHPBelow && eff.HPBelowPercent != thresholdPercent {
			continue
		}
		if eff.Condition.TriggerOnce && tier.fired[trig] {
			continue
		}
		if eff.Condition.ChancePercent > 0 && !rng.Bernoulli(eff.Condition.ChancePercent/100) {
			continue
		}
		tier.fired[trig] = true
		for _, reward := range eff.Rewards {
			apply(reward)
		}
	}
}
