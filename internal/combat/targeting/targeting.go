// Package targeting resolves a skill's TargetMode into the concrete unit
// or units an effect step applies to. It never mutates a unit: it only
// reads the exported accessors on combat.UnitRef and returns references
// for the skill package's effect handlers to pass to the emitter.
package targeting

import "github.com/tacticsforge/combatcore/internal/combat"

// Roster is the read-only view of both teams a resolver needs, from the
// caster's own perspective: callers pass whichever slice is the caster's
// own team as Allies, whichever side that is.
type Roster struct {
	Allies  []combat.UnitRef
	Enemies []combat.UnitRef
}

func alive(units []combat.UnitRef) []combat.UnitRef {
	out := make([]combat.UnitRef, 0, len(units))
	for _, u := range units {
		if u.Alive() {
			out = append(out, u)
		}
	}
	return out
}

func front(units []combat.UnitRef) []combat.UnitRef {
	out := make([]combat.UnitRef, 0, len(units))
	for _, u := range units {
		if u.IsFront() {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		return units
	}
	return out
}

// PickBasicAttackTarget resolves a basic attack's target: front-row
// enemies are preferred, falling back to the back row only when no
// front-row unit is alive, and within that set the attacker has a 60%
// chance of targeting whichever candidate has the highest defense and
// a 40% chance of picking uniformly at random.
func PickBasicAttackTarget(rng combat.RNG, enemies []combat.UnitRef) (combat.UnitRef, bool) {
	candidates := front(alive(enemies))
	if len(candidates) == 0 {
		return nil, false
	}
	if rng.Bernoulli(0.6) {
		return highestDefense(candidates), true
	}
	return combat.Pick(rng, candidates)
}

func highestDefense(units []combat.UnitRef) combat.UnitRef {
	best := units[0]
	for _, u := range units[1:] {
		if u.Defense() > best.Defense() {
			best = u
		}
	}
	return best
}

// Resolve returns the subjects a skill's effects apply to for one cast.
// persistent is the caster's previously locked single-enemy target, if
// any; it is read and potentially updated by the caller (the skill
// execution context), never stored on the unit itself.
func Resolve(mode combat.TargetMode, caster combat.UnitRef, roster Roster, rng combat.RNG, persistent combat.UnitRef) ([]combat.UnitRef, combat.UnitRef) {
	switch mode {
	case combat.TargetSelf:
		return []combat.UnitRef{caster}, persistent

	case combat.TargetSingleEnemy:
		candidates := alive(roster.Enemies)
		t, ok := combat.Pick(rng, candidates)
		if !ok {
			return nil, persistent
		}
		return []combat.UnitRef{t}, persistent

	case combat.TargetSingleEnemyPersistent:
		if persistent != nil && persistent.Alive() {
			return []combat.UnitRef{persistent}, persistent
		}
		candidates := alive(roster.Enemies)
		t, ok := combat.Pick(rng, candidates)
		if !ok {
			return nil, nil
		}
		return []combat.UnitRef{t}, t

	case combat.TargetEnemyTeam:
		return alive(roster.Enemies), persistent

	case combat.TargetEnemyFront:
		return front(alive(roster.Enemies)), persistent

	case combat.TargetAllyTeam:
		return alive(roster.Allies), persistent

	case combat.TargetAllyFront:
		return front(alive(roster.Allies)), persistent

	default:
		return nil, persistent
	}
}
