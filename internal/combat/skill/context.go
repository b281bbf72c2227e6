// Package skill executes a caster's SkillTemplate against a resolved set
// of targets, one effect step at a time, delegating every mutation to
// the combat package's Emitter.
package skill

import "github.com/tacticsforge/combatcore/internal/combat"

// Context carries everything one skill cast needs beyond the effect
// steps themselves: the emitter to mutate through, the RNG to resolve
// targets and random conditions with, the caster's own roster view, and
// that caster's persistent single-enemy target (kept here, not on the
// unit, so parallel combats never share state through a unit field).
type Context struct {
	Emitter *combat.Emitter
	RNG     combat.RNG
	Now     float64

	Caster  combat.UnitRef
	Allies  []combat.UnitRef
	Enemies []combat.UnitRef

	Persistent combat.UnitRef
}

// ExecError wraps a recoverable execution-time failure with the index of
// the effect step that produced it, matching skill_error's effect_index
// field.
type ExecError struct {
	EffectIndex int
	Err         error
}

func (e *ExecError) Error() string { return e.Err.Error() }
func (e *ExecError) Unwrap() error { return e.Err }
