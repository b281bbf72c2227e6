package combat

import "errors"

// Sentinel errors for the initialisation-time error taxonomy.
// Execution-time skill failures are not returned as errors — they are
// surfaced as a skill_error event and do not abort the combat.
var (
	// ErrMalformedSkill identifies a malformed skill or effect
	// descriptor. RunCombat does not validate skills at setup and no
	// function in this module returns it; an unknown effect type is
	// reported at cast time as a skill_error event instead.
	ErrMalformedSkill = errors.New("combat: malformed skill descriptor")

	// ErrEmptyTeam identifies a team with no units. RunCombat does not
	// check for empty teams and no function in this module returns it; a
	// side with no units loses at the first win check.
	ErrEmptyTeam = errors.New("combat: team has no units")

	// ErrInvalidConfig is wrapped by config.Config.Validate (and so by
	// config.Load) when a Config fails validation.
	ErrInvalidConfig = errors.New("combat: invalid configuration")
)

// InvariantViolation marks a programming defect detected inside the
// emitter layer: an attempt to mutate unit state in a way the event
// stream cannot justify (e.g. hp above max_hp without a heal event).
// This is not a recoverable error; emitter code that detects one panics
// with this type so the diagnostic identifies the offending call site.
type InvariantViolation struct {
	Caller string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return "combat: invariant violation in " + e.Caller + ": " + e.Detail
}

func panicInvariant(caller, detail string) {
	panic(&InvariantViolation{Caller: caller, Detail: detail})
}
