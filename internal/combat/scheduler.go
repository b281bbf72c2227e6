package combat

// pendingAttack is a deferred basic-attack action. The animation_start
// event fires immediately when the attack is declared; the damage and
// mana mutation are deferred to fireAt: callers MUST NOT mutate target
// hp at the compute moment, only at the scheduled tick.
type pendingAttack struct {
	AttackerID string
	TargetID   string
	FireAt     float64
}

// AttackerID, TargetID, FireAt are exported fields so the engine package
// can read a fired action without this package exposing the unit type
// itself.

// scheduler holds the queue of pending delayed actions for one combat.
// It is deliberately tiny: the only delayed action this core produces is
// the basic-attack damage delay (skill damage and DoT ticks are applied
// synchronously by their own emitter calls). Note this intentionally
// does NOT filter by stun status when firing due actions: stun does not
// retroactively cancel an already-scheduled basic attack (see DESIGN.md).
type scheduler struct {
	pending []pendingAttack
}

// Scheduler is the opaque handle to a combat's pending-action queue,
// exported the same way UnitRef aliases the unexported unit type.
type Scheduler = *scheduler

// NewScheduler constructs an empty scheduler.
func NewScheduler() Scheduler {
	return &scheduler{}
}

// Schedule enqueues a basic attack's damage for fireAt.
func (s *scheduler) Schedule(attackerID, targetID string, fireAt float64) {
	s.pending = append(s.pending, pendingAttack{AttackerID: attackerID, TargetID: targetID, FireAt: fireAt})
}

// Due removes and returns every pending attack whose FireAt <= now, in
// the order they were scheduled.
func (s *scheduler) Due(now float64) []pendingAttack {
	var fired []pendingAttack
	var kept []pendingAttack
	for _, p := range s.pending {
		if p.FireAt <= now {
			fired = append(fired, p)
		} else {
			kept = append(kept, p)
		}
	}
	s.pending = kept
	return fired
}
