// Package reconstruct rebuilds final combat-unit state purely from an
// ordered event log, with no dependency on the Emitter or the simulator.
// It exists as an independent trust boundary: if a desync ever appears
// between a live combat's
// final state and what this package derives from that combat's own
// event log, the bug is in the Emitter's bookkeeping, not in how events
// were read back — because this package never shares code with it.
package reconstruct

import (
	"sort"

	"github.com/tacticsforge/combatcore/internal/combat"
	"github.com/tacticsforge/combatcore/internal/combat/events"
)

// UnitState is this package's own mirror of a unit's observable fields,
// built independently of combat.UnitSnapshot so the two can be compared
// field-by-field without sharing a construction path.
type UnitState struct {
	ID          string
	Name        string
	Side        combat.Side
	HP          int
	MaxHP       int
	Attack      int
	Defense     int
	AttackSpeed float64
	CurrentMana int
	MaxMana     int
	Shield      int
	Dead        bool
	Effects     map[string]EffectState
	BuffedStats map[combat.Stat]int
}

// EffectState is the reconstructed shape of one active effect, keyed by
// its effect_id so expiry can find it without any
// positional assumption.
type EffectState struct {
	Stat         combat.Stat
	AppliedDelta int
	Kind         string
}

// State is the reconstructed combat, indexed by unit id.
type State struct {
	Units map[string]*UnitState
}

func newState() *State {
	return &State{Units: make(map[string]*UnitState)}
}

func (s *State) unit(id string) *UnitState {
	u, ok := s.Units[id]
	if !ok {
		u = &UnitState{ID: id, Effects: make(map[string]EffectState), BuffedStats: make(map[combat.Stat]int)}
		s.Units[id] = u
	}
	return u
}

// Rebuild replays log, sorted by Seq, into a State. Events are applied
// exactly in seq order; out-of-order input is sorted first so callers
// may pass an event log gathered from an unordered transport.
func Rebuild(log []events.Event) *State {
	sorted := make([]events.Event, len(log))
	copy(sorted, log)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	s := newState()
	for _, ev := range sorted {
		apply(s, ev)
	}
	return s
}

func apply(s *State, ev events.Event) {
	p := ev.Payload
	switch ev.Type {
	case events.TypeUnitAttack:
		u := s.unit(str(p, "target_id"))
		u.Name = str(p, "target_name")
		u.Side = combat.Side(str(p, "side"))
		u.HP = intOf(p, "target_hp")
		u.MaxHP = intOf(p, "target_max_hp")

	case events.TypeUnitHeal:
		u := s.unit(str(p, "unit_id"))
		u.Name = str(p, "unit_name")
		u.Side = combat.Side(str(p, "side"))
		u.HP = intOf(p, "new_hp")

	case events.TypeStatBuff:
		u := s.unit(str(p, "unit_id"))
		u.Name = str(p, "unit_name")
		u.Side = combat.Side(str(p, "side"))
		stat := combat.Stat(str(p, "stat"))
		delta := intOf(p, "applied_delta")
		applyStatDelta(u, stat, delta)
		if boolOf(p, "permanent") {
			u.BuffedStats[stat] += delta
		} else if id := str(p, "effect_id"); id != "" {
			u.Effects[id] = EffectState{Stat: stat, AppliedDelta: delta, Kind: "buff"}
		}

	case events.TypeShieldApplied:
		u := s.unit(str(p, "unit_id"))
		u.Side = combat.Side(str(p, "side"))
		u.Shield += intOf(p, "amount")
		if id := str(p, "effect_id"); id != "" {
			u.Effects[id] = EffectState{Kind: "shield"}
		}

	case events.TypeUnitStunned:
		u := s.unit(str(p, "unit_id"))
		u.Name = str(p, "unit_name")
		if id := str(p, "effect_id"); id != "" {
			u.Effects[id] = EffectState{Kind: "stun"}
		}

	case events.TypeDamageOverTimeApplied:
		u := s.unit(str(p, "unit_id"))
		if id := str(p, "effect_id"); id != "" {
			u.Effects[id] = EffectState{Kind: "damage_over_time"}
		}

	case events.TypeDamageOverTimeTick:
		u := s.unit(str(p, "unit_id"))
		u.Side = combat.Side(str(p, "side"))
		u.HP = intOf(p, "new_hp")

	case events.TypeEffectExpired:
		u := s.unit(str(p, "unit_id"))
		id := str(p, "effect_id")
		if eff, ok := u.Effects[id]; ok {
			switch eff.Kind {
			case "buff":
				applyStatDelta(u, eff.Stat, -eff.AppliedDelta)
			case "shield":
				u.Shield = 0
			}
			delete(u.Effects, id)
		}

	case events.TypeUnitDied:
		u := s.unit(str(p, "unit_id"))
		u.Name = str(p, "unit_name")
		u.Side = combat.Side(str(p, "side"))
		u.Dead = true
		u.Shield = 0

	case events.TypeManaUpdate:
		u := s.unit(str(p, "unit_id"))
		u.Side = combat.Side(str(p, "side"))
		u.CurrentMana = intOf(p, "post_mana")
		u.MaxMana = intOf(p, "max_mana")

	case events.TypeStateSnapshot:
		applySnapshotUnits(s, p["player_units"])
		applySnapshotUnits(s, p["opponent_units"])
	}
}

// applySnapshotUnits replaces the reconstructed record for every unit
// present in one side of a state_snapshot payload with that snapshot's
// own values. Base stats that never change via stat_buff (attack,
// defense, attack_speed, max_mana) have no other event to derive them
// from, so a snapshot is the only place this package ever learns them.
// A unit already known dead but absent from the snapshot (snapshots
// only carry living units) is left untouched rather than cleared.
func applySnapshotUnits(s *State, raw any) {
	units, ok := raw.([]combat.UnitSnapshot)
	if !ok {
		return
	}
	for _, snap := range units {
		applySnapshotUnit(s, snap)
	}
}

func applySnapshotUnit(s *State, snap combat.UnitSnapshot) {
	u := s.unit(snap.ID)
	u.Side = snap.Side
	u.HP = snap.HP
	u.MaxHP = snap.MaxHP
	u.Attack = snap.Attack
	u.Defense = snap.Defense
	u.AttackSpeed = snap.AttackSpeed
	u.CurrentMana = snap.CurrentMana
	u.MaxMana = snap.MaxMana
	u.Shield = snap.Shield
	u.Dead = snap.Dead

	u.Effects = make(map[string]EffectState, len(snap.Effects))
	for _, e := range snap.Effects {
		u.Effects[e.ID] = EffectState{Stat: e.Stat, AppliedDelta: e.AppliedDelta, Kind: string(e.Kind)}
	}
	u.BuffedStats = make(map[combat.Stat]int, len(snap.BuffedStats))
	for stat, v := range snap.BuffedStats {
		u.BuffedStats[stat] = v
	}
}

func applyStatDelta(u *UnitState, stat combat.Stat, delta int) {
	switch stat {
	case combat.StatAttack:
		u.Attack = max0(u.Attack + delta)
	case combat.StatDefense:
		u.Defense = max0(u.Defense + delta)
	case combat.StatAttackSpeed:
		u.AttackSpeed += float64(delta)
	case combat.StatMaxMana:
		u.MaxMana = max0(u.MaxMana + delta)
	case combat.StatMaxHP:
		u.MaxHP = max0(u.MaxHP + delta)
	case combat.StatHP:
		u.HP = max0(u.HP + delta)
	}
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func str(p map[string]any, key string) string {
	v, _ := p[key].(string)
	return v
}

func boolOf(p map[string]any, key string) bool {
	v, _ := p[key].(bool)
	return v
}

// intOf reads a numeric payload field as int. Payloads constructed
// in-process carry Go ints directly; payloads round-tripped through
// JSON decode to float64, so both are handled.
func intOf(p map[string]any, key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
