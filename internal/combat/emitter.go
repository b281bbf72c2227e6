package combat

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tacticsforge/combatcore/internal/combat/events"
)

// StatBuffAmplifier is not a stat any unit attacks or defends with — it is
// a marker stat on an active effect whose Value is a percentage applied,
// once, to every subsequent stat_buff computed for its host.
const StatBuffAmplifier Stat = "buff_amplifier"

// Callback is invoked exactly once per emitted event, synchronously, with
// values only — never a reference to mutable internal state.
type Callback func(eventType string, payload map[string]any)

// Emitter is the single chokepoint for every authoritative combat-unit
// mutation. It owns the combat's seq counter and is
// the only code in this module permitted to write hp, shield, mana, the
// effects list, the dead flag, or any stat field on a unit.
type Emitter struct {
	combatID string
	seq      int64
	bus      *events.Bus
	callback Callback
	log      []events.Event
	logger   *zap.Logger
}

// NewEmitter constructs an emitter for one combat. callback may be nil.
func NewEmitter(combatID string, bus *events.Bus, callback Callback, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{combatID: combatID, bus: bus, callback: callback, logger: logger}
}

// Log returns the ordered event log recorded so far. The returned slice
// must not be mutated by the caller.
func (em *Emitter) Log() []events.Event { return em.log }

func (em *Emitter) nextSeq() int64 {
	em.seq++
	return em.seq
}

func (em *Emitter) emit(typ events.Type, timestamp float64, payload map[string]any) events.Event {
	payload["type"] = string(typ)
	ev := events.Event{
		Type:      typ,
		Seq:       em.nextSeq(),
		EventID:   uuid.NewString(),
		Timestamp: timestamp,
		Payload:   payload,
	}
	payload["seq"] = ev.Seq
	payload["event_id"] = ev.EventID
	payload["timestamp"] = ev.Timestamp

	em.log = append(em.log, ev)
	if em.bus != nil {
		em.bus.Publish(ev)
	}
	if em.callback != nil {
		em.callback(string(typ), payload)
	}
	return ev
}

// clampInt clamps v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// buffAmplifier returns the combined percentage amplifier from any active
// buff_amplifier effects on u (additive, applied once).
func buffAmplifier(u *unit) float64 {
	total := 0.0
	for _, e := range u.effects {
		if e.Stat == StatBuffAmplifier {
			total += e.Value
		}
	}
	return total
}

// EmitDamage is the shield-then-hp damage cascade shared by basic
// attacks and skill damage effects; DoT ticks run the same cascade in
// EmitDamageOverTimeTick. rawDamage is clamped to at least 1. If the resulting hp
// reaches 0 and target has not yet had its death processed, unit_died is
// emitted immediately after, with the same timestamp.
func (em *Emitter) EmitDamage(attacker, target *unit, rawDamage int, damageType, cause string, timestamp float64) events.Event {
	if rawDamage < 1 {
		rawDamage = 1
	}
	if target.dead {
		panicInvariant("EmitDamage", "target already dead")
	}

	shieldAbsorbed := 0
	remaining := rawDamage
	if target.shield > 0 {
		shieldAbsorbed = min(target.shield, remaining)
		target.shield -= shieldAbsorbed
		remaining -= shieldAbsorbed
	}

	preHP := target.hp
	target.hp = clampInt(preHP-remaining, 0, target.maxHP)

	attackerID, attackerName := "", ""
	if attacker != nil {
		attackerID, attackerName = attacker.id, attacker.Name()
	}

	ev := em.emit(events.TypeUnitAttack, timestamp, map[string]any{
		"attacker_id":     attackerID,
		"attacker_name":   attackerName,
		"target_id":       target.id,
		"target_name":     target.Name(),
		"damage":          rawDamage,
		"applied_damage":  remaining,
		"shield_absorbed": shieldAbsorbed,
		"target_hp":       target.hp,
		"target_max_hp":   target.maxHP,
		"side":            string(target.side),
		"is_skill":        cause == "skill",
		"cause":           cause,
		"damage_type":     damageType,
	})

	if target.hp == 0 && !target.deathProcessed {
		em.EmitUnitDied(target, timestamp)
	}
	return ev
}

// EmitHeal applies amount to target's hp, clamped to max_hp. Healing a
// dead unit is a no-op: no mutation, no event.
func (em *Emitter) EmitHeal(healer, target *unit, amount int, cause string, timestamp float64) (events.Event, bool) {
	if target.dead {
		return events.Event{}, false
	}
	if amount <= 0 {
		return events.Event{}, false
	}
	newHP := clampInt(target.hp+amount, 0, target.maxHP)
	applied := newHP - target.hp
	target.hp = newHP

	healerID := ""
	if healer != nil {
		healerID = healer.id
	}

	ev := em.emit(events.TypeUnitHeal, timestamp, map[string]any{
		"unit_id":        target.id,
		"unit_name":      target.Name(),
		"healer_id":      healerID,
		"amount":         amount,
		"applied_amount": applied,
		"new_hp":         target.hp,
		"side":           string(target.side),
		"cause":          cause,
	})
	return ev, true
}

// EmitStatBuff computes applied_delta (flat = value; percentage =
// round(base*value/100), amplified once by any active buff_amplifier
// effects), mutates the stat, and — unless permanent — attaches a new
// Active Effect. Permanent buffs have no effect object; they accumulate
// into permanent_buffs instead. Negative
// value represents a debuff; the emitted event type is the same either
// way.
func (em *Emitter) EmitStatBuff(recipient, source *unit, stat Stat, value float64, valueType ValueType, duration float64, permanent bool, cause string, timestamp float64) events.Event {
	if recipient.dead {
		panicInvariant("EmitStatBuff", "recipient already dead")
	}

	amplifier := buffAmplifier(recipient)
	effectiveValue := value * (1 + amplifier/100)

	var delta int
	switch valueType {
	case ValuePercentage:
		base := recipient.statValue(stat)
		delta = int(math.Round(base * effectiveValue / 100))
	default:
		delta = int(math.Round(effectiveValue))
	}

	applyStatDelta(recipient, stat, delta)

	effectID := ""
	if !permanent {
		effectID = uuid.NewString()
		recipient.effects = append(recipient.effects, &ActiveEffect{
			ID:           effectID,
			Kind:         effectKindForDelta(delta),
			Stat:         stat,
			Value:        value,
			ValueType:    valueType,
			Duration:     duration,
			ExpiresAt:    timestamp + duration,
			AppliedDelta: delta,
			SourceID:     sourceID(source),
		})
	} else {
		recipient.permanentBuffs[stat] += delta
	}

	sourceIDStr, sourceName := "", ""
	if source != nil {
		sourceIDStr, sourceName = source.id, source.Name()
	}

	return em.emit(events.TypeStatBuff, timestamp, map[string]any{
		"unit_id":      recipient.id,
		"unit_name":    recipient.Name(),
		"stat":         string(stat),
		"value":        value,
		"value_type":   string(valueType),
		"duration":     duration,
		"permanent":    permanent,
		"effect_id":    effectID,
		"applied_delta": delta,
		"caster_id":    sourceIDStr,
		"caster_name":  sourceName,
		"side":         string(recipient.side),
		"cause":        cause,
	})
}

func sourceID(source *unit) string {
	if source == nil {
		return ""
	}
	return source.id
}

func effectKindForDelta(delta int) EffectKind {
	if delta < 0 {
		return EffectDebuff
	}
	return EffectBuff
}

// applyStatDelta mutates the named stat on u by delta, clamping attack
// and defense to >= 0.
func applyStatDelta(u *unit, stat Stat, delta int) {
	switch stat {
	case StatAttack:
		u.attack = max(0, u.attack+delta)
	case StatDefense:
		u.defense = max(0, u.defense+delta)
	case StatAttackSpeed:
		u.attackSpeed = math.Max(0, u.attackSpeed+float64(delta))
	case StatMaxMana:
		u.maxMana = max(0, u.maxMana+delta)
		u.currentMana = clampInt(u.currentMana, 0, u.maxMana)
	case StatManaRegen:
		u.manaRegen = math.Max(0, u.manaRegen+float64(delta))
	case StatHPRegen:
		u.hpRegenPerSec = math.Max(0, u.hpRegenPerSec+float64(delta))
	case StatMaxHP:
		u.maxHP = max(0, u.maxHP+delta)
		u.hp = clampInt(u.hp, 0, u.maxHP)
	case StatHP:
		u.hp = clampInt(u.hp+delta, 0, u.maxHP)
	}
}

// EmitShieldApplied adds amount to recipient's shield and attaches a
// shield Active Effect.
func (em *Emitter) EmitShieldApplied(recipient, source *unit, amount int, duration float64, timestamp float64) events.Event {
	if recipient.dead {
		panicInvariant("EmitShieldApplied", "recipient already dead")
	}
	recipient.shield += amount
	effectID := uuid.NewString()
	recipient.effects = append(recipient.effects, &ActiveEffect{
		ID:        effectID,
		Kind:      EffectShield,
		Value:     float64(amount),
		ValueType: ValueFlat,
		Duration:  duration,
		ExpiresAt: timestamp + duration,
		SourceID:  sourceID(source),
	})

	return em.emit(events.TypeShieldApplied, timestamp, map[string]any{
		"unit_id":   recipient.id,
		"amount":    amount,
		"duration":  duration,
		"effect_id": effectID,
		"source_id": sourceID(source),
		"side":      string(recipient.side),
	})
}

// EmitUnitStunned sets target.stunned_until and attaches a stun Active
// Effect.
func (em *Emitter) EmitUnitStunned(target, source *unit, duration float64, timestamp float64) events.Event {
	if target.dead {
		panicInvariant("EmitUnitStunned", "target already dead")
	}
	target.stunnedUntil = timestamp + duration
	target.hasStun = true
	effectID := uuid.NewString()
	target.effects = append(target.effects, &ActiveEffect{
		ID:        effectID,
		Kind:      EffectStun,
		Duration:  duration,
		ExpiresAt: target.stunnedUntil,
		SourceID:  sourceID(source),
	})

	return em.emit(events.TypeUnitStunned, timestamp, map[string]any{
		"unit_id":   target.id,
		"unit_name": target.Name(),
		"duration":  duration,
		"effect_id": effectID,
		"source_id": sourceID(source),
		"side":      string(target.side),
	})
}

// EmitDamageOverTimeApplied attaches a DoT Active Effect ticking every
// interval seconds for duration seconds. Ticks are produced later by the
// simulator's tick loop, not by this call.
func (em *Emitter) EmitDamageOverTimeApplied(target, source *unit, damage int, damageType string, duration, interval float64, timestamp float64) events.Event {
	if target.dead {
		panicInvariant("EmitDamageOverTimeApplied", "target already dead")
	}
	effectID := uuid.NewString()
	expiresAt := timestamp + duration
	nextTick := timestamp + interval
	target.effects = append(target.effects, &ActiveEffect{
		ID:           effectID,
		Kind:         EffectDamageOverTime,
		Duration:     duration,
		ExpiresAt:    expiresAt,
		NextTickTime: nextTick,
		TickInterval: interval,
		TickDamage:   damage,
		DamageType:   damageType,
		SourceID:     sourceID(source),
	})

	return em.emit(events.TypeDamageOverTimeApplied, timestamp, map[string]any{
		"unit_id":        target.id,
		"caster_id":      sourceID(source),
		"damage":         damage,
		"damage_type":    damageType,
		"duration":       duration,
		"interval":       interval,
		"effect_id":      effectID,
		"next_tick_time": nextTick,
		"expires_at":     expiresAt,
	})
}

// EmitDamageOverTimeTick applies one DoT tick via the shield→hp cascade
// and emits damage_over_time_tick; may cascade to unit_died.
func (em *Emitter) EmitDamageOverTimeTick(target *unit, effectID string, damage int, damageType string, timestamp float64) events.Event {
	if target.dead {
		panicInvariant("EmitDamageOverTimeTick", "target already dead")
	}
	if effect := target.findEffect(effectID); effect != nil {
		effect.NextTickTime = timestamp + effect.TickInterval
	}
	shieldAbsorbed := 0
	remaining := damage
	if target.shield > 0 {
		shieldAbsorbed = min(target.shield, remaining)
		target.shield -= shieldAbsorbed
		remaining -= shieldAbsorbed
	}
	target.hp = clampInt(target.hp-remaining, 0, target.maxHP)

	ev := em.emit(events.TypeDamageOverTimeTick, timestamp, map[string]any{
		"unit_id":     target.id,
		"damage":      damage,
		"damage_type": damageType,
		"new_hp":      target.hp,
		"side":        string(target.side),
	})

	if target.hp == 0 && !target.deathProcessed {
		em.EmitUnitDied(target, timestamp)
	}
	return ev
}

// EmitEffectExpired reverts the effect's applied_delta from its stat
// (clamped to >= 0), clears remaining shield on shield expiry (per the
// policy decision recorded in DESIGN.md), removes the effect from the
// unit's list, and emits effect_expired.
func (em *Emitter) EmitEffectExpired(u *unit, effectID string, timestamp float64) (events.Event, bool) {
	effect := u.findEffect(effectID)
	if effect == nil {
		return events.Event{}, false
	}

	switch effect.Kind {
	case EffectBuff, EffectDebuff:
		applyStatDelta(u, effect.Stat, -effect.AppliedDelta)
	case EffectShield:
		u.shield = 0
	case EffectStun:
		u.stunnedUntil = 0
		u.hasStun = false
	case EffectDamageOverTime:
		// DoT expiry has no stat to revert; ticks already applied damage.
	}

	u.removeEffect(effectID)

	ev := em.emit(events.TypeEffectExpired, timestamp, map[string]any{
		"unit_id":   u.id,
		"effect_id": effectID,
		"stat":      string(effect.Stat),
	})
	return ev, true
}

// EmitUnitDied is idempotent: the first call marks dead, zeroes shield,
// and emits unit_died; later calls are no-ops.
func (em *Emitter) EmitUnitDied(u *unit, timestamp float64) (events.Event, bool) {
	if u.deathProcessed {
		return events.Event{}, false
	}
	u.dead = true
	u.deathProcessed = true
	u.shield = 0

	ev := em.emit(events.TypeUnitDied, timestamp, map[string]any{
		"unit_id":   u.id,
		"unit_name": u.Name(),
		"side":      string(u.side),
	})
	return ev, true
}

// EmitManaUpdate writes current_mana clamped to [0, max_mana] and emits
// mana_update with pre/post/amount.
func (em *Emitter) EmitManaUpdate(u *unit, delta int, cause string, timestamp float64) events.Event {
	pre := u.currentMana
	u.currentMana = clampInt(pre+delta, 0, u.maxMana)

	return em.emit(events.TypeManaUpdate, timestamp, map[string]any{
		"unit_id":   u.id,
		"pre_mana":  pre,
		"post_mana": u.currentMana,
		"amount":    u.currentMana - pre,
		"max_mana":  u.maxMana,
		"cause":     cause,
		"side":      string(u.side),
	})
}

// EmitGoldReward emits gold_reward without mutating any combat-unit
// state: player economy is an external collaborator.
func (em *Emitter) EmitGoldReward(recipientPlayerRef string, amount int, side Side, timestamp float64) events.Event {
	return em.emit(events.TypeGoldReward, timestamp, map[string]any{
		"recipient_id": recipientPlayerRef,
		"amount":       amount,
		"side":         string(side),
	})
}

// EmitAnimationStart emits a timing hint with no state change.
func (em *Emitter) EmitAnimationStart(sourceID, targetID string, duration float64, timestamp float64) events.Event {
	return em.emit(events.TypeAnimationStart, timestamp, map[string]any{
		"animation_id": "basic_attack",
		"attacker_id":  sourceID,
		"target_id":    targetID,
		"duration":     duration,
	})
}

// EmitSkillCast emits the skill_cast event.
func (em *Emitter) EmitSkillCast(caster *unit, skillName string, target *unit, damage *int, timestamp float64) events.Event {
	payload := map[string]any{
		"caster_id":   caster.id,
		"caster_name": caster.Name(),
		"skill_name":  skillName,
	}
	if target != nil {
		payload["target_id"] = target.id
		payload["target_name"] = target.Name()
	}
	if damage != nil {
		payload["damage"] = *damage
	}
	return em.emit(events.TypeSkillCast, timestamp, payload)
}

// EmitSkillError records a recoverable execution-time skill failure: the
// combat continues and the skill's remaining effects are skipped.
func (em *Emitter) EmitSkillError(caster *unit, message string, effectIndex int, timestamp float64) events.Event {
	return em.emit(events.TypeSkillError, timestamp, map[string]any{
		"caster_id":    caster.id,
		"message":      message,
		"effect_index": effectIndex,
	})
}

// EmitStateSnapshot emits a state_snapshot event carrying value-copies of
// every unit on both teams.
func (em *Emitter) EmitStateSnapshot(playerUnits, opponentUnits []UnitSnapshot, timestamp float64) events.Event {
	return em.emit(events.TypeStateSnapshot, timestamp, map[string]any{
		"player_units":   playerUnits,
		"opponent_units": opponentUnits,
	})
}
