// Package events defines the canonical event envelope emitted by the
// combat core and the synchronous bus used to fan events out to
// in-process listeners within a single combat.
package events

import (
	"sync"
)

// Type identifies the kind of a canonical combat event.
type Type string

const (
	TypeUnitAttack             Type = "unit_attack"
	TypeUnitHeal               Type = "unit_heal"
	TypeStatBuff               Type = "stat_buff"
	TypeShieldApplied          Type = "shield_applied"
	TypeUnitStunned            Type = "unit_stunned"
	TypeDamageOverTimeApplied  Type = "damage_over_time_applied"
	TypeDamageOverTimeTick     Type = "damage_over_time_tick"
	TypeEffectExpired          Type = "effect_expired"
	TypeUnitDied               Type = "unit_died"
	TypeManaUpdate             Type = "mana_update"
	TypeAnimationStart         Type = "animation_start"
	TypeStateSnapshot          Type = "state_snapshot"
	TypeGoldReward             Type = "gold_reward"
	TypeSkillCast              Type = "skill_cast"
	TypeSkillError             Type = "skill_error"
)

// Event is the canonical, totally-ordered record of a single authoritative
// state mutation (or, for animation_start/state_snapshot, a timing/anchor
// notification). Payload carries the event-type-specific fields for its
// Type; it is a plain map so the reconstructor and any JSON encoder can
// treat every event uniformly.
type Event struct {
	Type      Type
	Seq       int64
	EventID   string
	Timestamp float64
	Payload   map[string]any
}

// Listener receives every published event, in publish order.
type Listener func(Event)

// Bus is a synchronous, single-combat publish/subscribe fan-out. It has no
// buffering and no goroutines of its own: Publish calls every listener
// inline, on the simulator's own goroutine, so each listener sees events
// in publish order and can never observe an event out of seq order. This mirrors the simulator's single-threaded, cooperative
// scheduling model.
type Bus struct {
	mu         sync.Mutex
	listeners  map[int]Listener
	nextHandle int
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

// Subscribe registers a listener and returns a handle for Unsubscribe.
func (b *Bus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	handle := b.nextHandle
	b.nextHandle++
	b.listeners[handle] = listener
	return handle
}

// Unsubscribe removes a previously registered listener.
func (b *Bus) Unsubscribe(handle int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, handle)
}

// Publish delivers event to every registered listener. Listener order is
// not guaranteed (map iteration), but delivery is synchronous and
// completes before Publish returns — callers may rely on every listener
// having observed event by the time the next event is emitted. No
// listener registered on this bus emits further events back into it, so
// the unordered fan-out never affects the combat's own Seq ordering.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}
