package combat

import "github.com/tacticsforge/combatcore/internal/combat/mana"

// EffectKind enumerates the runtime shape of an Active Effect.
type EffectKind string

const (
	EffectBuff           EffectKind = "buff"
	EffectDebuff         EffectKind = "debuff"
	EffectShield         EffectKind = "shield"
	EffectStun           EffectKind = "stun"
	EffectDamageOverTime EffectKind = "damage_over_time"
)

// ActiveEffect is a durational modifier attached to a unit. Its id is the
// join key between the apply-event and the expiry event:
// the reconstructor never re-derives which effect to remove from
// positional matching.
type ActiveEffect struct {
	ID         string
	Kind       EffectKind
	Stat       Stat // zero value for shield/stun
	Value      float64
	ValueType  ValueType
	Duration   float64
	ExpiresAt  float64
	// DoT-only fields.
	NextTickTime float64
	TickInterval float64
	TickDamage   int
	DamageType   string
	// AppliedDelta is the signed integer actually added to Stat at apply
	// time. Stored so effect_expired can revert exactly, even for
	// percentage buffs whose recomputation from current state could
	// drift.
	AppliedDelta int
	SourceID     string
}

// unit is the mutable runtime state of one combat participant. All
// fields are unexported: the only code permitted to write hp, shield,
// mana, the effects list, the dead flag, or any stat field is the
// Emitter. Every other package observes a unit only through Snapshot or
// the narrow read-only accessors below.
type unit struct {
	id       string
	template *UnitTemplate
	side     Side
	position Position
	starLevel int

	hp    int
	maxHP int

	attack      int
	defense     int
	attackSpeed float64

	currentMana int
	maxMana     int
	manaRegen   float64
	manaOnAttack int

	hpRegenPerSec float64

	shield int

	effects []*ActiveEffect

	dead           bool
	deathProcessed bool

	stunnedUntil    float64
	hasStun         bool
	lastAttackTime  float64

	collectedStats  map[Stat]int
	permanentBuffs  map[Stat]int

	hpRegenPool   mana.Pool
	manaRegenPool mana.Pool

	// hpBelowFired is allocated by newUnit but never read or written.
	// trigger_once for on_ally_hp_below is tracked per active trait tier
	// (traits.ActiveTier), not per unit.
	hpBelowFired map[float64]bool
}

// newUnit constructs a fresh runtime unit from a template. Star scaling
// (hp *= 1.6^(star-1), attack *= 1.4^(star-1)) happens outside this core
// — callers pass already-scaled BaseStats
// via template, and star is carried only for snapshot purposes.
func newUnit(id string, tmpl *UnitTemplate, side Side, pos Position, star int) *unit {
	return &unit{
		id:             id,
		template:       tmpl,
		side:           side,
		position:       pos,
		starLevel:      star,
		hp:             tmpl.Base.HP,
		maxHP:          tmpl.Base.HP,
		attack:         tmpl.Base.Attack,
		defense:        tmpl.Base.Defense,
		attackSpeed:    tmpl.Base.AttackSpeed,
		currentMana:    0,
		maxMana:        tmpl.Base.MaxMana,
		manaRegen:      tmpl.Base.ManaRegen,
		manaOnAttack:   tmpl.Base.ManaOnAttack,
		collectedStats: make(map[Stat]int),
		permanentBuffs: make(map[Stat]int),
		hpBelowFired:   make(map[float64]bool),
	}
}

// NewUnit constructs a fresh combat unit from a template and returns an
// opaque handle external packages (engine, combattest) can hold and pass
// to an Emitter, but never reach into directly.
func NewUnit(id string, tmpl *UnitTemplate, side Side, pos Position, star int) UnitRef {
	return newUnit(id, tmpl, side, pos, star)
}

// UnitRef is the opaque handle other packages (skill, targeting, traits)
// hold to a combat unit. It is a type alias, not a wrapper: it carries
// the full exported method set of *unit, but because unit itself is
// unexported, code outside this package can never name the concrete
// type or reach its fields — every mutation must still go through the
// Emitter, even from a
// separately-packaged skill executor.
type UnitRef = *unit

// ID returns the unit's instance-unique identifier.
func (u *unit) ID() string { return u.id }

// Side returns which team the unit belongs to.
func (u *unit) Side() Side { return u.side }

// Position returns the unit's row.
func (u *unit) Position() Position { return u.position }

// CurrentMana returns the unit's current mana.
func (u *unit) CurrentMana() int { return u.currentMana }

// MaxMana returns the unit's max mana.
func (u *unit) MaxMana() int { return u.maxMana }

// Defense returns the unit's current defense.
func (u *unit) Defense() int { return u.defense }

// Attack returns the unit's current attack.
func (u *unit) Attack() int { return u.attack }

// AttackSpeed returns the unit's current attack speed.
func (u *unit) AttackSpeed() float64 { return u.attackSpeed }

// ManaOnAttack returns the mana the unit gains per basic attack.
func (u *unit) ManaOnAttack() int { return u.manaOnAttack }

// Tags returns the union of the unit's faction and class tags, the
// trait-count source for Registry construction.
func (u *unit) Tags() []string {
	if u.template == nil {
		return nil
	}
	tags := make([]string, 0, len(u.template.FactionTags)+len(u.template.ClassTags))
	tags = append(tags, u.template.FactionTags...)
	tags = append(tags, u.template.ClassTags...)
	return tags
}

// Skill returns the unit's skill template, or nil if it has none.
func (u *unit) Skill() *SkillTemplate {
	if u.template == nil {
		return nil
	}
	return u.template.Skill
}

// StatValue returns the current value of a stat by name (exported for
// condition evaluation in the skill package).
func (u *unit) StatValue(stat Stat) float64 { return u.statValue(stat) }

// HasEffectKind reports whether the unit carries an active effect of the
// given kind, used by the has_effect condition.
func (u *unit) HasEffectKind(kind EffectKind) bool {
	for _, e := range u.effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Effects returns the unit's active effects. The returned pointers alias
// internal state for scheduling fields only (ExpiresAt, NextTickTime);
// callers outside this package must still route every stat or hp/mana
// change through the Emitter.
func (u *unit) Effects() []*ActiveEffect { return u.effects }

// LastAttackTime returns the simulated time of the unit's last action.
func (u *unit) LastAttackTime() float64 { return u.lastAttackTime }

// SetLastAttackTime records the simulated time of the unit's last action.
// Exposed for the delay effect handler, which
// advances the caster's action clock without going through the emitter
// since it mutates no observable stat.
func (u *unit) SetLastAttackTime(t float64) { u.lastAttackTime = t }

// TickHPRegen advances the unit's hp regeneration pool by dt seconds and
// returns the whole hp points now due. The caller still applies the
// delta through the Emitter (EmitHeal); this only advances the carry.
func (u *unit) TickHPRegen(dt float64) int {
	return u.hpRegenPool.Tick(u.hpRegenPerSec, dt)
}

// TickManaRegen advances the unit's mana regeneration pool by dt seconds
// and returns the whole mana points now due.
func (u *unit) TickManaRegen(dt float64) int {
	return u.manaRegenPool.Tick(u.manaRegen, dt)
}

// Name returns the unit's display name from its template.
func (u *unit) Name() string {
	if u.template == nil {
		return u.id
	}
	return u.template.DisplayName
}

// Alive reports whether the unit may still act or be targeted.
func (u *unit) Alive() bool { return !u.dead }

// HasSkill reports whether the unit's template carries a skill.
func (u *unit) HasSkill() bool { return u.template != nil && u.template.Skill != nil }

// IsFront reports whether the unit occupies the front row.
func (u *unit) IsFront() bool { return u.position == PositionFront }

// Stunned reports whether the unit is stunned at simulated time now.
func (u *unit) Stunned(now float64) bool { return u.hasStun && now < u.stunnedUntil }

// HPPercent returns the unit's current hp as a percentage of max hp.
func (u *unit) HPPercent() float64 {
	if u.maxHP <= 0 {
		return 0
	}
	return float64(u.hp) / float64(u.maxHP) * 100
}

// statValue returns the current value of a stat by name, used for
// percentage-buff computation and stat_comparison conditions.
func (u *unit) statValue(stat Stat) float64 {
	switch stat {
	case StatHP:
		return float64(u.hp)
	case StatMaxHP:
		return float64(u.maxHP)
	case StatAttack:
		return float64(u.attack)
	case StatDefense:
		return float64(u.defense)
	case StatAttackSpeed:
		return u.attackSpeed
	case StatMaxMana:
		return float64(u.maxMana)
	case StatManaRegen:
		return u.manaRegen
	case StatHPRegen:
		return u.hpRegenPerSec
	default:
		return 0
	}
}

// findEffect returns the active effect with the given id, if any.
func (u *unit) findEffect(id string) *ActiveEffect {
	for _, e := range u.effects {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// removeEffect deletes the active effect with the given id.
func (u *unit) removeEffect(id string) {
	for i, e := range u.effects {
		if e.ID == id {
			u.effects = append(u.effects[:i], u.effects[i+1:]...)
			return
		}
	}
}

// UnitSnapshot is a deep, value-typed copy of a unit's observable fields,
// suitable for inclusion in a state_snapshot event or for
// returned survivor lists. It never aliases unit-internal slices/maps.
type UnitSnapshot struct {
	ID          string
	Side        Side
	Position    Position
	StarLevel   int
	HP          int
	MaxHP       int
	Attack      int
	Defense     int
	AttackSpeed float64
	CurrentMana int
	MaxMana     int
	Shield      int
	Dead        bool
	Effects     []ActiveEffect
	BuffedStats map[Stat]int
}

// Snapshot returns a deep copy of u's observable fields.
func (u *unit) Snapshot() UnitSnapshot {
	effects := make([]ActiveEffect, len(u.effects))
	for i, e := range u.effects {
		effects[i] = *e
	}
	buffed := make(map[Stat]int, len(u.permanentBuffs))
	for k, v := range u.permanentBuffs {
		buffed[k] = v
	}
	return UnitSnapshot{
		ID:          u.id,
		Side:        u.side,
		Position:    u.position,
		StarLevel:   u.starLevel,
		HP:          u.hp,
		MaxHP:       u.maxHP,
		Attack:      u.attack,
		Defense:     u.defense,
		AttackSpeed: u.attackSpeed,
		CurrentMana: u.currentMana,
		MaxMana:     u.maxMana,
		Shield:      u.shield,
		Dead:        u.dead,
		Effects:     effects,
		BuffedStats: buffed,
	}
}
