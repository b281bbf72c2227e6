package combat

// Stat identifies a mutable numeric attribute of a combat unit that can be
// the target of a buff, debuff, or permanent accumulation.
type Stat string

const (
	StatHP           Stat = "hp"
	StatMaxHP        Stat = "max_hp"
	StatAttack       Stat = "attack"
	StatDefense      Stat = "defense"
	StatAttackSpeed  Stat = "attack_speed"
	StatMaxMana      Stat = "max_mana"
	StatManaRegen    Stat = "mana_regen"
	StatHPRegen      Stat = "hp_regen_per_sec"
	StatRandom       Stat = "random" // resolved at cast time by the skill executor's buff/debuff steps
)

// randomizableStats lists the stats "random" resolves to at cast time:
// {defense, attack, attack_speed}. The skill executor draws from the
// same three stats with the combat RNG.
var randomizableStats = []Stat{StatDefense, StatAttack, StatAttackSpeed}

// ValueType distinguishes a flat stat delta from a percentage-of-base one.
type ValueType string

const (
	ValueFlat       ValueType = "flat"
	ValuePercentage ValueType = "percentage"
)

// Side identifies which of the two teams a unit belongs to.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Position is a unit's row, used for front/back targeting rules.
type Position string

const (
	PositionFront Position = "front"
	PositionBack  Position = "back"
)

// BaseStats is the static stat block carried by a UnitTemplate.
type BaseStats struct {
	HP           int
	Attack       int
	Defense      int
	AttackSpeed  float64
	MaxMana      int
	ManaOnAttack int
	ManaRegen    float64
}

// UnitTemplate is the immutable, externally supplied definition a
// CombatUnit is constructed from. Unit/trait JSON loading is an external
// collaborator; this struct is the pure data shape the core
// accepts, not a deserializer.
type UnitTemplate struct {
	ID          string
	DisplayName string
	CostTier    int
	FactionTags []string
	ClassTags   []string
	Base        BaseStats
	Skill       *SkillTemplate
}

// TraitType distinguishes faction from class traits.
type TraitType string

const (
	TraitFaction TraitType = "faction"
	TraitClass   TraitType = "class"
)

// Trigger is the condition under which a trait's Modular Effect fires.
type Trigger string

const (
	TriggerOnEnemyDeath  Trigger = "on_enemy_death"
	TriggerOnAllyDeath   Trigger = "on_ally_death"
	TriggerOnAllyHPBelow Trigger = "on_ally_hp_below"
	TriggerPerSecond     Trigger = "per_second"
	TriggerPerRound      Trigger = "per_round"
	TriggerOnWin         Trigger = "on_win"
	TriggerOnLoss        Trigger = "on_loss"
	TriggerPerTrait      Trigger = "per_trait"
)

// RewardKind enumerates what a Modular Effect grants when its trigger
// fires and conditions are met.
type RewardKind string

const (
	RewardStatBuff    RewardKind = "stat_buff"
	RewardResource    RewardKind = "resource"
	RewardManaRegen   RewardKind = "mana_regen"
	RewardHeal        RewardKind = "heal"
	RewardGold        RewardKind = "gold"
)

// Reward is one grant produced by a Modular Effect when it fires.
type Reward struct {
	Kind       RewardKind
	Stat       Stat      // for RewardStatBuff / RewardManaRegen
	Value      float64   // magnitude; semantics depend on Kind
	ValueType  ValueType // for RewardStatBuff
	Permanent  bool      // for RewardStatBuff: accumulates into permanent_buffs, no expiry
	Duration   float64   // for RewardStatBuff when not permanent
	TargetSelf bool       // carried on the reward but not read: the engine applies every reward side-wide
}

// Condition gates whether a fired trigger actually grants its rewards.
type Condition struct {
	ChancePercent float64 // 0 means "always" unless explicitly set
	TriggerOnce   bool
}

// ModularEffect is one activation tier's behaviour for a Trait:
// a (trigger, conditions, rewards) tuple.
type ModularEffect struct {
	Trigger         Trigger
	Condition       Condition
	Rewards         []Reward
	HPBelowPercent  float64 // only meaningful for TriggerOnAllyHPBelow
}

// Trait is the static description of a faction or class synergy: an
// ordered list of unit-count thresholds, each with its own ModularEffect.
type Trait struct {
	Name       string
	Type       TraitType
	Thresholds []int
	Tiers      []ModularEffect // Tiers[i] activates at Thresholds[i] units
}
