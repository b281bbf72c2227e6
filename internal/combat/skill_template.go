package combat

// TargetMode enumerates how a skill's effects resolve their subject(s).
type TargetMode string

const (
	TargetSelf                   TargetMode = "SELF"
	TargetSingleEnemy            TargetMode = "SINGLE_ENEMY"
	TargetSingleEnemyPersistent  TargetMode = "SINGLE_ENEMY_PERSISTENT"
	TargetEnemyTeam              TargetMode = "ENEMY_TEAM"
	TargetEnemyFront             TargetMode = "ENEMY_FRONT"
	TargetAllyTeam               TargetMode = "ALLY_TEAM"
	TargetAllyFront              TargetMode = "ALLY_FRONT"
)

// EffectType enumerates the effect handlers a skill step can invoke.
type EffectType string

const (
	EffectTypeDamage          EffectType = "damage"
	EffectTypeHeal            EffectType = "heal"
	EffectTypeShield          EffectType = "shield"
	EffectTypeBuff            EffectType = "buff"
	EffectTypeDebuff          EffectType = "debuff"
	EffectTypeStun            EffectType = "stun"
	EffectTypeDelay           EffectType = "delay"
	EffectTypeDamageOverTime  EffectType = "damage_over_time"
	EffectTypeRepeat          EffectType = "repeat"
	EffectTypeConditional     EffectType = "conditional"
)

// ConditionType enumerates the predicates a conditional effect step can
// branch on.
type ConditionType string

const (
	ConditionHealthPercentage ConditionType = "health_percentage"
	ConditionHasEffect        ConditionType = "has_effect"
	ConditionStatComparison   ConditionType = "stat_comparison"
	ConditionRandom           ConditionType = "random"
)

// Comparator is the operator a stat_comparison or health_percentage
// condition applies between its subject's value and Threshold.
type Comparator string

const (
	CmpLessThan    Comparator = "lt"
	CmpLessEqual   Comparator = "lte"
	CmpGreaterThan Comparator = "gt"
	CmpGreaterEqual Comparator = "gte"
	CmpEqual       Comparator = "eq"
)

// EffectCondition selects which branch a "conditional" effect step runs.
// Steps of other types ignore their Condition field.
type EffectCondition struct {
	Type       ConditionType
	Stat       Stat       // stat_comparison
	Comparator Comparator // health_percentage, stat_comparison
	Threshold  float64    // health_percentage, stat_comparison, random (percent chance)
	EffectKind EffectKind // has_effect
}

// EffectStep is one entry in a skill's ordered effect list. Not every
// field is meaningful for every Type; the executor interprets fields by
// Type according to its kind.
type EffectStep struct {
	Type EffectType

	// damage / heal / damage_over_time
	Value      float64
	ValueType  ValueType
	DamageType string

	// buff / debuff
	Stat     Stat
	Duration float64

	// shield
	ShieldAmount float64

	// stun
	StunDuration float64

	// delay
	DelaySeconds float64

	// damage_over_time
	TickInterval float64
	TickCount    int

	// repeat
	Times int
	Steps []EffectStep

	// conditional
	Condition  EffectCondition
	IfSteps    []EffectStep
	ElseSteps  []EffectStep
}

// SkillTemplate is the immutable, externally supplied definition of a
// unit's active skill: a cast cost, a target mode,
// and an ordered list of effect steps.
type SkillTemplate struct {
	ID          string
	Name        string
	ManaCost    int
	TargetMode  TargetMode
	Effects     []EffectStep
}
