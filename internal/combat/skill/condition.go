package skill

import "github.com/tacticsforge/combatcore/internal/combat"

// compare applies c between actual and threshold.
func compare(c combat.Comparator, actual, threshold float64) bool {
	switch c {
	case combat.CmpLessThan:
		return actual < threshold
	case combat.CmpLessEqual:
		return actual <= threshold
	case combat.CmpGreaterThan:
		return actual > threshold
	case combat.CmpGreaterEqual:
		return actual >= threshold
	case combat.CmpEqual:
		return actual == threshold
	default:
		return false
	}
}

// evaluate reports whether cond holds for subject. The random condition
// consumes ctx.RNG, so evaluating the same conditional twice is not
// guaranteed to agree — callers must evaluate each conditional exactly
// once per cast.
func evaluate(ctx *Context, cond combat.EffectCondition, subject combat.UnitRef) bool {
	switch cond.Type {
	case combat.ConditionHealthPercentage:
		return compare(cond.Comparator, subject.HPPercent(), cond.Threshold)
	case combat.ConditionHasEffect:
		return subject.HasEffectKind(cond.EffectKind)
	case combat.ConditionStatComparison:
		return compare(cond.Comparator, subject.StatValue(cond.Stat), cond.Threshold)
	case combat.ConditionRandom:
		return ctx.RNG.Bernoulli(cond.Threshold / 100)
	default:
		return false
	}
}
