package skill

import (
	"fmt"

	"github.com/tacticsforge/combatcore/internal/combat"
	"github.com/tacticsforge/combatcore/internal/combat/targeting"
)

// ResolveTargets resolves tmpl.TargetMode against ctx's roster, without
// running any effect. The caller uses the result to emit skill_cast
// before RunEffects produces the cast's own effect events, and to
// persist the caster's possibly-updated persistent single-enemy target.
func ResolveTargets(ctx *Context, tmpl *combat.SkillTemplate) ([]combat.UnitRef, combat.UnitRef) {
	return targeting.Resolve(tmpl.TargetMode, ctx.Caster, targeting.Roster{
		Allies:  ctx.Allies,
		Enemies: ctx.Enemies,
	}, ctx.RNG, ctx.Persistent)
}

// Execute runs tmpl's effect list against every target tmpl.TargetMode
// resolves, in order, via ctx.Emitter. It returns the
// resolved targets (so the caller can log them without re-resolving and
// burning a second RNG draw), the caster's possibly-updated persistent
// single-enemy target, and, if an effect step failed, an *ExecError
// naming which step — the caller emits skill_error with that index and
// abandons the remaining steps for this cast.
func Execute(ctx *Context, tmpl *combat.SkillTemplate) ([]combat.UnitRef, combat.UnitRef, error) {
	targets, persistent := ResolveTargets(ctx, tmpl)
	ctx.Persistent = persistent

	if len(targets) == 0 {
		return nil, persistent, nil
	}

	if err := RunEffects(ctx, tmpl, targets); err != nil {
		return targets, persistent, err
	}
	return targets, persistent, nil
}

// RunEffects runs tmpl's effect list against each of targets in turn.
func RunEffects(ctx *Context, tmpl *combat.SkillTemplate, targets []combat.UnitRef) error {
	for _, target := range targets {
		for i, step := range tmpl.Effects {
			if err := runStep(ctx, tmpl, step, target); err != nil {
				return &ExecError{EffectIndex: i, Err: err}
			}
		}
	}
	return nil
}

// FirstDamageValue returns the resolved magnitude of the first
// damage-bearing effect step tmpl would run, searching into repeat and
// conditional branches, or nil if the skill deals no direct damage.
// The caller reports this on the skill_cast event before any effect
// has actually run, so it reflects the cast's base value rather than
// any particular target's outcome.
func FirstDamageValue(tmpl *combat.SkillTemplate, caster combat.UnitRef) *int {
	return firstDamageInSteps(tmpl.Effects, caster)
}

func firstDamageInSteps(steps []combat.EffectStep, caster combat.UnitRef) *int {
	for _, step := range steps {
		switch step.Type {
		case combat.EffectTypeDamage:
			v := resolveMagnitude(step.Value, step.ValueType, caster)
			return &v
		case combat.EffectTypeRepeat:
			if v := firstDamageInSteps(step.Steps, caster); v != nil {
				return v
			}
		case combat.EffectTypeConditional:
			if v := firstDamageInSteps(step.IfSteps, caster); v != nil {
				return v
			}
			if v := firstDamageInSteps(step.ElseSteps, caster); v != nil {
				return v
			}
		}
	}
	return nil
}

// runStep dispatches one effect step against a single resolved target.
func runStep(ctx *Context, tmpl *combat.SkillTemplate, step combat.EffectStep, target combat.UnitRef) error {
	if !target.Alive() {
		return nil
	}

	stat := step.Stat
	if stat == combat.StatRandom && (step.Type == combat.EffectTypeBuff || step.Type == combat.EffectTypeDebuff) {
		stat, _ = combat.Pick(ctx.RNG, []combat.Stat{combat.StatDefense, combat.StatAttack, combat.StatAttackSpeed})
	}

	switch step.Type {
	case combat.EffectTypeDamage:
		raw := resolveMagnitude(step.Value, step.ValueType, ctx.Caster)
		ctx.Emitter.EmitDamage(ctx.Caster, target, raw, step.DamageType, "skill", ctx.Now)

	case combat.EffectTypeHeal:
		amount := resolveMagnitude(step.Value, step.ValueType, ctx.Caster)
		ctx.Emitter.EmitHeal(ctx.Caster, target, amount, "skill", ctx.Now)

	case combat.EffectTypeShield:
		ctx.Emitter.EmitShieldApplied(target, ctx.Caster, int(step.ShieldAmount), step.Duration, ctx.Now)

	case combat.EffectTypeBuff:
		ctx.Emitter.EmitStatBuff(target, ctx.Caster, stat, step.Value, step.ValueType, step.Duration, step.Duration <= 0, "skill", ctx.Now)

	case combat.EffectTypeDebuff:
		value := step.Value
		if value > 0 {
			value = -value
		}
		ctx.Emitter.EmitStatBuff(target, ctx.Caster, stat, value, step.ValueType, step.Duration, step.Duration <= 0, "skill", ctx.Now)

	case combat.EffectTypeStun:
		ctx.Emitter.EmitUnitStunned(target, ctx.Caster, step.StunDuration, ctx.Now)

	case combat.EffectTypeDelay:
		ctx.Caster.SetLastAttackTime(ctx.Caster.LastAttackTime() + step.DelaySeconds)

	case combat.EffectTypeDamageOverTime:
		ctx.Emitter.EmitDamageOverTimeApplied(target, ctx.Caster, int(step.Value), step.DamageType, step.TickInterval*float64(step.TickCount), step.TickInterval, ctx.Now)

	case combat.EffectTypeRepeat:
		cur := target
		for n := 0; n < step.Times; n++ {
			if tmpl.TargetMode == combat.TargetSingleEnemy {
				if rerolled, ok := rerollSingleEnemy(ctx); ok {
					cur = rerolled
				}
			}
			for _, nested := range step.Steps {
				if err := runStep(ctx, tmpl, nested, cur); err != nil {
					return err
				}
			}
		}

	case combat.EffectTypeConditional:
		branch := step.ElseSteps
		if evaluate(ctx, step.Condition, target) {
			branch = step.IfSteps
		}
		for _, nested := range branch {
			if err := runStep(ctx, tmpl, nested, target); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("unknown effect type %q", step.Type)
	}
	return nil
}

// rerollSingleEnemy re-resolves a fresh single_enemy target for one
// repeat iteration. single_enemy_persistent targets are never re-rolled
// here: they reach runStep with TargetSingleEnemyPersistent, which this
// helper never touches, so the repeat keeps hitting the same target.
func rerollSingleEnemy(ctx *Context) (combat.UnitRef, bool) {
	candidates, _ := targeting.Resolve(combat.TargetSingleEnemy, ctx.Caster, targeting.Roster{
		Allies:  ctx.Allies,
		Enemies: ctx.Enemies,
	}, ctx.RNG, nil)
	if len(candidates) != 1 {
		return nil, false
	}
	return candidates[0], true
}

// resolveMagnitude turns a (value, valueType) pair into a concrete
// integer amount, scaling a percentage value off the caster's current
// attack stat.
func resolveMagnitude(value float64, vt combat.ValueType, caster combat.UnitRef) int {
	if vt == combat.ValuePercentage {
		return int(value / 100 * float64(caster.Attack()))
	}
	return int(value)
}
