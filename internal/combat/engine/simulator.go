// Package engine runs the fixed-step tick loop that drives one combat
// from its initial roster to a win, loss, or timeout, orchestrating the
// combat package's Emitter together with the skill, targeting, and
// traits packages.
package engine

import (
	"go.uber.org/zap"

	"github.com/tacticsforge/combatcore/internal/combat"
	"github.com/tacticsforge/combatcore/internal/combat/config"
	"github.com/tacticsforge/combatcore/internal/combat/events"
	"github.com/tacticsforge/combatcore/internal/combat/metrics"
	"github.com/tacticsforge/combatcore/internal/combat/skill"
	"github.com/tacticsforge/combatcore/internal/combat/targeting"
	"github.com/tacticsforge/combatcore/internal/combat/traits"
)

// hpBelowThresholds is the fixed set of on_ally_hp_below checkpoints the
// simulator evaluates every tick. A trait's ModularEffect.HPBelowPercent
// only fires when the unit's hp percent crosses at or below it, so a
// fixed small set keeps the check cheap without needing a derivative.
var hpBelowThresholds = []float64{50, 25, 10}

// UnitSpec is one fielded unit: a template instantiated at a board
// position and star level.
type UnitSpec struct {
	ID       string
	Template *combat.UnitTemplate
	Side     combat.Side
	Position combat.Position
	Star     int
}

// TeamInput is one side's roster plus the trait definitions its fielded
// units can activate.
type TeamInput struct {
	Units  []UnitSpec
	Traits []*combat.Trait
}

// Input is everything RunCombat needs to simulate one combat.
type Input struct {
	CombatID string
	Seed     int64
	TeamA    TeamInput
	TeamB    TeamInput
	Config   config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Collectors
	Bus      *events.Bus
	Callback combat.Callback

	// CompletedRounds is how many rounds of the outer meta-progression
	// have already finished before this combat. A per_round Modular
	// Effect fires once at combat start, scaled by this count.
	CompletedRounds int
}

// combatState is the engine's working set for one combat run.
type combatState struct {
	cfg   config.Config
	rng   combat.RNG
	em    *combat.Emitter
	sched combat.Scheduler

	units map[string]combat.UnitRef
	teamA []combat.UnitRef
	teamB []combat.UnitRef

	traitsA *traits.Registry
	traitsB *traits.Registry

	persistent map[string]combat.UnitRef

	completedRounds int

	// deathTriggered records, per unit id, whether that unit's death has
	// already fired its on_ally_death/on_enemy_death triggers, so a dead
	// unit observed across several ticks only triggers once.
	deathTriggered map[string]bool

	lastSecond int
	now        float64

	m *metrics.Collectors
}

// RunCombat simulates a full combat and returns its outcome. It is the only exported entry point of the Simulator.
func RunCombat(in Input) combat.Result {
	logger := in.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	callback := in.Callback
	if in.Metrics != nil {
		wrapped := callback
		callback = func(eventType string, payload map[string]any) {
			in.Metrics.ObserveEvent(eventType)
			if wrapped != nil {
				wrapped(eventType, payload)
			}
		}
	}

	cs := &combatState{
		cfg:             in.Config,
		rng:             combat.NewRNG(in.Seed),
		em:              combat.NewEmitter(in.CombatID, in.Bus, callback, logger),
		sched:           combat.NewScheduler(),
		units:           make(map[string]combat.UnitRef),
		persistent:      make(map[string]combat.UnitRef),
		deathTriggered:  make(map[string]bool),
		completedRounds: in.CompletedRounds,
		lastSecond:      -1,
		m:               in.Metrics,
	}

	cs.teamA = cs.fieldTeam(in.TeamA)
	cs.teamB = cs.fieldTeam(in.TeamB)
	cs.traitsA = traits.NewRegistry(traitMap(in.TeamA.Traits), countTraits(cs.teamA, in.TeamA.Traits))
	cs.traitsB = traits.NewRegistry(traitMap(in.TeamB.Traits), countTraits(cs.teamB, in.TeamB.Traits))

	logger.Debug("combat started", zap.String("combat_id", in.CombatID), zap.Int64("seed", in.Seed))

	result := cs.run()

	if in.Metrics != nil {
		in.Metrics.CombatsTotal.Inc()
		in.Metrics.CombatDuration.Observe(result.Duration)
	}
	logger.Info("combat finished",
		zap.String("combat_id", in.CombatID),
		zap.String("winner", string(result.Winner)),
		zap.Float64("duration", result.Duration))
	return result
}

func (cs *combatState) fieldTeam(in TeamInput) []combat.UnitRef {
	out := make([]combat.UnitRef, 0, len(in.Units))
	for _, spec := range in.Units {
		u := combat.NewUnit(spec.ID, spec.Template, spec.Side, spec.Position, spec.Star)
		// Seed LastAttackTime one full interval in the past so no unit
		// is held out of action at t=0 (processAttacks skips a unit only
		// while now < LastAttackTime).
		u.SetLastAttackTime(-attackInterval(u))
		cs.units[spec.ID] = u
		out = append(out, u)
	}
	return out
}

func traitMap(defs []*combat.Trait) map[string]*combat.Trait {
	m := make(map[string]*combat.Trait, len(defs))
	for _, t := range defs {
		m[t.Name] = t
	}
	return m
}

// countTraits counts, for every trait def, how many fielded units carry
// its name as a faction or class tag. Trait activation is computed once
// against the starting roster: units that later die
// do not shrink an already-active tier mid-combat.
func countTraits(units []combat.UnitRef, defs []*combat.Trait) map[string]int {
	counts := make(map[string]int, len(defs))
	for _, t := range defs {
		counts[t.Name] = 0
	}
	for _, u := range units {
		for _, tag := range u.Tags() {
			if _, ok := counts[tag]; ok {
				counts[tag]++
			}
		}
	}
	return counts
}

// fireOneShotTraits fires the two trigger kinds that activate exactly
// once, at combat start, rather than on a recurring tick cadence:
// per_round (scaled by how many meta-progression rounds already
// finished) and per_trait (scaled by how many trait tiers are currently
// active on the side, the per_trait tier itself included).
func (cs *combatState) fireOneShotTraits() {
	cs.emitTraitTriggerScaled(cs.traitsA, combat.TriggerPerRound, 0, float64(cs.completedRounds))
	cs.emitTraitTriggerScaled(cs.traitsB, combat.TriggerPerRound, 0, float64(cs.completedRounds))
	cs.emitTraitTriggerScaled(cs.traitsA, combat.TriggerPerTrait, 0, float64(activeTierCount(cs.traitsA)))
	cs.emitTraitTriggerScaled(cs.traitsB, combat.TriggerPerTrait, 0, float64(activeTierCount(cs.traitsB)))
}

func activeTierCount(reg *traits.Registry) int {
	if reg == nil {
		return 0
	}
	return len(reg.Active())
}

func (cs *combatState) run() combat.Result {
	cs.fireOneShotTraits()
	for {
		cs.tick()

		if cs.now >= cs.cfg.TimeoutSeconds {
			return cs.finish(combat.WinnerTimeout, true)
		}
		if winner, done := cs.checkWin(); done {
			return cs.finish(winner, false)
		}
		cs.now += cs.cfg.Dt
	}
}

func (cs *combatState) finish(winner combat.Winner, timeout bool) combat.Result {
	switch winner {
	case combat.WinnerA:
		cs.emitTraitTrigger(cs.traitsA, combat.TriggerOnWin, 0)
		cs.emitTraitTrigger(cs.traitsB, combat.TriggerOnLoss, 0)
	case combat.WinnerB:
		cs.emitTraitTrigger(cs.traitsB, combat.TriggerOnWin, 0)
		cs.emitTraitTrigger(cs.traitsA, combat.TriggerOnLoss, 0)
	}

	survivorsA := snapshotAll(cs.teamA)
	survivorsB := snapshotAll(cs.teamB)
	cs.em.EmitStateSnapshot(survivorsA, survivorsB, cs.now)

	return combat.Result{
		Winner:           winner,
		Timeout:          timeout,
		Duration:         cs.now,
		TeamASurvivors:   survivorsA,
		TeamBSurvivors:   survivorsB,
		SurvivingStarSum: starSum(survivorsA) + starSum(survivorsB),
		Events:           eventsToRecorded(cs.em),
	}
}

func eventsToRecorded(em *combat.Emitter) []combat.RecordedEvent {
	log := em.Log()
	out := make([]combat.RecordedEvent, len(log))
	for i, ev := range log {
		out[i] = combat.RecordedEvent{Type: string(ev.Type), Payload: ev.Payload}
	}
	return out
}

func snapshotAll(units []combat.UnitRef) []combat.UnitSnapshot {
	out := make([]combat.UnitSnapshot, 0, len(units))
	for _, u := range units {
		if u.Alive() {
			out = append(out, u.Snapshot())
		}
	}
	return out
}

func starSum(snaps []combat.UnitSnapshot) int {
	sum := 0
	for _, s := range snaps {
		sum += s.StarLevel
	}
	return sum
}

func (cs *combatState) checkWin() (combat.Winner, bool) {
	aAlive := anyAlive(cs.teamA)
	bAlive := anyAlive(cs.teamB)
	switch {
	case !aAlive && !bAlive:
		return combat.WinnerTimeout, true
	case !bAlive:
		return combat.WinnerA, true
	case !aAlive:
		return combat.WinnerB, true
	default:
		return "", false
	}
}

func anyAlive(units []combat.UnitRef) bool {
	for _, u := range units {
		if u.Alive() {
			return true
		}
	}
	return false
}

func (cs *combatState) allUnits() []combat.UnitRef {
	all := make([]combat.UnitRef, 0, len(cs.teamA)+len(cs.teamB))
	all = append(all, cs.teamA...)
	all = append(all, cs.teamB...)
	return all
}

func (cs *combatState) rosterFor(u combat.UnitRef) targeting.Roster {
	if u.Side() == combat.SideA {
		return targeting.Roster{Allies: cs.teamA, Enemies: cs.teamB}
	}
	return targeting.Roster{Allies: cs.teamB, Enemies: cs.teamA}
}

// tick runs one dt-sized step of the combat loop: expire effects, DoT
// ticks, death processing, regeneration, trait triggers, the attack
// phase, a second death-processing pass, ally-hp-below checks, and a
// state snapshot. Win/timeout checks happen in run, immediately after
// tick returns.
func (cs *combatState) tick() {
	if cs.m != nil {
		cs.m.TicksTotal.Inc()
	}
	cs.expireEffects()
	cs.tickDOT()
	cs.checkDeaths()
	cs.regenerate()
	cs.tickPeriodicTraits()
	cs.processAttacks()
	cs.checkDeaths()
	cs.checkAllyHPBelow()
	if cs.cfg.SnapshotEveryTick {
		cs.em.EmitStateSnapshot(snapshotAll(cs.teamA), snapshotAll(cs.teamB), cs.now)
	}
}

func (cs *combatState) expireEffects() {
	for _, u := range cs.allUnits() {
		if !u.Alive() {
			continue
		}
		for _, e := range u.Effects() {
			if cs.now >= e.ExpiresAt {
				cs.em.EmitEffectExpired(u, e.ID, cs.now)
			}
		}
	}
}

func (cs *combatState) tickDOT() {
	for _, u := range cs.allUnits() {
		if !u.Alive() {
			continue
		}
		for _, e := range u.Effects() {
			if e.Kind != combat.EffectDamageOverTime {
				continue
			}
			if cs.now >= e.NextTickTime && cs.now < e.ExpiresAt {
				cs.em.EmitDamageOverTimeTick(u, e.ID, e.TickDamage, e.DamageType, cs.now)
			}
		}
	}
}

func (cs *combatState) regenerate() {
	for _, u := range cs.allUnits() {
		if !u.Alive() {
			continue
		}
		if delta := u.TickHPRegen(cs.cfg.Dt); delta > 0 {
			cs.em.EmitHeal(nil, u, delta, "regen", cs.now)
		}
		if delta := u.TickManaRegen(cs.cfg.Dt); delta > 0 {
			cs.em.EmitManaUpdate(u, delta, "regen", cs.now)
		}
	}
}

// tickPeriodicTraits fires per_second at most once per whole second
// crossed.
func (cs *combatState) tickPeriodicTraits() {
	second := int(cs.now)
	if second != cs.lastSecond {
		cs.lastSecond = second
		cs.emitTraitTrigger(cs.traitsA, combat.TriggerPerSecond, 0)
		cs.emitTraitTrigger(cs.traitsB, combat.TriggerPerSecond, 0)
	}
}

func (cs *combatState) emitTraitTrigger(reg *traits.Registry, trig combat.Trigger, hpPercent float64) {
	cs.emitTraitTriggerScaled(reg, trig, hpPercent, 1)
}

// emitTraitTriggerScaled is emitTraitTrigger with every fired reward's
// Value multiplied by scale, used by the one-shot per_round/per_trait
// triggers fired from fireOneShotTraits.
func (cs *combatState) emitTraitTriggerScaled(reg *traits.Registry, trig combat.Trigger, hpPercent, scale float64) {
	if reg == nil {
		return
	}
	reg.Fire(trig, cs.rng, hpPercent, func(r combat.Reward) {
		if scale != 1 {
			r.Value *= scale
		}
		cs.applyReward(reg, r)
	})
}

func (cs *combatState) applyReward(reg *traits.Registry, r combat.Reward) {
	targets := cs.teamA
	if reg == cs.traitsB {
		targets = cs.teamB
	}
	switch r.Kind {
	case combat.RewardStatBuff:
		for _, u := range targets {
			if u.Alive() {
				cs.em.EmitStatBuff(u, nil, r.Stat, r.Value, r.ValueType, r.Duration, r.Permanent, "trait", cs.now)
			}
		}
	case combat.RewardManaRegen:
		for _, u := range targets {
			if u.Alive() {
				cs.em.EmitStatBuff(u, nil, combat.StatManaRegen, r.Value, combat.ValueFlat, r.Duration, r.Permanent, "trait", cs.now)
			}
		}
	case combat.RewardHeal:
		for _, u := range targets {
			if u.Alive() {
				cs.em.EmitHeal(nil, u, int(r.Value), "trait", cs.now)
			}
		}
	case combat.RewardGold:
		for _, u := range targets {
			cs.em.EmitGoldReward(u.ID(), int(r.Value), u.Side(), cs.now)
		}
	}
}

// checkAllyHPBelow fires on_ally_hp_below for any active trait tier
// configured for a threshold the unit's current hp percent has reached.
// Per the self-triggering decision recorded in DESIGN.md, a unit whose
// own hp crosses the threshold can trigger its own side's reward,
// including a reward that targets itself.
func (cs *combatState) checkAllyHPBelow() {
	cs.checkAllyHPBelowSide(cs.teamA, cs.traitsA)
	cs.checkAllyHPBelowSide(cs.teamB, cs.traitsB)
}

func (cs *combatState) checkAllyHPBelowSide(units []combat.UnitRef, reg *traits.Registry) {
	if reg == nil {
		return
	}
	for _, u := range units {
		if !u.Alive() {
			continue
		}
		for _, threshold := range hpBelowThresholds {
			if u.HPPercent() <= threshold {
				cs.emitTraitTrigger(reg, combat.TriggerOnAllyHPBelow, threshold)
			}
		}
	}
}

// regsFor returns the trait registry for side, then for its opponent.
func (cs *combatState) regsFor(side combat.Side) (own, enemy *traits.Registry) {
	if side == combat.SideA {
		return cs.traitsA, cs.traitsB
	}
	return cs.traitsB, cs.traitsA
}

// checkDeaths fires on_ally_death on the victim's own side and
// on_enemy_death on the opposing side for every unit that died since the
// last check. It is idempotent per unit: a dead unit only triggers once,
// no matter how many ticks it remains in the roster.
func (cs *combatState) checkDeaths() {
	for _, u := range cs.allUnits() {
		if u.Alive() || cs.deathTriggered[u.ID()] {
			continue
		}
		cs.deathTriggered[u.ID()] = true
		ownReg, enemyReg := cs.regsFor(u.Side())
		cs.emitTraitTrigger(ownReg, combat.TriggerOnAllyDeath, 0)
		cs.emitTraitTrigger(enemyReg, combat.TriggerOnEnemyDeath, 0)
	}
}

func (cs *combatState) processAttacks() {
	for _, p := range cs.sched.Due(cs.now) {
		attacker := cs.units[p.AttackerID]
		target := cs.units[p.TargetID]
		if attacker == nil || !attacker.Alive() || target == nil || !target.Alive() {
			continue
		}
		dmg := max(1, attacker.Attack()-target.Defense())
		cs.em.EmitDamage(attacker, target, dmg, "physical", "basic_attack", cs.now)
		cs.em.EmitManaUpdate(attacker, attacker.ManaOnAttack(), "basic_attack", cs.now)
	}

	for _, u := range cs.allUnits() {
		if !u.Alive() || u.Stunned(cs.now) {
			continue
		}
		if cs.now < u.LastAttackTime() {
			continue
		}

		roster := cs.rosterFor(u)
		if !anyAlive(roster.Enemies) {
			continue
		}

		if u.HasSkill() && u.CurrentMana() >= u.Skill().ManaCost {
			u.SetLastAttackTime(cs.now)
			cs.castSkill(u, roster)
			continue
		}

		// Basic attacks fire on a per-tick Bernoulli trial rather than a
		// fixed cadence, so two units with the same attack speed don't
		// land their attacks in lockstep.
		if !cs.rng.Bernoulli(u.AttackSpeed() * cs.cfg.Dt) {
			continue
		}
		cs.castBasicAttack(u, roster)
		u.SetLastAttackTime(cs.now)
	}
}

func attackInterval(u combat.UnitRef) float64 {
	if u.AttackSpeed() <= 0 {
		return 1
	}
	return 1 / u.AttackSpeed()
}

func (cs *combatState) castBasicAttack(u combat.UnitRef, roster targeting.Roster) {
	target, ok := targeting.PickBasicAttackTarget(cs.rng, roster.Enemies)
	if !ok {
		return
	}
	cs.em.EmitAnimationStart(u.ID(), target.ID(), cs.cfg.AnimationDuration, cs.now)
	cs.sched.Schedule(u.ID(), target.ID(), cs.now+cs.cfg.DamageDelaySeconds)
}

func (cs *combatState) castSkill(u combat.UnitRef, roster targeting.Roster) {
	tmpl := u.Skill()
	cs.em.EmitManaUpdate(u, -tmpl.ManaCost, "skill_cast", cs.now)

	ctx := &skill.Context{
		Emitter:    cs.em,
		RNG:        cs.rng,
		Now:        cs.now,
		Caster:     u,
		Allies:     roster.Allies,
		Enemies:    roster.Enemies,
		Persistent: cs.persistent[u.ID()],
	}

	targets, persistent := skill.ResolveTargets(ctx, tmpl)
	ctx.Persistent = persistent
	cs.persistent[u.ID()] = persistent

	var singleTarget combat.UnitRef
	if len(targets) == 1 {
		singleTarget = targets[0]
	}
	cs.em.EmitSkillCast(u, tmpl.Name, singleTarget, skill.FirstDamageValue(tmpl, u), cs.now)

	if len(targets) == 0 {
		return
	}

	if err := skill.RunEffects(ctx, tmpl, targets); err != nil {
		idx := -1
		if execErr, ok := err.(*skill.ExecError); ok {
			idx = execErr.EffectIndex
		}
		cs.em.EmitSkillError(u, err.Error(), idx, cs.now)
		if cs.m != nil {
			cs.m.SkillErrorsTotal.Inc()
		}
		return
	}
}
