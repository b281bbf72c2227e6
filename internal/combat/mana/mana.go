// Package mana computes per-tick mana and hp regeneration amounts.
// It holds no reference to a unit: the simulator reads a unit's current
// rate, advances the pool, and feeds the resulting whole-point delta to
// the emitter, keeping every state write inside the combat package's
// single mutation funnel.
package mana

import "github.com/tacticsforge/combatcore/internal/combat/accum"

// Pool accumulates a regeneration rate (points per second) across ticks.
type Pool struct {
	acc accum.Accumulator
}

// Tick advances the pool by dt seconds at ratePerSecond and returns the
// whole number of points now due.
func (p *Pool) Tick(ratePerSecond, dt float64) int {
	return p.acc.Add(ratePerSecond, dt)
}

// Carry and SetCarry expose the fractional remainder for snapshotting
// and restoring a pool's state across reconstruction.
func (p *Pool) Carry() float64      { return p.acc.Carry() }
func (p *Pool) SetCarry(c float64)  { p.acc.SetCarry(c) }
