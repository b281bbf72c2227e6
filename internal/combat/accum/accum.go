// Package accum provides a small fractional-carry accumulator, used
// wherever a per-second rate must be spent in whole integer units once
// it crosses 1.0 rather than being truncated every tick.
package accum

// Accumulator tracks a fractional remainder across ticks so sub-tick
// rates (points/sec at dt=0.1s) still spend only whole points exactly
// once accumulated value reaches 1.0, instead of losing the fraction every tick.
type Accumulator struct {
	carry float64
}

// Add advances the accumulator by ratePerSecond*dt and returns the whole
// number of units now due, retaining any fractional remainder.
func (a *Accumulator) Add(ratePerSecond, dt float64) int {
	if ratePerSecond <= 0 || dt <= 0 {
		return 0
	}
	a.carry += ratePerSecond * dt
	whole := int(a.carry)
	a.carry -= float64(whole)
	return whole
}

// Carry returns the current fractional remainder, for snapshotting.
func (a *Accumulator) Carry() float64 { return a.carry }

// SetCarry restores a previously snapshotted fractional remainder.
func (a *Accumulator) SetCarry(c float64) { a.carry = c }

// Reset clears the accumulator's fractional remainder.
func (a *Accumulator) Reset() { a.carry = 0 }
