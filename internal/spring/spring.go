// Package spring integrates damped harmonic oscillators one scalar
// channel at a time. Every animated quantity in the lyrics stage
// (scroll offset, line position, line scale) is one Channel stepped
// with semi-implicit Euler once per frame.
package spring

import "math"

// MaxStep is the largest dt a single integration step should see,
// in seconds. Frame stalls (background tab, GC pause) can report
// much larger deltas; integrating them in one step is unstable even
// for over-damped configs, so callers clamp through ClampStep first.
const MaxStep = 0.1

// defaultPrecision is used when a Config leaves Precision unset.
const defaultPrecision = 0.001

// Config tunes one integration step. It travels with the call, not
// with the channel, so the same channel can switch behavior between
// frames (user-scroll stiffness vs auto-follow stiffness).
type Config struct {
	Mass      float64
	Stiffness float64
	Damping   float64
	// Precision is the rest threshold: when both |velocity| and
	// |current-target| fall below it, the channel snaps exactly to
	// the target and stops.
	Precision float64
}

// Critical returns a critically damped config for the given stiffness
// with unit mass. Critical damping reaches the target fastest without
// crossing it.
func Critical(stiffness float64) Config {
	if stiffness < 0 {
		stiffness = 0
	}
	return Config{
		Mass:      1,
		Stiffness: stiffness,
		Damping:   2 * math.Sqrt(stiffness),
		Precision: defaultPrecision,
	}
}

// Overdamped returns a config whose damping is ratio times critical.
// Ratios below 1 are raised to 1: underdamped channels oscillate, and
// with MaxStep-sized deltas they can gain energy instead of losing it.
func Overdamped(stiffness, ratio float64) Config {
	cfg := Critical(stiffness)
	if ratio < 1 {
		ratio = 1
	}
	cfg.Damping *= ratio
	return cfg
}

// normalized clamps a config back into its invariants: positive mass,
// non-negative stiffness and damping, usable precision.
func (c Config) normalized() Config {
	if c.Mass <= 0 {
		c.Mass = 1
	}
	if c.Stiffness < 0 {
		c.Stiffness = 0
	}
	if c.Damping < 0 {
		c.Damping = 0
	}
	if c.Precision <= 0 {
		c.Precision = defaultPrecision
	}
	return c
}

// DampingRatio reports damping relative to critical for this config.
// 1 is critical, above 1 is over-damped.
func (c Config) DampingRatio() float64 {
	c = c.normalized()
	crit := 2 * math.Sqrt(c.Stiffness*c.Mass)
	if crit == 0 {
		return math.Inf(1)
	}
	return c.Damping / crit
}

// Channel is one scalar spring state. The zero value is a channel at
// rest at zero. A Channel belongs to exactly one owner; owners declare
// them as named struct fields rather than sharing them.
type Channel struct {
	Current  float64
	Velocity float64
	Target   float64
}

// Step advances the channel by dt seconds under cfg. After stepping,
// a channel inside the precision window snaps exactly onto its target
// with zero velocity, so a settled channel stops burning float noise.
func (ch *Channel) Step(cfg Config, dt float64) {
	if dt <= 0 || math.IsNaN(dt) {
		return
	}
	cfg = cfg.normalized()

	displacement := ch.Current - ch.Target
	force := -cfg.Stiffness*displacement - cfg.Damping*ch.Velocity
	ch.Velocity += force / cfg.Mass * dt
	ch.Current += ch.Velocity * dt

	if math.Abs(ch.Velocity) < cfg.Precision && math.Abs(ch.Current-ch.Target) < cfg.Precision {
		ch.Current = ch.Target
		ch.Velocity = 0
	}
}

// SetTarget retargets the spring without touching current or velocity.
// A moving channel keeps its momentum and redirects, which is what
// makes interrupting an in-flight animation look continuous.
func (ch *Channel) SetTarget(v float64) {
	ch.Target = v
}

// Set hard-resets the channel: current and target become v, velocity
// becomes zero. Used for discontinuous jumps (drag start, seek snap,
// song change) where animating would be wrong.
func (ch *Channel) Set(v float64) {
	ch.Current = v
	ch.Target = v
	ch.Velocity = 0
}

// Settled reports whether the channel sits exactly on its target with
// no velocity.
func (ch *Channel) Settled() bool {
	return ch.Current == ch.Target && ch.Velocity == 0
}

// Displacement returns current minus target.
func (ch *Channel) Displacement() float64 {
	return ch.Current - ch.Target
}

// ClampStep sanitizes a frame delta before integration: non-finite
// deltas collapse to MaxStep, negatives to zero, and anything larger
// than MaxStep is capped.
func ClampStep(dt float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return MaxStep
	}
	if dt < 0 {
		return 0
	}
	if dt > MaxStep {
		return MaxStep
	}
	return dt
}
