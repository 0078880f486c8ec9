package stage

import (
	"math"

	"github.com/kashi-player/kashi/internal/spring"
)

// Transform is one line's render state for the current frame.
// TranslateY is the line's top row relative to the viewport top (may
// be negative or past the bottom for off-screen lines).
type Transform struct {
	TranslateY float64
	Scale      float64
	Opacity    float64
	Blur       float64
}

// lineState is the physics state of one lyric line: a position spring
// and a scale spring, created fresh per song. Position integrates
// before scale every tick because the visual outputs read the
// post-integration position.
type lineState struct {
	posY    spring.Channel
	scale   spring.Channel
	started bool
}

// updatePos retargets and steps the position spring. rel is the
// line's index relative to the active line; snap bypasses the spring
// for seek jumps. viewport bounds the divergence guard.
func (s *lineState) updatePos(target, dt float64, rel int, snap bool, viewport float64, tun Tuning) {
	if !s.started || snap {
		// First frame after a song load, or a seek jump: gliding in
		// from stale positions would sweep lines across the viewport.
		s.posY.Set(target)
		s.scale.Set(1)
		s.started = true
		return
	}

	movingUp := target < s.posY.Current
	s.posY.SetTarget(target)
	s.posY.Step(s.posConfig(rel, movingUp, tun), dt)

	if math.Abs(s.posY.Displacement()) > viewport && viewport > 0 {
		// Implausible divergence means a missed reset, not a long
		// animation; snap it closed.
		s.posY.Set(target)
	}
}

// posConfig picks the position spring for one tick. Active and past
// lines snap hard; future lines soften exponentially with distance so
// the upcoming sheet cascades. Damping stays above critical at every
// stiffness, which is what keeps MaxStep-sized deltas stable.
func (s *lineState) posConfig(rel int, movingUp bool, tun Tuning) spring.Config {
	stiffness := tun.LineStiffness
	if rel > 0 {
		stiffness = tun.LineStiffness * math.Exp(-tun.LineFalloff*float64(rel))
		if stiffness < tun.LineMinStiffness {
			stiffness = tun.LineMinStiffness
		}
	}
	if movingUp {
		stiffness *= tun.UpwardBias
	}
	ratio := 1.1
	if rel <= 0 {
		ratio = 1.25
	}
	return spring.Overdamped(stiffness, ratio)
}

// updateScale steps the scale spring toward its baseline or the
// active boost. Fixed config, not relative-index-dependent.
func (s *lineState) updateScale(active bool, dt float64, tun Tuning) {
	target := 1.0
	if active {
		target = tun.ActiveScale
	}
	s.scale.SetTarget(target)
	s.scale.Step(spring.Critical(tun.ScaleStiffness), dt)
}

// visual derives the non-spring outputs from the just-integrated
// position: opacity and blur fall off with the line's distance from
// the focal point. The active line always renders full and sharp.
func (s *lineState) visual(height int, active bool, viewport float64, tun Tuning) (opacity, blur float64) {
	if active {
		return 1, 0
	}
	center := s.posY.Current + float64(height)/2
	focal := viewport * tun.FocalRatio
	falloff := tun.FalloffRows
	if falloff < 1 {
		falloff = 1
	}
	norm := clampF(math.Abs(center-focal)/falloff, 0, 1)

	opacity = (1-tun.MinOpacity)*(1-math.Pow(norm, tun.OpacityPow)) + tun.MinOpacity
	if !tun.NoBlur {
		blur = tun.MaxBlur * norm
	}
	return opacity, blur
}
