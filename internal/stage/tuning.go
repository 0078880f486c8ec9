// Package stage is the per-frame lyric animation engine: a scroll
// camera with drag/momentum/settle/follow regimes, per-line spring
// states derived from the camera, and karaoke word timing. One
// Advance call per frame drives everything; the UI only renders the
// transforms it returns.
package stage

import "time"

// Tuning is the engine's configuration surface. Values are fixed at
// startup; nothing reads them concurrently with a tick. Units are
// terminal rows and seconds unless noted.
type Tuning struct {
	// FocalRatio is the viewport fraction (0..1, from the top) where
	// auto-follow keeps the active line centered.
	FocalRatio float64
	// ResumeDelay is how long after the last user interaction the
	// camera holds position before easing back to auto-follow.
	ResumeDelay time.Duration
	// Overscroll is the rubber-band coefficient for dragging past
	// content bounds.
	Overscroll float64
	// SeekJump is the active-index delta beyond which a change is
	// treated as a seek and snapped instead of animated.
	SeekJump int
	// Friction multiplies momentum velocity once per 60Hz-normalized
	// tick after a flick release.
	Friction float64
	// FlickMin is the rows/s below which momentum stops (and below
	// which a release does not start momentum at all).
	FlickMin float64
	// VisibleFrac controls the lower scroll bound: the last lines may
	// scroll up until only viewport*VisibleFrac remains filled.
	VisibleFrac float64

	// Camera spring stiffness per regime. Damping is derived to stay
	// at or above critical.
	FollowStiffness float64
	SettleStiffness float64

	// Line position springs. Active and past lines use LineStiffness;
	// future lines decay exponentially by LineFalloff per line down to
	// LineMinStiffness, which is what makes the sheet of upcoming
	// lines cascade instead of moving as a block.
	LineStiffness    float64
	LineFalloff      float64
	LineMinStiffness float64
	// UpwardBias multiplies stiffness when a line's target moved up
	// (new line arriving) versus down (scrolling back), matching the
	// asymmetric feel of forward playback.
	UpwardBias float64
	// StretchGain scales the camera velocity into an extra per-line
	// margin on future lines during fast scroll.
	StretchGain float64

	// ActiveScale is the scale boost of the active line; ScaleStiffness
	// tunes its (fixed, relative-index-independent) spring.
	ActiveScale    float64
	ScaleStiffness float64

	// Visual falloff around the focal point.
	MinOpacity  float64
	OpacityPow  float64
	FalloffRows float64
	MaxBlur     float64
	// NoBlur disables the blur output entirely (legibility on
	// constrained renderers).
	NoBlur bool

	// Karaoke word animation: downward lift in rows at full progress,
	// skew in degrees at zero progress.
	KaraokeLift float64
	KaraokeSkew float64

	// LineGap is the number of blank rows between lines.
	LineGap int
}

// DefaultTuning returns the shipped feel. Every field can be
// overridden from the config file.
func DefaultTuning() Tuning {
	return Tuning{
		FocalRatio:  0.35,
		ResumeDelay: 3 * time.Second,
		Overscroll:  0.55,
		SeekJump:    5,
		Friction:    0.92,
		FlickMin:    0.5,
		VisibleFrac: 0.5,

		FollowStiffness: 70,
		SettleStiffness: 120,

		LineStiffness:    260,
		LineFalloff:      0.12,
		LineMinStiffness: 30,
		UpwardBias:       1.25,
		StretchGain:      0.02,

		ActiveScale:    1.04,
		ScaleStiffness: 120,

		MinOpacity:  0.18,
		OpacityPow:  1.6,
		FalloffRows: 12,
		MaxBlur:     3,

		KaraokeLift: 0.35,
		KaraokeSkew: 6,

		LineGap: 1,
	}
}

// Normalize clamps a tuning back into its invariants. Out-of-range
// values come from hand-edited config files; they are corrected, not
// rejected.
func (t Tuning) Normalize() Tuning {
	def := DefaultTuning()
	clampPos := func(v, fallback float64) float64 {
		if v <= 0 {
			return fallback
		}
		return v
	}

	if t.FocalRatio <= 0 || t.FocalRatio >= 1 {
		t.FocalRatio = def.FocalRatio
	}
	if t.ResumeDelay < 0 {
		t.ResumeDelay = def.ResumeDelay
	}
	t.Overscroll = clampPos(t.Overscroll, def.Overscroll)
	if t.SeekJump < 1 {
		t.SeekJump = def.SeekJump
	}
	if t.Friction <= 0 || t.Friction >= 1 {
		t.Friction = def.Friction
	}
	t.FlickMin = clampPos(t.FlickMin, def.FlickMin)
	if t.VisibleFrac <= 0 || t.VisibleFrac > 1 {
		t.VisibleFrac = def.VisibleFrac
	}
	t.FollowStiffness = clampPos(t.FollowStiffness, def.FollowStiffness)
	t.SettleStiffness = clampPos(t.SettleStiffness, def.SettleStiffness)
	t.LineStiffness = clampPos(t.LineStiffness, def.LineStiffness)
	t.LineFalloff = clampPos(t.LineFalloff, def.LineFalloff)
	t.LineMinStiffness = clampPos(t.LineMinStiffness, def.LineMinStiffness)
	if t.UpwardBias < 1 {
		t.UpwardBias = def.UpwardBias
	}
	if t.StretchGain < 0 {
		t.StretchGain = 0
	}
	if t.ActiveScale < 1 {
		t.ActiveScale = def.ActiveScale
	}
	t.ScaleStiffness = clampPos(t.ScaleStiffness, def.ScaleStiffness)
	if t.MinOpacity < 0 || t.MinOpacity >= 1 {
		t.MinOpacity = def.MinOpacity
	}
	t.OpacityPow = clampPos(t.OpacityPow, def.OpacityPow)
	t.FalloffRows = clampPos(t.FalloffRows, def.FalloffRows)
	if t.MaxBlur < 0 {
		t.MaxBlur = 0
	}
	if t.KaraokeLift < 0 {
		t.KaraokeLift = def.KaraokeLift
	}
	if t.KaraokeSkew < 0 {
		t.KaraokeSkew = def.KaraokeSkew
	}
	if t.LineGap < 0 {
		t.LineGap = def.LineGap
	}
	return t
}
