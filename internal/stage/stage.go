package stage

import (
	"time"

	"github.com/kashi-player/kashi/internal/lyrics"
	"github.com/kashi-player/kashi/internal/spring"
)

// Stage orchestrates one song's lyric animation: it owns the lines,
// the camera, and the per-line springs, and runs them in the fixed
// per-tick order the visual outputs depend on (camera first, then
// each line's position, then its scale and visuals).
//
// Everything here runs on one goroutine. Input handlers and Advance
// both execute inside the host's update loop, so there is no locking.
type Stage struct {
	tun Tuning
	cam *Camera

	lines  []lyrics.Line
	states []lineState
	texts  []string // cached for layout measurement
	layout Layout

	width, height int
	active        int
	lastTick      time.Time
	frames        []Transform
}

// New creates an empty stage; SetLines loads a song into it.
func New(tun Tuning) *Stage {
	tun = tun.Normalize()
	return &Stage{
		tun:    tun,
		cam:    NewCamera(tun),
		active: -1,
	}
}

// SetLines replaces the lyric set for a new song and discards every
// piece of per-line physics state. This runs synchronously inside the
// update loop, so the next tick can never read springs computed for
// the previous song's layout.
func (s *Stage) SetLines(lines []lyrics.Line, now time.Time) {
	s.lines = lines
	s.states = make([]lineState, len(lines))
	s.texts = make([]string, len(lines))
	for i, ln := range lines {
		s.texts[i] = ln.Text
	}
	s.layout = Layout{}
	s.active = -1
	s.lastTick = time.Time{}
	s.cam.Reset(now)
}

// Resize updates the viewport dimensions in cells. The layout is
// remeasured on the next tick.
func (s *Stage) Resize(width, height int) {
	s.width = width
	s.height = height
	s.cam.SetViewport(float64(height))
}

// Lines returns the current lyric set.
func (s *Stage) Lines() []lyrics.Line { return s.lines }

// ActiveIndex returns the line resolved active on the last tick, or
// -1.
func (s *Stage) ActiveIndex() int { return s.active }

// Regime exposes the camera's current regime (for status display).
func (s *Stage) Regime(now time.Time) Regime { return s.cam.Regime(now) }

// Rows returns line i's text wrapped exactly as the layout measured
// it, so the renderer and the physics agree on geometry.
func (s *Stage) Rows(i int) []string {
	if i < 0 || i >= len(s.texts) {
		return nil
	}
	return wrapLine(s.texts[i], s.width)
}

// StartDrag, Drag, EndDrag and Wheel forward user input to the
// camera. They only write interaction state; integration happens on
// the next Advance.
func (s *Stage) StartDrag(now time.Time)           { s.cam.StartDrag(now) }
func (s *Stage) Drag(rows float64, now time.Time)  { s.cam.Drag(rows, now) }
func (s *Stage) EndDrag(now time.Time)             { s.cam.EndDrag(now) }
func (s *Stage) Wheel(rows float64, now time.Time) { s.cam.Wheel(rows, now) }

// Advance runs one physics tick against the playback clock and
// returns a transform per line, index-aligned with Lines. The dt is
// the wall-clock delta since the previous tick, clamped to the
// integrator's maximum so frame stalls cannot destabilize the
// springs.
func (s *Stage) Advance(playback float64, now time.Time) []Transform {
	if len(s.lines) == 0 || s.width <= 0 || s.height <= 0 {
		s.lastTick = now
		return nil
	}

	var dt float64
	if !s.lastTick.IsZero() {
		dt = spring.ClampStep(now.Sub(s.lastTick).Seconds())
	}
	s.lastTick = now

	// -1 counts as a position one slot before line 0, so scrubbing
	// from deep in the song back past the first line (or out of the
	// intro far forward) still registers as a jump.
	prev := s.active
	s.active = lyrics.ActiveIndex(s.lines, playback)
	jump := abs(s.active-prev) > s.tun.SeekJump

	s.layout = measureLayout(s.texts, s.width, s.tun.LineGap)
	viewport := float64(s.height)
	maxScroll := s.layout.Total() - viewport*s.tun.VisibleFrac
	if maxScroll < 0 {
		maxScroll = 0
	}
	focus := s.focusTarget(viewport)

	if jump && s.cam.Regime(now) == Following {
		s.cam.Snap(focus)
	}
	offset := s.cam.Advance(now, dt, focus, maxScroll)
	camVel := s.cam.Velocity()

	if cap(s.frames) < len(s.lines) {
		s.frames = make([]Transform, len(s.lines))
	}
	s.frames = s.frames[:len(s.lines)]

	for i := range s.lines {
		state := &s.states[i]
		if !s.layout.measured(len(s.lines)) {
			continue
		}
		rel := i - s.active
		if s.active < 0 {
			rel = i + 1
		}

		target := s.layout.Top(i) - offset
		if rel > 0 {
			// Elastic stretch: fast camera motion opens extra margin
			// ahead, released as the cascade catches up.
			target += camVel * s.tun.StretchGain * float64(rel)
		}
		state.updatePos(target, dt, rel, jump, viewport, s.tun)
		state.updateScale(rel == 0, dt, s.tun)

		opacity, blur := state.visual(s.layout.Height(i), rel == 0, viewport, s.tun)
		s.frames[i] = Transform{
			TranslateY: state.posY.Current,
			Scale:      state.scale.Current,
			Opacity:    opacity,
			Blur:       blur,
		}
	}
	return s.frames
}

// focusTarget is the scroll offset that places the active line's
// center at the focal point. Before the first line it focuses the top
// of the document.
func (s *Stage) focusTarget(viewport float64) float64 {
	if s.active < 0 {
		return 0
	}
	center := s.layout.Top(s.active) + float64(s.layout.Height(s.active))/2
	return center - viewport*s.tun.FocalRatio
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
