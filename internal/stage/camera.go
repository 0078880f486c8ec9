package stage

import (
	"math"
	"time"

	"github.com/kashi-player/kashi/internal/spring"
)

// Regime is the camera's behavior for one tick. It is derived fresh
// every frame from interaction state and timers, never stored.
type Regime int

const (
	// Following eases toward the active line's focal position.
	Following Regime = iota
	// Dragging tracks the pointer 1:1 with elastic overscroll.
	Dragging
	// Momentum coasts on the release velocity of a flick.
	Momentum
	// Settling holds near the release point for the resume delay,
	// rebounding only toward the nearest bound.
	Settling
)

func (r Regime) String() string {
	switch r {
	case Dragging:
		return "dragging"
	case Momentum:
		return "momentum"
	case Settling:
		return "settling"
	default:
		return "following"
	}
}

// Camera owns the global scroll offset, one spring channel in rows.
// All mutation happens on the frame loop's goroutine; input handlers
// only run between ticks (bubbletea's update loop is single-threaded).
type Camera struct {
	tun    Tuning
	scroll spring.Channel

	viewport  float64
	maxScroll float64

	dragging  bool
	dragStart float64 // scroll offset when the drag began
	dragDelta float64 // accumulated pointer delta since then
	lastMove  time.Time
	flickVel  float64 // smoothed drag velocity, rows/s

	momentumVel     float64
	lastInteraction time.Time
}

// NewCamera creates a camera at offset 0 in the idle (auto-follow)
// state.
func NewCamera(tun Tuning) *Camera {
	c := &Camera{tun: tun}
	c.Reset(time.Now())
	return c
}

// Reset flushes all camera state for a new song: offset to 0, no
// velocity, interaction timestamps far enough in the past that
// auto-follow resumes immediately.
func (c *Camera) Reset(now time.Time) {
	c.scroll.Set(0)
	c.dragging = false
	c.dragDelta = 0
	c.flickVel = 0
	c.momentumVel = 0
	c.lastInteraction = now.Add(-c.tun.ResumeDelay)
}

// SetViewport updates the viewport height in rows.
func (c *Camera) SetViewport(rows float64) {
	if rows < 1 {
		rows = 1
	}
	c.viewport = rows
}

// Offset returns the current scroll offset in rows.
func (c *Camera) Offset() float64 { return c.scroll.Current }

// Velocity returns the offset's current rate of change in rows/s.
func (c *Camera) Velocity() float64 {
	if c.momentumVel != 0 {
		return c.momentumVel
	}
	return c.scroll.Velocity
}

// Regime derives the camera's behavior for this instant.
func (c *Camera) Regime(now time.Time) Regime {
	switch {
	case c.dragging:
		return Dragging
	case c.momentumVel != 0:
		return Momentum
	case now.Sub(c.lastInteraction) < c.tun.ResumeDelay:
		return Settling
	default:
		return Following
	}
}

// StartDrag enters the drag regime. The scroll channel is hard-set so
// any in-flight animation stops dead under the pointer.
func (c *Camera) StartDrag(now time.Time) {
	c.dragging = true
	c.dragStart = c.scroll.Current
	c.dragDelta = 0
	c.flickVel = 0
	c.momentumVel = 0
	c.lastMove = now
	c.lastInteraction = now
	c.scroll.Set(c.scroll.Current)
}

// Drag tracks a pointer move. delta is the scroll distance in rows
// implied by this move (positive scrolls toward later lines). Past a
// bound the excess is fed through the rubber-band curve so the view
// resists instead of flying off.
func (c *Camera) Drag(delta float64, now time.Time) {
	if !c.dragging {
		c.StartDrag(now)
	}
	prev := c.scroll.Current
	c.dragDelta += delta

	raw := c.dragStart + c.dragDelta
	pos := raw
	switch {
	case raw < 0:
		pos = rubberBand(raw, c.viewport, c.tun.Overscroll)
	case raw > c.maxScroll:
		pos = c.maxScroll + rubberBand(raw-c.maxScroll, c.viewport, c.tun.Overscroll)
	}
	c.scroll.Set(pos)

	if dt := now.Sub(c.lastMove).Seconds(); dt > 0 {
		inst := (pos - prev) / dt
		// Light smoothing keeps one jittery event from deciding the
		// flick velocity.
		c.flickVel = c.flickVel*0.3 + inst*0.7
	}
	c.lastMove = now
	c.lastInteraction = now
}

// EndDrag leaves the drag regime. A release fast enough starts
// momentum; otherwise the camera settles where it is.
func (c *Camera) EndDrag(now time.Time) {
	if !c.dragging {
		return
	}
	c.dragging = false
	c.lastInteraction = now
	inBounds := c.scroll.Current >= 0 && c.scroll.Current <= c.maxScroll
	if inBounds && math.Abs(c.flickVel) >= c.tun.FlickMin {
		// A release beyond the bounds springs back instead of
		// coasting; momentum would just slam into the edge.
		c.momentumVel = c.flickVel
	}
	c.flickVel = 0
}

// Wheel scrolls by delta rows through the spring target, so wheel
// input animates instead of teleporting. Counts as user interaction.
func (c *Camera) Wheel(delta float64, now time.Time) {
	if c.dragging {
		return
	}
	c.momentumVel = 0
	target := clampF(c.scroll.Target+delta, 0, c.maxScroll)
	c.scroll.SetTarget(target)
	c.lastInteraction = now
}

// Snap hard-sets the offset, clamped to bounds. Used for seek jumps
// and other discontinuities where animating would glide through
// unrelated lines.
func (c *Camera) Snap(offset float64) {
	c.scroll.Set(clampF(offset, 0, c.maxScroll))
}

// Advance runs one camera tick. maxScroll is recomputed by the caller
// every tick since line heights can change; focusTarget is the offset
// that puts the active line at the focal point. Returns the
// post-integration offset.
func (c *Camera) Advance(now time.Time, dt, focusTarget, maxScroll float64) float64 {
	if maxScroll < 0 {
		maxScroll = 0
	}
	c.maxScroll = maxScroll

	switch c.Regime(now) {
	case Dragging:
		// Position is owned by Drag; keep the target glued so the
		// spring holds once the drag ends.
		c.scroll.SetTarget(c.scroll.Current)

	case Momentum:
		c.stepMomentum(now, dt)

	case Settling:
		// Rebound toward valid bounds only; never leap to the follow
		// target while the user is still "recent". Wheel targets
		// inside the bounds keep animating.
		target := clampF(c.scroll.Target, 0, c.maxScroll)
		if c.scroll.Current < 0 || c.scroll.Current > c.maxScroll {
			target = clampF(c.scroll.Current, 0, c.maxScroll)
		}
		c.scroll.SetTarget(target)
		c.scroll.Step(spring.Overdamped(c.tun.SettleStiffness, 1.1), dt)

	case Following:
		c.scroll.SetTarget(clampF(focusTarget, 0, c.maxScroll))
		c.scroll.Step(spring.Overdamped(c.tun.FollowStiffness, 1.1), dt)
	}

	// A channel displaced by more than the whole document plus a
	// viewport cannot come from scrolling; it means a missed reset
	// (song changed without a flush). Snap instead of easing across.
	if !c.dragging && math.Abs(c.scroll.Displacement()) > c.maxScroll+c.viewport {
		c.scroll.Set(c.scroll.Target)
	}
	return c.scroll.Current
}

// stepMomentum advances the coast phase manually, outside the spring:
// constant friction, hard stop on bounds (no bounce past an edge from
// a flick).
func (c *Camera) stepMomentum(now time.Time, dt float64) {
	cur := c.scroll.Current + c.momentumVel*dt
	switch {
	case cur <= 0:
		cur = 0
		c.momentumVel = 0
	case cur >= c.maxScroll:
		cur = c.maxScroll
		c.momentumVel = 0
	default:
		c.momentumVel *= math.Pow(c.tun.Friction, dt*60)
		if math.Abs(c.momentumVel) < c.tun.FlickMin {
			c.momentumVel = 0
		}
	}
	c.scroll.Set(cur)
	// The settle timer starts once coasting ends.
	c.lastInteraction = now
}

// rubberBand maps an overdrag distance past a bound to a sub-linear
// displacement, the standard elastic overscroll curve: approaches
// (but never reaches) one viewport of give.
func rubberBand(overdrag, dimension, coeff float64) float64 {
	if dimension < 1 {
		dimension = 1
	}
	mag := math.Abs(overdrag)
	out := (1 - 1/(mag*coeff/dimension+1)) * dimension
	return math.Copysign(out, overdrag)
}

func clampF(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
