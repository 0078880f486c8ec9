package stage

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/kashi-player/kashi/internal/lyrics"
)

func makeLines(n int) []lyrics.Line {
	lines := make([]lyrics.Line, n)
	for i := range lines {
		lines[i] = lyrics.Line{Time: float64(i * 3), Text: fmt.Sprintf("line %d", i)}
	}
	return lines
}

func testStage(n int) *Stage {
	s := New(DefaultTuning())
	s.Resize(60, 24)
	s.SetLines(makeLines(n), time.Now())
	return s
}

// advance ticks the stage n frames at a fixed playback time.
func advance(s *Stage, now time.Time, n int, playback float64) ([]Transform, time.Time) {
	var frames []Transform
	for i := 0; i < n; i++ {
		now = now.Add(tick)
		frames = s.Advance(playback, now)
	}
	return frames, now
}

func TestAdvanceReturnsTransformPerLine(t *testing.T) {
	s := testStage(10)
	frames, _ := advance(s, time.Now(), 2, 0)
	if len(frames) != 10 {
		t.Fatalf("expected 10 transforms, got %d", len(frames))
	}
	for i, tr := range frames {
		if math.IsNaN(tr.TranslateY) || math.IsNaN(tr.Opacity) || math.IsNaN(tr.Scale) {
			t.Fatalf("line %d: non-finite transform %+v", i, tr)
		}
		if tr.Opacity < 0 || tr.Opacity > 1 {
			t.Fatalf("line %d: opacity out of range: %f", i, tr.Opacity)
		}
		if tr.Blur < 0 {
			t.Fatalf("line %d: negative blur", i)
		}
	}
}

func TestFirstFrameSnapsInsteadOfGliding(t *testing.T) {
	s := testStage(10)
	frames, _ := advance(s, time.Now(), 1, 0)
	// Line 5 sits 5*(1+gap) rows down the document; on the very first
	// frame it must already be there, not en route from zero.
	want := s.layout.Top(5) - s.cam.Offset()
	if math.Abs(frames[5].TranslateY-want) > 1e-9 {
		t.Fatalf("expected first-frame snap to %f, got %f", want, frames[5].TranslateY)
	}
}

func TestActiveLineFullOpacityAndBoost(t *testing.T) {
	s := testStage(12)
	frames, _ := advance(s, time.Now(), 600, 10) // active index 3

	if got := s.ActiveIndex(); got != 3 {
		t.Fatalf("expected active index 3, got %d", got)
	}
	if frames[3].Opacity != 1 || frames[3].Blur != 0 {
		t.Fatalf("active line must be full and sharp: %+v", frames[3])
	}
	if math.Abs(frames[3].Scale-DefaultTuning().ActiveScale) > 0.01 {
		t.Fatalf("expected active scale boost, got %f", frames[3].Scale)
	}
	if frames[11].Opacity >= frames[4].Opacity {
		t.Fatalf("opacity should fall off with distance: far %f vs near %f",
			frames[11].Opacity, frames[4].Opacity)
	}
	if frames[11].Opacity < DefaultTuning().MinOpacity {
		t.Fatalf("opacity fell below the floor: %f", frames[11].Opacity)
	}
}

func TestBlurRisesWithDistanceAndCanBeDisabled(t *testing.T) {
	s := testStage(20)
	frames, _ := advance(s, time.Now(), 600, 10)
	if frames[19].Blur <= frames[4].Blur {
		t.Fatalf("blur should rise with distance: far %f vs near %f",
			frames[19].Blur, frames[4].Blur)
	}

	tun := DefaultTuning()
	tun.NoBlur = true
	s2 := New(tun)
	s2.Resize(60, 24)
	s2.SetLines(makeLines(20), time.Now())
	frames2, _ := advance(s2, time.Now(), 60, 10)
	for i, tr := range frames2 {
		if tr.Blur != 0 {
			t.Fatalf("line %d: blur emitted while disabled: %f", i, tr.Blur)
		}
	}
}

func TestSeekJumpSnapsEveryLine(t *testing.T) {
	// P6: an active-index jump past the threshold leaves every line
	// exactly on target after that tick.
	s := testStage(40)
	now := time.Now()
	_, now = advance(s, now, 600, 10) // settle on active index 3

	now = now.Add(tick)
	s.Advance(100, now) // seek to active index 33
	if got := s.ActiveIndex(); got != 33 {
		t.Fatalf("expected active index 33 after seek, got %d", got)
	}
	for i := range s.states {
		st := &s.states[i]
		if st.posY.Current != st.posY.Target || st.posY.Velocity != 0 {
			t.Fatalf("line %d still animating through a seek: %+v", i, st.posY)
		}
	}
}

// A scrub across the "before the first line" boundary is still a
// seek: index -1 counts as a position when measuring the jump.
func TestSeekJumpAcrossIntroBoundarySnaps(t *testing.T) {
	lines := make([]lyrics.Line, 40)
	for i := range lines {
		lines[i] = lyrics.Line{Time: float64(5 + i*3), Text: fmt.Sprintf("line %d", i)}
	}

	// Deep in the song back to before line 0.
	s := New(DefaultTuning())
	s.Resize(60, 24)
	now := time.Now()
	s.SetLines(lines, now)
	_, now = advance(s, now, 600, 80)
	if got := s.ActiveIndex(); got != 25 {
		t.Fatalf("expected active index 25 before the scrub, got %d", got)
	}

	now = now.Add(tick)
	s.Advance(0, now)
	if got := s.ActiveIndex(); got != -1 {
		t.Fatalf("expected active index -1 at the intro, got %d", got)
	}
	for i := range s.states {
		st := &s.states[i]
		if st.posY.Current != st.posY.Target || st.posY.Velocity != 0 {
			t.Fatalf("line %d still animating after rewind to intro: %+v", i, st.posY)
		}
	}
	if off := s.cam.Offset(); off != 0 {
		t.Fatalf("camera should snap to the top on rewind, offset=%f", off)
	}

	// And forward: out of the intro past the threshold.
	s2 := New(DefaultTuning())
	s2.Resize(60, 24)
	now2 := time.Now()
	s2.SetLines(lines, now2)
	_, now2 = advance(s2, now2, 10, 0)
	if got := s2.ActiveIndex(); got != -1 {
		t.Fatalf("expected active index -1 during the intro, got %d", got)
	}

	now2 = now2.Add(tick)
	s2.Advance(80, now2)
	if got := s2.ActiveIndex(); got != 25 {
		t.Fatalf("expected active index 25 after the scrub, got %d", got)
	}
	for i := range s2.states {
		st := &s2.states[i]
		if st.posY.Current != st.posY.Target || st.posY.Velocity != 0 {
			t.Fatalf("line %d still animating after seek out of intro: %+v", i, st.posY)
		}
	}
}

func TestSmallAdvanceAnimatesInsteadOfSnapping(t *testing.T) {
	s := testStage(40)
	now := time.Now()
	_, now = advance(s, now, 600, 10)

	before := s.states[20].posY.Current
	now = now.Add(tick)
	s.Advance(13, now) // one line forward, ordinary playback
	after := &s.states[20].posY

	if after.Current != before && after.Current == after.Target && after.Velocity == 0 {
		t.Fatal("ordinary line advance should glide, not snap")
	}
}

func TestFutureLinesCascade(t *testing.T) {
	// After a seek-free activation change, nearer future lines close
	// on their targets faster than far-future ones.
	s := testStage(40)
	now := time.Now()
	_, now = advance(s, now, 600, 10)

	now = now.Add(tick)
	s.Advance(13, now)
	for i := 0; i < 3; i++ {
		now = now.Add(tick)
		s.Advance(13, now)
	}
	near := math.Abs(s.states[6].posY.Displacement())
	far := math.Abs(s.states[30].posY.Displacement())
	if far < near-1e-9 {
		t.Fatalf("far-future line converged faster than near one: near %f far %f", near, far)
	}
}

func TestSongChangeResetsEverything(t *testing.T) {
	s := testStage(30)
	now := time.Now()
	_, now = advance(s, now, 600, 60)
	if s.cam.Offset() == 0 {
		t.Fatal("precondition: camera should have scrolled")
	}

	s.SetLines([]lyrics.Line{{Time: 0, Text: "fresh"}}, now)
	if s.cam.Offset() != 0 {
		t.Fatalf("camera offset not reset: %f", s.cam.Offset())
	}
	if s.ActiveIndex() != -1 {
		t.Fatalf("active index not reset: %d", s.ActiveIndex())
	}
	if len(s.states) != 1 {
		t.Fatalf("per-line state not replaced wholesale: %d", len(s.states))
	}

	frames, _ := advance(s, now, 2, 0)
	if len(frames) != 1 {
		t.Fatalf("expected transforms for the new song only, got %d", len(frames))
	}
}

func TestAdvanceWithoutLinesOrSize(t *testing.T) {
	s := New(DefaultTuning())
	if got := s.Advance(5, time.Now()); got != nil {
		t.Fatalf("expected nil transforms with no lines, got %d", len(got))
	}

	s.SetLines([]lyrics.Line{{Time: 0, Text: "x"}}, time.Now())
	// No Resize yet: layout unmeasured, tick must be skipped.
	if got := s.Advance(5, time.Now()); got != nil {
		t.Fatalf("expected nil transforms before first resize, got %d", len(got))
	}
}

func TestDragPreemptsAutoFollow(t *testing.T) {
	s := testStage(40)
	now := time.Now()
	_, now = advance(s, now, 600, 30)
	followOffset := s.cam.Offset()

	s.StartDrag(now)
	now = now.Add(10 * time.Millisecond)
	s.Drag(-8, now)
	_, now = advance(s, now, 1, 30)

	if s.Regime(now) != Dragging {
		t.Fatalf("expected dragging regime, got %v", s.Regime(now))
	}
	if math.Abs(s.cam.Offset()-(followOffset-8)) > 1e-6 {
		t.Fatalf("drag did not preempt follow: offset %f, want %f",
			s.cam.Offset(), followOffset-8)
	}

	// Hold still before releasing so no flick momentum starts.
	for i := 0; i < 8; i++ {
		now = now.Add(50 * time.Millisecond)
		s.Drag(0, now)
	}
	s.EndDrag(now)
	_, now = advance(s, now, 10, 30)
	if s.Regime(now) != Settling {
		t.Fatalf("expected settle hold after release, got %v", s.Regime(now))
	}
}

func TestRowsMatchLayoutHeights(t *testing.T) {
	s := New(DefaultTuning())
	s.Resize(20, 24)
	s.SetLines([]lyrics.Line{
		{Time: 0, Text: "a very long lyric line that will certainly wrap at twenty cells"},
		{Time: 3, Text: "short"},
	}, time.Now())
	s.Advance(0, time.Now().Add(tick))

	for i := 0; i < 2; i++ {
		if got, want := len(s.Rows(i)), s.layout.Height(i); got != want {
			t.Fatalf("line %d: renderer rows %d != measured height %d", i, got, want)
		}
	}
	if s.layout.Height(0) < 2 {
		t.Fatalf("expected the long line to wrap, got height %d", s.layout.Height(0))
	}
}
