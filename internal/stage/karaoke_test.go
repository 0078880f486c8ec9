package stage

import (
	"math"
	"testing"

	"github.com/kashi-player/kashi/internal/lyrics"
)

func karaokeWords() []lyrics.Word {
	return []lyrics.Word{
		{Text: "never ", Start: 10, End: 10.5},
		{Text: "gonna ", Start: 10.5, End: 11},
		{Text: "give", Start: 11, End: 12},
	}
}

func TestWordProgressClamped(t *testing.T) {
	w := lyrics.Word{Start: 10, End: 12}
	cases := []struct {
		t, want float64
	}{
		{9, 0},
		{10, 0},
		{11, 0.5},
		{12, 1},
		{99, 1},
	}
	for _, c := range cases {
		if got := WordProgress(w, c.t); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("progress at %v = %v, want %v", c.t, got, c.want)
		}
	}
}

func TestWordProgressDegenerateSpans(t *testing.T) {
	zero := lyrics.Word{Start: 10, End: 10}
	if got := WordProgress(zero, 10.5); got != 1 {
		t.Fatalf("zero-length word after start should be complete, got %f", got)
	}
	inverted := lyrics.Word{Start: 10, End: 9}
	got := WordProgress(inverted, 9.5)
	if math.IsNaN(got) || got < 0 || got > 1 {
		t.Fatalf("inverted word timing must clamp, got %f", got)
	}
}

func TestActiveWordPartition(t *testing.T) {
	words := karaokeWords()
	if got := ActiveWord(words, 10.7); got != 1 {
		t.Fatalf("expected word 1 active at 10.7, got %d", got)
	}
	if got := ActiveWord(words, 9); got != -1 {
		t.Fatalf("expected no active word before the line, got %d", got)
	}
	if got := ActiveWord(words, 12); got != -1 {
		t.Fatalf("end time is exclusive, got %d", got)
	}

	if st := WordStateAt(words[0], 10.7); st != WordSung {
		t.Fatalf("expected first word sung, got %v", st)
	}
	if st := WordStateAt(words[2], 10.7); st != WordPending {
		t.Fatalf("expected last word pending, got %v", st)
	}
	if st := WordStateAt(words[1], 10.7); st != WordActive {
		t.Fatalf("expected middle word active, got %v", st)
	}
}

func TestActiveWordStableForOverlaps(t *testing.T) {
	words := []lyrics.Word{
		{Text: "a", Start: 10, End: 12},
		{Text: "b", Start: 11, End: 13},
	}
	for i := 0; i < 5; i++ {
		if got := ActiveWord(words, 11.5); got != 0 {
			t.Fatalf("overlap must resolve to the first match, got %d", got)
		}
	}
}

func TestGlowEndpoints(t *testing.T) {
	tun := DefaultTuning()
	w := lyrics.Word{Start: 10, End: 11}

	start := GlowAt(w, 10, tun)
	if start.Fill != 0 || start.Lift != 0 || math.Abs(start.Skew-tun.KaraokeSkew) > 1e-9 {
		t.Fatalf("unexpected glow at word start: %+v", start)
	}

	end := GlowAt(w, 11, tun)
	if end.Fill != 1 || math.Abs(end.Lift+tun.KaraokeLift) > 1e-9 || end.Skew != 0 {
		t.Fatalf("unexpected glow at word end: %+v", end)
	}

	mid := GlowAt(w, 10.5, tun)
	if mid.Fill <= start.Fill || mid.Fill >= end.Fill {
		t.Fatalf("fill should grow through the word: %+v", mid)
	}
}
