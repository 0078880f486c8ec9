package stage

import (
	"github.com/samber/lo"

	"github.com/kashi-player/kashi/internal/lyrics"
)

// WordState partitions a line's words at a playback instant.
type WordState int

const (
	// WordPending has not started: rendered dim.
	WordPending WordState = iota
	// WordActive contains the playback time: animated by Glow.
	WordActive
	// WordSung has finished: rendered solid bright.
	WordSung
)

// Glow is the active word's animation state. Fill is the gradient
// boundary fraction across the word, Lift the upward offset in rows,
// Skew the remaining slant in degrees. All decay as the word
// completes.
type Glow struct {
	Fill float64
	Lift float64
	Skew float64
}

// minWordSpan floors a word's duration so zero-length or inverted
// word timing from malformed sources degrades to an instant fill
// instead of a division blow-up.
const minWordSpan = 0.001

// WordProgress returns how far through a word playback is, clamped to
// [0,1]. Pure function of the clock; the spring system is not
// involved in karaoke timing.
func WordProgress(w lyrics.Word, t float64) float64 {
	span := w.End - w.Start
	if span < minWordSpan {
		span = minWordSpan
	}
	return lo.Clamp((t-w.Start)/span, 0, 1)
}

// WordStateAt classifies one word against the clock.
func WordStateAt(w lyrics.Word, t float64) WordState {
	switch {
	case t < w.Start:
		return WordPending
	case t < w.End:
		return WordActive
	default:
		return WordSung
	}
}

// ActiveWord returns the index of the word whose [start, end) run
// contains t, or -1. Out-of-order words resolve to the first match so
// repeated calls agree.
func ActiveWord(words []lyrics.Word, t float64) int {
	for i, w := range words {
		if t >= w.Start && t < w.End {
			return i
		}
	}
	return -1
}

// GlowAt computes the active word's animation at time t: the fill
// boundary tracks progress, the lift rises with it, and the skew
// decays to zero as the word lands.
func GlowAt(w lyrics.Word, t float64, tun Tuning) Glow {
	p := WordProgress(w, t)
	return Glow{
		Fill: p,
		Lift: -tun.KaraokeLift * p,
		Skew: tun.KaraokeSkew * (1 - p),
	}
}
