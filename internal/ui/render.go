package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/kashi-player/kashi/internal/lyrics"
	"github.com/kashi-player/kashi/internal/stage"
)

// lyricCanvas paints the stage's transforms onto a fixed-height row
// grid. Transforms are fractional; cells are not, so each line lands
// on the nearest row. Earlier lines win row collisions during tight
// cascades, which reads as the newer line emerging from under the old.
func lyricCanvas(s *stage.Stage, frames []stage.Transform, playback float64, width, height int, tun stage.Tuning) string {
	rows := make([]string, height)
	if len(frames) == 0 {
		return strings.Join(rows, "\n")
	}

	lines := s.Lines()
	active := s.ActiveIndex()
	for i := len(frames) - 1; i >= 0; i-- {
		if lines[i].Metadata {
			continue
		}
		tr := frames[i]
		top := int(math.Round(tr.TranslateY))
		wrapped := s.Rows(i)
		for j, text := range wrapped {
			y := top + j
			if y < 0 || y >= height {
				continue
			}
			// Karaoke styling assumes the words fit one row; a wrapped
			// line falls back to the whole-line fill.
			karaoke := i == active && len(wrapped) == 1 && len(lines[i].Words) > 0
			var fill float64
			if i == active {
				fill = lineFill(lines, i, playback)
			}
			rows[y] = renderRow(text, lines[i], tr, i == active, karaoke, playback, fill, width, tun)
		}
	}
	return strings.Join(rows, "\n")
}

// renderRow styles one wrapped row of one line. An active line
// without word timing gets a whole-line fill driven by the gap to the
// next line's start, so plain LRC still reads as progressing.
func renderRow(text string, line lyrics.Line, tr stage.Transform, active, karaoke bool, playback, fill float64, width int, tun stage.Tuning) string {
	var body string
	switch {
	case karaoke:
		body = karaokeRow(line, playback, tun)
	case active:
		body = lineFillRow(text, fill, tun)
	default:
		st := lipgloss.NewStyle().Foreground(fade(lyricFull, tr.Opacity, tr.Blur))
		// A line easing down from the active boost keeps its weight
		// until the scale spring has mostly landed.
		if tr.Scale > 1.0+(tun.ActiveScale-1.0)/2 {
			st = st.Bold(true)
		}
		body = st.Render(text)
	}
	return centerRow(body, text, width)
}

// karaokeRow renders a word-synced line: sung words solid, pending
// words dim, and the one word picked by the first-match rule split at
// the glow's fill boundary with the lit part pulled toward the glow
// color. Overlapping word runs glow exactly one word at a time.
func karaokeRow(line lyrics.Line, playback float64, tun stage.Tuning) string {
	sungStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(lyricFull.Hex()))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(lyricDim.Hex()))

	glowing := stage.ActiveWord(line.Words, playback)
	var sb strings.Builder
	for wi, w := range line.Words {
		if wi > 0 {
			sb.WriteString(" ")
		}
		switch {
		case wi == glowing:
			glow := stage.GlowAt(w, playback, tun)
			lit, rest := splitAtFill(w.Text, glow.Fill)
			mix := lyricFull.BlendLuv(lyricGlow, 1-glow.Fill)
			sb.WriteString(lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.Color(mix.Clamped().Hex())).Render(lit))
			sb.WriteString(dimStyle.Render(rest))
		case stage.WordStateAt(w, playback) == stage.WordSung:
			sb.WriteString(sungStyle.Render(w.Text))
		default:
			sb.WriteString(dimStyle.Render(w.Text))
		}
	}
	return sb.String()
}

// lineFillRow splits the active line's text at the fill boundary:
// the elapsed part bright and bold, the rest slightly held back.
func lineFillRow(text string, fill float64, tun stage.Tuning) string {
	lit, rest := splitAtFill(text, fill)
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color(lyricFull.Hex())).Render(lit))
	sb.WriteString(lipgloss.NewStyle().Bold(true).
		Foreground(fade(lyricFull, 0.7, 0)).Render(rest))
	return sb.String()
}

// lineRunout is the assumed duration of the song's last line, which
// has no successor to take its end time from.
const lineRunout = 5.0

// lineFill is how far playback has progressed through line i, 0..1,
// measured against the next real line's start.
func lineFill(lines []lyrics.Line, i int, playback float64) float64 {
	end := lyrics.NextTime(lines, i)
	if end < 0 {
		end = lines[i].Time + lineRunout
	}
	span := end - lines[i].Time
	if span <= 0 {
		return 1
	}
	p := (playback - lines[i].Time) / span
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// splitAtFill cuts a word at the fill fraction measured in display
// cells, never inside a rune.
func splitAtFill(word string, fill float64) (lit, rest string) {
	total := runewidth.StringWidth(word)
	boundary := int(math.Round(fill * float64(total)))
	cells := 0
	for i, r := range word {
		if cells >= boundary {
			return word[:i], word[i:]
		}
		cells += runewidth.RuneWidth(r)
	}
	return word, ""
}

// centerRow centers styled text by the plain text's cell width, so
// ANSI sequences don't skew the padding.
func centerRow(styled, plain string, width int) string {
	pad := (width - runewidth.StringWidth(plain)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + styled
}
