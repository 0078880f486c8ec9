package stage

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// minWrapWidth keeps the wrapper from degenerating on tiny terminals.
const minWrapWidth = 8

// Layout is the document-space geometry of one lyric set at one
// width: each line's top row offset and wrapped height. Recomputed
// whenever the width changes; cheap for lyric counts in the hundreds.
type Layout struct {
	tops    []float64
	heights []int
	total   float64
}

// measureLayout wraps every line at the given width and accumulates
// row offsets, with gap blank rows between lines.
func measureLayout(texts []string, width, gap int) Layout {
	l := Layout{
		tops:    make([]float64, len(texts)),
		heights: make([]int, len(texts)),
	}
	var y float64
	for i, text := range texts {
		h := len(wrapLine(text, width))
		l.tops[i] = y
		l.heights[i] = h
		y += float64(h + gap)
	}
	if len(texts) > 0 {
		y -= float64(gap)
	}
	l.total = y
	return l
}

// Top returns the document-space row offset of line i.
func (l Layout) Top(i int) float64 {
	if i < 0 || i >= len(l.tops) {
		return 0
	}
	return l.tops[i]
}

// Height returns line i's wrapped height in rows.
func (l Layout) Height(i int) int {
	if i < 0 || i >= len(l.heights) {
		return 0
	}
	return l.heights[i]
}

// Total returns the full content height in rows, floored at 1 so
// ratios against it stay finite.
func (l Layout) Total() float64 {
	if l.total < 1 {
		return 1
	}
	return l.total
}

// measured reports whether the layout covers n lines.
func (l Layout) measured(n int) bool {
	return n > 0 && len(l.tops) == n
}

// wrapLine greedily wraps text into display rows no wider than width
// terminal cells, breaking on spaces where possible. Width is
// measured with runewidth so CJK lyrics wrap correctly.
func wrapLine(text string, width int) []string {
	if width < minWrapWidth {
		width = minWrapWidth
	}
	if text == "" {
		return []string{""}
	}

	var rows []string
	var row strings.Builder
	rowWidth := 0
	flush := func() {
		rows = append(rows, strings.TrimRight(row.String(), " "))
		row.Reset()
		rowWidth = 0
	}

	for _, word := range strings.Split(text, " ") {
		w := runewidth.StringWidth(word)
		switch {
		case rowWidth == 0 && w <= width:
			row.WriteString(word)
			rowWidth = w
		case rowWidth+1+w <= width:
			row.WriteByte(' ')
			row.WriteString(word)
			rowWidth += 1 + w
		case w <= width:
			flush()
			row.WriteString(word)
			rowWidth = w
		default:
			// A single word wider than the row: hard-break by cells.
			if rowWidth > 0 {
				flush()
			}
			for _, r := range word {
				rw := runewidth.RuneWidth(r)
				if rowWidth+rw > width {
					flush()
				}
				row.WriteRune(r)
				rowWidth += rw
			}
		}
	}
	if rowWidth > 0 || len(rows) == 0 {
		flush()
	}
	return rows
}
