// Package lyrics holds the timed-lyrics model: parsing LRC text into
// lines and words, resolving which line is active for a playback time,
// and loading lyrics for a local audio file.
package lyrics

// Word is one karaoke-timed fragment of a line. Start and End are
// seconds from the beginning of the track. Texts concatenate back into
// the owning line's text.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Line is one timed lyric line. Words is nil for plain line-synced
// lyrics. Metadata lines (credits embedded as lyric text) are kept for
// display but never become the active line.
type Line struct {
	Time     float64
	Text     string
	Words    []Word
	Metadata bool
}

// Document is one song's parsed lyrics: lines sorted ascending by
// time, plus the LRC ID tags (ar, ti, al, by, ...) found in the
// source. Immutable once parsed; a song change replaces the whole
// document.
type Document struct {
	Lines []Line
	Tags  map[string]string
}

// Empty reports whether the document has no displayable lines.
func (d Document) Empty() bool {
	return len(d.Lines) == 0
}

// WordSynced reports whether any line carries word timing.
func (d Document) WordSynced() bool {
	for _, ln := range d.Lines {
		if len(ln.Words) > 0 {
			return true
		}
	}
	return false
}
