package lyrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// ErrNotFound reports that no lyric source exists for a track.
var ErrNotFound = errors.New("no lyrics found")

// Load resolves lyrics for a local audio file: a sidecar .lrc next to
// the file wins, then an unsynchronised-lyrics (USLT) frame embedded
// in the ID3 tag. The USLT text is parsed as LRC too, since synced
// lyrics are commonly stored there; untimed USLT text produces an
// empty document and falls through to ErrNotFound.
func Load(audioPath string) (Document, error) {
	if src, err := os.ReadFile(sidecarPath(audioPath)); err == nil {
		if doc := Parse(string(src)); !doc.Empty() {
			return doc, nil
		}
	}

	if text, ok := embeddedLyrics(audioPath); ok {
		if doc := Parse(text); !doc.Empty() {
			return doc, nil
		}
	}

	return Document{}, ErrNotFound
}

// sidecarPath maps song.mp3 to song.lrc in the same directory.
func sidecarPath(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + ".lrc"
}

// embeddedLyrics pulls the first non-empty USLT frame out of the
// file's ID3 tag.
func embeddedLyrics(path string) (string, bool) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return "", false
	}
	defer tag.Close()

	frames := tag.GetFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
	for _, f := range frames {
		uslt, ok := f.(id3v2.UnsynchronisedLyricsFrame)
		if !ok {
			continue
		}
		if text := strings.TrimSpace(uslt.Lyrics); text != "" {
			return text, true
		}
	}
	return "", false
}
