package player

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata is a track's display information.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// ReadMetadata reads the ID3 tag, then fills whatever is missing from
// the filename. An "Artist - Title" filename splits into both fields;
// anything else becomes the title as-is.
func ReadMetadata(path string) Metadata {
	var m Metadata
	if tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Title", "Artist", "Album"}}); err == nil {
		m.Title = strings.TrimSpace(tag.Title())
		m.Artist = strings.TrimSpace(tag.Artist())
		m.Album = strings.TrimSpace(tag.Album())
		tag.Close()
	}
	if m.Title != "" {
		return m
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if artist, title, ok := strings.Cut(base, " - "); ok && strings.TrimSpace(title) != "" {
		m.Title = strings.TrimSpace(title)
		if m.Artist == "" {
			m.Artist = strings.TrimSpace(artist)
		}
		return m
	}
	m.Title = base
	return m
}
