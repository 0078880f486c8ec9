// Package queue orders the tracks of one directory for sequential
// playback. Switching tracks is what drives the lyric stage's reset
// path, so the queue stays deliberately dumb: an index over an
// immutable list.
package queue

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Track is one playable file.
type Track struct {
	Title string
	Path  string
}

// Queue manages an ordered list of tracks. It is only mutated from
// the UI's single-threaded update loop.
type Queue struct {
	tracks  []Track
	current int
}

// New creates a Queue from the given tracks.
func New(tracks []Track) *Queue {
	return &Queue{tracks: tracks}
}

// FromDirectory builds a queue of the supported files sharing path's
// directory, sorted case-insensitively, positioned on path. A
// directory with just the one file still yields a single-entry queue.
func FromDirectory(path string, supported func(ext string) bool) (*Queue, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Dir(abs))
	if err != nil {
		return nil, err
	}

	var tracks []Track
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !supported(strings.ToLower(filepath.Ext(name))) {
			continue
		}
		tracks = append(tracks, Track{
			Title: strings.TrimSuffix(name, filepath.Ext(name)),
			Path:  filepath.Join(filepath.Dir(abs), name),
		})
	}
	sort.Slice(tracks, func(i, j int) bool {
		return strings.ToLower(tracks[i].Title) < strings.ToLower(tracks[j].Title)
	})

	q := New(tracks)
	for i, tr := range tracks {
		if tr.Path == abs {
			q.current = i
			break
		}
	}
	return q, nil
}

// Len returns the number of tracks.
func (q *Queue) Len() int { return len(q.tracks) }

// Index returns the current track index.
func (q *Queue) Index() int { return q.current }

// Current returns the current track, or nil if the queue is empty.
func (q *Queue) Current() *Track {
	if q.current < 0 || q.current >= len(q.tracks) {
		return nil
	}
	return &q.tracks[q.current]
}

// Advance moves to the next track. Returns false at the end.
func (q *Queue) Advance() bool {
	if q.current+1 >= len(q.tracks) {
		return false
	}
	q.current++
	return true
}

// Retreat moves to the previous track. Returns false at the start.
func (q *Queue) Retreat() bool {
	if q.current == 0 || len(q.tracks) == 0 {
		return false
	}
	q.current--
	return true
}
