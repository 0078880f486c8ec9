package lyrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

func TestLoadPrefersSidecar(t *testing.T) {
	dir := t.TempDir()
	song := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(song, []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}
	lrc := "[00:01.00]from sidecar\n"
	if err := os.WriteFile(filepath.Join(dir, "song.lrc"), []byte(lrc), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(song)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(doc.Lines) != 1 || doc.Lines[0].Text != "from sidecar" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestLoadFallsBackToUSLT(t *testing.T) {
	dir := t.TempDir()
	song := filepath.Join(dir, "tagged.mp3")
	writeUSLT(t, song, "[00:02.00]from the tag\n")

	doc, err := Load(song)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(doc.Lines) != 1 || doc.Lines[0].Text != "from the tag" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestLoadUntimedUSLTIsNotFound(t *testing.T) {
	dir := t.TempDir()
	song := filepath.Join(dir, "plain.mp3")
	writeUSLT(t, song, "just prose, no timestamps")

	_, err := Load(song)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadNothingAvailable(t *testing.T) {
	dir := t.TempDir()
	song := filepath.Join(dir, "bare.mp3")
	if err := os.WriteFile(song, []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(song)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func writeUSLT(t *testing.T, path, lyrics string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	tag := id3v2.NewEmptyTag()
	tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
		Encoding:          id3v2.EncodingUTF8,
		Language:          "eng",
		ContentDescriptor: "",
		Lyrics:            lyrics,
	})
	if _, err := tag.WriteTo(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}
