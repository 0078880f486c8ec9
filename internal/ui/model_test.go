package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kashi-player/kashi/internal/config"
	"github.com/kashi-player/kashi/internal/lyrics"
	"github.com/kashi-player/kashi/internal/player"
	"github.com/kashi-player/kashi/internal/stage"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(s)})
}

func testModel() Model {
	doc := lyrics.Parse("[00:01.00]hello\n[00:05.00]world\n")
	m := New(config.Default(), new(player.Player), player.Metadata{Title: "Song"}, nil, doc)
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 60, Height: 20})
	return m
}

func TestRepeatKeyCycles(t *testing.T) {
	m := testModel()
	if m.repeat != RepeatOff {
		t.Fatalf("initial repeat = %v, want off", m.repeat)
	}
	m, _ = m.handleMsg(keyMsg("r"))
	if m.repeat != RepeatOne {
		t.Fatalf("repeat after r = %v, want one", m.repeat)
	}
	m, _ = m.handleMsg(keyMsg("r"))
	if m.repeat != RepeatOff {
		t.Fatalf("repeat after rr = %v, want off", m.repeat)
	}
}

func TestWindowSizeResizesStage(t *testing.T) {
	m := testModel()
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 80, Height: 24})
	if m.width != 80 || m.height != 24 {
		t.Fatalf("size = %dx%d, want 80x24", m.width, m.height)
	}
	if got := m.stageHeight(); got != 24-headerRows-footerRows {
		t.Fatalf("stageHeight = %d, want %d", got, 24-headerRows-footerRows)
	}
}

func TestStageHeightFloor(t *testing.T) {
	m := testModel()
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 80, Height: 6})
	if got := m.stageHeight(); got != 4 {
		t.Fatalf("stageHeight = %d, want floor of 4", got)
	}
}

func TestPlaybackEndedIgnoresStalePlayer(t *testing.T) {
	m := testModel()
	stale := new(player.Player)
	next, cmd := m.handleMsg(playbackEndedMsg{player: stale})
	if next.quitting {
		t.Fatal("stale end message should not quit")
	}
	if cmd != nil {
		t.Fatal("expected no command for stale player end")
	}
}

func TestPlaybackEndedIgnoredWhileLoading(t *testing.T) {
	m := testModel()
	m.loading = true
	next, cmd := m.handleMsg(playbackEndedMsg{player: m.player})
	if next.quitting {
		t.Fatal("teardown end message must not quit mid-switch")
	}
	if cmd != nil {
		t.Fatal("expected no command while a switch is loading")
	}
}

func TestMouseWheelSuspendsFollow(t *testing.T) {
	m := testModel()
	m.handleMouse(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if got := m.stage.Regime(time.Now()); got != stage.Settling {
		t.Fatalf("regime after wheel = %v, want settling", got)
	}
}

func TestMouseDragTracksPointer(t *testing.T) {
	m := testModel()
	m.handleMouse(tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionPress, Y: 10})
	if !m.dragging {
		t.Fatal("press should start a drag")
	}
	if got := m.stage.Regime(time.Now()); got != stage.Dragging {
		t.Fatalf("regime during drag = %v, want dragging", got)
	}
	m.handleMouse(tea.MouseMsg{Action: tea.MouseActionMotion, Y: 8})
	if m.lastMouseY != 8 {
		t.Fatalf("lastMouseY = %d, want 8", m.lastMouseY)
	}
	m.handleMouse(tea.MouseMsg{Action: tea.MouseActionRelease, Y: 8})
	if m.dragging {
		t.Fatal("release should end the drag")
	}
}

func TestFrameMsgSkipsPlayerWhileLoading(t *testing.T) {
	m := testModel()
	m.loading = true
	next, cmd := m.handleMsg(frameMsg(time.Now()))
	if cmd == nil {
		t.Fatal("frame loop must reschedule even while loading")
	}
	if next.frames != nil {
		t.Fatal("no transforms expected while loading")
	}
}

func TestViewShowsNoLyricsNotice(t *testing.T) {
	m := New(config.Default(), new(player.Player), player.Metadata{Title: "Song"}, nil, lyrics.Document{})
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 60, Height: 20})
	view := m.View()
	if !strings.Contains(view, "no lyrics found") {
		t.Fatalf("expected lyrics notice in view, got %q", view)
	}
	if !strings.Contains(view, "Song") {
		t.Fatal("expected title in view")
	}
}

func TestViewQuittingIsEmpty(t *testing.T) {
	m := testModel()
	m.quitting = true
	if got := m.View(); got != "" {
		t.Fatalf("quitting view = %q, want empty", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{61 * time.Second, "1:01"},
		{10 * time.Minute, "10:00"},
		{-5 * time.Second, "0:00"},
	}
	for _, c := range cases {
		if got := formatDuration(c.d); got != c.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestHelpText(t *testing.T) {
	if s := helpText(false); strings.Contains(s, "n/p") {
		t.Fatal("single-track help should not mention n/p")
	}
	if s := helpText(true); !strings.Contains(s, "n/p") {
		t.Fatal("multi-track help should mention n/p")
	}
}

func TestStatusLineShowsKaraokeForWordSyncedLyrics(t *testing.T) {
	m := testModel()
	if strings.Contains(m.statusLine(60), "karaoke") {
		t.Fatal("line-synced lyrics should not show the karaoke marker")
	}

	doc := lyrics.Parse("[00:01.00]<00:01.00>hello <00:02.00>there\n")
	m, _ = m.handleMsg(trackLoadedMsg{
		player: m.player,
		meta:   player.Metadata{Title: "Song"},
		doc:    doc,
	})
	if !strings.Contains(m.statusLine(60), "karaoke") {
		t.Fatal("word-synced lyrics should show the karaoke marker")
	}
}
