package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kashi-player/kashi/internal/lyrics"
	"github.com/kashi-player/kashi/internal/player"
)

// frameMsg drives the animation loop at the configured frame rate.
type frameMsg time.Time

// playbackEndedMsg carries the player whose stream finished, so a
// message from an already-replaced player can be dropped.
type playbackEndedMsg struct {
	player *player.Player
}

// trackLoadedMsg delivers the result of an asynchronous track open
// started by n/p navigation.
type trackLoadedMsg struct {
	player *player.Player
	meta   player.Metadata
	doc    lyrics.Document
	err    error
}

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func watchDone(p *player.Player) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{player: p}
	}
}
