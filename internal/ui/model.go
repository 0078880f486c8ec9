package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/kashi-player/kashi/internal/config"
	"github.com/kashi-player/kashi/internal/lyrics"
	"github.com/kashi-player/kashi/internal/player"
	"github.com/kashi-player/kashi/internal/queue"
	"github.com/kashi-player/kashi/internal/stage"
	"github.com/kashi-player/kashi/internal/visualizer"
)

// header is title + artist + a blank row; footer is progress, status,
// two VU rows, help and a blank row.
const (
	headerRows = 3
	footerRows = 6
)

// Model is the Bubbletea model for the kashi TUI. All animation state
// lives in the stage; the model owns playback plumbing and rendering.
type Model struct {
	cfg      config.Config
	tun      stage.Tuning
	player   *player.Player
	metadata player.Metadata
	queue    *queue.Queue
	stage    *stage.Stage
	vu       *visualizer.VU
	progress progress.Model
	spinner  spinner.Model

	frames   []stage.Transform
	playback float64
	elapsed  time.Duration
	duration time.Duration
	volume   float64
	paused   bool
	loading    bool
	noLyrics   bool
	wordSynced bool
	repeat     RepeatMode

	width, height int
	dragging      bool
	lastMouseY    int
	quitting      bool
}

// New assembles the model around an already-opened player. doc may be
// empty; the stage then renders nothing and playback runs as usual.
func New(cfg config.Config, p *player.Player, meta player.Metadata, q *queue.Queue, doc lyrics.Document) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipglossSpinnerStyle

	bar := progress.New(
		progress.WithScaledGradient("#8FA9FF", "#5F6FD0"),
		progress.WithoutPercentage(),
	)

	st := stage.New(cfg.Tuning())
	st.SetLines(doc.Lines, time.Now())

	return Model{
		cfg:      cfg,
		tun:      cfg.Tuning(),
		player:   p,
		metadata: meta,
		queue:    q,
		stage:    st,
		vu:       visualizer.NewVU(int(time.Second / cfg.FrameInterval())),
		progress: bar,
		spinner:  s,
		duration:   p.Duration(),
		volume:     p.Volume(),
		noLyrics:   doc.Empty(),
		wordSynced: doc.WordSynced(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(m.cfg.FrameInterval()),
		watchDone(m.player),
		tea.SetWindowTitle(windowTitle(m.metadata.Title, false)),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case frameMsg:
		now := time.Time(msg)
		if !m.loading {
			m.elapsed = m.player.Position()
			m.volume = m.player.Volume()
			m.paused = m.player.Paused()
			m.playback = m.elapsed.Seconds()
			m.frames = m.stage.Advance(m.playback, now)
			m.vu.Update(m.player.Samples(2048))
		}
		return m, frameCmd(m.cfg.FrameInterval())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if !m.loading {
			return m, nil
		}
		return m, cmd

	case trackLoadedMsg:
		return m.handleTrackLoaded(msg)

	case playbackEndedMsg:
		// While a switch is loading, m.player is the old player that
		// switchTrack just closed; its end message is teardown, not a
		// finished track.
		if m.loading || msg.player != m.player {
			return m, nil
		}
		if m.repeat == RepeatOne {
			m.player.Restart()
			m.elapsed = 0
			return m, watchDone(m.player)
		}
		if m.queue != nil && m.queue.Advance() {
			return m.switchTrack()
		}
		m.quitting = true
		m.player.Close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.stage.Resize(msg.Width, m.stageHeight())
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.player.Close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}
	switch msg.String() {
	case " ":
		m.player.TogglePause()
		m.paused = m.player.Paused()
		return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, m.paused))
	case "left", "h":
		m.player.SeekBy(-5 * time.Second)
	case "right", "l":
		m.player.SeekBy(5 * time.Second)
	case "up", "k", "+", "=":
		m.player.AdjustVolume(0.05)
		m.volume = m.player.Volume()
	case "down", "j", "-":
		m.player.AdjustVolume(-0.05)
		m.volume = m.player.Volume()
	case "r":
		m.repeat = m.repeat.Next()
	case "n":
		if m.queue != nil && m.queue.Advance() {
			return m.switchTrack()
		}
	case "p":
		if m.queue != nil && m.queue.Retreat() {
			return m.switchTrack()
		}
	}
	return m, nil
}

// handleMouse routes pointer events to the stage camera. Terminal
// rows grow downward while scroll offsets grow toward later lines, so
// a pointer moving up drags the view forward.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	now := time.Now()
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.stage.Wheel(-m.cfg.WheelRows(), now)
	case msg.Button == tea.MouseButtonWheelDown:
		m.stage.Wheel(m.cfg.WheelRows(), now)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		m.dragging = true
		m.lastMouseY = msg.Y
		m.stage.StartDrag(now)
	case msg.Action == tea.MouseActionMotion && m.dragging:
		m.stage.Drag(float64(m.lastMouseY-msg.Y), now)
		m.lastMouseY = msg.Y
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
		m.stage.EndDrag(now)
	}
}

// switchTrack tears down the current player and opens the queue's
// current track off the update loop.
func (m Model) switchTrack() (Model, tea.Cmd) {
	tr := m.queue.Current()
	if tr == nil {
		return m, nil
	}
	m.player.Close()
	m.loading = true
	m.frames = nil
	path := tr.Path
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		p, err := player.New(path)
		if err != nil {
			return trackLoadedMsg{err: err}
		}
		meta := player.ReadMetadata(path)
		doc, lerr := lyrics.Load(path)
		if lerr != nil {
			log.Debug().Str("path", path).Err(lerr).Msg("no lyrics for track")
		}
		return trackLoadedMsg{player: p, meta: meta, doc: doc}
	})
}

func (m Model) handleTrackLoaded(msg trackLoadedMsg) (Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		log.Error().Err(msg.err).Msg("track open failed")
		m.quitting = true
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}
	m.player = msg.player
	m.metadata = msg.meta
	m.duration = msg.player.Duration()
	m.volume = msg.player.Volume()
	m.elapsed = 0
	m.playback = 0
	m.paused = false
	m.noLyrics = msg.doc.Empty()
	m.wordSynced = msg.doc.WordSynced()
	m.stage.SetLines(msg.doc.Lines, time.Now())
	return m, tea.Batch(
		watchDone(msg.player),
		tea.SetWindowTitle(windowTitle(msg.meta.Title, false)),
	)
}

func (m Model) stageHeight() int {
	h := m.height - headerRows - footerRows
	if h < 4 {
		h = 4
	}
	return h
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerRow(titleStyle.Render(m.metadata.Title), m.metadata.Title, w))
	b.WriteString("\n")
	sub := subtitle(m.metadata)
	b.WriteString(centerRow(artistStyle.Render(sub), sub, w))
	b.WriteString("\n")

	switch {
	case m.loading:
		pad := strings.Repeat("\n", m.stageHeight()/2)
		msg := m.spinner.View() + " opening track"
		b.WriteString(pad + centerRow(msg, "x opening track", w))
		b.WriteString(strings.Repeat("\n", m.stageHeight()-m.stageHeight()/2))
	case m.noLyrics:
		pad := strings.Repeat("\n", m.stageHeight()/2)
		msg := "no lyrics found"
		b.WriteString(pad + centerRow(helpStyle.Render(msg), msg, w))
		b.WriteString(strings.Repeat("\n", m.stageHeight()-m.stageHeight()/2))
	default:
		b.WriteString(lyricCanvas(m.stage, m.frames, m.playback, w, m.stageHeight(), m.tun))
		b.WriteString("\n")
	}

	b.WriteString("  " + m.progressLine(w) + "\n")
	b.WriteString("  " + m.statusLine(w) + "\n")
	b.WriteString(indent(m.vu.View(w-4), "  ") + "\n")
	b.WriteString("  " + helpStyle.Render(helpText(m.queue != nil && m.queue.Len() > 1)) + "\n")
	return b.String()
}

func (m Model) progressLine(w int) string {
	elapsedStr := formatDuration(m.elapsed)
	durationStr := formatDuration(m.duration)
	barWidth := w - len(elapsedStr) - len(durationStr) - 8
	if barWidth < 10 {
		barWidth = 10
	}
	bar := m.progress
	bar.Width = barWidth
	var pct float64
	if m.duration > 0 {
		pct = float64(m.elapsed) / float64(m.duration)
	}
	return fmt.Sprintf("%s %s %s",
		timeStyle.Render(elapsedStr), bar.ViewAs(pct), timeStyle.Render(durationStr))
}

func (m Model) statusLine(w int) string {
	icon, text := "▶", "playing"
	if m.paused {
		icon, text = "❚❚", "paused"
	}
	left := fmt.Sprintf("%s  %s", icon, text)
	if m.wordSynced {
		left += "  karaoke"
	}
	if r := m.stage.Regime(time.Now()); r != stage.Following {
		left += "  " + r.String()
	}
	if ri := m.repeat.Icon(); ri != "" {
		left += "  " + ri
	}
	right := fmt.Sprintf("vol %d%%", int(m.volume*100))
	gap := w - len(left) - len(right) - 4
	if gap < 2 {
		gap = 2
	}
	return statusStyle.Render(left) + strings.Repeat(" ", gap) + statusStyle.Render(right)
}

func subtitle(meta player.Metadata) string {
	switch {
	case meta.Artist != "" && meta.Album != "":
		return fmt.Sprintf("%s - %s", meta.Artist, meta.Album)
	case meta.Artist != "":
		return meta.Artist
	default:
		return meta.Album
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

// formatDuration renders a playback time as m:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " — kashi"
	}
	return "▶ " + title + " — kashi"
}
