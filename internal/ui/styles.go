package ui

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"})

	artistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#AAAAAA"})

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#888888"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})

	lipglossSpinnerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
)

// Lyric palette. The terminal has no real alpha channel, so opacity
// is rendered by blending the text color toward an assumed dark
// background.
var (
	lyricFull, _ = colorful.Hex("#F5F2E8")
	lyricGlow, _ = colorful.Hex("#FFD866")
	lyricDim, _  = colorful.Hex("#6B6A60")
	lyricBack, _ = colorful.Hex("#12121A")
)

// fade blends c toward the background by 1-opacity, with blur pushing
// it further under. Blur has no cell-grid equivalent, so defocus is
// approximated as extra fade.
func fade(c colorful.Color, opacity, blur float64) lipgloss.Color {
	a := opacity * (1 - 0.12*blur)
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return lipgloss.Color(lyricBack.BlendLuv(c, a).Clamped().Hex())
}
