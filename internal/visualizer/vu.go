// Package visualizer renders a small stereo VU strip for the footer.
package visualizer

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

var (
	lowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3CE074"))
	midStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0C648"))
	hotStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F26056"))
	peakStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFCD2"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// VU is a stereo VU meter with spring-smoothed levels and peak hold.
type VU struct {
	spring harmonica.Spring
	pos    [2]float64
	vel    [2]float64
	peak   [2]float64
}

// NewVU creates a VU meter whose smoothing springs step at the given
// frame rate.
func NewVU(fps int) *VU {
	return &VU{spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.9)}
}

// Update feeds one frame's worth of interleaved stereo samples and
// advances the level springs toward the measured loudness.
func (v *VU) Update(samples []int16) {
	left, right := channelLevels(samples)
	targets := [2]float64{left, right}

	const peakDecay = 0.015
	for ch := range 2 {
		v.pos[ch], v.vel[ch] = v.spring.Update(v.pos[ch], v.vel[ch], targets[ch])
		if v.pos[ch] < 0 {
			v.pos[ch] = 0
		}
		if v.pos[ch] > v.peak[ch] {
			v.peak[ch] = v.pos[ch]
		} else {
			v.peak[ch] -= peakDecay
			if v.peak[ch] < 0 {
				v.peak[ch] = 0
			}
		}
	}
}

// View renders the meter at the given width, two lines tall.
func (v *VU) View(width int) string {
	barWidth := width - 4
	if barWidth < 8 {
		barWidth = 8
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("L %s\n", renderBar(v.pos[0], v.peak[0], barWidth)))
	sb.WriteString(fmt.Sprintf("R %s", renderBar(v.pos[1], v.peak[1], barWidth)))
	return sb.String()
}

// channelLevels computes dB-scaled 0..1 loudness per channel from
// interleaved stereo PCM.
func channelLevels(samples []int16) (left, right float64) {
	var leftSum, rightSum float64
	count := 0
	for i := 0; i+1 < len(samples); i += 2 {
		l := float64(samples[i]) / 32768.0
		r := float64(samples[i+1]) / 32768.0
		leftSum += l * l
		rightSum += r * r
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return rmsToLevel(math.Sqrt(leftSum / float64(count))),
		rmsToLevel(math.Sqrt(rightSum / float64(count)))
}

// rmsToLevel converts an RMS value to a 0.0-1.0 bar level using a
// logarithmic (dB) scale. This compresses the dynamic range so
// bass-heavy tracks don't constantly peg the meter at max.
func rmsToLevel(rms float64) float64 {
	const dbFloor = -40.0 // silence threshold
	if rms < 1e-6 {
		return 0
	}
	db := 20.0 * math.Log10(rms)
	if db < dbFloor {
		return 0
	}
	level := (db - dbFloor) / -dbFloor
	if level > 1.0 {
		level = 1.0
	}
	return level
}

func renderBar(level, peak float64, width int) string {
	filled := int(level * float64(width))
	peakPos := int(peak * float64(width))
	if peakPos >= width {
		peakPos = width - 1
	}

	var sb strings.Builder
	for i := range width {
		switch {
		case i == peakPos && peakPos > 0 && i >= filled:
			sb.WriteString(peakStyle.Render("│"))
		case i >= filled:
			sb.WriteString(dimStyle.Render("─"))
		case i < width*6/10:
			sb.WriteString(lowStyle.Render("█"))
		case i < width*8/10:
			sb.WriteString(midStyle.Render("█"))
		default:
			sb.WriteString(hotStyle.Render("█"))
		}
	}
	return sb.String()
}
