// Package config loads the TOML configuration file and maps it onto
// the stage's tuning surface. Defaults are filled first and the file
// overrides them, so a partial config is fine; out-of-range values
// are clamped by the stage, never rejected.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kashi-player/kashi/internal/stage"
)

// Config is the TOML file layout.
type Config struct {
	FPS    int     `toml:"fps"`
	Volume float64 `toml:"volume"`

	View    View    `toml:"view"`
	Scroll  Scroll  `toml:"scroll"`
	Lines   Lines   `toml:"lines"`
	Karaoke Karaoke `toml:"karaoke"`
}

// View tunes the visual falloff around the focal point.
type View struct {
	FocalRatio  float64 `toml:"focal-ratio"`
	MinOpacity  float64 `toml:"min-opacity"`
	OpacityPow  float64 `toml:"opacity-pow"`
	FalloffRows float64 `toml:"falloff-rows"`
	MaxBlur     float64 `toml:"max-blur"`
	NoBlur      bool    `toml:"no-blur"`
	LineGap     int     `toml:"line-gap"`
}

// Scroll tunes the camera regimes.
type Scroll struct {
	ResumeDelayMS   int     `toml:"resume-delay-ms"`
	Overscroll      float64 `toml:"overscroll"`
	SeekJumpLines   int     `toml:"seek-jump-lines"`
	Friction        float64 `toml:"friction"`
	FlickMin        float64 `toml:"flick-min"`
	VisibleFrac     float64 `toml:"visible-frac"`
	FollowStiffness float64 `toml:"follow-stiffness"`
	SettleStiffness float64 `toml:"settle-stiffness"`
	WheelRows       int     `toml:"wheel-rows"`
}

// Lines tunes the per-line springs.
type Lines struct {
	Stiffness      float64 `toml:"stiffness"`
	Falloff        float64 `toml:"falloff"`
	MinStiffness   float64 `toml:"min-stiffness"`
	UpwardBias     float64 `toml:"upward-bias"`
	StretchGain    float64 `toml:"stretch-gain"`
	ActiveScale    float64 `toml:"active-scale"`
	ScaleStiffness float64 `toml:"scale-stiffness"`
}

// Karaoke tunes the per-word glow.
type Karaoke struct {
	Lift float64 `toml:"lift"`
	Skew float64 `toml:"skew"`
}

// Default returns the shipped configuration, derived from the stage's
// default tuning so there is a single source of truth for feel.
func Default() Config {
	t := stage.DefaultTuning()
	return Config{
		FPS:    60,
		Volume: 0.8,
		View: View{
			FocalRatio:  t.FocalRatio,
			MinOpacity:  t.MinOpacity,
			OpacityPow:  t.OpacityPow,
			FalloffRows: t.FalloffRows,
			MaxBlur:     t.MaxBlur,
			NoBlur:      t.NoBlur,
			LineGap:     t.LineGap,
		},
		Scroll: Scroll{
			ResumeDelayMS:   int(t.ResumeDelay / time.Millisecond),
			Overscroll:      t.Overscroll,
			SeekJumpLines:   t.SeekJump,
			Friction:        t.Friction,
			FlickMin:        t.FlickMin,
			VisibleFrac:     t.VisibleFrac,
			FollowStiffness: t.FollowStiffness,
			SettleStiffness: t.SettleStiffness,
			WheelRows:       3,
		},
		Lines: Lines{
			Stiffness:      t.LineStiffness,
			Falloff:        t.LineFalloff,
			MinStiffness:   t.LineMinStiffness,
			UpwardBias:     t.UpwardBias,
			StretchGain:    t.StretchGain,
			ActiveScale:    t.ActiveScale,
			ScaleStiffness: t.ScaleStiffness,
		},
		Karaoke: Karaoke{
			Lift: t.KaraokeLift,
			Skew: t.KaraokeSkew,
		},
	}
}

// Load reads the config at path over the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("stat config: %w", err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Tuning maps the file values onto the stage's tuning, clamped back
// into its invariants.
func (c Config) Tuning() stage.Tuning {
	t := stage.Tuning{
		FocalRatio:  c.View.FocalRatio,
		ResumeDelay: time.Duration(c.Scroll.ResumeDelayMS) * time.Millisecond,
		Overscroll:  c.Scroll.Overscroll,
		SeekJump:    c.Scroll.SeekJumpLines,
		Friction:    c.Scroll.Friction,
		FlickMin:    c.Scroll.FlickMin,
		VisibleFrac: c.Scroll.VisibleFrac,

		FollowStiffness: c.Scroll.FollowStiffness,
		SettleStiffness: c.Scroll.SettleStiffness,

		LineStiffness:    c.Lines.Stiffness,
		LineFalloff:      c.Lines.Falloff,
		LineMinStiffness: c.Lines.MinStiffness,
		UpwardBias:       c.Lines.UpwardBias,
		StretchGain:      c.Lines.StretchGain,

		ActiveScale:    c.Lines.ActiveScale,
		ScaleStiffness: c.Lines.ScaleStiffness,

		MinOpacity:  c.View.MinOpacity,
		OpacityPow:  c.View.OpacityPow,
		FalloffRows: c.View.FalloffRows,
		MaxBlur:     c.View.MaxBlur,
		NoBlur:      c.View.NoBlur,

		KaraokeLift: c.Karaoke.Lift,
		KaraokeSkew: c.Karaoke.Skew,

		LineGap: c.View.LineGap,
	}
	return t.Normalize()
}

// WheelRows is how many rows one wheel notch scrolls.
func (c Config) WheelRows() float64 {
	if c.Scroll.WheelRows < 1 {
		return 3
	}
	return float64(c.Scroll.WheelRows)
}

// FrameInterval converts the configured FPS into a tick interval,
// clamped to something a terminal can plausibly sustain.
func (c Config) FrameInterval() time.Duration {
	fps := c.FPS
	if fps < 10 {
		fps = 10
	}
	if fps > 120 {
		fps = 120
	}
	return time.Second / time.Duration(fps)
}
