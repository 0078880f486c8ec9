package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	def := Default()
	if cfg != def {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadPartialFileOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	src := "fps = 30\n\n[view]\nfocal-ratio = 0.65\nno-blur = true\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FPS != 30 {
		t.Fatalf("expected fps override, got %d", cfg.FPS)
	}
	if cfg.View.FocalRatio != 0.65 || !cfg.View.NoBlur {
		t.Fatalf("expected view overrides, got %+v", cfg.View)
	}
	// Untouched sections keep their defaults.
	if cfg.Scroll != Default().Scroll {
		t.Fatalf("scroll section should be default, got %+v", cfg.Scroll)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("fps = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestTuningClampsNonsense(t *testing.T) {
	cfg := Default()
	cfg.View.FocalRatio = 7
	cfg.Scroll.Friction = -2
	cfg.Lines.Stiffness = 0

	tun := cfg.Tuning()
	if tun.FocalRatio <= 0 || tun.FocalRatio >= 1 {
		t.Fatalf("focal ratio not clamped: %f", tun.FocalRatio)
	}
	if tun.Friction <= 0 || tun.Friction >= 1 {
		t.Fatalf("friction not clamped: %f", tun.Friction)
	}
	if tun.LineStiffness <= 0 {
		t.Fatalf("line stiffness not clamped: %f", tun.LineStiffness)
	}
}

func TestTuningRoundTripsDefaults(t *testing.T) {
	if got, want := Default().Tuning(), Default().Tuning(); got != want {
		t.Fatal("tuning mapping is not deterministic")
	}
	if Default().Tuning().ResumeDelay != 3*time.Second {
		t.Fatalf("unexpected default resume delay: %v", Default().Tuning().ResumeDelay)
	}
}

func TestWheelRowsFloor(t *testing.T) {
	cfg := Default()
	if cfg.WheelRows() != 3 {
		t.Fatalf("default wheel rows = %v, want 3", cfg.WheelRows())
	}
	cfg.Scroll.WheelRows = 0
	if cfg.WheelRows() != 3 {
		t.Fatalf("zero wheel rows should fall back to 3, got %v", cfg.WheelRows())
	}
	cfg.Scroll.WheelRows = 5
	if cfg.WheelRows() != 5 {
		t.Fatalf("wheel rows = %v, want 5", cfg.WheelRows())
	}
}

func TestFrameIntervalClamps(t *testing.T) {
	cfg := Default()
	cfg.FPS = 1000
	if cfg.FrameInterval() < time.Second/120 {
		t.Fatalf("interval not clamped: %v", cfg.FrameInterval())
	}
	cfg.FPS = 0
	if cfg.FrameInterval() > time.Second/10 {
		t.Fatalf("interval not floored: %v", cfg.FrameInterval())
	}
}
