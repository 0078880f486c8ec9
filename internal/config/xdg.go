package config

import (
	"os"
	"path/filepath"
)

// xdgConfigHome returns the XDG config home or a fallback.
func xdgConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// xdgStateHome returns the XDG state home or a fallback.
func xdgStateHome() string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "state")
}

// DefaultPath returns the default TOML config path.
func DefaultPath() string {
	return filepath.Join(xdgConfigHome(), "kashi", "config.toml")
}

// LogPath returns the debug log file path. The TTY belongs to the
// TUI, so logging goes to the state dir instead of stderr.
func LogPath() string {
	return filepath.Join(xdgStateHome(), "kashi", "kashi.log")
}
