package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kashi-player/kashi/internal/config"
	"github.com/kashi-player/kashi/internal/lyrics"
	"github.com/kashi-player/kashi/internal/media"
	"github.com/kashi-player/kashi/internal/player"
	"github.com/kashi-player/kashi/internal/queue"
	"github.com/kashi-player/kashi/internal/ui"
)

var (
	flagConfig string
	flagDebug  bool
	flagNoBlur bool
	flagFocal  float64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "kashi <file>",
		Short:        "terminal music player with animated synced lyrics",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default: "+config.DefaultPath()+")")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "write a debug log to "+config.LogPath())
	rootCmd.Flags().BoolVar(&flagNoBlur, "no-blur", false, "disable the distance blur effect")
	rootCmd.Flags().Float64Var(&flagFocal, "focal", -1, "focal point as a fraction of viewport height (0-1)")
	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) {
		return fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}

	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("no-blur") {
		cfg.View.NoBlur = flagNoBlur
	}
	if cmd.Flags().Changed("focal") {
		cfg.View.FocalRatio = flagFocal
	}

	meta := player.ReadMetadata(path)
	doc, err := lyrics.Load(path)
	if err != nil {
		log.Debug().Str("path", path).Err(err).Msg("no lyrics")
	}

	q, err := queue.FromDirectory(path, media.IsSupportedExt)
	if err != nil {
		log.Debug().Err(err).Msg("queue scan failed")
		q = nil
	}

	p, err := player.New(path)
	if err != nil {
		return fmt.Errorf("open player: %w", err)
	}
	defer p.Close()
	p.SetVolume(cfg.Volume)

	log.Info().Str("path", path).Str("title", meta.Title).
		Bool("lyrics", !doc.Empty()).Msg("starting playback")

	model := ui.New(cfg, p, meta, q, doc)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

// setupLogging routes zerolog to a state-dir file when --debug is
// set, and discards it otherwise. The terminal belongs to the TUI, so
// nothing may write to stderr while the program runs.
func setupLogging() (func(), error) {
	if !flagDebug {
		log.Logger = zerolog.Nop()
		return func() {}, nil
	}
	path := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { f.Close() }, nil
}
