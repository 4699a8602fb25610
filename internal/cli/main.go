// Package cli is the karaoke-time command tree. Main is the only entry
// point; commands wire adapters into the pipeline and never talk to
// external tools directly.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cazares/karaoke-time-by-miguel/internal/config"
	"github.com/cazares/karaoke-time-by-miguel/internal/domain/subtitles"
	"github.com/cazares/karaoke-time-by-miguel/internal/domain/timing"
	"github.com/cazares/karaoke-time-by-miguel/internal/logging"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:           "karaoke-time",
		Short:         "Turn an MP3 and its lyrics into a karaoke video",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.PersistentFlags().String("config", "", "Config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().String("log-level", "", "Override log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "Override log format (console, json)")

	root.AddCommand(
		newGenerateCommand(),
		newTimeCommand(),
		newAssCommand(),
		newCuesCommand(),
		newFetchCommand(),
		newSeparateCommand(),
		newConfigCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the resolved configuration and logger every command needs.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lv, _ := cmd.Flags().GetString("log-level"); lv != "" {
		cfg.LogLevel = lv
	}
	if lf, _ := cmd.Flags().GetString("log-format"); lf != "" {
		cfg.LogFormat = lf
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		LogDir: cfg.Paths.LogDir,
	})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) style() subtitles.Style {
	style := subtitles.DefaultStyle()
	if a.cfg.Render.FontName != "" {
		style.FontName = a.cfg.Render.FontName
	}
	if a.cfg.Render.FontSize > 0 {
		style.FontSize = a.cfg.Render.FontSize
	}
	if w, h, ok := parseVideoSize(a.cfg.Render.VideoSize); ok {
		style.PlayResX, style.PlayResY = w, h
	}
	return style
}

func (a *app) timingOptions() timing.Options {
	opts := timing.DefaultOptions()
	t := a.cfg.Timing
	if t.Buffer > 0 {
		opts.Buffer = t.Buffer
	}
	if t.OverlapBuffer >= 0 {
		opts.OverlapBuffer = t.OverlapBuffer
	}
	opts.BlockSpacing = t.BlockSpacing
	if t.MinVisible > 0 {
		opts.MinVisible = t.MinVisible
	}
	if t.FadeOutMS >= 0 {
		opts.FadeOutMS = t.FadeOutMS
	}
	return opts
}

func parseVideoSize(s string) (w, h int, ok bool) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(parts[0])
	h, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
