package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cazares/karaoke-time-by-miguel/internal/lyricstore"
	"github.com/cazares/karaoke-time-by-miguel/internal/pipeline"
	"github.com/cazares/karaoke-time-by-miguel/internal/ports"
	"github.com/cazares/karaoke-time-by-miguel/internal/ports/adapters/demucs"
	"github.com/cazares/karaoke-time-by-miguel/internal/ports/adapters/ffmpeg"
	"github.com/cazares/karaoke-time-by-miguel/internal/ports/adapters/genius"
	"github.com/cazares/karaoke-time-by-miguel/internal/ports/adapters/osascript"
	"github.com/cazares/karaoke-time-by-miguel/internal/tap"
	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <audio.mp3>",
		Short: "Run the full pipeline: lyrics, tap timing, subtitles, render",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0])
		},
	}
	cmd.Flags().StringP("artist", "a", "", "Song artist (used for lyric lookup)")
	cmd.Flags().StringP("title", "t", "", "Song title (used for lyric lookup)")
	cmd.Flags().String("lyrics", "", "Lyrics text file; skips fetching")
	cmd.Flags().String("timing", "", "Pre-timed CSV; skips tap capture")
	cmd.Flags().Float64("offset", 0, "Shift all cues by this many seconds (negative clamps at 0)")
	cmd.Flags().Bool("strip-vocals", false, "Separate stems and render over the instrumental")
	cmd.Flags().Float64("vocals-percent", 0, "Vocal level to blend back in, 0..100")
	cmd.Flags().Bool("autoplay", false, "Open the finished video when done")
	cmd.Flags().String("out", "", "Output root (default from config)")
	return cmd
}

func runGenerate(cmd *cobra.Command, audio string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := app.cfg.EnsureDirectories(); err != nil {
		return err
	}

	audioAbs, err := filepath.Abs(audio)
	if err != nil {
		return err
	}

	artist, _ := cmd.Flags().GetString("artist")
	title, _ := cmd.Flags().GetString("title")
	lyricsPath, _ := cmd.Flags().GetString("lyrics")
	timingCSV, _ := cmd.Flags().GetString("timing")
	offset, _ := cmd.Flags().GetFloat64("offset")
	stripVocals, _ := cmd.Flags().GetBool("strip-vocals")
	vocalsPercent, _ := cmd.Flags().GetFloat64("vocals-percent")
	autoplay, _ := cmd.Flags().GetBool("autoplay")
	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = app.cfg.Paths.OutputDir
	}

	opts := app.timingOptions()
	opts.Offset = offset

	cfg := pipeline.Config{
		Artist:        artist,
		Title:         title,
		AudioPath:     audioAbs,
		LyricsPath:    lyricsPath,
		TimingCSV:     timingCSV,
		StripVocals:   stripVocals,
		VocalsPercent: vocalsPercent,
		AutoPlay:      autoplay,
		OutDir:        outDir,
		WorkDir:       app.cfg.Paths.CacheDir,
		Timing:        opts,
		Style:         app.style(),
		Logger:        app.logger,
	}

	deps, closeDeps := buildDeps(app, audioAbs)
	defer closeDeps()

	res, err := pipeline.Run(cmd.Context(), cfg, deps)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Done: %s\n", res.Manifest.Video)
	return nil
}

// buildDeps wires the real adapters. The returned func releases the
// lyric cache.
func buildDeps(app *app, audioPath string) (pipeline.Deps, func()) {
	cfg := app.cfg
	ffm := ffmpeg.New(cfg.FFmpegBin, cfg.FFprobe, ffmpeg.RenderOptions{
		VideoSize:    cfg.Render.VideoSize,
		FrameRate:    cfg.Render.FrameRate,
		Preset:       cfg.Render.Preset,
		CRF:          cfg.Render.CRF,
		AudioBitrate: cfg.Render.AudioBitrate,
	})

	var source ports.LyricsSource
	if cfg.Genius.Token != "" {
		source = genius.New(cfg.Genius.Token, cfg.Genius.BaseURL)
	}

	var cache *lyricstore.Store
	if cfg.Paths.CacheDir != "" {
		store, err := lyricstore.Open(cfg.Paths.CacheDir)
		if err != nil {
			app.logger.Warn("lyric cache unavailable", "error", err)
		} else {
			cache = store
		}
	}

	capture := func(ctx context.Context, blocks []string) ([]types.LyricEvent, error) {
		if err := pipeline.Launch(ctx, audioPath); err != nil {
			app.logger.Warn("could not start playback; play the song manually", "error", err)
		}
		return tap.NewConsole().Run(blocks, 0)
	}

	deps := pipeline.Deps{
		Video:     ffm,
		Lyrics:    source,
		Separator: demucs.New(cfg.Demucs.Bin, cfg.Demucs.Model, cfg.Demucs.OutDir),
		Mixer:     ffm,
		Pauser:    osascript.New(app.logger),
		Cache:     cache,
		Capture:   capture,
	}
	return deps, func() {
		if cache != nil {
			_ = cache.Close()
		}
	}
}
