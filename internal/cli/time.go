package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cazares/karaoke-time-by-miguel/internal/domain/lyrics"
	"github.com/cazares/karaoke-time-by-miguel/internal/domain/timing"
	"github.com/cazares/karaoke-time-by-miguel/internal/lyricstore"
	"github.com/cazares/karaoke-time-by-miguel/internal/pipeline"
	"github.com/cazares/karaoke-time-by-miguel/internal/ports/adapters/genius"
	"github.com/cazares/karaoke-time-by-miguel/internal/ports/adapters/osascript"
	"github.com/cazares/karaoke-time-by-miguel/internal/tap"
)

func newTimeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time <audio.mp3>",
		Short: "Tap-capture lyric timestamps into a CSV without rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTime(cmd, args[0])
		},
	}
	cmd.Flags().StringP("artist", "a", "", "Song artist (used for lyric lookup)")
	cmd.Flags().StringP("title", "t", "", "Song title (used for lyric lookup)")
	cmd.Flags().String("lyrics", "", "Lyrics text file; skips fetching")
	cmd.Flags().String("out", "timing.csv", "Destination CSV")
	return cmd
}

func runTime(cmd *cobra.Command, audio string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	audioAbs, err := filepath.Abs(audio)
	if err != nil {
		return err
	}
	if _, err := os.Stat(audioAbs); err != nil {
		return fmt.Errorf("stat audio: %w", err)
	}

	artist, _ := cmd.Flags().GetString("artist")
	title, _ := cmd.Flags().GetString("title")
	lyricsPath, _ := cmd.Flags().GetString("lyrics")
	outCSV, _ := cmd.Flags().GetString("out")

	ctx := cmd.Context()
	text, err := resolveLyrics(ctx, app, artist, title, lyricsPath)
	if err != nil {
		return err
	}
	blocks := lyrics.Blocks(text)
	if len(blocks) == 0 {
		return errors.New("lyric text contains no blocks")
	}

	osascript.New(app.logger).PauseAll(ctx)
	if err := pipeline.Launch(ctx, audioAbs); err != nil {
		app.logger.Warn("could not start playback; play the song manually", "error", err)
	}
	events, err := tap.NewConsole().Run(blocks, 0)
	if err != nil {
		return err
	}
	if err := timing.WriteEventsFile(outCSV, events); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d timestamps to %s\n", len(events), outCSV)
	return nil
}

// resolveLyrics mirrors the pipeline's lyric resolution for commands
// that run outside a full pipeline run.
func resolveLyrics(ctx context.Context, app *app, artist, title, lyricsPath string) (string, error) {
	if lyricsPath != "" {
		b, err := os.ReadFile(lyricsPath)
		if err != nil {
			return "", fmt.Errorf("read lyrics file: %w", err)
		}
		return string(b), nil
	}
	if artist == "" || title == "" {
		return "", errors.New("either --lyrics or both --artist and --title are required")
	}

	if app.cfg.Paths.CacheDir != "" {
		if store, err := lyricstore.Open(app.cfg.Paths.CacheDir); err == nil {
			defer store.Close()
			if body, err := store.Get(ctx, artist, title); err == nil {
				return body, nil
			}
		}
	}

	if app.cfg.Genius.Token == "" {
		return "", errors.New("no GENIUS_TOKEN configured; pass --lyrics instead")
	}
	return genius.New(app.cfg.Genius.Token, app.cfg.Genius.BaseURL).Fetch(ctx, artist, title)
}
