package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cazares/karaoke-time-by-miguel/internal/lyricstore"
	"github.com/cazares/karaoke-time-by-miguel/internal/ports/adapters/genius"
)

func newFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and clean lyrics for a song",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}
	cmd.Flags().StringP("artist", "a", "", "Song artist")
	cmd.Flags().StringP("title", "t", "", "Song title")
	cmd.Flags().String("out", "", "Write lyrics to a file instead of stdout")
	cmd.Flags().Bool("refresh", false, "Bypass the cache and fetch fresh lyrics")
	_ = cmd.MarkFlagRequired("artist")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	artist, _ := cmd.Flags().GetString("artist")
	title, _ := cmd.Flags().GetString("title")
	outPath, _ := cmd.Flags().GetString("out")
	refresh, _ := cmd.Flags().GetBool("refresh")
	ctx := cmd.Context()

	var cache *lyricstore.Store
	if app.cfg.Paths.CacheDir != "" {
		if store, err := lyricstore.Open(app.cfg.Paths.CacheDir); err == nil {
			cache = store
			defer cache.Close()
		} else {
			app.logger.Warn("lyric cache unavailable", "error", err)
		}
	}

	var text string
	if cache != nil && !refresh {
		if body, err := cache.Get(ctx, artist, title); err == nil {
			text = body
			app.logger.Info("lyrics cache hit", "artist", artist, "title", title)
		} else if !errors.Is(err, lyricstore.ErrMiss) {
			return err
		}
	}
	if text == "" {
		if app.cfg.Genius.Token == "" {
			return errors.New("no GENIUS_TOKEN configured (set it in .env or the config file)")
		}
		text, err = genius.New(app.cfg.Genius.Token, app.cfg.Genius.BaseURL).Fetch(ctx, artist, title)
		if err != nil {
			return err
		}
		if cache != nil {
			if err := cache.Put(ctx, artist, title, text, "genius"); err != nil {
				app.logger.Warn("lyrics cache write failed", "error", err)
			}
		}
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write lyrics: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote lyrics to %s\n", outPath)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
