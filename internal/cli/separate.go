package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/cazares/karaoke-time-by-miguel/internal/ports/adapters/demucs"
	"github.com/cazares/karaoke-time-by-miguel/internal/ports/adapters/ffmpeg"
)

func newSeparateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "separate <audio.mp3>",
		Short: "Produce an instrumental via stem separation or a filter preset",
		Long: "Without --preset, runs demucs stem separation and mixes the\n" +
			"non-vocal stems back together. With --preset, applies a fixed\n" +
			"ffmpeg filter instead; much faster, much rougher.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list, _ := cmd.Flags().GetBool("list-presets"); list {
				return runListPresets(cmd)
			}
			if len(args) != 1 {
				return fmt.Errorf("expected one audio file argument")
			}
			return runSeparate(cmd, args[0])
		},
	}
	cmd.Flags().String("preset", "", "Vocal attenuation filter preset (see --list-presets)")
	cmd.Flags().Float64("vocals-percent", 0, "Vocal level to blend back in, 0..100 (stem mode)")
	cmd.Flags().String("out", "", "Destination file (default <audio>_instrumental.<ext>)")
	cmd.Flags().Bool("list-presets", false, "List attenuation presets and exit")
	return cmd
}

func runListPresets(cmd *cobra.Command) error {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Preset", "Notes"})
	for _, p := range ffmpeg.Presets() {
		t.AppendRow(table.Row{p.Name, p.Note})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func runSeparate(cmd *cobra.Command, audio string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	audioAbs, err := filepath.Abs(audio)
	if err != nil {
		return err
	}

	preset, _ := cmd.Flags().GetString("preset")
	vocalsPercent, _ := cmd.Flags().GetFloat64("vocals-percent")
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		ext := filepath.Ext(audioAbs)
		outPath = strings.TrimSuffix(audioAbs, ext) + "_instrumental" + ext
	}
	if vocalsPercent < 0 || vocalsPercent > 100 {
		return fmt.Errorf("vocals percent must be in 0..100, got %g", vocalsPercent)
	}

	ctx := cmd.Context()
	cfg := app.cfg
	ffm := ffmpeg.New(cfg.FFmpegBin, cfg.FFprobe, ffmpeg.RenderOptions{})

	if preset != "" {
		app.logger.Info("applying attenuation preset", "preset", preset, "out", outPath)
		if err := ffm.AttenuateVocals(ctx, audioAbs, preset, outPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
		return nil
	}

	app.logger.Info("separating stems", "audio", audioAbs)
	stems, err := demucs.New(cfg.Demucs.Bin, cfg.Demucs.Model, cfg.Demucs.OutDir).Separate(ctx, audioAbs)
	if err != nil {
		return err
	}
	app.logger.Info("mixing instrumental", "vocals_percent", vocalsPercent)
	if err := ffm.MixInstrumental(ctx, stems, vocalsPercent, outPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
	return nil
}
