package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cazares/karaoke-time-by-miguel/internal/domain/subtitles"
	"github.com/cazares/karaoke-time-by-miguel/internal/domain/timing"
)

func newAssCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ass <timing.csv>",
		Short: "Build an ASS subtitle file from a timing CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAss(cmd, args[0])
		},
	}
	cmd.Flags().String("out", "", "Destination .ass (default alongside the CSV)")
	cmd.Flags().Float64("offset", 0, "Shift all cues by this many seconds (negative clamps at 0)")
	cmd.Flags().Float64("buffer", 0, "Last-cue duration in seconds (0 = config value)")
	cmd.Flags().Float64("overlap", -1, "Gap held back before the next cue (negative = config value)")
	cmd.Flags().Float64("spacing", -1, "Delay added after each tap (negative = config value)")
	cmd.Flags().Int("fade-ms", -1, "Exit fade in milliseconds (negative = config value)")
	return cmd
}

func runAss(cmd *cobra.Command, csvPath string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}

	opts := app.timingOptions()
	if v, _ := cmd.Flags().GetFloat64("offset"); v != 0 {
		opts.Offset = v
	}
	if v, _ := cmd.Flags().GetFloat64("buffer"); v > 0 {
		opts.Buffer = v
	}
	if v, _ := cmd.Flags().GetFloat64("overlap"); v >= 0 {
		opts.OverlapBuffer = v
	}
	if v, _ := cmd.Flags().GetFloat64("spacing"); v >= 0 {
		opts.BlockSpacing = v
	}
	if v, _ := cmd.Flags().GetInt("fade-ms"); v >= 0 {
		opts.FadeOutMS = v
	}

	events, err := timing.ReadEventsFile(csvPath)
	if err != nil {
		return err
	}
	res, err := timing.Build(events, opts)
	if err != nil {
		return err
	}
	if res.NonMonotonic {
		app.logger.Warn("timestamps were not in order; sorted before deriving cues")
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = strings.TrimSuffix(csvPath, ".csv") + ".ass"
	}
	if err := subtitles.WriteFile(outPath, res.Cues, app.style()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cues to %s\n", len(res.Cues), outPath)
	return nil
}
