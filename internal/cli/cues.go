package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/cazares/karaoke-time-by-miguel/internal/domain/subtitles"
	"github.com/cazares/karaoke-time-by-miguel/internal/domain/timing"
	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

func newCuesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cues <timing.csv|lyrics.ass>",
		Short: "Preview derived cues as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCues(cmd, args[0])
		},
	}
	cmd.Flags().Float64("offset", 0, "Shift all cues by this many seconds (CSV input only)")
	return cmd
}

func runCues(cmd *cobra.Command, path string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}

	var cues []types.Cue
	if strings.EqualFold(filepath.Ext(path), ".ass") {
		cues, err = subtitles.ParseFile(path)
		if err != nil {
			return err
		}
	} else {
		events, err := timing.ReadEventsFile(path)
		if err != nil {
			return err
		}
		opts := app.timingOptions()
		opts.Offset, _ = cmd.Flags().GetFloat64("offset")
		res, err := timing.Build(events, opts)
		if err != nil {
			return err
		}
		cues = res.Cues
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"#", "Start", "End", "Dur", "Fade", "Text"})
	for i, c := range cues {
		text := strings.ReplaceAll(c.Text, `\N`, " / ")
		t.AppendRow(table.Row{
			i + 1,
			subtitles.Timestamp(c.Start),
			subtitles.Timestamp(c.End),
			fmt.Sprintf("%.2fs", c.Duration()),
			fmt.Sprintf("%dms", c.FadeOutMS),
			text,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
