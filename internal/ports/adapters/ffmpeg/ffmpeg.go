// Package ffmpeg shells out to ffmpeg/ffprobe for rendering, probing,
// and stem mixing. Every operation is a parameter-driven invocation;
// the adapter owns argument construction and error surfacing only.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

// RenderOptions tune the karaoke video encode.
type RenderOptions struct {
	VideoSize    string // e.g. "1280x720"
	FrameRate    int
	Preset       string // libx264 preset
	CRF          int
	AudioBitrate string // e.g. "192k"
}

// DefaultRenderOptions matches the original render graph.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		VideoSize:    "1280x720",
		FrameRate:    30,
		Preset:       "veryfast",
		CRF:          18,
		AudioBitrate: "192k",
	}
}

type Adapter struct {
	ffmpeg  string
	ffprobe string
	opts    RenderOptions
}

func New(ffmpegPath, ffprobePath string, opts RenderOptions) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if opts.VideoSize == "" {
		opts = DefaultRenderOptions()
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, opts: opts}
}

// RenderKaraoke composites the subtitle track over a black background
// with the audio, stopping at whichever input ends first.
func (a *Adapter) RenderKaraoke(ctx context.Context, audioPath, assPath, outMP4 string) error {
	args := renderArgs(a.opts, audioPath, assPath, outMP4)
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg render: %w\n%s", err, string(b))
	}
	return nil
}

// ProbeDuration returns the media duration in seconds via ffprobe.
func (a *Adapter) ProbeDuration(ctx context.Context, mediaPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

// MixInstrumental combines the non-vocal stems into one MP3, optionally
// blending the vocal stem back in at vocalsPercent (0 drops it, 100
// restores the full vocal level).
func (a *Adapter) MixInstrumental(ctx context.Context, stems types.Stems, vocalsPercent float64, outPath string) error {
	args := mixArgs(stems, vocalsPercent, outPath)
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg mix: %w\n%s", err, string(b))
	}
	return nil
}

// AttenuateVocals applies one of the fixed filter presets to produce an
// approximation of an instrumental without running separation.
func (a *Adapter) AttenuateVocals(ctx context.Context, inPath, presetName, outPath string) error {
	preset, err := LookupPreset(presetName)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inPath,
		"-af", preset.Filter,
		"-qscale:a", "2",
		outPath,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg attenuate (%s): %w\n%s", presetName, err, string(b))
	}
	return nil
}

func renderArgs(opts RenderOptions, audioPath, assPath, outMP4 string) []string {
	return []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:size=%s:r=%d", opts.VideoSize, opts.FrameRate),
		"-i", audioPath,
		"-vf", "subtitles=" + escapeFilterPath(assPath),
		"-c:v", "libx264",
		"-preset", opts.Preset,
		"-crf", strconv.Itoa(opts.CRF),
		"-c:a", "aac",
		"-b:a", opts.AudioBitrate,
		"-movflags", "+faststart",
		"-shortest",
		outMP4,
	}
}

func mixArgs(stems types.Stems, vocalsPercent float64, outPath string) []string {
	inputs := stems.Instrumental()
	args := []string{"-y"}
	for _, in := range inputs {
		args = append(args, "-i", in)
	}
	n := len(inputs)
	filter := fmt.Sprintf("amix=inputs=%d:normalize=1,alimiter=limit=0.9", n)
	if vocalsPercent > 0 && stems.Vocals != "" {
		args = append(args, "-i", stems.Vocals)
		vol := vocalsPercent / 100
		filter = fmt.Sprintf(
			"[%d:a]volume=%s[v];%s[v]amix=inputs=%d:normalize=1,alimiter=limit=0.9",
			n, strconv.FormatFloat(vol, 'f', 3, 64), streamLabels(n), n+1)
	}
	args = append(args,
		"-filter_complex", filter,
		"-qscale:a", "2",
		outPath,
	)
	return args
}

func streamLabels(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[%d:a]", i)
	}
	return b.String()
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
