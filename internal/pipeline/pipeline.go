// Package pipeline wires the adapters into the end-to-end karaoke run:
// lyrics in, timed and subtitled MP4 out. Every step is sequential;
// external tools run one at a time.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/cazares/karaoke-time-by-miguel/internal/domain/lyrics"
	"github.com/cazares/karaoke-time-by-miguel/internal/domain/subtitles"
	"github.com/cazares/karaoke-time-by-miguel/internal/domain/timing"
	"github.com/cazares/karaoke-time-by-miguel/internal/lyricstore"
	"github.com/cazares/karaoke-time-by-miguel/internal/ports"
	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

// Config describes one karaoke run.
type Config struct {
	Artist string
	Title  string

	// AudioPath is the song MP3.
	AudioPath string
	// LyricsPath optionally overrides lyric fetching with a local file.
	LyricsPath string
	// TimingCSV optionally supplies pre-timed events and skips tap capture.
	TimingCSV string

	StripVocals   bool
	VocalsPercent float64
	AutoPlay      bool

	OutDir  string
	WorkDir string

	Timing timing.Options
	Style  subtitles.Style

	Logger *slog.Logger
}

// Validate checks the run configuration before any external tool runs.
func (c Config) Validate() error {
	if c.AudioPath == "" {
		return errors.New("pipeline: audio path is required")
	}
	if _, err := os.Stat(c.AudioPath); err != nil {
		return fmt.Errorf("pipeline: stat audio: %w", err)
	}
	if c.LyricsPath == "" && c.TimingCSV == "" && (c.Artist == "" || c.Title == "") {
		return errors.New("pipeline: artist and title are required when no lyrics file or timing CSV is given")
	}
	if c.VocalsPercent < 0 || c.VocalsPercent > 100 {
		return fmt.Errorf("pipeline: vocals percent must be in 0..100, got %g", c.VocalsPercent)
	}
	return nil
}

// CaptureFunc produces timed lyric events for the given blocks; the
// interactive tap session satisfies it, and tests inject recordings.
type CaptureFunc func(ctx context.Context, blocks []string) ([]types.LyricEvent, error)

// Deps are the collaborators a run needs. Cache and Separator/Mixer may
// be nil when the corresponding feature is unused.
type Deps struct {
	Video     ports.VideoRenderer
	Lyrics    ports.LyricsSource
	Separator ports.VocalSeparator
	Mixer     ports.StemMixer
	Pauser    ports.MediaPauser
	Cache     *lyricstore.Store
	Capture   CaptureFunc
}

// Result reports where the run's artifacts landed.
type Result struct {
	RunDir   string
	Manifest types.Manifest
}

// Run executes the pipeline: resolve lyrics, optionally strip vocals,
// time the blocks, build cues, write the subtitle file atomically, and
// render the video. The workspace is locked so two runs cannot clobber
// the same song directories.
func Run(ctx context.Context, cfg Config, deps Deps) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = "."
	}
	lock := flock.New(filepath.Join(workDir, "karaoke-time.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: acquire workspace lock: %w", err)
	}
	if !locked {
		return Result{}, errors.New("pipeline: another run is already using this workspace")
	}
	defer func() { _ = lock.Unlock() }()

	runID := strings.Split(uuid.NewString(), "-")[0]
	runDir := buildRunDir(cfg.OutDir, cfg.AudioPath, runID, time.Now().UTC())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("pipeline: create run dir: %w", err)
	}
	logger.Info("run started", "run_id", runID, "dir", runDir)

	manifest := types.Manifest{
		RunID:  runID,
		Artist: cfg.Artist,
		Title:  cfg.Title,
		Lyrics: cfg.LyricsPath,
		Offset: cfg.Timing.Offset,
	}

	// Phase 1: lyric events.
	events, timingCSV, err := resolveEvents(ctx, cfg, deps, runDir, logger)
	if err != nil {
		return Result{}, err
	}
	manifest.TimingCSV = timingCSV

	// Phase 2: audio, optionally with vocals stripped.
	audio := cfg.AudioPath
	if cfg.StripVocals {
		audio, err = stripVocals(ctx, cfg, deps, logger)
		if err != nil {
			return Result{}, err
		}
	}
	manifest.Audio = audio

	// Phase 3: cues and subtitle file.
	res, err := timing.Build(events, cfg.Timing)
	if err != nil {
		return Result{}, err
	}
	if res.NonMonotonic {
		logger.Warn("lyric timestamps were not in order; sorted before deriving cues")
	}
	assPath := filepath.Join(runDir, "lyrics.ass")
	if err := subtitles.WriteFile(assPath, res.Cues, cfg.Style); err != nil {
		return Result{}, err
	}
	manifest.Subtitles = assPath
	manifest.CueCount = len(res.Cues)
	logger.Info("subtitles written", "cues", len(res.Cues), "path", assPath)

	// Phase 4: render.
	outMP4 := filepath.Join(runDir, "karaoke.mp4")
	logger.Info("rendering karaoke video", "audio", audio, "out", outMP4)
	if err := deps.Video.RenderKaraoke(ctx, audio, assPath, outMP4); err != nil {
		return Result{}, fmt.Errorf("pipeline: render: %w", err)
	}
	manifest.Video = outMP4

	manifestPath := filepath.Join(runDir, "manifest.json")
	b, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return Result{}, fmt.Errorf("pipeline: write manifest: %w", err)
	}
	logger.Info("run complete", "video", outMP4)

	if cfg.AutoPlay {
		openInPlayer(ctx, outMP4, logger)
	}
	return Result{RunDir: runDir, Manifest: manifest}, nil
}

func resolveEvents(ctx context.Context, cfg Config, deps Deps, runDir string, logger *slog.Logger) ([]types.LyricEvent, string, error) {
	if cfg.TimingCSV != "" {
		events, err := timing.ReadEventsFile(cfg.TimingCSV)
		if err != nil {
			return nil, "", err
		}
		logger.Info("loaded timing csv", "path", cfg.TimingCSV, "events", len(events))
		return events, cfg.TimingCSV, nil
	}

	text, err := resolveLyricText(ctx, cfg, deps, logger)
	if err != nil {
		return nil, "", err
	}
	blocks := lyrics.Blocks(text)
	if len(blocks) == 0 {
		return nil, "", fmt.Errorf("pipeline: lyric text for %q contains no blocks", cfg.Title)
	}
	logger.Info("lyric blocks ready", "blocks", len(blocks))

	if deps.Pauser != nil {
		deps.Pauser.PauseAll(ctx)
	}
	if deps.Capture == nil {
		return nil, "", errors.New("pipeline: no capture function configured")
	}
	events, err := deps.Capture(ctx, blocks)
	if err != nil {
		return nil, "", fmt.Errorf("pipeline: tap capture: %w", err)
	}

	csvPath := filepath.Join(runDir, "timing.csv")
	if err := timing.WriteEventsFile(csvPath, events); err != nil {
		return nil, "", err
	}
	logger.Info("capture saved", "path", csvPath, "events", len(events))
	return events, csvPath, nil
}

func resolveLyricText(ctx context.Context, cfg Config, deps Deps, logger *slog.Logger) (string, error) {
	if cfg.LyricsPath != "" {
		b, err := os.ReadFile(cfg.LyricsPath)
		if err != nil {
			return "", fmt.Errorf("pipeline: read lyrics file: %w", err)
		}
		logger.Info("using lyrics file", "path", cfg.LyricsPath)
		return string(b), nil
	}

	if deps.Cache != nil {
		cached, err := deps.Cache.Get(ctx, cfg.Artist, cfg.Title)
		if err == nil {
			logger.Info("lyrics cache hit", "artist", cfg.Artist, "title", cfg.Title)
			return cached, nil
		}
		if !errors.Is(err, lyricstore.ErrMiss) {
			return "", err
		}
	}

	if deps.Lyrics == nil {
		return "", errors.New("pipeline: no lyrics source configured")
	}
	logger.Info("fetching lyrics", "artist", cfg.Artist, "title", cfg.Title)
	text, err := deps.Lyrics.Fetch(ctx, cfg.Artist, cfg.Title)
	if err != nil {
		return "", fmt.Errorf("pipeline: fetch lyrics: %w", err)
	}
	if deps.Cache != nil {
		if err := deps.Cache.Put(ctx, cfg.Artist, cfg.Title, text, "genius"); err != nil {
			logger.Warn("lyrics cache write failed", "error", err)
		}
	}
	return text, nil
}

func stripVocals(ctx context.Context, cfg Config, deps Deps, logger *slog.Logger) (string, error) {
	instrumental := instrumentalPath(cfg.AudioPath)
	if _, err := os.Stat(instrumental); err == nil {
		logger.Info("instrumental already exists", "path", instrumental)
		return instrumental, nil
	}
	if deps.Separator == nil || deps.Mixer == nil {
		return "", errors.New("pipeline: vocal stripping requested but no separator configured")
	}
	logger.Info("separating vocals", "audio", cfg.AudioPath)
	stems, err := deps.Separator.Separate(ctx, cfg.AudioPath)
	if err != nil {
		return "", fmt.Errorf("pipeline: separate: %w", err)
	}
	logger.Info("mixing instrumental", "vocals_percent", cfg.VocalsPercent)
	if err := deps.Mixer.MixInstrumental(ctx, stems, cfg.VocalsPercent, instrumental); err != nil {
		return "", fmt.Errorf("pipeline: mix: %w", err)
	}
	return instrumental, nil
}

func instrumentalPath(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + "_instrumental" + ext
}

func buildRunDir(outRoot, audioPath, runID string, now time.Time) string {
	if outRoot == "" {
		outRoot = "output"
	}
	name := slugify(strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath)))
	if name == "" {
		name = "song"
	}
	ts := now.Format("20060102-150405Z")
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, runID))
}

func slugify(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// openInPlayer hands the finished video to the default player.
// Best-effort, like media pausing.
func openInPlayer(ctx context.Context, path string, logger *slog.Logger) {
	if err := Launch(ctx, path); err != nil {
		logger.Debug("autoplay skipped", "error", err)
	}
}
