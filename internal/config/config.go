// Package config loads and validates the karaoke-time TOML
// configuration. Defaults cover every field so a missing config file is
// not an error; the file only overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains workspace directory configuration.
type Paths struct {
	SongsDir  string `toml:"songs_dir"`
	LyricsDir string `toml:"lyrics_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	CacheDir  string `toml:"cache_dir"`
}

// Render contains video encode settings.
type Render struct {
	VideoSize    string `toml:"video_size"`
	FrameRate    int    `toml:"frame_rate"`
	Preset       string `toml:"preset"`
	CRF          int    `toml:"crf"`
	AudioBitrate string `toml:"audio_bitrate"`
	FontName     string `toml:"font_name"`
	FontSize     int    `toml:"font_size"`
}

// Timing contains cue derivation settings, in seconds unless noted.
type Timing struct {
	Buffer        float64 `toml:"buffer"`
	OverlapBuffer float64 `toml:"overlap_buffer"`
	BlockSpacing  float64 `toml:"block_spacing"`
	MinVisible    float64 `toml:"min_visible"`
	FadeOutMS     int     `toml:"fade_out_ms"`
}

// Genius contains lyric source settings. The token can also come from
// the GENIUS_TOKEN environment variable, which wins over the file.
type Genius struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
}

// Demucs contains vocal separation settings.
type Demucs struct {
	Bin    string `toml:"bin"`
	Model  string `toml:"model"`
	OutDir string `toml:"out_dir"`
}

// Config is the root configuration document.
type Config struct {
	Paths     Paths  `toml:"paths"`
	Render    Render `toml:"render"`
	Timing    Timing `toml:"timing"`
	Genius    Genius `toml:"genius"`
	Demucs    Demucs `toml:"demucs"`
	FFmpegBin string `toml:"ffmpeg_bin"`
	FFprobe   string `toml:"ffprobe_bin"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SongsDir:  "songs",
			LyricsDir: "lyrics",
			OutputDir: "output",
			LogDir:    "logs",
			CacheDir:  ".cache",
		},
		Render: Render{
			VideoSize:    "1280x720",
			FrameRate:    30,
			Preset:       "veryfast",
			CRF:          18,
			AudioBitrate: "192k",
			FontName:     "Helvetica Neue Bold",
			FontSize:     52,
		},
		Timing: Timing{
			Buffer:        0.5,
			OverlapBuffer: 0.05,
			BlockSpacing:  0,
			MinVisible:    0.30,
			FadeOutMS:     300,
		},
		Demucs: Demucs{
			Bin:    "demucs",
			Model:  "htdemucs",
			OutDir: "separated",
		},
		FFmpegBin: "ffmpeg",
		FFprobe:   "ffprobe",
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "karaoke-time", "config.toml")
	}
	return "config.toml"
}

// Load reads the config at path (or DefaultPath when path is empty) on
// top of defaults. A missing file returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg.applyEnv()
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if tok := os.Getenv("GENIUS_TOKEN"); tok != "" {
		c.Genius.Token = tok
	}
}

// Validate checks field ranges; directory existence is not checked
// here because EnsureDirectories creates what is missing.
func (c *Config) Validate() error {
	if c.Render.FontSize <= 0 {
		return fmt.Errorf("config: font_size must be > 0, got %d", c.Render.FontSize)
	}
	if c.Render.FrameRate <= 0 {
		return fmt.Errorf("config: frame_rate must be > 0, got %d", c.Render.FrameRate)
	}
	if c.Render.CRF < 0 || c.Render.CRF > 51 {
		return fmt.Errorf("config: crf must be in 0..51, got %d", c.Render.CRF)
	}
	if !strings.Contains(c.Render.VideoSize, "x") {
		return fmt.Errorf("config: video_size must look like 1280x720, got %q", c.Render.VideoSize)
	}
	if c.Timing.Buffer <= 0 {
		return fmt.Errorf("config: timing.buffer must be > 0, got %g", c.Timing.Buffer)
	}
	if c.Timing.OverlapBuffer < 0 {
		return fmt.Errorf("config: timing.overlap_buffer must be >= 0, got %g", c.Timing.OverlapBuffer)
	}
	if c.Timing.FadeOutMS < 0 {
		return fmt.Errorf("config: timing.fade_out_ms must be >= 0, got %d", c.Timing.FadeOutMS)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json", "":
	default:
		return fmt.Errorf("config: log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// EnsureDirectories creates the workspace directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.SongsDir, c.Paths.LyricsDir, c.Paths.OutputDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the annotated sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("config: write sample: %w", err)
	}
	return nil
}

// Dump renders the resolved configuration as TOML.
func (c Config) Dump() (string, error) {
	redacted := c
	if redacted.Genius.Token != "" {
		redacted.Genius.Token = "****"
	}
	b, err := toml.Marshal(redacted)
	if err != nil {
		return "", fmt.Errorf("config: marshal: %w", err)
	}
	return string(b), nil
}
