// Package osascript pauses other media players via AppleScript so tap
// timing is not drowned out by whatever was already playing. On
// platforms without osascript the pauser is a no-op; pausing is
// strictly best-effort and failures are swallowed everywhere.
package osascript

import (
	"context"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/cazares/karaoke-time-by-miguel/internal/ports"
)

type pauser struct {
	logger *slog.Logger
}

type noop struct{}

func (noop) PauseAll(context.Context) {}

// New returns a MediaPauser for the current platform.
func New(logger *slog.Logger) ports.MediaPauser {
	if runtime.GOOS != "darwin" {
		return noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &pauser{logger: logger}
}

var pauseScripts = []string{
	`tell application "Music" to pause`,
	`tell application "Spotify" to pause`,
	`tell application "QuickTime Player" to pause every document`,
}

func (p *pauser) PauseAll(ctx context.Context) {
	for _, script := range pauseScripts {
		cmd := exec.CommandContext(ctx, "osascript", "-e", script)
		if err := cmd.Run(); err != nil {
			// Apps that are not running report an error; that is fine.
			p.logger.Debug("media pause skipped", "script", script, "error", err)
		}
	}
}
