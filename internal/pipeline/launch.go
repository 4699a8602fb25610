package pipeline

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Launch opens path with the platform's default handler. Used both for
// autoplay of the finished video and to start the song before tap
// capture.
func Launch(ctx context.Context, path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", path)
	case "windows":
		cmd = exec.CommandContext(ctx, "cmd", "/c", "start", "", path)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", path)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("open %s: %w: %s", path, err, out)
	}
	return nil
}
