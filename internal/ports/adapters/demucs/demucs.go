// Package demucs wraps the Demucs source-separation CLI. Demucs writes
// stems under <outDir>/<model>/<track>/<stem>.wav; the adapter runs the
// tool and locates the four stems, nothing more.
package demucs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

type Adapter struct {
	bin    string
	model  string
	outDir string
}

// New builds an adapter. Defaults: "demucs" on PATH, the htdemucs
// model, output under "separated".
func New(bin, model, outDir string) *Adapter {
	if bin == "" {
		bin = "demucs"
	}
	if model == "" {
		model = "htdemucs"
	}
	if outDir == "" {
		outDir = "separated"
	}
	return &Adapter{bin: bin, model: model, outDir: outDir}
}

// Separate runs Demucs on the audio file and returns the stem paths.
func (a *Adapter) Separate(ctx context.Context, audioPath string) (types.Stems, error) {
	if _, err := exec.LookPath(a.bin); err != nil {
		return types.Stems{}, fmt.Errorf("demucs: binary not found: %w", err)
	}
	cmd := exec.CommandContext(ctx, a.bin, "-n", a.model, "-o", a.outDir, audioPath)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Stems{}, fmt.Errorf("demucs: separation failed: %w\n%s", err, string(b))
	}
	return a.locateStems(audioPath)
}

func (a *Adapter) locateStems(audioPath string) (types.Stems, error) {
	track := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	dir := filepath.Join(a.outDir, a.model, track)
	if _, err := os.Stat(dir); err != nil {
		return types.Stems{}, fmt.Errorf("demucs: output folder %s not found: %w", dir, err)
	}
	stems := types.Stems{
		Vocals: filepath.Join(dir, "vocals.wav"),
		Drums:  filepath.Join(dir, "drums.wav"),
		Bass:   filepath.Join(dir, "bass.wav"),
		Other:  filepath.Join(dir, "other.wav"),
	}
	for _, p := range []string{stems.Vocals, stems.Drums, stems.Bass, stems.Other} {
		if _, err := os.Stat(p); err != nil {
			return types.Stems{}, fmt.Errorf("demucs: missing stem %s: %w", filepath.Base(p), err)
		}
	}
	return stems, nil
}
