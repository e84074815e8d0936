package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/chrisjrex/voxcli/internal/errs"
)

// piperEngine synthesizes via the piper CLI over local onnx voices. Speed is
// applied post-synthesis with a tempo pass; piper has no usable rate flag.
type piperEngine struct {
	voice     string
	voicesDir string
}

func (p *piperEngine) Describe() Descriptor {
	return Descriptor{Provider: "piper", ID: p.voice}
}

func (p *piperEngine) modelPath() string {
	return filepath.Join(p.voicesDir, p.voice+".onnx")
}

func (p *piperEngine) IsAvailable() error {
	if _, err := exec.LookPath("piper"); err != nil {
		return errs.DependencyMissing(
			fmt.Errorf("piper not found"),
			"pip install piper-tts",
		)
	}
	return nil
}

func (p *piperEngine) IsDownloaded() error {
	if _, err := os.Stat(p.modelPath()); err != nil {
		return errs.NotDownloaded(
			fmt.Errorf("piper voice %q not downloaded", p.voice),
			fmt.Sprintf("download %s.onnx (and its .json config) from huggingface.co/rhasspy/piper-voices into %s", p.voice, p.voicesDir),
		)
	}
	return nil
}

func (p *piperEngine) Synthesize(ctx context.Context, text string, speed float64, outDir string) (string, error) {
	if err := p.IsAvailable(); err != nil {
		return "", err
	}
	if err := p.IsDownloaded(); err != nil {
		return "", err
	}

	outPath := filepath.Join(outDir, uuid.NewString()+".wav")
	cmd := exec.CommandContext(ctx, "piper",
		"--model", p.modelPath(),
		"--output_file", outPath,
	)
	cmd.Stdin = strings.NewReader(text)
	if err := runCollapsed(cmd, "piper"); err != nil {
		return "", err
	}

	if err := applySpeed(ctx, outPath, speed); err != nil {
		os.Remove(outPath)
		return "", err
	}
	return outPath, nil
}
