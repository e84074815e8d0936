package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/chrisjrex/voxcli/internal/errs"
)

// whisperEngine transcribes via the whisper.cpp CLI over ggml model files.
type whisperEngine struct {
	id        string
	modelsDir string
}

func (w *whisperEngine) Describe() Descriptor {
	return Descriptor{Provider: "whisper", ID: w.id}
}

func (w *whisperEngine) modelPath() string {
	return filepath.Join(w.modelsDir, "ggml-"+w.id+".bin")
}

func (w *whisperEngine) IsAvailable() error {
	if _, err := exec.LookPath("whisper-cli"); err != nil {
		return errs.DependencyMissing(
			fmt.Errorf("whisper-cli not found"),
			"brew install whisper-cpp",
		)
	}
	return nil
}

func (w *whisperEngine) IsDownloaded() error {
	if _, err := os.Stat(w.modelPath()); err != nil {
		return errs.NotDownloaded(
			fmt.Errorf("whisper model %q not downloaded", w.id),
			fmt.Sprintf("curl -Lo %s https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-%s.bin", w.modelPath(), w.id),
		)
	}
	return nil
}

func (w *whisperEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := w.IsAvailable(); err != nil {
		return "", err
	}
	if err := w.IsDownloaded(); err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "vox-whisper-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)
	outPrefix := filepath.Join(tmpDir, "out")

	cmd := exec.CommandContext(ctx, "whisper-cli",
		"-m", w.modelPath(),
		"-f", audioPath,
		"-l", "auto",
		"-otxt",
		"-of", outPrefix,
		"-nt",
	)
	if err := runCollapsed(cmd, "whisper-cli"); err != nil {
		return "", err
	}

	b, err := os.ReadFile(outPrefix + ".txt")
	if err != nil {
		return "", errs.Transient(fmt.Errorf("whisper-cli produced no transcript"), err.Error())
	}
	return strings.TrimSpace(string(b)), nil
}
