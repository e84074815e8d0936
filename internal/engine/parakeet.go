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

// parakeetEngine transcribes via the parakeet-mlx python package, run
// through uv so no managed virtualenv is needed.
type parakeetEngine struct {
	id string
}

func (p *parakeetEngine) Describe() Descriptor {
	return Descriptor{Provider: "parakeet", ID: p.id}
}

func (p *parakeetEngine) hfModel() string { return "mlx-community/" + p.id }

func (p *parakeetEngine) IsAvailable() error {
	if _, err := exec.LookPath("uv"); err != nil {
		return errs.DependencyMissing(
			fmt.Errorf("uv not found"),
			"brew install uv",
		)
	}
	return nil
}

func (p *parakeetEngine) IsDownloaded() error {
	// parakeet-mlx caches weights in the huggingface hub directory.
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	cached := filepath.Join(home, ".cache", "huggingface", "hub",
		"models--mlx-community--"+p.id)
	if _, err := os.Stat(cached); err != nil {
		return errs.NotDownloaded(
			fmt.Errorf("parakeet model %q not downloaded", p.id),
			fmt.Sprintf("weights download on first use; warm the cache with: uvx --from parakeet-mlx parakeet-mlx --model %s <audio.wav>", p.hfModel()),
		)
	}
	return nil
}

func (p *parakeetEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := p.IsAvailable(); err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "vox-parakeet-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	cmd := exec.CommandContext(ctx, "uv", "tool", "run", "--from", "parakeet-mlx",
		"parakeet-mlx", audioPath,
		"--model", p.hfModel(),
		"--output-format", "txt",
		"--output-dir", tmpDir,
	)
	if err := runCollapsed(cmd, "parakeet-mlx"); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	b, err := os.ReadFile(filepath.Join(tmpDir, base+".txt"))
	if err != nil {
		return "", errs.Transient(fmt.Errorf("parakeet-mlx produced no transcript"), err.Error())
	}
	return strings.TrimSpace(string(b)), nil
}
