package engine

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/chrisjrex/voxcli/internal/errs"
)

// The system voice speaks at roughly this many words per minute at speed 1.0.
const systemBaseRateWPM = 175

// systemEngine synthesizes via the OS `say` command. Speed is applied
// natively through the rate flag, so no resampling pass is needed.
type systemEngine struct {
	voice string
}

func (s *systemEngine) Describe() Descriptor {
	return Descriptor{Provider: "system", ID: s.voice}
}

func (s *systemEngine) IsAvailable() error {
	if _, err := exec.LookPath("say"); err != nil {
		return errs.DependencyMissing(
			fmt.Errorf("say not found"),
			"the system voice requires macOS; use piper or kokoro instead",
		)
	}
	return nil
}

// System voices ship with the OS.
func (s *systemEngine) IsDownloaded() error { return nil }

func (s *systemEngine) Synthesize(ctx context.Context, text string, speed float64, outDir string) (string, error) {
	if err := s.IsAvailable(); err != nil {
		return "", err
	}

	outPath := filepath.Join(outDir, uuid.NewString()+".aiff")
	args := []string{"-o", outPath}
	if s.voice != "default" {
		args = append(args, "-v", s.voice)
	}
	if speed > 0 && speed != 1.0 {
		args = append(args, "-r", strconv.Itoa(int(systemBaseRateWPM*speed)))
	}
	args = append(args, text)

	cmd := exec.CommandContext(ctx, "say", args...)
	if err := runCollapsed(cmd, "say"); err != nil {
		return "", err
	}
	return outPath, nil
}
