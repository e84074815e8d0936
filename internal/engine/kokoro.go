package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/chrisjrex/voxcli/internal/errs"
	"github.com/chrisjrex/voxcli/internal/speechd"
)

// kokoroEngine synthesizes via the kokoro python package. When the warm
// synthesis server is up it is used for sub-second responses; otherwise a
// one-shot worker loads the model, synthesizes once, and exits. Speed is
// applied post-synthesis, like piper.
type kokoroEngine struct {
	voice      string
	socketPath string
}

func (k *kokoroEngine) Describe() Descriptor {
	return Descriptor{Provider: "kokoro", ID: k.voice}
}

func (k *kokoroEngine) IsAvailable() error {
	if _, err := exec.LookPath("python3"); err != nil {
		return errs.DependencyMissing(
			fmt.Errorf("python3 not found"),
			"install python3, then: pip install kokoro soundfile",
		)
	}
	return nil
}

func (k *kokoroEngine) IsDownloaded() error {
	// The kokoro package caches its weights in the huggingface hub directory.
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	cached := filepath.Join(home, ".cache", "huggingface", "hub", "models--hexgrad--Kokoro-82M")
	if _, err := os.Stat(cached); err != nil {
		return errs.NotDownloaded(
			fmt.Errorf("kokoro weights not downloaded"),
			"weights download automatically on first synthesis",
		)
	}
	return nil
}

func (k *kokoroEngine) Synthesize(ctx context.Context, text string, speed float64, outDir string) (string, error) {
	if err := k.IsAvailable(); err != nil {
		return "", err
	}

	outPath := filepath.Join(outDir, uuid.NewString()+".wav")

	// Warm path first. First-use model construction inside the server can be
	// slow, so the reply wait is generous. A broken reply is a hard protocol
	// error, never masked by a cold start.
	if speechd.Reachable(k.socketPath) {
		if err := speechd.Request(k.socketPath, text, k.voice, outPath, 120*time.Second); err != nil {
			return "", err
		}
	} else {
		if err := speechd.OneShot(ctx, text, k.voice, outPath); err != nil {
			return "", err
		}
	}

	if err := applySpeed(ctx, outPath, speed); err != nil {
		os.Remove(outPath)
		return "", err
	}
	return outPath, nil
}
