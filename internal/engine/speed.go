package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/chrisjrex/voxcli/internal/errs"
)

// applySpeed rewrites path with a sox tempo pass. A speed of 1.0 (or 0,
// meaning unset) leaves the file untouched.
func applySpeed(ctx context.Context, path string, speed float64) error {
	if speed == 0 || speed == 1.0 {
		return nil
	}
	if _, err := exec.LookPath("sox"); err != nil {
		return errs.DependencyMissing(
			fmt.Errorf("sox not found (needed for speed adjustment)"),
			"brew install sox",
		)
	}

	tmp := path + ".tempo"
	cmd := exec.CommandContext(ctx, "sox", path, "-t", "wav", tmp, "tempo", fmt.Sprintf("%.2f", speed))
	if err := runCollapsed(cmd, "sox tempo"); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
