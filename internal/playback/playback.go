// Package playback enforces the one-speaker rule: starting any playback
// first kills whatever is currently speaking, so two utterances never
// overlap. Audio plays in a detached helper process tracked by a PID file,
// which also makes `vox silence` work from a completely separate invocation.
package playback

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/chrisjrex/voxcli/internal/daemon"
	"github.com/chrisjrex/voxcli/internal/errs"
	"github.com/chrisjrex/voxcli/internal/procfile"
)

// Controller starts and stops the single playback slot.
type Controller struct {
	// PIDFile tracks the current playback helper.
	PIDFile string
	// PlayerArgs overrides the player command for tests; empty means the
	// platform default (afplay).
	PlayerArgs []string
	// LogPath receives the helper's stderr.
	LogPath string
}

// Play interrupts any current playback and starts audioPath in a detached
// helper. It returns as soon as the helper is spawned; audio continues after
// the calling invocation exits.
func (c *Controller) Play(audioPath string) error {
	c.Stop()

	args := []string{"__play", audioPath, c.PIDFile}
	args = append(args, c.PlayerArgs...)
	pid, err := daemon.StartDetached(args, c.LogPath)
	if err != nil {
		return err
	}
	// The supervisor records its own pid too, but writing here closes the
	// window where an immediate Stop would miss the helper.
	return procfile.Write(c.PIDFile, pid)
}

// Stop terminates the current playback, if any. Returns false when nothing
// was playing. Already-finished playback is not an error.
func (c *Controller) Stop() bool {
	return procfile.Signal(c.PIDFile, syscall.SIGTERM)
}

// Playing reports whether a playback helper is currently alive.
func (c *Controller) Playing() bool {
	_, ok := procfile.ReadAlive(c.PIDFile)
	return ok
}

// RunHelper is the body of the hidden __play subcommand: play audioPath with
// playerArgs (or the platform player when empty), forwarding SIGTERM to the
// player, and clean up the audio file and PID file on the way out.
func RunHelper(audioPath, pidFile string, playerArgs []string) error {
	defer os.Remove(audioPath)
	defer procfile.Remove(pidFile)

	if err := procfile.Write(pidFile, os.Getpid()); err != nil {
		return err
	}

	if len(playerArgs) == 0 {
		playerArgs = defaultPlayer()
	}
	if _, err := exec.LookPath(playerArgs[0]); err != nil {
		return errs.DependencyMissing(
			fmt.Errorf("%s not found", playerArgs[0]),
			"playback needs afplay (macOS) or ffplay (brew install ffmpeg)",
		)
	}

	cmd := exec.Command(playerArgs[0], append(playerArgs[1:], audioPath)...)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigs)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-sigs:
		_ = cmd.Process.Signal(syscall.SIGTERM)
		<-done
		return nil
	}
}

func defaultPlayer() []string {
	if _, err := exec.LookPath("afplay"); err == nil {
		return []string{"afplay"}
	}
	return []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"}
}
