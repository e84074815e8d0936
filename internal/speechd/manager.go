package speechd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/chrisjrex/voxcli/internal/daemon"
	"github.com/chrisjrex/voxcli/internal/errs"
	"github.com/chrisjrex/voxcli/internal/procfile"
)

// How long Start waits for a freshly spawned server to accept connections.
const startTimeout = 8 * time.Second

// Start launches the synthesis server in the background unless one is already
// reachable. Returns true when a server was already running.
func Start(runDir, logDir string, idleTimeout time.Duration) (bool, error) {
	sock := SocketPath(runDir)
	if Reachable(sock) {
		return true, nil
	}
	// A socket file nobody listens on would make the new server's bind fail.
	os.Remove(sock)

	args := []string{"__speechd", "--idle-timeout", strconv.Itoa(int(idleTimeout.Seconds()))}
	logPath := filepath.Join(logDir, "speechd.log")
	if _, err := daemon.StartDetached(args, logPath); err != nil {
		return false, err
	}

	deadline := time.Now().Add(startTimeout)
	for time.Now().Before(deadline) {
		if Reachable(sock) {
			return false, nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false, errs.Transient(
		fmt.Errorf("synthesis server did not come up within %s", startTimeout),
		"check "+logPath,
	)
}

// Stop terminates the server and clears its socket and PID file. Returns
// false when nothing was running. Stale files are removed either way so an
// unreachable socket can never block a future start.
func Stop(runDir string) bool {
	wasRunning := daemon.Stop(PIDPath(runDir), syscall.SIGTERM)
	if wasRunning {
		// Give the server a moment to remove its own socket.
		sock := SocketPath(runDir)
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if _, err := os.Stat(sock); err != nil {
				break
			}
			time.Sleep(50 * time.Millisecond)
		}
	}
	os.Remove(SocketPath(runDir))
	procfile.Remove(PIDPath(runDir))
	return wasRunning
}

// Status reports whether the server process is running, healing stale state.
func Status(runDir string) daemon.Status {
	return daemon.Check(PIDPath(runDir))
}
