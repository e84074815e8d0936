// Package daemon provides generic start/stop/status for named background
// processes. Both the recording daemon and the synthesis server reuse these
// helpers instead of reinventing process management.
package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/chrisjrex/voxcli/internal/procfile"
)

// Status describes a tracked background process.
type Status struct {
	Running bool
	PID     int
}

// StartDetached re-invokes the current executable with args in a new session
// so the child keeps running after this invocation exits. Stdout and stderr
// go to logPath; stdin is closed. The returned pid is already released.
func StartDetached(args []string, logPath string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("resolving executable: %w", err)
	}

	cmd := exec.Command(exe, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = nil
	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			cmd.Stdout = logFile
			cmd.Stderr = logFile
			defer logFile.Close()
		}
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("spawning %v: %w", args, err)
	}
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}

// Stop signals the process named by pidFile and removes the file. Returns
// false when nothing was running.
func Stop(pidFile string, sig syscall.Signal) bool {
	return procfile.Signal(pidFile, sig)
}

// Check reports whether the process named by pidFile is running, healing
// stale files as a side effect.
func Check(pidFile string) Status {
	pid, ok := procfile.ReadAlive(pidFile)
	return Status{Running: ok, PID: pid}
}
