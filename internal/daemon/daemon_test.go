package daemon

import (
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/chrisjrex/voxcli/internal/procfile"
)

// spawnDetached starts an external command in its own session, the way the
// production helpers detach daemons, and returns its pid.
func spawnDetached(t *testing.T, name string, args ...string) int {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		t.Fatalf("spawning %s: %v", name, err)
	}
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid
}

// reap waits on a detached child so it cannot linger as a zombie, which
// would keep the liveness probe reporting it alive for the test's lifetime.
func reap(t *testing.T, pid int) {
	t.Helper()
	var ws syscall.WaitStatus
	if _, err := syscall.Wait4(pid, &ws, 0, nil); err != nil {
		t.Fatalf("reaping pid %d: %v", pid, err)
	}
}

func TestStopTerminatesDetachedProcess(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "sleep.pid")

	pid := spawnDetached(t, "sleep", "30")
	if err := procfile.Write(pidFile, pid); err != nil {
		t.Fatal(err)
	}

	st := Check(pidFile)
	if !st.Running || st.PID != pid {
		t.Fatalf("Check = %+v, want running pid %d", st, pid)
	}

	if !Stop(pidFile, syscall.SIGTERM) {
		t.Fatal("expected Stop to report delivery")
	}
	reap(t, pid)

	if procfile.Alive(pid) {
		t.Fatalf("pid %d still alive after SIGTERM", pid)
	}
	if st := Check(pidFile); st.Running {
		t.Fatalf("Check after stop = %+v, want stopped", st)
	}
}

func TestCheckHealsStalePIDFile(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "stale.pid")

	pid := spawnDetached(t, "true")
	reap(t, pid)

	if err := procfile.Write(pidFile, pid); err != nil {
		t.Fatal(err)
	}
	if st := Check(pidFile); st.Running {
		t.Fatalf("Check = %+v, want not running", st)
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Fatal("expected stale PID file removed")
	}
}

func TestStopNothingRunning(t *testing.T) {
	if Stop(filepath.Join(t.TempDir(), "none.pid"), syscall.SIGTERM) {
		t.Fatal("expected Stop with no PID file to report nothing running")
	}
}
