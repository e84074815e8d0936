package procfile

import (
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
)

func pidPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.pid")
}

func TestAliveSelf(t *testing.T) {
	if !Alive(os.Getpid()) {
		t.Fatal("expected own pid to be alive")
	}
	if Alive(0) || Alive(-1) {
		t.Fatal("expected non-positive pids to be dead")
	}
}

func TestReadAliveRoundTrip(t *testing.T) {
	path := pidPath(t)
	if err := Write(path, os.Getpid()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	pid, ok := ReadAlive(path)
	if !ok || pid != os.Getpid() {
		t.Fatalf("ReadAlive = (%d, %v), want (%d, true)", pid, ok, os.Getpid())
	}
}

func TestReadAliveRemovesStaleFile(t *testing.T) {
	path := pidPath(t)

	// Spawn and reap a real process so its pid is known-dead.
	cmd := exec.Command("true")
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting probe process: %v", err)
	}
	deadPID := cmd.Process.Pid
	if err := cmd.Wait(); err != nil {
		t.Fatalf("waiting for probe process: %v", err)
	}

	if err := Write(path, deadPID); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, ok := ReadAlive(path); ok {
		t.Fatal("expected dead pid to read as not running")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected stale PID file to be removed")
	}
}

func TestReadRemovesCorruptFile(t *testing.T) {
	path := pidPath(t)
	if err := os.WriteFile(path, []byte("not-a-pid\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := Read(path); ok {
		t.Fatal("expected corrupt file to read as not running")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected corrupt PID file to be removed")
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, ok := Read(filepath.Join(t.TempDir(), "missing.pid")); ok {
		t.Fatal("expected missing file to read as not running")
	}
}

func TestSignalTerminatesProcess(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting sleep: %v", err)
	}
	path := pidPath(t)
	if err := Write(path, cmd.Process.Pid); err != nil {
		t.Fatal(err)
	}

	if !Signal(path, syscall.SIGTERM) {
		t.Fatal("expected Signal to report delivery")
	}
	if err := cmd.Wait(); err == nil {
		t.Fatal("expected sleep to be terminated")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected PID file removed after Signal")
	}
	// Idempotent when nothing is running.
	if Signal(path, syscall.SIGTERM) {
		t.Fatal("expected second Signal to report nothing running")
	}
}
