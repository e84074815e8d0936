// Package procfile implements PID files as the durable session registry.
//
// Every CLI invocation is a fresh process with no in-memory state, so the
// only way to know whether a recording, playback, or server is active is to
// read its PID file and probe the process. Stale files (dead pid, garbage
// content) are removed on sight so the next invocation starts clean.
package procfile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// Alive reports whether pid refers to a live process, using a zero signal
// probe. EPERM counts as alive: the process exists but belongs to someone
// else.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}

// Write records pid at path, creating parent directories as needed.
func Write(path string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// Read returns the pid stored at path. Missing or corrupt files return 0 and
// false; corrupt files are deleted so they cannot wedge future invocations.
func Read(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		os.Remove(path)
		return 0, false
	}
	return pid, true
}

// ReadAlive returns the pid at path only if that process is still running.
// A file naming a dead process is stale state: it is removed and the session
// is treated as not running.
func ReadAlive(path string) (int, bool) {
	pid, ok := Read(path)
	if !ok {
		return 0, false
	}
	if !Alive(pid) {
		os.Remove(path)
		return 0, false
	}
	return pid, true
}

// Remove deletes a PID file, ignoring missing files.
func Remove(path string) {
	os.Remove(path)
}

// Signal delivers sig to the process named by path and removes the file.
// Returns false if nothing was running (missing file, dead process); signal
// delivery failures for an already-gone process are swallowed.
func Signal(path string, sig syscall.Signal) bool {
	pid, ok := ReadAlive(path)
	if !ok {
		return false
	}
	err := syscall.Kill(pid, sig)
	os.Remove(path)
	return err == nil
}
