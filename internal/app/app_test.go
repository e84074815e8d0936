package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAudioMoves(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.wav")
	dest := filepath.Join(dir, "out.wav")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := saveAudio(src, dest); err != nil {
		t.Fatalf("saveAudio: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "audio" {
		t.Fatalf("dest = %q, %v", data, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source not removed after save")
	}
}

// The rename path fails across filesystems; the copy fallback must produce
// an identical file on its own.
func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.wav")
	dest := filepath.Join(dir, "out.wav")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := copyFile(src, dest); err != nil {
		t.Fatalf("copyFile: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "payload" {
		t.Fatalf("dest = %q, %v", data, err)
	}

	if err := copyFile(filepath.Join(dir, "missing.wav"), dest); err == nil {
		t.Fatal("want error for missing source")
	}
}
