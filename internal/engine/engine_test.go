package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chrisjrex/voxcli/config"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	return NewCatalog(&config.Config{DataDir: t.TempDir()})
}

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor("whisper/base")
	if err != nil {
		t.Fatal(err)
	}
	if d.Provider != "whisper" || d.ID != "base" {
		t.Fatalf("got %+v", d)
	}

	d, err = ParseDescriptor("kokoro")
	if err != nil {
		t.Fatal(err)
	}
	if d.Provider != "kokoro" || d.ID != "" {
		t.Fatalf("bare provider: got %+v", d)
	}

	if _, err := ParseDescriptor("  "); !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("empty descriptor: got %v", err)
	}
}

func TestResolveDefaults(t *testing.T) {
	c := testCatalog(t)

	stt, err := c.ResolveSTT("whisper")
	if err != nil {
		t.Fatal(err)
	}
	if got := stt.Describe(); got.ID != "base" {
		t.Fatalf("whisper default = %q, want base", got.ID)
	}

	tts, err := c.ResolveTTS("kokoro")
	if err != nil {
		t.Fatal(err)
	}
	if got := tts.Describe(); got.ID != "af_heart" {
		t.Fatalf("kokoro default = %q, want af_heart", got.ID)
	}

	tts, err = c.ResolveTTS("system")
	if err != nil {
		t.Fatal(err)
	}
	if got := tts.Describe(); got.ID != "default" {
		t.Fatalf("system default = %q, want default", got.ID)
	}
}

func TestResolveUnknownProvider(t *testing.T) {
	c := testCatalog(t)
	if _, err := c.ResolveSTT("deepgram/nova"); !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("unknown stt provider: got %v", err)
	}
	if _, err := c.ResolveTTS("elevenlabs/rachel"); !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("unknown tts provider: got %v", err)
	}
}

func TestWhisperModelPath(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(&config.Config{DataDir: dir})
	stt, err := c.ResolveSTT("whisper/small")
	if err != nil {
		t.Fatal(err)
	}
	// Not downloaded until the ggml file exists.
	if stt.IsDownloaded() == nil {
		t.Fatal("missing model must report not downloaded")
	}
	modelPath := filepath.Join(dir, "models", "ggml-small.bin")
	if err := os.MkdirAll(filepath.Dir(modelPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(modelPath, []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := stt.IsDownloaded(); err != nil {
		t.Fatalf("model present but reported not downloaded: %v", err)
	}
}

func TestPiperVoiceDownloadCheck(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(&config.Config{DataDir: dir})
	tts, err := c.ResolveTTS("piper/en_US-amy-medium")
	if err != nil {
		t.Fatal(err)
	}
	if tts.IsDownloaded() == nil {
		t.Fatal("missing voice must report not downloaded")
	}
	voicePath := filepath.Join(dir, "voices", "en_US-amy-medium.onnx")
	if err := os.MkdirAll(filepath.Dir(voicePath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(voicePath, []byte("onnx"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := tts.IsDownloaded(); err != nil {
		t.Fatalf("voice present but reported not downloaded: %v", err)
	}
}

func TestApplySpeedNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	// 1.0 and unset leave the file untouched, with no sox requirement.
	if err := applySpeed(context.Background(), path, 1.0); err != nil {
		t.Fatal(err)
	}
	if err := applySpeed(context.Background(), path, 0); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "audio" {
		t.Fatalf("file modified: %q, %v", data, err)
	}
}

func TestListCoversBothKinds(t *testing.T) {
	infos := testCatalog(t).List()
	var stt, tts int
	for _, info := range infos {
		switch info.Kind {
		case "stt":
			stt++
		case "tts":
			tts++
		default:
			t.Fatalf("unexpected kind %q", info.Kind)
		}
	}
	if stt == 0 || tts == 0 {
		t.Fatalf("catalog listing missing a kind: %d stt, %d tts", stt, tts)
	}
}
