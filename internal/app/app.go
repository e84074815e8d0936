// Package app wires configuration, engines, and process controllers into the
// operations the CLI commands call.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chrisjrex/voxcli/config"
	"github.com/chrisjrex/voxcli/internal/engine"
	"github.com/chrisjrex/voxcli/internal/playback"
	"github.com/chrisjrex/voxcli/internal/record"
	"github.com/chrisjrex/voxcli/internal/speechd"
)

// How long `vox stop` waits for transcription before giving up.
const stopWait = 2 * time.Minute

type App struct {
	Cfg      *config.Config
	Log      *slog.Logger
	Catalog  *engine.Catalog
	Recorder *record.Machine
	Playback *playback.Controller
}

func New(cfg *config.Config, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		Cfg:      cfg,
		Log:      log,
		Catalog:  engine.NewCatalog(cfg),
		Recorder: record.NewMachine(cfg, log),
		Playback: &playback.Controller{
			PIDFile: filepath.Join(cfg.RunDir(), "playback.pid"),
			LogPath: filepath.Join(cfg.LogDir(), "playback.log"),
		},
	}
}

func (a *App) StartRecording(daemonArgs ...string) error {
	return a.Recorder.Start(daemonArgs...)
}

func (a *App) StopRecording() (*record.Result, error) {
	return a.Recorder.Stop(stopWait)
}

func (a *App) RecordingStatus() (*record.Session, bool) {
	return a.Recorder.Status()
}

// Speak synthesizes text with the configured (or overridden) voice. With
// outputPath set the audio is saved there instead of played; otherwise it
// plays through the exclusive playback slot and the file is removed when
// playback ends.
func (a *App) Speak(ctx context.Context, text, voiceOverride string, speedOverride float64, outputPath string) error {
	voice := a.Cfg.Voice
	if voiceOverride != "" {
		voice = voiceOverride
	}
	speed := a.Cfg.Speed
	if speedOverride > 0 {
		speed = speedOverride
	}

	tts, err := a.Catalog.ResolveTTS(voice)
	if err != nil {
		return err
	}

	outDir := filepath.Join(a.Cfg.DataDir, "tts")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	audioPath, err := tts.Synthesize(ctx, text, speed, outDir)
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := saveAudio(audioPath, outputPath); err != nil {
			os.Remove(audioPath)
			return fmt.Errorf("saving audio to %s: %w", outputPath, err)
		}
		return nil
	}
	return a.Playback.Play(audioPath)
}

// saveAudio moves src to dest, copying when rename cannot cross filesystems
// (the data dir and the requested output path need not share a mount).
func saveAudio(src, dest string) error {
	if os.Rename(src, dest) == nil {
		return nil
	}
	if err := copyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Silence stops current playback. Returns false when nothing was playing.
func (a *App) Silence() bool {
	return a.Playback.Stop()
}

// ServerStart launches the synthesis server. idleTimeoutSec < 0 means use
// the configured value; 0 disables the idle shutdown.
func (a *App) ServerStart(idleTimeoutSec int) (alreadyRunning bool, err error) {
	if idleTimeoutSec < 0 {
		idleTimeoutSec = a.Cfg.ServerIdleTimeoutSec
	}
	idle := time.Duration(idleTimeoutSec) * time.Second
	return speechd.Start(a.Cfg.RunDir(), a.Cfg.LogDir(), idle)
}

func (a *App) ServerStop() (wasRunning bool) {
	return speechd.Stop(a.Cfg.RunDir())
}

func (a *App) ServerStatus() (running bool, pid int) {
	st := speechd.Status(a.Cfg.RunDir())
	return st.Running, st.PID
}

func (a *App) Engines() []engine.Info {
	return a.Catalog.List()
}
