// Package record implements the recording session: a detached daemon that
// captures microphone audio with sox, watches for silence and duration
// limits, and transcribes on stop. CLI invocations and the daemon share
// state through small JSON files under the run directory.
package record

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Why a recording stopped.
const (
	StopManual      = "manual"       // vox stop (SIGUSR1)
	StopSilence     = "silence"      // consecutive quiet polls
	StopDuration    = "duration"     // max duration reached
	StopSignal      = "signal"       // SIGTERM or SIGINT
	StopCaptureDied = "capture_died" // the sox process exited on its own
)

// Session is the recording daemon's on-disk state, readable by any later
// invocation for `vox status`.
type Session struct {
	PID       int       `json:"pid"`
	AudioPath string    `json:"audio_path"`
	STTModel  string    `json:"stt_model"`
	StartedAt time.Time `json:"started_at"`
}

// Result is the daemon's handoff to whoever asked for the transcript. It is
// written once, atomically, when the session ends.
type Result struct {
	Text           string  `json:"text"`
	Reason         string  `json:"reason"`
	DurationSec    float64 `json:"duration_sec"`
	TranscriptPath string  `json:"transcript_path,omitempty"`
	Err            string  `json:"error,omitempty"`
}

func pidPath(runDir string) string     { return filepath.Join(runDir, "recorder.pid") }
func sessionPath(runDir string) string { return filepath.Join(runDir, "recorder.json") }
func resultPath(runDir string) string  { return filepath.Join(runDir, "result.json") }

func writeSession(runDir string, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(sessionPath(runDir), data, 0o644)
}

func readSession(runDir string) (*Session, error) {
	data, err := os.ReadFile(sessionPath(runDir))
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// writeResult writes via rename so a concurrent poller never sees a partial
// file.
func writeResult(runDir string, r *Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	tmp := resultPath(runDir) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, resultPath(runDir))
}

func readResult(runDir string) (*Result, error) {
	data, err := os.ReadFile(resultPath(runDir))
	if err != nil {
		return nil, err
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
