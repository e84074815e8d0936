package record

import (
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/chrisjrex/voxcli/config"
	"github.com/chrisjrex/voxcli/internal/errs"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		DataDir:           t.TempDir(),
		STTModel:          "whisper/base",
		SilenceTimeoutSec: config.DefaultSilenceTimeoutSec,
		SilenceThreshold:  config.DefaultSilenceThreshold,
		MaxDurationSec:    config.DefaultMaxDurationSec,
	}
	if err := os.MkdirAll(cfg.RunDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestSilenceTrackerStopsAfterConsecutiveQuietPolls(t *testing.T) {
	// Threshold 0.02 with a 2s timeout at a 1s poll cadence: the second
	// consecutive quiet reading triggers the stop.
	tr := newSilenceTracker(0.02, 2)
	if tr.Observe(0.01) {
		t.Fatal("first quiet poll must not stop")
	}
	if !tr.Observe(0.01) {
		t.Fatal("second consecutive quiet poll must stop")
	}
}

func TestSilenceTrackerResetsOnLoudPoll(t *testing.T) {
	tr := newSilenceTracker(0.02, 2)
	tr.Observe(0.01)
	if tr.Observe(0.5) {
		t.Fatal("loud poll must not stop")
	}
	if tr.Observe(0.01) {
		t.Fatal("the run must restart after a loud poll")
	}
	if !tr.Observe(0.01) {
		t.Fatal("two quiet polls after the reset must stop")
	}
}

func TestSilenceTrackerAtThresholdCountsAsLoud(t *testing.T) {
	tr := newSilenceTracker(0.02, 1)
	if tr.Observe(0.02) {
		t.Fatal("a reading at the threshold is not silence")
	}
	if !tr.Observe(0.019) {
		t.Fatal("a reading below the threshold is silence")
	}
}

func TestSilenceTrackerDisabled(t *testing.T) {
	tr := newSilenceTracker(0.02, 0)
	for i := 0; i < 10; i++ {
		if tr.Observe(0.0) {
			t.Fatal("timeout 0 must never stop")
		}
	}
}

func TestResultRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := &Result{
		Text:           "hello world",
		Reason:         StopSilence,
		DurationSec:    4.2,
		TranscriptPath: "/tmp/x.txt",
	}
	if err := writeResult(dir, want); err != nil {
		t.Fatal(err)
	}
	got, err := readResult(dir)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	// The atomic write must leave no temp file behind.
	if _, err := os.Stat(resultPath(dir) + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind")
	}
}

func TestStopWithNoSession(t *testing.T) {
	m := NewMachine(testConfig(t), nil)
	_, err := m.Stop(time.Second)
	if err == nil {
		t.Fatal("want error with no recording in progress")
	}
	if errs.ReasonOf(err) != errs.ReasonStaleState {
		t.Fatalf("reason = %v, want stale_state", errs.ReasonOf(err))
	}
}

func TestStopCollectsResultFromFinishedDaemon(t *testing.T) {
	cfg := testConfig(t)
	// An auto-stopped session leaves a result behind and no daemon.
	if err := writeResult(cfg.RunDir(), &Result{Text: "left behind", Reason: StopDuration}); err != nil {
		t.Fatal(err)
	}

	m := NewMachine(cfg, nil)
	res, err := m.Stop(time.Second)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if res.Text != "left behind" || res.Reason != StopDuration {
		t.Fatalf("got %+v", res)
	}
	if _, err := os.Stat(resultPath(cfg.RunDir())); !os.IsNotExist(err) {
		t.Fatal("result file not consumed")
	}
}

func TestStopSignalsRecordedPID(t *testing.T) {
	cfg := testConfig(t)
	// Stand in for the daemon ourselves: register for SIGUSR1 so delivery
	// is observable (and harmless), then verify Stop signals exactly the
	// pid in the file and collects the result.
	got := make(chan os.Signal, 1)
	signal.Notify(got, syscall.SIGUSR1)
	defer signal.Stop(got)

	if err := os.WriteFile(pidPath(cfg.RunDir()), []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writeResult(cfg.RunDir(), &Result{Text: "signalled", Reason: StopManual}); err != nil {
		t.Fatal(err)
	}

	m := NewMachine(cfg, nil)
	res, err := m.Stop(5 * time.Second)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if res.Text != "signalled" {
		t.Fatalf("got %+v", res)
	}
	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("SIGUSR1 never reached the recorded pid")
	}
}

func TestStopRejectsUnusablePIDFile(t *testing.T) {
	cfg := testConfig(t)
	// A zero pid must never be signalled: kill(0, sig) targets the calling
	// process group.
	if err := os.WriteFile(pidPath(cfg.RunDir()), []byte("0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewMachine(cfg, nil)
	if _, err := m.Stop(time.Second); err == nil {
		t.Fatal("want error with no live daemon")
	}
	if _, err := os.Stat(pidPath(cfg.RunDir())); !os.IsNotExist(err) {
		t.Fatal("unusable pid file not removed")
	}
}

func TestPollSilenceSkipsSamplingWhenDisabled(t *testing.T) {
	m := NewMachine(testConfig(t), nil)
	sampled := false
	m.sample = func(string) (float64, error) {
		sampled = true
		return 0, nil
	}

	tr := newSilenceTracker(0.02, 0)
	if m.pollSilence(tr, "unused.wav") {
		t.Fatal("disabled tracker must never stop")
	}
	if sampled {
		t.Fatal("no amplitude sample may be taken with silence detection off")
	}

	// With a timeout configured the sampler runs and feeds the tracker.
	tr = newSilenceTracker(0.02, 1)
	m.sample = func(string) (float64, error) { return 0.01, nil }
	if !m.pollSilence(tr, "unused.wav") {
		t.Fatal("quiet sample with a 1s timeout must stop")
	}
}

func TestPreviewTextCutsOnRuneBoundary(t *testing.T) {
	short := "hello"
	if got := previewText(short); got != short {
		t.Fatalf("short text altered: %q", got)
	}

	long := strings.Repeat("é", 60) // 120 bytes of two-byte runes
	got := previewText(long)
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	if len(got) > 80 || !strings.HasSuffix(got, "...") {
		t.Fatalf("preview not truncated as expected: %q (len %d)", got, len(got))
	}
}

func TestStatusHealsStaleSession(t *testing.T) {
	cfg := testConfig(t)
	// Session file naming a dead daemon.
	if err := writeSession(cfg.RunDir(), &Session{PID: 99999999, AudioPath: "/tmp/x.wav"}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pidPath(cfg.RunDir()), []byte("99999999\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewMachine(cfg, nil)
	if _, running := m.Status(); running {
		t.Fatal("dead daemon must not report as recording")
	}
	if _, err := os.Stat(sessionPath(cfg.RunDir())); !os.IsNotExist(err) {
		t.Fatal("stale session file not removed")
	}
	if _, err := os.Stat(pidPath(cfg.RunDir())); !os.IsNotExist(err) {
		t.Fatal("stale pid file not removed")
	}
}

func TestStatusReportsLiveSession(t *testing.T) {
	cfg := testConfig(t)
	// Use our own pid as a stand-in for a live daemon.
	if err := os.WriteFile(pidPath(cfg.RunDir()), []byte("1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	want := &Session{PID: 1, AudioPath: filepath.Join(cfg.RecordingsDir(), "x.wav"), STTModel: "whisper/base", StartedAt: time.Now().UTC().Truncate(time.Second)}
	if err := writeSession(cfg.RunDir(), want); err != nil {
		t.Fatal(err)
	}

	m := NewMachine(cfg, nil)
	got, running := m.Status()
	if !running {
		t.Fatal("live pid must report as recording")
	}
	if got.AudioPath != want.AudioPath || got.STTModel != want.STTModel {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
