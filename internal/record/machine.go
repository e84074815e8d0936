package record

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/gen2brain/beeep"
	"github.com/google/uuid"

	"github.com/chrisjrex/voxcli/config"
	"github.com/chrisjrex/voxcli/internal/audiofile"
	"github.com/chrisjrex/voxcli/internal/daemon"
	"github.com/chrisjrex/voxcli/internal/engine"
	"github.com/chrisjrex/voxcli/internal/errs"
	"github.com/chrisjrex/voxcli/internal/procfile"
)

const (
	// The watchdog cadence; silence timeouts count in these units.
	pollInterval = time.Second
	// Recordings shorter than this are discarded without transcription.
	minDuration = 300 * time.Millisecond
	// When the duration cannot be decoded, a capture file at or below the
	// header-plus-noise floor counts as empty.
	minFileBytes = 4096
)

// Machine drives the recording session across invocations: Start spawns the
// detached daemon, Stop signals it and collects the transcript, and RunDaemon
// is the daemon body behind the hidden subcommand.
type Machine struct {
	cfg *config.Config
	log *slog.Logger

	// sample measures the trailing-window peak of the capture file.
	sample func(audioPath string) (float64, error)

	// Name labels the session's transcript file.
	Name string
	// Copy puts the finished transcript on the clipboard.
	Copy bool
	// Foreground suppresses the desktop notification; the caller prints the
	// transcript itself.
	Foreground bool
}

func NewMachine(cfg *config.Config, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}
	m := &Machine{cfg: cfg, log: log}
	m.sample = m.trailingPeak
	return m
}

// Start launches the recording daemon, forwarding extraArgs to the hidden
// subcommand. Only one session may run at a time; starting while one is
// active is an error, not a restart.
func (m *Machine) Start(extraArgs ...string) error {
	runDir := m.cfg.RunDir()
	if daemon.Check(pidPath(runDir)).Running {
		return fmt.Errorf("a recording is already in progress (vox stop to finish it)")
	}
	if _, err := exec.LookPath("sox"); err != nil {
		return errs.DependencyMissing(
			fmt.Errorf("sox not found (needed for audio capture)"),
			"brew install sox",
		)
	}
	// A leftover result from an auto-stopped session would satisfy the next
	// stop's poll prematurely.
	os.Remove(resultPath(runDir))

	logPath := filepath.Join(m.cfg.LogDir(), "recorder.log")
	if _, err := daemon.StartDetached(append([]string{"__record"}, extraArgs...), logPath); err != nil {
		return err
	}

	// Confirm the daemon registered itself before reporting success.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if daemon.Check(pidPath(runDir)).Running {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return errs.Transient(
		fmt.Errorf("recording daemon did not start"),
		"check "+logPath,
	)
}

// Stop asks the daemon to finish and waits up to wait for the transcript. If
// the daemon already stopped on its own (silence, duration), the result it
// left behind is returned directly.
func (m *Machine) Stop(wait time.Duration) (*Result, error) {
	runDir := m.cfg.RunDir()

	// Read and probe in one step: a pid of 0 must never reach Kill, since
	// signalling pid 0 hits our own process group.
	pid, ok := procfile.ReadAlive(pidPath(runDir))
	if !ok {
		if res, err := readResult(runDir); err == nil {
			os.Remove(resultPath(runDir))
			return res, nil
		}
		os.Remove(sessionPath(runDir))
		return nil, errs.Wrap(fmt.Errorf("no recording in progress"), errs.ReasonStaleState)
	}

	if err := syscall.Kill(pid, syscall.SIGUSR1); err != nil {
		// The daemon finished between the probe and the signal; its result
		// may already be on disk.
		if res, rerr := readResult(runDir); rerr == nil {
			os.Remove(resultPath(runDir))
			return res, nil
		}
		return nil, fmt.Errorf("signalling recording daemon: %w", err)
	}

	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		if res, err := readResult(runDir); err == nil {
			os.Remove(resultPath(runDir))
			return res, nil
		}
		if !procfile.Alive(pid) {
			// One last read: the daemon may have written between our poll
			// and its exit.
			if res, err := readResult(runDir); err == nil {
				os.Remove(resultPath(runDir))
				return res, nil
			}
			return nil, errs.Transient(fmt.Errorf("recording daemon exited without a result"), "")
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil, errs.Transient(fmt.Errorf("timed out waiting for transcription"), "")
}

// Status reports the current session, healing stale state when the daemon is
// gone.
func (m *Machine) Status() (*Session, bool) {
	runDir := m.cfg.RunDir()
	if !daemon.Check(pidPath(runDir)).Running {
		os.Remove(sessionPath(runDir))
		return nil, false
	}
	s, err := readSession(runDir)
	if err != nil {
		return nil, false
	}
	return s, true
}

// RunDaemon is the body of the hidden __record subcommand (and of a
// foreground session): capture, watch, stop, transcribe, hand off. It always
// leaves the run directory clean apart from the result file.
func (m *Machine) RunDaemon() (*Result, error) {
	runDir := m.cfg.RunDir()

	// Register for stop signals before the pid file exists, so a stop that
	// races the startup cannot kill us with the default SIGUSR1 action.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigs)

	// Guard against a double spawn racing past Start's check.
	if pid, ok := procfile.ReadAlive(pidPath(runDir)); ok && pid != os.Getpid() {
		return nil, fmt.Errorf("another recording daemon is running (pid %d)", pid)
	}
	if err := procfile.Write(pidPath(runDir), os.Getpid()); err != nil {
		return nil, err
	}
	defer procfile.Remove(pidPath(runDir))
	defer os.Remove(sessionPath(runDir))

	audioPath := filepath.Join(m.cfg.RecordingsDir(), uuid.NewString()+".wav")
	capture := exec.Command("sox", "-q", "-d", "-r", "16000", "-c", "1", "-b", "16", audioPath)
	capture.Stderr = os.Stderr
	if err := capture.Start(); err != nil {
		res := &Result{Reason: StopSignal, Err: "starting capture: " + err.Error()}
		if werr := writeResult(runDir, res); werr != nil {
			return nil, werr
		}
		return res, err
	}
	startedAt := time.Now()
	if err := writeSession(runDir, &Session{
		PID:       os.Getpid(),
		AudioPath: audioPath,
		STTModel:  m.cfg.STTModel,
		StartedAt: startedAt,
	}); err != nil {
		return nil, err
	}
	m.log.Info("recording started", "audio", audioPath, "model", m.cfg.STTModel)

	captureDone := make(chan error, 1)
	go func() { captureDone <- capture.Wait() }()

	tracker := newSilenceTracker(m.cfg.SilenceThreshold, m.cfg.SilenceTimeoutSec)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	reason := StopSignal
watch:
	for {
		select {
		case sig := <-sigs:
			if sig == syscall.SIGUSR1 {
				reason = StopManual
			}
			break watch
		case <-captureDone:
			reason = StopCaptureDied
			break watch
		case <-ticker.C:
			if m.cfg.MaxDurationSec > 0 && time.Since(startedAt) >= time.Duration(m.cfg.MaxDurationSec)*time.Second {
				reason = StopDuration
				break watch
			}
			if m.pollSilence(tracker, audioPath) {
				reason = StopSilence
				break watch
			}
		}
	}
	m.log.Info("recording stopping", "reason", reason)

	if reason != StopCaptureDied {
		stopCapture(capture, captureDone)
	}

	res := m.finish(audioPath, reason, startedAt)
	if err := writeResult(runDir, res); err != nil {
		return nil, err
	}
	m.announce(res)
	return res, nil
}

// stopCapture interrupts sox so it finalizes the wav header, escalating to
// kill if it hangs.
func stopCapture(capture *exec.Cmd, done chan error) {
	_ = capture.Process.Signal(os.Interrupt)
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		_ = capture.Process.Kill()
		<-done
	}
}

// pollSilence takes one amplitude sample and feeds it to the tracker. With
// silence detection off no sample is taken at all; there is no point paying
// a sox invocation per second just to discard the reading.
func (m *Machine) pollSilence(tracker *silenceTracker, audioPath string) bool {
	if !tracker.enabled() {
		return false
	}
	peak, err := m.sample(audioPath)
	if err != nil {
		// The first polls can race the capture writing its header.
		return false
	}
	return tracker.Observe(peak)
}

// trailingPeak measures the peak amplitude of the last two seconds of the
// capture file. The trim runs in a subprocess; the peak is decoded in
// process.
func (m *Machine) trailingPeak(audioPath string) (float64, error) {
	tail := audioPath + ".tail.wav"
	defer os.Remove(tail)
	if out, err := exec.Command("sox", audioPath, tail, "trim", "-2").CombinedOutput(); err != nil {
		return 0, fmt.Errorf("trimming tail: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return audiofile.PeakAmplitude(tail)
}

// finish transcribes the capture and always removes the audio file: only the
// text leaves the machine's recordings directory.
func (m *Machine) finish(audioPath, reason string, startedAt time.Time) *Result {
	defer func() {
		os.Remove(audioPath)
		// Fails while other captures exist, which is the point.
		os.Remove(m.cfg.RecordingsDir())
	}()

	res := &Result{Reason: reason}

	dur, err := audiofile.Duration(audioPath)
	if err != nil {
		// Header never finalized; fall back to a size floor.
		info, serr := os.Stat(audioPath)
		if serr != nil || info.Size() <= minFileBytes {
			res.Err = "nothing recorded"
			return res
		}
	} else {
		res.DurationSec = dur.Seconds()
		if dur < minDuration {
			res.Err = "nothing recorded"
			return res
		}
	}

	stt, err := engine.NewCatalog(m.cfg).ResolveSTT(m.cfg.STTModel)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	text, err := stt.Transcribe(ctx, audioPath)
	if err != nil {
		m.log.Error("transcription failed", "error", err)
		res.Err = err.Error()
		return res
	}
	res.Text = strings.TrimSpace(text)

	name := startedAt.Format("2006-01-02T15-04-05")
	if m.Name != "" {
		name += "-" + m.Name
	}
	tp := filepath.Join(m.cfg.TranscriptsDir(), name+".txt")
	if err := os.WriteFile(tp, []byte(res.Text+"\n"), 0o644); err == nil {
		res.TranscriptPath = tp
	}
	return res
}

// announce copies the transcript to the clipboard when asked and raises a
// desktop notification for background sessions. Both are best effort: the
// result file already carries the text.
func (m *Machine) announce(res *Result) {
	if res.Text == "" {
		return
	}
	if m.Copy {
		if err := clipboard.WriteAll(res.Text); err != nil {
			m.log.Warn("clipboard write failed", "error", err)
		}
	}
	if m.Foreground {
		return
	}
	if err := beeep.Notify("vox", previewText(res.Text), ""); err != nil {
		m.log.Warn("notification failed", "error", err)
	}
}

// previewText shortens the transcript for the notification banner, cutting
// on a rune boundary so multi-byte text is never split.
func previewText(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// RunForeground records in this process until a signal or watchdog stop,
// consuming the result file since the transcript is returned directly.
func (m *Machine) RunForeground() (*Result, error) {
	m.Foreground = true
	res, err := m.RunDaemon()
	os.Remove(resultPath(m.cfg.RunDir()))
	return res, err
}
