package speechd

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chrisjrex/voxcli/internal/errs"
)

//go:embed assets/kokoro_worker.py
var workerScript []byte

// workerScriptPath writes the embedded synthesis worker to the user cache so
// a plain python3 invocation can run it, and returns its path.
func workerScriptPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(cacheDir, "vox", "kokoro_worker.py")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if existing, err := os.ReadFile(path); err == nil && string(existing) == string(workerScript) {
		return path, nil
	}
	if err := os.WriteFile(path, workerScript, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// langCode maps a kokoro voice id to its pipeline language code: the leading
// letter of the voice id ("af_heart" -> "a", "bf_emma" -> "b").
func langCode(voice string) string {
	if voice == "" {
		return "a"
	}
	return voice[:1]
}

type workerRequest struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Voice  string `json:"voice"`
	Output string `json:"output"`
}

type workerResponse struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// worker is one long-lived python synthesis subprocess speaking JSON lines
// over stdin/stdout. Requests are serialized; the model pipeline inside the
// process is not safe for concurrent use.
type worker struct {
	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   *bufio.Reader
}

func startWorker(lang string) (*worker, error) {
	script, err := workerScriptPath()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command("python3", "-u", script, lang)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, errs.DependencyMissing(
			fmt.Errorf("starting synthesis worker: %w", err),
			"install python3, then: pip install kokoro soundfile",
		)
	}
	return &worker{cmd: cmd, stdin: stdin, out: bufio.NewReader(stdout)}, nil
}

// synthesize sends one request and blocks for its reply.
func (w *worker) synthesize(text, voice, output string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := workerRequest{ID: uuid.NewString(), Text: text, Voice: voice, Output: output}
	line, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if _, err := w.stdin.Write(append(line, '\n')); err != nil {
		return errs.Transient(fmt.Errorf("synthesis worker gone: %w", err), "")
	}

	raw, err := w.out.ReadBytes('\n')
	if err != nil {
		return errs.Transient(fmt.Errorf("synthesis worker died mid-request: %w", err), "")
	}
	var resp workerResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errs.Transient(fmt.Errorf("unreadable worker reply: %w", err), "")
	}
	if resp.ID != req.ID {
		return errs.Transient(fmt.Errorf("worker reply for wrong request"), "")
	}
	if !resp.OK {
		return errs.Transient(fmt.Errorf("synthesis failed: %s", resp.Error), "")
	}
	return nil
}

// close shuts the worker down gracefully: stdin close lets it drain, then
// interrupt, then kill after a short grace period.
func (w *worker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stdin.Close()
	if w.cmd.Process == nil {
		return
	}
	_ = w.cmd.Process.Signal(os.Interrupt)

	done := make(chan struct{})
	go func() {
		_ = w.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(1200 * time.Millisecond):
		_ = w.cmd.Process.Kill()
		<-done
	}
}

// workerPool keeps one warm worker per language code so switching voices
// within a language stays fast without loading every pipeline up front.
type workerPool struct {
	mu      sync.Mutex
	workers map[string]*worker
}

func newWorkerPool() *workerPool {
	return &workerPool{workers: make(map[string]*worker)}
}

func (p *workerPool) Synthesize(text, voice, output string) error {
	lang := langCode(voice)

	p.mu.Lock()
	w, ok := p.workers[lang]
	if !ok {
		var err error
		w, err = startWorker(lang)
		if err != nil {
			p.mu.Unlock()
			return err
		}
		p.workers[lang] = w
	}
	p.mu.Unlock()

	err := w.synthesize(text, voice, output)
	if err != nil && errs.ReasonOf(err) == errs.ReasonTransient {
		// A dead worker is dropped so the next request gets a fresh one.
		p.mu.Lock()
		if p.workers[lang] == w {
			delete(p.workers, lang)
			go w.close()
		}
		p.mu.Unlock()
	}
	return err
}

func (p *workerPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for lang, w := range p.workers {
		w.close()
		delete(p.workers, lang)
	}
}

// OneShot synthesizes without the warm server: spawn a worker, run one
// request, and tear it down. Model load dominates the latency, which is the
// whole reason the warm server exists.
func OneShot(ctx context.Context, text, voice, output string) error {
	w, err := startWorker(langCode(voice))
	if err != nil {
		return err
	}
	defer w.close()

	done := make(chan error, 1)
	go func() { done <- w.synthesize(text, voice, output) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
