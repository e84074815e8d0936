// Package speechd implements the background synthesis server: a unix stream
// socket that keeps model pipelines warm between requests, with a client for
// talking to it and a one-shot cold path for when it is down.
//
// The wire protocol is one request per connection: the client writes a single
// JSON line {"text", "voice", "output"} and reads back either "ok\n" or
// "error: <message>\n".
package speechd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chrisjrex/voxcli/internal/procfile"
)

// SocketPath returns the server's unix socket path under runDir.
func SocketPath(runDir string) string {
	return filepath.Join(runDir, "speechd.sock")
}

// PIDPath returns the server's PID file path under runDir.
func PIDPath(runDir string) string {
	return filepath.Join(runDir, "speechd.pid")
}

// request is the single JSON line a client sends per connection.
type request struct {
	Text   string `json:"text"`
	Voice  string `json:"voice"`
	Output string `json:"output"`
}

// Synthesizer produces an audio file for a request. The production
// implementation is the kokoro worker pool.
type Synthesizer interface {
	Synthesize(text, voice, output string) error
	Close()
}

// Server accepts synthesis requests over a unix socket and shuts itself down
// after IdleTimeout without a served request (0 disables the watchdog).
type Server struct {
	SocketPath  string
	PIDPath     string
	IdleTimeout time.Duration
	Log         *slog.Logger

	// Synth defaults to a kokoro worker pool when nil.
	Synth Synthesizer

	// PollInterval is how often the idle watchdog checks; defaults to 5s.
	PollInterval time.Duration

	mu       sync.Mutex
	lastServ time.Time
	closing  bool
}

// Run serves until ctx is cancelled or the idle watchdog fires. The socket
// and PID file are removed on the way out.
func (s *Server) Run(ctx context.Context) error {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	if s.Synth == nil {
		s.Synth = newWorkerPool()
	}
	poll := s.PollInterval
	if poll == 0 {
		poll = 5 * time.Second
	}

	if err := os.MkdirAll(filepath.Dir(s.SocketPath), 0o755); err != nil {
		return err
	}
	// A socket file left by a crashed server would block the bind.
	os.Remove(s.SocketPath)
	ln, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return fmt.Errorf("binding %s: %w", s.SocketPath, err)
	}
	if s.PIDPath != "" {
		if err := procfile.Write(s.PIDPath, os.Getpid()); err != nil {
			ln.Close()
			os.Remove(s.SocketPath)
			return err
		}
	}
	defer func() {
		s.Synth.Close()
		os.Remove(s.SocketPath)
		procfile.Remove(s.PIDPath)
	}()

	s.touch()
	log.Info("synthesis server listening", "socket", s.SocketPath, "idle_timeout", s.IdleTimeout)

	watchdogDone := make(chan struct{})
	go func() {
		defer close(watchdogDone)
		ticker := time.NewTicker(poll)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.shutdown(ln)
				return
			case <-ticker.C:
				if s.IdleTimeout > 0 && time.Since(s.lastServed()) > s.IdleTimeout {
					log.Info("idle timeout reached, shutting down", "idle_timeout", s.IdleTimeout)
					s.shutdown(ln)
					return
				}
			}
		}
	}()

	// Requests are served one at a time. Synthesis saturates the machine
	// anyway, and a backlog of one is all the CLI ever produces.
	for {
		conn, err := ln.Accept()
		if err != nil {
			<-watchdogDone
			if s.isClosing() {
				return nil
			}
			return err
		}
		s.handle(conn, log)
	}
}

func (s *Server) handle(conn net.Conn, log *slog.Logger) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	raw, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		// Liveness probes connect and hang up without sending anything.
		return
	}
	var req request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		writeError(conn, fmt.Sprintf("bad request: %v", err))
		return
	}
	if req.Text == "" || req.Output == "" {
		writeError(conn, "text and output are required")
		return
	}

	start := time.Now()
	if err := s.Synth.Synthesize(req.Text, req.Voice, req.Output); err != nil {
		log.Error("synthesis failed", "voice", req.Voice, "error", err)
		writeError(conn, err.Error())
		s.touch()
		return
	}
	log.Info("synthesized", "voice", req.Voice, "chars", len(req.Text), "took", time.Since(start).Round(time.Millisecond))
	fmt.Fprint(conn, "ok\n")
	s.touch()
}

// writeError sends the single-line error reply; embedded newlines would
// corrupt the framing, so they are flattened.
func writeError(conn net.Conn, msg string) {
	msg = strings.ReplaceAll(msg, "\n", " ")
	fmt.Fprintf(conn, "error: %s\n", msg)
}

func (s *Server) touch() {
	s.mu.Lock()
	s.lastServ = time.Now()
	s.mu.Unlock()
}

func (s *Server) lastServed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastServ
}

func (s *Server) shutdown(ln net.Listener) {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	ln.Close()
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}
