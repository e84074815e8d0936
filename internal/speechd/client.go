package speechd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/chrisjrex/voxcli/internal/errs"
)

// Reachable reports whether a server is accepting connections on socketPath.
// This is the warm/cold decision point: reachable means warm request, not
// reachable means one-shot worker.
func Reachable(socketPath string) bool {
	conn, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Request sends one synthesis request to a running server and waits for its
// reply. A malformed reply is a hard protocol error; callers must not fall
// back to a cold worker on it, since that would mask a broken server.
func Request(socketPath, text, voice, output string, timeout time.Duration) error {
	conn, err := net.DialTimeout("unix", socketPath, 2*time.Second)
	if err != nil {
		return errs.Transient(fmt.Errorf("connecting to synthesis server: %w", err), "")
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	line, err := json.Marshal(request{Text: text, Voice: voice, Output: output})
	if err != nil {
		return err
	}
	if _, err := conn.Write(append(line, '\n')); err != nil {
		return errs.Transient(fmt.Errorf("sending synthesis request: %w", err), "")
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return errs.Protocol(fmt.Errorf("reading synthesis reply: %w", err))
	}
	reply = strings.TrimSuffix(reply, "\n")
	switch {
	case reply == "ok":
		return nil
	case strings.HasPrefix(reply, "error: "):
		return errs.Transient(fmt.Errorf("synthesis server: %s", strings.TrimPrefix(reply, "error: ")), "")
	default:
		return errs.Protocol(fmt.Errorf("unexpected synthesis reply %q", reply))
	}
}
