package engine

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/chrisjrex/voxcli/internal/errs"
)

// tailBuffer keeps the last max bytes written to it. External speech tools
// can be extremely chatty on stderr; only the tail is worth surfacing.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newTailBuffer(max int) *tailBuffer {
	if max <= 0 {
		max = 8 << 10
	}
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}

// runCollapsed runs cmd and, on failure, returns a single transient error
// carrying the truncated stderr tail instead of the tool's full output.
func runCollapsed(cmd *exec.Cmd, what string) error {
	tail := newTailBuffer(8 << 10)
	cmd.Stderr = tail
	if err := cmd.Run(); err != nil {
		detail := tail.String()
		if detail == "" {
			detail = err.Error()
		}
		return errs.Transient(fmt.Errorf("%s failed", what), detail)
	}
	return nil
}
