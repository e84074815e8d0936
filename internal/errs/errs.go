// Package errs attaches machine-readable reasons to errors so the CLI can
// surface distinct exit codes for the failure modes scripts branch on.
package errs

import "errors"

// Reason is a short machine-readable failure category.
type Reason string

const (
	ReasonUnknown Reason = "unknown"

	// ReasonDependencyMissing means a required external tool or package is
	// not installed.
	ReasonDependencyMissing Reason = "dependency_missing"
	// ReasonNotDownloaded means the model or voice id is valid but its
	// weights are not cached locally.
	ReasonNotDownloaded Reason = "not_downloaded"
	// ReasonTransient means a subprocess exited non-zero or timed out.
	ReasonTransient Reason = "transient"
	// ReasonStaleState means on-disk session state referenced a dead process.
	ReasonStaleState Reason = "stale_state"
	// ReasonProtocol means the synthesis server replied with something
	// other than the expected single-line response.
	ReasonProtocol Reason = "protocol"
)

// Exit codes surfaced to the shell.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitDependencyMissing = 10
	ExitNotDownloaded     = 11
)

// ReasonedError wraps an error with a reason and an optional user hint.
type ReasonedError struct {
	Err    error
	Why    Reason
	Hint   string // e.g. an install or download command
	Detail string // truncated tail of a subprocess's stderr
}

func (e ReasonedError) Error() string {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	} else {
		msg = string(e.Why)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e ReasonedError) Unwrap() error { return e.Err }

// Wrap attaches a reason to an error. No-op if err is nil or already reasoned.
func Wrap(err error, reason Reason) error {
	if err == nil {
		return nil
	}
	var re ReasonedError
	if errors.As(err, &re) {
		return err
	}
	return ReasonedError{Err: err, Why: reason}
}

// ReasonOf extracts the reason from an error, if present.
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonUnknown
	}
	var re ReasonedError
	if errors.As(err, &re) {
		return re.Why
	}
	return ReasonUnknown
}

// HintOf returns the user hint carried by an error, if any.
func HintOf(err error) string {
	var re ReasonedError
	if errors.As(err, &re) {
		return re.Hint
	}
	return ""
}

// ExitCode maps an error to the shell exit code for its reason.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch ReasonOf(err) {
	case ReasonDependencyMissing:
		return ExitDependencyMissing
	case ReasonNotDownloaded:
		return ExitNotDownloaded
	default:
		return ExitFailure
	}
}

// DependencyMissing builds a dependency-missing error with an install hint.
func DependencyMissing(err error, hint string) error {
	return ReasonedError{Err: err, Why: ReasonDependencyMissing, Hint: hint}
}

// NotDownloaded builds a resource-not-downloaded error with a download hint.
func NotDownloaded(err error, hint string) error {
	return ReasonedError{Err: err, Why: ReasonNotDownloaded, Hint: hint}
}

// Transient builds a transient-process error carrying a collapsed stderr tail.
func Transient(err error, detail string) error {
	return ReasonedError{Err: err, Why: ReasonTransient, Detail: detail}
}

// Protocol builds a hard protocol error for an unexpected server response.
func Protocol(err error) error {
	return ReasonedError{Err: err, Why: ReasonProtocol}
}
