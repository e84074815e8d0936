// Package output centralizes the CLI's user-facing messages.
package output

import (
	"fmt"
	"io"
	"time"
)

// Formatter writes status lines to the CLI's stdout.
type Formatter struct {
	w io.Writer
}

func New(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Success(format string, args ...any) {
	fmt.Fprintf(f.w, "✅ "+format+"\n", args...)
}

func (f *Formatter) Info(format string, args ...any) {
	fmt.Fprintf(f.w, format+"\n", args...)
}

func (f *Formatter) Warn(format string, args ...any) {
	fmt.Fprintf(f.w, "⚠️  "+format+"\n", args...)
}

func (f *Formatter) Recording(format string, args ...any) {
	fmt.Fprintf(f.w, "🎙️  "+format+"\n", args...)
}

func (f *Formatter) Speaking(format string, args ...any) {
	fmt.Fprintf(f.w, "🔊 "+format+"\n", args...)
}

// Plain writes without any prefix, for machine-consumable output like the
// transcript itself.
func (f *Formatter) Plain(s string) {
	fmt.Fprintln(f.w, s)
}

// FormatDuration renders an elapsed time as m:ss.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
