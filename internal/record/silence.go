package record

// silenceTracker turns per-poll peak amplitude readings into an auto-stop
// decision: once `needed` consecutive polls come back below the threshold,
// the recording stops. Any loud poll resets the run.
type silenceTracker struct {
	threshold float64
	needed    int
	run       int
}

// newSilenceTracker sizes the run to the configured timeout, given the 1s
// poll cadence. A timeout of 0 disables silence detection entirely.
func newSilenceTracker(threshold float64, timeoutSec int) *silenceTracker {
	return &silenceTracker{threshold: threshold, needed: timeoutSec}
}

// enabled reports whether silence detection is configured at all.
func (t *silenceTracker) enabled() bool { return t.needed > 0 }

// Observe records one peak reading and reports whether the silence run is
// long enough to stop.
func (t *silenceTracker) Observe(peak float64) bool {
	if t.needed <= 0 {
		return false
	}
	if peak >= t.threshold {
		t.run = 0
		return false
	}
	t.run++
	return t.run >= t.needed
}
