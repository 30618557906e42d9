// Package retry decides how often the tool is re-run and when its working
// state is wiped after a streak of fast failures.
package retry

import (
	"time"

	"github.com/jmagar/workshop-cli/internal/model"
)

// Policy holds the retry heuristics.
type Policy struct {
	MaxAttempts       int
	FastFailWindow    time.Duration
	FastFailThreshold int
	ResetPause        time.Duration
}

// DefaultPolicy returns the built-in retry heuristics.
func DefaultPolicy() Policy {
	return PolicyFromTuning(model.DefaultTuning())
}

// PolicyFromTuning extracts the retry fields of t.
func PolicyFromTuning(t model.Tuning) Policy {
	return Policy{
		MaxAttempts:       ClampAttempts(t.RetryAttempts),
		FastFailWindow:    t.FastFailWindow,
		FastFailThreshold: t.FastFailThreshold,
		ResetPause:        t.ResetPause,
	}
}

// ClampAttempts bounds n to [MinRetryAttempts, MaxRetryAttempts].
func ClampAttempts(n int) int {
	return min(max(n, model.MinRetryAttempts), model.MaxRetryAttempts)
}

// Tracker counts attempts and consecutive fast failures.
type Tracker struct {
	policy    Policy
	attempts  int
	fastFails int
}

// NewTracker returns a tracker for p.
func NewTracker(p Policy) *Tracker {
	return &Tracker{policy: p}
}

// Begin counts a new attempt and returns its 1-based number.
func (t *Tracker) Begin() int {
	t.attempts++
	return t.attempts
}

// Record classifies a finished attempt. An attempt shorter than the window
// that left no content is a fast fail; anything else ends the streak.
func (t *Tracker) Record(elapsed time.Duration, contentProduced bool) {
	if elapsed < t.policy.FastFailWindow && !contentProduced {
		t.fastFails++
		return
	}
	t.fastFails = 0
}

// NeedsReset reports whether the fast-fail streak reached the threshold.
func (t *Tracker) NeedsReset() bool {
	return t.fastFails >= t.policy.FastFailThreshold
}

// MarkReset ends the streak after a reset.
func (t *Tracker) MarkReset() {
	t.fastFails = 0
}

func (t *Tracker) Attempts() int  { return t.attempts }
func (t *Tracker) FastFails() int { return t.fastFails }

// Exhausted reports whether no attempts remain.
func (t *Tracker) Exhausted() bool {
	return t.attempts >= t.policy.MaxAttempts
}
