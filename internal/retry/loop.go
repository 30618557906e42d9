package retry

import (
	"context"
	"time"

	"github.com/jmagar/workshop-cli/internal/eventlog"
	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/steamcmd"
)

// Hooks connect the loop to the acquisition it drives.
type Hooks struct {
	AcquisitionID string

	// Cancelled reports a user cancel.
	Cancelled func() bool
	// ContentExists reports whether the finished item is on disk.
	ContentExists func() bool
	// Attempt runs the tool once.
	Attempt func(ctx context.Context, n int) (steamcmd.ExitOutcome, error)
	// Reset wipes the tool's working state.
	Reset func() error
	// Logf receives progress lines. Nil discards.
	Logf func(format string, args ...any)
	// Sleep waits d or until ctx ends. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) bool
}

func (h Hooks) logf(format string, args ...any) {
	if h.Logf != nil {
		h.Logf(format, args...)
	}
}

func (h Hooks) sleep(ctx context.Context, d time.Duration) bool {
	if h.Sleep != nil {
		return h.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// Loop runs attempts until the content exists, the user cancels, or the
// attempts run out. A cancelled attempt ends the loop immediately.
func Loop(ctx context.Context, p Policy, h Hooks) model.AttemptResult {
	tr := NewTracker(p)
	cancelled := func() bool { return ctx.Err() != nil || h.Cancelled() }

	for !cancelled() && !h.ContentExists() && !tr.Exhausted() {
		n := tr.Begin()

		if tr.NeedsReset() {
			h.logf("Too many quick failures (%d), resetting SteamCMD...", tr.FastFails())
			err := h.Reset()
			eventlog.Log(eventlog.Entry{
				Event:         "fast_fail_reset",
				AcquisitionID: h.AcquisitionID,
				Attempt:       n,
				Error:         eventlog.ErrString(err),
			})
			tr.MarkReset()
			if !h.sleep(ctx, p.ResetPause) {
				break
			}
		}

		if n > 1 {
			h.logf("Resuming download (attempt %d/%d)...", n, p.MaxAttempts)
		} else {
			h.logf("Downloading (attempt %d/%d)...", n, p.MaxAttempts)
		}
		eventlog.Log(eventlog.Entry{
			Event:         "attempt_start",
			AcquisitionID: h.AcquisitionID,
			Attempt:       n,
			MaxAttempts:   p.MaxAttempts,
		})

		outcome, err := h.Attempt(ctx, n)
		entry := eventlog.Entry{
			Event:         "attempt_exit",
			AcquisitionID: h.AcquisitionID,
			Attempt:       n,
			MaxAttempts:   p.MaxAttempts,
			DurationMS:    outcome.Elapsed.Milliseconds(),
			Cancelled:     outcome.Cancelled,
			Error:         eventlog.ErrString(err),
		}
		if err == nil {
			entry.ExitCode = eventlog.IntPtr(outcome.Code)
		}
		eventlog.Log(entry)

		if outcome.Cancelled {
			h.logf("User interrupted download")
			return model.ResultUserCancelled
		}
		tr.Record(outcome.Elapsed, h.ContentExists())
	}

	if cancelled() {
		return model.ResultUserCancelled
	}
	if !h.ContentExists() {
		return model.ResultExhaustedRetries
	}
	return model.ResultSuccess
}
