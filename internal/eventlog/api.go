package eventlog

import (
	"fmt"
	"time"
)

// LogRequest records a completed HTTP request (success or API-level error).
func LogRequest(label string, statusCode int, duration time.Duration, attempt int, circState string, reqErr error) {
	e := Entry{
		Event:        "request",
		Label:        label,
		StatusCode:   statusCode,
		DurationMS:   duration.Milliseconds(),
		Attempt:      attempt,
		CircuitState: circState,
		Error:        ErrString(reqErr),
	}
	if attempt > 0 {
		e.Event = "retry"
	}
	Log(e)
}

// LogRateLimitWait records that a request was delayed by the rate limiter.
func LogRateLimitWait(label string, waited time.Duration) {
	Log(Entry{
		Event:         "rate_limit_wait",
		Label:         label,
		RateLimitedMS: waited.Milliseconds(),
	})
}

// LogCircuitStateChange records a circuit breaker state transition.
func LogCircuitStateChange(event, label, fromState, toState string) {
	Log(Entry{
		Event:        event,
		Label:        label,
		CircuitState: toState,
		Message:      fmt.Sprintf("state transition: %s -> %s", fromState, toState),
	})
}

// LogCircuitRejected records a request rejected because the circuit is open.
func LogCircuitRejected(label string, err error) {
	Log(Entry{
		Event:        "circuit_rejected",
		Label:        label,
		CircuitState: "open",
		Error:        ErrString(err),
	})
}
