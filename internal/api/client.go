package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jmagar/workshop-cli/internal/eventlog"
)

const (
	// DefaultMetadataURL is the Steam Web API endpoint for published file details.
	DefaultMetadataURL = "https://api.steampowered.com/ISteamRemoteStorage/GetPublishedFileDetails/v1/"
	// MetadataTimeout bounds one metadata lookup including retries.
	MetadataTimeout = 10 * time.Second
	UserAgent       = "workshop-cli/1.0"
)

var (
	Client = &http.Client{
		Timeout: MetadataTimeout,
	}

	// RateLimiter keeps interactive lookups instant while stopping a loop of
	// offers from hammering the Web API.
	RateLimiter = newRateLimiter(2.0, 4)

	// CircuitBreaker trips after 5 consecutive API-level failures and stays
	// open for 60 seconds before probing recovery.
	CircuitBreaker = newCircuitBreaker(5, 60*time.Second)

	initialBackoff = 500 * time.Millisecond
)

// retryDo is the single gateway for every outbound API call.
//
// It enforces, in order:
//  1. Rate limiting: token bucket
//  2. Circuit breaker: rejects immediately when open; logs state transitions
//  3. HTTP execution with context cancellation
//  4. Retry on 429 / 5xx: exponential backoff, Retry-After respected
//  5. Structured logging of every attempt, wait, rejection and state change
//
// Caller is responsible for closing the returned response body.
func retryDo(ctx context.Context, label string, makeReq func() (*http.Request, error)) (*http.Response, error) {
	const maxRetries = 3
	backoff := initialBackoff

	for attempt := 0; ; attempt++ {
		waited, err := RateLimiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("rate limiter cancelled for %s: %w", label, err)
		}
		if waited > time.Millisecond {
			eventlog.LogRateLimitWait(label, waited)
		}

		cbState, allowed := CircuitBreaker.Allow()
		if !allowed {
			eventlog.LogCircuitRejected(label, ErrCircuitOpen)
			return nil, fmt.Errorf("%w (label: %s)", ErrCircuitOpen, label)
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}
		start := time.Now()
		resp, err := Client.Do(req)
		duration := time.Since(start)

		if err != nil {
			// Network errors do not count against the circuit.
			eventlog.LogRequest(label, 0, duration, attempt, cbState.String(), err)
			return nil, err
		}

		isAPIError := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !isAPIError {
			prev := CircuitBreaker.RecordSuccess()
			if prev != circuitClosed {
				eventlog.LogCircuitStateChange("circuit_closed", label, prev.String(), circuitClosed.String())
			}
			eventlog.LogRequest(label, resp.StatusCode, duration, attempt, circuitClosed.String(), nil)
			return resp, nil
		}

		resp.Body.Close()
		newState := CircuitBreaker.RecordFailure()
		if newState == circuitOpen && cbState != circuitOpen {
			eventlog.LogCircuitStateChange("circuit_opened", label, cbState.String(), newState.String())
		}
		apiErr := fmt.Errorf("HTTP %s", resp.Status)
		eventlog.LogRequest(label, resp.StatusCode, duration, attempt, newState.String(), apiErr)

		if attempt >= maxRetries {
			return nil, fmt.Errorf("API %s failed after %d attempts: %w", label, attempt+1, apiErr)
		}

		wait := backoff
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, e := strconv.Atoi(ra); e == nil {
				wait = time.Duration(secs) * time.Second
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		backoff = min(backoff*2, 5*time.Second)
	}
}
