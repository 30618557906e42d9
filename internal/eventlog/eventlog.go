// Package eventlog writes structured JSON-line records for acquisitions and
// outbound API calls. Keys are snake_case for easy grep/jq consumption.
package eventlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is a single structured record written to the event log.
type Entry struct {
	Timestamp     string `json:"ts"`
	Event         string `json:"event"`
	AcquisitionID string `json:"acquisition_id,omitempty"`
	ItemID        string `json:"item_id,omitempty"`
	Kind          string `json:"kind,omitempty"`
	Label         string `json:"label,omitempty"`           // API endpoint name or phase
	StatusCode    int    `json:"status_code,omitempty"`     // HTTP status (0 = network error)
	DurationMS    int64  `json:"duration_ms,omitempty"`     // round-trip or attempt time
	Attempt       int    `json:"attempt,omitempty"`         // 1-based tool attempt, or API retry
	MaxAttempts   int    `json:"max_attempts,omitempty"`
	ExitCode      *int   `json:"exit_code,omitempty"`
	Cancelled     bool   `json:"cancelled,omitempty"`
	Bytes         uint64 `json:"bytes,omitempty"`
	RateLimitedMS int64  `json:"rate_limited_ms,omitempty"` // ms spent waiting for rate limiter
	CircuitState  string `json:"circuit_state,omitempty"`   // closed / open / half-open
	Result        string `json:"result,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
}

// logger appends JSON-line entries. All methods are safe for concurrent use.
type logger struct {
	mu  sync.Mutex
	enc *json.Encoder
	c   io.Closer
}

var (
	stdMu sync.RWMutex
	std   *logger

	initOnce sync.Once
)

// Init opens (or creates) the event log file at logPath. Only the first call
// has any effect. The directory is created with mode 0700 if missing. On error
// logging stays disabled and every other operation continues normally.
func Init(logPath string) error {
	var initErr error
	initOnce.Do(func() {
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			initErr = fmt.Errorf("event log: mkdir %s: %w", filepath.Dir(logPath), err)
			return
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			initErr = fmt.Errorf("event log: open %s: %w", logPath, err)
			return
		}
		setLogger(&logger{enc: json.NewEncoder(f), c: f})
	})
	return initErr
}

// SetOutput redirects the event log to w. A nil w disables logging.
func SetOutput(w io.Writer) {
	if w == nil {
		setLogger(nil)
		return
	}
	setLogger(&logger{enc: json.NewEncoder(w)})
}

func setLogger(l *logger) {
	stdMu.Lock()
	prev := std
	std = l
	stdMu.Unlock()
	if prev != nil && prev.c != nil {
		_ = prev.c.Close()
	}
}

// Enabled reports whether entries are being written anywhere.
func Enabled() bool {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std != nil
}

// Log appends e, stamping the time. Write failures are ignored so logging
// never aborts an acquisition.
func Log(e Entry) {
	stdMu.RLock()
	l := std
	stdMu.RUnlock()
	if l == nil {
		return
	}
	e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.enc.Encode(e)
}

// IntPtr is a helper for Entry.ExitCode.
func IntPtr(v int) *int {
	return &v
}

// ErrString returns err's message or "".
func ErrString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
