// Package dumpwatch tails the SteamCMD content log and clears the
// pre-allocated placeholder files SteamCMD dumps into the downloads
// directory when a fresh update starts.
package dumpwatch

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jmagar/workshop-cli/internal/eventlog"
	"github.com/jmagar/workshop-cli/internal/helpers"
	"github.com/jmagar/workshop-cli/internal/model"
)

const timestampLayout = "2006-01-02 15:04:05"

// Config describes what one watcher tails and clears.
type Config struct {
	LogPath       string
	DownloadsDir  string
	AppID         string
	Start         time.Time
	WaitTimeout   time.Duration
	PollInterval  time.Duration
	AcquisitionID string
}

// Watcher waits for the update-started marker and clears DownloadsDir once.
type Watcher struct {
	cfg      Config
	isActive func() bool

	// Clear empties a directory. Defaults to helpers.ClearFolder.
	Clear func(dir string) error
}

// New returns a watcher. isActive must report false once the acquisition
// ended or a cancel was requested.
func New(cfg Config, isActive func() bool) *Watcher {
	if cfg.AppID == "" {
		cfg.AppID = model.DefaultAppID
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = model.DefaultLogWaitTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = model.DefaultLogPollInterval
	}
	return &Watcher{cfg: cfg, isActive: isActive, Clear: helpers.ClearFolder}
}

// MatchLine reports whether line marks the start of an update for appID at
// or after notBefore. The timestamp is local time at second precision.
func MatchLine(line, appID string, notBefore time.Time) bool {
	if !strings.Contains(line, "AppID "+appID+" update started") {
		return false
	}
	if !strings.Contains(line, "download 0/") {
		return false
	}
	if len(line) < 21 || line[0] != '[' || line[20] != ']' {
		return false
	}
	ts, err := time.ParseInLocation(timestampLayout, line[1:20], time.Local)
	if err != nil {
		return false
	}
	return !ts.Before(notBefore.Truncate(time.Second))
}

// Run blocks until the marker is seen and the directory cleared (true), or
// the log never appears, ctx ends, or the acquisition stops (false).
func (w *Watcher) Run(ctx context.Context) bool {
	f, err := w.waitForLog(ctx)
	if err != nil {
		return false
	}
	defer func() { f.Close() }()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return false
	}
	reader := bufio.NewReader(f)
	var pending strings.Builder

	for w.running(ctx) {
		chunk, err := reader.ReadString('\n')
		pending.WriteString(chunk)
		if err == nil {
			line := strings.TrimRight(pending.String(), "\r\n")
			pending.Reset()
			if MatchLine(line, w.cfg.AppID, w.cfg.Start) {
				w.clear()
				return true
			}
			continue
		}
		if !errors.Is(err, io.EOF) {
			return false
		}

		// The log is replaced when the tool's working state is reset.
		if replaced, ok := w.reopenIfReplaced(f); ok {
			f = replaced
			reader.Reset(f)
			pending.Reset()
			continue
		}
		if !w.sleep(ctx) {
			return false
		}
	}
	return false
}

func (w *Watcher) clear() {
	err := w.Clear(w.cfg.DownloadsDir)
	eventlog.Log(eventlog.Entry{
		Event:         "dump_cleared",
		AcquisitionID: w.cfg.AcquisitionID,
		Message:       w.cfg.DownloadsDir,
		Error:         eventlog.ErrString(err),
	})
}

func (w *Watcher) running(ctx context.Context) bool {
	return ctx.Err() == nil && w.isActive()
}

func (w *Watcher) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(w.cfg.PollInterval):
		return true
	}
}

func (w *Watcher) waitForLog(ctx context.Context) (*os.File, error) {
	deadline := time.Now().Add(w.cfg.WaitTimeout)
	for {
		if !w.running(ctx) {
			return nil, context.Canceled
		}
		f, err := os.Open(w.cfg.LogPath)
		if err == nil {
			return f, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		if !w.sleep(ctx) {
			return nil, ctx.Err()
		}
	}
}

// reopenIfReplaced returns a handle on the new file when LogPath no longer
// refers to f. The new file is read from its start.
func (w *Watcher) reopenIfReplaced(f *os.File) (*os.File, bool) {
	cur, err := f.Stat()
	if err != nil {
		return nil, false
	}
	onDisk, err := os.Stat(w.cfg.LogPath)
	if err != nil || os.SameFile(cur, onDisk) {
		return nil, false
	}
	nf, err := os.Open(w.cfg.LogPath)
	if err != nil {
		return nil, false
	}
	f.Close()
	return nf, true
}
