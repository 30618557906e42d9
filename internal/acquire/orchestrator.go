// Package acquire runs one workshop acquisition end to end: tool install,
// attempt loop with progress and dump monitoring, and the final move into
// the game folder.
package acquire

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jmagar/workshop-cli/internal/dumpwatch"
	"github.com/jmagar/workshop-cli/internal/eventlog"
	"github.com/jmagar/workshop-cli/internal/helpers"
	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/progress"
	"github.com/jmagar/workshop-cli/internal/retry"
	"github.com/jmagar/workshop-cli/internal/status"
	"github.com/jmagar/workshop-cli/internal/steamcmd"
)

// Host is the embedding application.
type Host interface {
	// ShowMessage displays a terminal outcome or a rejection.
	ShowMessage(severity int, text string)
	// ReloadContent asks the host to rescan installed workshop content.
	ReloadContent()
	// Connect joins the server at addr.
	Connect(addr string)
}

// MetadataSource looks up advisory item metadata.
type MetadataSource interface {
	ItemDetails(ctx context.Context, itemID string) (model.ItemInfo, error)
}

// Installer makes the tool runnable.
type Installer interface {
	EnsureInstalled(ctx context.Context) error
}

// ProcessRunner runs and kills the tool. *steamcmd.Supervisor implements it.
type ProcessRunner interface {
	Run(ctx context.Context, toolPath string, args []string, hidden bool) (steamcmd.ExitOutcome, error)
	Terminate() bool
}

// Options wires an Orchestrator to its collaborators.
type Options struct {
	Layout     steamcmd.Layout
	GameDir    string
	Tuning     model.Tuning
	Metadata   MetadataSource
	Installer  Installer
	Runner     ProcessRunner
	NetCounter progress.NetCounter
	Host       Host
	// Lock takes the cross-process acquisition lock. Nil skips it.
	Lock func() (release func(), err error)
	// Logf receives progress lines. Nil discards.
	Logf func(format string, args ...any)
}

// Orchestrator accepts at most one acquisition at a time.
type Orchestrator struct {
	opts    Options
	cell    *status.Cell
	confirm *status.ConfirmCell
	phase   model.PhaseTracker
	active  atomic.Bool

	mu               sync.Mutex
	pendingReconnect string
}

// New returns an idle orchestrator publishing into cell and confirm.
func New(opts Options, cell *status.Cell, confirm *status.ConfirmCell) *Orchestrator {
	if opts.Tuning.TickInterval <= 0 {
		opts.Tuning = model.DefaultTuning()
	}
	return &Orchestrator{opts: opts, cell: cell, confirm: confirm}
}

// Cell returns the status cell the orchestrator publishes into.
func (o *Orchestrator) Cell() *status.Cell { return o.cell }

// Confirm returns the cell holding offer and reconnect confirmations.
func (o *Orchestrator) Confirm() *status.ConfirmCell { return o.confirm }

// Phase returns the current lifecycle phase.
func (o *Orchestrator) Phase() model.Phase { return o.phase.Current() }

// IsAnyAcquisitionActive reports whether an acquisition is running.
func (o *Orchestrator) IsAnyAcquisitionActive() bool {
	return o.active.Load()
}

// SetPendingReconnect remembers a server to offer joining after the next success.
func (o *Orchestrator) SetPendingReconnect(addr string) {
	o.mu.Lock()
	o.pendingReconnect = addr
	o.mu.Unlock()
}

// GetPendingReconnectAddress returns and clears the pending address.
func (o *Orchestrator) GetPendingReconnectAddress() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	addr := o.pendingReconnect
	o.pendingReconnect = ""
	return addr
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.opts.Logf != nil {
		o.opts.Logf(format, args...)
	}
}

func (o *Orchestrator) setPhase(p model.Phase) {
	if err := o.phase.Set(p); err != nil {
		o.logf("%v", err)
		return
	}
	if p != model.PhaseIdle {
		o.cell.Access(func(s *model.AcquisitionState) { s.Phase = p })
	}
}

// Request starts acquiring itemID in the background. It fails synchronously
// with model.ErrAlreadyDownloading while another acquisition runs; the
// running one is not disturbed. The channel yields exactly one result after
// the status cell has been cleared.
func (o *Orchestrator) Request(ctx context.Context, itemID string, kind model.Kind) (<-chan model.AttemptResult, error) {
	if err := helpers.ValidateItemID(itemID); err != nil {
		return nil, err
	}
	if !o.active.CompareAndSwap(false, true) {
		o.rejectBusy()
		return nil, model.ErrAlreadyDownloading
	}
	release := func() {}
	if o.opts.Lock != nil {
		r, err := o.opts.Lock()
		if err != nil {
			o.active.Store(false)
			o.rejectBusy()
			return nil, fmt.Errorf("%w: %w", model.ErrAlreadyDownloading, err)
		}
		release = r
	}

	acqID := uuid.NewString()
	o.cell.Update(model.AcquisitionState{
		Active:        true,
		AcquisitionID: acqID,
		ItemID:        itemID,
		DisplayName:   fallbackTitle(kind, itemID),
		StatusLine:    settingUpLine,
		ETASeconds:    -1,
	})

	results := make(chan model.AttemptResult, 1)
	go func() {
		defer close(results)
		res := o.run(ctx, acqID, model.AcquisitionRequest{ItemID: itemID, Kind: kind}, release)
		results <- res
	}()
	return results, nil
}

func (o *Orchestrator) rejectBusy() {
	if o.opts.Host != nil {
		o.opts.Host.ShowMessage(model.SeverityError, MsgBusy)
	}
}

// run executes one acquisition. The terminal notification is raised first,
// then the cell is cleared, the host reloads content, and the active flag
// drops last.
func (o *Orchestrator) run(ctx context.Context, acqID string, req model.AcquisitionRequest, release func()) model.AttemptResult {
	start := time.Now()

	eventlog.Log(eventlog.Entry{Event: "acquisition_start", AcquisitionID: acqID, ItemID: req.ItemID, Kind: req.Kind.String()})

	req = o.lookup(ctx, acqID, req)
	o.cell.Access(func(s *model.AcquisitionState) {
		s.DisplayName = req.DisplayName
		s.TotalBytes = req.ExpectedSizeBytes
	})

	o.setPhase(model.PhaseInstall)
	result := o.transfer(ctx, acqID, req, start)
	o.notify(result)
	o.cell.Clear()
	if o.opts.Host != nil {
		o.opts.Host.ReloadContent()
	}
	o.setPhase(model.PhaseIdle)

	eventlog.Log(eventlog.Entry{
		Event:         "acquisition_end",
		AcquisitionID: acqID,
		ItemID:        req.ItemID,
		Kind:          req.Kind.String(),
		DurationMS:    time.Since(start).Milliseconds(),
		Result:        result.String(),
	})
	release()
	o.active.Store(false)
	return result
}

// lookup fills the request's display name and expected size. Metadata is
// advisory: on failure the fallback title is kept and the size stays unknown.
func (o *Orchestrator) lookup(ctx context.Context, acqID string, req model.AcquisitionRequest) model.AcquisitionRequest {
	req.DisplayName = fallbackTitle(req.Kind, req.ItemID)
	req.ExpectedSizeBytes = 0
	if o.opts.Metadata == nil {
		return req
	}
	info, err := o.opts.Metadata.ItemDetails(ctx, req.ItemID)
	eventlog.Log(eventlog.Entry{
		Event:         "metadata",
		AcquisitionID: acqID,
		ItemID:        req.ItemID,
		Bytes:         info.FileSizeBytes,
		Message:       info.Title,
		Error:         eventlog.ErrString(err),
	})
	if err != nil {
		o.logf("Workshop metadata unavailable for %s: %v", req.ItemID, err)
		return req
	}
	if info.Title != "" {
		req.DisplayName = info.Title
	}
	req.ExpectedSizeBytes = info.FileSizeBytes
	return req
}

func (o *Orchestrator) transfer(ctx context.Context, acqID string, req model.AcquisitionRequest, start time.Time) model.AttemptResult {
	layout := o.opts.Layout
	if o.opts.Installer != nil {
		if err := o.opts.Installer.EnsureInstalled(ctx); err != nil {
			o.logf("Could not set up SteamCMD: %v", err)
			if ctx.Err() != nil {
				return model.ResultUserCancelled
			}
			return model.ResultToolUnavailable
		}
	}

	o.setPhase(model.PhaseSetup)
	if err := helpers.RemoveAllRelaxed(layout.SteamappsDir()); err != nil {
		o.logf("Could not remove old steamapps folder: %v", err)
	}

	var cancelRequested atomic.Bool
	attemptCtx, cancelAttempts := context.WithCancel(ctx)
	defer cancelAttempts()
	cancel := func() {
		cancelRequested.Store(true)
		cancelAttempts()
		o.opts.Runner.Terminate()
		o.logf("Cancelling download...")
	}
	o.cell.Access(func(s *model.AcquisitionState) {
		s.OnCancel = model.NewAction(model.ActionCancel, cancel)
	})
	defer o.cell.Access(func(s *model.AcquisitionState) { s.OnCancel = model.Action{} })

	isActive := func() bool { return !cancelRequested.Load() && attemptCtx.Err() == nil }
	contentDir := layout.ContentDir(req.ItemID)
	downloadsDir := layout.DownloadsDir(req.ItemID)

	o.setPhase(model.PhaseWarmup)
	monCtx, stopMonitors := context.WithCancel(attemptCtx)
	mon := progress.New(progress.Config{
		DownloadsDir:  downloadsDir,
		ContentDir:    contentDir,
		DisplayName:   req.DisplayName,
		ExpectedBytes: req.ExpectedSizeBytes,
		Start:         start,
		Tuning:        o.opts.Tuning,
	}, o.cell, o.opts.NetCounter, isActive)
	mon.OnPhase = o.setPhase
	watcher := dumpwatch.New(dumpwatch.Config{
		LogPath:       layout.ContentLogPath(),
		DownloadsDir:  downloadsDir,
		AppID:         layout.AppID,
		Start:         start,
		WaitTimeout:   o.opts.Tuning.LogWaitTimeout,
		PollInterval:  o.opts.Tuning.LogPollInterval,
		AcquisitionID: acqID,
	}, isActive)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		mon.Run(monCtx)
	}()
	go func() {
		defer wg.Done()
		if watcher.Run(monCtx) {
			o.logf("Cleared pre-allocated dump files for %s", req.ItemID)
		}
	}()

	result := retry.Loop(attemptCtx, retry.PolicyFromTuning(o.opts.Tuning), retry.Hooks{
		AcquisitionID: acqID,
		Cancelled:     cancelRequested.Load,
		ContentExists: func() bool { return dirExists(contentDir) },
		Attempt: func(ctx context.Context, n int) (steamcmd.ExitOutcome, error) {
			return o.opts.Runner.Run(ctx, layout.ToolPath(), layout.DownloadArgs(req.ItemID), true)
		},
		Reset: func() error { return wipe(layout.ResetDirs()) },
		Logf:  o.opts.Logf,
	})
	stopMonitors()
	wg.Wait()

	if result != model.ResultSuccess {
		return result
	}

	o.setPhase(model.PhaseFinalize)
	dest := steamcmd.DestinationDir(o.opts.GameDir, req.Kind, req.ItemID)
	err := helpers.MoveContents(contentDir, dest)
	eventlog.Log(eventlog.Entry{
		Event:         "move",
		AcquisitionID: acqID,
		ItemID:        req.ItemID,
		Message:       dest,
		Error:         eventlog.ErrString(err),
	})
	if err != nil {
		o.logf("%v: %v", model.ErrMoveFailed, err)
		return model.ResultMoveFailed
	}
	o.logf("Moved workshop item to %s", dest)
	return model.ResultSuccess
}

// notify raises exactly one terminal notification. A success with a pending
// reconnect becomes a confirmation instead of a plain message.
func (o *Orchestrator) notify(result model.AttemptResult) {
	addr := o.GetPendingReconnectAddress()
	if o.opts.Host == nil {
		return
	}
	if result == model.ResultSuccess && addr != "" && o.confirm != nil {
		host := o.opts.Host
		o.confirm.Show(ReconnectTitle, ReconnectMessage, func() { host.Connect(addr) })
		return
	}
	msg, severity := ResultMessage(result)
	o.opts.Host.ShowMessage(severity, msg)
}

// Offer looks up itemID and raises a confirmation whose accept starts Request.
func (o *Orchestrator) Offer(ctx context.Context, itemID string, kind model.Kind, displayRef string) error {
	if err := helpers.ValidateItemID(itemID); err != nil {
		return err
	}
	if o.IsAnyAcquisitionActive() {
		o.rejectBusy()
		return model.ErrAlreadyDownloading
	}
	if displayRef == "" {
		displayRef = itemID
	}
	var info model.ItemInfo
	if o.opts.Metadata != nil {
		info, _ = o.opts.Metadata.ItemDetails(ctx, itemID)
	}
	o.confirm.Show(offerTitle(kind), offerMessage(kind, displayRef, info), func() {
		// The result reaches the user through the host notification; a busy
		// rejection is already shown by rejectBusy.
		if _, err := o.Request(ctx, itemID, kind); err != nil {
			o.logf("Could not start download of %s: %v", itemID, err)
		}
	})
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func wipe(dirs []string) error {
	var firstErr error
	for _, dir := range dirs {
		if err := helpers.RemoveAllRelaxed(dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
