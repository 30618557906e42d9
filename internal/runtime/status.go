package runtime

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmagar/workshop-cli/internal/cache"
	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/ui"
)

// DetachedEnvVar is the environment variable set when running in detached mode.
const DetachedEnvVar = "WORKSHOP_DETACHED"

// Runtime states written to the status file.
const (
	StateRunning  = "running"
	StateFinished = "finished"
	StateStale    = "stale"
)

// Package-level state for runtime status tracking.
var (
	RuntimeStatusMu        sync.Mutex
	RuntimeStatusPath      string
	Status                 model.RuntimeStatus
	RuntimeStatusLastWrite time.Time
	// RuntimeStatusWarnOnce reports only the first failed status write; the
	// presentation loop writes several times a second.
	RuntimeStatusWarnOnce sync.Once
)

// GetRuntimeStatusPath returns the path to the runtime status JSON file.
func GetRuntimeStatusPath() (string, error) {
	cacheDir, err := cache.GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "runtime-status.json"), nil
}

// GetRuntimeControlPath returns the path to the runtime control JSON file.
func GetRuntimeControlPath() (string, error) {
	cacheDir, err := cache.GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "runtime-control.json"), nil
}

// InitRuntimeStatus creates the status file for a new session and resets the
// control file.
func InitRuntimeStatus(itemID string, kind model.Kind) {
	statusPath, err := GetRuntimeStatusPath()
	if err != nil {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	RuntimeStatusMu.Lock()
	RuntimeStatusPath = statusPath
	Status = model.RuntimeStatus{
		PID:        os.Getpid(),
		State:      StateRunning,
		StartedAt:  now,
		UpdatedAt:  now,
		ItemID:     itemID,
		Kind:       kind.String(),
		ETASeconds: -1,
	}
	RuntimeStatusMu.Unlock()
	WriteRuntimeStatus(true)
	_ = WriteRuntimeControl(model.RuntimeControl{Cancel: false})
}

// UpdateRuntimeProgress mirrors an acquisition snapshot into the status file.
func UpdateRuntimeProgress(state model.AcquisitionState) {
	RuntimeStatusMu.Lock()
	if RuntimeStatusPath == "" {
		RuntimeStatusMu.Unlock()
		return
	}
	if state.AcquisitionID != "" {
		Status.AcquisitionID = state.AcquisitionID
	}
	if state.DisplayName != "" {
		Status.Label = state.DisplayName
	}
	if state.Phase != model.PhaseIdle {
		Status.Phase = state.Phase
	}
	Status.StatusLine = state.StatusLine
	Status.Downloaded = state.DownloadedBytes
	Status.Total = state.TotalBytes
	Status.Speed = state.SpeedBytesPerSec
	Status.ETASeconds = state.ETASeconds
	Status.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	RuntimeStatusMu.Unlock()
	WriteRuntimeStatus(false)
}

// FinalizeRuntimeStatus records the session outcome and writes it.
func FinalizeRuntimeStatus(result string) {
	RuntimeStatusMu.Lock()
	if RuntimeStatusPath == "" {
		RuntimeStatusMu.Unlock()
		return
	}
	Status.State = StateFinished
	Status.Result = result
	Status.Phase = model.PhaseIdle
	Status.ETASeconds = -1
	Status.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	RuntimeStatusMu.Unlock()
	WriteRuntimeStatus(true)
}

// WriteRuntimeStatus writes the current runtime status to disk.
// If force is false, writes are throttled to at most once per 250ms.
func WriteRuntimeStatus(force bool) {
	var (
		statusPath string
		statusSnap model.RuntimeStatus
	)

	RuntimeStatusMu.Lock()
	if RuntimeStatusPath == "" {
		RuntimeStatusMu.Unlock()
		return
	}
	now := time.Now()
	if !force && now.Sub(RuntimeStatusLastWrite) < 250*time.Millisecond {
		RuntimeStatusMu.Unlock()
		return
	}
	RuntimeStatusLastWrite = now
	statusPath = RuntimeStatusPath
	statusSnap = Status
	RuntimeStatusMu.Unlock()

	data, err := json.MarshalIndent(statusSnap, "", "  ")
	if err != nil {
		return
	}
	if err := WriteFileAtomic(statusPath, data, 0644); err != nil {
		RuntimeStatusWarnOnce.Do(func() {
			fmt.Fprintf(os.Stderr, "warning: failed to write runtime status: %v\n", err)
		})
	}
}

// PrintRuntimeStatus reads and displays the current runtime status.
func PrintRuntimeStatus() {
	status, err := ReadRuntimeStatus()
	if err != nil {
		statusPath, pathErr := GetRuntimeStatusPath()
		if pathErr != nil {
			fmt.Println("No runtime status available")
			return
		}
		if os.IsNotExist(err) {
			fmt.Printf("No runtime status found at %s\n", statusPath)
			return
		}
		fmt.Printf("Runtime status unavailable (%v)\n", err)
		return
	}
	ui.PrintHeader("Workshop Download Status")
	stateColor := ui.ColorGreen
	if status.State == StateStale {
		stateColor = ui.ColorYellow
	}
	ui.PrintKeyValue("State", status.State, stateColor)
	ui.PrintKeyValue("PID", fmt.Sprintf("%d", status.PID), ui.ColorCyan)
	ui.PrintKeyValue("Item", fmt.Sprintf("%s %s (%s)", status.Kind, status.ItemID, status.Label), ui.ColorCyan)
	ui.PrintKeyValue("Updated", describeTimestamp(status.UpdatedAt), ui.ColorCyan)
	if status.State == StateRunning {
		ui.PrintKeyValue("Phase", ui.DescribePhase(status.Phase), ui.ColorYellow)
		ui.PrintKeyValue("Progress", status.StatusLine, ui.ColorYellow)
		if status.Total > 0 {
			ui.PrintKeyValue("Size", fmt.Sprintf("%s of %s", humanize.IBytes(status.Downloaded), humanize.IBytes(status.Total)), ui.ColorYellow)
		}
		if status.ETASeconds >= 0 {
			ui.PrintKeyValue("ETA", (time.Duration(status.ETASeconds) * time.Second).String(), ui.ColorYellow)
		}
	}
	if status.Result != "" {
		ui.PrintKeyValue("Result", status.Result, ui.ColorYellow)
	}
}

func describeTimestamp(ts string) string {
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return fmt.Sprintf("%s (%s)", ts, humanize.Time(parsed))
}

// ReadRuntimeStatus reads the runtime status from disk and detects stale processes.
func ReadRuntimeStatus() (model.RuntimeStatus, error) {
	statusPath, err := GetRuntimeStatusPath()
	if err != nil {
		return model.RuntimeStatus{}, err
	}
	data, err := os.ReadFile(statusPath)
	if err != nil {
		return model.RuntimeStatus{}, err
	}
	var status model.RuntimeStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return model.RuntimeStatus{}, err
	}
	if status.State == StateRunning && status.PID > 0 && !IsProcessAlive(status.PID) {
		status.State = StateStale
		status.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		refreshed, marshalErr := json.MarshalIndent(status, "", "  ")
		if marshalErr == nil {
			_ = WriteFileAtomic(statusPath, refreshed, 0644)
		}
	}
	return status, nil
}

// ReadRuntimeControl reads the runtime control file from disk.
func ReadRuntimeControl() (model.RuntimeControl, error) {
	controlPath, err := GetRuntimeControlPath()
	if err != nil {
		return model.RuntimeControl{}, err
	}
	data, err := os.ReadFile(controlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RuntimeControl{}, nil
		}
		return model.RuntimeControl{}, err
	}
	var control model.RuntimeControl
	if err := json.Unmarshal(data, &control); err != nil {
		return model.RuntimeControl{}, err
	}
	return control, nil
}

// WriteRuntimeControl writes the runtime control file to disk.
func WriteRuntimeControl(control model.RuntimeControl) error {
	controlPath, err := GetRuntimeControlPath()
	if err != nil {
		return err
	}
	control.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(control, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(controlPath, data, 0644)
}

// WriteFileAtomic writes data to a file atomically using a temp file and rename.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// RequestRuntimeCancel sets the cancel flag in the runtime control file.
func RequestRuntimeCancel() error {
	control, err := ReadRuntimeControl()
	if err != nil {
		return err
	}
	control.Cancel = true
	return WriteRuntimeControl(control)
}

// CancelRequested reports whether another process asked this session to cancel.
func CancelRequested() bool {
	control, err := ReadRuntimeControl()
	return err == nil && control.Cancel
}

// ActiveSession returns the status of a live download session owned by a
// different process, if any.
func ActiveSession(currentPID int) (model.RuntimeStatus, bool) {
	status, err := ReadRuntimeStatus()
	if err != nil || status.State != StateRunning {
		return model.RuntimeStatus{}, false
	}
	if status.PID == currentPID || !IsProcessAlive(status.PID) {
		return model.RuntimeStatus{}, false
	}
	return status, true
}

// PrintActiveRuntimeHint warns the user if another download is already running.
func PrintActiveRuntimeHint(currentPID int) {
	if os.Getenv(DetachedEnvVar) == "1" {
		return
	}
	status, ok := ActiveSession(currentPID)
	if !ok {
		return
	}
	ui.PrintWarning(fmt.Sprintf("Active download detected (pid=%d, %s)", status.PID, status.Label))
	ui.PrintInfo("Use `workshop status` for progress, `workshop cancel` to stop it")
}
