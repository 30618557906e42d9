// Package status holds the shared acquisition state read by the presentation
// layer and written by the orchestrator and progress monitor.
package status

import (
	"sync"

	"github.com/jmagar/workshop-cli/internal/model"
)

// Cell is a mutex-guarded AcquisitionState. Readers always receive a
// complete snapshot.
type Cell struct {
	mu    sync.Mutex
	state model.AcquisitionState
}

// NewCell returns a cell holding the idle state.
func NewCell() *Cell {
	return &Cell{state: model.IdleState()}
}

// Copy returns a snapshot of the current state.
func (c *Cell) Copy() model.AcquisitionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Update replaces the whole state. Last writer wins.
func (c *Cell) Update(state model.AcquisitionState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Access runs fn with the state under the lock. fn must not call back into the cell.
func (c *Cell) Access(fn func(*model.AcquisitionState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
}

// Clear resets the cell to the idle state, dropping any pending cancel action.
func (c *Cell) Clear() {
	c.Update(model.IdleState())
}

// Cancel detaches the pending cancel action and runs it outside the lock.
// Concurrent callers race for the action; it runs at most once.
// Returns true when an action ran.
func (c *Cell) Cancel() bool {
	c.mu.Lock()
	action := c.state.OnCancel
	c.state.OnCancel = model.Action{}
	c.mu.Unlock()

	if !action.IsSet() {
		return false
	}
	action.Invoke()
	return true
}
