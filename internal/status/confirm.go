package status

import (
	"sync"

	"github.com/jmagar/workshop-cli/internal/model"
)

// ConfirmCell holds at most one outstanding ConfirmationRequest.
type ConfirmCell struct {
	mu  sync.Mutex
	req model.ConfirmationRequest
}

// Show raises a confirmation, superseding any outstanding one.
func (c *ConfirmCell) Show(title, message string, onAccept func()) {
	c.mu.Lock()
	c.req = model.ConfirmationRequest{
		Active:   true,
		Title:    title,
		Message:  message,
		OnAccept: model.NewAction(model.ActionAccept, onAccept),
	}
	c.mu.Unlock()
}

// Copy returns a snapshot of the outstanding request.
func (c *ConfirmCell) Copy() model.ConfirmationRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.req
}

// Accept takes and clears the request, then runs its accept action.
// Returns false when nothing was outstanding.
func (c *ConfirmCell) Accept() bool {
	c.mu.Lock()
	req := c.req
	c.req = model.ConfirmationRequest{}
	c.mu.Unlock()

	if !req.Active {
		return false
	}
	req.OnAccept.Invoke()
	return true
}

// Decline clears the request without running it.
func (c *ConfirmCell) Decline() {
	c.mu.Lock()
	c.req = model.ConfirmationRequest{}
	c.mu.Unlock()
}
