package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jmagar/workshop-cli/internal/model"
	"github.com/jmagar/workshop-cli/internal/notify"
	"github.com/jmagar/workshop-cli/internal/ui"
)

// console serializes terminal output between the live status line and log
// messages raised from acquisition goroutines.
type console struct {
	mu        sync.Mutex
	tty       bool
	lineShown bool
}

func (c *console) clearLineLocked() {
	if c.tty && c.lineShown {
		fmt.Print("\r\033[K")
		c.lineShown = false
	}
}

// Logf prints a progress message above the status line.
func (c *console) Logf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLineLocked()
	ui.PrintInfo(fmt.Sprintf(format, args...))
}

// Render draws state as the live status line. Non-terminal output gets no
// in-place line.
func (c *console) Render(state model.AcquisitionState) {
	if !c.tty || !state.Active {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ui.RenderStatus(state)
	c.lineShown = true
}

// Print runs fn with the status line cleared.
func (c *console) Print(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLineLocked()
	fn()
}

// terminalHost shows acquisition outcomes in the terminal and mirrors them to
// Gotify when configured.
type terminalHost struct {
	out     *console
	gameDir string
	push    notify.Notifier
}

func (h *terminalHost) ShowMessage(severity int, text string) {
	h.out.Print(func() { ui.PrintSeverity(severity, text) })
	if h.push == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.push(ctx, severity, "Steam Workshop", text); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

func (h *terminalHost) ReloadContent() {
	h.out.Logf("Workshop content folder: %s", h.gameDir)
}

func (h *terminalHost) Connect(addr string) {
	h.out.Print(func() {
		ui.PrintSuccess(fmt.Sprintf("Connecting to %s", addr))
		ui.PrintInfo(fmt.Sprintf("steam://connect/%s", addr))
	})
}
