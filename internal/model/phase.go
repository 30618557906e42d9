package model

import (
	"fmt"
	"sync"
)

// Phase names a stage of the acquisition lifecycle.
type Phase string

// Phase constants for acquisition lifecycle tracking
const (
	PhaseIdle     Phase = ""         // No acquisition in progress
	PhaseInstall  Phase = "install"  // Ensuring SteamCMD is installed
	PhaseSetup    Phase = "setup"    // Clearing stale state, wiring cancel
	PhaseWarmup   Phase = "warmup"   // Tool running, no payload bytes yet
	PhaseActive   Phase = "active"   // Payload bytes growing
	PhaseFinalize Phase = "finalize" // Moving content into the game folder
)

// PhaseTracker records the current phase with transition validation.
type PhaseTracker struct {
	mu      sync.Mutex
	current Phase
}

// Current returns the current phase.
func (t *PhaseTracker) Current() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Set moves to phase. Returns an error if the transition is invalid.
// Thread-safe: acquires mutex internally.
func (t *PhaseTracker) Set(phase Phase) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !IsValidTransition(t.current, phase) {
		return fmt.Errorf("invalid phase transition: %q -> %q", t.current, phase)
	}
	t.current = phase
	return nil
}

// IsValidTransition checks if a phase transition is allowed.
func IsValidTransition(from, to Phase) bool {
	// Any phase may abort back to idle
	if to == PhaseIdle {
		return true
	}

	switch from {
	case PhaseIdle:
		return to == PhaseInstall
	case PhaseInstall:
		return to == PhaseSetup
	case PhaseSetup:
		return to == PhaseWarmup
	case PhaseWarmup:
		return to == PhaseActive || to == PhaseFinalize
	case PhaseActive:
		return to == PhaseWarmup || to == PhaseFinalize
	case PhaseFinalize:
		return false
	default:
		return false
	}
}
