package steamcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// ForcedKillExitCode is STATUS_CONTROL_C_EXIT, reported when the console is
// closed or the process is force-terminated.
const ForcedKillExitCode uint32 = 0xC000013A

// ErrAlreadyRunning is returned when Run is called while a child is running.
var ErrAlreadyRunning = errors.New("steamcmd process already running")

// ExitOutcome describes how a child process ended.
type ExitOutcome struct {
	Code      int
	Elapsed   time.Duration
	Cancelled bool
}

// Supervisor runs one child at a time and can hard-kill it from any goroutine.
type Supervisor struct {
	// Output receives the child's stdout and stderr when hidden. Nil discards.
	Output io.Writer

	mu                 sync.Mutex
	cmd                *exec.Cmd
	tree               *processTree
	terminateRequested bool
}

// Run starts toolPath and blocks until it exits. Cancelling ctx terminates
// the child. A start failure is returned as an error.
func (s *Supervisor) Run(ctx context.Context, toolPath string, args []string, hidden bool) (ExitOutcome, error) {
	if err := ctx.Err(); err != nil {
		return ExitOutcome{Cancelled: true}, nil
	}

	cmd := exec.Command(toolPath, args...)
	cmd.Dir = filepath.Dir(toolPath)
	if hidden {
		out := s.Output
		if out == nil {
			out = io.Discard
		}
		cmd.Stdout = out
		cmd.Stderr = out
	} else {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	cmd.WaitDelay = 2 * time.Second
	configureCmd(cmd, hidden)

	s.mu.Lock()
	if s.cmd != nil {
		s.mu.Unlock()
		return ExitOutcome{}, ErrAlreadyRunning
	}
	s.terminateRequested = false
	start := time.Now()
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return ExitOutcome{}, fmt.Errorf("start %s: %w", toolPath, err)
	}
	s.cmd = cmd
	s.tree = newProcessTree(cmd.Process)
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { s.Terminate() })
	waitErr := cmd.Wait()
	stop()
	elapsed := time.Since(start)

	s.mu.Lock()
	requested := s.terminateRequested
	s.tree.release()
	s.tree = nil
	s.cmd = nil
	s.terminateRequested = false
	s.mu.Unlock()

	code, err := exitCode(waitErr)
	outcome := ExitOutcome{
		Code:      code,
		Elapsed:   elapsed,
		Cancelled: isCancelledExit(code, requested),
	}
	if err != nil && !outcome.Cancelled {
		return outcome, fmt.Errorf("wait %s: %w", toolPath, err)
	}
	return outcome, nil
}

// Terminate hard-kills the running child, if any. It returns false when
// nothing was running.
func (s *Supervisor) Terminate() bool {
	s.mu.Lock()
	if s.cmd == nil || s.tree == nil {
		s.mu.Unlock()
		return false
	}
	s.terminateRequested = true
	tree := s.tree
	s.mu.Unlock()

	tree.kill()
	return true
}

// Running reports whether a child is currently registered.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

// isCancelledExit reports whether an exit counts as a user cancel. A requested
// termination wins over whatever code the killed process reported.
func isCancelledExit(code int, terminateRequested bool) bool {
	return terminateRequested || uint32(code) == ForcedKillExitCode
}

func exitCode(waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, waitErr
}
