//go:build !windows

package runtime

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// CancelProcessByPID asks the process with the given PID to stop with SIGTERM,
// or kills it outright when force is set.
func CancelProcessByPID(pid int, force bool) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid: %d", pid)
	}
	sig := unix.SIGTERM
	if force {
		sig = unix.SIGKILL
	}
	if err := unix.Kill(pid, sig); err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}
	return nil
}
