//go:build windows

package runtime

import (
	"fmt"
	"os"
)

// CancelProcessByPID kills the process with the given PID on Windows. There is
// no graceful signal, so force makes no difference.
func CancelProcessByPID(pid int, _ bool) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid: %d", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
