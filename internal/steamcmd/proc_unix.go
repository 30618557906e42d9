//go:build !windows

package steamcmd

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureCmd puts the child in its own process group so the whole tree
// (steamcmd.sh and the steamcmd binary it execs) can be killed together.
func configureCmd(cmd *exec.Cmd, hidden bool) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// processTree is the child's process group.
type processTree struct {
	proc *os.Process
}

func newProcessTree(p *os.Process) *processTree {
	return &processTree{proc: p}
}

func (t *processTree) kill() {
	if err := unix.Kill(-t.proc.Pid, unix.SIGKILL); err != nil {
		_ = t.proc.Kill()
	}
}

func (t *processTree) release() {}
