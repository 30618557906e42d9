//go:build windows

package steamcmd

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

func configureCmd(cmd *exec.Cmd, hidden bool) {
	if !hidden {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}

// processTree groups the child and anything it spawns in a job object so a
// relaunched steamcmd.exe is killed with it. Processes started before the
// child joins the job escape it. Without a job only the child is killed.
type processTree struct {
	proc *os.Process
	job  windows.Handle
}

func newProcessTree(p *os.Process) *processTree {
	t := &processTree{proc: p}
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return t
	}
	h, err := windows.OpenProcess(windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE, false, uint32(p.Pid))
	if err != nil {
		_ = windows.CloseHandle(job)
		return t
	}
	defer windows.CloseHandle(h)
	if err := windows.AssignProcessToJobObject(job, h); err != nil {
		_ = windows.CloseHandle(job)
		return t
	}
	t.job = job
	return t
}

func (t *processTree) kill() {
	if t.job != 0 && windows.TerminateJobObject(t.job, ForcedKillExitCode) == nil {
		return
	}
	_ = t.proc.Kill()
}

// release closes the job handle. Survivors keep running.
func (t *processTree) release() {
	if t.job != 0 {
		_ = windows.CloseHandle(t.job)
		t.job = 0
	}
}
