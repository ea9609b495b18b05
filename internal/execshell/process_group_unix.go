//go:build unix

package execshell

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// isolateProcessGroup starts the process as the leader of a new process group and kills the group on cancellation.
func isolateProcessGroup(process *exec.Cmd) {
	process.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	process.Cancel = func() error {
		killError := syscall.Kill(-process.Process.Pid, syscall.SIGKILL)
		if errors.Is(killError, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return killError
	}
}
