//go:build !windows

package supervisor

import (
	"errors"
	"syscall"
)

// terminateProcess delivers SIGTERM to the recorded process. A process
// that exited between the liveness check and the signal is not an error.
func terminateProcess(pid int) error {
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}
	return nil
}
