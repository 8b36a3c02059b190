//go:build !windows

package pidfile

import (
	"errors"
	"syscall"
)

// Alive reports whether a process with the given PID currently exists.
// Signal 0 performs the existence check without delivering anything; EPERM
// means the process exists but belongs to another user.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
