//go:build windows

package pidfile

import "os"

// Alive reports whether a process with the given PID currently exists.
// Windows offers no signal-0 equivalent, so this is a best-effort check
// against the process table.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	proc.Release()
	return true
}
