//go:build windows

package supervisor

import "os"

// terminateProcess ends the recorded process. Windows has no SIGTERM
// delivery for unrelated processes, so this falls back to killing the
// direct child.
func terminateProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	defer proc.Release()
	return proc.Kill()
}
