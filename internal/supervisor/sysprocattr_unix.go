//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureCmdSysProcAttr detaches the child into its own session so it
// survives the launching invocation and any controlling terminal.
func configureCmdSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
