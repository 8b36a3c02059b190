//go:build windows

package supervisor

import "os/exec"

func configureCmdSysProcAttr(cmd *exec.Cmd) {}
