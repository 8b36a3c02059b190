package supervisor

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/quantlab/quantctl/internal/config"
)

// spawn launches one service in its own session with stdout and stderr
// appended to the service log file, returning the child PID.
func spawn(name string, svc *config.Service) (int, error) {
	cmd := exec.Command(svc.Command[0], svc.Command[1:]...)
	if svc.Workdir != "" {
		cmd.Dir = svc.Workdir
	}

	env := os.Environ()
	for k, v := range svc.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	if svc.Port > 0 {
		env = append(env, fmt.Sprintf("PORT=%d", svc.Port))
	}
	cmd.Env = env

	logFile, err := os.OpenFile(svc.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("service %s: open log: %w", name, err)
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	configureCmdSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return 0, fmt.Errorf("start service %s: %w", name, err)
	}
	// The child holds its own descriptor now.
	logFile.Close()

	pid := cmd.Process.Pid

	// Reap the child if it exits while this invocation is still running;
	// once we exit, the pid file is the only remaining handle.
	go func() {
		_ = cmd.Wait()
	}()

	return pid, nil
}
