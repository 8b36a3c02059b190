package supervisor

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	stdruntime "runtime"
	"strings"
	"testing"
	"time"

	"github.com/quantlab/quantctl/internal/config"
	"github.com/quantlab/quantctl/internal/pidfile"
)

func newTestSupervisor(t *testing.T, commands map[string][]string) *Supervisor {
	t.Helper()
	if stdruntime.GOOS == "windows" {
		t.Skip("supervisor tests skipped on windows")
	}

	dir := t.TempDir()
	if commands == nil {
		commands = map[string][]string{
			"analyzer": {"/bin/sh", "-c", "sleep 30"},
			"api":      {"/bin/sh", "-c", "sleep 30"},
		}
	}

	services := make(map[string]*config.Service, len(commands))
	for name, command := range commands {
		services[name] = &config.Service{
			Command: command,
			Log:     filepath.Join(dir, "logs", name+".log"),
		}
	}

	cfg := &config.Config{
		Dirs: config.Dirs{
			Data: filepath.Join(dir, "data"),
			Logs: filepath.Join(dir, "logs"),
			Run:  filepath.Join(dir, "run"),
		},
		Services: services,
	}

	sup := New(cfg)
	t.Cleanup(func() {
		_, _ = sup.StopAll()
	})
	return sup
}

func waitForExit(t *testing.T, pid int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for pidfile.Alive(pid) {
		if time.Now().After(deadline) {
			t.Fatalf("process %d still alive after stop", pid)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestEnsureDirsCreatesWorkingDirectories(t *testing.T) {
	sup := newTestSupervisor(t, nil)

	if err := sup.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs returned error: %v", err)
	}
	for _, dir := range []string{sup.cfg.Dirs.Data, sup.cfg.Dirs.Logs, sup.cfg.Dirs.Run} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
}

func TestStartRecordsMatchingPids(t *testing.T) {
	sup := newTestSupervisor(t, nil)

	handles, err := sup.StartAll()
	if err != nil {
		t.Fatalf("StartAll returned error: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("expected 2 handles, got %d", len(handles))
	}

	for _, handle := range handles {
		recorded, err := pidfile.Read(pidfile.Path(sup.cfg.Dirs.Run, handle.Name))
		if err != nil {
			t.Fatalf("read pid file for %s: %v", handle.Name, err)
		}
		if recorded != handle.PID {
			t.Fatalf("service %s: recorded pid %d does not match spawned pid %d", handle.Name, recorded, handle.PID)
		}
		if !pidfile.Alive(handle.PID) {
			t.Fatalf("service %s: spawned pid %d not alive", handle.Name, handle.PID)
		}
	}
}

func TestStartThenStopLeavesNoPidFiles(t *testing.T) {
	sup := newTestSupervisor(t, nil)

	if _, err := sup.StartAll(); err != nil {
		t.Fatalf("StartAll returned error: %v", err)
	}
	results, err := sup.StopAll()
	if err != nil {
		t.Fatalf("StopAll returned error: %v", err)
	}
	for _, result := range results {
		if result.Outcome != OutcomeStopped {
			t.Fatalf("service %s: unexpected outcome %v", result.Name, result.Outcome)
		}
	}

	entries, err := os.ReadDir(sup.cfg.Dirs.Run)
	if err != nil {
		t.Fatalf("read run dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".pid") {
			t.Fatalf("pid file %s left behind after stop", entry.Name())
		}
	}
}

func TestStopWithoutPidFileReportsNotFound(t *testing.T) {
	sup := newTestSupervisor(t, nil)

	result, err := sup.Stop("analyzer")
	if err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if result.Outcome != OutcomeNotFound {
		t.Fatalf("unexpected outcome: got %v want %v", result.Outcome, OutcomeNotFound)
	}
}

func TestStopStalePidFileReportsNotRunning(t *testing.T) {
	sup := newTestSupervisor(t, nil)
	if err := sup.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs returned error: %v", err)
	}

	// Record the pid of a child that has already been reaped.
	child := exec.Command("/bin/sh", "-c", "exit 0")
	if err := child.Start(); err != nil {
		t.Fatalf("start child: %v", err)
	}
	stalePid := child.Process.Pid
	if err := child.Wait(); err != nil {
		t.Fatalf("wait child: %v", err)
	}

	path := pidfile.Path(sup.cfg.Dirs.Run, "analyzer")
	if err := pidfile.Write(path, stalePid); err != nil {
		t.Fatalf("write stale pid file: %v", err)
	}

	result, err := sup.Stop("analyzer")
	if err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if result.Outcome != OutcomeNotRunning {
		t.Fatalf("unexpected outcome: got %v want %v", result.Outcome, OutcomeNotRunning)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("stale pid file not removed: %v", err)
	}
}

func TestStopTerminatesProcess(t *testing.T) {
	sup := newTestSupervisor(t, nil)

	handle, err := sup.Start("analyzer")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	result, err := sup.Stop("analyzer")
	if err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if result.Outcome != OutcomeStopped {
		t.Fatalf("unexpected outcome: got %v want %v", result.Outcome, OutcomeStopped)
	}
	if result.PID != handle.PID {
		t.Fatalf("stop reported pid %d, started pid %d", result.PID, handle.PID)
	}

	waitForExit(t, handle.PID)
}

func TestStartWhileRunningRefuses(t *testing.T) {
	sup := newTestSupervisor(t, nil)

	if _, err := sup.Start("api"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := sup.Start("api"); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestStartUnknownService(t *testing.T) {
	sup := newTestSupervisor(t, nil)

	if _, err := sup.Start("reporter"); !errors.Is(err, ErrUnknownService) {
		t.Fatalf("expected ErrUnknownService, got %v", err)
	}
	if _, err := sup.Stop("reporter"); !errors.Is(err, ErrUnknownService) {
		t.Fatalf("expected ErrUnknownService, got %v", err)
	}
}

func TestStartRedirectsOutputToLogFile(t *testing.T) {
	sup := newTestSupervisor(t, map[string][]string{
		"analyzer": {"/bin/sh", "-c", "echo started; echo oops >&2"},
	})

	handle, err := sup.Start("analyzer")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		data, err := os.ReadFile(handle.LogPath)
		if err == nil && strings.Contains(string(data), "started") && strings.Contains(string(data), "oops") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("log file %s missing redirected output: %q (%v)", handle.LogPath, data, err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestStopRemovesPidFileWhenSignalFails(t *testing.T) {
	sup := newTestSupervisor(t, nil)
	if err := sup.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs returned error: %v", err)
	}

	originalTerminate := terminate
	terminate = func(int) error {
		return errors.New("operation not permitted")
	}
	t.Cleanup(func() { terminate = originalTerminate })

	// A live pid ensures Stop reaches the signalling path.
	path := pidfile.Path(sup.cfg.Dirs.Run, "analyzer")
	if err := pidfile.Write(path, os.Getpid()); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	if _, err := sup.Stop("analyzer"); err == nil {
		t.Fatalf("expected signal failure to surface")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("pid file not removed after signal failure: %v", err)
	}
}

func TestStatusReflectsLifecycle(t *testing.T) {
	sup := newTestSupervisor(t, nil)

	status, err := sup.Status("analyzer")
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status.Running || status.PID != 0 {
		t.Fatalf("expected stopped status before start, got %+v", status)
	}

	handle, err := sup.Start("analyzer")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	status, err = sup.Status("analyzer")
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if !status.Running {
		t.Fatalf("expected running status after start, got %+v", status)
	}
	if status.PID != handle.PID {
		t.Fatalf("status pid %d does not match handle pid %d", status.PID, handle.PID)
	}
	if status.StartedAt.IsZero() {
		t.Fatalf("expected StartedAt to be set")
	}

	if _, err := sup.Stop("analyzer"); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	waitForExit(t, handle.PID)

	status, err = sup.Status("analyzer")
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status.Running {
		t.Fatalf("expected stopped status after stop, got %+v", status)
	}
}
