package supervisor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/quantlab/quantctl/internal/config"
	"github.com/quantlab/quantctl/internal/pidfile"
)

var (
	ErrUnknownService = errors.New("unknown service")
	ErrAlreadyRunning = errors.New("service already running")
)

// Outcome describes what a stop request did for one service.
type Outcome int

const (
	// OutcomeStopped means the recorded process was alive and received
	// the termination signal.
	OutcomeStopped Outcome = iota
	// OutcomeNotRunning means a pid file existed but its process had
	// already exited; no signal was sent.
	OutcomeNotRunning
	// OutcomeNotFound means no pid file existed and nothing was done.
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStopped:
		return "stopped"
	case OutcomeNotRunning:
		return "not running"
	case OutcomeNotFound:
		return "not found"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Handle identifies a freshly started service.
type Handle struct {
	Name    string
	PID     int
	LogPath string
}

// StopResult pairs a stop outcome with the PID it applied to. PID is zero
// when no pid file was found.
type StopResult struct {
	Name    string
	Outcome Outcome
	PID     int
}

// Status is a point-in-time view of one managed service derived from its
// pid file.
type Status struct {
	Name      string
	Running   bool
	PID       int
	StartedAt time.Time
	LogPath   string
}

// Supervisor manages the lifecycle of the configured services. A single
// mutex serialises start and stop so concurrent control-API calls cannot
// race on the pid files.
type Supervisor struct {
	mu  sync.Mutex
	cfg *config.Config
}

// New constructs a Supervisor over the provided manifest.
func New(cfg *config.Config) *Supervisor {
	return &Supervisor{cfg: cfg}
}

// Names returns the managed service names in start order.
func (s *Supervisor) Names() []string {
	return s.cfg.ServicesSorted()
}

// EnsureDirs creates the data, log and run directories.
func (s *Supervisor) EnsureDirs() error {
	for _, dir := range []string{s.cfg.Dirs.Data, s.cfg.Dirs.Logs, s.cfg.Dirs.Run} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Start spawns the named service detached from the current session, with
// stdout and stderr appended to its log file, and records the child PID.
// Starting a service whose recorded process is still alive is refused; a
// stale pid file is overwritten.
func (s *Supervisor) Start(name string) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.cfg.Services[name]
	if !ok {
		return Handle{}, fmt.Errorf("%w: %s", ErrUnknownService, name)
	}

	if err := s.EnsureDirs(); err != nil {
		return Handle{}, err
	}

	pidPath := pidfile.Path(s.cfg.Dirs.Run, name)
	if pid, err := pidfile.Read(pidPath); err == nil && pidfile.Alive(pid) {
		return Handle{}, fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, name, pid)
	}

	pid, err := spawn(name, svc)
	if err != nil {
		return Handle{}, err
	}

	if err := pidfile.Write(pidPath, pid); err != nil {
		return Handle{}, fmt.Errorf("service %s: %w", name, err)
	}

	return Handle{Name: name, PID: pid, LogPath: svc.Log}, nil
}

// StartAll starts every configured service in order, stopping at the first
// failure.
func (s *Supervisor) StartAll() ([]Handle, error) {
	handles := make([]Handle, 0, len(s.cfg.Services))
	for _, name := range s.Names() {
		handle, err := s.Start(name)
		if err != nil {
			return handles, err
		}
		handles = append(handles, handle)
	}
	return handles, nil
}

// Stop reads the recorded PID for the named service and, if the process is
// alive, sends it the termination signal. Whenever a pid file was present
// it is removed, alive or not. A missing pid file is not an error.
func (s *Supervisor) Stop(name string) (StopResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cfg.Services[name]; !ok {
		return StopResult{}, fmt.Errorf("%w: %s", ErrUnknownService, name)
	}

	result := StopResult{Name: name}
	pidPath := pidfile.Path(s.cfg.Dirs.Run, name)
	pid, err := pidfile.Read(pidPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			result.Outcome = OutcomeNotFound
			return result, nil
		}
		// The file was present but unreadable; drop it so the next
		// start is not blocked by a corrupt record.
		_ = pidfile.Remove(pidPath)
		return result, fmt.Errorf("service %s: %w", name, err)
	}
	result.PID = pid

	if !pidfile.Alive(pid) {
		result.Outcome = OutcomeNotRunning
		if err := pidfile.Remove(pidPath); err != nil {
			return result, fmt.Errorf("service %s: %w", name, err)
		}
		return result, nil
	}

	if err := terminate(pid); err != nil {
		// The file was present, so it is removed regardless of whether
		// the signal could be delivered.
		_ = pidfile.Remove(pidPath)
		return result, fmt.Errorf("signal service %s (pid %d): %w", name, pid, err)
	}
	result.Outcome = OutcomeStopped
	if err := pidfile.Remove(pidPath); err != nil {
		return result, fmt.Errorf("service %s: %w", name, err)
	}
	return result, nil
}

// terminate delivers the stop signal; a variable so tests can stand in
// for signal delivery failures.
var terminate = terminateProcess

// StopAll stops every configured service in reverse start order, carrying
// on past individual failures and reporting the first error encountered.
func (s *Supervisor) StopAll() ([]StopResult, error) {
	names := s.Names()
	results := make([]StopResult, 0, len(names))
	var firstErr error
	for i := len(names) - 1; i >= 0; i-- {
		result, err := s.Stop(names[i])
		if err != nil && firstErr == nil {
			firstErr = err
		}
		results = append(results, result)
	}
	return results, firstErr
}

// Status reports the current state of the named service based on its pid
// file. StartedAt is derived from the pid file's modification time.
func (s *Supervisor) Status(name string) (Status, error) {
	svc, ok := s.cfg.Services[name]
	if !ok {
		return Status{}, fmt.Errorf("%w: %s", ErrUnknownService, name)
	}

	status := Status{Name: name, LogPath: svc.Log}
	pidPath := pidfile.Path(s.cfg.Dirs.Run, name)
	pid, err := pidfile.Read(pidPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return status, nil
		}
		return status, fmt.Errorf("service %s: %w", name, err)
	}

	status.PID = pid
	status.Running = pidfile.Alive(pid)
	if info, err := os.Stat(pidPath); err == nil {
		status.StartedAt = info.ModTime()
	}
	return status, nil
}

// LogPath returns the log file location for the named service.
func (s *Supervisor) LogPath(name string) (string, error) {
	svc, ok := s.cfg.Services[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownService, name)
	}
	return svc.Log, nil
}
