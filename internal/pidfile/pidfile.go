// Package pidfile persists process identifiers for the managed services.
//
// A pid file holds the decimal PID of one service and nothing else. It is
// written by the launcher once the child has started and is read back by
// later invocations to check liveness or deliver a termination signal.
package pidfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Path returns the pid file location for a service inside the run directory.
func Path(dir, name string) string {
	return filepath.Join(dir, name+".pid")
}

// Write records pid at path, replacing any previous contents.
func Write(path string, pid int) error {
	data := []byte(strconv.Itoa(pid) + "\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// Read returns the PID recorded at path. A missing file surfaces the
// underlying fs.ErrNotExist so callers can distinguish "never started"
// from a corrupt record.
func Read(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(string(bytes.TrimSpace(data)))
	if err != nil {
		return 0, fmt.Errorf("%s: malformed pid file: %w", path, err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("%s: malformed pid file: pid %d out of range", path, pid)
	}
	return pid, nil
}

// Remove deletes the pid file. Removing an already-absent file is not an
// error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}
