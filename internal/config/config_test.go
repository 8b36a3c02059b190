package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadValidManifest(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ANALYZER_FLAG", "--analyzer")

	manifest := []byte(`dirs:
  data: state/data
  logs: state/logs
  run: state/run
services:
  analyzer:
    command: [python3, main.py, "${ANALYZER_FLAG}"]
    workdir: app
  api:
    command: [python3, main.py, --api-server]
    port: 9000
    env:
      PYTHONUNBUFFERED: "1"
`)
	path := filepath.Join(dir, "quantctl.yaml")
	if err := os.WriteFile(path, manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if got, want := cfg.Dirs.Run, filepath.Join(dir, "state", "run"); got != want {
		t.Fatalf("unexpected run dir: got %q want %q", got, want)
	}

	analyzer := cfg.Services["analyzer"]
	if analyzer == nil {
		t.Fatalf("analyzer service missing")
	}
	if got, want := analyzer.Command[2], "--analyzer"; got != want {
		t.Fatalf("env expansion failed: got %q want %q", got, want)
	}
	if got, want := analyzer.Workdir, filepath.Join(dir, "app"); got != want {
		t.Fatalf("unexpected workdir: got %q want %q", got, want)
	}
	if got, want := analyzer.Log, filepath.Join(dir, "state", "logs", "analyzer.log"); got != want {
		t.Fatalf("unexpected log path: got %q want %q", got, want)
	}

	api := cfg.Services["api"]
	if api == nil {
		t.Fatalf("api service missing")
	}
	if api.Port != 9000 {
		t.Fatalf("unexpected api port: got %d want %d", api.Port, 9000)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quantctl.yaml")
	manifest := []byte(`services:
  analyzer:
    command: [sleep, "1"]
    replicas: 3
`)
	if err := os.WriteFile(path, manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestLoadRejectsMissingCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quantctl.yaml")
	manifest := []byte(`services:
  analyzer: {}
`)
	if err := os.WriteFile(path, manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "command is required") {
		t.Fatalf("expected command requirement error, got %v", err)
	}
}

func TestPortEnvironmentOverride(t *testing.T) {
	t.Setenv("PORT", "9100")

	path := filepath.Join(t.TempDir(), "quantctl.yaml")
	manifest := []byte(`services:
  api:
    command: [python3, main.py, --api-server]
    port: 8000
`)
	if err := os.WriteFile(path, manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.Services["api"].Port; got != 9100 {
		t.Fatalf("PORT override ignored: got %d want %d", got, 9100)
	}
}

func TestPortEnvironmentOverrideRejectsGarbage(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	path := filepath.Join(t.TempDir(), "quantctl.yaml")
	manifest := []byte(`services:
  api:
    command: [python3, main.py, --api-server]
`)
	if err := os.WriteFile(path, manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected invalid PORT error")
	}
}

func TestDefaultManifest(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}

	names := cfg.ServicesSorted()
	if len(names) != 2 || names[0] != "analyzer" || names[1] != "api" {
		t.Fatalf("unexpected default services: %v", names)
	}
	if got := cfg.Services["api"].Port; got != DefaultPort {
		t.Fatalf("unexpected default port: got %d want %d", got, DefaultPort)
	}
	for _, name := range names {
		svc := cfg.Services[name]
		if len(svc.Command) == 0 {
			t.Fatalf("default service %s has no command", name)
		}
		if svc.Log == "" {
			t.Fatalf("default service %s has no log path", name)
		}
	}
	if !filepath.IsAbs(cfg.Dirs.Run) {
		t.Fatalf("default run dir not resolved: %q", cfg.Dirs.Run)
	}
}
