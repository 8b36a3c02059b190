// Package config loads the service manifest describing the managed
// analyzer and API server processes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is the API server's listen port when neither the
	// manifest nor $PORT says otherwise.
	DefaultPort = 8000

	// apiServiceName is the service whose port honours the $PORT
	// environment override.
	apiServiceName = "api"
)

// Config is the root of the service manifest.
type Config struct {
	Dirs     Dirs                `yaml:"dirs"`
	Services map[string]*Service `yaml:"services"`
}

// Dirs names the working directories the launcher must ensure exist.
// Relative paths resolve against the manifest's directory.
type Dirs struct {
	Data string `yaml:"data"`
	Logs string `yaml:"logs"`
	Run  string `yaml:"run"`
}

// Service describes one managed process.
type Service struct {
	Command []string          `yaml:"command"`
	Workdir string            `yaml:"workdir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	Port    int               `yaml:"port,omitempty"`
	Log     string            `yaml:"log,omitempty"`
}

// Default returns the built-in manifest used when no file is present:
// the analyzer daemon and the API server of the analysis application,
// rooted in the current directory.
func Default() (*Config, error) {
	cfg := &Config{
		Dirs: Dirs{Data: "data", Logs: "logs", Run: "run"},
		Services: map[string]*Service{
			"analyzer": {
				Command: []string{"python3", "main.py", "--analyzer"},
			},
			apiServiceName: {
				Command: []string{"python3", "main.py", "--api-server"},
				Port:    DefaultPort,
			},
		},
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	if err := cfg.finalize(wd); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a manifest from the provided path.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}

	if err := cfg.finalize(filepath.Dir(absPath)); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	return &cfg, nil
}

// finalize applies defaults, expands environment references, resolves
// relative paths against baseDir and validates the result.
func (c *Config) finalize(baseDir string) error {
	if c.Dirs.Data == "" {
		c.Dirs.Data = "data"
	}
	if c.Dirs.Logs == "" {
		c.Dirs.Logs = "logs"
	}
	if c.Dirs.Run == "" {
		c.Dirs.Run = "run"
	}
	c.Dirs.Data = resolvePath(baseDir, os.ExpandEnv(c.Dirs.Data))
	c.Dirs.Logs = resolvePath(baseDir, os.ExpandEnv(c.Dirs.Logs))
	c.Dirs.Run = resolvePath(baseDir, os.ExpandEnv(c.Dirs.Run))

	if len(c.Services) == 0 {
		return fmt.Errorf("manifest defines no services")
	}

	for name, svc := range c.Services {
		if svc == nil {
			return fmt.Errorf("service %s: empty definition", name)
		}
		if len(svc.Command) == 0 {
			return fmt.Errorf("service %s: command is required", name)
		}
		for i, arg := range svc.Command {
			svc.Command[i] = os.ExpandEnv(arg)
		}
		if svc.Workdir != "" {
			svc.Workdir = resolvePath(baseDir, os.ExpandEnv(svc.Workdir))
		}
		for k, v := range svc.Env {
			svc.Env[k] = os.ExpandEnv(v)
		}
		if svc.Log == "" {
			svc.Log = filepath.Join(c.Dirs.Logs, name+".log")
		} else {
			svc.Log = resolvePath(baseDir, os.ExpandEnv(svc.Log))
		}
		if svc.Port < 0 || svc.Port > 65535 {
			return fmt.Errorf("service %s: port %d out of range", name, svc.Port)
		}
	}

	// The environment wins over the manifest for the API server's port.
	if svc, ok := c.Services[apiServiceName]; ok {
		if value := os.Getenv("PORT"); value != "" {
			port, err := strconv.Atoi(value)
			if err != nil || port < 1 || port > 65535 {
				return fmt.Errorf("invalid PORT environment value %q", value)
			}
			svc.Port = port
		} else if svc.Port == 0 {
			svc.Port = DefaultPort
		}
	}

	return nil
}

// ServicesSorted returns service names in deterministic start order.
func (c *Config) ServicesSorted() []string {
	names := make([]string, 0, len(c.Services))
	for name := range c.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filepath.Join(baseDir, path))
}
