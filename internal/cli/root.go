package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantlab/quantctl/internal/config"
	"github.com/quantlab/quantctl/internal/supervisor"
)

const defaultManifest = "quantctl.yaml"

func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *context) {
	var configFile string

	root := &cobra.Command{
		Use:   "quantctl",
		Short: "Lifecycle supervisor for the analyzer and API server",
	}

	root.PersistentFlags().
		StringVarP(&configFile, "file", "f", defaultManifest, "Path to the service manifest")

	ctx := &context{configFile: &configFile}
	root.AddCommand(newStartCmd(ctx))
	root.AddCommand(newStopCmd(ctx))
	root.AddCommand(newRestartCmd(ctx))
	root.AddCommand(newStatusCmd(ctx))
	root.AddCommand(newLogsCmd(ctx))
	root.AddCommand(newServeCmd(ctx))
	root.AddCommand(newTuiCmd(ctx))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, ctx
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type context struct {
	configFile *string

	mu  sync.Mutex
	cfg *config.Config
	sup *supervisor.Supervisor
}

// loadConfig reads the manifest, falling back to the built-in defaults
// when the default manifest name is absent.
func (c *context) loadConfig() (*config.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg != nil {
		return c.cfg, nil
	}

	cfg, err := config.Load(*c.configFile)
	if errors.Is(err, fs.ErrNotExist) && *c.configFile == defaultManifest {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *context) getSupervisor() (*supervisor.Supervisor, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sup == nil {
		c.sup = supervisor.New(cfg)
	}
	return c.sup, nil
}

// resolveServices maps command arguments to service names, defaulting to
// every configured service in start order.
func (c *context) resolveServices(args []string) ([]string, error) {
	sup, err := c.getSupervisor()
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return sup.Names(), nil
	}
	return args, nil
}
