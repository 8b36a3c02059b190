package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/quantlab/quantctl/internal/supervisor"
)

func newStartCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [service...]",
		Short: "Start the managed services and record their PIDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.getSupervisor()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				handles, err := sup.StartAll()
				for _, handle := range handles {
					printStarted(cmd.OutOrStdout(), handle)
				}
				return err
			}
			for _, name := range args {
				handle, err := sup.Start(name)
				if err != nil {
					return err
				}
				printStarted(cmd.OutOrStdout(), handle)
			}
			return nil
		},
	}
	return cmd
}

func printStarted(out io.Writer, handle supervisor.Handle) {
	fmt.Fprintf(out, "Started %s (pid %d), logging to %s\n",
		handle.Name, handle.PID, handle.LogPath)
}
