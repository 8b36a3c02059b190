package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/quantlab/quantctl/internal/supervisor"
)

func newStopCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop [service...]",
		Short: "Stop the managed services and clear their pid files",
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.getSupervisor()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				results, err := sup.StopAll()
				for _, result := range results {
					printStopResult(cmd.OutOrStdout(), result)
				}
				return err
			}
			// Shut down in reverse argument order.
			for i := len(args) - 1; i >= 0; i-- {
				result, err := sup.Stop(args[i])
				if err != nil {
					return err
				}
				printStopResult(cmd.OutOrStdout(), result)
			}
			return nil
		},
	}
	return cmd
}

func printStopResult(out io.Writer, result supervisor.StopResult) {
	switch result.Outcome {
	case supervisor.OutcomeStopped:
		fmt.Fprintf(out, "Stopped %s (pid %d)\n", result.Name, result.PID)
	case supervisor.OutcomeNotRunning:
		fmt.Fprintf(out, "%s: not running, removed stale pid file (pid %d)\n", result.Name, result.PID)
	case supervisor.OutcomeNotFound:
		fmt.Fprintf(out, "%s: pid file not found\n", result.Name)
	}
}
