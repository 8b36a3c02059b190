package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRestartCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart [service...]",
		Short: "Stop and start the managed services",
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.getSupervisor()
			if err != nil {
				return err
			}
			names, err := ctx.resolveServices(args)
			if err != nil {
				return err
			}
			for _, name := range names {
				result, err := sup.Stop(name)
				if err != nil {
					return err
				}
				printStopResult(cmd.OutOrStdout(), result)
				handle, err := sup.Start(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started %s (pid %d), logging to %s\n",
					handle.Name, handle.PID, handle.LogPath)
			}
			return nil
		},
	}
	return cmd
}
