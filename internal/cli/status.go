package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab/quantctl/internal/supervisor"
)

func newStatusCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Display a summary of the managed services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.getSupervisor()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tSTATE\tPID\tUPTIME\tLOG")
			for _, name := range sup.Names() {
				status, err := sup.Status(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					status.Name,
					formatState(status),
					formatPID(status),
					formatUptime(status),
					status.LogPath)
			}
			return w.Flush()
		},
	}
	return cmd
}

func formatState(status supervisor.Status) string {
	if status.Running {
		return "Running"
	}
	if status.PID != 0 {
		return "Dead"
	}
	return "Stopped"
}

func formatPID(status supervisor.Status) string {
	if status.PID == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", status.PID)
}

func formatUptime(status supervisor.Status) string {
	if !status.Running || status.StartedAt.IsZero() {
		return "-"
	}
	uptime := time.Since(status.StartedAt)
	if uptime < 0 {
		uptime = 0
	}
	return uptime.Truncate(time.Second).String()
}
