package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantlab/quantctl/internal/api"
)

var newAPIServer = api.NewServer

func newServeCmd(ctx *context) *cobra.Command {
	var apiAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP control API for the managed services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.getSupervisor()
			if err != nil {
				return err
			}

			server, err := newAPIServer(api.Config{
				Addr:       apiAddr,
				Controller: newControlAPI(sup),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Control API listening on %s\n", server.Addr())
			return server.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&apiAddr, "addr", "", "Control API listen address (default 127.0.0.1:7663)")
	return cmd
}
