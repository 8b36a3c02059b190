package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantlab/quantctl/internal/tui"
)

func newTuiCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive status interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !supportsInteractiveOutput(cmd) {
				return fmt.Errorf("tui requires an interactive terminal")
			}

			sup, err := ctx.getSupervisor()
			if err != nil {
				return err
			}

			return tui.New(sup).Run(cmd.Context())
		},
	}
	return cmd
}
