package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// supportsInteractiveOutput reports whether the command's stdout is a real
// terminal, which the TUI requires.
func supportsInteractiveOutput(cmd *cobra.Command) bool {
	file, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
