// Command macroctl exercises the macro interpreter outside of the GUI it
// is normally embedded in: parse an expression, inspect the capabilities
// it would advertise, run it against a logging sink, or poke the
// cross-process variable store directly.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "macroctl",
		Short:         "Inspect and run macro-language expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newParseCmd())
	root.AddCommand(newCapsCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newStoreCmd())

	return root
}
