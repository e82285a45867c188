package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keymacro/keymacro/core/varstore"
)

func newStoreCmd() *cobra.Command {
	var socketPath string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Talk to a varstore broker over a Unix socket",
	}
	cmd.PersistentFlags().StringVar(&socketPath, "socket", "/tmp/macroctl-varstore.sock", "path to the broker's Unix socket")

	getCmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Get a shared variable's current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := varstore.NewClient(socketPath)
			value, ok := client.Get(args[0])
			if !ok {
				return fmt.Errorf("macroctl: %q is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Set a shared variable's value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := varstore.NewClient(socketPath)
			client.Set(args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(getCmd, setCmd)
	return cmd
}
