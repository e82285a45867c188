package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/keymacro/keymacro/core/symbols"
	"github.com/keymacro/keymacro/pkgs/parser"
	"github.com/keymacro/keymacro/runtime"
	"github.com/keymacro/keymacro/runtime/emit"
)

func newRunCmd() *cobra.Command {
	var holdMs int

	cmd := &cobra.Command{
		Use:   "run <expr>",
		Short: "Run a macro expression against a logging sink",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := parser.Parse(args[0])
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(cmd.OutOrStdout(), &slog.HandlerOptions{Level: slog.LevelDebug}))
			sink := &emit.LogSink{Logger: logger}

			err = runtime.Run(tree, symbols.Global(), runtime.RunOptions{
				MappingID: "macroctl",
				Hold:      time.Duration(holdMs) * time.Millisecond,
				Sink:      sink,
			})
			if err != nil {
				return fmt.Errorf("macroctl: run: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&holdMs, "hold", 0, "how long to hold the simulated key down, in milliseconds")
	return cmd
}
