package main

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/keymacro/keymacro/core/symbols"
	"github.com/keymacro/keymacro/pkgs/parser"
)

func newCapsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "caps <expr>",
		Short: "Print the (event type, code) pairs a macro might ever emit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := parser.Parse(args[0])
			if err != nil {
				return err
			}

			caps := tree.Capabilities(symbols.Global())

			switch format {
			case "", "text":
				return writeCapsText(cmd, caps)
			case "cbor":
				return writeCapsCBOR(cmd, caps)
			default:
				return fmt.Errorf("macroctl: unknown --format %q (want text or cbor)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or cbor")
	return cmd
}

// capsWire is the canonical payload a virtual-device pre-registration
// step would consume: event type -> sorted event codes.
type capsWire map[int][]int

func writeCapsText(cmd *cobra.Command, caps map[int]map[int]struct{}) error {
	types := make([]int, 0, len(caps))
	for t := range caps {
		types = append(types, t)
	}
	sort.Ints(types)

	out := cmd.OutOrStdout()
	for _, t := range types {
		codes := sortedCodes(caps[t])
		fmt.Fprintf(out, "type %d: %v\n", t, codes)
	}
	return nil
}

func writeCapsCBOR(cmd *cobra.Command, caps map[int]map[int]struct{}) error {
	wire := make(capsWire, len(caps))
	for t, codes := range caps {
		wire[t] = sortedCodes(codes)
	}

	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return fmt.Errorf("macroctl: build cbor encoder: %w", err)
	}
	data, err := enc.Marshal(wire)
	if err != nil {
		return fmt.Errorf("macroctl: encode capabilities: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func sortedCodes(codes map[int]struct{}) []int {
	out := make([]int, 0, len(codes))
	for c := range codes {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}
