package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keymacro/keymacro/core/ast"
	"github.com/keymacro/keymacro/pkgs/parser"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <expr>",
		Short: "Parse a macro expression and print its tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := parser.Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dump(tree, 0))
			return nil
		},
	}
}

// dump renders tree as an indented s-expression; it exists purely for
// macroctl's own output and carries no parsing or evaluation meaning.
func dump(n *ast.Node, depth int) string {
	if n == nil {
		return strings.Repeat("  ", depth) + "<nil>"
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Op.String())
	for _, v := range n.Values {
		fmt.Fprintf(&b, " %s", v.String())
	}
	for _, child := range n.Children {
		b.WriteByte('\n')
		b.WriteString(dump(child, depth+1))
	}
	return b.String()
}
