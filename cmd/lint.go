package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/rbxforge/internal/linter"
	"github.com/agentic-research/rbxforge/internal/writeback"
)

func newLintCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <file>",
		Short: "Check every script for syntax errors and deprecated APIs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.loadTree(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			errs := writeback.ValidateTree(root)
			for _, e := range errs {
				fmt.Fprintf(out, "error: %s\n", e.Error())
			}
			diags, err := linter.LintTree(root)
			if err != nil {
				return err
			}
			for _, d := range diags {
				fmt.Fprintf(out, "warning: %s\n", d)
			}

			if len(errs) > 0 {
				return fmt.Errorf("%w: %d script(s)", errScriptSyntax, len(errs))
			}
			if len(diags) == 0 {
				fmt.Fprintln(out, "All scripts OK.")
			}
			return nil
		},
	}
}
