package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/rbxforge/api"
	"github.com/agentic-research/rbxforge/internal/linter"
	"github.com/agentic-research/rbxforge/internal/writeback"
)

var errScriptSyntax = errors.New("scripts contain syntax errors")

func newExportCommand(ctx *commandContext) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "export <tree.json> [out.rbxmx]",
		Short: "Encode an asset tree as a Roblox XML model",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.cfg()
			root, err := ctx.loadTree(args[0])
			if err != nil {
				return err
			}
			out := replaceExt(args[0], ".rbxmx")
			if len(args) == 2 {
				out = args[1]
			}

			if err := ctx.checkScripts(root, strict); err != nil {
				return err
			}

			doc := encoderFor(cfg).Encode(root)
			if err := writeFile(out, []byte(doc)); err != nil {
				return err
			}
			ctx.log().Info("exported model", "path", out, "nodes", root.Count())
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d objects)\n", out, root.Count())
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a script has syntax errors")
	return cmd
}

// checkScripts logs validation and lint findings per the export config.
// Syntax errors only fail the export when strict is set.
func (c *commandContext) checkScripts(root api.Node, strict bool) error {
	cfg := c.cfg()
	logger := c.log()
	if cfg.Export.ValidateScripts || strict {
		errs := writeback.ValidateTree(root)
		for _, e := range errs {
			logger.Warn("script syntax error", "path", e.Path, "line", e.Line+1, "column", e.Column+1)
		}
		if strict && len(errs) > 0 {
			return fmt.Errorf("%w: %d script(s)", errScriptSyntax, len(errs))
		}
	}
	if cfg.Export.LintScripts {
		diags, err := linter.LintTree(root)
		if err != nil {
			return err
		}
		for _, d := range diags {
			logger.Warn("script lint", "path", d.Path, "line", d.Line+1, "message", d.Message)
		}
	}
	return nil
}
