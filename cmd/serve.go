package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentic-research/rbxforge/internal/config"
	"github.com/agentic-research/rbxforge/internal/mcpserver"
	"github.com/agentic-research/rbxforge/internal/rbxml"
)

func encoderFor(cfg *config.Config) *rbxml.Encoder {
	return rbxml.NewEncoder(rbxml.WithIndent(cfg.Export.Indent))
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var preload string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the asset tools to AI agents over MCP (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := mcpserver.Options{
				Logger:  ctx.log(),
				Encoder: encoderFor(ctx.cfg()),
			}
			if preload != "" {
				root, err := ctx.loadTree(preload)
				if err != nil {
					return err
				}
				opts.Initial = &root
			}
			ctx.log().Info("serving MCP over stdio")
			return mcpserver.New(opts).ServeStdio()
		},
	}
	cmd.Flags().StringVar(&preload, "load", "", "Model or tree file to open as the initial workspace")
	return cmd
}
