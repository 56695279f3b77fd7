package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <in.rbxmx> [out.json]",
		Short: "Decode a Roblox XML model into an asset tree",
		Long: "Decode a Roblox XML model into an asset tree. Only names, classes, " +
			"hierarchy and script sources are recovered; other properties are not.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFile(args[0])
			if err != nil {
				return err
			}
			root, err := decodeDocument(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			encoded, err := json.MarshalIndent(root, "", "  ")
			if err != nil {
				return fmt.Errorf("encode tree: %w", err)
			}
			encoded = append(encoded, '\n')

			if len(args) == 1 {
				_, err := cmd.OutOrStdout().Write(encoded)
				return err
			}
			if err := writeFile(args[1], encoded); err != nil {
				return err
			}
			ctx.log().Info("imported model", "path", args[1], "nodes", root.Count())
			return nil
		},
	}
}
