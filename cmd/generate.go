package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/rbxforge/internal/assistant"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var outPath, xmlPath, saveAs string
	cmd := &cobra.Command{
		Use:   "generate <prompt...>",
		Short: "Ask the assistant to design an asset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.cfg()
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}
			client := assistant.NewClient(assistant.Config{
				APIKey:         cfg.Assistant.APIKey,
				BaseURL:        cfg.Assistant.BaseURL,
				Model:          cfg.Assistant.Model,
				TimeoutSeconds: cfg.Assistant.TimeoutSeconds,
			})
			conv := assistant.NewConversation(client, cfg.Assistant.PayloadSelector, ctx.log())

			root, err := conv.Generate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := ctx.checkScripts(root, false); err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(root, "", "  ")
			if err != nil {
				return fmt.Errorf("encode tree: %w", err)
			}
			encoded = append(encoded, '\n')
			if outPath == "" {
				if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
					return err
				}
			} else if err := writeFile(outPath, encoded); err != nil {
				return err
			}

			if xmlPath != "" {
				doc := encoderFor(cfg).Encode(root)
				if err := writeFile(xmlPath, []byte(doc)); err != nil {
					return err
				}
			}
			if saveAs != "" {
				lib, err := ctx.openLibrary()
				if err != nil {
					return err
				}
				defer func() { _ = lib.Close() }()
				if err := lib.Save(saveAs, root); err != nil {
					return err
				}
			}
			ctx.log().Info("generated asset", "root", root.Name, "nodes", root.Count())
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the tree JSON here instead of stdout")
	cmd.Flags().StringVar(&xmlPath, "xml", "", "Also write the encoded .rbxmx model here")
	cmd.Flags().StringVar(&saveAs, "save", "", "Also save the tree as a library project")
	return cmd
}
