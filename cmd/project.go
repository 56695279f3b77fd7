package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentic-research/rbxforge/internal/library"
)

func (c *commandContext) openLibrary() (*library.SQLiteLibrary, error) {
	path := c.cfg().LibraryPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}
	return library.Open(path)
}

func newProjectCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage saved projects",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "save <name> <file>",
		Short: "Save a model or tree file as a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.loadTree(args[1])
			if err != nil {
				return err
			}
			lib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer func() { _ = lib.Close() }()
			if err := lib.Save(args[0], root); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d objects)\n", args[0], root.Count())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "load <name> [out]",
		Short: "Write a project as tree JSON, or as XML when out ends in .rbxmx",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer func() { _ = lib.Close() }()
			root, err := lib.Load(args[0])
			if err != nil {
				return err
			}

			var data []byte
			if len(args) == 2 && isXMLPath(args[1]) {
				data = []byte(encoderFor(ctx.cfg()).Encode(root))
			} else {
				if data, err = json.MarshalIndent(root, "", "  "); err != nil {
					return fmt.Errorf("encode tree: %w", err)
				}
				data = append(data, '\n')
			}
			if len(args) == 1 {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			return writeFile(args[1], data)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer func() { _ = lib.Close() }()
			infos, err := lib.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(infos) == 0 {
				fmt.Fprintln(out, "No projects saved.")
				return nil
			}
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{
					info.Name,
					info.RootName,
					info.RootClass,
					strconv.Itoa(info.NodeCount),
					info.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Project", "Root", "Class", "Objects", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer func() { _ = lib.Close() }()
			if err := lib.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	})
	return cmd
}
