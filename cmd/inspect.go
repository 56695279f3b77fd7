package cmd

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/agentic-research/rbxforge/api"
	"github.com/agentic-research/rbxforge/internal/graph"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var className string
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the objects in a model or tree file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.loadTree(args[0])
			if err != nil {
				return err
			}
			store := graph.Project(root)

			var nodes []*graph.Node
			if className != "" {
				if nodes, err = store.ByClass(className); err != nil {
					return err
				}
			} else {
				store.Walk(func(n *graph.Node, _ int) {
					nodes = append(nodes, n)
				})
			}

			out := cmd.OutOrStdout()
			if len(nodes) == 0 {
				fmt.Fprintln(out, "No objects found.")
				return nil
			}

			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(nodes))
			for _, n := range nodes {
				class := n.ClassName
				if colorize && api.IsScriptClass(class) {
					class = text.Colors{text.FgYellow}.Sprint(class)
				}
				rows = append(rows, []string{
					n.ID,
					class,
					strconv.Itoa(len(n.Children)),
					strconv.FormatInt(n.ContentSize(), 10),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Path", "Class", "Children", "Source Bytes"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))

			if className == "" {
				summary := store.Classes()
				classRows := make([][]string, 0, len(summary))
				for _, c := range summary {
					classRows = append(classRows, []string{c.ClassName, strconv.Itoa(c.Count)})
				}
				fmt.Fprintln(out, renderTable([]string{"Class", "Count"}, classRows, []columnAlignment{alignLeft, alignRight}))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&className, "class", "", "Only show objects of this class")
	return cmd
}
