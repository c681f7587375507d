package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// nodesCommand creates the nodes command listing every registered node type.
func (c *CLI) nodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List the available node types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			entries := newRegistry(cfg).Entries()
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{styleCategory(e.Category.String()), e.Name})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, newTable("Category", "Name").Rows(rows...).Render())
			if cfg.Engine.ScriptsDir != "" {
				fmt.Fprintln(w, StyleDim.Render("Scripts: any *.lua file in "+cfg.Engine.ScriptsDir))
			}
			return nil
		},
	}
}
