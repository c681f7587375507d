package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lightlayer/pkg/engine"
)

// presetCommand creates the preset management command.
func (c *CLI) presetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Save, show and delete presets",
		Long: `Save, show and delete presets.

A preset is the node list of a configuration, stored in the configured store
backend (file, redis or mongo). The run command can start from a preset with
--preset.`,
	}

	cmd.AddCommand(c.presetSaveCommand())
	cmd.AddCommand(c.presetShowCommand())
	cmd.AddCommand(c.presetDeleteCommand())

	return cmd
}

// withEngine builds the configured engine, runs fn and closes the store.
func (c *CLI) withEngine(ctx context.Context, fn func(*engine.Engine) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	eng, st, err := c.newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(eng)
}

// presetSaveCommand creates the "preset save" subcommand.
func (c *CLI) presetSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Save the configured node list as a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				p, err := eng.SavePreset(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printSuccess("Saved preset %s", StyleHighlight.Render(p.Name))
				printDetail("%d nodes", len(p.Nodes))
				printNextStep("Run it", appName+" run --preset "+p.Name)
				return nil
			})
		},
	}
}

// presetShowCommand creates the "preset show" subcommand.
func (c *CLI) presetShowCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				p, err := eng.Preset(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printPreset(cmd.OutOrStdout(), p, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the preset as JSON")
	return cmd
}

// presetDeleteCommand creates the "preset delete" subcommand.
func (c *CLI) presetDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd.Context(), func(eng *engine.Engine) error {
				if err := eng.DeletePreset(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted preset %s", StyleHighlight.Render(args[0]))
				return nil
			})
		},
	}
}

func printPreset(w io.Writer, p *engine.Preset, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	fmt.Fprintln(w, StyleTitle.Render(p.Name)+" "+StyleDim.Render("saved "+p.SavedAt.Format("2006-01-02 15:04")))
	rows := make([][]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		index := "next"
		if n.Index != nil {
			index = strconv.Itoa(*n.Index)
		}
		rows = append(rows, []string{index, n.Name, strconv.Itoa(len(n.Controls))})
	}
	fmt.Fprintln(w, newTable("Slot", "Node", "Controls").Rows(rows...).Render())
	return nil
}
