package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lightlayer/pkg/core/layer"
	"github.com/matzehuels/lightlayer/pkg/core/lights"
)

// layoutCommand creates the layout command for mapping the configured
// fixtures and printing the diagnostics report.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		asJSON    bool
		positions bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Map the configured layout and print the diagnostics report",
		Long: `Map the configured layout and print the diagnostics report.

The layout command builds an engine from the config file, places every node
and runs one full layout cycle. It prints the light count, bounding box, pin
ranges and the mapping statistics of every virtual layer.

Lights past the buffer capacity are counted but not packed; the report shows
how many fit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), asJSON, positions)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&positions, "positions", false, "include every packed light position")

	return cmd
}

type layoutOutput struct {
	layer.Report
	Positions []lights.Coord3D `json:"positions,omitempty"`
}

// runLayout builds the engine and prints the report.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, asJSON, positions bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)
	eng, st, err := c.newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	out := layoutOutput{Report: eng.Report()}
	prog.done("layout mapped", "lights", out.Lights, "layers", len(out.Layers))

	if positions {
		out.Positions = eng.Positions()
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printReport(w, out.Report)
	if positions {
		for i, p := range out.Positions {
			fmt.Fprintf(w, "  %4d  %s\n", i, p)
		}
	}
	if err := eng.LastError(); err != nil {
		printWarning("Layout finished with errors: %v", err)
	}
	return nil
}

// printReport writes a human-readable report.
func printReport(w io.Writer, r layer.Report) {
	kv := func(key, value string) {
		keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
		fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
	}

	fmt.Fprintln(w, StyleTitle.Render("Physical layer"))
	kv("lights", strconv.Itoa(r.Lights))
	kv("size", r.Size.String())
	kv("channels", fmt.Sprintf("%d per light, %d max", r.ChannelsPerLight, r.MaxChannels))
	kv("state", r.State)
	if r.PackedLights < r.Lights {
		kv("packed", StyleWarning.Render(fmt.Sprintf("%d of %d", r.PackedLights, r.Lights)))
	}
	if r.DroppedLights > 0 {
		kv("dropped", StyleWarning.Render(strconv.Itoa(r.DroppedLights)))
	}
	kv("nodes", strconv.Itoa(r.Nodes))

	if len(r.Pins) > 0 {
		rows := make([][]string, 0, len(r.Pins))
		for _, p := range r.Pins {
			rows = append(rows, []string{
				strconv.Itoa(int(p.Pin)),
				strconv.Itoa(p.Start),
				strconv.Itoa(p.Count),
			})
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render("Pins"))
		fmt.Fprintln(w, newTable("Pin", "Start", "Lights").Rows(rows...).Render())
	}

	rows := make([][]string, 0, len(r.Layers))
	for _, l := range r.Layers {
		rows = append(rows, []string{
			strconv.Itoa(l.ID),
			strconv.Itoa(l.Lights),
			l.Size.String(),
			strconv.Itoa(l.Zero),
			strconv.Itoa(l.One),
			strconv.Itoa(l.Many),
			strconv.Itoa(l.Nodes),
		})
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("Virtual layers"))
	fmt.Fprintln(w, newTable("Layer", "Lights", "Size", "Unmapped", "1:1", "1:n lights", "Nodes").Rows(rows...).Render())
}

// newTable creates a table in the CLI style.
func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
