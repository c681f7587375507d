package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lightlayer/pkg/render/topology"
)

// Output formats of the graph command.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// graphCommand creates the graph command for rendering the node topology.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the node topology as DOT or SVG",
		Long: `Render the node topology as DOT or SVG.

The diagram shows the physical layer with its pins and the default virtual
layer with every occupied slot, colored by node category. SVG output is
rendered in-process with Graphviz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), output, format, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: svg, dot")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include node controls in labels")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, w io.Writer, output, format string, detailed bool) error {
	if format != formatDOT && format != formatSVG {
		return fmt.Errorf("unknown format %q (want svg or dot)", format)
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	eng, st, err := c.newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	data := []byte(topology.ToDOT(eng.Snapshot(), topology.Options{Detailed: detailed}))
	if format == formatSVG {
		spinner := newSpinnerWithContext(ctx, "Rendering SVG...")
		spinner.Start()
		data, err = topology.RenderSVG(ctx, string(data))
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		spinner.Stop()
	}

	if output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	printSuccess("Topology rendered")
	printFile(output)
	return nil
}
