package topology

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lightlayer/pkg/core/node"
	"github.com/matzehuels/lightlayer/pkg/engine"
	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
)

// Options configures diagram generation.
type Options struct {
	// Detailed includes the controls of each slot in its label.
	Detailed bool
}

var fills = map[string]string{
	"layout":   "#cfe8ff",
	"modifier": "#ffe9c2",
	"effect":   "#d8f5d0",
	"driver":   "#f3d1f4",
	"script":   "#eeeeee",
}

// ToDOT converts a snapshot to Graphviz DOT format.
func ToDOT(s engine.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	r := s.Report
	phys := fmt.Sprintf("physical\n%d lights\nsize %s\n%s", r.Lights, r.Size, r.State)
	if r.PackedLights < r.Lights {
		phys += fmt.Sprintf("\n%d not packed", r.Lights-r.PackedLights)
	}
	fmt.Fprintf(&buf, "  %q [label=%q, shape=box3d];\n", "physical", phys)

	for _, p := range r.Pins {
		id := fmt.Sprintf("pin%d", p.Pin)
		label := fmt.Sprintf("pin %d\n%d..%d", p.Pin, p.Start, p.End()-1)
		if p.Count == 0 {
			label = fmt.Sprintf("pin %d\nempty", p.Pin)
		}
		fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse];\n", id, label)
		fmt.Fprintf(&buf, "  %q -> %q;\n", "physical", id)
	}

	for _, l := range r.Layers {
		id := fmt.Sprintf("layer%d", l.ID)
		label := fmt.Sprintf("layer %d\n%d lights\nsize %s", l.ID, l.Lights, l.Size)
		fmt.Fprintf(&buf, "  %q [label=%q, shape=folder];\n", id, label)
		fmt.Fprintf(&buf, "  %q -> %q;\n", "physical", id)
	}

	buf.WriteString("\n")
	for _, n := range s.Nodes {
		id := fmt.Sprintf("slot%d", n.Index)
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if fill, ok := fills[n.Category]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
		fmt.Fprintf(&buf, "  %q -> %q;\n", "layer0", id)
		if n.Category == "driver" {
			for _, p := range r.Pins {
				fmt.Fprintf(&buf, "  \"pin%d\" -> %q [style=dashed];\n", p.Pin, id)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n engine.NodeInfo, detailed bool) string {
	label := fmt.Sprintf("%d: %s", n.Index, n.Name)
	if !detailed || len(n.Controls) == 0 {
		return label
	}
	return label + "\n" + strings.Join(fmtControls(n.Controls, ""), "\n")
}

func fmtControls(c node.Controls, prefix string) []string {
	var out []string
	for _, ctl := range c {
		if len(ctl.Controls) > 0 {
			out = append(out, fmtControls(ctl.Controls, prefix+ctl.Name+".")...)
			continue
		}
		out = append(out, fmt.Sprintf("%s%s: %v", prefix, ctl.Name, ctl.Value))
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
