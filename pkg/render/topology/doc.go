// Package topology renders the node graph of an engine as a node-link
// diagram.
//
// # Overview
//
// The diagram shows the physical layer at the top, its pins on one side and
// the default virtual layer with every occupied slot on the other. Nodes are
// colored by category, so a glance shows which slots take part in the layout
// and which only draw.
//
// # Usage
//
// Convert a snapshot to DOT, then render to SVG:
//
//	dot := topology.ToDOT(eng.Snapshot(), topology.Options{Detailed: true})
//	svg, err := topology.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: node labels include the controls of each slot
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package topology
