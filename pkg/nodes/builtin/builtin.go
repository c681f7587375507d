// Package builtin provides the complete set of built-in nodes.
//
// This package exists to break import cycles: the node category packages
// (effects, layouts, etc.) import pkg/core/node, so pkg/core/node cannot
// import them back. Consumers that need the full node set import this
// package instead.
//
// Usage:
//
//	reg := builtin.NewRegistry(livescript.DirLoader("scripts"))
//	p := layer.New(layer.Options{Registry: reg})
package builtin

import (
	"slices"

	"github.com/matzehuels/lightlayer/pkg/core/node"
	"github.com/matzehuels/lightlayer/pkg/nodes/drivers"
	"github.com/matzehuels/lightlayer/pkg/nodes/effects"
	"github.com/matzehuels/lightlayer/pkg/nodes/layouts"
	"github.com/matzehuels/lightlayer/pkg/nodes/livescript"
	"github.com/matzehuels/lightlayer/pkg/nodes/modifiers"
)

// All is the canonical list of built-in node entries.
var All = slices.Concat(
	effects.Entries,
	layouts.Entries,
	modifiers.Entries,
	drivers.Entries,
)

// Register adds every built-in node to r.
func Register(r *node.Registry) error {
	for _, e := range All {
		if err := r.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding every built-in node. When scripts is
// non-nil, names ending in ".lua" resolve to live scripts loaded through it.
func NewRegistry(scripts livescript.Loader, opts ...livescript.Option) *node.Registry {
	r := node.NewRegistry()
	for _, e := range All {
		r.MustRegister(e)
	}
	if scripts != nil {
		r.SetFallback(livescript.Fallback(scripts, opts...))
	}
	return r
}
