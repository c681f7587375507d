// Package pkg provides the core libraries for lightlayer, a pixel-mapping and
// layout engine for addressable lights.
//
// # Overview
//
// Lightlayer turns a set of fixture descriptions (strips, panels, cubes) into
// one physical light buffer, maps virtual layers onto it and drives effects
// at a fixed frame rate. The pkg directory is organized into these areas:
//
//  1. [core] - Domain logic (light buffer, pins, mapping tables, nodes, layers)
//  2. [nodes] - Built-in node types and Lua live scripts
//  3. [engine] - Orchestration (layout cycles, frame loop, presets)
//  4. [store] - Preset persistence (file, Redis, MongoDB)
//  5. [render/topology] - Node graph diagrams via Graphviz
//
// # Architecture
//
// A layout change flows through two passes:
//
//	Layout nodes (strips, panels, scripts)
//	         ↓
//	    pass 1: [core/layer] packs positions, [core/pins] records pin ranges
//	         ↓
//	    pass 2: modifiers reshape, [core/mapping] maps virtual to physical
//	         ↓
//	    frame loop: effects write virtual colors into physical channels
//
// # Quick Start
//
// Build an engine with the built-in nodes and map a panel:
//
//	import (
//	    "github.com/matzehuels/lightlayer/pkg/core/layer"
//	    "github.com/matzehuels/lightlayer/pkg/core/node"
//	    "github.com/matzehuels/lightlayer/pkg/engine"
//	    "github.com/matzehuels/lightlayer/pkg/nodes/builtin"
//	)
//
//	eng := engine.New(engine.Options{
//	    Layer: layer.Options{Registry: builtin.NewRegistry(nil)},
//	})
//	eng.AddNode(ctx, 0, "Panel", node.Controls{{Name: "width", Value: 16}})
//	eng.AddNode(ctx, 1, "Rainbow", nil)
//	go eng.Run(ctx)
//
// # Capacity
//
// The physical buffer has a fixed channel capacity. Lights past it are
// counted but not packed, and safe mode caps the light count. Neither is an
// error; the diagnostics report ([core/layer.Report]) shows both counters.
//
// # Error Handling
//
// Errors carry codes from [errors]:
//
//	if errors.Is(err, errors.ErrCodeUnknownNode) {
//	    // name not registered and not a script
//	}
//
// # Observability
//
// The [observability] package provides hooks for layout cycles, node changes,
// store traffic and HTTP requests. Register them once in main.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/lightlayer/pkg/core
// [core/layer]: https://pkg.go.dev/github.com/matzehuels/lightlayer/pkg/core/layer
// [core/layer.Report]: https://pkg.go.dev/github.com/matzehuels/lightlayer/pkg/core/layer#Report
// [core/pins]: https://pkg.go.dev/github.com/matzehuels/lightlayer/pkg/core/pins
// [core/mapping]: https://pkg.go.dev/github.com/matzehuels/lightlayer/pkg/core/mapping
// [nodes]: https://pkg.go.dev/github.com/matzehuels/lightlayer/pkg/nodes
// [engine]: https://pkg.go.dev/github.com/matzehuels/lightlayer/pkg/engine
// [store]: https://pkg.go.dev/github.com/matzehuels/lightlayer/pkg/store
// [render/topology]: https://pkg.go.dev/github.com/matzehuels/lightlayer/pkg/render/topology
// [errors]: https://pkg.go.dev/github.com/matzehuels/lightlayer/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/lightlayer/pkg/observability
package pkg
