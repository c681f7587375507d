// Package layer reconciles the virtual light space nodes draw into with the
// physical buffer and pins that drive real hardware.
//
// # Layout Cycle
//
// A layout is rebuilt from scratch in two passes. The orchestrator replays
// every layout node in each pass:
//
//	p.AddLayoutPre(layer.Pass1)
//	for each layout node: AddLight(...)... AddPin(...)
//	p.AddLayoutPost()
//	p.AddLayoutPre(layer.Pass2)
//	for each layout node: AddLight(...)... AddPin(...)
//	p.AddLayoutPost()
//
// Pass 1 packs positions into the physical buffer, grows the bounding box and
// coalesces pins into ranges. Pass 2 forwards every light to each
// [VirtualLayer], which maps it into its own table. Calls made outside their
// pass are rejected with an INVALID_STATE error; see [State].
//
// # Capacity
//
// Buffer and mapping capacities are fixed. Exceeding them clamps silently:
// the light count keeps growing while nothing more is packed or mapped. The
// [Report] exposes both numbers so truncation is visible after the fact.
package layer
