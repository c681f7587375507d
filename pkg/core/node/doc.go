// Package node defines the pluggable behavior units hosted by a virtual
// layer and the registry that creates them by name.
//
// # Dispatch
//
// A [Registry] maps a stable name ("Solid", "Panel", "Mirror", ...) to a
// [Factory]. Layers only ever see the [Node] interface; extra behavior is
// discovered with type assertions against [Layout], [Modifier],
// [PinReceiver] and [Releaser], so adding a node never touches layer code.
//
// # Ownership
//
// Nodes live in [Slots], an arena indexed by slot number. Each slot carries a
// generation counter that is bumped whenever its occupant is replaced or
// removed, and the previous occupant is released at that moment. A [Handle]
// taken before the change no longer resolves.
//
// # Controls
//
// [Controls] is the configuration payload applied at construction: an
// ordered list of named values with optional bounds and nested groups. The
// layers never interpret it; nodes read it through typed accessors.
package node
