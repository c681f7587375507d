package node

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/pins"
)

// Category groups nodes for listing and reporting. Layers never branch on it;
// behavior is discovered through the capability interfaces below.
type Category uint8

const (
	CategoryEffect Category = iota
	CategoryLayout
	CategoryModifier
	CategoryDriver
)

func (c Category) String() string {
	switch c {
	case CategoryEffect:
		return "effect"
	case CategoryLayout:
		return "layout"
	case CategoryModifier:
		return "modifier"
	case CategoryDriver:
		return "driver"
	default:
		return "unknown"
	}
}

// Host is the view a node gets of the virtual layer it is bound to.
type Host interface {
	// Size is the virtual bounding box after modifiers.
	Size() lights.Coord3D
	// LightCount is the number of virtual lights.
	LightCount() int

	SetRGB(index int, c lights.RGB)
	RGB(index int) lights.RGB
	SetRGBAt(pos lights.Coord3D, c lights.RGB)
	Fill(c lights.RGB)

	Logger() *log.Logger
}

// Builder receives the physical lights and pins a layout generates.
type Builder interface {
	AddLight(pos lights.Coord3D) error
	AddPin(pin uint8) error
}

// Node is a pluggable behavior unit. Its lifecycle is Construct once, Setup
// once, then Loop once per frame.
//
// Implementations must be pointer types: slots compare nodes by identity.
type Node interface {
	Construct(host Host, controls Controls) error
	Setup()
	Loop()
}

// Layout is implemented by nodes that generate physical lights. AddLayout is
// replayed in both layout passes and must add the same lights each time.
type Layout interface {
	Node
	AddLayout(b Builder) error
}

// Modifier is implemented by nodes that reshape a virtual layer during pass 2.
type Modifier interface {
	Node
	// ModifySize maps the incoming virtual size to the modified one.
	ModifySize(size lights.Coord3D) lights.Coord3D
	// ModifyPosition maps a physical position into the modified space. It
	// returns false to leave the light unmapped.
	ModifyPosition(pos lights.Coord3D) (lights.Coord3D, bool)
}

// PinReceiver is implemented by drivers that want the sorted pin ranges
// handed off at the end of pass 1.
type PinReceiver interface {
	Node
	ReceivePins(h lights.Header, ranges []pins.Range)
}

// Releaser is implemented by nodes holding resources that must be freed when
// their slot is overwritten or removed.
type Releaser interface {
	Release()
}

// Release frees n if it holds resources. It is safe to call with nil.
func Release(n Node) {
	if r, ok := n.(Releaser); ok {
		r.Release()
	}
}
