// Package drivers provides output nodes. Drivers receive the sorted pin
// ranges at the end of pass 1 and push the channel buffer out every frame.
package drivers

import (
	"slices"

	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	"github.com/matzehuels/lightlayer/pkg/core/pins"
)

// VirtualDriverName is the registry name of VirtualDriver.
const VirtualDriverName = "Virtual Driver"

// Entries registers every driver.
var Entries = []node.Entry{
	{Name: VirtualDriverName, Category: node.CategoryDriver, New: func() node.Node { return &VirtualDriver{} }},
}

// VirtualDriver drives no hardware. It keeps the pin hand-off and counts
// frames, which makes it the driver of choice for dry runs and tests.
//
// Controls: maxPins (default 20) caps the number of pins accepted; extra
// ranges are dropped with a warning.
type VirtualDriver struct {
	host    node.Host
	maxPins int

	header lights.Header
	ranges []pins.Range
	frames int
}

func (d *VirtualDriver) Construct(h node.Host, c node.Controls) error {
	d.host = h
	d.maxPins = c.Int("maxPins", 20)
	return nil
}

func (d *VirtualDriver) Setup() { d.frames = 0 }

func (d *VirtualDriver) Loop() { d.frames++ }

func (d *VirtualDriver) ReceivePins(h lights.Header, ranges []pins.Range) {
	if len(ranges) > d.maxPins {
		d.host.Logger().Warn("too many pins", "pins", len(ranges), "max", d.maxPins)
		ranges = ranges[:d.maxPins]
	}
	d.header = h
	d.ranges = slices.Clone(ranges)
	d.host.Logger().Debug("pins received", "pins", len(d.ranges), "lights", h.Lights)
}

// Pins returns the last pin hand-off.
func (d *VirtualDriver) Pins() []pins.Range { return slices.Clone(d.ranges) }

// Header returns the header delivered with the last hand-off.
func (d *VirtualDriver) Header() lights.Header { return d.header }

// Frames returns the number of frames pushed since Setup.
func (d *VirtualDriver) Frames() int { return d.frames }

var _ node.PinReceiver = (*VirtualDriver)(nil)
