// Package layouts provides nodes that describe the physical lights of an
// installation. A layout adds the same lights and pins in both layout passes;
// pins follow the lights they drive.
package layouts

import (
	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
)

// Node names.
const (
	SingleLineName = "Single Line"
	PanelName      = "Panel"
	CubeName       = "Cube"
)

// DefaultPin is the output pin used when a layout has no pin control.
const DefaultPin = 16

// Entries registers every layout.
var Entries = []node.Entry{
	{Name: SingleLineName, Category: node.CategoryLayout, New: func() node.Node { return &SingleLine{} }},
	{Name: PanelName, Category: node.CategoryLayout, New: func() node.Node { return &Panel{} }},
	{Name: CubeName, Category: node.CategoryLayout, New: func() node.Node { return &Cube{} }},
}

// base gives layouts the no-op frame lifecycle they share.
type base struct {
	host node.Host
	pin  uint8
}

func (b *base) construct(h node.Host, c node.Controls) {
	b.host = h
	b.pin = uint8(c.Int("pin", DefaultPin))
}

func (b *base) Setup() {}

func (b *base) Loop() {}

// SingleLine is a strip of lights along the X axis.
//
// Controls: lights (1-2048, default 30), start (coord), reversed, pin.
type SingleLine struct {
	base
	lights   int
	start    lights.Coord3D
	reversed bool
}

func (l *SingleLine) Construct(h node.Host, c node.Controls) error {
	l.construct(h, c)
	l.lights = c.Int("lights", 30)
	l.start = c.Coord("start", lights.Coord3D{})
	l.reversed = c.Bool("reversed", false)
	return nil
}

func (l *SingleLine) AddLayout(b node.Builder) error {
	for i := range l.lights {
		x := i
		if l.reversed {
			x = l.lights - 1 - i
		}
		if err := b.AddLight(l.start.Add(lights.Coord3D{X: x})); err != nil {
			return err
		}
	}
	return b.AddPin(l.pin)
}

// Panel is a 2D matrix wired row by row. With serpentine wiring every other
// row runs backwards.
//
// Controls: width, height (default 16x16), start (coord), serpentine, pin.
type Panel struct {
	base
	width, height int
	start         lights.Coord3D
	serpentine    bool
}

func (p *Panel) Construct(h node.Host, c node.Controls) error {
	p.construct(h, c)
	p.width = c.Int("width", 16)
	p.height = c.Int("height", 16)
	p.start = c.Coord("start", lights.Coord3D{})
	p.serpentine = c.Bool("serpentine", false)
	return nil
}

func (p *Panel) AddLayout(b node.Builder) error {
	for y := range p.height {
		for i := range p.width {
			x := i
			if p.serpentine && y%2 == 1 {
				x = p.width - 1 - i
			}
			if err := b.AddLight(p.start.Add(lights.Coord3D{X: x, Y: y})); err != nil {
				return err
			}
		}
	}
	return b.AddPin(p.pin)
}

// Cube is a 3D block of lights, one pin per Z plane starting at pin.
//
// Controls: width, height, depth (default 8x8x8), pin.
type Cube struct {
	base
	size lights.Coord3D
}

func (c *Cube) Construct(h node.Host, ctl node.Controls) error {
	c.construct(h, ctl)
	c.size = lights.Coord3D{
		X: ctl.Int("width", 8),
		Y: ctl.Int("height", 8),
		Z: ctl.Int("depth", 8),
	}
	return nil
}

func (c *Cube) AddLayout(b node.Builder) error {
	for z := range c.size.Z {
		for y := range c.size.Y {
			for x := range c.size.X {
				if err := b.AddLight(lights.Coord3D{X: x, Y: y, Z: z}); err != nil {
					return err
				}
			}
		}
		if err := b.AddPin(c.pin + uint8(z)); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ node.Layout = (*SingleLine)(nil)
	_ node.Layout = (*Panel)(nil)
	_ node.Layout = (*Cube)(nil)
)
