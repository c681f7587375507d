// Package modifiers provides nodes that reshape a virtual layer. They run in
// pass 2 only: ModifySize is called once per cycle, then ModifyPosition for
// every physical light.
package modifiers

import (
	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
)

// Node names.
const (
	MirrorName   = "Mirror"
	MultiplyName = "Multiply"
)

// Entries registers every modifier.
var Entries = []node.Entry{
	{Name: MirrorName, Category: node.CategoryModifier, New: func() node.Node { return &Mirror{} }},
	{Name: MultiplyName, Category: node.CategoryModifier, New: func() node.Node { return &Multiply{} }},
}

// Mirror folds mirrored axes in half so both halves show the same virtual
// lights.
//
// Controls: mirrorX (default true), mirrorY, mirrorZ.
type Mirror struct {
	x, y, z bool
	in      lights.Coord3D
}

func (m *Mirror) Construct(_ node.Host, c node.Controls) error {
	m.x = c.Bool("mirrorX", true)
	m.y = c.Bool("mirrorY", false)
	m.z = c.Bool("mirrorZ", false)
	return nil
}

func (m *Mirror) Setup() {}

func (m *Mirror) Loop() {}

func (m *Mirror) ModifySize(s lights.Coord3D) lights.Coord3D {
	m.in = s
	if m.x {
		s.X = (s.X + 1) / 2
	}
	if m.y {
		s.Y = (s.Y + 1) / 2
	}
	if m.z {
		s.Z = (s.Z + 1) / 2
	}
	return s
}

func (m *Mirror) ModifyPosition(p lights.Coord3D) (lights.Coord3D, bool) {
	if m.x {
		p.X = fold(p.X, m.in.X)
	}
	if m.y {
		p.Y = fold(p.Y, m.in.Y)
	}
	if m.z {
		p.Z = fold(p.Z, m.in.Z)
	}
	return p, true
}

// fold maps v in [0,n) onto the lower half.
func fold(v, n int) int {
	if v >= (n+1)/2 {
		return n - 1 - v
	}
	return v
}

// Multiply tiles the layer: the virtual size is divided by proportion and
// every tile shows the same virtual lights. With mirror on, odd tiles are
// flipped.
//
// Controls: proportion (coord, default 2,2,1), mirror.
type Multiply struct {
	proportion lights.Coord3D
	mirror     bool
	out        lights.Coord3D
}

func (m *Multiply) Construct(_ node.Host, c node.Controls) error {
	p := c.Coord("proportion", lights.Coord3D{X: 2, Y: 2, Z: 1})
	m.proportion = p.Max(lights.Unit)
	m.mirror = c.Bool("mirror", false)
	return nil
}

func (m *Multiply) Setup() {}

func (m *Multiply) Loop() {}

func (m *Multiply) ModifySize(s lights.Coord3D) lights.Coord3D {
	m.out = lights.Coord3D{
		X: ceilDiv(s.X, m.proportion.X),
		Y: ceilDiv(s.Y, m.proportion.Y),
		Z: ceilDiv(s.Z, m.proportion.Z),
	}
	return m.out
}

func (m *Multiply) ModifyPosition(p lights.Coord3D) (lights.Coord3D, bool) {
	p.X = m.tile(p.X, m.out.X)
	p.Y = m.tile(p.Y, m.out.Y)
	p.Z = m.tile(p.Z, m.out.Z)
	return p, true
}

func (m *Multiply) tile(v, n int) int {
	if n <= 0 {
		return v
	}
	t := v % n
	if m.mirror && (v/n)%2 == 1 {
		t = n - 1 - t
	}
	return t
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

var (
	_ node.Modifier = (*Mirror)(nil)
	_ node.Modifier = (*Multiply)(nil)
)
