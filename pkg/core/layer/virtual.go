package layer

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/mapping"
	"github.com/matzehuels/lightlayer/pkg/core/node"
)

// owner is the non-owning view a virtual layer keeps of its physical layer.
// It never extends the physical layer's lifetime and only exposes what pass 2
// and frame rendering need.
type owner interface {
	lightCount() int
	size() lights.Coord3D
	mappingCap() int
	writeRGB(indexP uint32, c lights.RGB)
	readRGB(indexP uint32) lights.RGB
	log() *log.Logger
}

// VirtualLayer is the logical light space nodes draw into. Its mapping table
// translates each virtual light into zero, one or many physical lights.
type VirtualLayer struct {
	id    int
	owner owner

	size      lights.Coord3D
	lights    int
	table     mapping.Table
	slots     node.Slots
	modifiers []node.Modifier
}

func newVirtualLayer(id int, o owner) *VirtualLayer {
	return &VirtualLayer{id: id, owner: o}
}

// ID returns the index of the layer inside its physical layer.
func (v *VirtualLayer) ID() int { return v.id }

// Size returns the virtual bounding box computed by the last pass 2.
func (v *VirtualLayer) Size() lights.Coord3D { return v.size }

// LightCount returns the number of virtual lights.
func (v *VirtualLayer) LightCount() int { return v.lights }

// Stats counts the mapping entries by kind.
func (v *VirtualLayer) Stats() mapping.Stats { return v.table.Stats() }

// Entry returns the mapping entry of virtual light i.
func (v *VirtualLayer) Entry(i int) mapping.Entry { return v.table.Entry(i) }

// Physical returns the physical indices virtual light i maps to.
func (v *VirtualLayer) Physical(i int) []uint32 {
	var out []uint32
	v.table.Each(i, func(p uint32) { out = append(out, p) })
	return out
}

// Node returns the node in slot i, or nil.
func (v *VirtualLayer) Node(i int) node.Node { return v.slots.At(i) }

// Nodes lists the occupied slots.
func (v *VirtualLayer) Nodes() []node.SlotInfo { return v.slots.Info() }

// NodeCount returns the number of hosted nodes.
func (v *VirtualLayer) NodeCount() int { return v.slots.Occupied() }

// Logger returns the logger nodes should write to.
func (v *VirtualLayer) Logger() *log.Logger { return v.owner.log() }

// Setup runs Setup on every hosted node.
func (v *VirtualLayer) Setup() {
	v.slots.Each(func(_ int, n node.Node) { n.Setup() })
}

// Loop runs one frame of every hosted node in slot order.
func (v *VirtualLayer) Loop() {
	v.slots.Each(func(_ int, n node.Node) { n.Loop() })
}

// AddLayoutPre prepares pass 2: the size starts from the physical size and
// passes through every modifier in slot order, the light count is the
// resulting volume capped by the mapping capacity, and the mapping table is
// reset to all-zero entries.
func (v *VirtualLayer) AddLayoutPre() {
	v.modifiers = v.modifiers[:0]
	size := v.owner.size()
	v.slots.Each(func(_ int, n node.Node) {
		if m, ok := n.(node.Modifier); ok {
			v.modifiers = append(v.modifiers, m)
			size = m.ModifySize(size)
		}
	})
	v.size = size
	v.lights = min(size.Volume(), v.owner.mappingCap())
	v.table.Reset(v.lights)
}

// AddLight maps the physical light currently being added. Modifiers may move
// or drop it; positions outside the virtual box and virtual indices past the
// mapping capacity are dropped.
func (v *VirtualLayer) AddLight(pos lights.Coord3D) {
	for _, m := range v.modifiers {
		var keep bool
		if pos, keep = m.ModifyPosition(pos); !keep {
			return
		}
	}
	if !pos.Within(v.size) {
		return
	}
	v.table.Add(v.index(pos), uint32(v.owner.lightCount()))
}

// AddLayoutPost finishes pass 2.
func (v *VirtualLayer) AddLayoutPost() {
	s := v.table.Stats()
	v.owner.log().Debug("virtual layer mapped",
		"layer", v.id,
		"lights", v.lights,
		"size", v.size,
		"zero", s.Zero,
		"one", s.One,
		"many", s.Many,
		"groups", s.OverflowUsed)
}

func (v *VirtualLayer) index(pos lights.Coord3D) int {
	return pos.X + pos.Y*v.size.X + pos.Z*v.size.X*v.size.Y
}

// SetRGB colors virtual light i on every physical light it maps to.
func (v *VirtualLayer) SetRGB(i int, c lights.RGB) {
	v.table.Each(i, func(p uint32) { v.owner.writeRGB(p, c) })
}

// RGB returns the color of the first physical light virtual light i maps to.
func (v *VirtualLayer) RGB(i int) lights.RGB {
	var c lights.RGB
	found := false
	v.table.Each(i, func(p uint32) {
		if !found {
			c, found = v.owner.readRGB(p), true
		}
	})
	return c
}

// SetRGBAt colors the virtual light at pos.
func (v *VirtualLayer) SetRGBAt(pos lights.Coord3D, c lights.RGB) {
	if pos.Within(v.size) {
		v.SetRGB(v.index(pos), c)
	}
}

// Fill colors every virtual light.
func (v *VirtualLayer) Fill(c lights.RGB) {
	for i := 0; i < v.lights; i++ {
		v.SetRGB(i, c)
	}
}

var _ node.Host = (*VirtualLayer)(nil)
