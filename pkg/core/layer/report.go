package layer

import (
	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/mapping"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	"github.com/matzehuels/lightlayer/pkg/core/pins"
)

// Report is the diagnostics snapshot pulled by reporting collaborators.
type Report struct {
	Lights           int            `json:"nrOfLights"`
	ChannelsPerLight int            `json:"channelsPerLight"`
	MaxChannels      int            `json:"maxChannels"`
	MaxMappings      int            `json:"maxMappings"`
	Size             lights.Coord3D `json:"size"`
	Nodes            int            `json:"nodes#"`

	// PackedLights is how many positions fit the buffer in the last pass 1;
	// fewer than Lights means the buffer overflowed.
	PackedLights int `json:"packedLights"`
	// DroppedLights counts lights rejected by safe mode.
	DroppedLights int `json:"droppedLights"`

	Positions string        `json:"isPositions"`
	State     string        `json:"state"`
	Pins      []pins.Range  `json:"pins"`
	Layers    []LayerReport `json:"layers"`
}

// LayerReport is the per-virtual-layer part of a Report.
type LayerReport struct {
	ID     int            `json:"id"`
	Lights int            `json:"nrOfLights"`
	Size   lights.Coord3D `json:"size"`
	mapping.Stats
	Nodes int             `json:"nodes#"`
	Slots []node.SlotInfo `json:"slots,omitempty"`
}

// Report builds a diagnostics snapshot. Every call walks the current state;
// nothing is cached.
func (p *PhysicalLayer) Report() Report {
	r := Report{
		Lights:           p.header.Lights,
		ChannelsPerLight: p.header.ChannelsPerLight,
		MaxChannels:      p.buffer.Cap(),
		MaxMappings:      p.maxMappings,
		Size:             p.header.Size,
		Nodes:            p.NodeCount(),
		PackedLights:     min(p.header.Lights, p.buffer.PositionCap()),
		DroppedLights:    p.dropped,
		Positions:        p.header.Positions.String(),
		State:            p.state.String(),
		Pins:             p.pins.Ranges(),
	}
	for _, v := range p.Layers() {
		r.Layers = append(r.Layers, LayerReport{
			ID:     v.id,
			Lights: v.lights,
			Size:   v.size,
			Stats:  v.table.Stats(),
			Nodes:  v.slots.Occupied(),
			Slots:  v.slots.Info(),
		})
	}
	return r
}
