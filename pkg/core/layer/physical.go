package layer

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	"github.com/matzehuels/lightlayer/pkg/core/pins"
	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
)

const (
	// DefaultMaxChannels is the physical buffer capacity in bytes.
	DefaultMaxChannels = 12288

	// DefaultMaxMappings caps the number of virtual lights per layer.
	DefaultMaxMappings = 4096

	// DefaultSettleDelay lets an in-flight frame finish before pass 1 clears
	// the buffer.
	DefaultSettleDelay = 100 * time.Millisecond

	// SafeModeLightCap is the number of lights accepted while safe mode is on.
	SafeModeLightCap = 1024
)

// Options configures a PhysicalLayer.
type Options struct {
	MaxChannels int
	MaxMappings int

	// ChannelsPerLight and Offsets describe the channel block of one light.
	// They default to 3 channels in RGB order.
	ChannelsPerLight int
	Offsets          *lights.Offsets

	// SafeMode drops every light past SafeModeLightCap.
	SafeMode bool

	// SettleDelay is the blocking wait at the start of pass 1. Zero disables it.
	SettleDelay time.Duration

	// Sleep performs the settle wait. Defaults to time.Sleep.
	Sleep func(time.Duration)

	Registry *node.Registry
	Logger   *log.Logger
}

// DefaultOptions returns the options of a stock controller.
func DefaultOptions() Options {
	return Options{
		MaxChannels: DefaultMaxChannels,
		MaxMappings: DefaultMaxMappings,
		SettleDelay: DefaultSettleDelay,
	}
}

// PhysicalLayer owns the physical channel buffer, the pin table and the
// virtual layers, and runs the two-pass layout cycle.
//
// A PhysicalLayer is not safe for concurrent use. Layout, node management and
// frame rendering must run on one goroutine or under one lock.
type PhysicalLayer struct {
	header lights.Header
	buffer *lights.Buffer
	layers []*VirtualLayer
	pins   pins.Table
	state  State

	channels    int
	offsets     lights.Offsets
	maxMappings int
	safeMode    bool
	settle      time.Duration
	sleep       func(time.Duration)
	registry    *node.Registry
	logger      *log.Logger

	dropped int
}

// New creates a physical layer with one default virtual layer.
func New(opts Options) *PhysicalLayer {
	if opts.MaxChannels <= 0 {
		opts.MaxChannels = DefaultMaxChannels
	}
	if opts.MaxMappings <= 0 {
		opts.MaxMappings = DefaultMaxMappings
	}
	if opts.ChannelsPerLight <= 0 {
		opts.ChannelsPerLight = lights.DefaultChannelsPerLight
	}
	if opts.Offsets == nil {
		opts.Offsets = &lights.DefaultOffsets
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Registry == nil {
		opts.Registry = node.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	p := &PhysicalLayer{
		buffer:      lights.NewBuffer(opts.MaxChannels),
		channels:    opts.ChannelsPerLight,
		offsets:     *opts.Offsets,
		maxMappings: opts.MaxMappings,
		safeMode:    opts.SafeMode,
		settle:      opts.SettleDelay,
		sleep:       opts.Sleep,
		registry:    opts.Registry,
		logger:      opts.Logger,
	}
	p.resetChannels()
	p.AddLayer()
	return p
}

// AddLayer appends a new, empty virtual layer.
func (p *PhysicalLayer) AddLayer() *VirtualLayer {
	v := newVirtualLayer(len(p.layers), p)
	p.layers = append(p.layers, v)
	return v
}

// RemoveLayer releases the nodes of layer i and leaves a hole in its place
// so the indices of the other layers stay stable. The default layer cannot be
// removed.
func (p *PhysicalLayer) RemoveLayer(i int) bool {
	if i <= 0 || i >= len(p.layers) || p.layers[i] == nil {
		return false
	}
	p.layers[i].slots.Clear()
	p.layers[i] = nil
	return true
}

// Layer returns virtual layer i, or nil.
func (p *PhysicalLayer) Layer(i int) *VirtualLayer {
	if i < 0 || i >= len(p.layers) {
		return nil
	}
	return p.layers[i]
}

// Layers returns the live virtual layers in order.
func (p *PhysicalLayer) Layers() []*VirtualLayer {
	out := make([]*VirtualLayer, 0, len(p.layers))
	for _, v := range p.layers {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Header returns a copy of the layout header.
func (p *PhysicalLayer) Header() lights.Header { return p.header }

// State returns the layout state.
func (p *PhysicalLayer) State() State { return p.state }

// Registry returns the node registry used by AddNode.
func (p *PhysicalLayer) Registry() *node.Registry { return p.registry }

// Buffer exposes the channel buffer, e.g. for an output driver.
func (p *PhysicalLayer) Buffer() *lights.Buffer { return p.buffer }

// Setup runs Setup on every virtual layer.
func (p *PhysicalLayer) Setup() {
	for _, v := range p.layers {
		if v != nil {
			v.Setup()
		}
	}
}

// Loop renders one frame. Nothing is rendered while the buffer holds
// positions instead of channel data.
func (p *PhysicalLayer) Loop() {
	if p.header.Positions != lights.PositionsUnset {
		return
	}
	for _, v := range p.layers {
		if v != nil {
			v.Loop()
		}
	}
}

// AddLayoutPre starts pass 1 or pass 2 of a layout cycle.
//
// Pass 1 resets the light count, bounding box and channel offsets, marks
// positions in progress, waits SettleDelay for the last frame to drain, then
// zeroes the buffer and the pin table. Pass 2 resets the light count and lets
// every virtual layer prepare its mapping table.
func (p *PhysicalLayer) AddLayoutPre(pass Pass) error {
	next, err := p.state.begin(pass)
	if err != nil {
		return err
	}
	p.state = next
	p.header.Lights = 0

	switch pass {
	case Pass1:
		p.resetChannels()
		p.header.Size = lights.Coord3D{}
		p.header.Positions = lights.PositionsInProgress
		p.dropped = 0
		if p.settle > 0 {
			p.sleep(p.settle)
		}
		p.buffer.Clear()
		p.pins.Clear()
	case Pass2:
		for _, v := range p.layers {
			if v != nil {
				v.AddLayoutPre()
			}
		}
	}

	p.logger.Debug("layout pre", "pass", uint8(pass))
	return nil
}

// AddLight adds the next physical light.
//
// In pass 1 the position is packed into the buffer while it fits and the
// bounding box grows to include it; in pass 2 every virtual layer maps it.
// The light count always grows, so a light past buffer capacity is counted
// but not packed. With safe mode on, lights past SafeModeLightCap are
// dropped without being counted. Capacity limits never produce an error.
func (p *PhysicalLayer) AddLight(pos lights.Coord3D) error {
	if err := p.state.requireActive("add light"); err != nil {
		return err
	}
	if p.safeMode && p.header.Lights >= SafeModeLightCap {
		// Pass 2 replays the pass-1 calls; count each light once.
		if p.state == StatePass1 {
			p.dropped++
		}
		return nil
	}

	if p.state == StatePass1 {
		p.buffer.PutPosition(p.header.Lights, pos)
		p.header.Size = p.header.Size.Max(pos)
	} else {
		for _, v := range p.layers {
			if v != nil {
				v.AddLight(pos)
			}
		}
	}
	p.header.Lights++
	return nil
}

// AddPin assigns every light added since the previous pin to pin. It only
// has an effect in pass 1; pass 2 replays the same calls and ignores them.
func (p *PhysicalLayer) AddPin(pin uint8) error {
	if err := p.state.requireActive("add pin"); err != nil {
		return err
	}
	if p.state == StatePass1 {
		p.pins.Add(pin, p.header.Lights)
		p.logger.Debug("add pin", "pin", pin, "lights", p.header.Lights)
	}
	return nil
}

// AddLayoutPost completes the active pass.
//
// Pass 1 turns the max-index bounding box into a size, marks positions
// complete and, when pins were added, sorts the pin table and hands it to
// every node implementing node.PinReceiver. Pass 2 lets every virtual layer
// finish its mapping.
func (p *PhysicalLayer) AddLayoutPost() error {
	prev := p.state
	next, err := prev.end()
	if err != nil {
		return err
	}
	p.state = next

	switch prev {
	case StatePass1:
		p.header.Size = p.header.Size.Add(lights.Unit)
		p.header.Positions = lights.PositionsComplete
		if p.pins.Len() > 0 {
			p.pins.Sort()
			if err := p.pins.Validate(); err != nil {
				p.logger.Warn("pin table invalid", "err", err)
			}
			p.handOffPins()
		}
		p.logger.Debug("layout post", "pass", 1,
			"lights", p.header.Lights,
			"size", p.header.Size,
			"pins", p.pins.Len(),
			"dropped", p.dropped)
	case StatePass2:
		for _, v := range p.layers {
			if v != nil {
				v.AddLayoutPost()
			}
		}
		p.logger.Debug("layout post", "pass", 2, "lights", p.header.Lights)
	}
	return nil
}

func (p *PhysicalLayer) resetChannels() {
	p.header.ChannelsPerLight = p.channels
	p.header.Offsets = p.offsets
}

func (p *PhysicalLayer) handOffPins() {
	ranges := p.pins.Ranges()
	p.EachNode(func(_ *VirtualLayer, _ int, n node.Node) {
		if r, ok := n.(node.PinReceiver); ok {
			r.ReceivePins(p.header, ranges)
		}
	})
}

// Pins returns the pin ranges of the last pass 1, sorted by start index.
func (p *PhysicalLayer) Pins() []pins.Range { return p.pins.Ranges() }

// Positions decodes the packed positions of the last pass 1. It returns nil
// unless positions are complete and still held by the buffer.
func (p *PhysicalLayer) Positions() []lights.Coord3D {
	if p.header.Positions != lights.PositionsComplete {
		return nil
	}
	n := min(p.header.Lights, p.buffer.PositionCap())
	out := make([]lights.Coord3D, n)
	for i := range out {
		out[i] = p.buffer.Position(i)
	}
	return out
}

// ReleasePositions hands the buffer back to rendering once a consumer has
// read the positions.
func (p *PhysicalLayer) ReleasePositions() {
	if p.header.Positions != lights.PositionsComplete {
		return
	}
	p.buffer.Clear()
	p.header.Positions = lights.PositionsUnset
}

// EachNode calls fn for every node of every live virtual layer.
func (p *PhysicalLayer) EachNode(fn func(v *VirtualLayer, index int, n node.Node)) {
	for _, v := range p.layers {
		if v == nil {
			continue
		}
		v.slots.Each(func(i int, n node.Node) { fn(v, i, n) })
	}
}

// AddNode creates the node registered under name, binds it to the default
// virtual layer, constructs it with controls and runs its Setup.
//
// An index inside the layer's slot range replaces that slot's node, releasing
// it; any other index appends. An unknown name or a failing construction
// leaves every slot untouched and returns a nil node with the error.
func (p *PhysicalLayer) AddNode(index int, name string, controls node.Controls) (node.Node, error) {
	v := p.Layer(0)
	n, err := p.registry.New(name)
	if err != nil {
		p.logger.Warn("node not created", "name", name, "err", err)
		return nil, err
	}
	if err := n.Construct(v, controls); err != nil {
		node.Release(n)
		return nil, lerrors.Wrap(lerrors.ErrCodeInvalidConfig, err, "construct %s", name)
	}
	n.Setup()
	h := v.slots.Put(index, name, n)
	p.logger.Debug("node added", "name", name, "slot", h.Slot, "gen", h.Gen, "nodes", v.slots.Occupied())
	return n, nil
}

// RemoveNode releases n and clears its slot. It reports whether n was found.
func (p *PhysicalLayer) RemoveNode(n node.Node) bool {
	for _, v := range p.layers {
		if v != nil && v.slots.RemoveNode(n) {
			p.logger.Debug("node removed", "layer", v.id, "nodes", v.slots.Occupied())
			return true
		}
	}
	return false
}

// ReserveSlots pads the default virtual layer with empty slots up to n.
func (p *PhysicalLayer) ReserveSlots(n int) {
	p.Layer(0).slots.Grow(n)
}

// RemoveSlot releases and clears slot index of the default virtual layer.
func (p *PhysicalLayer) RemoveSlot(index int) bool {
	ok := p.Layer(0).slots.Remove(index)
	if ok {
		p.logger.Debug("node removed", "slot", index)
	}
	return ok
}

// NodeCount returns the number of hosted nodes over all virtual layers.
func (p *PhysicalLayer) NodeCount() int {
	total := 0
	for _, v := range p.layers {
		if v != nil {
			total += v.slots.Occupied()
		}
	}
	return total
}

// owner implementation used by virtual layers.

func (p *PhysicalLayer) lightCount() int { return p.header.Lights }

func (p *PhysicalLayer) size() lights.Coord3D { return p.header.Size }

func (p *PhysicalLayer) mappingCap() int { return p.maxMappings }

func (p *PhysicalLayer) log() *log.Logger { return p.logger }

func (p *PhysicalLayer) writeRGB(indexP uint32, c lights.RGB) {
	ch := p.buffer.Light(int(indexP), p.header.ChannelsPerLight)
	if ch == nil {
		return
	}
	o := p.header.Offsets
	if o.Red < len(ch) {
		ch[o.Red] = c.R
	}
	if o.Green < len(ch) {
		ch[o.Green] = c.G
	}
	if o.Blue < len(ch) {
		ch[o.Blue] = c.B
	}
}

func (p *PhysicalLayer) readRGB(indexP uint32) lights.RGB {
	ch := p.buffer.Light(int(indexP), p.header.ChannelsPerLight)
	if ch == nil {
		return lights.RGB{}
	}
	var c lights.RGB
	o := p.header.Offsets
	if o.Red < len(ch) {
		c.R = ch[o.Red]
	}
	if o.Green < len(ch) {
		c.G = ch[o.Green]
	}
	if o.Blue < len(ch) {
		c.B = ch[o.Blue]
	}
	return c
}
