// Package engine drives a physical layer: it runs layout cycles, renders
// frames at a fixed rate and persists presets.
//
// The core layer types are not safe for concurrent use. Engine serializes
// every entry point (the frame loop, HTTP handlers, the TUI) through one
// mutex, so a layout cycle never interleaves with a frame.
package engine

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lightlayer/pkg/config"
	"github.com/matzehuels/lightlayer/pkg/core/layer"
	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	"github.com/matzehuels/lightlayer/pkg/core/pins"
	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
	"github.com/matzehuels/lightlayer/pkg/observability"
	"github.com/matzehuels/lightlayer/pkg/store"
)

// DefaultFrameInterval renders 50 frames per second.
const DefaultFrameInterval = 20 * time.Millisecond

// Layout modes reported to the layout hooks.
const (
	ModeFull    = "full"
	ModeVirtual = "virtual"
)

// Options configures an Engine.
type Options struct {
	Layer         layer.Options
	FrameInterval time.Duration

	// Store persists presets. Defaults to a NullStore.
	Store     store.Store
	Keyer     store.Keyer
	PresetTTL time.Duration

	Logger *log.Logger
}

// Engine owns a physical layer and everything that touches it.
type Engine struct {
	mu sync.Mutex

	phys      *layer.PhysicalLayer
	specs     map[int]config.Node
	positions []lights.Coord3D
	frames    uint64
	lastErr   error

	interval time.Duration
	store    store.Store
	keyer    store.Keyer
	ttl      time.Duration
	logger   *log.Logger
}

// New creates an engine with an empty default layer.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Layer.Logger == nil {
		opts.Layer.Logger = opts.Logger
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.Store == nil {
		opts.Store = store.NewNullStore()
	}
	if opts.Keyer == nil {
		opts.Keyer = store.NewDefaultKeyer()
	}
	return &Engine{
		phys:     layer.New(opts.Layer),
		specs:    make(map[int]config.Node),
		interval: opts.FrameInterval,
		store:    opts.Store,
		keyer:    opts.Keyer,
		ttl:      opts.PresetTTL,
		logger:   opts.Logger,
	}
}

// =============================================================================
// Nodes
// =============================================================================

// NodeInfo describes one occupied slot.
type NodeInfo struct {
	node.SlotInfo
	Category string        `json:"category"`
	Controls node.Controls `json:"controls,omitempty"`
}

// AddNode places the node called name into slot index (or appends when
// index is past the last slot) and remaps the layout if the node takes part
// in it.
func (e *Engine) AddNode(ctx context.Context, index int, name string, controls node.Controls) (NodeInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addNode(ctx, index, name, controls)
}

func (e *Engine) addNode(ctx context.Context, index int, name string, controls node.Controls) (NodeInfo, error) {
	if index < 0 {
		return NodeInfo{}, lerrors.New(lerrors.ErrCodeInvalidSlot, "slot index %d is negative", index)
	}
	prev := e.phys.Layer(0).Node(index)
	n, slot, err := e.place(ctx, index, name, controls)
	if err != nil {
		return NodeInfo{}, err
	}
	return e.info(slot), e.remap(ctx, max(remapFor(prev), remapFor(n)))
}

// place adds one node without remapping.
func (e *Engine) place(ctx context.Context, index int, name string, controls node.Controls) (node.Node, int, error) {
	n, err := e.phys.AddNode(index, name, controls)
	if err != nil {
		observability.Node().OnNodeRejected(ctx, name, err)
		return nil, -1, err
	}
	slot := e.slotOf(n)
	e.specs[slot] = config.Node{Index: &slot, Name: name, Controls: controls}
	observability.Node().OnNodeAdded(ctx, name, slot)
	e.logger.Info("node added", "name", name, "slot", slot)
	return n, slot, nil
}

// RemoveNode releases the node in slot index and remaps the layout if it
// took part in it.
func (e *Engine) RemoveNode(ctx context.Context, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.phys.Layer(0).Node(index)
	if n == nil {
		return lerrors.New(lerrors.ErrCodeNotFound, "slot %d is empty", index)
	}
	e.phys.RemoveSlot(index)
	delete(e.specs, index)
	observability.Node().OnNodeRemoved(ctx, index)
	e.logger.Info("node removed", "slot", index)
	return e.remap(ctx, remapFor(n))
}

// Nodes lists the occupied slots in order.
func (e *Engine) Nodes() []NodeInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []NodeInfo
	for _, s := range e.phys.Layer(0).Nodes() {
		out = append(out, e.info(s.Index))
	}
	return out
}

// Catalog lists every registered node type.
func (e *Engine) Catalog() []node.Entry {
	return e.phys.Registry().Entries()
}

func (e *Engine) info(slot int) NodeInfo {
	var si node.SlotInfo
	for _, s := range e.phys.Layer(0).Nodes() {
		if s.Index == slot {
			si = s
		}
	}
	return NodeInfo{
		SlotInfo: si,
		Category: e.category(si.Name),
		Controls: e.specs[slot].Controls,
	}
}

func (e *Engine) category(name string) string {
	if entry, ok := e.phys.Registry().Lookup(name); ok {
		return entry.Category.String()
	}
	return "script"
}

func (e *Engine) slotOf(n node.Node) int {
	slot := -1
	e.phys.EachNode(func(v *layer.VirtualLayer, i int, m node.Node) {
		if m == n && v.ID() == 0 {
			slot = i
		}
	})
	return slot
}

type remapKind int

const (
	remapNone remapKind = iota
	remapVirtual
	remapFull
)

// remapFor returns the layout work a change to n requires: a full cycle for
// layouts and drivers, a virtual remap for modifiers, nothing for effects.
func remapFor(n node.Node) remapKind {
	switch n.(type) {
	case node.Layout, node.PinReceiver:
		return remapFull
	case node.Modifier:
		return remapVirtual
	}
	return remapNone
}

func (e *Engine) remap(ctx context.Context, k remapKind) error {
	switch k {
	case remapFull:
		return e.mapLayout(ctx)
	case remapVirtual:
		return e.mapVirtual(ctx)
	}
	return nil
}

// =============================================================================
// Layout
// =============================================================================

// MapLayout rebuilds the layout from scratch: pass 1 and pass 2 over every
// layout node. The decoded positions are kept for Positions and the buffer
// is handed back to rendering.
func (e *Engine) MapLayout(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapLayout(ctx)
}

// MapVirtual rebuilds only the virtual mapping tables. It falls back to a
// full cycle when no physical layout exists yet.
func (e *Engine) MapVirtual(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapVirtual(ctx)
}

func (e *Engine) mapLayout(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	layouts := e.layouts()
	observability.Layout().OnLayoutStart(ctx, ModeFull, len(layouts))

	// Pass 2 runs whenever pass 1 was closed, even if layout nodes failed,
	// so the virtual layers always map the current physical layout.
	closed, err := e.pass(layer.Pass1, layouts)
	if closed {
		e.positions = e.phys.Positions()
		_, err2 := e.pass(layer.Pass2, layouts)
		err = errors.Join(err, err2)
	}
	e.phys.ReleasePositions()
	e.finish(ctx, ModeFull, start, err)
	return err
}

func (e *Engine) mapVirtual(ctx context.Context) error {
	switch e.phys.State() {
	case layer.StatePass1Done, layer.StateComplete:
	default:
		return e.mapLayout(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	layouts := e.layouts()
	observability.Layout().OnLayoutStart(ctx, ModeVirtual, len(layouts))
	_, err := e.pass(layer.Pass2, layouts)
	e.finish(ctx, ModeVirtual, start, err)
	return err
}

// pass runs one layout pass and reports whether it was closed. A failing
// layout node does not abort the pass: the remaining nodes still run and
// their errors are joined.
func (e *Engine) pass(p layer.Pass, layouts []node.Layout) (bool, error) {
	if err := e.phys.AddLayoutPre(p); err != nil {
		return false, err
	}
	var errs []error
	for _, l := range layouts {
		if err := l.AddLayout(e.phys); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.phys.AddLayoutPost(); err != nil {
		return false, errors.Join(append(errs, err)...)
	}
	return true, errors.Join(errs...)
}

func (e *Engine) layouts() []node.Layout {
	var out []node.Layout
	e.phys.EachNode(func(_ *layer.VirtualLayer, _ int, n node.Node) {
		if l, ok := n.(node.Layout); ok {
			out = append(out, l)
		}
	})
	return out
}

func (e *Engine) finish(ctx context.Context, mode string, start time.Time, err error) {
	h := e.phys.Header()
	d := time.Since(start)
	e.lastErr = err
	observability.Layout().OnLayoutComplete(ctx, mode, h.Lights, d, err)
	if err != nil {
		e.logger.Error("layout failed", "mode", mode, "err", err)
		return
	}
	e.logger.Info("layout mapped",
		"mode", mode,
		"lights", h.Lights,
		"size", h.Size,
		"pins", len(e.phys.Pins()),
		"duration", d.Round(time.Microsecond))
}

// =============================================================================
// Frames
// =============================================================================

// Tick renders one frame.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.phys.Loop()
	e.frames++
}

// Run renders frames until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	e.logger.Info("frame loop started", "interval", e.interval)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("frame loop stopped", "frames", e.Frames())
			return nil
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Frames returns the number of frames rendered.
func (e *Engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// =============================================================================
// Diagnostics
// =============================================================================

// Report returns a fresh diagnostics report.
func (e *Engine) Report() layer.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phys.Report()
}

// Pins returns the sorted pin ranges of the last layout.
func (e *Engine) Pins() []pins.Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phys.Pins()
}

// Positions returns the physical positions packed by the last layout.
func (e *Engine) Positions() []lights.Coord3D {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.positions)
}

// LastError returns the error of the last layout cycle, if any.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// RGB returns the color of virtual light i of the default layer.
func (e *Engine) RGB(i int) lights.RGB {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phys.Layer(0).RGB(i)
}

// Snapshot is a consistent view for renderers.
type Snapshot struct {
	Report layer.Report
	Nodes  []NodeInfo
	Frames uint64
}

// Snapshot captures the report and node list under one lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	var nodes []NodeInfo
	for _, s := range e.phys.Layer(0).Nodes() {
		nodes = append(nodes, e.info(s.Index))
	}
	return Snapshot{Report: e.phys.Report(), Nodes: nodes, Frames: e.frames}
}
