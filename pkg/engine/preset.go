package engine

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/lightlayer/pkg/config"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
	"github.com/matzehuels/lightlayer/pkg/observability"
)

// Preset is a saved node slot configuration.
type Preset struct {
	Name    string        `json:"name"`
	Nodes   []config.Node `json:"nodes"`
	SavedAt time.Time     `json:"savedAt"`
}

// Apply places nodes into slots in order and runs one full layout cycle.
// A node without an index goes into the next slot; a node with one keeps it,
// leaving empty slots in between. Nodes that fail are skipped; their errors
// are returned together after the layout ran.
func (e *Engine) Apply(ctx context.Context, nodes []config.Node) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, nodes)
}

func (e *Engine) apply(ctx context.Context, nodes []config.Node) error {
	var errs []error
	for _, n := range nodes {
		occupied := e.phys.Layer(0).Nodes()
		next := 0
		if len(occupied) > 0 {
			next = occupied[len(occupied)-1].Index + 1
		}
		if n.Index != nil {
			next = *n.Index
			if err := lerrors.ValidateSlot(next, node.MaxSlots); err != nil {
				errs = append(errs, lerrors.Wrap(lerrors.ErrCodeInvalidSlot, err, "node %s", n.Name))
				continue
			}
			e.phys.ReserveSlots(next)
		}
		if _, _, err := e.place(ctx, next, n.Name, n.Controls); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.mapLayout(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Current returns the node configuration in slot order.
func (e *Engine) Current() []config.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current()
}

func (e *Engine) current() []config.Node {
	slots := slices.Sorted(maps.Keys(e.specs))
	out := make([]config.Node, 0, len(slots))
	for _, s := range slots {
		out = append(out, e.specs[s])
	}
	return out
}

// Clear removes every node and runs a full layout cycle, leaving an empty
// layout.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clear(ctx)
	return e.mapLayout(ctx)
}

func (e *Engine) clear(ctx context.Context) {
	for _, s := range e.phys.Layer(0).Nodes() {
		e.phys.RemoveSlot(s.Index)
		observability.Node().OnNodeRemoved(ctx, s.Index)
	}
	clear(e.specs)
}

// SavePreset stores the current node configuration under name.
func (e *Engine) SavePreset(ctx context.Context, name string) (*Preset, error) {
	if err := lerrors.ValidateNodeName(name); err != nil {
		return nil, err
	}
	p := &Preset{Name: name, Nodes: e.Current(), SavedAt: time.Now().UTC()}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInternal, err, "encode preset")
	}
	if err := e.store.Set(ctx, e.keyer.PresetKey(name), data, e.ttl); err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeStore, err, "save preset %s", name)
	}
	e.logger.Info("preset saved", "name", name, "nodes", len(p.Nodes))
	return p, nil
}

// Preset reads the preset called name without applying it.
func (e *Engine) Preset(ctx context.Context, name string) (*Preset, error) {
	data, ok, err := e.store.Get(ctx, e.keyer.PresetKey(name))
	if err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeStore, err, "load preset %s", name)
	}
	if !ok {
		return nil, lerrors.New(lerrors.ErrCodeNotFound, "no preset %q", name)
	}
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeStore, err, "decode preset %s", name)
	}
	slices.SortStableFunc(p.Nodes, func(a, b config.Node) int {
		return cmp.Compare(indexOf(a), indexOf(b))
	})
	return &p, nil
}

// LoadPreset replaces every node with the preset called name.
func (e *Engine) LoadPreset(ctx context.Context, name string) (*Preset, error) {
	p, err := e.Preset(ctx, name)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clear(ctx)
	e.logger.Info("preset loaded", "name", name, "nodes", len(p.Nodes))
	return p, e.apply(ctx, p.Nodes)
}

// DeletePreset removes the preset called name.
func (e *Engine) DeletePreset(ctx context.Context, name string) error {
	if err := e.store.Delete(ctx, e.keyer.PresetKey(name)); err != nil {
		return lerrors.Wrap(lerrors.ErrCodeStore, err, "delete preset %s", name)
	}
	return nil
}

func indexOf(n config.Node) int {
	if n.Index == nil {
		return -1
	}
	return *n.Index
}
