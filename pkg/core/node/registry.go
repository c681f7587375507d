package node

import (
	"cmp"
	"maps"
	"slices"

	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
)

// Factory creates a fresh, unconstructed node.
type Factory func() Node

// Fallback resolves names the registry does not know. It returns false to
// leave the name unresolved.
type Fallback func(name string) (Node, bool)

// Entry describes one registered node type.
type Entry struct {
	Name     string
	Category Category
	New      Factory
}

// Registry maps stable node names to factories. Register everything at
// startup; lookups are safe for concurrent use once registration is done.
type Registry struct {
	entries  map[string]Entry
	fallback Fallback
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds e. Names must be unique and factories non-nil.
func (r *Registry) Register(e Entry) error {
	if err := lerrors.ValidateNodeName(e.Name); err != nil {
		return err
	}
	if e.New == nil {
		return lerrors.New(lerrors.ErrCodeInvalidInput, "node %q has no factory", e.Name)
	}
	if _, dup := r.entries[e.Name]; dup {
		return lerrors.New(lerrors.ErrCodeInvalidInput, "node %q already registered", e.Name)
	}
	r.entries[e.Name] = e
	return nil
}

// MustRegister is like Register but panics on error. Use it for the
// built-in node set, where a failure is a programming error.
func (r *Registry) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// SetFallback installs fn to resolve names missing from the registry.
func (r *Registry) SetFallback(fn Fallback) {
	r.fallback = fn
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// New creates the node registered under name. Unknown names yield a nil node
// and an UNKNOWN_NODE error.
func (r *Registry) New(name string) (Node, error) {
	if e, ok := r.entries[name]; ok {
		if n := e.New(); n != nil {
			return n, nil
		}
		return nil, lerrors.New(lerrors.ErrCodeInternal, "factory for %q returned nil", name)
	}
	if r.fallback != nil {
		if n, ok := r.fallback(name); ok && n != nil {
			return n, nil
		}
	}
	return nil, lerrors.New(lerrors.ErrCodeUnknownNode, "no node named %q", name)
}

// Entries returns all registered entries ordered by category, then name.
func (r *Registry) Entries() []Entry {
	out := slices.Collect(maps.Values(r.entries))
	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int { return len(r.entries) }
