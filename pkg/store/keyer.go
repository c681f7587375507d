package store

import "strings"

// Keyer builds store keys.
type Keyer interface {
	// PresetKey is the key of a named preset.
	PresetKey(name string) string
}

// DefaultKeyer generates plain keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PresetKey returns "preset:<name>".
func (DefaultKeyer) PresetKey(name string) string {
	return "preset:" + name
}

// ScopedKeyer wraps a Keyer with a prefix so several controllers can share
// one Redis or MongoDB backend.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "stage-left")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer prepends scope to every key of inner, adding a ':'
// separator when scope does not end in one.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	prefix := scope
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PresetKey generates a prefixed preset key.
func (k *ScopedKeyer) PresetKey(name string) string {
	return k.prefix + k.inner.PresetKey(name)
}
