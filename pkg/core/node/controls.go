package node

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/matzehuels/lightlayer/pkg/core/lights"
)

// Control is one named configuration value. Numeric values are clamped to
// Min/Max when those are set; Controls holds the children of a group.
type Control struct {
	Name     string   `json:"name" toml:"name"`
	Type     string   `json:"type,omitempty" toml:"type,omitempty"`
	Value    any      `json:"value,omitempty" toml:"value,omitempty"`
	Min      *float64 `json:"min,omitempty" toml:"min,omitempty"`
	Max      *float64 `json:"max,omitempty" toml:"max,omitempty"`
	Controls Controls `json:"controls,omitempty" toml:"controls,omitempty"`
}

// Controls is an ordered set of controls. Accessors take the first control
// with a matching name and fall back to a default when it is missing or has
// the wrong type.
type Controls []Control

// Find returns the first control called name.
func (c Controls) Find(name string) (Control, bool) {
	for _, ctl := range c {
		if ctl.Name == name {
			return ctl, true
		}
	}
	return Control{}, false
}

// Float returns a numeric control.
func (c Controls) Float(name string, def float64) float64 {
	ctl, ok := c.Find(name)
	if !ok {
		return def
	}
	v, ok := toFloat(ctl.Value)
	if !ok {
		return def
	}
	return ctl.clamp(v)
}

// Int returns a numeric control truncated toward zero.
func (c Controls) Int(name string, def int) int {
	ctl, ok := c.Find(name)
	if !ok {
		return def
	}
	v, ok := toFloat(ctl.Value)
	if !ok {
		return def
	}
	return int(ctl.clamp(v))
}

// Bool returns a boolean control. Numbers count as true when non-zero.
func (c Controls) Bool(name string, def bool) bool {
	ctl, ok := c.Find(name)
	if !ok {
		return def
	}
	switch v := ctl.Value.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		return def
	}
	if f, ok := toFloat(ctl.Value); ok {
		return f != 0
	}
	return def
}

// String returns a text control.
func (c Controls) String(name string, def string) string {
	ctl, ok := c.Find(name)
	if !ok {
		return def
	}
	if s, ok := ctl.Value.(string); ok {
		return s
	}
	return def
}

// Coord returns a 3D coordinate control. It accepts {x,y,z} objects and
// [x,y,z] arrays; missing components keep their default.
func (c Controls) Coord(name string, def lights.Coord3D) lights.Coord3D {
	ctl, ok := c.Find(name)
	if !ok {
		return def
	}
	out := def
	switch v := ctl.Value.(type) {
	case map[string]any:
		setAxis(&out.X, v["x"], ctl)
		setAxis(&out.Y, v["y"], ctl)
		setAxis(&out.Z, v["z"], ctl)
	case []any:
		axes := []*int{&out.X, &out.Y, &out.Z}
		for i := 0; i < len(v) && i < len(axes); i++ {
			setAxis(axes[i], v[i], ctl)
		}
	case lights.Coord3D:
		out = v
	}
	return out
}

// Group returns the children of a group control.
func (c Controls) Group(name string) Controls {
	ctl, ok := c.Find(name)
	if !ok {
		return nil
	}
	return ctl.Controls
}

// Set replaces the value of name, appending a new control if needed.
func (c Controls) Set(name string, value any) Controls {
	for i := range c {
		if c[i].Name == name {
			c[i].Value = value
			return c
		}
	}
	return append(c, Control{Name: name, Value: value})
}

func setAxis(dst *int, v any, ctl Control) {
	if f, ok := toFloat(v); ok {
		*dst = int(ctl.clamp(f))
	}
}

func (ctl Control) clamp(v float64) float64 {
	if ctl.Min != nil && v < *ctl.Min {
		v = *ctl.Min
	}
	if ctl.Max != nil && v > *ctl.Max {
		v = *ctl.Max
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// Bound is a helper for declaring Min/Max in code.
func Bound(v float64) *float64 { return &v }
