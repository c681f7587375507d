package layouts

import (
	"slices"
	"testing"

	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
)

type recorder struct {
	lights []lights.Coord3D
	pins   []uint8
	// pinAt records the light count at each AddPin.
	pinAt []int
}

func (r *recorder) AddLight(p lights.Coord3D) error {
	r.lights = append(r.lights, p)
	return nil
}

func (r *recorder) AddPin(pin uint8) error {
	r.pins = append(r.pins, pin)
	r.pinAt = append(r.pinAt, len(r.lights))
	return nil
}

func build(t *testing.T, l node.Layout, c node.Controls) *recorder {
	t.Helper()
	if err := l.Construct(nil, c); err != nil {
		t.Fatal(err)
	}
	r := &recorder{}
	if err := l.AddLayout(r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestSingleLine(t *testing.T) {
	r := build(t, &SingleLine{}, node.Controls{
		{Name: "lights", Value: 3},
		{Name: "start", Value: map[string]any{"y": 2}},
		{Name: "reversed", Value: true},
		{Name: "pin", Value: 5},
	})
	want := []lights.Coord3D{{X: 2, Y: 2}, {X: 1, Y: 2}, {X: 0, Y: 2}}
	if !slices.Equal(r.lights, want) {
		t.Errorf("lights = %v, want %v", r.lights, want)
	}
	if !slices.Equal(r.pins, []uint8{5}) || r.pinAt[0] != 3 {
		t.Errorf("pins = %v at %v", r.pins, r.pinAt)
	}
}

func TestPanelSerpentine(t *testing.T) {
	r := build(t, &Panel{}, node.Controls{
		{Name: "width", Value: 3},
		{Name: "height", Value: 2},
		{Name: "serpentine", Value: true},
	})
	want := []lights.Coord3D{{X: 0}, {X: 1}, {X: 2}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	if !slices.Equal(r.lights, want) {
		t.Errorf("lights = %v, want %v", r.lights, want)
	}
	if !slices.Equal(r.pins, []uint8{DefaultPin}) {
		t.Errorf("pins = %v", r.pins)
	}
}

func TestPanelStart(t *testing.T) {
	r := build(t, &Panel{}, node.Controls{
		{Name: "width", Value: 2},
		{Name: "height", Value: 1},
		{Name: "start", Value: []any{16, 0, 1}},
	})
	want := []lights.Coord3D{{X: 16, Z: 1}, {X: 17, Z: 1}}
	if !slices.Equal(r.lights, want) {
		t.Errorf("lights = %v, want %v", r.lights, want)
	}
}

func TestCubePinPerPlane(t *testing.T) {
	r := build(t, &Cube{}, node.Controls{
		{Name: "width", Value: 2},
		{Name: "height", Value: 2},
		{Name: "depth", Value: 3},
		{Name: "pin", Value: 1},
	})
	if len(r.lights) != 12 {
		t.Fatalf("lights = %d, want 12", len(r.lights))
	}
	if !slices.Equal(r.pins, []uint8{1, 2, 3}) || !slices.Equal(r.pinAt, []int{4, 8, 12}) {
		t.Errorf("pins = %v at %v", r.pins, r.pinAt)
	}
	if got := r.lights[11]; got != (lights.Coord3D{X: 1, Y: 1, Z: 2}) {
		t.Errorf("last light = %v", got)
	}
}

func TestReplayIsStable(t *testing.T) {
	p := &Panel{}
	a := build(t, p, nil)
	b := &recorder{}
	p.AddLayout(b)
	if !slices.Equal(a.lights, b.lights) || !slices.Equal(a.pins, b.pins) {
		t.Error("layout differs between passes")
	}
}
