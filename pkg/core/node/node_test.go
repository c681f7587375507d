package node

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/lightlayer/pkg/core/lights"
	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
)

type stubNode struct {
	released int
	setups   int
}

func (n *stubNode) Construct(Host, Controls) error { return nil }
func (n *stubNode) Setup()                         { n.setups++ }
func (n *stubNode) Loop()                          {}
func (n *stubNode) Release()                       { n.released++ }

func newStub() Node { return &stubNode{} }

func TestRegistryNew(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Entry{Name: "Stub", Category: CategoryEffect, New: newStub}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	n, err := r.New("Stub")
	if err != nil || n == nil {
		t.Fatalf("New(Stub) = %v, %v", n, err)
	}

	n, err = r.New("Missing")
	if n != nil {
		t.Errorf("New(Missing) node = %v, want nil", n)
	}
	if !lerrors.Is(err, lerrors.ErrCodeUnknownNode) {
		t.Errorf("New(Missing) error = %v, want UNKNOWN_NODE", err)
	}
}

func TestRegistryRejects(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Entry{Name: "Stub", New: newStub})

	tests := []struct {
		name  string
		entry Entry
	}{
		{"duplicate", Entry{Name: "Stub", New: newStub}},
		{"no factory", Entry{Name: "Other"}},
		{"empty name", Entry{Name: "", New: newStub}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Register(tt.entry); err == nil {
				t.Error("Register() should fail")
			}
		})
	}
}

func TestRegistryFallback(t *testing.T) {
	r := NewRegistry()
	r.SetFallback(func(name string) (Node, bool) {
		if name == "fire.lua" {
			return &stubNode{}, true
		}
		return nil, false
	})

	if n, err := r.New("fire.lua"); err != nil || n == nil {
		t.Errorf("fallback name = %v, %v", n, err)
	}
	if _, err := r.New("Unknown"); !lerrors.Is(err, lerrors.ErrCodeUnknownNode) {
		t.Errorf("unresolved fallback error = %v", err)
	}
}

func TestRegistryEntriesOrder(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Entry{Name: "Mirror", Category: CategoryModifier, New: newStub})
	r.MustRegister(Entry{Name: "Solid", Category: CategoryEffect, New: newStub})
	r.MustRegister(Entry{Name: "Panel", Category: CategoryLayout, New: newStub})
	r.MustRegister(Entry{Name: "Rainbow", Category: CategoryEffect, New: newStub})

	var got []string
	for _, e := range r.Entries() {
		got = append(got, e.Name)
	}
	want := []string{"Rainbow", "Solid", "Panel", "Mirror"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Entries() = %v, want %v", got, want)
		}
	}
}

func TestSlotsPutAppendAndOverwrite(t *testing.T) {
	var s Slots
	a, b := &stubNode{}, &stubNode{}

	ha := s.Put(5, "A", a) // beyond length: appended at 0
	if ha.Slot != 0 {
		t.Fatalf("appended slot = %d, want 0", ha.Slot)
	}

	hb := s.Put(0, "B", b)
	if a.released != 1 {
		t.Errorf("overwritten node released %d times, want 1", a.released)
	}
	if _, ok := s.Get(ha); ok {
		t.Error("stale handle should not resolve")
	}
	if n, ok := s.Get(hb); !ok || n != b {
		t.Error("fresh handle should resolve to the new node")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSlotsRemove(t *testing.T) {
	var s Slots
	a, b := &stubNode{}, &stubNode{}
	s.Put(0, "A", a)
	hb := s.Put(1, "B", b)

	if !s.RemoveNode(b) {
		t.Fatal("RemoveNode(b) = false")
	}
	if b.released != 1 {
		t.Errorf("removed node released %d times, want 1", b.released)
	}
	if _, ok := s.Get(hb); ok {
		t.Error("handle of removed node should not resolve")
	}
	if s.RemoveNode(b) {
		t.Error("second RemoveNode should report false")
	}
	if s.Occupied() != 1 || s.Len() != 2 {
		t.Errorf("Occupied/Len = %d/%d, want 1/2", s.Occupied(), s.Len())
	}

	var visited []int
	s.Each(func(i int, _ Node) { visited = append(visited, i) })
	if len(visited) != 1 || visited[0] != 0 {
		t.Errorf("Each visited %v, want [0]", visited)
	}

	if s.Remove(7) {
		t.Error("Remove out of range should report false")
	}
}

func TestSlotsGrow(t *testing.T) {
	var s Slots
	s.Put(0, "A", &stubNode{})
	s.Grow(3)
	if h := s.Put(3, "B", &stubNode{}); h.Slot != 3 {
		t.Fatalf("slot after Grow = %d, want 3", h.Slot)
	}
	if s.Len() != 4 || s.Occupied() != 2 {
		t.Errorf("Len/Occupied = %d/%d, want 4/2", s.Len(), s.Occupied())
	}
	s.Grow(1)
	if s.Len() != 4 {
		t.Errorf("Grow below Len changed it to %d", s.Len())
	}
}

func TestSlotsInfo(t *testing.T) {
	var s Slots
	s.Put(0, "A", &stubNode{})
	s.Put(1, "B", &stubNode{})
	s.Remove(0)

	info := s.Info()
	if len(info) != 1 || info[0].Name != "B" || info[0].Index != 1 {
		t.Fatalf("Info() = %+v", info)
	}
	if info[0].ID == "" {
		t.Error("occupied slot should carry an instance id")
	}
}

func TestControls(t *testing.T) {
	var ctl Controls
	data := `[
		{"name": "width", "value": 40, "min": 1, "max": 32},
		{"name": "speed", "value": 2.5},
		{"name": "snake", "value": true},
		{"name": "color", "value": "#ff0000"},
		{"name": "start", "value": {"x": 1, "y": 2}},
		{"name": "end", "value": [3, 4, 5]},
		{"name": "group", "controls": [{"name": "inner", "value": 7}]}
	]`
	if err := json.Unmarshal([]byte(data), &ctl); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := ctl.Int("width", 0); got != 32 {
		t.Errorf("Int(width) = %d, want 32 (clamped)", got)
	}
	if got := ctl.Float("speed", 0); got != 2.5 {
		t.Errorf("Float(speed) = %v", got)
	}
	if got := ctl.Int("missing", 9); got != 9 {
		t.Errorf("Int(missing) = %d, want default", got)
	}
	if !ctl.Bool("snake", false) {
		t.Error("Bool(snake) = false")
	}
	if got := ctl.String("color", ""); got != "#ff0000" {
		t.Errorf("String(color) = %q", got)
	}
	if got := ctl.String("width", "def"); got != "def" {
		t.Errorf("String on number = %q, want default", got)
	}
	if got := ctl.Coord("start", lights.Coord3D{Z: 9}); got != (lights.Coord3D{X: 1, Y: 2, Z: 9}) {
		t.Errorf("Coord(start) = %v", got)
	}
	if got := ctl.Coord("end", lights.Coord3D{}); got != (lights.Coord3D{X: 3, Y: 4, Z: 5}) {
		t.Errorf("Coord(end) = %v", got)
	}
	if got := ctl.Group("group").Int("inner", 0); got != 7 {
		t.Errorf("Group(group).Int(inner) = %d", got)
	}

	ctl = ctl.Set("speed", 4)
	ctl = ctl.Set("fresh", "x")
	if ctl.Float("speed", 0) != 4 || ctl.String("fresh", "") != "x" {
		t.Error("Set should replace and append")
	}
}
