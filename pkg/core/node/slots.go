package node

import "github.com/google/uuid"

// Handle identifies one occupant of one slot. It stops resolving once the
// slot is overwritten or cleared.
type Handle struct {
	Slot int
	Gen  uint32
}

// SlotInfo describes an occupied slot for diagnostics.
type SlotInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	ID    string `json:"id"`
	Gen   uint32 `json:"gen"`
}

type slot struct {
	node Node
	name string
	id   string
	gen  uint32
}

// MaxSlots bounds the slot index a saved configuration may ask for.
const MaxSlots = 256

// Slots is an ordered arena of node slots. A slot may be empty after its node
// was removed; iteration skips empty slots.
type Slots struct {
	slots []slot
}

// Put stores n under name at index. An index inside the arena replaces the
// occupant, releasing it; any other index appends a new slot. It returns the
// handle of n.
func (s *Slots) Put(index int, name string, n Node) Handle {
	if index >= 0 && index < len(s.slots) {
		sl := &s.slots[index]
		Release(sl.node)
		sl.gen++
		sl.node, sl.name, sl.id = n, name, uuid.NewString()
		return Handle{Slot: index, Gen: sl.gen}
	}
	s.slots = append(s.slots, slot{node: n, name: name, id: uuid.NewString()})
	return Handle{Slot: len(s.slots) - 1}
}

// Grow appends empty slots until the arena holds at least n, so that a later
// Put at index n lands exactly there.
func (s *Slots) Grow(n int) {
	for len(s.slots) < n {
		s.slots = append(s.slots, slot{})
	}
}

// Remove releases and clears the node at index. It reports whether the slot
// was occupied.
func (s *Slots) Remove(index int) bool {
	if index < 0 || index >= len(s.slots) || s.slots[index].node == nil {
		return false
	}
	sl := &s.slots[index]
	Release(sl.node)
	sl.gen++
	sl.node, sl.name, sl.id = nil, "", ""
	return true
}

// RemoveNode removes n wherever it is stored.
func (s *Slots) RemoveNode(n Node) bool {
	if n == nil {
		return false
	}
	for i := range s.slots {
		if s.slots[i].node == n {
			return s.Remove(i)
		}
	}
	return false
}

// Get resolves h. It fails for stale handles.
func (s *Slots) Get(h Handle) (Node, bool) {
	if h.Slot < 0 || h.Slot >= len(s.slots) {
		return nil, false
	}
	sl := s.slots[h.Slot]
	if sl.gen != h.Gen || sl.node == nil {
		return nil, false
	}
	return sl.node, true
}

// At returns the node at index, or nil.
func (s *Slots) At(index int) Node {
	if index < 0 || index >= len(s.slots) {
		return nil
	}
	return s.slots[index].node
}

// Each calls fn for every occupied slot in order.
func (s *Slots) Each(fn func(index int, n Node)) {
	for i := range s.slots {
		if n := s.slots[i].node; n != nil {
			fn(i, n)
		}
	}
}

// Len returns the number of slots, empty ones included.
func (s *Slots) Len() int { return len(s.slots) }

// Occupied returns the number of slots holding a node.
func (s *Slots) Occupied() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].node != nil {
			n++
		}
	}
	return n
}

// Info lists the occupied slots.
func (s *Slots) Info() []SlotInfo {
	var out []SlotInfo
	for i, sl := range s.slots {
		if sl.node == nil {
			continue
		}
		out = append(out, SlotInfo{Index: i, Name: sl.name, ID: sl.id, Gen: sl.gen})
	}
	return out
}

// Clear releases every node and empties the arena.
func (s *Slots) Clear() {
	for i := range s.slots {
		Release(s.slots[i].node)
	}
	s.slots = nil
}
