// Package mapping translates virtual light indices into physical ones.
//
// Every virtual light owns one [Entry] in a [Table]. An entry maps to no
// physical light, to exactly one, or to a group of several stored in the
// [Overflow] table. Entries only ever move Zero → One → Many while a layout
// pass adds physical lights.
package mapping

// Kind tags a mapping entry.
type Kind uint8

const (
	// Zero means no physical light shows this virtual light.
	Zero Kind = iota
	// One means Entry.Index is the physical light index.
	One
	// Many means Entry.Index is a group in the overflow table.
	Many
)

func (k Kind) String() string {
	switch k {
	case One:
		return "one"
	case Many:
		return "many"
	default:
		return "zero"
	}
}

// Entry is the mapping record of one virtual light.
type Entry struct {
	Kind  Kind
	Index uint32
}

// Overflow stores the physical index groups of many-mappings. Groups are
// reused across layout cycles to avoid reallocating on every remap.
type Overflow struct {
	groups [][]uint32
	used   int
}

// Reset forgets all groups but keeps their storage.
func (o *Overflow) Reset() { o.used = 0 }

// Used returns the number of groups handed out since the last Reset.
func (o *Overflow) Used() int { return o.used }

// Group returns the physical indices of group i.
func (o *Overflow) Group(i uint32) []uint32 {
	if int(i) >= o.used {
		return nil
	}
	return o.groups[i]
}

func (o *Overflow) newGroup(first, second uint32) uint32 {
	if o.used == len(o.groups) {
		o.groups = append(o.groups, nil)
	}
	i := o.used
	o.groups[i] = append(o.groups[i][:0], first, second)
	o.used++
	return uint32(i)
}

func (o *Overflow) append(group, indexP uint32) {
	o.groups[group] = append(o.groups[group], indexP)
}

// Table holds one entry per virtual light plus the overflow groups its
// many-mappings point into.
type Table struct {
	entries  []Entry
	overflow Overflow
}

// Reset sizes the table to n zero entries and empties the overflow table.
func (t *Table) Reset(n int) {
	n = max(n, 0)
	if cap(t.entries) < n {
		t.entries = make([]Entry, n)
	} else {
		t.entries = t.entries[:n]
		clear(t.entries)
	}
	t.overflow.Reset()
}

// Len returns the number of virtual lights.
func (t *Table) Len() int { return len(t.entries) }

// Entry returns the entry of virtual light i.
func (t *Table) Entry(i int) Entry { return t.entries[i] }

// Overflow exposes the overflow table for inspection.
func (t *Table) Overflow() *Overflow { return &t.overflow }

// Add maps virtual light indexV onto physical light indexP as well. It
// reports false when indexV is outside the table.
func (t *Table) Add(indexV int, indexP uint32) bool {
	if indexV < 0 || indexV >= len(t.entries) {
		return false
	}
	e := &t.entries[indexV]
	switch e.Kind {
	case Zero:
		*e = Entry{Kind: One, Index: indexP}
	case One:
		*e = Entry{Kind: Many, Index: t.overflow.newGroup(e.Index, indexP)}
	case Many:
		t.overflow.append(e.Index, indexP)
	}
	return true
}

// Each calls fn for every physical index virtual light i maps to.
func (t *Table) Each(i int, fn func(indexP uint32)) {
	if i < 0 || i >= len(t.entries) {
		return
	}
	switch e := t.entries[i]; e.Kind {
	case One:
		fn(e.Index)
	case Many:
		for _, p := range t.overflow.Group(e.Index) {
			fn(p)
		}
	}
}

// Stats counts entries by kind.
type Stats struct {
	Zero         int `json:"nrOfZeroLights"`
	One          int `json:"nrOfOneLight"`
	OverflowUsed int `json:"mappingTableIndexes#"`
	// Many is the total number of physical lights reached through
	// many-mappings, not the number of many entries.
	Many int `json:"nrOfMoreLights"`
}

// Stats walks the table. It is recomputed on every call.
func (t *Table) Stats() Stats {
	s := Stats{OverflowUsed: t.overflow.used}
	for _, e := range t.entries {
		switch e.Kind {
		case Zero:
			s.Zero++
		case One:
			s.One++
		case Many:
			s.Many += len(t.overflow.Group(e.Index))
		}
	}
	return s
}
