// Package pins tracks which contiguous runs of physical lights are driven by
// which hardware output pin.
//
// Layout generators announce a pin after adding all lights belonging to it.
// [Table.Add] turns that stream of announcements into ranges: repeated calls
// with the same pin extend the last range, a different pin opens a new range
// starting where the previous one ended.
package pins

import (
	"fmt"
	"slices"
)

// Range is a contiguous run of physical light indices on one output pin.
type Range struct {
	Pin   uint8 `json:"pin"`
	Start int   `json:"startLed"`
	Count int   `json:"nrOfLights"`
}

// End returns the first index after the range.
func (r Range) End() int { return r.Start + r.Count }

func (r Range) String() string {
	return fmt.Sprintf("pin %d [%d,%d)", r.Pin, r.Start, r.End())
}

// Table is an ordered sequence of pin ranges.
// The zero value is an empty table ready to use.
type Table struct {
	ranges []Range
}

// Add records that every light up to lightCount (exclusive) that is not yet
// covered belongs to pin.
//
// If the last range has the same pin it grows to lightCount. Otherwise a new
// range starts at the end of the last one (0 for the first range) and spans
// up to lightCount.
func (t *Table) Add(pin uint8, lightCount int) {
	if n := len(t.ranges); n > 0 {
		last := &t.ranges[n-1]
		if last.Pin == pin {
			last.Count += lightCount - last.End()
			return
		}
		start := last.End()
		t.ranges = append(t.ranges, Range{Pin: pin, Start: start, Count: lightCount - start})
		return
	}
	t.ranges = append(t.ranges, Range{Pin: pin, Start: 0, Count: lightCount})
}

// Sort orders the ranges by Start. The sort is stable so equal starts keep
// their announcement order.
func (t *Table) Sort() {
	slices.SortStableFunc(t.ranges, func(a, b Range) int { return a.Start - b.Start })
}

// Clear drops all ranges, keeping the allocation.
func (t *Table) Clear() { t.ranges = t.ranges[:0] }

// Len returns the number of ranges.
func (t *Table) Len() int { return len(t.ranges) }

// Ranges returns a copy of the ranges.
func (t *Table) Ranges() []Range { return slices.Clone(t.ranges) }

// Validate checks that the ranges are sorted, contiguous and non-overlapping.
func (t *Table) Validate() error {
	next := 0
	for i, r := range t.ranges {
		if r.Count < 0 {
			return fmt.Errorf("range %d (%s): negative length", i, r)
		}
		if r.Start != next {
			return fmt.Errorf("range %d (%s): starts at %d, want %d", i, r, r.Start, next)
		}
		next = r.End()
	}
	return nil
}
