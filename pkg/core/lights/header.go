package lights

import (
	"fmt"
	"strings"
)

// PositionsState tracks what the physical buffer currently holds.
type PositionsState uint8

const (
	// PositionsUnset means the buffer holds channel data.
	PositionsUnset PositionsState = iota
	// PositionsInProgress means pass 1 is packing positions into the buffer.
	PositionsInProgress
	// PositionsComplete means the buffer holds every packed position of the last
	// pass 1 and is waiting for a consumer to hand it back.
	PositionsComplete
)

func (s PositionsState) String() string {
	switch s {
	case PositionsInProgress:
		return "in-progress"
	case PositionsComplete:
		return "complete"
	default:
		return "unset"
	}
}

// Offsets locate the color channels inside one light's channel block.
type Offsets struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

// DefaultOffsets is plain RGB order.
var DefaultOffsets = Offsets{Red: 0, Green: 1, Blue: 2}

// DefaultChannelsPerLight is used for RGB strips.
const DefaultChannelsPerLight = 3

// Header describes the physical light set produced by the last layout pass.
type Header struct {
	Lights           int            `json:"nrOfLights"`
	ChannelsPerLight int            `json:"channelsPerLight"`
	Offsets          Offsets        `json:"offsets"`
	Size             Coord3D        `json:"size"`
	Positions        PositionsState `json:"isPositions"`
}

// ParseColorOrder converts a channel order such as "RGB" or "grb" into
// offsets.
func ParseColorOrder(order string) (Offsets, error) {
	var o Offsets
	seen := map[rune]bool{}
	if len(order) != 3 {
		return o, fmt.Errorf("color order %q: want a permutation of RGB", order)
	}
	for i, c := range strings.ToUpper(order) {
		if seen[c] {
			return o, fmt.Errorf("color order %q: repeated channel %c", order, c)
		}
		seen[c] = true
		switch c {
		case 'R':
			o.Red = i
		case 'G':
			o.Green = i
		case 'B':
			o.Blue = i
		default:
			return o, fmt.Errorf("color order %q: unknown channel %c", order, c)
		}
	}
	return o, nil
}

// RGB is one light's color.
type RGB struct {
	R, G, B uint8
}
