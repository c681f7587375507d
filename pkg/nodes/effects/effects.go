// Package effects provides nodes that draw colors into a virtual layer every
// frame.
package effects

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
)

// Node names.
const (
	SolidName   = "Solid"
	RainbowName = "Rainbow"
)

// Entries registers every effect.
var Entries = []node.Entry{
	{Name: SolidName, Category: node.CategoryEffect, New: func() node.Node { return &Solid{} }},
	{Name: RainbowName, Category: node.CategoryEffect, New: func() node.Node { return &Rainbow{} }},
}

// rgb converts c to a light color scaled by brightness (0-255).
func rgb(c colorful.Color, brightness int) lights.RGB {
	r, g, b := c.Clamped().RGB255()
	scale := func(v uint8) uint8 { return uint8(int(v) * brightness / 255) }
	return lights.RGB{R: scale(r), G: scale(g), B: scale(b)}
}
