package effects

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
)

// Solid fills the layer with one color.
//
// Controls:
//   - color: hex color, default "#ff0000"
//   - brightness: 0-255, default 255
type Solid struct {
	host  node.Host
	color lights.RGB
}

func (s *Solid) Construct(h node.Host, c node.Controls) error {
	hex := c.String("color", "#ff0000")
	col, err := colorful.Hex(hex)
	if err != nil {
		return lerrors.Wrap(lerrors.ErrCodeInvalidInput, err, "solid color %q", hex)
	}
	s.host = h
	s.color = rgb(col, clampByte(c.Int("brightness", 255)))
	return nil
}

func (s *Solid) Setup() {}

func (s *Solid) Loop() { s.host.Fill(s.color) }

// Color returns the fill color after brightness.
func (s *Solid) Color() lights.RGB { return s.color }

func clampByte(v int) int { return min(max(v, 0), 255) }
