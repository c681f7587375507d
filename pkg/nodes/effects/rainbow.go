package effects

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/lightlayer/pkg/core/node"
)

// Rainbow cycles the hue wheel along the virtual lights.
//
// Controls:
//   - speed: hue degrees advanced per frame, default 4
//   - deltaHue: hue degrees between neighboring lights, default 7
//   - brightness: 0-255, default 255
type Rainbow struct {
	host       node.Host
	speed      float64
	delta      float64
	brightness int
	frame      int
}

func (r *Rainbow) Construct(h node.Host, c node.Controls) error {
	r.host = h
	r.speed = c.Float("speed", 4)
	r.delta = c.Float("deltaHue", 7)
	r.brightness = clampByte(c.Int("brightness", 255))
	return nil
}

func (r *Rainbow) Setup() { r.frame = 0 }

func (r *Rainbow) Loop() {
	base := float64(r.frame) * r.speed
	for i := range r.host.LightCount() {
		r.host.SetRGB(i, rgb(colorful.Hsv(hue(base+float64(i)*r.delta), 1, 1), r.brightness))
	}
	r.frame++
}

func hue(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	return h
}
