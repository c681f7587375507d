package lights

import "fmt"

// Coord3D is a position or extent in light space. Values are immutable; all
// operations return a new coordinate.
type Coord3D struct {
	X int `json:"x" toml:"x"`
	Y int `json:"y" toml:"y"`
	Z int `json:"z" toml:"z"`
}

// Unit is the (1,1,1) vector added to a max-index to turn it into a size.
var Unit = Coord3D{1, 1, 1}

// Max returns the component-wise maximum of c and o.
func (c Coord3D) Max(o Coord3D) Coord3D {
	return Coord3D{max(c.X, o.X), max(c.Y, o.Y), max(c.Z, o.Z)}
}

// Add returns the component-wise sum of c and o.
func (c Coord3D) Add(o Coord3D) Coord3D {
	return Coord3D{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}

// Volume returns X*Y*Z, or 0 if any component is not positive.
func (c Coord3D) Volume() int {
	if c.X <= 0 || c.Y <= 0 || c.Z <= 0 {
		return 0
	}
	return c.X * c.Y * c.Z
}

// Within reports whether c lies inside the box [0,size).
func (c Coord3D) Within(size Coord3D) bool {
	return c.X >= 0 && c.Y >= 0 && c.Z >= 0 &&
		c.X < size.X && c.Y < size.Y && c.Z < size.Z
}

func (c Coord3D) String() string {
	return fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z)
}
