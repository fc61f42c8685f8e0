// Package terrain provides grid mesh building, height field helpers and
// mesh buffer pooling for generated track tiles.
package terrain

// Vertex represents a terrain mesh vertex with all attributes.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Color    [4]float32
}

// Mesh holds a tile surface ready for GPU upload.
// Positions are tile-local: X and Z run from 0 to the tile size.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds

	// Resolution is the number of samples per side the mesh was built for.
	Resolution int
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

// Lerp interpolates between c (t=0) and other (t=1).
func (c Color) Lerp(other Color, t float64) Color {
	tf := float32(t)
	return Color{
		R: c.R + (other.R-c.R)*tf,
		G: c.G + (other.G-c.G)*tf,
		B: c.B + (other.B-c.B)*tf,
		A: c.A + (other.A-c.A)*tf,
	}
}

// Array returns the color as a vertex attribute.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Side names one edge of a square sample grid.
// The order matches track.Heading so the two convert directly.
type Side int

// Grid sides.
const (
	SideNorth Side = iota // z = res-1
	SideEast              // x = res-1
	SideSouth             // z = 0
	SideWest              // x = 0
)

// Opposite returns the side facing s across a shared edge.
func (s Side) Opposite() Side {
	return (s + 2) % 4
}
