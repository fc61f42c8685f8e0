package track

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/trackloop/internal/engine/terrain"
	"github.com/Faultbox/trackloop/pkg/math"
)

// ErrEdgeAlreadyBlended is returned when a tile side receives a second
// neighbor blend write.
var ErrEdgeAlreadyBlended = errors.New("tile edge already blended")

// PathSample is one point of a tile centerline with its distance from the
// tile's entry edge, measured along the centerline.
type PathSample struct {
	Position math.Vec3
	Distance float64
}

// SizeCategory buckets decorations so queries can filter by footprint.
type SizeCategory int

// Decoration size categories.
const (
	Small SizeCategory = iota
	Medium
	Large
)

// String returns the category name.
func (c SizeCategory) String() string {
	switch c {
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	default:
		return fmt.Sprintf("SizeCategory(%d)", int(c))
	}
}

// Decoration is an object scattered on a tile by its terrain strategy.
type Decoration struct {
	Kind     string
	Category SizeCategory
	Position math.Vec3 // world space
	Scale    float64
	Rotation float64 // radians around Y
	Slot     int     // sample index the object occupies
}

// Tile is a resident piece of the track: its topology, centerline samples,
// generated surface buffers, mesh and decorations.
type Tile struct {
	Descriptor

	Origin  math.Vec3 // world position of the tile's south-west corner
	Size    float64
	Samples []PathSample
	Length  float64 // centerline length
	Mesh    *terrain.Mesh
	Serial  uint64 // spawn order, unique per generator

	grid          terrain.Grid
	heights       []float64
	colors        []terrain.Color
	trackDistance []float64

	decorations map[SizeCategory][]Decoration

	heightEdgeWritten [4]bool
	colorEdgeWritten  [4]bool
}

// newTile lays out the centerline for d. Buffers are filled by the generator.
func newTile(d Descriptor, size, maxSpacing float64, resolution int) *Tile {
	samples, length := Centerline(d, size, maxSpacing)
	origin := math.Vec3{X: float64(d.Location.X) * size, Z: float64(d.Location.Y) * size}
	for i := range samples {
		samples[i].Position = samples[i].Position.Add(origin)
	}
	return &Tile{
		Descriptor:  d,
		Origin:      origin,
		Size:        size,
		Samples:     samples,
		Length:      length,
		grid:        terrain.Grid{Resolution: resolution, Size: size},
		decorations: make(map[SizeCategory][]Decoration),
	}
}

// Centerline samples the idealized path through a tile in tile-local
// coordinates. Consecutive samples are at most maxSpacing apart along the
// centerline, and the first and last samples are exactly the entry and exit
// edge midpoints.
func Centerline(d Descriptor, size, maxSpacing float64) ([]PathSample, float64) {
	entry := EdgeMidpoint(d.Entry, size)
	exit := EdgeMidpoint(d.Exit, size)

	if !d.IsCorner() {
		length := exit.Distance(entry)
		n := intervals(length, maxSpacing)
		samples := make([]PathSample, n+1)
		for i := range samples {
			t := float64(i) / float64(n)
			samples[i] = PathSample{Position: entry.Lerp(exit, t), Distance: length * t}
		}
		samples[0].Position = entry
		samples[n] = PathSample{Position: exit, Distance: length}
		return samples, length
	}

	center := CornerCenter(d.Entry, d.Exit, size)
	radius := size / 2
	length := radius * gomath.Pi / 2

	start := entry.Sub(center).XZ().Angle()
	sweep := exit.Sub(center).XZ().Angle() - start
	for sweep > gomath.Pi {
		sweep -= 2 * gomath.Pi
	}
	for sweep <= -gomath.Pi {
		sweep += 2 * gomath.Pi
	}

	n := intervals(length, maxSpacing)
	samples := make([]PathSample, n+1)
	for i := range samples {
		t := float64(i) / float64(n)
		angle := start + sweep*t
		samples[i] = PathSample{
			Position: math.Vec3{
				X: center.X + radius*gomath.Cos(angle),
				Z: center.Z + radius*gomath.Sin(angle),
			},
			Distance: length * t,
		}
	}
	samples[0].Position = entry
	samples[n] = PathSample{Position: exit, Distance: length}
	return samples, length
}

func intervals(length, maxSpacing float64) int {
	n := int(gomath.Ceil(length / maxSpacing))
	if n < 1 {
		n = 1
	}
	return n
}

// EdgeMidpoint returns the tile-local midpoint of side s.
func EdgeMidpoint(s Heading, size float64) math.Vec3 {
	half := size / 2
	switch s {
	case North:
		return math.Vec3{X: half, Z: size}
	case East:
		return math.Vec3{X: size, Z: half}
	case South:
		return math.Vec3{X: half, Z: 0}
	default:
		return math.Vec3{X: 0, Z: half}
	}
}

// CornerCenter returns the tile-local corner shared by two perpendicular sides.
func CornerCenter(a, b Heading, size float64) math.Vec3 {
	var c math.Vec3
	for _, s := range [2]Heading{a, b} {
		switch s {
		case North:
			c.Z = size
		case East:
			c.X = size
		}
	}
	return c
}

// Grid returns the sample grid layout of the tile surface.
func (t *Tile) Grid() terrain.Grid {
	return t.grid
}

// Heights returns the tile height buffer. Callers must not modify it.
func (t *Tile) Heights() []float64 {
	return t.heights
}

// Colors returns the tile color buffer. Callers must not modify it.
func (t *Tile) Colors() []terrain.Color {
	return t.colors
}

// TrackDistances returns, per sample, the distance to the idealized centerline.
func (t *Tile) TrackDistances() []float64 {
	return t.trackDistance
}

// HeightAt returns the interpolated surface height at a world position.
func (t *Tile) HeightAt(worldX, worldZ float64) float64 {
	return t.grid.HeightAt(t.heights, worldX-t.Origin.X, worldZ-t.Origin.Z)
}

// RegisterDecoration files a placed object under its size category.
func (t *Tile) RegisterDecoration(d Decoration) {
	t.decorations[d.Category] = append(t.decorations[d.Category], d)
}

// Decorations returns the decorations in one size category.
func (t *Tile) Decorations(c SizeCategory) []Decoration {
	return t.decorations[c]
}

// DecorationCount returns the number of decorations across all categories.
func (t *Tile) DecorationCount() int {
	n := 0
	for _, ds := range t.decorations {
		n += len(ds)
	}
	return n
}

// EdgeBlend carries seam values a newly spawned neighbor pushes onto one
// side of an already published tile. Nil slices leave that channel alone.
type EdgeBlend struct {
	Side    Heading
	Heights []float64
	Colors  []terrain.Color
}

// ApplyEdgeBlend writes seam values into the outermost row of one side.
// Each channel of each side accepts a single write for the lifetime of
// the tile; a repeated write returns ErrEdgeAlreadyBlended and changes nothing.
// reshaped reports whether any height moved. Decorations standing on a moved
// sample follow it.
func (t *Tile) ApplyEdgeBlend(b EdgeBlend) (reshaped bool, err error) {
	side := b.Side.Side()
	if b.Heights != nil && t.heightEdgeWritten[b.Side] {
		return false, fmt.Errorf("%w: %s heights of tile %s", ErrEdgeAlreadyBlended, b.Side, t.Location)
	}
	if b.Colors != nil && t.colorEdgeWritten[b.Side] {
		return false, fmt.Errorf("%w: %s colors of tile %s", ErrEdgeAlreadyBlended, b.Side, t.Location)
	}

	if b.Heights != nil {
		t.heightEdgeWritten[b.Side] = true
		for i, h := range b.Heights {
			idx := t.grid.EdgeIndex(side, i, 0)
			if t.heights[idx] != h {
				t.heights[idx] = h
				if t.Mesh != nil {
					t.Mesh.SetHeight(idx, h)
				}
				t.liftDecorations(idx, h)
				reshaped = true
			}
		}
		if reshaped && t.Mesh != nil {
			terrain.RecalculateNormals(t.Mesh)
			terrain.RecalculateBounds(t.Mesh)
		}
	}

	if b.Colors != nil {
		t.colorEdgeWritten[b.Side] = true
		for i, c := range b.Colors {
			idx := t.grid.EdgeIndex(side, i, 0)
			t.colors[idx] = c
			if t.Mesh != nil {
				t.Mesh.SetColor(idx, c)
			}
		}
	}
	return reshaped, nil
}

func (t *Tile) liftDecorations(slot int, h float64) {
	for _, ds := range t.decorations {
		for i := range ds {
			if ds[i].Slot == slot {
				ds[i].Position.Y = h
			}
		}
	}
}

// String returns a short description for logs.
func (t *Tile) String() string {
	return fmt.Sprintf("tile#%d %s %s %s->%s", t.Serial, t.Location, t.Turn, t.Entry, t.Exit)
}
