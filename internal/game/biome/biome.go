// Package biome implements terrain strategies: noise height fields,
// altitude and slope painting, and decoration scatter.
package biome

import (
	gomath "math"
	"math/rand/v2"
	"slices"

	"github.com/Faultbox/trackloop/internal/engine/terrain"
	"github.com/Faultbox/trackloop/internal/game/track"
	"github.com/Faultbox/trackloop/pkg/math"
)

// Palette colors a biome by altitude and slope.
type Palette struct {
	Low  terrain.Color
	Mid  terrain.Color
	High terrain.Color
	Rock terrain.Color // steep faces
}

// DecorationRule describes one kind of scattered object.
type DecorationRule struct {
	Kind      string
	Category  track.SizeCategory
	Density   float64 // expected objects per sample
	Clearance float64 // minimum distance from the track centerline
	MinUpY    float64 // minimum normal Y; keeps objects off cliffs
	MinScale  float64
	MaxScale  float64
}

// footprint is the number of neighboring sample rings an object claims.
func (r DecorationRule) footprint() int {
	return int(r.Category)
}

// Biome is a terrain strategy for one region.
type Biome struct {
	Name        string
	Noise       NoiseParams
	HeightScale float64 // fraction of the max height the noise spans
	Palette     Palette
	RockSlope   float64 // normal Y below which surfaces turn to rock
	Decorations []DecorationRule
}

var _ track.TerrainStrategy = (*Biome)(nil)

// GenerateHeightField samples fractal noise in world space and colors each
// sample by its altitude.
func (b *Biome) GenerateHeightField(loc track.GridLocation, resolution int, tileSize, maxHeight float64) ([]float64, []terrain.Color) {
	grid := terrain.Grid{Resolution: resolution, Size: tileSize}
	ox := float64(loc.X) * tileSize
	oz := float64(loc.Y) * tileSize

	n := resolution * resolution
	heights := make([]float64, n)
	colors := make([]terrain.Color, n)
	for z := range resolution {
		for x := range resolution {
			lx, lz := grid.Local(x, z)
			i := grid.Index(x, z)
			heights[i] = b.Noise.Fractal(ox+lx, oz+lz) * b.HeightScale * maxHeight
			colors[i] = b.altitudeColor(heights[i], maxHeight)
		}
	}
	return heights, colors
}

func (b *Biome) altitudeColor(h, maxHeight float64) terrain.Color {
	if maxHeight <= 0 {
		return b.Palette.Low
	}
	a := math.Clamp(h/maxHeight, 0, 1)
	if a < 0.5 {
		return b.Palette.Low.Lerp(b.Palette.Mid, a*2)
	}
	return b.Palette.Mid.Lerp(b.Palette.High, (a-0.5)*2)
}

// PaintSurface recolors samples by altitude over the final (flattened and
// blended) heights, then fades steep faces toward rock.
func (b *Biome) PaintSurface(_ track.GridLocation, _ int, maxHeight float64, positions, normals []math.Vec3, colors []terrain.Color) {
	for i := range colors {
		c := b.altitudeColor(positions[i].Y, maxHeight)
		if b.RockSlope > 0 && normals[i].Y < b.RockSlope {
			c = c.Lerp(b.Palette.Rock, math.Clamp((b.RockSlope-normals[i].Y)/b.RockSlope*4, 0, 1))
		}
		colors[i] = c
	}
}

// PlaceDecorations scatters objects with a random source seeded by the tile
// location, so a tile regenerated on a later lap gets the same layout.
// Larger categories are placed first and claim a ring of samples around
// them; nothing lands closer to the centerline than its rule's clearance.
func (b *Biome) PlaceDecorations(loc track.GridLocation, resolution int, _, _ float64,
	positions, normals []math.Vec3, _ []terrain.Color, distancesFromPath []float64, sink track.DecorationSink) {
	if len(b.Decorations) == 0 {
		return
	}
	rng := rand.New(rand.NewPCG(b.Noise.Seed, hash2D(b.Noise.Seed, loc.X, loc.Y)))

	rules := slices.Clone(b.Decorations)
	slices.SortStableFunc(rules, func(x, y DecorationRule) int {
		return int(y.Category) - int(x.Category)
	})

	n := resolution * resolution
	used := make([]bool, n)
	for _, rule := range rules {
		want := int(gomath.Round(rule.Density * float64(n)))
		placed := 0
		for attempt := 0; placed < want && attempt < want*4; attempt++ {
			i := rng.IntN(n)
			if !free(used, resolution, i, rule.footprint()) {
				continue
			}
			if i < len(distancesFromPath) && distancesFromPath[i] < rule.Clearance {
				continue
			}
			if normals[i].Y < rule.MinUpY {
				continue
			}
			claim(used, resolution, i, rule.footprint())
			scale := rule.MinScale
			if rule.MaxScale > rule.MinScale {
				scale += rng.Float64() * (rule.MaxScale - rule.MinScale)
			}
			sink.RegisterDecoration(track.Decoration{
				Kind:     rule.Kind,
				Category: rule.Category,
				Position: positions[i],
				Scale:    scale,
				Rotation: rng.Float64() * 2 * gomath.Pi,
				Slot:     i,
			})
			placed++
		}
	}
}

// free reports whether every sample within radius rings of i is unclaimed.
func free(used []bool, resolution, i, radius int) bool {
	cx, cz := i%resolution, i/resolution
	for z := max(cz-radius, 0); z <= min(cz+radius, resolution-1); z++ {
		for x := max(cx-radius, 0); x <= min(cx+radius, resolution-1); x++ {
			if used[z*resolution+x] {
				return false
			}
		}
	}
	return true
}

func claim(used []bool, resolution, i, radius int) {
	cx, cz := i%resolution, i/resolution
	for z := max(cz-radius, 0); z <= min(cz+radius, resolution-1); z++ {
		for x := max(cx-radius, 0); x <= min(cx+radius, resolution-1); x++ {
			used[z*resolution+x] = true
		}
	}
}
