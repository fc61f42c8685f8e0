package track

import (
	"github.com/Faultbox/trackloop/internal/engine/terrain"
	"github.com/Faultbox/trackloop/pkg/math"
)

// TerrainStrategy supplies the look of a region: its height field, surface
// coloring and scattered decorations. Buffers are resolution×resolution,
// row-major with index z*resolution + x.
type TerrainStrategy interface {
	// GenerateHeightField returns raw heights and base colors for a tile.
	GenerateHeightField(loc GridLocation, resolution int, tileSize, maxHeight float64) ([]float64, []terrain.Color)

	// PaintSurface may recolor the tile using world positions and normals.
	PaintSurface(loc GridLocation, resolution int, maxHeight float64, positions, normals []math.Vec3, colors []terrain.Color)

	// PlaceDecorations scatters objects away from the path and registers
	// each one with sink.
	PlaceDecorations(loc GridLocation, resolution int, maxHeight, tileSize float64,
		positions, normals []math.Vec3, colors []terrain.Color, distancesFromPath []float64, sink DecorationSink)
}

// DecorationSink receives placed decorations.
type DecorationSink interface {
	RegisterDecoration(d Decoration)
}

// StrategyProvider picks the terrain strategy responsible for a grid location.
type StrategyProvider interface {
	StrategyFor(loc GridLocation) TerrainStrategy
}

// SingleStrategy serves one strategy everywhere.
type SingleStrategy struct {
	Strategy TerrainStrategy
}

// StrategyFor implements StrategyProvider.
func (s SingleStrategy) StrategyFor(GridLocation) TerrainStrategy {
	return s.Strategy
}

// Observer is notified about window changes. Callbacks run synchronously
// inside the generator and must not call back into it.
type Observer interface {
	TileSpawned(t *Tile)
	TileEvicted(t *Tile)
	// TileReshaped follows a seam write that moved heights of an already
	// published tile: its mesh bounds and decoration heights changed.
	TileReshaped(t *Tile)
	LegAdvanced(leg int, lap int)
}
