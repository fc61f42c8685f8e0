package biome

import (
	"errors"
	"fmt"

	"github.com/Faultbox/trackloop/internal/game/track"
)

// ErrNoBiomes is returned when a region map is built without biomes.
var ErrNoBiomes = errors.New("no biomes configured")

// Regions assigns a biome to each square region of grid cells.
type Regions struct {
	biomes     []*Biome
	regionSize int
	seed       uint64
}

var _ track.StrategyProvider = (*Regions)(nil)

// NewRegions creates a provider that splits the grid into regionSize×regionSize
// blocks and picks a biome per block from a hash of its coordinates.
func NewRegions(regionSize int, seed uint64, biomes ...*Biome) (*Regions, error) {
	if len(biomes) == 0 {
		return nil, ErrNoBiomes
	}
	if regionSize < 1 {
		return nil, fmt.Errorf("region size %d must be positive", regionSize)
	}
	return &Regions{biomes: biomes, regionSize: regionSize, seed: seed}, nil
}

// StrategyFor implements track.StrategyProvider.
func (r *Regions) StrategyFor(loc track.GridLocation) track.TerrainStrategy {
	return r.BiomeAt(loc)
}

// BiomeAt returns the biome covering a grid location.
func (r *Regions) BiomeAt(loc track.GridLocation) *Biome {
	if len(r.biomes) == 1 {
		return r.biomes[0]
	}
	rx := floorDiv(loc.X, r.regionSize)
	ry := floorDiv(loc.Y, r.regionSize)
	return r.biomes[hash2D(r.seed, rx, ry)%uint64(len(r.biomes))]
}

// Biomes returns the configured biomes.
func (r *Regions) Biomes() []*Biome {
	return r.biomes
}
