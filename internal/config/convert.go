package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/trackloop/internal/engine/terrain"
	"github.com/Faultbox/trackloop/internal/game/biome"
	"github.com/Faultbox/trackloop/internal/game/track"
	"github.com/Faultbox/trackloop/internal/game/train"
	"github.com/Faultbox/trackloop/pkg/math"
)

// Generator converts the track section into generator parameters and
// validates them.
func (t TrackConfig) Generator() (track.Config, error) {
	flatten, err := math.ParseCurve(t.FlattenCurve)
	if err != nil {
		return track.Config{}, fmt.Errorf("flatten curve: %w", err)
	}
	blend, err := math.ParseCurve(t.BlendCurve)
	if err != nil {
		return track.Config{}, fmt.Errorf("blend curve: %w", err)
	}
	cfg := track.Config{
		TileSize:         t.TileSize,
		Resolution:       t.Resolution,
		MaxHeight:        t.MaxHeight,
		SampleSpacing:    t.SampleSpacing,
		Origin:           track.GridLocation{X: t.OriginX, Y: t.OriginY},
		LegLength:        t.LegLength,
		DetourChance:     t.DetourChance,
		FlattenThreshold: t.FlattenThreshold,
		FlattenCurve:     flatten,
		BlendRows:        t.BlendRows,
		BlendCurve:       blend,
		TilesAhead:       t.TilesAhead,
		RetainBehind:     t.RetainBehind,
		PoolCapacity:     t.PoolCapacity,
	}
	if err := cfg.Validate(); err != nil {
		return track.Config{}, err
	}
	return cfg, nil
}

// Catalog returns the template catalog.
func (t TrackConfig) Catalog() *track.TemplateCatalog {
	return track.NewTemplateCatalog(t.Templates.Straight, t.Templates.Left, t.Templates.Right)
}

// Train returns the train dimensions.
func (t TrainConfig) Train() train.Config {
	return train.Config{Cars: t.Cars, CarLength: t.CarLength, Gap: t.Gap, Speed: t.Speed, MaxSpeed: t.MaxSpeed}
}

// Provider builds the biome region map. Each biome's noise seed is derived
// from the run seed so one seed reproduces the whole world.
func (b BiomesConfig) Provider(seed uint64) (*biome.Regions, error) {
	if len(b.List) == 0 {
		return nil, biome.ErrNoBiomes
	}
	biomes := make([]*biome.Biome, 0, len(b.List))
	var errs []error
	for i, bc := range b.List {
		bm, err := bc.build(seed + uint64(i)*7919)
		if err != nil {
			errs = append(errs, fmt.Errorf("biome %q: %w", bc.Name, err))
			continue
		}
		biomes = append(biomes, bm)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return biome.NewRegions(b.RegionSize, seed, biomes...)
}

func (bc BiomeConfig) build(seed uint64) (*biome.Biome, error) {
	if bc.Octaves < 1 || bc.Frequency <= 0 {
		return nil, fmt.Errorf("octaves %d and frequency %v must be positive", bc.Octaves, bc.Frequency)
	}

	var palette biome.Palette
	for _, c := range []struct {
		name string
		rgb  []float32
		dst  *terrain.Color
	}{
		{"low", bc.Palette.Low, &palette.Low},
		{"mid", bc.Palette.Mid, &palette.Mid},
		{"high", bc.Palette.High, &palette.High},
		{"rock", bc.Palette.Rock, &palette.Rock},
	} {
		col, err := parseRGB(c.rgb)
		if err != nil {
			return nil, fmt.Errorf("palette %s: %w", c.name, err)
		}
		*c.dst = col
	}

	rules := make([]biome.DecorationRule, 0, len(bc.Decorations))
	for _, dc := range bc.Decorations {
		cat, err := ParseSizeCategory(dc.Size)
		if err != nil {
			return nil, fmt.Errorf("decoration %q: %w", dc.Kind, err)
		}
		rules = append(rules, biome.DecorationRule{
			Kind:      dc.Kind,
			Category:  cat,
			Density:   dc.Density,
			Clearance: dc.Clearance,
			MinUpY:    dc.MinUpY,
			MinScale:  dc.MinScale,
			MaxScale:  dc.MaxScale,
		})
	}

	return &biome.Biome{
		Name: bc.Name,
		Noise: biome.NoiseParams{
			Seed:        seed,
			Octaves:     bc.Octaves,
			Frequency:   bc.Frequency,
			Persistence: bc.Persistence,
			Lacunarity:  bc.Lacunarity,
		},
		HeightScale: bc.HeightScale,
		Palette:     palette,
		RockSlope:   bc.RockSlope,
		Decorations: rules,
	}, nil
}

func parseRGB(rgb []float32) (terrain.Color, error) {
	if len(rgb) != 3 {
		return terrain.Color{}, fmt.Errorf("want 3 components, got %d", len(rgb))
	}
	for _, v := range rgb {
		if v < 0 || v > 1 {
			return terrain.Color{}, fmt.Errorf("component %v outside [0,1]", v)
		}
	}
	return terrain.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 1}, nil
}

// ParseSizeCategory converts a decoration size name to its category.
func ParseSizeCategory(name string) (track.SizeCategory, error) {
	switch strings.ToLower(name) {
	case "small", "":
		return track.Small, nil
	case "medium":
		return track.Medium, nil
	case "large":
		return track.Large, nil
	default:
		return 0, fmt.Errorf("unknown size category %q", name)
	}
}
