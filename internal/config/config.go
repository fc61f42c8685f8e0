// Package config handles simulation configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all settings.
type Config struct {
	Run     RunConfig     `yaml:"run"`
	Track   TrackConfig   `yaml:"track"`
	Biomes  BiomesConfig  `yaml:"biomes"`
	Train   TrainConfig   `yaml:"train"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Inspect InspectConfig `yaml:"inspect"`
	Logging LoggingConfig `yaml:"logging"`
}

// RunConfig holds simulation driver settings.
type RunConfig struct {
	Seed     uint64 `yaml:"seed"`      // 0 picks a random seed
	Ticks    int    `yaml:"ticks"`     // headless run length, 0 runs until interrupted
	TickRate int    `yaml:"tick_rate"` // ticks per second
}

// TrackConfig holds tile generation settings.
type TrackConfig struct {
	TileSize         float64         `yaml:"tile_size"`
	Resolution       int             `yaml:"resolution"`
	MaxHeight        float64         `yaml:"max_height"`
	SampleSpacing    float64         `yaml:"sample_spacing"`
	OriginX          int             `yaml:"origin_x"`
	OriginY          int             `yaml:"origin_y"`
	LegLength        int             `yaml:"leg_length"`
	DetourChance     float64         `yaml:"detour_chance"`
	FlattenThreshold float64         `yaml:"flatten_threshold"`
	FlattenCurve     string          `yaml:"flatten_curve"`
	BlendRows        int             `yaml:"blend_rows"`
	BlendCurve       string          `yaml:"blend_curve"`
	TilesAhead       int             `yaml:"tiles_ahead"`
	RetainBehind     int             `yaml:"retain_behind"`
	PoolCapacity     int             `yaml:"pool_capacity"`
	Templates        TemplatesConfig `yaml:"templates"`
}

// TemplatesConfig lists authored tile templates per turn type.
type TemplatesConfig struct {
	Straight []string `yaml:"straight"`
	Left     []string `yaml:"left"`
	Right    []string `yaml:"right"`
}

// BiomesConfig holds terrain strategy settings.
type BiomesConfig struct {
	RegionSize int           `yaml:"region_size"` // grid cells per region side
	List       []BiomeConfig `yaml:"list"`
}

// BiomeConfig describes one biome.
type BiomeConfig struct {
	Name        string             `yaml:"name"`
	Octaves     int                `yaml:"octaves"`
	Frequency   float64            `yaml:"frequency"`
	Persistence float64            `yaml:"persistence"`
	Lacunarity  float64            `yaml:"lacunarity"`
	HeightScale float64            `yaml:"height_scale"`
	RockSlope   float64            `yaml:"rock_slope"`
	Palette     PaletteConfig      `yaml:"palette"`
	Decorations []DecorationConfig `yaml:"decorations"`
}

// PaletteConfig holds RGB colors in [0,1].
type PaletteConfig struct {
	Low  []float32 `yaml:"low,flow"`
	Mid  []float32 `yaml:"mid,flow"`
	High []float32 `yaml:"high,flow"`
	Rock []float32 `yaml:"rock,flow"`
}

// DecorationConfig describes one scattered object kind.
type DecorationConfig struct {
	Kind      string  `yaml:"kind"`
	Size      string  `yaml:"size"` // small, medium or large
	Density   float64 `yaml:"density"`
	Clearance float64 `yaml:"clearance"`
	MinUpY    float64 `yaml:"min_up_y"`
	MinScale  float64 `yaml:"min_scale"`
	MaxScale  float64 `yaml:"max_scale"`
}

// TrainConfig holds the consumer chain settings.
type TrainConfig struct {
	Cars      int     `yaml:"cars"`
	CarLength float64 `yaml:"car_length"`
	Gap       float64 `yaml:"gap"`
	Speed     float64 `yaml:"speed"`     // world units per second
	MaxSpeed  float64 `yaml:"max_speed"` // cap for interactive speed changes, 0 for none
}

// ViewerConfig holds display settings.
type ViewerConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	VSync    bool    `yaml:"vsync"`
	Zoom     float64 `yaml:"zoom"` // pixels per world unit
	FPSLimit int     `yaml:"fps_limit"`

	SnapshotDir string `yaml:"snapshot_dir"` // empty saves into the working directory
}

// InspectConfig holds inspection server settings.
type InspectConfig struct {
	Addr string `yaml:"addr"` // empty disables the server
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			TickRate: 60,
		},
		Track: TrackConfig{
			TileSize:         400,
			Resolution:       64,
			MaxHeight:        60,
			SampleSpacing:    10,
			LegLength:        24,
			DetourChance:     0.5,
			FlattenThreshold: 60,
			FlattenCurve:     "smoothstep",
			BlendRows:        8,
			BlendCurve:       "smoothstep",
			TilesAhead:       8,
			RetainBehind:     4,
			PoolCapacity:     16,
			Templates: TemplatesConfig{
				Straight: []string{"straight_plain", "straight_cutting", "straight_embankment"},
				Left:     []string{"curve_left"},
				Right:    []string{"curve_right"},
			},
		},
		Biomes: BiomesConfig{
			RegionSize: 6,
			List:       defaultBiomes(),
		},
		Train: TrainConfig{
			Cars:      6,
			CarLength: 24,
			Gap:       2,
			Speed:     80,
			MaxSpeed:  2000,
		},
		Viewer: ViewerConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
			Zoom:   0.5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultBiomes() []BiomeConfig {
	return []BiomeConfig{
		{
			Name: "meadow", Octaves: 4, Frequency: 1.0 / 600, Persistence: 0.5, Lacunarity: 2,
			HeightScale: 0.6, RockSlope: 0.6,
			Palette: PaletteConfig{
				Low:  []float32{0.28, 0.52, 0.22},
				Mid:  []float32{0.42, 0.60, 0.28},
				High: []float32{0.62, 0.66, 0.44},
				Rock: []float32{0.45, 0.42, 0.38},
			},
			Decorations: []DecorationConfig{
				{Kind: "bush", Size: "small", Density: 0.01, Clearance: 30, MinUpY: 0.8, MinScale: 0.6, MaxScale: 1.2},
				{Kind: "tree", Size: "medium", Density: 0.004, Clearance: 50, MinUpY: 0.85, MinScale: 0.8, MaxScale: 1.6},
			},
		},
		{
			Name: "highlands", Octaves: 5, Frequency: 1.0 / 450, Persistence: 0.55, Lacunarity: 2,
			HeightScale: 1, RockSlope: 0.75,
			Palette: PaletteConfig{
				Low:  []float32{0.30, 0.45, 0.25},
				Mid:  []float32{0.48, 0.46, 0.36},
				High: []float32{0.92, 0.92, 0.95},
				Rock: []float32{0.40, 0.38, 0.36},
			},
			Decorations: []DecorationConfig{
				{Kind: "pine", Size: "medium", Density: 0.006, Clearance: 50, MinUpY: 0.8, MinScale: 1, MaxScale: 2},
				{Kind: "boulder", Size: "large", Density: 0.001, Clearance: 80, MinUpY: 0.6, MinScale: 2, MaxScale: 4},
			},
		},
		{
			Name: "desert", Octaves: 3, Frequency: 1.0 / 800, Persistence: 0.4, Lacunarity: 2.2,
			HeightScale: 0.4, RockSlope: 0.5,
			Palette: PaletteConfig{
				Low:  []float32{0.86, 0.74, 0.52},
				Mid:  []float32{0.80, 0.64, 0.42},
				High: []float32{0.70, 0.50, 0.34},
				Rock: []float32{0.55, 0.38, 0.28},
			},
			Decorations: []DecorationConfig{
				{Kind: "cactus", Size: "small", Density: 0.003, Clearance: 40, MinUpY: 0.9, MinScale: 0.7, MaxScale: 1.3},
				{Kind: "mesa", Size: "large", Density: 0.0005, Clearance: 120, MinUpY: 0.7, MinScale: 3, MaxScale: 6},
			},
		},
	}
}

// Validate checks settings that would make the simulation fail to start.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Track.Generator(); err != nil {
		errs = append(errs, fmt.Errorf("track: %w", err))
	}
	if err := c.Track.Catalog().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("track templates: %w", err))
	}
	if _, err := c.Biomes.Provider(c.Run.Seed); err != nil {
		errs = append(errs, fmt.Errorf("biomes: %w", err))
	}
	if c.Train.Cars < 1 {
		errs = append(errs, fmt.Errorf("train: cars %d must be at least 1", c.Train.Cars))
	}
	if c.Train.CarLength <= 0 || c.Train.Gap < 0 {
		errs = append(errs, errors.New("train: car length must be positive and gap non-negative"))
	}
	if c.Train.CarLength >= c.Track.TileSize {
		errs = append(errs, fmt.Errorf("train: car length %v must be shorter than a tile", c.Train.CarLength))
	}
	if c.Run.TickRate < 1 {
		errs = append(errs, fmt.Errorf("run: tick rate %d must be positive", c.Run.TickRate))
	}
	if c.Train.Speed < 0 || c.Train.MaxSpeed < 0 {
		errs = append(errs, errors.New("train: speed and max speed must not be negative"))
	}
	if c.Train.MaxSpeed > 0 && c.Train.Speed > c.Train.MaxSpeed {
		errs = append(errs, fmt.Errorf("train: speed %v exceeds max speed %v", c.Train.Speed, c.Train.MaxSpeed))
	}
	// One tick must not carry the locomotive past the tiles spawned ahead.
	if c.Run.TickRate >= 1 && c.Track.TilesAhead > 1 {
		lookahead := float64(c.Track.TilesAhead-1) * c.Track.TileSize
		fastest := max(c.Train.Speed, c.Train.MaxSpeed)
		if fastest/float64(c.Run.TickRate) > lookahead {
			errs = append(errs, fmt.Errorf("train: %v units per tick outruns the %v unit lookahead",
				fastest/float64(c.Run.TickRate), lookahead))
		}
	}
	if c.Run.Ticks < 0 {
		errs = append(errs, fmt.Errorf("run: ticks %d must not be negative", c.Run.Ticks))
	}
	if c.Viewer.Zoom <= 0 {
		errs = append(errs, fmt.Errorf("viewer: zoom %v must be positive", c.Viewer.Zoom))
	}
	return errors.Join(errs...)
}
