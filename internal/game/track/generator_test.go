package track

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/trackloop/internal/engine/terrain"
)

func TestConfigValidate(t *testing.T) {
	if err := testConfig().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tile size", func(c *Config) { c.TileSize = 0 }},
		{"resolution 1", func(c *Config) { c.Resolution = 1 }},
		{"negative spacing", func(c *Config) { c.SampleSpacing = -1 }},
		{"short leg", func(c *Config) { c.LegLength = 2 }},
		{"detour chance above one", func(c *Config) { c.DetourChance = 1.5 }},
		{"missing curve", func(c *Config) { c.BlendCurve = nil }},
		{"blend rows too deep", func(c *Config) { c.BlendRows = c.Resolution }},
		{"small pool", func(c *Config) { c.PoolCapacity = c.TilesAhead + c.RetainBehind }},
		{"lap shorter than pool", func(c *Config) { c.LegLength = 4; c.PoolCapacity = 12 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	cfg := testConfig()
	cfg.TileSize = -1
	if _, err := New(cfg, testCatalog(), SingleStrategy{flatStrategy{}}); err == nil {
		t.Error("New() accepted an invalid config")
	}

	catalog := NewTemplateCatalog([]string{"s"}, nil, []string{"r"})
	if _, err := New(testConfig(), catalog, SingleStrategy{flatStrategy{}}); !errors.Is(err, ErrNoTemplate) {
		t.Errorf("New() error = %v, want ErrNoTemplate", err)
	}
}

func TestSpawnPipeline(t *testing.T) {
	cfg := testConfig()
	obs := &recordingObserver{}
	g := newTestGenerator(t, cfg, noisyStrategy{decorate: true}, WithObserver(obs))

	if err := g.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	window := g.Window()
	if len(window) != cfg.TilesAhead {
		t.Fatalf("len(Window()) = %d, want %d", len(window), cfg.TilesAhead)
	}
	if g.CurrentTile() != window[0] {
		t.Errorf("CurrentTile() = %v, want first tile", g.CurrentTile())
	}
	if window[0].Location != cfg.Origin || window[0].Turn != RightTurn {
		t.Errorf("first tile = %v, want leading corner at origin", window[0])
	}

	n := cfg.Resolution * cfg.Resolution
	for i, tile := range window {
		if tile.Mesh == nil {
			t.Fatalf("tile %d has no mesh", i)
		}
		if len(tile.Mesh.Vertices) != n {
			t.Errorf("tile %d: %d vertices, want %d", i, len(tile.Mesh.Vertices), n)
		}
		if len(tile.Mesh.Indices) != (cfg.Resolution-1)*(cfg.Resolution-1)*6 {
			t.Errorf("tile %d: %d indices", i, len(tile.Mesh.Indices))
		}
		if len(tile.TrackDistances()) != n {
			t.Errorf("tile %d: %d track distances, want %d", i, len(tile.TrackDistances()), n)
		}
		if tile.Serial != uint64(i+1) {
			t.Errorf("tile %d serial = %d, want %d", i, tile.Serial, i+1)
		}
		if tile.Template == "" {
			t.Errorf("tile %d has no template", i)
		}
		if g.TileAt(tile.Location) != tile {
			t.Errorf("TileAt(%v) does not return tile %d", tile.Location, i)
		}
		for _, c := range []SizeCategory{Small, Medium, Large} {
			for _, d := range tile.Decorations(c) {
				if tile.TrackDistances()[d.Slot] < 100 {
					t.Errorf("decoration at slot %d too close to the path", d.Slot)
				}
			}
		}
	}

	if len(obs.spawned) != cfg.TilesAhead {
		t.Errorf("observer saw %d spawns, want %d", len(obs.spawned), cfg.TilesAhead)
	}

	s := g.Stats()
	if s.Spawned != cfg.TilesAhead || s.Resident != cfg.TilesAhead || s.PoolInUse != cfg.TilesAhead {
		t.Errorf("Stats() = %+v", s)
	}
	if s.BlendRejects != 0 {
		t.Errorf("BlendRejects = %d, want 0", s.BlendRejects)
	}
}

func TestMeshNormalsPointUp(t *testing.T) {
	g := newTestGenerator(t, testConfig(), noisyStrategy{})
	tile, err := g.SpawnNext()
	if err != nil {
		t.Fatalf("SpawnNext() error = %v", err)
	}
	for i, v := range tile.Mesh.Vertices {
		if v.Normal[1] <= 0 {
			t.Fatalf("vertex %d normal %v points down", i, v.Normal)
		}
	}
}

func TestFlattenStraight(t *testing.T) {
	cfg := testConfig()
	g := newTestGenerator(t, cfg, flatStrategy{height: 10})
	tile, err := g.spawn(NewDescriptor(Straight, GridLocation{5, 5}, North))
	if err != nil {
		t.Fatalf("spawn() error = %v", err)
	}

	grid := tile.Grid()
	for z := range grid.Resolution {
		for x := range grid.Resolution {
			i := grid.Index(x, z)
			lx, _ := grid.Local(x, z)
			d := gomath.Abs(lx - cfg.TileSize/2)
			if got := tile.TrackDistances()[i]; !near(got, d, 1e-9) {
				t.Errorf("distance[%d,%d] = %v, want %v", x, z, got, d)
			}
			h := tile.Heights()[i]
			switch {
			case d >= cfg.FlattenThreshold && h != 10:
				t.Errorf("height[%d,%d] = %v beyond threshold, want 10", x, z, h)
			case d < cfg.FlattenThreshold && h >= 10:
				t.Errorf("height[%d,%d] = %v within threshold, want < 10", x, z, h)
			}
		}
	}
}

func TestFlattenCorner(t *testing.T) {
	cfg := testConfig()
	g := newTestGenerator(t, cfg, flatStrategy{height: 10})
	tile, err := g.spawn(NewDescriptor(RightTurn, GridLocation{5, 5}, North))
	if err != nil {
		t.Fatalf("spawn() error = %v", err)
	}

	grid := tile.Grid()
	radius := cfg.TileSize / 2
	// Center of the arc is the south-east grid corner.
	center := grid.Index(grid.Resolution-1, 0)
	if got := tile.TrackDistances()[center]; got != radius {
		t.Errorf("distance at arc center = %v, want %v", got, radius)
	}
	if got := tile.Heights()[center]; got != 10 {
		t.Errorf("height at arc center = %v, want 10", got)
	}
	for i, d := range tile.TrackDistances() {
		if d < 0 || d > cfg.TileSize {
			t.Errorf("distance[%d] = %v out of range", i, d)
		}
	}
}

func TestPoolExhausted(t *testing.T) {
	cfg := testConfig()
	g := newTestGenerator(t, cfg, flatStrategy{})
	for i := range cfg.PoolCapacity {
		if _, err := g.SpawnNext(); err != nil {
			t.Fatalf("SpawnNext() #%d error = %v", i, err)
		}
	}
	if _, err := g.SpawnNext(); !errors.Is(err, terrain.ErrPoolExhausted) {
		t.Errorf("SpawnNext() past cap error = %v, want ErrPoolExhausted", err)
	}
	if s := g.Stats(); s.PoolAllocated != cfg.PoolCapacity || s.PoolCapacity != cfg.PoolCapacity {
		t.Errorf("PoolAllocated = %d, PoolCapacity = %d, want %d", s.PoolAllocated, s.PoolCapacity, cfg.PoolCapacity)
	}
}

func TestLegRotation(t *testing.T) {
	cfg := testConfig()
	cfg.DetourChance = 0
	obs := &recordingObserver{}
	g := newTestGenerator(t, cfg, flatStrategy{}, WithObserver(obs))
	if err := g.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Five legs' worth of tiles takes the generator into the second lap.
	for range cfg.LegLength*5 - cfg.TilesAhead {
		if err := g.AdvanceCurrentTile(); err != nil {
			t.Fatalf("AdvanceCurrentTile() error = %v", err)
		}
		g.SetTrailingBoundaryTile(g.CurrentTile())
		if g.rebuildSlot != (g.active+2)%4 {
			t.Fatalf("rebuildSlot = %d with active %d", g.rebuildSlot, g.active)
		}
	}

	want := [][2]int{{1, 0}, {2, 0}, {3, 0}, {0, 1}}
	if len(obs.legs) != len(want) {
		t.Fatalf("leg events = %v, want %v", obs.legs, want)
	}
	for i := range want {
		if obs.legs[i] != want[i] {
			t.Errorf("leg event %d = %v, want %v", i, obs.legs[i], want[i])
		}
	}
	if s := g.Stats(); s.Lap != 1 || s.Leg != 0 {
		t.Errorf("Stats() lap %d leg %d, want lap 1 leg 0", s.Lap, s.Leg)
	}

	// Without detours the second lap revisits the first lap's cells.
	w := g.Window()
	last := w[len(w)-1]
	if last.Location.X != cfg.Origin.X || last.Location.Y > cfg.LegLength {
		t.Errorf("last tile %v not on the west side", last.Location)
	}
}
