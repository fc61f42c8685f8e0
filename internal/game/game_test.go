package game

import (
	"context"
	"testing"

	"github.com/Faultbox/trackloop/internal/config"
	"github.com/Faultbox/trackloop/internal/game/track"
	"github.com/Faultbox/trackloop/internal/game/train"
)

type countingReporter struct {
	spawned    int
	evicted    int
	reshaped   int
	legs       int
	trains     int
	broadcasts int
	stats      track.Stats
}

func (r *countingReporter) TileSpawned(*track.Tile)  { r.spawned++ }
func (r *countingReporter) TileEvicted(*track.Tile)  { r.evicted++ }
func (r *countingReporter) TileReshaped(*track.Tile) { r.reshaped++ }
func (r *countingReporter) LegAdvanced(int, int)     { r.legs++ }

func (r *countingReporter) UpdateTrain(_ *train.Train, broadcast bool) {
	r.trains++
	if broadcast {
		r.broadcasts++
	}
}

func (r *countingReporter) UpdateStats(st track.Stats) { r.stats = st }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Run.Seed = 42
	cfg.Run.TickRate = 20
	cfg.Track.Resolution = 12
	cfg.Track.BlendRows = 2
	cfg.Track.LegLength = 8
	cfg.Train.Speed = 400
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Track.Templates.Left = nil
	if _, err := New(cfg); err == nil {
		t.Error("New() accepted a config without left templates")
	}
}

func TestRunTicks(t *testing.T) {
	cfg := testConfig()
	cfg.Run.Ticks = 200
	r := &countingReporter{}
	g, err := New(cfg, WithReporter(r))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if g.Ticks() != 200 {
		t.Errorf("Ticks() = %d, want 200", g.Ticks())
	}
	// 200 ticks at 400 units/s and 20 ticks/s.
	if got := g.Train().Odometer(); got < 3999 || got > 4001 {
		t.Errorf("Odometer() = %v, want 4000", got)
	}
	if r.spawned < cfg.Track.TilesAhead+8 {
		t.Errorf("spawned = %d, want at least %d", r.spawned, cfg.Track.TilesAhead+8)
	}
	if r.evicted == 0 {
		t.Error("no tiles evicted")
	}
	if r.trains != 201 {
		t.Errorf("train updates = %d, want 201", r.trains)
	}
	// Every second tick broadcasts at 20 ticks/s, plus the initial placement.
	if r.broadcasts != 101 {
		t.Errorf("broadcasts = %d, want 101", r.broadcasts)
	}
	if r.stats.Spawned != r.spawned {
		t.Errorf("stats.Spawned = %d, want %d", r.stats.Spawned, r.spawned)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if g.Ticks() != 0 {
		t.Errorf("Ticks() = %d, want 0", g.Ticks())
	}
}

func TestPause(t *testing.T) {
	g, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	g.SetPaused(true)
	if err := g.Tick(0.1); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if g.Ticks() != 0 || g.Train().Odometer() != 0 {
		t.Errorf("paused game advanced: ticks %d, odometer %v", g.Ticks(), g.Train().Odometer())
	}
	g.SetPaused(false)
	if err := g.Tick(0.1); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if g.Ticks() != 1 {
		t.Errorf("Ticks() = %d, want 1", g.Ticks())
	}
}

func TestSeedReproducesTrack(t *testing.T) {
	layout := func() []track.Descriptor {
		g, err := New(testConfig())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		for range 30 {
			if err := g.Generator().AdvanceCurrentTile(); err != nil {
				t.Fatalf("AdvanceCurrentTile() error = %v", err)
			}
			g.Generator().SetTrailingBoundaryTile(g.Generator().CurrentTile())
		}
		var out []track.Descriptor
		for _, tile := range g.Generator().Window() {
			out = append(out, tile.Descriptor)
		}
		return out
	}
	a, b := layout(), layout()
	if len(a) != len(b) {
		t.Fatalf("window sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("tile %d = %+v, want %+v", i, b[i], a[i])
		}
	}
}

func TestRandomSeedWhenZero(t *testing.T) {
	cfg := testConfig()
	cfg.Run.Seed = 0
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if g.Seed() == 0 {
		t.Error("Seed() = 0, want a drawn seed")
	}
}
