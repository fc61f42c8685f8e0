package track

import (
	"math/rand/v2"
	"testing"

	"github.com/Faultbox/trackloop/internal/engine/terrain"
	"github.com/Faultbox/trackloop/pkg/math"
)

// noisyStrategy fills tiles with per-location random heights and colors so
// that neighboring tiles disagree until blended.
type noisyStrategy struct {
	decorate bool
}

func (s noisyStrategy) rng(loc GridLocation) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(int64(loc.X)), uint64(int64(loc.Y))))
}

func (s noisyStrategy) GenerateHeightField(loc GridLocation, resolution int, _, maxHeight float64) ([]float64, []terrain.Color) {
	rng := s.rng(loc)
	n := resolution * resolution
	heights := make([]float64, n)
	colors := make([]terrain.Color, n)
	for i := range n {
		heights[i] = rng.Float64() * maxHeight
		colors[i] = terrain.Color{R: rng.Float32(), G: rng.Float32(), B: rng.Float32(), A: 1}
	}
	return heights, colors
}

func (s noisyStrategy) PaintSurface(_ GridLocation, _ int, maxHeight float64, positions, _ []math.Vec3, colors []terrain.Color) {
	for i := range colors {
		v := float32(positions[i].Y / maxHeight)
		colors[i] = terrain.Color{R: v, G: colors[i].G, B: 1 - v, A: 1}
	}
}

func (s noisyStrategy) PlaceDecorations(loc GridLocation, resolution int, _, _ float64,
	positions, _ []math.Vec3, _ []terrain.Color, distances []float64, sink DecorationSink) {
	if !s.decorate {
		return
	}
	for i := 0; i < resolution*resolution; i += 7 {
		if distances[i] < 100 {
			continue
		}
		sink.RegisterDecoration(Decoration{Kind: "stone", Category: SizeCategory(i % 3), Position: positions[i], Scale: 1, Slot: i})
	}
}

// flatStrategy returns a level surface.
type flatStrategy struct {
	height float64
}

func (s flatStrategy) GenerateHeightField(_ GridLocation, resolution int, _, _ float64) ([]float64, []terrain.Color) {
	n := resolution * resolution
	heights := make([]float64, n)
	colors := make([]terrain.Color, n)
	for i := range heights {
		heights[i] = s.height
		colors[i] = terrain.Color{G: 1, A: 1}
	}
	return heights, colors
}

func (flatStrategy) PaintSurface(GridLocation, int, float64, []math.Vec3, []math.Vec3, []terrain.Color) {
}

func (flatStrategy) PlaceDecorations(GridLocation, int, float64, float64, []math.Vec3, []math.Vec3, []terrain.Color, []float64, DecorationSink) {
}

type recordingObserver struct {
	spawned  []*Tile
	evicted  []*Tile
	reshaped []*Tile
	legs     [][2]int
}

func (o *recordingObserver) TileSpawned(t *Tile)         { o.spawned = append(o.spawned, t) }
func (o *recordingObserver) TileEvicted(t *Tile)         { o.evicted = append(o.evicted, t) }
func (o *recordingObserver) TileReshaped(t *Tile)        { o.reshaped = append(o.reshaped, t) }
func (o *recordingObserver) LegAdvanced(leg int, lap int) { o.legs = append(o.legs, [2]int{leg, lap}) }

func testCatalog() *TemplateCatalog {
	return NewTemplateCatalog([]string{"s1", "s2"}, []string{"l1"}, []string{"r1", "r2"})
}

func testConfig() Config {
	return Config{
		TileSize:         400,
		Resolution:       16,
		MaxHeight:        50,
		SampleSpacing:    10,
		LegLength:        8,
		DetourChance:     0.5,
		FlattenThreshold: 60,
		FlattenCurve:     math.SmoothStep,
		BlendRows:        4,
		BlendCurve:       math.SmoothStep,
		TilesAhead:       4,
		RetainBehind:     2,
		PoolCapacity:     12,
	}
}

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5DEECE66D))
}

func newTestGenerator(t *testing.T, cfg Config, strategy TerrainStrategy, opts ...Option) *Generator {
	t.Helper()
	opts = append([]Option{WithRand(testRand(1))}, opts...)
	g, err := New(cfg, testCatalog(), SingleStrategy{Strategy: strategy}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

// straightRun builds a generator whose window holds n straight tiles
// heading north from (0,0), bypassing the planner.
func straightRun(t *testing.T, cfg Config, n int) *Generator {
	t.Helper()
	g := newTestGenerator(t, cfg, flatStrategy{})
	for i := range n {
		d := NewDescriptor(Straight, GridLocation{0, i}, North)
		if _, err := g.spawn(d); err != nil {
			t.Fatalf("spawn(%v) error = %v", d.Location, err)
		}
	}
	return g
}

func near(a, b, eps float64) bool {
	d := a - b
	return d < eps && d > -eps
}

func nearVec(a, b math.Vec3, eps float64) bool {
	return near(a.X, b.X, eps) && near(a.Y, b.Y, eps) && near(a.Z, b.Z, eps)
}
