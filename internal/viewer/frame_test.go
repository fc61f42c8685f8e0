package viewer

import (
	"math/rand/v2"
	"testing"

	"github.com/Faultbox/trackloop/internal/engine/camera"
	"github.com/Faultbox/trackloop/internal/engine/terrain"
	"github.com/Faultbox/trackloop/internal/game/track"
	"github.com/Faultbox/trackloop/internal/game/train"
	"github.com/Faultbox/trackloop/pkg/math"
)

type flatStrategy struct{}

func (flatStrategy) GenerateHeightField(_ track.GridLocation, resolution int, _, _ float64) ([]float64, []terrain.Color) {
	n := resolution * resolution
	colors := make([]terrain.Color, n)
	for i := range colors {
		colors[i] = terrain.Color{R: 1, G: 0.5, A: 1}
	}
	return make([]float64, n), colors
}

func (flatStrategy) PaintSurface(track.GridLocation, int, float64, []math.Vec3, []math.Vec3, []terrain.Color) {
}

func (flatStrategy) PlaceDecorations(_ track.GridLocation, _ int, _, _ float64, positions, _ []math.Vec3, _ []terrain.Color, _ []float64, sink track.DecorationSink) {
	sink.RegisterDecoration(track.Decoration{Kind: "bush", Category: track.Medium, Position: positions[0], Scale: 1})
}

func newScene(t *testing.T) (*track.Generator, *train.Train) {
	t.Helper()
	cfg := track.Config{
		TileSize:         400,
		Resolution:       9,
		MaxHeight:        20,
		SampleSpacing:    10,
		LegLength:        8,
		DetourChance:     0,
		FlattenThreshold: 60,
		FlattenCurve:     math.SmoothStep,
		BlendRows:        2,
		BlendCurve:       math.Linear,
		TilesAhead:       3,
		RetainBehind:     1,
		PoolCapacity:     8,
	}
	catalog := track.NewTemplateCatalog([]string{"s"}, []string{"l"}, []string{"r"})
	g, err := track.New(cfg, catalog, track.SingleStrategy{Strategy: flatStrategy{}},
		track.WithRand(rand.New(rand.NewPCG(1, 2))))
	if err != nil {
		t.Fatalf("track.New() error = %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	tr, err := train.New(g, train.Config{Cars: 2, CarLength: 20, Gap: 2, Speed: 10})
	if err != nil {
		t.Fatalf("train.New() error = %v", err)
	}
	if err := tr.Place(); err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	return g, tr
}

func TestCellStep(t *testing.T) {
	tests := []struct {
		name       string
		resolution int
		pixels     float64
		want       int
	}{
		{"large cells", 64, 10, 1},
		{"exact minimum", 64, minCellPixels, 1},
		{"half minimum", 64, minCellPixels / 2, 2},
		{"tiny", 64, 0.1, 40},
		{"capped", 8, 0.01, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cellStep(tt.resolution, tt.pixels); got != tt.want {
				t.Errorf("cellStep(%d, %v) = %d, want %d", tt.resolution, tt.pixels, got, tt.want)
			}
		})
	}
}

func TestBuildFrame(t *testing.T) {
	g, tr := newScene(t)
	cam := camera.NewFollowCamera(1)
	cam.Center = g.CurrentTile().Origin.XZ().Add(math.Vec2{X: 200, Y: 200})
	opt := frameOptions{Width: 400, Height: 400, Decorations: true}

	f := buildFrame(g.Window(), g.CurrentTile(), tr.Cars(), cam, opt)
	if f.Tiles == 0 {
		t.Fatal("no tiles in view")
	}

	// Zoom 1 over 400/8 spacing draws every sample.
	cells := 0
	decorations := 0
	for _, r := range f.Rects {
		switch r.Color {
		case toRGBA([4]float32{1, 0.5, 0, 1}):
			cells++
		case decorationColor[track.Medium]:
			decorations++
		}
	}
	if cells != f.Tiles*81 {
		t.Errorf("cells = %d, want %d", cells, f.Tiles*81)
	}
	if decorations != f.Tiles {
		t.Errorf("decorations = %d, want %d", decorations, f.Tiles)
	}

	cars := 0
	outline := 0
	for _, l := range f.Lines {
		switch l.Color {
		case colorLocomotive, colorCar:
			cars++
		case colorCurrent:
			outline++
		}
	}
	if cars != 2 || outline != 4 {
		t.Errorf("car lines = %d, outline lines = %d, want 2 and 4", cars, outline)
	}

	opt.Decorations = false
	f = buildFrame(g.Window(), g.CurrentTile(), tr.Cars(), cam, opt)
	for _, r := range f.Rects {
		if r.Color == decorationColor[track.Medium] {
			t.Fatal("decoration drawn while hidden")
		}
	}
}

func TestBuildFrameCullsOffscreenTiles(t *testing.T) {
	g, tr := newScene(t)
	cam := camera.NewFollowCamera(1)
	cam.Center = math.Vec2{X: 1e6, Y: 1e6}

	f := buildFrame(g.Window(), nil, tr.Cars(), cam, frameOptions{Width: 200, Height: 200})
	if f.Tiles != 0 || len(f.Rects) != 0 {
		t.Errorf("tiles = %d, rects = %d, want none", f.Tiles, len(f.Rects))
	}
}

func TestToRGBA(t *testing.T) {
	got := toRGBA([4]float32{0, 0.5, 2, 0.3})
	want := rgba{0, 128, 255, 255}
	if got != want {
		t.Errorf("toRGBA() = %v, want %v", got, want)
	}
}
