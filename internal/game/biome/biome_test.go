package biome

import (
	"testing"

	"github.com/Faultbox/trackloop/internal/engine/terrain"
	"github.com/Faultbox/trackloop/internal/game/track"
	"github.com/Faultbox/trackloop/pkg/math"
)

type collector struct {
	got []track.Decoration
}

func (c *collector) RegisterDecoration(d track.Decoration) {
	c.got = append(c.got, d)
}

func testBiome() *Biome {
	return &Biome{
		Name:        "meadow",
		Noise:       NoiseParams{Seed: 7, Octaves: 4, Frequency: 1.0 / 300, Persistence: 0.5, Lacunarity: 2},
		HeightScale: 0.8,
		Palette: Palette{
			Low:  terrain.Color{R: 0.2, G: 0.5, B: 0.2, A: 1},
			Mid:  terrain.Color{R: 0.4, G: 0.6, B: 0.3, A: 1},
			High: terrain.Color{R: 0.9, G: 0.9, B: 0.9, A: 1},
			Rock: terrain.Color{R: 0.5, G: 0.5, B: 0.5, A: 1},
		},
		RockSlope: 0.7,
		Decorations: []DecorationRule{
			{Kind: "bush", Category: track.Small, Density: 0.05, Clearance: 20, MinScale: 0.5, MaxScale: 1},
			{Kind: "tree", Category: track.Medium, Density: 0.02, Clearance: 40, MinScale: 1, MaxScale: 2},
			{Kind: "boulder", Category: track.Large, Density: 0.005, Clearance: 60, MinScale: 2, MaxScale: 3},
		},
	}
}

func TestFractalRangeAndDeterminism(t *testing.T) {
	p := NoiseParams{Seed: 42, Octaves: 5, Frequency: 0.01, Persistence: 0.5, Lacunarity: 2}
	for i := range 500 {
		x := float64(i)*13.7 - 2000
		z := float64(i)*-7.3 + 500
		v := p.Fractal(x, z)
		if v < 0 || v > 1 {
			t.Fatalf("Fractal(%v, %v) = %v, outside [0,1]", x, z, v)
		}
		if again := p.Fractal(x, z); again != v {
			t.Fatalf("Fractal(%v, %v) not deterministic: %v vs %v", x, z, v, again)
		}
	}
}

func TestFractalSeedsDiffer(t *testing.T) {
	a := NoiseParams{Seed: 1, Octaves: 3, Frequency: 0.05, Persistence: 0.5, Lacunarity: 2}
	b := a
	b.Seed = 2
	same := 0
	for i := range 100 {
		x, z := float64(i)*3.1, float64(i)*1.7
		if a.Fractal(x, z) == b.Fractal(x, z) {
			same++
		}
	}
	if same > 5 {
		t.Errorf("%d of 100 samples identical across seeds", same)
	}
}

func TestValueNoiseHitsLatticeValues(t *testing.T) {
	if got, want := valueNoise(9, 3, -4), lattice(9, 3, -4); got != want {
		t.Errorf("valueNoise at lattice point = %v, want %v", got, want)
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{7, 4, 1}, {-1, 4, -1}, {-4, 4, -1}, {-5, 4, -2}, {0, 4, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestGenerateHeightField(t *testing.T) {
	b := testBiome()
	const res, size, maxH = 16, 400.0, 50.0
	heights, colors := b.GenerateHeightField(track.GridLocation{X: 2, Y: -1}, res, size, maxH)
	if len(heights) != res*res || len(colors) != res*res {
		t.Fatalf("got %d heights, %d colors, want %d", len(heights), len(colors), res*res)
	}
	for i, h := range heights {
		if h < 0 || h > b.HeightScale*maxH {
			t.Errorf("height[%d] = %v outside [0, %v]", i, h, b.HeightScale*maxH)
		}
	}
}

func TestGenerateHeightFieldSharedEdge(t *testing.T) {
	b := testBiome()
	const res, size, maxH = 8, 400.0, 50.0
	grid := terrain.Grid{Resolution: res, Size: size}
	west, _ := b.GenerateHeightField(track.GridLocation{X: 0, Y: 0}, res, size, maxH)
	east, _ := b.GenerateHeightField(track.GridLocation{X: 1, Y: 0}, res, size, maxH)

	we := grid.EdgeHeights(west, terrain.SideEast)
	ew := grid.EdgeHeights(east, terrain.SideWest)
	for i := range we {
		if d := we[i] - ew[i]; d > 1e-9 || d < -1e-9 {
			t.Errorf("edge sample %d: west %v, east %v", i, we[i], ew[i])
		}
	}
}

func TestPaintSurfaceRock(t *testing.T) {
	b := testBiome()
	positions := []math.Vec3{{Y: 0}, {Y: 0}}
	normals := []math.Vec3{{Y: 1}, {X: 1}}
	colors := make([]terrain.Color, 2)
	b.PaintSurface(track.GridLocation{}, 1, 50, positions, normals, colors)

	if colors[0] != b.Palette.Low {
		t.Errorf("flat low sample = %v, want %v", colors[0], b.Palette.Low)
	}
	if !closeColor(colors[1], b.Palette.Rock) {
		t.Errorf("vertical sample = %v, want %v", colors[1], b.Palette.Rock)
	}
}

func closeColor(a, b terrain.Color) bool {
	const eps = 1e-6
	d := func(x, y float32) bool { return x-y < eps && y-x < eps }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func decorationInputs(res int, pathDistance func(x, z int) float64) ([]math.Vec3, []math.Vec3, []float64) {
	n := res * res
	positions := make([]math.Vec3, n)
	normals := make([]math.Vec3, n)
	distances := make([]float64, n)
	for z := range res {
		for x := range res {
			i := z*res + x
			positions[i] = math.Vec3{X: float64(x) * 10, Z: float64(z) * 10}
			normals[i] = math.Vec3{Y: 1}
			distances[i] = pathDistance(x, z)
		}
	}
	return positions, normals, distances
}

func TestPlaceDecorationsAvoidsPathAndSlots(t *testing.T) {
	b := testBiome()
	const res = 32
	positions, normals, distances := decorationInputs(res, func(x, _ int) float64 {
		d := float64(x-res/2) * 10
		if d < 0 {
			d = -d
		}
		return d
	})

	sink := &collector{}
	b.PlaceDecorations(track.GridLocation{X: 3, Y: 4}, res, 50, 320, positions, normals, nil, distances, sink)
	if len(sink.got) == 0 {
		t.Fatal("no decorations placed")
	}

	clearance := map[string]float64{}
	for _, r := range b.Decorations {
		clearance[r.Kind] = r.Clearance
	}
	slots := map[int]bool{}
	for _, d := range sink.got {
		if slots[d.Slot] {
			t.Errorf("slot %d used twice", d.Slot)
		}
		slots[d.Slot] = true
		if distances[d.Slot] < clearance[d.Kind] {
			t.Errorf("%s at slot %d is %v from path, want >= %v", d.Kind, d.Slot, distances[d.Slot], clearance[d.Kind])
		}
		if d.Position != positions[d.Slot] {
			t.Errorf("%s position %v, want %v", d.Kind, d.Position, positions[d.Slot])
		}
	}
}

func TestPlaceDecorationsDeterministic(t *testing.T) {
	b := testBiome()
	const res = 24
	positions, normals, distances := decorationInputs(res, func(int, int) float64 { return 1000 })
	loc := track.GridLocation{X: -5, Y: 9}

	first, second := &collector{}, &collector{}
	b.PlaceDecorations(loc, res, 50, 240, positions, normals, nil, distances, first)
	b.PlaceDecorations(loc, res, 50, 240, positions, normals, nil, distances, second)

	if len(first.got) != len(second.got) {
		t.Fatalf("placement counts differ: %d vs %d", len(first.got), len(second.got))
	}
	for i := range first.got {
		if first.got[i] != second.got[i] {
			t.Errorf("decoration %d differs: %+v vs %+v", i, first.got[i], second.got[i])
		}
	}
}

func TestPlaceDecorationsSkipsSteepSamples(t *testing.T) {
	b := testBiome()
	for i := range b.Decorations {
		b.Decorations[i].MinUpY = 0.9
	}
	const res = 16
	positions, normals, distances := decorationInputs(res, func(int, int) float64 { return 1000 })
	for i := range normals {
		normals[i] = math.Vec3{X: 0.8, Y: 0.6}
	}

	sink := &collector{}
	b.PlaceDecorations(track.GridLocation{}, res, 50, 160, positions, normals, nil, distances, sink)
	if len(sink.got) != 0 {
		t.Errorf("placed %d decorations on steep ground, want 0", len(sink.got))
	}
}

func TestRegions(t *testing.T) {
	if _, err := NewRegions(4, 1); err != ErrNoBiomes {
		t.Errorf("NewRegions() error = %v, want ErrNoBiomes", err)
	}
	if _, err := NewRegions(0, 1, testBiome()); err == nil {
		t.Error("NewRegions() with zero region size should fail")
	}

	a, b := testBiome(), testBiome()
	b.Name = "highlands"
	r, err := NewRegions(4, 11, a, b)
	if err != nil {
		t.Fatalf("NewRegions() error = %v", err)
	}

	// Every cell of one region maps to the same biome.
	for y := -4; y < 0; y++ {
		for x := 4; x < 8; x++ {
			if got, want := r.BiomeAt(track.GridLocation{X: x, Y: y}), r.BiomeAt(track.GridLocation{X: 4, Y: -4}); got != want {
				t.Errorf("BiomeAt(%d,%d) = %s, want %s", x, y, got.Name, want.Name)
			}
		}
	}

	seen := map[string]bool{}
	for ry := range 8 {
		for rx := range 8 {
			seen[r.BiomeAt(track.GridLocation{X: rx * 4, Y: ry * 4}).Name] = true
		}
	}
	if len(seen) != 2 {
		t.Errorf("64 regions used %d biomes, want 2", len(seen))
	}
}
