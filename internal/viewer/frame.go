package viewer

import (
	gomath "math"

	"github.com/Faultbox/trackloop/internal/engine/camera"
	"github.com/Faultbox/trackloop/internal/game/track"
	"github.com/Faultbox/trackloop/internal/game/train"
	"github.com/Faultbox/trackloop/pkg/math"
)

// minCellPixels is the smallest on-screen size of a terrain cell. Zoomed
// out tiles are drawn with fewer, larger cells.
const minCellPixels = 4

type rgba struct{ R, G, B, A uint8 }

var (
	colorCenterline = rgba{40, 40, 40, 255}
	colorCurrent    = rgba{250, 220, 60, 255}
	colorLocomotive = rgba{210, 40, 40, 255}
	colorCar        = rgba{40, 90, 210, 255}
	decorationColor = [...]rgba{
		track.Small:  {90, 150, 60, 255},
		track.Medium: {60, 110, 40, 255},
		track.Large:  {110, 100, 90, 255},
	}
	decorationPixels = [...]float64{
		track.Small:  2,
		track.Medium: 4,
		track.Large:  6,
	}
)

type rect struct {
	X, Y, W, H float64
	Color      rgba
}

type line struct {
	X1, Y1, X2, Y2 float64
	Color          rgba
	Width          int
}

// frame is a screen-space draw list.
type frame struct {
	Rects []rect
	Lines []line
	Tiles int // tiles inside the viewport
}

type frameOptions struct {
	Width, Height int
	Decorations   bool
}

// buildFrame projects the resident window and the train through cam.
func buildFrame(window []*track.Tile, current *track.Tile, cars []train.Car, cam *camera.FollowCamera, opt frameOptions) frame {
	var f frame
	lo, hi := cam.Visible(opt.Width, opt.Height)

	for _, t := range window {
		if t.Origin.X > hi.X || t.Origin.X+t.Size < lo.X || t.Origin.Z > hi.Y || t.Origin.Z+t.Size < lo.Y {
			continue
		}
		f.Tiles++
		f.addSurface(t, cam, opt)
		f.addCenterline(t, cam, opt)
		if opt.Decorations {
			f.addDecorations(t, cam, opt)
		}
	}

	if current != nil {
		f.addOutline(current, cam, opt)
	}
	for _, c := range cars {
		col := colorCar
		if c.Index == 0 {
			col = colorLocomotive
		}
		x1, y1 := cam.WorldToScreen(c.Head.XZ(), opt.Width, opt.Height)
		x2, y2 := cam.WorldToScreen(c.Tail.XZ(), opt.Width, opt.Height)
		f.Lines = append(f.Lines, line{x1, y1, x2, y2, col, 3})
	}
	return f
}

// cellStep returns how many samples one drawn cell spans.
func cellStep(resolution int, samplePixels float64) int {
	if samplePixels >= minCellPixels || resolution < 2 {
		return 1
	}
	step := int(gomath.Ceil(minCellPixels / samplePixels))
	return min(step, resolution-1)
}

func (f *frame) addSurface(t *track.Tile, cam *camera.FollowCamera, opt frameOptions) {
	if t.Mesh == nil {
		return
	}
	g := t.Grid()
	spacing := t.Size / float64(g.Resolution-1)
	step := cellStep(g.Resolution, spacing*cam.Zoom)
	cell := spacing * float64(step)

	for z := 0; z < g.Resolution; z += step {
		for x := 0; x < g.Resolution; x += step {
			lx, lz := g.Local(x, z)
			// Cells are centered on their sample and clipped to the tile.
			x0 := gomath.Max(lx-cell/2, 0)
			z1 := gomath.Min(lz+cell/2, t.Size)
			sx, sy := cam.WorldToScreen(math.Vec2{X: t.Origin.X + x0, Y: t.Origin.Z + z1}, opt.Width, opt.Height)
			w := (gomath.Min(lx+cell/2, t.Size) - x0) * cam.Zoom
			h := (z1 - gomath.Max(lz-cell/2, 0)) * cam.Zoom
			f.Rects = append(f.Rects, rect{
				X: sx, Y: sy, W: gomath.Max(w, 1), H: gomath.Max(h, 1),
				Color: toRGBA(t.Mesh.Vertices[g.Index(x, z)].Color),
			})
		}
	}
}

func (f *frame) addCenterline(t *track.Tile, cam *camera.FollowCamera, opt frameOptions) {
	for i := 1; i < len(t.Samples); i++ {
		x1, y1 := cam.WorldToScreen(t.Samples[i-1].Position.XZ(), opt.Width, opt.Height)
		x2, y2 := cam.WorldToScreen(t.Samples[i].Position.XZ(), opt.Width, opt.Height)
		f.Lines = append(f.Lines, line{x1, y1, x2, y2, colorCenterline, 1})
	}
}

func (f *frame) addDecorations(t *track.Tile, cam *camera.FollowCamera, opt frameOptions) {
	for _, c := range []track.SizeCategory{track.Small, track.Medium, track.Large} {
		size := decorationPixels[c]
		for _, d := range t.Decorations(c) {
			x, y := cam.WorldToScreen(d.Position.XZ(), opt.Width, opt.Height)
			f.Rects = append(f.Rects, rect{X: x - size/2, Y: y - size/2, W: size, H: size, Color: decorationColor[c]})
		}
	}
}

func (f *frame) addOutline(t *track.Tile, cam *camera.FollowCamera, opt frameOptions) {
	corners := [4]math.Vec2{
		{X: t.Origin.X, Y: t.Origin.Z},
		{X: t.Origin.X + t.Size, Y: t.Origin.Z},
		{X: t.Origin.X + t.Size, Y: t.Origin.Z + t.Size},
		{X: t.Origin.X, Y: t.Origin.Z + t.Size},
	}
	for i := range corners {
		x1, y1 := cam.WorldToScreen(corners[i], opt.Width, opt.Height)
		x2, y2 := cam.WorldToScreen(corners[(i+1)%4], opt.Width, opt.Height)
		f.Lines = append(f.Lines, line{x1, y1, x2, y2, colorCurrent, 1})
	}
}

func toRGBA(c [4]float32) rgba {
	conv := func(v float32) uint8 {
		return uint8(math.Clamp(float64(v), 0, 1)*255 + 0.5)
	}
	return rgba{conv(c[0]), conv(c[1]), conv(c[2]), 255}
}
