package viewer

import (
	"image"
	"image/color"
	"image/draw"
	gomath "math"
)

// rasterize paints a frame into an image, mirroring what the SDL renderer
// draws.
func rasterize(f frame, width, height int, background rgba) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(toColor(background)), image.Point{}, draw.Src)

	for _, r := range f.Rects {
		box := image.Rect(
			int(gomath.Floor(r.X)), int(gomath.Floor(r.Y)),
			int(gomath.Floor(r.X)+gomath.Ceil(r.W)), int(gomath.Floor(r.Y)+gomath.Ceil(r.H)),
		)
		draw.Draw(img, box.Intersect(img.Bounds()), image.NewUniform(toColor(r.Color)), image.Point{}, draw.Over)
	}
	for _, l := range f.Lines {
		for o := range l.Width {
			off := o - l.Width/2
			plotLine(img, int(l.X1)+off, int(l.Y1)+off, int(l.X2)+off, int(l.Y2)+off, toColor(l.Color))
		}
	}
	return img
}

// plotLine draws with Bresenham's algorithm, clipping per pixel.
func plotLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	// Lines far off screen are skipped rather than walked.
	if max(dx, -dy) > 4*(img.Bounds().Dx()+img.Bounds().Dy()) {
		return
	}

	e := dx + dy
	for {
		if (image.Point{X: x0, Y: y0}).In(img.Bounds()) {
			img.SetRGBA(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func toColor(c rgba) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
