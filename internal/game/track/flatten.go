package track

import gomath "math"

// flatten pulls the surface down to the rail bed near the centerline and
// records each sample's distance to it for later decoration placement.
func (g *Generator) flatten(t *Tile) {
	grid := t.grid
	threshold := g.cfg.FlattenThreshold
	half := t.Size / 2
	radius := half
	center := CornerCenter(t.Entry, t.Exit, t.Size)
	corner := t.IsCorner()
	northSouth := t.Entry == North || t.Entry == South

	t.trackDistance = make([]float64, len(t.heights))
	for z := range grid.Resolution {
		for x := range grid.Resolution {
			i := grid.Index(x, z)
			lx, lz := grid.Local(x, z)

			var d float64
			switch {
			case !corner && northSouth:
				d = gomath.Abs(lx - half)
			case !corner:
				d = gomath.Abs(lz - half)
			default:
				dx, dz := lx-center.X, lz-center.Z
				r := gomath.Hypot(dx, dz)
				if r == 0 {
					t.trackDistance[i] = radius
					continue
				}
				d = gomath.Abs(r - radius)
			}

			t.trackDistance[i] = d
			if threshold > 0 && d < threshold {
				t.heights[i] *= g.cfg.FlattenCurve(d / threshold)
			}
		}
	}
}
