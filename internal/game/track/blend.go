package track

import (
	"go.uber.org/zap"

	"github.com/Faultbox/trackloop/internal/engine/terrain"
	"github.com/Faultbox/trackloop/pkg/math"
)

// neighbors returns the resident tiles sharing each side of loc, indexed by Heading.
func (g *Generator) neighbors(loc GridLocation) [4]*Tile {
	var out [4]*Tile
	for h := North; h <= West; h++ {
		out[h] = g.lookup[loc.Move(h, 1)]
	}
	return out
}

// blendHeights stitches t's height field to its resident neighbors before
// the mesh is built, so normals see the final surface.
func (g *Generator) blendHeights(t *Tile, neighbors [4]*Tile) {
	blendSeams(t.grid, t.heights, neighbors, g.cfg.BlendRows, g.cfg.BlendCurve,
		func(n *Tile, s terrain.Side) []float64 { return n.grid.EdgeHeights(n.heights, s) },
		func(a, b float64, w float64) float64 { return math.Lerp(a, b, w) },
	)
	for h, n := range neighbors {
		if n == nil {
			continue
		}
		side := Heading(h)
		g.pushSeam(n, EdgeBlend{Side: side.Reverse(), Heights: t.grid.EdgeHeights(t.heights, side.Side())})
	}
}

// blendColors stitches t's colors to its resident neighbors after painting.
func (g *Generator) blendColors(t *Tile, neighbors [4]*Tile) {
	blendSeams(t.grid, t.colors, neighbors, g.cfg.BlendRows, g.cfg.BlendCurve,
		func(n *Tile, s terrain.Side) []terrain.Color { return n.grid.EdgeColors(n.colors, s) },
		func(a, b terrain.Color, w float64) terrain.Color { return a.Lerp(b, w) },
	)
	for h, n := range neighbors {
		if n == nil {
			continue
		}
		side := Heading(h)
		g.pushSeam(n, EdgeBlend{Side: side.Reverse(), Colors: t.grid.EdgeColors(t.colors, side.Side())})
	}
}

// pushSeam hands the reconciled seam back to a published neighbor. Values
// only differ at seam corners that two neighbors disagreed on; observers
// hear about the neighbor when its surface moved.
func (g *Generator) pushSeam(n *Tile, b EdgeBlend) {
	reshaped, err := n.ApplyEdgeBlend(b)
	if err != nil {
		g.stats.BlendRejects++
		g.log.Warn("edge blend rejected", zap.Stringer("tile", n), zap.Error(err))
		return
	}
	if !reshaped {
		return
	}
	g.stats.Reshaped++
	for _, o := range g.observers {
		o.TileReshaped(n)
	}
}

// blendSeams smooths buf inward from every side that has a neighbor, toward
// that neighbor's edge profile, then copies each neighbor edge exactly.
// Smoothing runs for all sides first so it can never disturb a pinned seam.
func blendSeams[T any](
	grid terrain.Grid,
	buf []T,
	neighbors [4]*Tile,
	rows int,
	curve math.Curve,
	edgeOf func(n *Tile, s terrain.Side) []T,
	lerp func(a, b T, w float64) T,
) {
	var edges [4][]T
	for h, n := range neighbors {
		if n == nil {
			continue
		}
		side := Heading(h).Side()
		edges[h] = edgeOf(n, side.Opposite())
		edge := edges[h]
		for depth := 1; depth < rows; depth++ {
			w := curve(float64(depth) / float64(rows))
			for along := range grid.Resolution {
				i := grid.EdgeIndex(side, along, depth)
				buf[i] = lerp(edge[along], buf[i], w)
			}
		}
	}

	for h, edge := range edges {
		if edge == nil {
			continue
		}
		side := Heading(h).Side()
		for along, v := range edge {
			buf[grid.EdgeIndex(side, along, 0)] = v
		}
	}
}
