package track

import (
	"slices"

	"go.uber.org/zap"
)

// CurrentTile returns the authoritative current tile.
func (g *Generator) CurrentTile() *Tile {
	return g.current
}

// CurrentIndex returns the window position of the current tile.
func (g *Generator) CurrentIndex() int {
	return g.currentIndex
}

// Window returns the resident tiles in traversal order.
func (g *Generator) Window() []*Tile {
	return slices.Clone(g.window)
}

// TileAt returns the resident tile at loc, or nil.
func (g *Generator) TileAt(loc GridLocation) *Tile {
	return g.lookup[loc]
}

// AdvanceCurrentTile spawns the next tile and moves the current tile
// pointer one step forward.
func (g *Generator) AdvanceCurrentTile() error {
	if _, err := g.SpawnNext(); err != nil {
		return err
	}
	if g.currentIndex+1 < len(g.window) {
		g.currentIndex++
		g.current = g.window[g.currentIndex]
	}
	return nil
}

// SetTrailingBoundaryTile evicts tiles that lie more than RetainBehind
// positions behind t. The current tile is never evicted.
func (g *Generator) SetTrailingBoundaryTile(t *Tile) {
	idx := g.indexOf(t)
	if idx < 0 {
		g.log.Debug("trailing boundary tile not resident", zap.Stringer("tile", t))
		return
	}

	excess := min(idx-g.cfg.RetainBehind, g.currentIndex)
	if excess <= 0 {
		return
	}

	for _, old := range g.window[:excess] {
		g.destroy(old)
	}
	g.window = slices.Delete(g.window, 0, excess)
	g.resolveCurrent()
}

// destroy returns a tile's mesh to the pool and drops it from the lookup.
func (g *Generator) destroy(t *Tile) {
	g.pool.Release(t.Mesh)
	t.Mesh = nil
	if g.lookup[t.Location] == t {
		delete(g.lookup, t.Location)
	}
	g.stats.Evicted++

	g.log.Debug("tile evicted", zap.Uint64("serial", t.Serial), zap.Stringer("location", t.Location))
	for _, o := range g.observers {
		o.TileEvicted(t)
	}
}

func (g *Generator) resolveCurrent() {
	g.currentIndex = g.indexOf(g.current)
}

func (g *Generator) indexOf(t *Tile) int {
	if t == nil {
		return -1
	}
	return slices.Index(g.window, t)
}

// GetPrecedingTile returns the tile before t in traversal order, or nil.
func (g *Generator) GetPrecedingTile(t *Tile) *Tile {
	idx := g.indexOf(t)
	if idx <= 0 {
		return nil
	}
	return g.window[idx-1]
}

// GetFollowingTile returns the tile after t in traversal order, or nil.
func (g *Generator) GetFollowingTile(t *Tile) *Tile {
	idx := g.indexOf(t)
	if idx < 0 || idx+1 >= len(g.window) {
		return nil
	}
	return g.window[idx+1]
}

// FindTilesNear returns resident tiles within rangeTiles grid steps of t
// (Chebyshev distance), in traversal order.
func (g *Generator) FindTilesNear(t *Tile, rangeTiles int) []*Tile {
	if t == nil {
		return nil
	}
	var out []*Tile
	for _, other := range g.window {
		if other.Location.ChebyshevDistance(t.Location) <= rangeTiles {
			out = append(out, other)
		}
	}
	return out
}
