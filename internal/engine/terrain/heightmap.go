package terrain

// Grid addresses a resolution×resolution sample grid laid out row-major
// with index z*Resolution + x. X grows east, Z grows north.
type Grid struct {
	Resolution int
	Size       float64
}

// Index returns the buffer index of sample (x, z).
func (g Grid) Index(x, z int) int {
	return z*g.Resolution + x
}

// Local returns the tile-local ground position of sample (x, z).
func (g Grid) Local(x, z int) (float64, float64) {
	step := float64(g.Resolution - 1)
	return g.Size * (float64(x) / step), g.Size * (float64(z) / step)
}

// EdgeIndex returns the buffer index of the sample `along` positions into
// the edge on side s, `depth` rows inward from that edge. Along runs in
// increasing X for north/south edges and increasing Z for east/west edges,
// so two tiles sharing an edge agree on the ordering.
func (g Grid) EdgeIndex(s Side, along, depth int) int {
	last := g.Resolution - 1
	switch s {
	case SideNorth:
		return g.Index(along, last-depth)
	case SideSouth:
		return g.Index(along, depth)
	case SideEast:
		return g.Index(last-depth, along)
	default:
		return g.Index(depth, along)
	}
}

// EdgeHeights copies the outermost row of heights on side s.
func (g Grid) EdgeHeights(heights []float64, s Side) []float64 {
	edge := make([]float64, g.Resolution)
	for i := range edge {
		edge[i] = heights[g.EdgeIndex(s, i, 0)]
	}
	return edge
}

// EdgeColors copies the outermost row of colors on side s.
func (g Grid) EdgeColors(colors []Color, s Side) []Color {
	edge := make([]Color, g.Resolution)
	for i := range edge {
		edge[i] = colors[g.EdgeIndex(s, i, 0)]
	}
	return edge
}

// HeightAt returns the bilinearly interpolated height at a tile-local position.
// Positions outside the tile are clamped to its border.
func (g Grid) HeightAt(heights []float64, lx, lz float64) float64 {
	if len(heights) == 0 || g.Resolution < 2 {
		return 0
	}

	cellSize := g.Size / float64(g.Resolution-1)
	fx := clampf(lx/cellSize, 0, float64(g.Resolution-1))
	fz := clampf(lz/cellSize, 0, float64(g.Resolution-1))

	cellX := int(fx)
	cellZ := int(fz)
	if cellX >= g.Resolution-1 {
		cellX = g.Resolution - 2
	}
	if cellZ >= g.Resolution-1 {
		cellZ = g.Resolution - 2
	}

	fracX := fx - float64(cellX)
	fracZ := fz - float64(cellZ)

	sw := heights[g.Index(cellX, cellZ)]
	se := heights[g.Index(cellX+1, cellZ)]
	nw := heights[g.Index(cellX, cellZ+1)]
	ne := heights[g.Index(cellX+1, cellZ+1)]

	south := sw*(1-fracX) + se*fracX
	north := nw*(1-fracX) + ne*fracX
	return south*(1-fracZ) + north*fracZ
}

func clampf(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
