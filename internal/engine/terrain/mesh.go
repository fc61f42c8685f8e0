package terrain

import (
	"fmt"
	"math"
)

// BuildGridMesh fills mesh with a resolution×resolution grid surface.
// Existing vertex and index capacity in mesh is reused. Each quad is split
// into two triangles wound counter-clockwise when seen from above.
func BuildGridMesh(mesh *Mesh, g Grid, heights []float64, colors []Color) error {
	n := g.Resolution * g.Resolution
	if g.Resolution < 2 {
		return fmt.Errorf("grid resolution %d too small", g.Resolution)
	}
	if len(heights) != n || len(colors) != n {
		return fmt.Errorf("grid buffers: got %d heights and %d colors, want %d", len(heights), len(colors), n)
	}

	mesh.Resolution = g.Resolution
	mesh.Vertices = mesh.Vertices[:0]
	mesh.Indices = mesh.Indices[:0]

	step := float64(g.Resolution - 1)
	for z := range g.Resolution {
		for x := range g.Resolution {
			i := g.Index(x, z)
			lx, lz := g.Local(x, z)
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: [3]float32{float32(lx), float32(heights[i]), float32(lz)},
				Normal:   [3]float32{0, 1, 0},
				TexCoord: [2]float32{float32(float64(x) / step), float32(float64(z) / step)},
				Color:    colors[i].Array(),
			})
		}
	}

	for z := 0; z < g.Resolution-1; z++ {
		for x := 0; x < g.Resolution-1; x++ {
			v00 := uint32(g.Index(x, z))
			v10 := uint32(g.Index(x+1, z))
			v01 := uint32(g.Index(x, z+1))
			v11 := uint32(g.Index(x+1, z+1))
			mesh.Indices = append(mesh.Indices,
				v00, v01, v10,
				v10, v01, v11,
			)
		}
	}

	RecalculateBounds(mesh)
	RecalculateNormals(mesh)
	return nil
}

// SetHeight moves vertex i to a new height. Callers recompute normals and
// bounds once all edits are done.
func (m *Mesh) SetHeight(i int, h float64) {
	m.Vertices[i].Position[1] = float32(h)
}

// SetColor replaces the color of vertex i.
func (m *Mesh) SetColor(i int, c Color) {
	m.Vertices[i].Color = c.Array()
}

// SetColors replaces all vertex colors.
func (m *Mesh) SetColors(colors []Color) {
	for i := range m.Vertices {
		if i < len(colors) {
			m.Vertices[i].Color = colors[i].Array()
		}
	}
}

// RecalculateNormals computes area-weighted smooth normals from the index buffer.
func RecalculateNormals(m *Mesh) {
	for i := range m.Vertices {
		m.Vertices[i].Normal = [3]float32{}
	}

	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		pa := m.Vertices[a].Position
		pb := m.Vertices[b].Position
		pc := m.Vertices[c].Position
		e1 := [3]float32{pb[0] - pa[0], pb[1] - pa[1], pb[2] - pa[2]}
		e2 := [3]float32{pc[0] - pa[0], pc[1] - pa[1], pc[2] - pa[2]}
		n := cross(e1, e2)
		for _, idx := range [3]uint32{a, b, c} {
			v := &m.Vertices[idx]
			v.Normal[0] += n[0]
			v.Normal[1] += n[1]
			v.Normal[2] += n[2]
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = normalize(m.Vertices[i].Normal)
	}
}

// RecalculateBounds recomputes the bounding box from vertex positions.
func RecalculateBounds(m *Mesh) {
	m.Bounds = Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	for i := range m.Vertices {
		updateBounds(&m.Bounds, m.Vertices[i].Position)
	}
}

// reset clears buffers while keeping their capacity for reuse.
func (m *Mesh) reset() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
	m.Bounds = Bounds{}
	m.Resolution = 0
}

// Helper functions

func updateBounds(b *Bounds, p [3]float32) {
	for axis := range 3 {
		if p[axis] < b.Min[axis] {
			b.Min[axis] = p[axis]
		}
		if p[axis] > b.Max[axis] {
			b.Max[axis] = p[axis]
		}
	}
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v [3]float32) [3]float32 {
	l := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
