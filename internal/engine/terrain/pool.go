package terrain

import "errors"

// ErrPoolExhausted is returned when every mesh up to the pool cap is checked out.
var ErrPoolExhausted = errors.New("mesh pool exhausted")

// MeshPool is a bounded free list of reusable meshes. Meshes are allocated
// on first use and grown only up to Capacity.
type MeshPool struct {
	capacity  int
	allocated int
	free      []*Mesh
	out       map[*Mesh]struct{}
}

// NewMeshPool creates a pool that never holds more than capacity meshes.
func NewMeshPool(capacity int) *MeshPool {
	return &MeshPool{
		capacity: capacity,
		free:     make([]*Mesh, 0, capacity),
		out:      make(map[*Mesh]struct{}, capacity),
	}
}

// Acquire checks out a mesh, reusing a released one when available.
func (p *MeshPool) Acquire() (*Mesh, error) {
	var m *Mesh
	if n := len(p.free); n > 0 {
		m = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		if p.allocated >= p.capacity {
			return nil, ErrPoolExhausted
		}
		m = &Mesh{}
		p.allocated++
	}
	p.out[m] = struct{}{}
	return m, nil
}

// Release returns a mesh to the pool. Releasing a mesh that is not checked
// out is ignored, which keeps checkout and release strictly paired.
func (p *MeshPool) Release(m *Mesh) bool {
	if m == nil {
		return false
	}
	if _, ok := p.out[m]; !ok {
		return false
	}
	delete(p.out, m)
	m.reset()
	p.free = append(p.free, m)
	return true
}

// Capacity returns the hard cap on allocated meshes.
func (p *MeshPool) Capacity() int { return p.capacity }

// Allocated returns how many meshes have ever been created.
func (p *MeshPool) Allocated() int { return p.allocated }

// InUse returns how many meshes are checked out.
func (p *MeshPool) InUse() int { return len(p.out) }

// Free returns how many meshes wait for reuse.
func (p *MeshPool) Free() int { return len(p.free) }
