package biome

import gomath "math"

// NoiseParams holds configurable parameters for fractal value noise.
type NoiseParams struct {
	Seed        uint64
	Octaves     int
	Frequency   float64 // lattice cells per world unit at the first octave
	Persistence float64 // amplitude factor between octaves
	Lacunarity  float64 // frequency factor between octaves
}

// Fractal sums octaves of value noise at a world position and normalizes
// the result to [0, 1]. The same position always yields the same value, so
// tiles sampled at shared edges agree before any blending.
func (p NoiseParams) Fractal(x, z float64) float64 {
	octaves := max(p.Octaves, 1)
	freq := p.Frequency
	amp := 1.0
	sum, norm := 0.0, 0.0
	for o := range octaves {
		sum += amp * valueNoise(p.Seed+uint64(o)*0x9E3779B97F4A7C15, x*freq, z*freq)
		norm += amp
		amp *= p.Persistence
		freq *= p.Lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// valueNoise interpolates hashed lattice values with a smoothstep fade.
func valueNoise(seed uint64, x, z float64) float64 {
	fx, fz := gomath.Floor(x), gomath.Floor(z)
	ix, iz := int(fx), int(fz)
	tx := fade(x - fx)
	tz := fade(z - fz)

	v00 := lattice(seed, ix, iz)
	v10 := lattice(seed, ix+1, iz)
	v01 := lattice(seed, ix, iz+1)
	v11 := lattice(seed, ix+1, iz+1)

	south := v00 + (v10-v00)*tx
	north := v01 + (v11-v01)*tx
	return south + (north-south)*tz
}

func fade(t float64) float64 {
	return t * t * (3 - 2*t)
}

// lattice maps a lattice point to [0, 1).
func lattice(seed uint64, x, z int) float64 {
	return float64(hash2D(seed, x, z)>>11) / (1 << 53)
}

// splitmix64 is a fast, high-quality 64-bit mixer.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// hash2D returns a deterministic 64-bit hash for (x,y) under the given seed.
func hash2D(seed uint64, x, y int) uint64 {
	ux := uint64(uint32(x))
	uy := uint64(uint32(y))
	h := seed
	h ^= ux * 0x9E3779B185EBCA87
	h ^= uy * 0xC2B2AE3D27D4EB4F
	return splitmix64(h)
}

// floorDiv performs mathematical floor division for integers.
func floorDiv(a, b int) int {
	q := a / b
	r := a % b
	if (r != 0) && ((r < 0) != (b < 0)) {
		q--
	}
	return q
}
