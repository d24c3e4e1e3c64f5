package volume

import "math"

// Sphere is a solid ball centered at (r/2, r/2, r/2), r = Radius, whose
// surface lies at distance r/2 from the center, so a chunk of side r starting
// at the origin contains the full ball. Grounded on
// original_source/core/voxel/src/volume.rs: value = 0.5 - |p - r/2*1| / r.
type Sphere struct {
	Radius float32
}

// NewSphere constructs a Sphere volume.
func NewSphere(radius float32) Sphere {
	return Sphere{Radius: radius}
}

// Sample implements Volume.
func (s Sphere) Sample(x, y, z uint32) float32 {
	half := s.Radius / 2
	dx := float64(x) - float64(half)
	dy := float64(y) - float64(half)
	dz := float64(z) - float64(half)
	mag := math.Sqrt(dx*dx + dy*dy + dz*dz)
	return 0.5 - float32(mag)/s.Radius
}

// Noise is a fractal Brownian motion scalar field: octaves of value noise at
// increasing frequency (scaled by lacunarity) and decreasing amplitude
// (scaled by gain), summed. Grounded on the settings struct in
// original_source/core/voxel/src/volume.rs (seed, lacunarity, frequency,
// gain, octaves); the octave-summation loop itself is hand-written since no
// noise library appears anywhere in the retrieved corpus (see DESIGN.md).
type Noise struct {
	Seed       int32
	Lacunarity float32
	Frequency  float32
	Gain       float32
	Octaves    uint8
}

// NewNoise constructs a Noise volume with the given fBm parameters.
func NewNoise(seed int32, lacunarity, frequency, gain float32, octaves uint8) Noise {
	return Noise{Seed: seed, Lacunarity: lacunarity, Frequency: frequency, Gain: gain, Octaves: octaves}
}

// Sample implements Volume.
func (n Noise) Sample(x, y, z uint32) float32 {
	fx := float64(x) * float64(n.Frequency)
	fy := float64(y) * float64(n.Frequency)
	fz := float64(z) * float64(n.Frequency)
	var sum, amplitude float64 = 0, 1
	freq := 1.0
	for o := uint8(0); o < n.Octaves; o++ {
		sum += amplitude * valueNoise3(n.Seed+int32(o), fx*freq, fy*freq, fz*freq)
		amplitude *= float64(n.Gain)
		freq *= float64(n.Lacunarity)
	}
	return float32(sum)
}

// valueNoise3 is a deterministic hash-based value noise, trilinearly
// interpolated between lattice corners. It has no external dependency and is
// only required to be a smooth, seed-stable pseudo-random field — the exact
// statistical properties are not load-bearing for the spec.
func valueNoise3(seed int32, x, y, z float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	z0 := math.Floor(z)
	tx := x - x0
	ty := y - y0
	tz := z - z0

	ix0, iy0, iz0 := int64(x0), int64(y0), int64(z0)
	lerp := func(a, b, t float64) float64 { return a + (b-a)*smooth(t) }

	c := make([]float64, 8)
	i := 0
	for dz := int64(0); dz <= 1; dz++ {
		for dy := int64(0); dy <= 1; dy++ {
			for dx := int64(0); dx <= 1; dx++ {
				c[i] = latticeHash(seed, ix0+dx, iy0+dy, iz0+dz)
				i++
			}
		}
	}
	x00 := lerp(c[0], c[1], tx)
	x10 := lerp(c[2], c[3], tx)
	x01 := lerp(c[4], c[5], tx)
	x11 := lerp(c[6], c[7], tx)
	y0v := lerp(x00, x10, ty)
	y1v := lerp(x01, x11, ty)
	return lerp(y0v, y1v, tz)
}

func smooth(t float64) float64 { return t * t * (3 - 2*t) }

// latticeHash maps an integer lattice point to a pseudo-random value in
// [-1, 1], stable for a given seed.
func latticeHash(seed int32, x, y, z int64) float64 {
	h := uint64(seed)
	h = h*2654435761 + uint64(x)*0x9E3779B97F4A7C15
	h = h*2654435761 + uint64(y)*0xC2B2AE3D27D4EB4F
	h = h*2654435761 + uint64(z)*0x165667B19E3779F9
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return (float64(h%1_000_000)/500_000.0 - 1.0)
}

// Sum adds the values of two volumes. Grounded on original_source's `Plus`
// combinator.
type Sum struct {
	A, B Volume
}

// NewSum constructs a Sum volume.
func NewSum(a, b Volume) Sum {
	return Sum{A: a, B: b}
}

// Sample implements Volume.
func (s Sum) Sample(x, y, z uint32) float32 {
	return s.A.Sample(x, y, z) + s.B.Sample(x, y, z)
}
