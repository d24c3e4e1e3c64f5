// Package volume defines the scalar field sampling contract the octmap and
// extractors consume, plus the concrete primitives (sphere, noise, sum) and
// the compressed whole-chunk sampling fast path.
package volume

import (
	"math"

	"github.com/voxterra/voxterra/chunkgrid"
)

// DebugSampleChecks gates the debug-build NaN/infinite-value check in
// SampleChunkAt. It is a runtime flag rather than a build tag because the spec
// ties the check to "debug builds" as a policy choice the embedding
// application makes, not a compile-time one (§7: "VolumeSampleError — NaN/
// infinite value from volume in debug builds").
var DebugSampleChecks = false

// Volume samples a scalar field at an integer voxel position. Implementations
// must be pure and safe to call concurrently from multiple job-queue workers
// (spec §5).
type Volume interface {
	Sample(x, y, z uint32) float32
}

// Tag identifies a compressed, uniform-sign sample chunk. The zero value
// Mixed means the chunk carries a dense array instead.
type Tag int

const (
	Mixed Tag = iota
	AllZero
	AllPositive
	AllNegative
)

// SampleChunk is either a compressed constant tag or a dense array of
// (C+1)^3 values, one per voxel, indexed via chunkgrid.VoxelIndex.
type SampleChunk struct {
	Tag    Tag
	Values []float32 // nil unless Tag == Mixed
}

// Sample returns the value at the given voxel index (as produced by
// chunkgrid.Size.VoxelIndex), respecting the compressed tag.
func (s *SampleChunk) Sample(index uint32) float32 {
	switch s.Tag {
	case AllZero:
		return 0
	case AllPositive:
		return 1
	case AllNegative:
		return -1
	default:
		return s.Values[index]
	}
}

// SampleChunkAt evaluates v at every voxel of the chunk rooted at start with
// the given world-space step, for a chunk of the given size, tracking the
// three uniform-sign flags so a constant-tag chunk can be returned instead of
// a dense array. This is the fast path noted in spec §4.2 and §9: a
// uniformly-signed sphere interior/exterior, away from its thin surface
// shell, compresses to a single tag, and the returned chunk carries no
// (C+1)^3 array (the scratch array is still allocated while sampling).
func SampleChunkAt(v Volume, size chunkgrid.Size, start [3]uint32, step uint32) SampleChunk {
	values := make([]float32, size.VoxelsPerChunk())
	allZero, allPositive, allNegative := true, true, true
	size.ForAllVoxels(func(x, y, z, index uint32) {
		value := v.Sample(start[0]+step*x, start[1]+step*y, start[2]+step*z)
		if DebugSampleChecks && (math.IsNaN(float64(value)) || math.IsInf(float64(value), 0)) {
			// Programmer error per spec §7; panic rather than silently
			// propagate, since this path only runs when the caller opted
			// into the debug check.
			panic("volume: non-finite sample value")
		}
		if value != 0 {
			allZero = false
		}
		if value <= 0 {
			allPositive = false
		}
		if value >= 0 {
			allNegative = false
		}
		values[index] = value
	})
	switch {
	case allZero:
		return SampleChunk{Tag: AllZero}
	case allPositive:
		return SampleChunk{Tag: AllPositive}
	case allNegative:
		return SampleChunk{Tag: AllNegative}
	default:
		return SampleChunk{Tag: Mixed, Values: values}
	}
}
