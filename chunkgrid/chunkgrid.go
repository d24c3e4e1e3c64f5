// Package chunkgrid provides the cell/voxel index arithmetic shared by the
// extractors and the volume sampler. A chunk is a cube of CellsPerRow cells
// sharing corner voxels with its +X/+Y/+Z neighbours, so a chunk of
// CellsPerRow cells has CellsPerRow+1 voxels per row.
package chunkgrid

import "fmt"

// Size describes a chunk's compile-time-sized shape. The spec calls for a
// const-generic array of side C; Go has no const generics over array length,
// so Size carries C as a runtime-checked invariant instead (enforced once,
// here, rather than at every call site).
type Size struct {
	C uint32
}

// Allowed chunk sizes, per spec §6 Configuration.
var allowedChunkSizes = map[uint32]bool{1: true, 2: true, 6: true, 16: true, 32: true}

// NewSize validates C against the set of chunk sizes the spec recognizes.
func NewSize(c uint32) (Size, error) {
	if !allowedChunkSizes[c] {
		return Size{}, fmt.Errorf("chunkgrid: chunk size %d is not one of 1, 2, 6, 16, 32", c)
	}
	return Size{C: c}, nil
}

// CellsPerRow is C.
func (s Size) CellsPerRow() uint32 { return s.C }

// VoxelsPerRow is C+1: cells share corner voxels with the +X/+Y/+Z neighbour.
func (s Size) VoxelsPerRow() uint32 { return s.C + 1 }

// CellsPerChunk is C^3.
func (s Size) CellsPerChunk() uint32 { return s.C * s.C * s.C }

// VoxelsPerChunk is (C+1)^3.
func (s Size) VoxelsPerChunk() uint32 {
	v := s.VoxelsPerRow()
	return v * v * v
}

// CellIndex computes the linear index of cell (x,y,z), 0 <= x,y,z < C.
// index = x + C*y + C*C*z. Extractors rely on this exact formula to cache
// shared edge vertices keyed by cell coordinate — changing it breaks them.
func (s Size) CellIndex(x, y, z uint32) uint32 {
	row := s.CellsPerRow()
	return x + row*y + row*row*z
}

// XYZFromCellIndex is the inverse of CellIndex.
func (s Size) XYZFromCellIndex(index uint32) (x, y, z uint32) {
	row := s.CellsPerRow()
	z = index / (row * row)
	index -= z * row * row
	y = index / row
	x = index % row
	return x, y, z
}

// VoxelIndex computes the linear index of voxel (x,y,z), 0 <= x,y,z <= C,
// using the same layout as CellIndex but with row length C+1.
func (s Size) VoxelIndex(x, y, z uint32) uint32 {
	row := s.VoxelsPerRow()
	return x + row*y + row*row*z
}

// XYZFromVoxelIndex is the inverse of VoxelIndex.
func (s Size) XYZFromVoxelIndex(index uint32) (x, y, z uint32) {
	row := s.VoxelsPerRow()
	z = index / (row * row)
	index -= z * row * row
	y = index / row
	x = index % row
	return x, y, z
}

// ForAllVoxels calls fn(x, y, z, index) once for every voxel in the chunk, in
// z-outer, y-middle, x-inner order, producing indices 0..VoxelsPerChunk()
// exactly once. Callers that populate a dense samples array in this order get
// a sequential, cache-friendly fill.
func (s Size) ForAllVoxels(fn func(x, y, z, index uint32)) {
	row := s.VoxelsPerRow()
	index := uint32(0)
	for z := uint32(0); z < row; z++ {
		for y := uint32(0); y < row; y++ {
			for x := uint32(0); x < row; x++ {
				fn(x, y, z, index)
				index++
			}
		}
	}
}

// ForAllCells calls fn(x, y, z, index) once for every cell in the chunk, in
// the same z-outer, y-middle, x-inner order as ForAllVoxels.
func (s Size) ForAllCells(fn func(x, y, z, index uint32)) {
	row := s.CellsPerRow()
	index := uint32(0)
	for z := uint32(0); z < row; z++ {
		for y := uint32(0); y < row; y++ {
			for x := uint32(0); x < row; x++ {
				fn(x, y, z, index)
				index++
			}
		}
	}
}
