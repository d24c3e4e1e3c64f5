// Package aabb implements the power-of-two cube bounding boxes the octmap
// uses to address its nodes, plus the octant subdivision and viewer-distance
// metric that drive the LOD split/merge decision.
package aabb

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSize is returned when a cube side is zero, one, or not a power of
// two. Cubes of side 1 are never valid AABBs: the smallest leaf still covers
// at least one chunk of side >= 2 (see spec §3: leaf side >= 2*C).
var ErrInvalidSize = errors.New("aabb: size must be a power of two greater than 1")

// AABB is a cube in integer world-grid coordinates: a minimum corner and a
// side length that is a power of two >= 2.
type AABB struct {
	Min  [3]uint32
	Side uint32
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

// New validates side and returns the root-positioned cube [0,side)^3.
func New(side uint32) (AABB, error) {
	if side == 0 || side == 1 || !isPowerOfTwo(side) {
		return AABB{}, fmt.Errorf("%w: got %d", ErrInvalidSize, side)
	}
	return AABB{Min: [3]uint32{0, 0, 0}, Side: side}, nil
}

// newUnchecked constructs an AABB without validating side; used internally
// by Subdivide, which always produces valid half-sized cubes from a valid
// parent.
func newUnchecked(min [3]uint32, side uint32) AABB {
	return AABB{Min: min, Side: side}
}

// Step is the world-space spacing between adjacent voxel corners of a chunk
// of chunkSize cells that tiles this AABB: Side / chunkSize.
func (a AABB) Step(chunkSize uint32) uint32 {
	return a.Side / chunkSize
}

// Max returns the maximum corner (exclusive), Min + Side in every axis.
func (a AABB) Max() [3]uint32 {
	return [3]uint32{a.Min[0] + a.Side, a.Min[1] + a.Side, a.Min[2] + a.Side}
}

// Extent is half the side; AABBs are always even-sided (powers of two > 1)
// so this never needs rounding.
func (a AABB) Extent() uint32 {
	return a.Side / 2
}

// Center returns the cube's center point, in world-grid coordinates.
func (a AABB) Center() [3]uint32 {
	e := a.Extent()
	return [3]uint32{a.Min[0] + e, a.Min[1] + e, a.Min[2] + e}
}

// Subdivide splits the cube into its 8 octants, each of half side. Octant
// ordering follows the (x,y,z) low/high bit pattern used throughout the
// package: index bit 0 selects X half, bit 1 selects Y half, bit 2 selects Z
// half.
func (a AABB) Subdivide() [8]AABB {
	min := a.Min
	cen := a.Center()
	ext := a.Extent()
	return [8]AABB{
		newUnchecked([3]uint32{min[0], min[1], min[2]}, ext),
		newUnchecked([3]uint32{cen[0], min[1], min[2]}, ext),
		newUnchecked([3]uint32{min[0], cen[1], min[2]}, ext),
		newUnchecked([3]uint32{cen[0], cen[1], min[2]}, ext),
		newUnchecked([3]uint32{min[0], min[1], cen[2]}, ext),
		newUnchecked([3]uint32{cen[0], min[1], cen[2]}, ext),
		newUnchecked([3]uint32{min[0], cen[1], cen[2]}, ext),
		newUnchecked([3]uint32{cen[0], cen[1], cen[2]}, ext),
	}
}

// DistanceFrom returns the Euclidean distance from point to the nearest
// point on the box (0 if point is inside or on the boundary).
func (a AABB) DistanceFrom(point [3]float64) float64 {
	center := a.Center()
	extent := float64(a.Extent())
	var sumSq float64
	for i := 0; i < 3; i++ {
		d := math.Abs(point[i] - float64(center[i]))
		d -= extent
		if d < 0 {
			d = 0
		}
		sumSq += d * d
	}
	return math.Sqrt(sumSq)
}

// Contains reports whether the integer point lies within [Min, Max).
func (a AABB) Contains(point [3]uint32) bool {
	max := a.Max()
	for i := 0; i < 3; i++ {
		if point[i] < a.Min[i] || point[i] >= max[i] {
			return false
		}
	}
	return true
}

// AdjacentAcross returns the AABB of the same size as a, directly across the
// given face, and true; it returns false if that position would lie below the
// world origin on that axis (in which case there is no neighbour there; the
// octmap treats that face as a world boundary rather than an LOD seam). The
// positive direction is not bounded here.
func (a AABB) AdjacentAcross(axis int, positive bool) (AABB, bool) {
	min := a.Min
	if positive {
		min[axis] += a.Side
	} else {
		if min[axis] < a.Side {
			return AABB{}, false
		}
		min[axis] -= a.Side
	}
	return newUnchecked(min, a.Side), true
}
