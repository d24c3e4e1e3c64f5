// Package marching implements the Marching Cubes isosurface extractor:
// one triangulated cell per unit cube of a sample chunk, driven by the
// standard 256-case table in tables.go.
package marching

import (
	"github.com/voxterra/voxterra/chunkgrid"
	"github.com/voxterra/voxterra/meshdata"
	"github.com/voxterra/voxterra/volume"
)

// CornerOffset lists the eight cube corners in the standard Lorensen-Cline
// order used by EdgeTable/TriTable.
var CornerOffset = [8][3]uint32{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// EdgeCorners maps each of the 12 cube edges to its two endpoint corners.
var EdgeCorners = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// EdgeAxis is the axis (0=x,1=y,2=z) each edge runs along; edges on the same
// axis between the same pair of voxels are the same edge regardless of
// which cell visits it first.
var EdgeAxis = [12]int{0, 1, 0, 1, 0, 1, 0, 1, 2, 2, 2, 2}

// vertexCache reuses vertices produced on cube edges shared with adjacent
// cells, keyed by the global voxel coordinate of the edge's lower endpoint
// and its axis. Only the current and previous Z-slice are kept live, which
// bounds cache memory to O(C²) per the extractor's interior-edge reuse rule.
type vertexCache struct {
	voxelsPerRow uint32
	current      map[uint64]uint32
	prev         map[uint64]uint32
	currentZ     uint32
}

func newVertexCache(voxelsPerRow uint32) *vertexCache {
	return &vertexCache{voxelsPerRow: voxelsPerRow, current: map[uint64]uint32{}, prev: map[uint64]uint32{}}
}

func (c *vertexCache) key(vx, vy, vz uint32, axis int) uint64 {
	row := uint64(c.voxelsPerRow)
	return (uint64(vz)*row+uint64(vy))*row*4 + uint64(vx)*4 + uint64(axis)
}

func (c *vertexCache) lookup(vx, vy, vz uint32, axis int) (uint32, bool) {
	k := c.key(vx, vy, vz, axis)
	if idx, ok := c.current[k]; ok {
		return idx, true
	}
	idx, ok := c.prev[k]
	return idx, ok
}

func (c *vertexCache) store(vx, vy, vz uint32, axis int, idx uint32) {
	c.current[c.key(vx, vy, vz, axis)] = idx
}

func (c *vertexCache) advanceZ(z uint32) {
	if z == c.currentZ {
		return
	}
	c.prev = c.current
	c.current = map[uint64]uint32{}
	c.currentZ = z
}

// ExtractChunk appends triangles for every cell of samples to mesh. Corner i
// of cell (cx,cy,cz) is at voxel (cx,cy,cz)+CornerOffset[i]; the interior of
// the surface is where sample values are positive (see the volume package's
// sign convention). min is the chunk's world-space origin, added to every
// emitted vertex so chunks tile the world instead of all landing at the
// origin.
func ExtractChunk(size chunkgrid.Size, min [3]uint32, step uint32, samples volume.SampleChunk, mesh *meshdata.Mesh) {
	switch samples.Tag {
	case volume.AllPositive, volume.AllNegative, volume.AllZero:
		return
	}

	voxelsPerRow := size.VoxelsPerRow()
	cellsPerRow := size.CellsPerRow()
	cache := newVertexCache(voxelsPerRow)

	for cz := uint32(0); cz < cellsPerRow; cz++ {
		cache.advanceZ(cz)
		for cy := uint32(0); cy < cellsPerRow; cy++ {
			for cx := uint32(0); cx < cellsPerRow; cx++ {
				var values [8]float32
				for i, off := range CornerOffset {
					values[i] = samples.Sample(size.VoxelIndex(cx+off[0], cy+off[1], cz+off[2]))
				}

				caseIndex := 0
				for i, v := range values {
					if v > 0 {
						caseIndex |= 1 << uint(i)
					}
				}
				if caseIndex == 0 || caseIndex == 255 {
					continue
				}

				edgeMask := EdgeTable[caseIndex]
				if edgeMask == 0 {
					continue
				}

				var edgeVertex [12]uint32
				for e := 0; e < 12; e++ {
					if edgeMask&(1<<uint(e)) == 0 {
						continue
					}
					edgeVertex[e] = vertexForEdge(mesh, cache, cx, cy, cz, e, values, min, step)
				}

				tris := TriTable[caseIndex]
				for i := 0; i < 16 && tris[i] != -1; i += 3 {
					mesh.Indices = append(mesh.Indices,
						uint16(edgeVertex[tris[i]]),
						uint16(edgeVertex[tris[i+1]]),
						uint16(edgeVertex[tris[i+2]]),
					)
				}
			}
		}
	}
}

// vertexForEdge returns the shared-vertex index for cell (cx,cy,cz)'s edge
// e, creating and interpolating it on first visit.
func vertexForEdge(mesh *meshdata.Mesh, cache *vertexCache, cx, cy, cz uint32, e int, values [8]float32, origin [3]uint32, step uint32) uint32 {
	corners := EdgeCorners[e]
	a, b := corners[0], corners[1]
	pa, pb := CornerOffset[a], CornerOffset[b]

	// The edge's lower endpoint in global voxel coordinates identifies it
	// uniquely, independent of which adjacent cell visits it first.
	lx := cx + min(pa[0], pb[0])
	ly := cy + min(pa[1], pb[1])
	lz := cz + min(pa[2], pb[2])
	axis := EdgeAxis[e]

	if idx, ok := cache.lookup(lx, ly, lz, axis); ok {
		return idx
	}

	sa, sb := values[a], values[b]
	var t float32
	if sa == 0 && sb == 0 {
		t = 0.5
	} else {
		t = sa / (sa - sb)
	}

	world := [3]float32{
		float32(origin[0]) + float32(cx+pa[0])*float32(step) + t*float32(int32(pb[0])-int32(pa[0]))*float32(step),
		float32(origin[1]) + float32(cy+pa[1])*float32(step) + t*float32(int32(pb[1])-int32(pa[1]))*float32(step),
		float32(origin[2]) + float32(cz+pa[2])*float32(step) + t*float32(int32(pb[2])-int32(pa[2]))*float32(step),
	}

	mesh.Vertices = append(mesh.Vertices, meshdata.Vertex{Position: world})
	idx := uint32(len(mesh.Vertices) - 1)
	cache.store(lx, ly, lz, axis, idx)
	return idx
}
