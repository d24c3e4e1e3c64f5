// Package transvoxel extracts seam triangles between a low-resolution
// chunk's face and the (up to) four higher-resolution chunks abutting it.
//
// No published Transvoxel case table was retrievable for this project (see
// DESIGN.md); instead each half-resolution face cell is built as an
// asymmetric eight-corner cell — four real fine samples on the high-res
// side, four samples blended from the low-res chunk's own interior corners
// on the low-res side — and triangulated with the exact same edge/triangle
// tables marching uses, so the arithmetic generating a boundary vertex is
// identical to the one the high-res interior extractor uses on its side of
// the seam.
package transvoxel

import (
	"github.com/voxterra/voxterra/chunkgrid"
	"github.com/voxterra/voxterra/marching"
	"github.com/voxterra/voxterra/meshdata"
	"github.com/voxterra/voxterra/volume"
)

// faceAxis returns the axis the face is perpendicular to and whether the
// face sits at the chunk's maximum (Hi) or minimum (Lo) side along it.
func faceAxis(side meshdata.TransitionSide) (axis int, hi bool) {
	switch side {
	case meshdata.LoX:
		return 0, false
	case meshdata.HiX:
		return 0, true
	case meshdata.LoY:
		return 1, false
	case meshdata.HiY:
		return 1, true
	case meshdata.LoZ:
		return 2, false
	case meshdata.HiZ:
		return 2, true
	}
	return 0, false
}

// inPlaneAxes returns the two axes spanning the face, in a fixed (u,v)
// order used consistently for quadrant selection and corner ordering.
func inPlaneAxes(axis int) (u, v int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

// ExtractChunk appends transition-cell triangles for one face of a
// low-resolution chunk to mesh.
//
// hiresMins/hiresSamples index the (up to) four chunks tiling this face at
// hiresStep, in (uHigh + 2*vHigh) quadrant order — index 0 covers the
// lower half of both in-plane axes, index 3 the upper half of both.
// loresMin/loresSamples/loresStep describe the low-resolution chunk itself;
// size is shared by every chunk involved (uniform chunk size is a job queue
// invariant — see octmap).
func ExtractChunk(
	side meshdata.TransitionSide,
	size chunkgrid.Size,
	hiresMins [4][3]uint32,
	hiresSamples [4]*volume.SampleChunk,
	hiresStep uint32,
	loresMin [3]uint32,
	loresSamples *volume.SampleChunk,
	loresStep uint32,
	mesh *meshdata.Mesh,
) {
	if uniformMatchingSign(loresSamples, hiresSamples) {
		return
	}

	axis, hi := faceAxis(side)
	u, v := inPlaneAxes(axis)
	C := size.CellsPerRow()

	var faceDepthLocal, interiorDepthLocal uint32
	// The high-res chunks sit across the face, so their seam-side voxel
	// layer is the one nearest the low-res chunk: local 0 across a Hi face,
	// local C across a Lo face.
	if hi {
		faceDepthLocal = 0
		interiorDepthLocal = C - 1
	} else {
		faceDepthLocal = C
		interiorDepthLocal = 1
	}

	quadrant := func(fu, fv uint32) (index int, lu, lv uint32) {
		uHigh, vHigh := fu >= C, fv >= C
		lu, lv = fu, fv
		if uHigh {
			lu = fu - C
		}
		if vHigh {
			lv = fv - C
		}
		index = 0
		if uHigh {
			index |= 1
		}
		if vHigh {
			index |= 2
		}
		return index, lu, lv
	}

	fineVoxelAt := func(fu, fv uint32) (value float32, world [3]float32) {
		quad, lu, lv := quadrant(fu, fv)
		var local [3]uint32
		local[axis] = faceDepthLocal
		local[u] = lu
		local[v] = lv
		value = hiresSamples[quad].Sample(size.VoxelIndex(local[0], local[1], local[2]))
		world[axis] = float32(hiresMins[quad][axis]) + float32(local[axis])*float32(hiresStep)
		world[u] = float32(hiresMins[quad][u]) + float32(local[u])*float32(hiresStep)
		world[v] = float32(hiresMins[quad][v]) + float32(local[v])*float32(hiresStep)
		return value, world
	}

	loresCornerAt := func(cu, cv uint32) (value float32, world [3]float32) {
		var local [3]uint32
		local[axis] = interiorDepthLocal
		local[u] = cu
		local[v] = cv
		value = loresSamples.Sample(size.VoxelIndex(local[0], local[1], local[2]))
		world[axis] = float32(loresMin[axis]) + float32(local[axis])*float32(loresStep)
		world[u] = float32(loresMin[u]) + float32(local[u])*float32(loresStep)
		world[v] = float32(loresMin[v]) + float32(local[v])*float32(loresStep)
		return value, world
	}

	for cj := uint32(0); cj < C; cj++ {
		for ci := uint32(0); ci < C; ci++ {
			lv00, wv00 := loresCornerAt(ci, cj)
			lv10, wv10 := loresCornerAt(ci+1, cj)
			lv01, wv01 := loresCornerAt(ci, cj+1)
			lv11, wv11 := loresCornerAt(ci+1, cj+1)

			var fineVal [3][3]float32
			var fineWorld [3][3][3]float32
			for dy := uint32(0); dy < 3; dy++ {
				for dx := uint32(0); dx < 3; dx++ {
					val, world := fineVoxelAt(2*ci+dx, 2*cj+dy)
					fineVal[dy][dx] = val
					fineWorld[dy][dx] = world
				}
			}

			for sy := uint32(0); sy < 2; sy++ {
				for sx := uint32(0); sx < 2; sx++ {
					extractSubCell(mesh, sx, sy,
						fineVal, fineWorld,
						lv00, lv10, lv01, lv11,
						wv00, wv10, wv01, wv11,
					)
				}
			}
		}
	}
}

// extractSubCell triangulates one of the four fine sub-cells within a
// coarse face cell as an eight-corner cell: corners 0-3 are the real fine
// samples at z=0 (the seam itself); corners 4-7 are bilinearly blended
// low-res values at z=1, giving the cell a synthetic inward depth that
// feathers toward the coarse representation.
func extractSubCell(
	mesh *meshdata.Mesh,
	sx, sy uint32,
	fineVal [3][3]float32, fineWorld [3][3][3]float32,
	lv00, lv10, lv01, lv11 float32,
	wv00, wv10, wv01, wv11 [3]float32,
) {
	var values [8]float32
	var corners [8][3]float32

	// Front face (z=0): CornerOffset order (0,0),(1,0),(1,1),(0,1).
	values[0] = fineVal[sy][sx]
	values[1] = fineVal[sy][sx+1]
	values[2] = fineVal[sy+1][sx+1]
	values[3] = fineVal[sy+1][sx]
	corners[0] = fineWorld[sy][sx]
	corners[1] = fineWorld[sy][sx+1]
	corners[2] = fineWorld[sy+1][sx+1]
	corners[3] = fineWorld[sy+1][sx]

	blend := func(u, v float32) (float32, [3]float32) {
		a := bilerp(lv00, lv10, lv01, lv11, u, v)
		var w [3]float32
		for k := 0; k < 3; k++ {
			w[k] = bilerp(wv00[k], wv10[k], wv01[k], wv11[k], u, v)
		}
		return a, w
	}

	values[4], corners[4] = blend(float32(sx)/2, float32(sy)/2)
	values[5], corners[5] = blend(float32(sx+1)/2, float32(sy)/2)
	values[6], corners[6] = blend(float32(sx+1)/2, float32(sy+1)/2)
	values[7], corners[7] = blend(float32(sx)/2, float32(sy+1)/2)

	caseIndex := 0
	for i, val := range values {
		if val > 0 {
			caseIndex |= 1 << uint(i)
		}
	}
	if caseIndex == 0 || caseIndex == 255 {
		return
	}
	edgeMask := marching.EdgeTable[caseIndex]
	if edgeMask == 0 {
		return
	}

	var edgePos [12][3]float32
	var edgeValid [12]bool
	for e := 0; e < 12; e++ {
		if edgeMask&(1<<uint(e)) == 0 {
			continue
		}
		a, b := marching.EdgeCorners[e][0], marching.EdgeCorners[e][1]
		sa, sb := values[a], values[b]
		var t float32
		if sa == 0 && sb == 0 {
			t = 0.5
		} else {
			t = sa / (sa - sb)
		}
		for k := 0; k < 3; k++ {
			edgePos[e][k] = corners[a][k] + t*(corners[b][k]-corners[a][k])
		}
		edgeValid[e] = true
	}

	tris := marching.TriTable[caseIndex]
	for i := 0; i < 16 && tris[i] != -1; i += 3 {
		e0, e1, e2 := tris[i], tris[i+1], tris[i+2]
		if !edgeValid[e0] || !edgeValid[e1] || !edgeValid[e2] {
			continue
		}
		p0, p1, p2 := edgePos[e0], edgePos[e1], edgePos[e2]
		if isDegenerate(p0, p1, p2) {
			continue
		}
		mesh.AppendTriangle(p0, p1, p2)
	}
}

// uniformMatchingSign reports the spec's transition fast path: the low-res
// chunk and all four high-res chunks are uniformly the same sign, so the
// seam cannot cross the surface anywhere.
func uniformMatchingSign(lores *volume.SampleChunk, hires [4]*volume.SampleChunk) bool {
	if lores.Tag != volume.AllPositive && lores.Tag != volume.AllNegative {
		return false
	}
	for _, h := range hires {
		if h.Tag != lores.Tag {
			return false
		}
	}
	return true
}

func bilerp(v00, v10, v01, v11, u, v float32) float32 {
	top := v00 + u*(v10-v00)
	bottom := v01 + u*(v11-v01)
	return top + v*(bottom-top)
}

// isDegenerate reports whether a triangle has zero area (coincident
// vertices or collinear points), which the spec requires culling.
func isDegenerate(a, b, c [3]float32) bool {
	var ab, ac [3]float32
	for k := 0; k < 3; k++ {
		ab[k] = b[k] - a[k]
		ac[k] = c[k] - a[k]
	}
	cross := [3]float32{
		ab[1]*ac[2] - ab[2]*ac[1],
		ab[2]*ac[0] - ab[0]*ac[2],
		ab[0]*ac[1] - ab[1]*ac[0],
	}
	const epsilon = 1e-12
	magSq := cross[0]*cross[0] + cross[1]*cross[1] + cross[2]*cross[2]
	return magSq < epsilon
}
