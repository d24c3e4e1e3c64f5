// Package camera provides the view/projection math and GPU uniform layouts
// the render-data assembler's caller needs to drive a frame: a left-handed,
// Y-up, reverse-Z (near=1, far=0) perspective by default, an orbiting
// arcball controller, and the three packed uniform structs.
//
// Grounded on original_source/core/gfx/src/camera/matrix.rs: look_at_lh and
// the four projection variants are ported field-for-field. Mat4 keeps
// ultraviolet::Mat4's column-major layout (element at row r, column c lives
// at index c*4+r) since that is also the byte layout the GPU uniform
// buffers expect.
package camera

import "math"

// Vec3 is a plain 3-component vector.
type Vec3 [3]float32

func subVec3(a, b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func dotVec3(a, b Vec3) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func crossVec3(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalizeVec3(v Vec3) Vec3 {
	mag := float32(math.Sqrt(float64(dotVec3(v, v))))
	if mag == 0 {
		return v
	}
	return Vec3{v[0] / mag, v[1] / mag, v[2] / mag}
}

// Mat4 is a 4x4 matrix, column-major: Mat4[col*4+row].
type Mat4 [16]float32

// Identity is the identity transform.
var Identity = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

func (m Mat4) at(row, col int) float32 { return m[col*4+row] }

// Mul returns a*b (a applied after b to a column vector: (a*b)*v = a*(b*v)).
func Mul(a, b Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a.at(row, k) * b.at(k, col)
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// LookAtLH builds a left-handed view matrix, ported from look_at_lh.
func LookAtLH(position, target, up Vec3) Mat4 {
	zAxis := normalizeVec3(subVec3(target, position))
	xAxis := normalizeVec3(crossVec3(up, zAxis))
	yAxis := crossVec3(zAxis, xAxis)
	return Mat4{
		xAxis[0], yAxis[0], zAxis[0], 0,
		xAxis[1], yAxis[1], zAxis[1], 0,
		xAxis[2], yAxis[2], zAxis[2], 0,
		-dotVec3(xAxis, position), -dotVec3(yAxis, position), -dotVec3(zAxis, position), 1,
	}
}

// PerspectiveInfiniteReversedLH builds an infinite-far-plane, left-handed,
// Y-up perspective matrix with a reversed (1-to-0) depth range, ported from
// perspective_infinite_reversed_lh_yup_wgpu_dx. This is voxterra's default
// projection.
func PerspectiveInfiniteReversedLH(verticalFOVRadians, aspectRatio, near float32) Mat4 {
	sinFov, cosFov := math.Sincos(float64(verticalFOVRadians) * 0.5)
	h := float32(cosFov / sinFov)
	w := h / aspectRatio
	return Mat4{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, 0, 1,
		0, 0, near, 0,
	}
}

// PerspectiveLH builds a finite left-handed, Y-up perspective matrix with a
// conventional (0-to-1) depth range, ported from perspective_lh_yup_wgpu_dx.
func PerspectiveLH(verticalFOVRadians, aspectRatio, near, far float32) Mat4 {
	sinFov, cosFov := math.Sincos(float64(verticalFOVRadians) * 0.5)
	h := float32(cosFov / sinFov)
	w := h / aspectRatio
	r := far / (far - near)
	return Mat4{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, r, 1,
		0, 0, -r * near, 0,
	}
}

// OrthographicLH builds a left-handed, Y-up orthographic matrix with a
// conventional (0-to-1) depth range, ported from orthographic_lh_yup_wgpu_dx.
func OrthographicLH(left, right, bottom, top, near, far float32) Mat4 {
	rml := right - left
	lmr := left - right
	lpr := left + right
	tmb := top - bottom
	bmt := bottom - top
	tpb := top + bottom
	fmn := far - near
	nmf := near - far
	return Mat4{
		2 / rml, 0, 0, 0,
		0, 2 / tmb, 0, 0,
		0, 0, 1 / fmn, 0,
		lpr / lmr, tpb / bmt, near / nmf, 1,
	}
}

// OrthographicReversedLH builds the reversed-depth (1-to-0) counterpart of
// OrthographicLH, ported from orthographic_reversed_lh_yup_wgpu_dx (which
// swaps near and far into the unreversed formula).
func OrthographicReversedLH(left, right, bottom, top, near, far float32) Mat4 {
	return OrthographicLH(left, right, bottom, top, far, near)
}
