package camera

import "math"

const maxPitchRadians = 1.5532 // just under 90 degrees, avoids the look-up-vector singularity

// Arcball orbits a target point at a fixed distance, driven by yaw/pitch
// deltas and a zoom delta. The source's CameraData names this controller
// (state.controller.arcball.distance in
// original_source/graphics/src/bin/marching_cubes/main.rs) but the orbit math
// itself is hand-written: no arcball.rs was retrieved alongside it.
type Arcball struct {
	Target       Vec3
	Distance     float32
	YawRadians   float32
	PitchRadians float32
	MinDistance  float32
}

// Orbit adds dYaw/dPitch (radians) to the controller's orientation, clamping
// pitch away from the poles.
func (a *Arcball) Orbit(dYaw, dPitch float32) {
	a.YawRadians += dYaw
	pitch := a.PitchRadians + dPitch
	switch {
	case pitch > maxPitchRadians:
		pitch = maxPitchRadians
	case pitch < -maxPitchRadians:
		pitch = -maxPitchRadians
	}
	a.PitchRadians = pitch
}

// Zoom adjusts the orbit distance, clamped at MinDistance (treated as 0 if
// unset).
func (a *Arcball) Zoom(delta float32) {
	a.Distance -= delta
	if a.Distance < a.MinDistance {
		a.Distance = a.MinDistance
	}
}

// Position returns the camera's world position on the orbit sphere around
// Target.
func (a *Arcball) Position() Vec3 {
	sinYaw, cosYaw := math.Sincos(float64(a.YawRadians))
	sinPitch, cosPitch := math.Sincos(float64(a.PitchRadians))
	return Vec3{
		a.Target[0] + a.Distance*float32(cosPitch*sinYaw),
		a.Target[1] + a.Distance*float32(sinPitch),
		a.Target[2] - a.Distance*float32(cosPitch*cosYaw),
	}
}

// ViewMatrix returns the left-handed view matrix looking from Position
// toward Target.
func (a *Arcball) ViewMatrix() Mat4 {
	return LookAtLH(a.Position(), a.Target, Vec3{0, 1, 0})
}

// Projection is a left-handed, Y-up, infinite-far, reverse-Z perspective —
// voxterra's default per SPEC_FULL.md's camera-math design note.
type Projection struct {
	VerticalFOVRadians float32
	AspectRatio        float32
	Near               float32
}

// Matrix returns the projection matrix.
func (p Projection) Matrix() Mat4 {
	return PerspectiveInfiniteReversedLH(p.VerticalFOVRadians, p.AspectRatio, p.Near)
}

// Camera combines an orbiting Arcball with a Projection into the single
// view-projection matrix the uniform structs need.
type Camera struct {
	Arcball    Arcball
	Projection Projection
}

// ViewProjection returns Projection.Matrix() * Arcball.ViewMatrix().
func (c *Camera) ViewProjection() Mat4 {
	return Mul(c.Projection.Matrix(), c.Arcball.ViewMatrix())
}
