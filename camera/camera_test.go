package camera

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestMulIdentity(t *testing.T) {
	m := LookAtLH(Vec3{1, 2, 3}, Vec3{0, 0, 0}, Vec3{0, 1, 0})
	got := Mul(Identity, m)
	for i := range got {
		if !almostEqual(got[i], m[i], 1e-6) {
			t.Fatalf("Mul(Identity, m)[%d] = %v, want %v", i, got[i], m[i])
		}
	}
}

func TestLookAtLHOrthonormalBasis(t *testing.T) {
	m := LookAtLH(Vec3{5, 0, 0}, Vec3{0, 0, 0}, Vec3{0, 1, 0})
	xAxis := Vec3{m.at(0, 0), m.at(0, 1), m.at(0, 2)}
	yAxis := Vec3{m.at(1, 0), m.at(1, 1), m.at(1, 2)}
	zAxis := Vec3{m.at(2, 0), m.at(2, 1), m.at(2, 2)}

	for name, v := range map[string]Vec3{"x": xAxis, "y": yAxis, "z": zAxis} {
		if mag := dotVec3(v, v); !almostEqual(mag, 1, 1e-4) {
			t.Errorf("%s axis not unit length: |%s|^2 = %v", name, name, mag)
		}
	}
	if d := dotVec3(xAxis, yAxis); !almostEqual(d, 0, 1e-4) {
		t.Errorf("x.y = %v, want ~0", d)
	}
	if d := dotVec3(xAxis, zAxis); !almostEqual(d, 0, 1e-4) {
		t.Errorf("x.z = %v, want ~0", d)
	}
	if d := dotVec3(yAxis, zAxis); !almostEqual(d, 0, 1e-4) {
		t.Errorf("y.z = %v, want ~0", d)
	}
}

// TestPerspectiveInfiniteReversedDepthRange checks the reverse-Z contract:
// a point at the near plane maps to clip-space depth 1 (after the
// perspective divide), and depth decreases with distance, approaching 0.
func TestPerspectiveInfiniteReversedDepthRange(t *testing.T) {
	near := float32(0.1)
	proj := PerspectiveInfiniteReversedLH(float32(math.Pi)/2, 1.0, near)

	clipZAt := func(viewZ float32) float32 {
		// view-space point on the axis: (0, 0, viewZ, 1).
		z := proj.at(2, 2)*viewZ + proj.at(2, 3)
		w := proj.at(3, 2)*viewZ + proj.at(3, 3)
		return z / w
	}

	depthAtNear := clipZAt(near)
	if !almostEqual(depthAtNear, 1, 1e-4) {
		t.Errorf("depth at near plane = %v, want 1 (reverse-Z)", depthAtNear)
	}
	depthFar := clipZAt(near * 1e6)
	if depthFar >= depthAtNear {
		t.Errorf("depth at a far distance (%v) should be less than at near (%v)", depthFar, depthAtNear)
	}
	if depthFar < 0 {
		t.Errorf("depth should approach 0, not go negative: got %v", depthFar)
	}
}

func TestOrthographicReversedSwapsNearFar(t *testing.T) {
	unreversed := OrthographicLH(-1, 1, -1, 1, 0.5, 100)
	reversed := OrthographicReversedLH(-1, 1, -1, 1, 0.5, 100)
	wantReversed := OrthographicLH(-1, 1, -1, 1, 100, 0.5)
	for i := range reversed {
		if !almostEqual(reversed[i], wantReversed[i], 1e-6) {
			t.Fatalf("OrthographicReversedLH[%d] = %v, want %v", i, reversed[i], wantReversed[i])
		}
	}
	if reversed == unreversed {
		t.Error("reversed and unreversed orthographic matrices should differ")
	}
}

func TestArcballPositionStaysAtDistance(t *testing.T) {
	a := Arcball{Target: Vec3{1, 2, 3}, Distance: 10, YawRadians: 0.7, PitchRadians: 0.3}
	p := a.Position()
	offset := subVec3(p, a.Target)
	mag := float32(math.Sqrt(float64(dotVec3(offset, offset))))
	if !almostEqual(mag, 10, 1e-3) {
		t.Errorf("|position - target| = %v, want 10", mag)
	}
}

func TestArcballZoomClampsAtMinDistance(t *testing.T) {
	a := Arcball{Distance: 5, MinDistance: 2}
	a.Zoom(10)
	if a.Distance != 2 {
		t.Errorf("Distance = %v, want clamped to MinDistance 2", a.Distance)
	}
}

func TestArcballOrbitClampsPitch(t *testing.T) {
	a := Arcball{}
	a.Orbit(0, 100)
	if a.PitchRadians > maxPitchRadians {
		t.Errorf("PitchRadians = %v, want <= %v", a.PitchRadians, maxPitchRadians)
	}
	a.Orbit(0, -200)
	if a.PitchRadians < -maxPitchRadians {
		t.Errorf("PitchRadians = %v, want >= %v", a.PitchRadians, -maxPitchRadians)
	}
}

func TestCameraUniformPositionMatchesArcball(t *testing.T) {
	cam := &Camera{
		Arcball:    Arcball{Target: Vec3{0, 0, 0}, Distance: 4, YawRadians: 0.2, PitchRadians: 0.1},
		Projection: Projection{VerticalFOVRadians: float32(math.Pi) / 3, AspectRatio: 16.0 / 9.0, Near: 0.1},
	}
	u := NewCameraUniform(cam)
	want := cam.Arcball.Position()
	for i := 0; i < 3; i++ {
		if !almostEqual(u.Position[i], want[i], 1e-6) {
			t.Errorf("Position[%d] = %v, want %v", i, u.Position[i], want[i])
		}
	}
	if u.Position[3] != 1 {
		t.Errorf("Position.w = %v, want 1", u.Position[3])
	}
}
