package aabb

import (
	"errors"
	"math"
	"testing"
)

func TestNewRejectsInvalidSize(t *testing.T) {
	for _, size := range []uint32{0, 1, 3, 5, 17} {
		if _, err := New(size); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("New(%d): expected ErrInvalidSize, got %v", size, err)
		}
	}
	for _, size := range []uint32{2, 4, 16, 4096} {
		if _, err := New(size); err != nil {
			t.Errorf("New(%d): unexpected error %v", size, err)
		}
	}
}

func TestSubdivideIsDisjointAndCovers(t *testing.T) {
	root, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	octants := root.Subdivide()
	seen := map[[3]uint32]bool{}
	for _, o := range octants {
		if o.Side != root.Side/2 {
			t.Fatalf("octant side = %d, want %d", o.Side, root.Side/2)
		}
		if seen[o.Min] {
			t.Fatalf("duplicate octant min %v", o.Min)
		}
		seen[o.Min] = true
		max := o.Max()
		for i := 0; i < 3; i++ {
			if o.Min[i] < root.Min[i] || max[i] > root.Max()[i] {
				t.Fatalf("octant %v exceeds parent bounds", o)
			}
		}
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 distinct octants, got %d", len(seen))
	}
	// Union covers every point of the root (sampled densely since root is small).
	for x := uint32(0); x < root.Side; x++ {
		for y := uint32(0); y < root.Side; y++ {
			for z := uint32(0); z < root.Side; z++ {
				p := [3]uint32{x, y, z}
				covered := false
				for _, o := range octants {
					if o.Contains(p) {
						covered = true
						break
					}
				}
				if !covered {
					t.Fatalf("point %v not covered by any octant", p)
				}
			}
		}
	}
}

func TestDistanceFromKnownPoints(t *testing.T) {
	box, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	if got := box.DistanceFrom([3]float64{10, 0, 0}); math.Abs(got-6.0) > 1e-9 {
		t.Errorf("DistanceFrom(10,0,0) = %v, want 6.0", got)
	}
	if got := box.DistanceFrom([3]float64{2, 2, 2}); math.Abs(got-0.0) > 1e-9 {
		t.Errorf("DistanceFrom(2,2,2) = %v, want 0.0", got)
	}
}

func TestStep(t *testing.T) {
	box, err := New(4096)
	if err != nil {
		t.Fatal(err)
	}
	if got := box.Step(16); got != 256 {
		t.Errorf("Step(16) = %d, want 256", got)
	}
}

func TestAdjacentAcrossBoundary(t *testing.T) {
	box := AABB{Min: [3]uint32{0, 0, 0}, Side: 16}
	if _, ok := box.AdjacentAcross(0, false); ok {
		t.Errorf("expected no neighbour across -X at world origin")
	}
	n, ok := box.AdjacentAcross(0, true)
	if !ok || n.Min != [3]uint32{16, 0, 0} || n.Side != 16 {
		t.Errorf("AdjacentAcross(+X) = %v, %v", n, ok)
	}
}
