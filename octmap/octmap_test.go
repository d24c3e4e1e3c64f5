package octmap

import (
	"context"
	"testing"
	"time"

	"github.com/voxterra/voxterra/volume"
)

func waitForLeaf(t *testing.T, o *Octmap, viewer [3]float64, timeout time.Duration) []LeafView {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var views []LeafView
	for time.Now().Before(deadline) {
		_, views = o.Update(viewer)
		time.Sleep(time.Millisecond)
	}
	return views
}

func leafArea(views []LeafView) uint64 {
	var total uint64
	for _, v := range views {
		total += uint64(v.Box.Side) * uint64(v.Box.Side) * uint64(v.Box.Side)
	}
	return total
}

func overlaps(a, b LeafView) bool {
	amax, bmax := a.Box.Max(), b.Box.Max()
	for i := 0; i < 3; i++ {
		if amax[i] <= b.Box.Min[i] || bmax[i] <= a.Box.Min[i] {
			return false
		}
	}
	return true
}

// TestUpdatePartitionsRootAABB exercises invariant 8: after any update, leaf
// AABBs partition the root AABB exactly — their volumes sum to the root's
// and no two overlap.
func TestUpdatePartitionsRootAABB(t *testing.T) {
	cfg := Config{TotalSize: 256, LodFactor: 1.0, MaxLODLevel: 6, ChunkSize: 2, WorkerCount: 2}
	o, err := New(context.Background(), cfg, volume.NewSphere(64))
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	views := waitForLeaf(t, o, [3]float64{0, 0, 0}, 200*time.Millisecond)
	if len(views) == 0 {
		t.Fatal("expected at least one leaf")
	}

	want := uint64(cfg.TotalSize) * uint64(cfg.TotalSize) * uint64(cfg.TotalSize)
	if got := leafArea(views); got != want {
		t.Errorf("leaf volumes sum to %d, want %d (root volume)", got, want)
	}

	for i := range views {
		for j := i + 1; j < len(views); j++ {
			if overlaps(views[i], views[j]) {
				t.Errorf("leaves %v and %v overlap", views[i].Box, views[j].Box)
			}
		}
	}
}

// TestUpdateMonotoneRefinement exercises invariant 9: a viewer closer to a
// region should not leave it coarser than a viewer farther from it would.
func TestUpdateMonotoneRefinement(t *testing.T) {
	cfg := Config{TotalSize: 256, LodFactor: 1.0, MaxLODLevel: 6, ChunkSize: 2, WorkerCount: 2}
	vol := volume.NewSphere(64)

	near, err := New(context.Background(), cfg, vol)
	if err != nil {
		t.Fatal(err)
	}
	defer near.Close()
	far, err := New(context.Background(), cfg, vol)
	if err != nil {
		t.Fatal(err)
	}
	defer far.Close()

	nearViews := waitForLeaf(t, near, [3]float64{0, 0, 0}, 200*time.Millisecond)
	farViews := waitForLeaf(t, far, [3]float64{1e6, 1e6, 1e6}, 200*time.Millisecond)

	minSide := func(views []LeafView) uint32 {
		m := ^uint32(0)
		for _, v := range views {
			if v.Box.Side < m {
				m = v.Box.Side
			}
		}
		return m
	}

	if minSide(nearViews) > minSide(farViews) {
		t.Errorf("viewer at origin refined to min side %d, coarser than the far viewer's %d",
			minSide(nearViews), minSide(farViews))
	}
}

// TestOctmapScenarioS4 exercises scenario S4: root 4096, C=16, lod_factor
// 1.0, viewer at the origin should yield at least 8 leaves, with every leaf
// side a valid power-of-two no larger than the root, and the leaf
// containing the origin refined down to the minimum side 2*C.
func TestOctmapScenarioS4(t *testing.T) {
	cfg := Config{TotalSize: 4096, LodFactor: 1.0, MaxLODLevel: 12, ChunkSize: 16, WorkerCount: 4}
	o, err := New(context.Background(), cfg, volume.NewSphere(1024))
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	views := waitForLeaf(t, o, [3]float64{0, 0, 0}, 500*time.Millisecond)
	if len(views) < 8 {
		t.Errorf("got %d leaves, want at least 8", len(views))
	}

	const minLeafSide = 2 * 16
	foundOriginLeaf := false
	for _, v := range views {
		if v.Box.Side > cfg.TotalSize || v.Box.Side < minLeafSide {
			t.Errorf("leaf side %d out of range [%d, %d]", v.Box.Side, minLeafSide, cfg.TotalSize)
		}
		if v.Box.Contains([3]uint32{0, 0, 0}) {
			foundOriginLeaf = true
			if v.Box.Side != minLeafSide {
				t.Errorf("leaf containing origin has side %d, want the minimum %d", v.Box.Side, minLeafSide)
			}
		}
	}
	if !foundOriginLeaf {
		t.Error("no leaf contains the origin")
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	base := Config{TotalSize: 256, LodFactor: 1.0, MaxLODLevel: 4, ChunkSize: 16, WorkerCount: 1}
	cases := []struct {
		name string
		mod  func(c Config) Config
	}{
		{"bad total size", func(c Config) Config { c.TotalSize = 3; return c }},
		{"bad chunk size", func(c Config) Config { c.ChunkSize = 5; return c }},
		{"zero lod factor", func(c Config) Config { c.LodFactor = 0; return c }},
		{"negative max level", func(c Config) Config { c.MaxLODLevel = -1; return c }},
		{"zero workers", func(c Config) Config { c.WorkerCount = 0; return c }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.mod(base).Validate(); err == nil {
				t.Error("expected a validation error, got nil")
			}
		})
	}
	if err := base.Validate(); err != nil {
		t.Errorf("base config should validate, got %v", err)
	}
}
