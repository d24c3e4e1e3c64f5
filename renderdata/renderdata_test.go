package renderdata

import (
	"context"
	"testing"
	"time"

	"github.com/voxterra/voxterra/aabb"
	"github.com/voxterra/voxterra/octmap"
	"github.com/voxterra/voxterra/volume"
)

func waitForMeshedLeaf(t *testing.T, a *Assembler, om *octmap.Octmap, viewer [3]float64, timeout time.Duration) RenderData {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var rd RenderData
	for time.Now().Before(deadline) {
		var err error
		rd, err = a.Update(om, viewer, DebugHooks{}, nil)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if len(rd.Draws) > 0 {
			return rd
		}
		time.Sleep(time.Millisecond)
	}
	return rd
}

func TestAssemblerProducesDrawsWithoutGPU(t *testing.T) {
	cfg := octmap.Config{TotalSize: 256, LodFactor: 1.0, MaxLODLevel: 6, ChunkSize: 2, WorkerCount: 2}
	om, err := octmap.New(context.Background(), cfg, volume.NewSphere(64))
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	a := New()
	rd := waitForMeshedLeaf(t, a, om, [3]float64{0, 0, 0}, time.Second)

	if len(rd.Draws) == 0 {
		t.Fatal("expected at least one draw once a leaf meshes")
	}
	if len(rd.Vertices) == 0 || len(rd.Indices) == 0 {
		t.Fatal("expected non-empty vertex/index data alongside the draws")
	}
	for i, d := range rd.Draws {
		if d.IndexRange[1] <= d.IndexRange[0] {
			t.Errorf("draw %d has an empty index range %v", i, d.IndexRange)
		}
		if d.IndexRange[1] > uint32(len(rd.Indices)) {
			t.Errorf("draw %d index range %v exceeds index buffer length %d", i, d.IndexRange, len(rd.Indices))
		}
		for _, idx := range rd.Indices[d.IndexRange[0]:d.IndexRange[1]] {
			if uint32(idx)+d.BaseVertex >= uint32(len(rd.Vertices)) {
				t.Errorf("draw %d: index %d + base vertex %d out of range of %d vertices",
					i, idx, d.BaseVertex, len(rd.Vertices))
			}
		}
	}
	if rd.Model != (octmap.Transform{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}) {
		t.Errorf("Model = %v, want the identity transform", rd.Model)
	}
}

func TestAssemblerDebugHooksSeeEveryLeaf(t *testing.T) {
	cfg := octmap.Config{TotalSize: 64, LodFactor: 1.0, MaxLODLevel: 2, ChunkSize: 2, WorkerCount: 1}
	om, err := octmap.New(context.Background(), cfg, volume.NewSphere(32))
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	a := New()
	var boxes []aabb.AABB
	hooks := DebugHooks{DrawLeafBox: func(box aabb.AABB, empty bool) {
		boxes = append(boxes, box)
	}}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && len(boxes) == 0 {
		boxes = nil
		if _, err := a.Update(om, [3]float64{0, 0, 0}, hooks, nil); err != nil {
			t.Fatalf("Update: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	if len(boxes) == 0 {
		t.Fatal("expected DrawLeafBox to be called for at least one leaf")
	}
	// The leaves partition the root, so one call per leaf covers its volume.
	var covered uint64
	for _, b := range boxes {
		covered += uint64(b.Side) * uint64(b.Side) * uint64(b.Side)
	}
	if root := uint64(cfg.TotalSize); covered != root*root*root {
		t.Errorf("DrawLeafBox boxes cover volume %d, want the root's %d", covered, root*root*root)
	}
}
