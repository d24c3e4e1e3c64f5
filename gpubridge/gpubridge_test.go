package gpubridge

import (
	"testing"

	"github.com/voxterra/voxterra/meshdata"
)

func TestVertexBytesLayout(t *testing.T) {
	verts := []meshdata.Vertex{{Position: [3]float32{1, 2, 3}}, {Position: [3]float32{4, 5, 6}}}
	b := vertexBytes(verts)
	if len(b) != 2*12 {
		t.Fatalf("got %d bytes, want %d (2 vertices * 12 bytes)", len(b), 2*12)
	}
	if vertexBytes(nil) != nil {
		t.Error("vertexBytes(nil) should return nil, not a zero-length non-nil slice")
	}
}

func TestIndexBytesLayout(t *testing.T) {
	idx := []uint16{0, 1, 2, 3}
	b := indexBytes(idx)
	if len(b) != len(idx)*2 {
		t.Fatalf("got %d bytes, want %d", len(b), len(idx)*2)
	}
	if indexBytes(nil) != nil {
		t.Error("indexBytes(nil) should return nil")
	}
}

// TestUploadMeshOnRealDevice exercises UploadMesh against an actual Vulkan
// device when one is available; it skips otherwise since CI and developer
// boxes without a GPU cannot run it.
func TestUploadMeshOnRealDevice(t *testing.T) {
	dev, err := NewDevice()
	if err != nil {
		t.Skipf("no Vulkan device available: %v", err)
	}
	defer dev.Close()

	verts := []meshdata.Vertex{{Position: [3]float32{0, 0, 0}}, {Position: [3]float32{1, 0, 0}}, {Position: [3]float32{0, 1, 0}}}
	idx := []uint16{0, 1, 2}

	vb, ib, err := UploadMesh(dev, verts, idx)
	if err != nil {
		t.Fatalf("UploadMesh: %v", err)
	}
	defer vb.Release(dev)
	defer ib.Release(dev)

	if vb.Count != uint32(len(verts)) {
		t.Errorf("vertex buffer count = %d, want %d", vb.Count, len(verts))
	}
	if ib.Count != uint32(len(idx)) {
		t.Errorf("index buffer count = %d, want %d", ib.Count, len(idx))
	}
}

func TestUploadMeshEmpty(t *testing.T) {
	dev, err := NewDevice()
	if err != nil {
		t.Skipf("no Vulkan device available: %v", err)
	}
	defer dev.Close()

	vb, ib, err := UploadMesh(dev, nil, nil)
	if err != nil {
		t.Fatalf("UploadMesh with no geometry should succeed, got %v", err)
	}
	defer vb.Release(dev)
	defer ib.Release(dev)

	if vb.Count != 0 || ib.Count != 0 {
		t.Errorf("expected empty buffers, got vertex count %d, index count %d", vb.Count, ib.Count)
	}
}
