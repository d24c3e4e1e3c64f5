package marching

import (
	"math"
	"testing"

	"github.com/voxterra/voxterra/chunkgrid"
	"github.com/voxterra/voxterra/meshdata"
	"github.com/voxterra/voxterra/volume"
)

func TestExtractChunkUniformSignProducesEmptyMesh(t *testing.T) {
	size, err := chunkgrid.NewSize(16)
	if err != nil {
		t.Fatal(err)
	}
	var mesh meshdata.Mesh
	for _, tag := range []volume.Tag{volume.AllZero, volume.AllPositive, volume.AllNegative} {
		mesh.Clear()
		ExtractChunk(size, [3]uint32{0, 0, 0}, 1, volume.SampleChunk{Tag: tag}, &mesh)
		if !mesh.IsEmpty() {
			t.Errorf("tag %v: expected empty mesh, got %d triangles", tag, len(mesh.Indices)/3)
		}
	}
}

// TestExtractChunkSphereProducesSurfaceNearRadius exercises scenario S1:
// NewSphere(16) sampled over a C=16 chunk starting at the origin with step 1
// should yield a non-empty mesh whose vertices sit close to the sphere's
// surface, which lies at distance 16/2 = 8 from its center (8,8,8).
func TestExtractChunkSphereProducesSurfaceNearRadius(t *testing.T) {
	size, err := chunkgrid.NewSize(16)
	if err != nil {
		t.Fatal(err)
	}
	sphere := volume.NewSphere(16)
	samples := volume.SampleChunkAt(sphere, size, [3]uint32{0, 0, 0}, 1)

	var mesh meshdata.Mesh
	ExtractChunk(size, [3]uint32{0, 0, 0}, 1, samples, &mesh)

	if mesh.IsEmpty() {
		t.Fatal("expected a non-empty mesh for a sphere crossing the chunk")
	}
	if len(mesh.Indices)%3 != 0 {
		t.Fatalf("index count %d not a multiple of 3", len(mesh.Indices))
	}

	center := [3]float32{8, 8, 8}
	const radius = 8
	for i, v := range mesh.Vertices {
		dx := float64(v.Position[0] - center[0])
		dy := float64(v.Position[1] - center[1])
		dz := float64(v.Position[2] - center[2])
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if math.Abs(dist-radius) > 0.5 {
			t.Errorf("vertex %d at %v: distance from center = %v, want within 0.5 of %v", i, v.Position, dist, radius)
		}
	}

	maxIndex := uint16(0)
	for _, idx := range mesh.Indices {
		if idx > maxIndex {
			maxIndex = idx
		}
	}
	if int(maxIndex) >= len(mesh.Vertices) {
		t.Fatalf("index %d out of range for %d vertices", maxIndex, len(mesh.Vertices))
	}
}

func TestExtractChunkReusesSharedEdgeVertices(t *testing.T) {
	size, err := chunkgrid.NewSize(16)
	if err != nil {
		t.Fatal(err)
	}
	sphere := volume.NewSphere(16)
	samples := volume.SampleChunkAt(sphere, size, [3]uint32{0, 0, 0}, 1)

	var mesh meshdata.Mesh
	ExtractChunk(size, [3]uint32{0, 0, 0}, 1, samples, &mesh)

	// A watertight single-surface extraction should produce far fewer unique
	// vertices than 3 per triangle if interior edges are shared.
	triangleCount := len(mesh.Indices) / 3
	if triangleCount == 0 {
		t.Fatal("expected triangles")
	}
	if len(mesh.Vertices) >= triangleCount*3 {
		t.Errorf("vertex count %d shows no sharing against %d triangles", len(mesh.Vertices), triangleCount)
	}
}

// TestExtractChunkAppliesWorldOffset confirms a chunk's min is added into
// every emitted vertex, so a leaf away from the origin tiles the world
// instead of re-emitting its geometry at [0, C*step).
func TestExtractChunkAppliesWorldOffset(t *testing.T) {
	size, err := chunkgrid.NewSize(16)
	if err != nil {
		t.Fatal(err)
	}
	// Volumes are sampled in world coordinates, so the sphere is sized for
	// its surface (radius 75 about (75,75,75)) to cross the chunk at min.
	sphere := volume.NewSphere(150)
	min := [3]uint32{128, 64, 32}
	samples := volume.SampleChunkAt(sphere, size, min, 1)

	var mesh meshdata.Mesh
	ExtractChunk(size, min, 1, samples, &mesh)
	if mesh.IsEmpty() {
		t.Fatal("expected a non-empty mesh for a sphere crossing the chunk")
	}

	center := [3]float32{75, 75, 75}
	const radius = 75
	for i, v := range mesh.Vertices {
		dx := float64(v.Position[0] - center[0])
		dy := float64(v.Position[1] - center[1])
		dz := float64(v.Position[2] - center[2])
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if math.Abs(dist-radius) > 0.5 {
			t.Errorf("vertex %d at %v: distance from offset center = %v, want within 0.5 of %v", i, v.Position, dist, radius)
		}
		if v.Position[0] < float32(min[0])-1 {
			t.Errorf("vertex %d at %v: x below chunk min %d, offset not applied", i, v.Position, min[0])
		}
	}
}
