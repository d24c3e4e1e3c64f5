package transvoxel

import (
	"math"
	"testing"

	"github.com/voxterra/voxterra/chunkgrid"
	"github.com/voxterra/voxterra/meshdata"
	"github.com/voxterra/voxterra/volume"
)

func uniformHires(tag volume.Tag) [4]*volume.SampleChunk {
	sc := volume.SampleChunk{Tag: tag}
	return [4]*volume.SampleChunk{&sc, &sc, &sc, &sc}
}

func TestExtractChunkUniformMatchingSignEmitsNothing(t *testing.T) {
	size, err := chunkgrid.NewSize(2)
	if err != nil {
		t.Fatal(err)
	}
	lores := volume.SampleChunk{Tag: volume.AllPositive}
	var mesh meshdata.Mesh
	ExtractChunk(meshdata.HiX, size,
		[4][3]uint32{{2, 0, 0}, {2, 2, 0}, {2, 0, 2}, {2, 2, 2}},
		uniformHires(volume.AllPositive), 1,
		[3]uint32{0, 0, 0}, &lores, 2,
		&mesh)
	if !mesh.IsEmpty() {
		t.Errorf("expected no seam triangles for matching uniform sign, got %d", len(mesh.Indices)/3)
	}
}

// TestExtractChunkSphereSeamStaysNearRadius exercises scenario S6: a sphere
// surface crossing the boundary between a low-res chunk and its four
// high-res neighbors should produce seam vertices close to the true radius,
// the same property interior extraction is held to.
func TestExtractChunkSphereSeamStaysNearRadius(t *testing.T) {
	size, err := chunkgrid.NewSize(2)
	if err != nil {
		t.Fatal(err)
	}
	sphere := volume.NewSphere(16)

	loresMin := [3]uint32{0, 0, 0}
	loresStep := uint32(2)
	lores := volume.SampleChunkAt(sphere, size, loresMin, loresStep)

	hiresStep := uint32(1)
	hiresMins := [4][3]uint32{
		{uint32(size.CellsPerRow()) * loresStep, 0, 0},
		{uint32(size.CellsPerRow()) * loresStep, uint32(size.CellsPerRow()) * hiresStep, 0},
		{uint32(size.CellsPerRow()) * loresStep, 0, uint32(size.CellsPerRow()) * hiresStep},
		{uint32(size.CellsPerRow()) * loresStep, uint32(size.CellsPerRow()) * hiresStep, uint32(size.CellsPerRow()) * hiresStep},
	}
	var hiresSamples [4]*volume.SampleChunk
	for i, min := range hiresMins {
		sc := volume.SampleChunkAt(sphere, size, min, hiresStep)
		hiresSamples[i] = &sc
	}

	var mesh meshdata.Mesh
	ExtractChunk(meshdata.HiX, size, hiresMins, hiresSamples, hiresStep, loresMin, &lores, loresStep, &mesh)

	if mesh.IsEmpty() {
		t.Skip("sphere does not cross this seam at the chosen chunk placement")
	}

	center := [3]float32{8, 8, 8}
	const radius = 8 // NewSphere(16)'s surface lies at 16/2 from its center
	for i, vert := range mesh.Vertices {
		dx := float64(vert.Position[0] - center[0])
		dy := float64(vert.Position[1] - center[1])
		dz := float64(vert.Position[2] - center[2])
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if math.Abs(dist-radius) > 2 {
			t.Errorf("vertex %d at %v: distance from center = %v, want within 2 of %v", i, vert.Position, dist, radius)
		}
	}
}

func TestExtractChunkProducesNoDegenerateTriangles(t *testing.T) {
	size, err := chunkgrid.NewSize(2)
	if err != nil {
		t.Fatal(err)
	}
	sphere := volume.NewSphere(16)
	loresMin := [3]uint32{0, 0, 0}
	loresStep := uint32(2)
	lores := volume.SampleChunkAt(sphere, size, loresMin, loresStep)

	hiresStep := uint32(1)
	base := uint32(size.CellsPerRow()) * loresStep
	side := uint32(size.CellsPerRow()) * hiresStep
	hiresMins := [4][3]uint32{
		{base, 0, 0}, {base, side, 0}, {base, 0, side}, {base, side, side},
	}
	var hiresSamples [4]*volume.SampleChunk
	for i, min := range hiresMins {
		sc := volume.SampleChunkAt(sphere, size, min, hiresStep)
		hiresSamples[i] = &sc
	}

	var mesh meshdata.Mesh
	ExtractChunk(meshdata.HiX, size, hiresMins, hiresSamples, hiresStep, loresMin, &lores, loresStep, &mesh)

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := mesh.Vertices[mesh.Indices[i]].Position
		b := mesh.Vertices[mesh.Indices[i+1]].Position
		c := mesh.Vertices[mesh.Indices[i+2]].Position
		if isDegenerate(a, b, c) {
			t.Errorf("triangle %d is degenerate: %v %v %v", i/3, a, b, c)
		}
	}
}
