// Package renderdata flattens an octmap update's currently meshed leaves
// into one vertex buffer, one index buffer, and a per-sub-mesh draw list,
// optionally uploading them to a GPU device. Grounded on
// original_source/core/voxel/src/lod/render.rs's copy_chunk_vertices: each
// non-empty sub-mesh keeps its own chunk-local indices and records where its
// vertices start, rather than rewriting indices to a global offset.
package renderdata

import (
	"github.com/voxterra/voxterra/aabb"
	"github.com/voxterra/voxterra/gpubridge"
	"github.com/voxterra/voxterra/meshdata"
	"github.com/voxterra/voxterra/octmap"
)

// Draw is one indexed draw call: a contiguous index range plus the vertex
// index its own mesh's indices are relative to (vkCmdDrawIndexed's
// vertexOffset, or glDrawElementsBaseVertex's basevertex).
type Draw struct {
	IndexRange [2]uint32
	BaseVertex uint32
}

// DebugHooks lets a caller observe the octree shape the assembler walked,
// without the core depending on any particular debug overlay.
type DebugHooks struct {
	// IncludeTransitions controls whether transition-face meshes are
	// concatenated alongside each leaf's interior mesh.
	IncludeTransitions bool
	// DrawLeafBox, if set, is called once per leaf with its box and whether
	// it is empty (not yet meshed, or meshed with no geometry).
	DrawLeafBox func(box aabb.AABB, empty bool)
}

// RenderData is one frame's worth of GPU-ready geometry.
type RenderData struct {
	Vertices []meshdata.Vertex
	Indices  []uint16
	Draws    []Draw
	Model    octmap.Transform

	VertexBuffer gpubridge.VertexBuffer
	IndexBuffer  gpubridge.IndexBuffer
}

// Assembler owns the scratch buffers Update reuses frame to frame.
type Assembler struct {
	vertices []meshdata.Vertex
	indices  []uint16
	draws    []Draw
}

// New returns an empty Assembler.
func New() *Assembler {
	return &Assembler{}
}

// Update drives om.Update(viewer), concatenates every currently meshed
// leaf's sub-meshes (applying hooks' inclusion/debug policy), and uploads
// the result to dev. dev may be nil, in which case RenderData's buffers are
// left zero-valued and only the CPU-side slices are populated — useful for
// tests and for any caller that assembles geometry without a live GPU
// collaborator.
func (a *Assembler) Update(om *octmap.Octmap, viewer [3]float64, hooks DebugHooks, dev *gpubridge.Device) (RenderData, error) {
	a.vertices = a.vertices[:0]
	a.indices = a.indices[:0]
	a.draws = a.draws[:0]

	model, leaves := om.Update(viewer)

	for _, leaf := range leaves {
		empty := !leaf.Filled || leaf.Mesh.IsEmpty()
		if leaf.Filled {
			a.appendMesh(&leaf.Mesh.Interior)
			if hooks.IncludeTransitions {
				for i := range leaf.Mesh.Transitions {
					a.appendMesh(&leaf.Mesh.Transitions[i])
				}
			}
		}
		if hooks.DrawLeafBox != nil {
			hooks.DrawLeafBox(leaf.Box, empty)
		}
	}

	rd := RenderData{
		Vertices: a.vertices,
		Indices:  a.indices,
		Draws:    a.draws,
		Model:    model,
	}
	if dev == nil {
		return rd, nil
	}

	vb, ib, err := gpubridge.UploadMesh(dev, a.vertices, a.indices)
	if err != nil {
		return RenderData{}, err
	}
	rd.VertexBuffer = vb
	rd.IndexBuffer = ib
	return rd, nil
}

// appendMesh concatenates one non-empty sub-mesh's vertices and (unmodified,
// chunk-local) indices, recording a Draw with the vertex offset it starts
// at.
func (a *Assembler) appendMesh(m *meshdata.Mesh) {
	if m.IsEmpty() {
		return
	}
	vertexOffset := uint32(len(a.vertices))
	indexOffset := uint32(len(a.indices))

	a.vertices = append(a.vertices, m.Vertices...)
	a.indices = append(a.indices, m.Indices...)

	a.draws = append(a.draws, Draw{
		IndexRange: [2]uint32{indexOffset, indexOffset + uint32(len(m.Indices))},
		BaseVertex: vertexOffset,
	})
}
