package octmap

import (
	"context"
	"fmt"

	"github.com/voxterra/voxterra/aabb"
	"github.com/voxterra/voxterra/marching"
	"github.com/voxterra/voxterra/meshdata"
	"github.com/voxterra/voxterra/transvoxel"
	"github.com/voxterra/voxterra/volume"
)

type jobKind int

const (
	sampleJob jobKind = iota
	extractJob
)

// jobKey identifies one job: a chunk (by its world-grid min corner and
// side) and which of the two job kinds it is. Submitting the same key twice
// is how a coarse leaf's transition job and a neighbouring leaf's own
// interior job end up sharing one Sample job for the same chunk.
type jobKey struct {
	Min  [3]uint32
	Side uint32
	Kind jobKind
}

type jobOutput struct {
	samples volume.SampleChunk
	mesh    meshdata.LeafMesh
}

type sampleInput struct {
	step uint32
}

type extractInput struct {
	step        uint32
	activeFaces []meshdata.TransitionSide
	faceDeps    map[meshdata.TransitionSide][4]jobKey
}

// handleJob is the jobqueue.Handler for both job kinds: a Sample job
// evaluates the volume over one chunk, an Extract job runs Marching Cubes
// over its own samples plus Transvoxel over each active transition face,
// using its dependencies' already-computed sample chunks.
func (o *Octmap) handleJob(ctx context.Context, key jobKey, deps map[jobKey]jobOutput, input any) (jobOutput, error) {
	switch key.Kind {
	case sampleJob:
		in := input.(sampleInput)
		return jobOutput{samples: volume.SampleChunkAt(o.vol, o.size, key.Min, in.step)}, nil

	case extractJob:
		in := input.(extractInput)
		ownKey := jobKey{Min: key.Min, Side: key.Side, Kind: sampleJob}
		own := deps[ownKey].samples

		var lm meshdata.LeafMesh
		marching.ExtractChunk(o.size, key.Min, in.step, own, &lm.Interior)

		for _, side := range in.activeFaces {
			quadKeys := in.faceDeps[side]
			var hiresSamples [4]*volume.SampleChunk
			var hiresMins [4][3]uint32
			for i, qk := range quadKeys {
				sc := deps[qk].samples
				hiresSamples[i] = &sc
				hiresMins[i] = qk.Min
			}
			hiresStep := quadKeys[0].Side / o.size.CellsPerRow()
			transvoxel.ExtractChunk(side, o.size, hiresMins, hiresSamples, hiresStep,
				key.Min, &own, in.step, &lm.Transitions[side])
		}
		return jobOutput{mesh: lm}, nil

	default:
		return jobOutput{}, fmt.Errorf("octmap: unknown job kind %d", key.Kind)
	}
}

// faceAxisPositive returns the axis a TransitionSide is perpendicular to
// and whether the neighbour across it sits in the positive direction.
func faceAxisPositive(side meshdata.TransitionSide) (axis int, positive bool) {
	switch side {
	case meshdata.LoX:
		return 0, false
	case meshdata.HiX:
		return 0, true
	case meshdata.LoY:
		return 1, false
	case meshdata.HiY:
		return 1, true
	case meshdata.LoZ:
		return 2, false
	case meshdata.HiZ:
		return 2, true
	}
	return 0, false
}

// computeTransitions decides which faces of leaf n currently border a
// finer neighbour (the REDESIGN neighbour-balance invariant guarantees at
// most one level finer) and, for each, the four quadrant chunks tiling
// that face at the finer resolution.
func (o *Octmap) computeTransitions(n *node) ([]meshdata.TransitionSide, map[meshdata.TransitionSide][4]jobKey) {
	faceDeps := map[meshdata.TransitionSide][4]jobKey{}
	var active []meshdata.TransitionSide

	for _, side := range meshdata.AllSides {
		axis, positive := faceAxisPositive(side)
		neighborBox, ok := n.box.AdjacentAcross(axis, positive)
		if !ok || !o.root.box.Contains(neighborBox.Min) {
			continue
		}
		neighborLeaf := o.findLeafContaining(o.root, neighborBox.Center())
		if neighborLeaf.box.Side >= n.box.Side {
			continue
		}

		quads := facingQuadrants(neighborBox, axis, positive)
		var keys [4]jobKey
		for i, q := range quads {
			keys[i] = jobKey{Min: q.Min, Side: q.Side, Kind: sampleJob}
		}
		faceDeps[side] = keys
		active = append(active, side)
	}
	return active, faceDeps
}

// facingQuadrants returns the four half-side octants of box that lie along
// the face nearest the node box was found adjacent to (the face crossed by
// AdjacentAcross(axis, positive) on the other side), in the same
// (uHigh + 2*vHigh) quadrant order transvoxel.ExtractChunk expects.
func facingQuadrants(box aabb.AABB, axis int, positive bool) [4]aabb.AABB {
	half := box.Side / 2
	var u, v int
	switch axis {
	case 0:
		u, v = 1, 2
	case 1:
		u, v = 0, 2
	default:
		u, v = 0, 1
	}
	axisOffset := uint32(0)
	if !positive {
		axisOffset = half
	}

	var result [4]aabb.AABB
	for idx := 0; idx < 4; idx++ {
		uHigh := idx&1 != 0
		vHigh := idx&2 != 0
		min := box.Min
		min[axis] += axisOffset
		if uHigh {
			min[u] += half
		}
		if vHigh {
			min[v] += half
		}
		result[idx] = aabb.AABB{Min: min, Side: half}
	}
	return result
}
