// Package octmap drives a sparse octree of LOD chunks from a viewer
// position: nodes split toward the viewer and merge away from it, each
// leaf's interior and transition meshes are produced by job-queue jobs, and
// Update reports the currently meshed leaves for the render-data assembler.
package octmap

import (
	"context"
	"errors"
	"fmt"

	"github.com/voxterra/voxterra/aabb"
	"github.com/voxterra/voxterra/chunkgrid"
	"github.com/voxterra/voxterra/jobqueue"
	"github.com/voxterra/voxterra/meshdata"
	"github.com/voxterra/voxterra/volume"
)

// Config is the octmap's construction-time configuration, a plain struct
// rather than a config-file format per the spec's Non-goals.
type Config struct {
	TotalSize   uint32
	LodFactor   float64
	MaxLODLevel int
	ChunkSize   uint32
	WorkerCount int
}

// Validate reports whether c describes a usable octmap.
func (c Config) Validate() error {
	if _, err := aabb.New(c.TotalSize); err != nil {
		return fmt.Errorf("octmap: %w", err)
	}
	if _, err := chunkgrid.NewSize(c.ChunkSize); err != nil {
		return fmt.Errorf("octmap: %w", err)
	}
	if c.LodFactor <= 0 {
		return errors.New("octmap: LodFactor must be positive")
	}
	if c.MaxLODLevel < 0 {
		return errors.New("octmap: MaxLODLevel must be non-negative")
	}
	if c.WorkerCount < 1 {
		return errors.New("octmap: WorkerCount must be at least 1")
	}
	return nil
}

type nodeStatus int

const (
	statusPending nodeStatus = iota
	statusMeshed
)

// node is one octree node. Internal nodes have non-nil children and carry
// no mesh; leaves have nil children and own a cached LeafMesh once Meshed.
type node struct {
	box      aabb.AABB
	level    int
	children *[8]*node
	status   nodeStatus
	mesh     meshdata.LeafMesh
}

// Transform is a column-major 4x4 matrix, laid out the same way as
// camera.ModelUniform's model field. The octmap never repositions the
// world — volumes are sampled directly in world-grid coordinates — so
// Update always returns the identity transform; the return value exists so
// callers have a single place to forward a future instance transform from,
// matching the §4.6 contract's model_transform result.
type Transform [16]float32

var identityTransform = Transform{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// LeafView is one entry of Update's result: a leaf's bounding box and its
// current mesh, which may not be populated yet (Filled == false).
type LeafView struct {
	Box    aabb.AABB
	Mesh   *meshdata.LeafMesh
	Filled bool
}

// Octmap is the LOD octree. It is single-threaded: only the goroutine that
// calls Update, Clear, or Close may touch it; the job queue it owns is the
// only internally-synchronized part of the system.
type Octmap struct {
	cfg    Config
	vol    volume.Volume
	size   chunkgrid.Size
	root   *node
	leaves map[aabb.AABB]*node
	queue  *jobqueue.Queue[jobKey, jobOutput]
}

// New validates cfg and starts an Octmap sampling vol. The returned Octmap
// owns a job queue; call Close when done with it.
func New(ctx context.Context, cfg Config, vol volume.Volume) (*Octmap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	size, err := chunkgrid.NewSize(cfg.ChunkSize)
	if err != nil {
		return nil, err
	}
	rootBox, err := aabb.New(cfg.TotalSize)
	if err != nil {
		return nil, err
	}
	o := &Octmap{
		cfg:    cfg,
		vol:    vol,
		size:   size,
		root:   &node{box: rootBox},
		leaves: map[aabb.AABB]*node{},
	}
	o.queue = jobqueue.New(ctx, cfg.WorkerCount, o.handleJob)
	return o, nil
}

// Close shuts down the octmap's job queue.
func (o *Octmap) Close() {
	o.queue.Close()
}

// Clear drops every leaf and in-flight job; the root becomes Pending and
// the next Update rebuilds the tree from scratch.
func (o *Octmap) Clear() {
	o.collapseSubtree(o.root)
	o.root.status = statusPending
	o.root.mesh = meshdata.LeafMesh{}
}

// Update evaluates the split/merge rule from the viewer position, submits
// sample/extract jobs for newly (re)created leaves, applies any extract
// results that completed since the previous call, and reports every leaf
// currently in the tree.
func (o *Octmap) Update(viewer [3]float64) (Transform, []LeafView) {
	o.applyCompletions()
	o.updateNode(o.root, viewer)

	var views []LeafView
	o.collectLeaves(o.root, &views)
	return identityTransform, views
}

func (o *Octmap) applyCompletions() {
	for _, entry := range o.queue.Drain() {
		if entry.Key.Kind != extractJob {
			continue
		}
		n, ok := o.leaves[aabb.AABB{Min: entry.Key.Min, Side: entry.Key.Side}]
		if !ok {
			continue // leaf no longer exists: stale result, discarded per spec §5.
		}
		if entry.Err != nil {
			continue // leaf stays Pending; retried on the next Update per spec §4.6 propagation policy.
		}
		n.mesh = entry.Output.mesh
		n.status = statusMeshed
	}
}

// shouldSplit is the distance-threshold LOD rule from spec §4.6.
func (o *Octmap) shouldSplit(box aabb.AABB, viewer [3]float64) bool {
	if box.Side <= 2*o.size.CellsPerRow() {
		return false
	}
	return box.DistanceFrom(viewer) < o.cfg.LodFactor*float64(box.Side)
}

func (o *Octmap) updateNode(n *node, viewer [3]float64) {
	if n.children != nil {
		if o.shouldSplit(n.box, viewer) {
			for _, c := range n.children {
				o.updateNode(c, viewer)
			}
			return
		}
		if o.mergeWouldUnbalance(n) {
			for _, c := range n.children {
				o.updateNode(c, viewer)
			}
			return
		}
		o.merge(n)
		// n is now a fresh leaf; fall through to submit its jobs below.
	} else if n.level < o.cfg.MaxLODLevel && o.shouldSplit(n.box, viewer) && !o.splitWouldUnbalance(n) {
		o.split(n, viewer)
		return
	}
	o.ensureSubmitted(n)
}

func (o *Octmap) split(n *node, viewer [3]float64) {
	o.removeJobs(n)
	delete(o.leaves, n.box)

	octants := n.box.Subdivide()
	children := &[8]*node{}
	for i, oct := range octants {
		children[i] = &node{box: oct, level: n.level + 1}
	}
	n.children = children
	n.status = statusPending
	n.mesh = meshdata.LeafMesh{}

	for _, c := range children {
		o.updateNode(c, viewer)
	}
}

func (o *Octmap) merge(n *node) {
	for _, c := range n.children {
		o.collapseSubtree(c)
	}
	n.children = nil
	n.status = statusPending
	n.mesh = meshdata.LeafMesh{}
}

// collapseSubtree removes jobs (and the leaf registry entry) for every leaf
// under n, recursively, and detaches n's own children.
func (o *Octmap) collapseSubtree(n *node) {
	if n.children == nil {
		o.removeJobs(n)
		delete(o.leaves, n.box)
		return
	}
	for _, c := range n.children {
		o.collapseSubtree(c)
	}
	n.children = nil
}

func (o *Octmap) removeJobs(n *node) {
	o.queue.Remove(jobKey{Min: n.box.Min, Side: n.box.Side, Kind: sampleJob})
	o.queue.Remove(jobKey{Min: n.box.Min, Side: n.box.Side, Kind: extractJob})
}

func (o *Octmap) ensureSubmitted(n *node) {
	o.leaves[n.box] = n
	if n.status == statusMeshed {
		return
	}

	step := n.box.Step(o.size.CellsPerRow())
	sampleKey := jobKey{Min: n.box.Min, Side: n.box.Side, Kind: sampleJob}
	o.queue.Submit(sampleKey, nil, sampleInput{step: step})

	activeFaces, faceDeps := o.computeTransitions(n)
	deps := make([]jobKey, 0, 1+4*len(activeFaces))
	deps = append(deps, sampleKey)
	for _, side := range activeFaces {
		quads := faceDeps[side]
		for _, qk := range quads {
			deps = append(deps, qk)
			o.queue.Submit(qk, nil, sampleInput{step: qk.Side / o.size.CellsPerRow()})
		}
	}

	extractKey := jobKey{Min: n.box.Min, Side: n.box.Side, Kind: extractJob}
	o.queue.Submit(extractKey, deps, extractInput{
		step:        step,
		activeFaces: activeFaces,
		faceDeps:    faceDeps,
	})
}

// findLeafContaining walks from n to the leaf whose box contains point. n's
// own box must already contain point.
func (o *Octmap) findLeafContaining(n *node, point [3]uint32) *node {
	for n.children != nil {
		found := false
		for _, c := range n.children {
			if c.box.Contains(point) {
				n = c
				found = true
				break
			}
		}
		if !found {
			return n
		}
	}
	return n
}

// splitWouldUnbalance reports whether splitting leaf n (into children of
// half its side) would put it more than one LOD level finer than a
// same-position neighbour across any face — the REDESIGN neighbour-balance
// policy from SPEC_FULL.md §4.6.
func (o *Octmap) splitWouldUnbalance(n *node) bool {
	for _, side := range meshdata.AllSides {
		neighborLeaf, ok := o.neighborLeaf(n.box, side)
		if !ok {
			continue
		}
		if neighborLeaf.box.Side > n.box.Side {
			return true
		}
	}
	return false
}

// mergeWouldUnbalance reports whether collapsing internal node n into a
// leaf of its own side would leave it more than one level coarser than a
// neighbour that is still split finer than that.
func (o *Octmap) mergeWouldUnbalance(n *node) bool {
	for _, side := range meshdata.AllSides {
		neighborLeaf, ok := o.neighborLeaf(n.box, side)
		if !ok {
			continue
		}
		if neighborLeaf.box.Side < n.box.Side/2 {
			return true
		}
	}
	return false
}

// neighborLeaf finds the leaf currently occupying the same-size cube
// directly across the given face of box, or false if that face is a world
// boundary.
func (o *Octmap) neighborLeaf(box aabb.AABB, side meshdata.TransitionSide) (*node, bool) {
	axis, positive := faceAxisPositive(side)
	neighborBox, ok := box.AdjacentAcross(axis, positive)
	if !ok || !o.root.box.Contains(neighborBox.Min) {
		return nil, false
	}
	return o.findLeafContaining(o.root, neighborBox.Center()), true
}

func (o *Octmap) collectLeaves(n *node, out *[]LeafView) {
	if n.children == nil {
		*out = append(*out, LeafView{Box: n.box, Mesh: &n.mesh, Filled: n.status == statusMeshed})
		return
	}
	for _, c := range n.children {
		o.collectLeaves(c, out)
	}
}
