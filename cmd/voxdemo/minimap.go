package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/voxterra/voxterra/aabb"
)

// minimapSize is the logical pixel size of the top-down leaf view. Fixed
// rather than following window resize, matching EbitenOutput's own
// fixed-logical-size Layout.
const minimapSize = 512

// leafRect is a top-down (X/Z) projection of one leaf's box, captured by a
// DebugHooks.DrawLeafBox callback during an Assembler.Update call.
type leafRect struct {
	box   aabb.AABB
	empty bool
}

// minimapGame implements ebiten.Game. Its Draw method writes a raw RGBA
// frame buffer and blits it with Image.WritePixels, the same pattern
// EbitenOutput.Draw uses for the emulator's own framebuffer.
type minimapGame struct {
	rootSide float64
	frameBuf []byte
	image    *ebiten.Image
	leaves   []leafRect
	onFrame  func() (quit bool)
}

func newMinimapGame(rootSide uint32, onFrame func() (quit bool)) *minimapGame {
	return &minimapGame{
		rootSide: float64(rootSide),
		frameBuf: make([]byte, minimapSize*minimapSize*4),
		onFrame:  onFrame,
	}
}

// setLeaves replaces the leaf set the next Draw call will rasterize. Called
// by the main loop once per frame, after Assembler.Update, with the leaves
// its DebugHooks.DrawLeafBox callback collected during that call.
func (g *minimapGame) setLeaves(leaves []leafRect) {
	g.leaves = leaves
}

func (g *minimapGame) Update() error {
	if g.onFrame() {
		return ebiten.Termination
	}
	return nil
}

func (g *minimapGame) Draw(screen *ebiten.Image) {
	for i := 0; i < len(g.frameBuf); i += 4 {
		g.frameBuf[i], g.frameBuf[i+1], g.frameBuf[i+2], g.frameBuf[i+3] = 16, 16, 24, 255
	}
	scale := minimapSize / g.rootSide
	for _, leaf := range g.leaves {
		g.rasterizeLeaf(leaf, scale)
	}
	if g.image == nil {
		g.image = ebiten.NewImage(minimapSize, minimapSize)
	}
	g.image.WritePixels(g.frameBuf)
	screen.DrawImage(g.image, nil)
}

// rasterizeLeaf fills the projected top-down square for one leaf, outline
// only (so nested leaves of different depths stay visible), colored green
// for meshed leaves and dim gray for empty ones.
func (g *minimapGame) rasterizeLeaf(leaf leafRect, scale float64) {
	x0 := int(float64(leaf.box.Min[0]) * scale)
	z0 := int(float64(leaf.box.Min[2]) * scale)
	side := int(float64(leaf.box.Side) * scale)
	if side < 1 {
		side = 1
	}
	var r, gr, b byte
	if leaf.empty {
		r, gr, b = 60, 60, 60
	} else {
		r, gr, b = 40, 200, 120
	}
	for dx := 0; dx <= side; dx++ {
		g.plot(x0+dx, z0, r, gr, b)
		g.plot(x0+dx, z0+side, r, gr, b)
	}
	for dz := 0; dz <= side; dz++ {
		g.plot(x0, z0+dz, r, gr, b)
		g.plot(x0+side, z0+dz, r, gr, b)
	}
}

func (g *minimapGame) plot(x, z int, r, gr, b byte) {
	if x < 0 || z < 0 || x >= minimapSize || z >= minimapSize {
		return
	}
	i := (z*minimapSize + x) * 4
	g.frameBuf[i], g.frameBuf[i+1], g.frameBuf[i+2], g.frameBuf[i+3] = r, gr, b, 255
}

func (g *minimapGame) Layout(_, _ int) (int, int) {
	return minimapSize, minimapSize
}
