// Command voxdemo drives a live octmap against a scriptable or built-in
// volume, uploads the assembled geometry to a Vulkan device when one is
// available, and renders a top-down leaf-coverage minimap with ebiten while
// an orbiting arcball camera is steered from the keyboard. Status and
// triangle counts are printed to a raw-mode terminal line; 'c' copies the
// current frame's stats to the system clipboard.
//
// Grounded on video_backend_ebiten.go (window setup, Draw/Layout shape) and
// terminal_host.go (raw stdin handling), both part of the copied teacher
// tree, wired here to drive renderdata.Assembler.Update once per frame
// instead of an emulator's video output.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"

	"github.com/voxterra/voxterra/aabb"
	"github.com/voxterra/voxterra/camera"
	"github.com/voxterra/voxterra/gpubridge"
	"github.com/voxterra/voxterra/octmap"
	"github.com/voxterra/voxterra/renderdata"
	"github.com/voxterra/voxterra/volume"
	"github.com/voxterra/voxterra/volume/luavolume"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "voxdemo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	script := flag.String("script", "", "path to a Lua volume script defining sample(x, y, z); built-in sphere if empty")
	size := flag.Uint("size", 256, "root octmap cube side, a power of two")
	chunkSize := flag.Uint("chunk", 16, "per-leaf chunk resolution")
	lodFactor := flag.Float64("lod", 1.0, "LOD distance factor")
	maxLevel := flag.Int("maxlevel", 8, "maximum octree depth")
	workers := flag.Int("workers", 4, "job queue worker count")
	radius := flag.Float64("radius", 0, "Radius parameter of the built-in sphere volume (its surface lies at half this distance from its center); defaults to size")
	flag.Parse()

	vol, closeVol, err := buildVolume(*script, uint32(*size), float32(*radius))
	if err != nil {
		return err
	}
	defer closeVol()

	cfg := octmap.Config{
		TotalSize:   uint32(*size),
		LodFactor:   *lodFactor,
		MaxLODLevel: *maxLevel,
		ChunkSize:   uint32(*chunkSize),
		WorkerCount: *workers,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	om, err := octmap.New(ctx, cfg, vol)
	if err != nil {
		return fmt.Errorf("building octmap: %w", err)
	}
	defer om.Close()

	dev, err := gpubridge.NewDevice()
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxdemo: no Vulkan device available (%v); rendering without GPU upload\n", err)
		dev = nil
	} else {
		defer dev.Close()
	}

	clipboardOK := clipboard.Init() == nil

	keys := newKeyHost()
	keys.Start()
	defer keys.Stop()

	center := float32(cfg.TotalSize) / 2
	cam := &camera.Camera{
		Arcball: camera.Arcball{
			Target:       camera.Vec3{center, center, center},
			Distance:     float32(cfg.TotalSize),
			YawRadians:   0.6,
			PitchRadians: 0.35,
			MinDistance:  float32(cfg.ChunkSize) * 2,
		},
		Projection: camera.Projection{
			VerticalFOVRadians: float32(math.Pi) / 3,
			AspectRatio:        1,
			Near:               float32(cfg.ChunkSize) / 4,
		},
	}
	zoomStep := float32(cfg.TotalSize) / 32

	asm := renderdata.New()

	var frameCount uint64
	var lastStatus time.Time
	var game *minimapGame

	onFrame := func() bool {
		cmds := keys.drain()
		quit, copyRequested := applyCommands(cmds, cam, zoomStep)

		pos := cam.Arcball.Position()
		viewer := [3]float64{float64(pos[0]), float64(pos[1]), float64(pos[2])}

		var leaves []leafRect
		hooks := renderdata.DebugHooks{
			IncludeTransitions: true,
			DrawLeafBox: func(box aabb.AABB, empty bool) {
				leaves = append(leaves, leafRect{box: box, empty: empty})
			},
		}
		rd, err := asm.Update(om, viewer, hooks, dev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nvoxdemo: frame update failed: %v\n", err)
			return quit
		}
		game.setLeaves(leaves)

		frameCount++
		stats := demoStats{
			Frame:     frameCount,
			Leaves:    len(leaves),
			Triangles: len(rd.Indices) / 3,
			Vertices:  len(rd.Vertices),
		}
		if copyRequested {
			copyStatsToClipboard(clipboardOK, stats)
		}
		if time.Since(lastStatus) > 100*time.Millisecond {
			printStatus(stats, terminalWidth())
			lastStatus = time.Now()
		}
		return quit
	}

	game = newMinimapGame(cfg.TotalSize, onFrame)

	ebiten.SetWindowSize(minimapSize, minimapSize)
	ebiten.SetWindowTitle("voxterra minimap")
	ebiten.SetWindowResizable(false)
	defer fmt.Println()
	return ebiten.RunGame(game)
}

// applyCommands interprets drained key bytes against cam, returning whether
// the demo should quit and whether a clipboard copy was requested.
func applyCommands(cmds []byte, cam *camera.Camera, zoomStep float32) (quit, copyRequested bool) {
	const orbitStep = 0.05
	for _, b := range cmds {
		switch b {
		case 'q', 'Q', 3, 27:
			quit = true
		case 'a', 'A':
			cam.Arcball.Orbit(-orbitStep, 0)
		case 'd', 'D':
			cam.Arcball.Orbit(orbitStep, 0)
		case 'w', 'W':
			cam.Arcball.Orbit(0, orbitStep)
		case 's', 'S':
			cam.Arcball.Orbit(0, -orbitStep)
		case '+', '=':
			cam.Arcball.Zoom(zoomStep)
		case '-', '_':
			cam.Arcball.Zoom(-zoomStep)
		case 'c', 'C':
			copyRequested = true
		}
	}
	return quit, copyRequested
}

// buildVolume returns the density field to sample: a Lua-scripted volume
// when scriptPath is set, otherwise a sphere sized to fill the root cube.
// The returned close func releases the Lua interpreter, if any; it is a
// no-op for the built-in sphere.
func buildVolume(scriptPath string, rootSize uint32, radius float32) (volume.Volume, func(), error) {
	if scriptPath == "" {
		if radius <= 0 {
			radius = float32(rootSize)
		}
		return volume.NewSphere(radius), func() {}, nil
	}
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading volume script: %w", err)
	}
	v, err := luavolume.New(string(src))
	if err != nil {
		return nil, nil, fmt.Errorf("loading volume script: %w", err)
	}
	return v, v.Close, nil
}
