// Package volumedebug renders a horizontal slice of a volume.Volume's scalar
// field to a grayscale PNG for offline inspection, reusing golang.org/x/image
// for the scaling step the same way the teacher's framebuffer output scales
// its display surface.
package volumedebug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/voxterra/voxterra/volume"
)

// SliceOptions controls which horizontal (XZ) slice of the field is dumped
// and at what output resolution.
type SliceOptions struct {
	Y              uint32  // world-grid Y plane to sample
	Width, Height  uint32  // sample resolution, in voxels, before scaling
	OutputScale    int     // integer upscale factor for the output PNG
	Min, Max       float32 // value range mapped to black/white
}

// WriteSlicePNG samples v on the Y=opts.Y plane over [0,Width)x[0,Height) and
// writes a scaled grayscale PNG to w.
func WriteSlicePNG(w io.Writer, v volume.Volume, opts SliceOptions) error {
	if opts.Width == 0 || opts.Height == 0 {
		return fmt.Errorf("volumedebug: width and height must be > 0")
	}
	if opts.OutputScale <= 0 {
		opts.OutputScale = 1
	}
	spread := opts.Max - opts.Min
	if spread == 0 {
		spread = 1
	}

	src := image.NewGray(image.Rect(0, 0, int(opts.Width), int(opts.Height)))
	for z := uint32(0); z < opts.Height; z++ {
		for x := uint32(0); x < opts.Width; x++ {
			value := v.Sample(x, opts.Y, z)
			norm := (value - opts.Min) / spread
			if norm < 0 {
				norm = 0
			}
			if norm > 1 {
				norm = 1
			}
			src.SetGray(int(x), int(z), color.Gray{Y: uint8(norm * 255)})
		}
	}

	dstW := int(opts.Width) * opts.OutputScale
	dstH := int(opts.Height) * opts.OutputScale
	dst := image.NewGray(image.Rect(0, 0, dstW, dstH))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	return png.Encode(w, dst)
}
