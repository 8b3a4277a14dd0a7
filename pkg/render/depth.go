package render

import (
	"image"
	"image/color"
	"math"
)

// DepthBuffer stores one depth value per pixel. Larger values are nearer
// the viewer: a fragment wins when its depth is greater than or equal to
// the stored value. A cleared buffer holds -Inf everywhere, so the first
// fragment at any pixel always wins.
type DepthBuffer struct {
	Width  int
	Height int
	Depth  []float64
}

// NewDepthBuffer creates a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		Depth:  make([]float64, width*height),
	}
	d.Clear()
	return d
}

// Clear resets every pixel to the far sentinel.
func (d *DepthBuffer) Clear() {
	n := len(d.Depth)
	if n == 0 {
		return
	}
	d.Depth[0] = math.Inf(-1)
	for i := 1; i < n; i *= 2 {
		copy(d.Depth[i:], d.Depth[:i])
	}
}

// At returns the stored depth, or -Inf outside the buffer.
func (d *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return math.Inf(-1)
	}
	return d.Depth[y*d.Width+x]
}

// Set stores z at (x, y). Out-of-bounds writes are dropped.
func (d *DepthBuffer) Set(x, y int, z float64) {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return
	}
	d.Depth[y*d.Width+x] = z
}

// Test reports whether a fragment at depth z would win at (x, y).
// NaN never wins.
func (d *DepthBuffer) Test(x, y int, z float64) bool {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return false
	}
	return z >= d.Depth[y*d.Width+x]
}

// Image renders the buffer as grayscale, mapping [0, scale] to [0, 255].
// Untouched pixels are black. Rows are in buffer order.
func (d *DepthBuffer) Image(scale float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, d.Width, d.Height))
	if scale <= 0 {
		return img
	}
	for y := range d.Height {
		for x := range d.Width {
			z := d.Depth[y*d.Width+x]
			if math.IsInf(z, -1) {
				continue
			}
			img.SetGray(x, y, color.Gray{Y: clampByte(255 * z / scale)})
		}
	}
	return img
}

// clampByte rounds v into [0, 255].
func clampByte(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
