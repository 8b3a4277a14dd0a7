package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/softgl/pkg/math3d"
)

// ErrSizeMismatch is returned when a color target and depth buffer differ
// in size.
var ErrSizeMismatch = errors.New("render: framebuffer and depth buffer sizes differ")

// Rasterizer fills triangles into a borrowed framebuffer and depth buffer.
// It owns neither and keeps no state between triangles besides Stats.
type Rasterizer struct {
	fb    *Framebuffer
	depth *DepthBuffer

	// PerspectiveCorrect rescales the weights handed to Fragment by each
	// vertex's 1/w. Depth is always interpolated as z/w regardless.
	PerspectiveCorrect bool
	// CullBackFaces skips triangles wound clockwise on screen.
	CullBackFaces bool

	Stats PassStats
}

// PassStats counts what happened to triangles and fragments.
type PassStats struct {
	Faces         int // triangles submitted
	Degenerate    int // zero-area or non-finite triangles
	Culled        int // back faces skipped
	Fragments     int // pixels that won the depth test
	DepthRejected int // covered pixels that lost the depth test
	Discarded     int // winning fragments the shader discarded
}

// NewRasterizer binds a framebuffer and a depth buffer of the same size.
func NewRasterizer(fb *Framebuffer, depth *DepthBuffer) (*Rasterizer, error) {
	if fb == nil || depth == nil {
		return nil, errors.New("render: nil target")
	}
	if fb.Width != depth.Width || fb.Height != depth.Height {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, fb.Width, fb.Height, depth.Width, depth.Height)
	}
	return &Rasterizer{fb: fb, depth: depth}, nil
}

// Framebuffer returns the bound color target.
func (r *Rasterizer) Framebuffer() *Framebuffer { return r.fb }

// DepthBuffer returns the bound depth buffer.
func (r *Rasterizer) DepthBuffer() *DepthBuffer { return r.depth }

// ResetStats zeroes the counters (call once per pass).
func (r *Rasterizer) ResetStats() {
	r.Stats = PassStats{}
}

// FillTriangle fills a screen-space triangle with a flat color. Depth is
// interpolated linearly from the vertex z values.
func (r *Rasterizer) FillTriangle(pts [3]math3d.Vec3, c Color) {
	r.fill(pts,
		func(bar math3d.Vec3) float64 {
			return pts[0].Z*bar.X + pts[1].Z*bar.Y + pts[2].Z*bar.Z
		},
		func(math3d.Vec3) (Color, bool) { return c, false },
	)
}

// FillTriangleTextured fills a screen-space triangle with the nearest texel
// at the interpolated UV, scaled by intensity. UVs outside [0,1) sample
// outside the texture and come back transparent black. A nil texture
// fills with white.
func (r *Rasterizer) FillTriangleTextured(pts [3]math3d.Vec3, uvs [3]math3d.Vec2, tex *Texture, intensity float64) {
	if tex == nil {
		r.FillTriangle(pts, MultiplyColor(ColorWhite, intensity))
		return
	}
	r.fill(pts,
		func(bar math3d.Vec3) float64 {
			return pts[0].Z*bar.X + pts[1].Z*bar.Y + pts[2].Z*bar.Z
		},
		func(bar math3d.Vec3) (Color, bool) {
			return MultiplyColor(tex.Sample(math3d.Blend2(uvs, bar)), intensity), false
		},
	)
}

// DrawTriangle rasterizes a triangle given in homogeneous screen space,
// usually the three results of shader.Vertex for one face. Depth at a
// pixel is the interpolated z divided by the interpolated w.
func (r *Rasterizer) DrawTriangle(clip [3]math3d.Vec4, shader Shader) {
	pts := [3]math3d.Vec3{
		clip[0].PerspectiveDivide(),
		clip[1].PerspectiveDivide(),
		clip[2].PerspectiveDivide(),
	}
	frag := shader.Fragment
	if r.PerspectiveCorrect {
		frag = func(bar math3d.Vec3) (Color, bool) {
			c := math3d.V3(bar.X/clip[0].W, bar.Y/clip[1].W, bar.Z/clip[2].W)
			return shader.Fragment(c.Scale(1 / (c.X + c.Y + c.Z)))
		}
	}
	r.fill(pts,
		func(bar math3d.Vec3) float64 {
			z := clip[0].Z*bar.X + clip[1].Z*bar.Y + clip[2].Z*bar.Z
			w := clip[0].W*bar.X + clip[1].W*bar.Y + clip[2].W*bar.Z
			return z / w
		},
		frag,
	)
}

// fill scans the bounding box of pts, clamped to the target, and runs the
// depth test and fragment function for every covered pixel center.
func (r *Rasterizer) fill(pts [3]math3d.Vec3, depthAt func(math3d.Vec3) float64, frag func(math3d.Vec3) (Color, bool)) {
	r.Stats.Faces++
	a, b, c := pts[0], pts[1], pts[2]
	if !a.IsFinite() || !b.IsFinite() || !c.IsFinite() {
		r.Stats.Degenerate++
		return
	}
	area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if math.Abs(area) < DegenerateEpsilon {
		r.Stats.Degenerate++
		return
	}
	if r.CullBackFaces && area < 0 {
		r.Stats.Culled++
		return
	}

	// clamp in float space so far off-screen coordinates never overflow int
	w, h := float64(r.fb.Width), float64(r.fb.Height)
	minX := int(clamp(math.Floor(min3(a.X, b.X, c.X)), 0, w))
	minY := int(clamp(math.Floor(min3(a.Y, b.Y, c.Y)), 0, h))
	maxX := int(clamp(math.Ceil(max3(a.X, b.X, c.X)), -1, w-1))
	maxY := int(clamp(math.Ceil(max3(a.Y, b.Y, c.Y)), -1, h-1))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bar := Barycentric(a, b, c, math3d.V3(float64(x), float64(y), 0))
			if bar.X < 0 || bar.Y < 0 || bar.Z < 0 {
				continue
			}
			z := depthAt(bar)
			if !r.depth.Test(x, y, z) {
				r.Stats.DepthRejected++
				continue
			}
			col, discard := frag(bar)
			r.depth.Set(x, y, z)
			r.Stats.Fragments++
			if discard {
				r.Stats.Discarded++
				continue
			}
			r.fb.SetPixel(x, y, col)
		}
	}
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
