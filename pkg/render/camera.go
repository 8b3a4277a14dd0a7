package render

import (
	"github.com/taigrr/softgl/pkg/math3d"
)

// Camera holds the eye/center/up placement and the viewport rectangle, and
// caches the matrices derived from them. Matrices are only rebuilt after a
// setter marks them dirty.
type Camera struct {
	Eye    math3d.Vec3
	Center math3d.Vec3
	Up     math3d.Vec3

	// Viewport rectangle in pixels and the depth range z is mapped into.
	X, Y, W, H float64
	Depth      float64

	view      math3d.Mat4
	proj      math3d.Mat4
	viewport  math3d.Mat4
	viewDirty bool
	vpDirty   bool
}

// NewCamera creates a camera at (1,1,3) looking at the origin, with a
// viewport covering the central three quarters of a width×height target.
func NewCamera(width, height int) *Camera {
	w, h := float64(width), float64(height)
	return &Camera{
		Eye:       math3d.V3(1, 1, 3),
		Center:    math3d.V3(0, 0, 0),
		Up:        math3d.Up(),
		X:         w / 8,
		Y:         h / 8,
		W:         w * 3 / 4,
		H:         h * 3 / 4,
		Depth:     math3d.DepthScale,
		viewDirty: true,
		vpDirty:   true,
	}
}

// SetEye moves the camera.
func (c *Camera) SetEye(eye math3d.Vec3) {
	c.Eye = eye
	c.viewDirty = true
}

// SetCenter changes the point the camera looks at.
func (c *Camera) SetCenter(center math3d.Vec3) {
	c.Center = center
	c.viewDirty = true
}

// SetUp changes the camera up hint.
func (c *Camera) SetUp(up math3d.Vec3) {
	c.Up = up
	c.viewDirty = true
}

// SetViewport sets the pixel rectangle normalized coordinates map onto.
func (c *Camera) SetViewport(x, y, w, h float64) {
	c.X, c.Y, c.W, c.H = x, y, w, h
	c.vpDirty = true
}

// SetDepth sets the depth range of the viewport.
func (c *Camera) SetDepth(depth float64) {
	c.Depth = depth
	c.vpDirty = true
}

// Distance is the eye to center distance the projection is built from.
func (c *Camera) Distance() float64 {
	return c.Eye.Sub(c.Center).Len()
}

// ViewMatrix returns the look-at matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	c.refreshView()
	return c.view
}

// ProjectionMatrix returns the perspective matrix for the current distance.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	c.refreshView()
	return c.proj
}

// ViewportMatrix returns the viewport matrix.
func (c *Camera) ViewportMatrix() math3d.Mat4 {
	if c.vpDirty {
		c.viewport = math3d.ViewportDepth(c.X, c.Y, c.W, c.H, c.Depth)
		c.vpDirty = false
	}
	return c.viewport
}

// Transform returns Viewport * Projection * View.
func (c *Camera) Transform() math3d.Mat4 {
	return c.ViewportMatrix().Mul(c.ProjectionMatrix()).Mul(c.ViewMatrix())
}

// Uniforms packages the camera matrices with a model matrix and a light
// direction for the shaders.
func (c *Camera) Uniforms(model math3d.Mat4, light math3d.Vec3) Uniforms {
	return Uniforms{
		Model:      model,
		View:       c.ViewMatrix(),
		Projection: c.ProjectionMatrix(),
		Viewport:   c.ViewportMatrix(),
		LightDir:   light,
	}
}

// WorldToScreen transforms a world point to screen coordinates and depth.
// ok is false when the point lands at or behind the eye plane.
func (c *Camera) WorldToScreen(p math3d.Vec3) (screen math3d.Vec3, ok bool) {
	clip := c.Transform().MulVec4(math3d.Embed(p, 1))
	if clip.W <= 0 {
		return math3d.Vec3{}, false
	}
	return clip.PerspectiveDivide(), true
}

func (c *Camera) refreshView() {
	if !c.viewDirty {
		return
	}
	c.view = math3d.LookAt(c.Eye, c.Center, c.Up)
	c.proj = math3d.Projection(c.Distance())
	c.viewDirty = false
}
