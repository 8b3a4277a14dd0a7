package render

import (
	"math"

	"github.com/taigrr/softgl/pkg/math3d"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// MeshBounds returns the box around every vertex of m. An empty mesh gives
// the zero box.
func MeshBounds(m Mesh) AABB {
	if m.VertexCount() == 0 {
		return AABB{}
	}
	p, _, _ := m.GetVertex(0)
	b := AABB{Min: p, Max: p}
	for i := 1; i < m.VertexCount(); i++ {
		p, _, _ = m.GetVertex(i)
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Center returns the center of the AABB.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// corners lists the eight corners of the box.
func (b AABB) corners() [8]math3d.Vec3 {
	return [8]math3d.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

// Transform returns the box bounding all eight corners after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	c := b.corners()
	out := AABB{Min: m.MulVec3(c[0]), Max: m.MulVec3(c[0])}
	for _, p := range c[1:] {
		p = m.MulVec3(p)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// Fit returns the model matrix that centers the box on the origin and
// scales its largest side to 2, so it spans [-1,1] along that axis.
func (b AABB) Fit() math3d.Mat4 {
	size := b.Size()
	longest := math.Max(size.X, math.Max(size.Y, size.Z))
	if longest == 0 {
		return math3d.Translate(b.Center().Negate())
	}
	return math3d.ScaleUniform(2 / longest).Mul(math3d.Translate(b.Center().Negate()))
}

// OnScreen reports whether the box, carried through the full screen
// transform, overlaps a width×height target. Boxes reaching behind the eye
// plane are reported visible.
func (b AABB) OnScreen(transform math3d.Mat4, width, height int) bool {
	first := true
	var lo, hi math3d.Vec3
	for _, p := range b.corners() {
		clip := transform.MulVec4(math3d.Embed(p, 1))
		if clip.W <= 0 {
			return true
		}
		s := clip.PerspectiveDivide()
		if first {
			lo, hi, first = s, s, false
			continue
		}
		lo, hi = lo.Min(s), hi.Max(s)
	}
	return hi.X >= 0 && hi.Y >= 0 && lo.X <= float64(width-1) && lo.Y <= float64(height-1)
}
