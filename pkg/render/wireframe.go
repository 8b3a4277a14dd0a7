package render

import (
	"math"

	"github.com/taigrr/softgl/pkg/math3d"
)

// Wireframe draws projected edges straight into a framebuffer, without
// depth testing. It is the debug view of the pipeline.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera: camera,
		fb:     fb,
	}
}

// DrawLine3D projects both endpoints and joins them. Segments with an
// endpoint at or behind the eye plane are skipped since nothing is clipped.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	s1, ok1 := w.camera.WorldToScreen(p1)
	s2, ok2 := w.camera.WorldToScreen(p2)
	if !ok1 || !ok2 || !s1.IsFinite() || !s2.IsFinite() {
		return
	}
	w.fb.DrawLine(pixel(s1.X), pixel(s1.Y), pixel(s2.X), pixel(s2.Y), color)
}

// DrawMesh outlines every face of m placed by the model matrix.
func (w *Wireframe) DrawMesh(m Mesh, model math3d.Mat4, color Color) error {
	if err := ValidateMesh(m); err != nil {
		return err
	}
	for i := range m.TriangleCount() {
		var p [3]math3d.Vec3
		for slot := range 3 {
			pos, _, _ := vertexAt(m, i, slot)
			p[slot] = model.MulVec3(pos)
		}
		w.DrawLine3D(p[0], p[1], color)
		w.DrawLine3D(p[1], p[2], color)
		w.DrawLine3D(p[2], p[0], color)
	}
	return nil
}

// DrawAxes draws the world axes at the origin in red, green and blue.
func (w *Wireframe) DrawAxes(length float64) {
	var origin math3d.Vec3
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen)
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)
}

// pixel rounds a screen coordinate, pinning far off-screen values so the
// line walk stays bounded.
func pixel(v float64) int {
	const limit = 1 << 16
	return int(math.Round(clamp(v, -limit, limit)))
}
