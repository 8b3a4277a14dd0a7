package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/softgl/pkg/math3d"
)

// ErrMalformedMesh is wrapped by errors reporting face indices outside the
// vertex list.
var ErrMalformedMesh = errors.New("malformed mesh")

// ValidateMesh checks that every face references existing vertices.
func ValidateMesh(m Mesh) error {
	n := m.VertexCount()
	for i := range m.TriangleCount() {
		for slot, idx := range m.GetFace(i) {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: face %d slot %d references vertex %d of %d", ErrMalformedMesh, i, slot, idx, n)
			}
		}
	}
	return nil
}

// DrawMesh runs one render pass: for each face the shader's vertex stage is
// invoked for slots 0, 1 and 2, then the triangle is rasterized with the
// same shader. The mesh is validated before any pixel is touched.
// Stats accumulate; call ResetStats between passes.
func (r *Rasterizer) DrawMesh(m Mesh, shader Shader) error {
	if err := ValidateMesh(m); err != nil {
		return err
	}

	before := r.Stats
	var clip [3]math3d.Vec4
	for face := range m.TriangleCount() {
		for slot := range 3 {
			clip[slot] = shader.Vertex(face, slot)
		}
		r.DrawTriangle(clip, shader)
	}

	Logger().Debug("render pass complete",
		"shader", fmt.Sprintf("%T", shader),
		"faces", r.Stats.Faces-before.Faces,
		"degenerate", r.Stats.Degenerate-before.Degenerate,
		"culled", r.Stats.Culled-before.Culled,
		"fragments", r.Stats.Fragments-before.Fragments,
		"depth_rejected", r.Stats.DepthRejected-before.DepthRejected,
		"discarded", r.Stats.Discarded-before.Discarded,
	)
	return nil
}
