package render

import (
	"github.com/taigrr/softgl/pkg/math3d"
)

// ShadowShader writes depth as gray: 255 × z / Depth, nearer surfaces
// brighter. Rendered from the light's point of view it produces a shadow
// map.
type ShadowShader struct {
	// Depth is the z value that maps to white. It defaults to the viewport
	// depth range.
	Depth float64

	mesh       Mesh
	transform  math3d.Mat4
	varyingTri [3]math3d.Vec3
}

// NewShadowShader prepares a depth shader for one pass over m.
func NewShadowShader(m Mesh, u Uniforms) *ShadowShader {
	return &ShadowShader{
		Depth:     math3d.DepthScale,
		mesh:      m,
		transform: u.Transform(),
	}
}

// Vertex implements Shader.
func (s *ShadowShader) Vertex(face, slot int) math3d.Vec4 {
	pos, _, _ := vertexAt(s.mesh, face, slot)
	v := s.transform.MulVec4(math3d.Embed(pos, 1))
	s.varyingTri[slot] = v.PerspectiveDivide()
	return v
}

// Fragment implements Shader.
func (s *ShadowShader) Fragment(bar math3d.Vec3) (Color, bool) {
	p := math3d.Blend3(s.varyingTri, bar)
	g := clampByte(255 * p.Z / s.Depth)
	return Color{R: g, G: g, B: g, A: 255}, false
}
