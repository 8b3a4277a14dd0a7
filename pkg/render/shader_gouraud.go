package render

import (
	"math"

	"github.com/taigrr/softgl/pkg/math3d"
)

// GouraudShader lights each vertex with max(0, n·l) and interpolates the
// intensity across the face. The surface color comes from Diffuse, or the
// face's own texture on a SurfaceMesh, sampled at the interpolated UV and
// tinted by Color. Without a texture the tint alone is used.
type GouraudShader struct {
	Diffuse *Texture
	Color   Color

	mesh      Mesh
	transform math3d.Mat4
	normalM   math3d.Mat4
	light     math3d.Vec3

	varyingIntensity [3]float64
	varyingUV        [3]math3d.Vec2
	surface          surface
}

// NewGouraudShader prepares a Gouraud shader for one pass over m.
func NewGouraudShader(m Mesh, u Uniforms) *GouraudShader {
	return &GouraudShader{
		Color:     ColorWhite,
		mesh:      m,
		transform: u.Transform(),
		normalM:   u.Model.InverseTranspose(),
		light:     u.LightDir.Normalize(),
		surface:   newSurface(m),
	}
}

// Vertex implements Shader.
func (s *GouraudShader) Vertex(face, slot int) math3d.Vec4 {
	if slot == 0 {
		s.surface.bind(face, s.Color, s.Diffuse)
	}
	pos, normal, uv := vertexAt(s.mesh, face, slot)
	n := s.normalM.MulVec3Dir(normal).Normalize()
	s.varyingIntensity[slot] = math.Max(0, n.Dot(s.light))
	s.varyingUV[slot] = uv
	return s.transform.MulVec4(math3d.Embed(pos, 1))
}

// Fragment implements Shader.
func (s *GouraudShader) Fragment(bar math3d.Vec3) (Color, bool) {
	intensity := s.varyingIntensity[0]*bar.X + s.varyingIntensity[1]*bar.Y + s.varyingIntensity[2]*bar.Z
	return MultiplyColor(s.surface.at(s.varyingUV, bar), intensity), false
}

// FlatShader lights a whole face with the normal of its plane, giving the
// faceted look of unsmoothed geometry.
type FlatShader struct {
	Diffuse *Texture
	Color   Color

	mesh      Mesh
	transform math3d.Mat4
	model     math3d.Mat4
	light     math3d.Vec3

	world     [3]math3d.Vec3
	varyingUV [3]math3d.Vec2
	intensity float64
	surface   surface
}

// NewFlatShader prepares a flat shader for one pass over m.
func NewFlatShader(m Mesh, u Uniforms) *FlatShader {
	return &FlatShader{
		Color:     ColorWhite,
		mesh:      m,
		transform: u.Transform(),
		model:     u.Model,
		light:     u.LightDir.Normalize(),
		surface:   newSurface(m),
	}
}

// Vertex implements Shader. The face intensity is settled once the last
// corner arrives.
func (s *FlatShader) Vertex(face, slot int) math3d.Vec4 {
	if slot == 0 {
		s.surface.bind(face, s.Color, s.Diffuse)
	}
	pos, _, uv := vertexAt(s.mesh, face, slot)
	s.world[slot] = s.model.MulVec3(pos)
	s.varyingUV[slot] = uv
	if slot == 2 {
		n := s.world[1].Sub(s.world[0]).Cross(s.world[2].Sub(s.world[0])).Normalize()
		s.intensity = math.Max(0, n.Dot(s.light))
	}
	return s.transform.MulVec4(math3d.Embed(pos, 1))
}

// Fragment implements Shader.
func (s *FlatShader) Fragment(bar math3d.Vec3) (Color, bool) {
	return MultiplyColor(s.surface.at(s.varyingUV, bar), s.intensity), false
}
