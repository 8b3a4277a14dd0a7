package render

import (
	"github.com/taigrr/softgl/pkg/math3d"
)

// Shader is the programmable stage pair driven by the rasterizer.
//
// Vertex is called for slots 0, 1 and 2 of a face before any Fragment call
// for that face. It returns the vertex position in homogeneous screen
// space (viewport × projection × model-view applied, not yet divided) and
// may record per-slot varyings on the shader. Fragment receives the
// barycentric weights of a covered pixel and returns its color; returning
// true for discard suppresses the color write but the depth is still
// updated.
type Shader interface {
	Vertex(face, slot int) math3d.Vec4
	Fragment(bar math3d.Vec3) (Color, bool)
}

// Mesh is the read-only view of geometry the shaders consume.
// models.Mesh implements it.
type Mesh interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// SurfaceMesh is a Mesh whose faces carry their own material. The lit
// shaders tint each face by its base color and, when no Diffuse texture is
// bound on the shader, sample the face's own texture.
type SurfaceMesh interface {
	Mesh
	FaceSurface(face int) (base Color, tex *Texture, ok bool)
}

// Uniforms are the per-pass inputs shared by every vertex and fragment.
type Uniforms struct {
	Model      math3d.Mat4
	View       math3d.Mat4
	Projection math3d.Mat4
	Viewport   math3d.Mat4
	LightDir   math3d.Vec3
}

// ModelView returns View * Model.
func (u Uniforms) ModelView() math3d.Mat4 {
	return u.View.Mul(u.Model)
}

// Transform returns Viewport * Projection * View * Model.
func (u Uniforms) Transform() math3d.Mat4 {
	return u.Viewport.Mul(u.Projection).Mul(u.ModelView())
}

// vertexAt reads the attributes of a face corner.
func vertexAt(m Mesh, face, slot int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	return m.GetVertex(m.GetFace(face)[slot])
}

// surface resolves the color source of the face being shaded.
type surface struct {
	mesh  SurfaceMesh
	color Color
	tex   *Texture
}

func newSurface(m Mesh) surface {
	sm, _ := m.(SurfaceMesh)
	return surface{mesh: sm}
}

// bind selects the tint and texture for face. An explicit diffuse texture
// wins over the face's own.
func (s *surface) bind(face int, tint Color, diffuse *Texture) {
	s.color, s.tex = tint, diffuse
	if s.mesh == nil {
		return
	}
	base, tex, ok := s.mesh.FaceSurface(face)
	if !ok {
		return
	}
	s.color = ModulateColor(tint, base)
	if s.tex == nil {
		s.tex = tex
	}
}

// at samples the bound texture at the interpolated UV, tinted by the face
// color, or returns the tint alone when there is no texture.
func (s *surface) at(uvs [3]math3d.Vec2, bar math3d.Vec3) Color {
	if s.tex == nil {
		return s.color
	}
	return ModulateColor(s.tex.Sample(math3d.Blend2(uvs, bar)), s.color)
}
