package render

import (
	"math"

	"github.com/taigrr/softgl/pkg/math3d"
)

// PhongShader computes per-pixel ambient, diffuse and specular lighting.
//
// Normals come from NormalMap, with each channel remapped from [0,255] to
// [-1,1], or from the interpolated vertex normals when no map is bound.
// The normal is carried by the inverse transpose of M = Projection ×
// ModelView and the light direction by M itself. The specular exponent is
// the first channel of the Specular map; without one there is no specular
// term.
type PhongShader struct {
	Diffuse   *Texture
	NormalMap *Texture
	Specular  *Texture
	Color     Color

	Ambient        float64
	DiffuseWeight  float64
	SpecularWeight float64

	mesh      Mesh
	transform math3d.Mat4
	m         math3d.Mat4
	mit       math3d.Mat4
	light     math3d.Vec3

	varyingUV     [3]math3d.Vec2
	varyingNormal [3]math3d.Vec3
	surface       surface
}

// NewPhongShader prepares a Phong shader for one pass over m with ambient
// 5, diffuse weight 1 and specular weight 0.6.
func NewPhongShader(m Mesh, u Uniforms) *PhongShader {
	mv := u.Projection.Mul(u.ModelView())
	return &PhongShader{
		Color:          ColorWhite,
		Ambient:        5,
		DiffuseWeight:  1,
		SpecularWeight: 0.6,
		mesh:           m,
		transform:      u.Transform(),
		m:              mv,
		mit:            mv.InverseTranspose(),
		light:          mv.MulVec4(math3d.Embed(u.LightDir, 0)).Vec3().Normalize(),
		surface:        newSurface(m),
	}
}

// Vertex implements Shader.
func (s *PhongShader) Vertex(face, slot int) math3d.Vec4 {
	if slot == 0 {
		s.surface.bind(face, s.Color, s.Diffuse)
	}
	pos, normal, uv := vertexAt(s.mesh, face, slot)
	s.varyingUV[slot] = uv
	s.varyingNormal[slot] = normal
	return s.transform.MulVec4(math3d.Embed(pos, 1))
}

// Fragment implements Shader.
func (s *PhongShader) Fragment(bar math3d.Vec3) (Color, bool) {
	uv := math3d.Blend2(s.varyingUV, bar)

	var n math3d.Vec3
	if s.NormalMap != nil {
		px := s.NormalMap.Sample(uv)
		n = math3d.V3(unitChannel(px.R), unitChannel(px.G), unitChannel(px.B))
	} else {
		n = math3d.Blend3(s.varyingNormal, bar)
	}
	n = s.mit.MulVec4(math3d.Embed(n, 0)).Vec3().Normalize()
	l := s.light

	nl := n.Dot(l)
	diff := math.Max(0, nl)
	spec := 0.0
	if s.Specular != nil {
		r := n.Scale(2 * nl).Sub(l).Normalize()
		spec = math.Pow(math.Max(r.Z, 0), float64(s.Specular.Sample(uv).R))
	}

	base := s.surface.at(s.varyingUV, bar)
	k := s.DiffuseWeight*diff + s.SpecularWeight*spec
	return Color{
		R: clampByte(s.Ambient + float64(base.R)*k),
		G: clampByte(s.Ambient + float64(base.G)*k),
		B: clampByte(s.Ambient + float64(base.B)*k),
		A: 255,
	}, false
}

// unitChannel maps a color channel from [0,255] onto [-1,1].
func unitChannel(c uint8) float64 {
	return float64(c)/255*2 - 1
}
