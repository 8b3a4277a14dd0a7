// Package models holds triangle meshes and the OBJ and glTF loaders that
// produce them.
package models

import (
	"image"

	"github.com/taigrr/softgl/pkg/math3d"
	"github.com/taigrr/softgl/pkg/render"
)

// Mesh is an indexed triangle mesh. It implements render.Mesh.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face is a triangle of vertex indices and a material reference.
type Face struct {
	V        [3]int // indices into Mesh.Vertices
	Material int    // index into Mesh.Materials, -1 for none
}

// Material is the surface description a face can refer to.
type Material struct {
	Name       string
	BaseColor  [4]float64      // RGBA in 0-1 range
	BaseMap    image.Image     // optional base color texture
	Texture    *render.Texture // BaseMap ready for sampling
	HasTexture bool
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// Bounds returns the axis-aligned box around all vertices.
func (m *Mesh) Bounds() render.AABB {
	return render.MeshBounds(m)
}

// Validate reports faces that reference missing vertices.
func (m *Mesh) Validate() error {
	return render.ValidateMesh(m)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateSmoothNormals replaces every vertex normal with the
// area-weighted average of the normals of the faces sharing it.
func (m *Mesh) CalculateSmoothNormals() {
	for i, n := range m.faceNormalSums() {
		m.Vertices[i].Normal = n.Normalize()
	}
}

// CalculateMissingNormals is CalculateSmoothNormals restricted to the
// vertices whose normal is zero, so normals read from a file survive.
func (m *Mesh) CalculateMissingNormals() {
	var sums []math3d.Vec3
	for i := range m.Vertices {
		if m.Vertices[i].Normal.Len() > 1e-6 {
			continue
		}
		if sums == nil {
			sums = m.faceNormalSums()
		}
		m.Vertices[i].Normal = sums[i].Normalize()
	}
}

// faceNormalSums adds up the unnormalized face normals around each vertex.
// Faces pointing at missing vertices are skipped.
func (m *Mesh) faceNormalSums() []math3d.Vec3 {
	sums := make([]math3d.Vec3, len(m.Vertices))
	for _, f := range m.Faces {
		if !m.hasFace(f) {
			continue
		}
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position
		// unnormalized, so larger faces weigh more
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		for _, idx := range f.V {
			sums[idx] = sums[idx].Add(n)
		}
	}
	return sums
}

func (m *Mesh) hasFace(f Face) bool {
	for _, idx := range f.V {
		if idx < 0 || idx >= len(m.Vertices) {
			return false
		}
	}
	return true
}

// GetVertex returns the position, normal, and UV for vertex i.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetFaceMaterial returns the material index for face i, -1 if none.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i, or nil when out of range.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// FaceSurface implements render.SurfaceMesh. ok is false for faces
// without a material.
func (m *Mesh) FaceSurface(face int) (base render.Color, tex *render.Texture, ok bool) {
	mat := m.GetMaterial(m.Faces[face].Material)
	if mat == nil {
		return render.Color{}, nil, false
	}
	c := mat.BaseColor
	return render.RGB(unit(c[0]), unit(c[1]), unit(c[2])), mat.Texture, true
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// materialIndex returns the index of the named material, adding it when
// missing.
func (m *Mesh) materialIndex(name string) int {
	for i, mat := range m.Materials {
		if mat.Name == name {
			return i
		}
	}
	m.Materials = append(m.Materials, Material{Name: name, BaseColor: [4]float64{1, 1, 1, 1}})
	return len(m.Materials) - 1
}

// unit maps a 0-1 channel onto a byte.
func unit(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
