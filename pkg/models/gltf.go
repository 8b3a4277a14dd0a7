package models

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	_ "golang.org/x/image/webp" // EXT_texture_webp images

	"github.com/taigrr/softgl/pkg/math3d"
	"github.com/taigrr/softgl/pkg/render"
)

// GLTFLoader loads glTF and GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals for vertices the file
	// leaves without one.
	CalculateNormals bool
	// LoadImages decodes base color textures into Material.BaseMap and
	// Material.Texture.
	LoadImages bool
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		LoadImages:       true,
	}
}

// LoadGLB loads a .glb or .gltf file with default options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// LoadGLBWithTexture loads a model and returns the first base color texture
// it can decode. The image is nil when the model has none.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	mesh, err := NewGLTFLoader().Load(path)
	if err != nil {
		return nil, nil, err
	}
	for _, mat := range mesh.Materials {
		if mat.HasTexture {
			return mesh, mat.BaseMap, nil
		}
	}
	return mesh, nil, nil
}

// Load reads every triangle primitive of every mesh in the document into
// a single Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	mesh.Materials = l.readMaterials(doc, filepath.Dir(path))

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	if l.CalculateNormals {
		mesh.CalculateMissingNormals()
	}

	render.Logger().Info("model loaded",
		"path", path,
		"format", "gltf",
		"vertices", mesh.VertexCount(),
		"faces", mesh.TriangleCount(),
		"materials", mesh.MaterialCount(),
	)
	return mesh, nil
}

// processMesh appends the geometry of m's triangle primitives to mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		acr, err := accessor(doc, posIdx)
		if err != nil {
			return err
		}
		positions, err := modeler.ReadPosition(doc, acr, nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if acr, err = accessor(doc, idx); err != nil {
				return err
			}
			normals, err = modeler.ReadNormal(doc, acr, nil)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if acr, err = accessor(doc, idx); err != nil {
				return err
			}
			uvs, err = modeler.ReadTextureCoord(doc, acr, nil)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: vec3(p)}
			if i < len(normals) {
				v.Normal = vec3(normals[i])
			}
			if i < len(uvs) {
				// glTF puts v=0 at the top of the image
				v.UV = math3d.V2(float64(uvs[i][0]), 1-float64(uvs[i][1]))
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		if prim.Indices == nil {
			for i := 0; i+2 < len(positions); i += 3 {
				mesh.Faces = append(mesh.Faces, Face{
					V:        [3]int{base + i, base + i + 1, base + i + 2},
					Material: material,
				})
			}
			continue
		}

		if acr, err = accessor(doc, *prim.Indices); err != nil {
			return err
		}
		indices, err := modeler.ReadIndices(doc, acr, nil)
		if err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			mesh.Faces = append(mesh.Faces, Face{
				V: [3]int{
					base + int(indices[i]),
					base + int(indices[i+1]),
					base + int(indices[i+2]),
				},
				Material: material,
			})
		}
	}
	return nil
}

func accessor(doc *gltf.Document, i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", i)
	}
	return doc.Accessors[i], nil
}

func vec3(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
}

// readMaterials converts the document materials. A texture that cannot be
// read is logged and skipped; the material keeps its base color.
func (l *GLTFLoader) readMaterials(doc *gltf.Document, dir string) []Material {
	materials := make([]Material, 0, len(doc.Materials))
	for i, m := range doc.Materials {
		mat := Material{Name: m.Name, BaseColor: [4]float64{1, 1, 1, 1}}
		pbr := m.PBRMetallicRoughness
		if pbr != nil && pbr.BaseColorFactor != nil {
			mat.BaseColor = *pbr.BaseColorFactor
		}
		if l.LoadImages && pbr != nil && pbr.BaseColorTexture != nil {
			img, err := textureImage(doc, pbr.BaseColorTexture.Index, dir)
			if err != nil {
				render.Logger().Warn("base color texture skipped", "material", i, "error", err)
			} else {
				mat.BaseMap = img
				mat.Texture = render.TextureFromImage(img)
				mat.HasTexture = true
			}
		}
		materials = append(materials, mat)
	}
	return materials
}

// textureImage decodes the image behind texture index i, either from a
// buffer view or from a file next to the model.
func textureImage(doc *gltf.Document, i int, dir string) (image.Image, error) {
	if i < 0 || i >= len(doc.Textures) || doc.Textures[i].Source == nil {
		return nil, fmt.Errorf("texture %d has no source", i)
	}
	src := *doc.Textures[i].Source
	if src < 0 || src >= len(doc.Images) {
		return nil, fmt.Errorf("texture %d: image %d out of range", i, src)
	}
	img := doc.Images[src]

	var data []byte
	switch {
	case img.BufferView != nil:
		if *img.BufferView < 0 || *img.BufferView >= len(doc.BufferViews) {
			return nil, fmt.Errorf("image %d: buffer view %d out of range", src, *img.BufferView)
		}
		bv := doc.BufferViews[*img.BufferView]
		if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
			return nil, fmt.Errorf("image %d: buffer %d out of range", src, bv.Buffer)
		}
		buf := doc.Buffers[bv.Buffer]
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf.Data) {
			return nil, fmt.Errorf("image %d: buffer view out of range", src)
		}
		data = buf.Data[bv.ByteOffset:end]
	case img.IsEmbeddedResource():
		var err error
		data, err = img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", src, err)
		}
	case img.URI != "":
		var err error
		data, err = os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", src, err)
		}
	default:
		return nil, fmt.Errorf("image %d has no data", src)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", src, err)
	}
	return decoded, nil
}
