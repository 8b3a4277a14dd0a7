package models

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/softgl/pkg/render"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
	if !loader.LoadImages {
		t.Error("LoadImages should default to true")
	}
}

// writeTriangleGLB saves a one-triangle model, optionally with an embedded
// 2x2 PNG base color texture.
func writeTriangleGLB(t *testing.T, withNormals, withTexture bool) string {
	t.Helper()
	return saveGLB(t, triangleDoc(t, withNormals, withTexture))
}

func triangleDoc(t *testing.T, withNormals, withTexture bool) *gltf.Document {
	t.Helper()

	doc := gltf.NewDocument()
	attrs := map[string]int{
		gltf.POSITION:   modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
		gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 0.25}}),
	}
	if withNormals {
		attrs[gltf.NORMAL] = modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	}
	prim := &gltf.Primitive{
		Indices:    gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2})),
		Attributes: attrs,
	}

	if withTexture {
		img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
		img.Set(0, 0, color.NRGBA{R: 255, A: 255})
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		imgIdx, err := modeler.WriteImage(doc, "base", "image/png", &buf)
		if err != nil {
			t.Fatal(err)
		}
		doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(imgIdx)})
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: "painted",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor:  &[4]float64{0.5, 0.5, 0.5, 1},
				BaseColorTexture: &gltf.TextureInfo{Index: 0},
			},
		})
		prim.Material = gltf.Index(0)
	}

	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "root", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc
}

func saveGLB(t *testing.T, doc *gltf.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestLoadGLBTriangle(t *testing.T) {
	path := writeTriangleGLB(t, true, false)

	mesh, err := LoadGLB(path)
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}
	if mesh.VertexCount() != 3 || mesh.TriangleCount() != 1 {
		t.Fatalf("got %d vertices, %d faces", mesh.VertexCount(), mesh.TriangleCount())
	}
	// winding is kept as stored
	if got := mesh.GetFace(0); got != [3]int{0, 1, 2} {
		t.Errorf("face = %v, want [0 1 2]", got)
	}

	pos, n, uv := mesh.GetVertex(2)
	if pos.Y != 1 || n.Z != 1 {
		t.Errorf("vertex 2 = %v normal %v", pos, n)
	}
	// v is flipped to a bottom-left origin
	if math.Abs(uv.Y-0.75) > 1e-6 {
		t.Errorf("uv.Y = %v, want 0.75", uv.Y)
	}
	if mesh.GetFaceMaterial(0) != -1 {
		t.Errorf("material = %d, want -1", mesh.GetFaceMaterial(0))
	}
}

func TestLoadGLBComputesMissingNormals(t *testing.T) {
	mesh, err := LoadGLB(writeTriangleGLB(t, false, false))
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}
	_, n, _ := mesh.GetVertex(0)
	if math.Abs(n.Z-1) > 1e-9 {
		t.Errorf("normal = %v, want +Z", n)
	}
}

func TestLoadGLBWithTexture(t *testing.T) {
	mesh, img, err := LoadGLBWithTexture(writeTriangleGLB(t, true, true))
	if err != nil {
		t.Fatalf("LoadGLBWithTexture: %v", err)
	}
	if img == nil {
		t.Fatal("expected embedded texture")
	}
	if img.Bounds().Dx() != 2 {
		t.Errorf("texture width = %d, want 2", img.Bounds().Dx())
	}

	mat := mesh.GetMaterial(mesh.GetFaceMaterial(0))
	if mat == nil {
		t.Fatal("face has no material")
	}
	if mat.Name != "painted" || !mat.HasTexture {
		t.Errorf("material = %+v", mat)
	}
	if mat.BaseColor != [4]float64{0.5, 0.5, 0.5, 1} {
		t.Errorf("BaseColor = %v", mat.BaseColor)
	}
	// the top-left red pixel lands on the top texel row
	if mat.Texture == nil {
		t.Fatal("material texture not converted")
	}
	if got := mat.Texture.GetPixel(0, 1); got.R != 255 || got.G != 0 {
		t.Errorf("texel (0,1) = %v, want red", got)
	}
}

func TestLoadGLBWithoutTexture(t *testing.T) {
	_, img, err := LoadGLBWithTexture(writeTriangleGLB(t, true, false))
	if err != nil {
		t.Fatalf("LoadGLBWithTexture: %v", err)
	}
	if img != nil {
		t.Error("expected nil texture")
	}
}

func TestLoadGLBRejectsIndexPastVertices(t *testing.T) {
	for _, withNormals := range []bool{false, true} {
		doc := triangleDoc(t, withNormals, false)
		doc.Meshes[0].Primitives[0].Indices = gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 7}))

		_, err := LoadGLB(saveGLB(t, doc))
		if !errors.Is(err, render.ErrMalformedMesh) {
			t.Errorf("normals=%v: err = %v, want ErrMalformedMesh", withNormals, err)
		}
	}
}

func TestLoadGLBSkipsTextureWithMissingBufferView(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(doc *gltf.Document)
	}{
		{"buffer view", func(doc *gltf.Document) {
			doc.Images[0].BufferView = gltf.Index(42)
		}},
		{"buffer", func(doc *gltf.Document) {
			doc.BufferViews[*doc.Images[0].BufferView].Buffer = 9
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := triangleDoc(t, true, true)
			tt.corrupt(doc)

			mesh, img, err := LoadGLBWithTexture(saveGLB(t, doc))
			if err != nil {
				t.Fatalf("LoadGLBWithTexture: %v", err)
			}
			if img != nil {
				t.Error("expected no texture")
			}
			mat := mesh.GetMaterial(0)
			if mat == nil {
				t.Fatal("material dropped")
			}
			if mat.HasTexture || mat.Texture != nil {
				t.Errorf("material = %+v, want untextured", mat)
			}
			if mat.BaseColor != [4]float64{0.5, 0.5, 0.5, 1} {
				t.Errorf("BaseColor = %v", mat.BaseColor)
			}
		})
	}
}
