package scene

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/softgl/pkg/math3d"
	"github.com/taigrr/softgl/pkg/render"
)

// a 2x2 quad facing +Z
const quadOBJ = `v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 0.999 0
vt 0.999 0.999
vt 0 0.999
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

var testBackground = [3]uint8{10, 20, 30}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// twoToneOBJ is quadOBJ split into one triangle per material.
const twoToneOBJ = `v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vn 0 0 1
usemtl lower
f 1//1 2//1 3//1
usemtl upper
f 1//1 3//1 4//1
`

func loadQuadScene(t *testing.T, flags Flags) *Scene {
	t.Helper()
	return loadOBJScene(t, quadOBJ, flags)
}

func loadOBJScene(t *testing.T, obj string, flags Flags) *Scene {
	t.Helper()
	dir := t.TempDir()
	flags.Model = writeFile(t, dir, "model.obj", obj)
	flags.Width, flags.Height = 64, 64
	eye, light := math3d.V3(0, 0, 3), math3d.V3(0, 0, 1)
	flags.Eye, flags.Light = &eye, &light

	cfg := Config{Background: testBackground}
	cfg.Resolve(flags)
	s, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func isBackground(c color.RGBA) bool {
	return c == render.RGB(testBackground[0], testBackground[1], testBackground[2])
}

func TestSceneRenderShaders(t *testing.T) {
	for _, shader := range []string{ShaderGouraud, ShaderFlat, ShaderPhong, ShaderShadow, ShaderWireframe} {
		t.Run(shader, func(t *testing.T) {
			s := loadQuadScene(t, Flags{Shader: shader})
			fb, err := s.Render(s.Model())
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !isBackground(fb.GetPixel(0, 0)) {
				t.Errorf("corner = %v, want background", fb.GetPixel(0, 0))
			}

			drawn := 0
			for _, p := range fb.Pixels {
				if !isBackground(p) {
					drawn++
				}
			}
			if drawn == 0 {
				t.Error("nothing drawn")
			}
			if shader != ShaderWireframe && isBackground(fb.GetPixel(32, 32)) {
				t.Error("center pixel not covered")
			}
		})
	}
}

func TestSceneGouraudFacingLightIsWhite(t *testing.T) {
	s := loadQuadScene(t, Flags{})
	fb, err := s.Render(s.Model())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := fb.GetPixel(32, 32); got != render.ColorWhite {
		t.Errorf("center = %v, want white", got)
	}
	if s.Stats().Faces != 2 {
		t.Errorf("Faces = %d, want 2", s.Stats().Faces)
	}
}

func TestSceneRenderIsRepeatable(t *testing.T) {
	s := loadQuadScene(t, Flags{})
	first, err := s.Render(s.Model())
	if err != nil {
		t.Fatal(err)
	}
	snapshot := append([]color.RGBA(nil), first.Pixels...)

	if _, err := s.Render(math3d.RotateY(1).Mul(s.Model())); err != nil {
		t.Fatal(err)
	}
	second, err := s.Render(s.Model())
	if err != nil {
		t.Fatal(err)
	}
	for i := range snapshot {
		if snapshot[i] != second.Pixels[i] {
			t.Fatalf("pixel %d differs after re-render", i)
		}
	}
}

func TestSceneCullBackFaces(t *testing.T) {
	s := loadQuadScene(t, Flags{CullBackFaces: true})
	// half a turn shows the back of the quad
	fb, err := s.Render(math3d.RotateY(3.14159265).Mul(s.Model()))
	if err != nil {
		t.Fatal(err)
	}
	if !isBackground(fb.GetPixel(32, 32)) {
		t.Error("back face was drawn")
	}
	if s.Stats().Culled != 2 {
		t.Errorf("Culled = %d, want 2", s.Stats().Culled)
	}
}

func TestSceneTexture(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, color.RGBA{0, 200, 0, 255})
		}
	}
	texPath := filepath.Join(dir, "green.png")
	f, err := os.Create(texPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s := loadQuadScene(t, Flags{Texture: texPath})
	if s.Diffuse == nil {
		t.Fatal("texture not loaded")
	}
	fb, err := s.Render(s.Model())
	if err != nil {
		t.Fatal(err)
	}
	if got := fb.GetPixel(32, 32); got != (color.RGBA{0, 200, 0, 255}) {
		t.Errorf("center = %v, want texture green", got)
	}
}

func TestSceneFaceMaterials(t *testing.T) {
	s := loadOBJScene(t, twoToneOBJ, Flags{})
	if s.Mesh.MaterialCount() != 2 {
		t.Fatalf("MaterialCount = %d, want 2", s.Mesh.MaterialCount())
	}
	s.Mesh.Materials[0].BaseColor = [4]float64{1, 0, 0, 1}
	s.Mesh.Materials[1].BaseColor = [4]float64{0, 0, 1, 1}

	for _, shader := range []string{ShaderGouraud, ShaderFlat} {
		t.Run(shader, func(t *testing.T) {
			fb, err := s.RenderWith(shader, s.Model())
			if err != nil {
				t.Fatal(err)
			}
			// the diagonal runs bottom-left to top-right in the image
			if got := fb.GetPixel(36, 36); got != render.ColorRed {
				t.Errorf("lower triangle = %v, want red", got)
			}
			if got := fb.GetPixel(28, 28); got != render.ColorBlue {
				t.Errorf("upper triangle = %v, want blue", got)
			}
		})
	}
}

func TestSceneAxes(t *testing.T) {
	count := func(fb *render.Framebuffer, c color.RGBA) int {
		n := 0
		for _, p := range fb.Pixels {
			if p == c {
				n++
			}
		}
		return n
	}

	s := loadQuadScene(t, Flags{})
	fb, err := s.Render(s.Model())
	if err != nil {
		t.Fatal(err)
	}
	if n := count(fb, render.ColorRed); n != 0 {
		t.Fatalf("%d red pixels without axes", n)
	}

	s.Config.Axes = true
	if fb, err = s.Render(s.Model()); err != nil {
		t.Fatal(err)
	}
	if count(fb, render.ColorRed) == 0 {
		t.Error("x axis not drawn")
	}
	if count(fb, render.ColorGreen) == 0 {
		t.Error("y axis not drawn")
	}
}

func TestSceneLoadMalformedGLB(t *testing.T) {
	doc := gltf.NewDocument()
	attrs := map[string]int{
		gltf.POSITION: modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
	}
	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{{
		Indices:    gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 7})),
		Attributes: attrs,
	}}}}
	doc.Nodes = []*gltf.Node{{Name: "root", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	path := filepath.Join(t.TempDir(), "broken.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}

	var cfg Config
	cfg.Resolve(Flags{Model: path})
	if _, err := Load(cfg); !errors.Is(err, render.ErrMalformedMesh) {
		t.Errorf("Load = %v, want ErrMalformedMesh", err)
	}
}

func TestSceneShadowMap(t *testing.T) {
	s := loadQuadScene(t, Flags{})
	fb, err := s.RenderShadowMap(s.Model())
	if err != nil {
		t.Fatalf("RenderShadowMap: %v", err)
	}
	c := fb.GetPixel(32, 32)
	if c.R == 0 || c.R != c.G || c.G != c.B {
		t.Errorf("center = %v, want non-black gray", c)
	}
	if fb.GetPixel(0, 0) != render.ColorBlack {
		t.Errorf("corner = %v, want black", fb.GetPixel(0, 0))
	}
}

func TestSceneResize(t *testing.T) {
	s := loadQuadScene(t, Flags{})
	if err := s.Resize(32, 16); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	fb, err := s.Render(s.Model())
	if err != nil {
		t.Fatal(err)
	}
	if fb.Width != 32 || fb.Height != 16 {
		t.Errorf("framebuffer = %dx%d, want 32x16", fb.Width, fb.Height)
	}
	if s.Camera.W != 24 || s.Camera.H != 12 {
		t.Errorf("viewport = %vx%v, want 24x12", s.Camera.W, s.Camera.H)
	}
	if err := s.Resize(0, 10); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Resize(0, 10) = %v, want ErrInvalidConfig", err)
	}
}

func TestSceneLoadErrors(t *testing.T) {
	dir := t.TempDir()
	model := writeFile(t, dir, "quad.obj", quadOBJ)

	tests := []struct {
		name  string
		flags Flags
		want  error
	}{
		{"invalid config", Flags{Model: model, Shader: "toon"}, ErrInvalidConfig},
		{"unknown model format", Flags{Model: writeFile(t, dir, "quad.stl", "")}, nil},
		{"missing model", Flags{Model: filepath.Join(dir, "none.obj")}, nil},
		{"missing texture", Flags{Model: model, Texture: filepath.Join(dir, "none.png")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.Resolve(tt.flags)
			_, err := Load(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func BenchmarkSceneRender(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "quad.obj")
	if err := os.WriteFile(path, []byte(quadOBJ), 0o644); err != nil {
		b.Fatal(err)
	}
	var cfg Config
	cfg.Resolve(Flags{Model: path, Width: 256, Height: 256, Shader: ShaderPhong})
	s, err := Load(cfg)
	if err != nil {
		b.Fatal(err)
	}
	model := s.Model()

	for b.Loop() {
		if _, err := s.Render(model); err != nil {
			b.Fatal(err)
		}
	}
}
