package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/softgl/pkg/math3d"
	"github.com/taigrr/softgl/pkg/models"
	"github.com/taigrr/softgl/pkg/render"
)

// Scene is a loaded model with its textures, camera, and render targets.
// The targets are reused between renders, so a framebuffer returned by
// Render is only valid until the next call.
type Scene struct {
	Config Config
	Mesh   *models.Mesh
	Camera *render.Camera

	Diffuse   *render.Texture
	NormalMap *render.Texture
	Specular  *render.Texture

	fb     *render.Framebuffer
	depth  *render.DepthBuffer
	raster *render.Rasterizer
}

// Load validates cfg and loads everything it names.
func Load(cfg Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mesh, err := loadModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	s := &Scene{Config: cfg, Mesh: mesh}
	if s.Diffuse, err = loadTexture(cfg.Texture); err != nil {
		return nil, err
	}
	if s.NormalMap, err = loadTexture(cfg.NormalMap); err != nil {
		return nil, err
	}
	if s.Specular, err = loadTexture(cfg.SpecularMap); err != nil {
		return nil, err
	}

	s.Camera = newCamera(cfg.Width, cfg.Height, cfg.EyeVec(), cfg.CenterVec(), cfg.UpVec())
	if err := s.Resize(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	render.Logger().Info("scene loaded",
		"model", cfg.Model,
		"shader", cfg.Shader,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"diffuse", s.Diffuse != nil,
		"normal_map", s.NormalMap != nil,
		"specular", s.Specular != nil,
	)
	return s, nil
}

// Resize reallocates the render targets and refits the camera viewport.
func (s *Scene) Resize(width, height int) error {
	if width <= 0 || height <= 0 || width > maxDimension || height > maxDimension {
		return fmt.Errorf("%w: size %dx%d outside 1..%d", ErrInvalidConfig, width, height, maxDimension)
	}
	s.Config.Width, s.Config.Height = width, height
	s.fb = render.NewFramebuffer(width, height)
	s.depth = render.NewDepthBuffer(width, height)

	raster, err := render.NewRasterizer(s.fb, s.depth)
	if err != nil {
		return err
	}
	raster.PerspectiveCorrect = s.Config.PerspectiveCorrect
	raster.CullBackFaces = s.Config.CullBackFaces
	s.raster = raster

	w, h := float64(width), float64(height)
	s.Camera.SetViewport(w/8, h/8, w*3/4, h*3/4)
	return nil
}

func newCamera(w, h int, eye, center, up math3d.Vec3) *render.Camera {
	cam := render.NewCamera(w, h)
	cam.SetEye(eye)
	cam.SetCenter(center)
	cam.SetUp(up)
	return cam
}

// loadModel reads an OBJ or glTF file. Textures embedded in a glTF model
// stay on its materials and are sampled per face.
func loadModel(path string) (*models.Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return models.LoadOBJ(path)
	case ".glb", ".gltf":
		return models.LoadGLB(path)
	default:
		return nil, fmt.Errorf("unsupported model format %q", ext)
	}
}

func loadTexture(path string) (*render.Texture, error) {
	if path == "" {
		return nil, nil
	}
	return render.LoadTexture(path)
}

// Model returns the default model matrix: the mesh centered on the origin
// and scaled to fit [-1,1], or identity with KeepScale.
func (s *Scene) Model() math3d.Mat4 {
	if s.Config.KeepScale {
		return math3d.Identity()
	}
	return s.Mesh.Bounds().Fit()
}

// Stats returns the counters of the last render pass.
func (s *Scene) Stats() render.PassStats {
	return s.raster.Stats
}

// Render draws the mesh placed by model with the configured shader. The
// returned framebuffer has its top row first, ready for encoding.
func (s *Scene) Render(model math3d.Mat4) (*render.Framebuffer, error) {
	return s.RenderWith(s.Config.Shader, model)
}

// axisLength is the drawn length of each world axis, in the units of the
// fitted model.
const axisLength = 1.5

// RenderWith is Render with an explicit shader name.
func (s *Scene) RenderWith(shader string, model math3d.Mat4) (*render.Framebuffer, error) {
	bg := s.Config.Background
	s.fb.Clear(render.RGB(bg[0], bg[1], bg[2]))
	s.depth.Clear()

	if err := s.draw(s.Camera, s.raster, shader, model); err != nil {
		return nil, err
	}
	if s.Config.Axes {
		render.NewWireframe(s.Camera, s.fb).DrawAxes(axisLength)
	}
	s.fb.FlipVertical()
	return s.fb, nil
}

// RenderShadowMap renders the depth of the mesh as seen from the light,
// looking at the scene center from the eye's distance. Nearer is brighter.
func (s *Scene) RenderShadowMap(model math3d.Mat4) (*render.Framebuffer, error) {
	cfg := s.Config
	center := cfg.CenterVec()
	dir := cfg.LightVec().Normalize()
	eye := center.Add(dir.Scale(cfg.EyeVec().Sub(center).Len()))
	up := cfg.UpVec()
	if up.Cross(dir).Len() < 1e-9 {
		up = math3d.V3(0, 0, 1)
	}

	fb := render.NewFramebuffer(cfg.Width, cfg.Height)
	fb.Clear(render.ColorBlack)
	raster, err := render.NewRasterizer(fb, render.NewDepthBuffer(cfg.Width, cfg.Height))
	if err != nil {
		return nil, err
	}
	raster.CullBackFaces = cfg.CullBackFaces

	if err := s.draw(newCamera(cfg.Width, cfg.Height, eye, center, up), raster, ShaderShadow, model); err != nil {
		return nil, err
	}
	fb.FlipVertical()
	return fb, nil
}

func (s *Scene) draw(cam *render.Camera, raster *render.Rasterizer, name string, model math3d.Mat4) error {
	raster.ResetStats()
	u := cam.Uniforms(model, s.Config.LightVec())
	fb := raster.Framebuffer()
	if !s.Mesh.Bounds().OnScreen(u.Transform(), fb.Width, fb.Height) {
		render.Logger().Warn("model is outside the view", "eye", cam.Eye, "center", cam.Center)
	}

	if name == ShaderWireframe {
		return render.NewWireframe(cam, fb).DrawMesh(s.Mesh, model, render.ColorWhite)
	}

	shader, err := s.shader(name, u)
	if err != nil {
		return err
	}
	return raster.DrawMesh(s.Mesh, shader)
}

func (s *Scene) shader(name string, u render.Uniforms) (render.Shader, error) {
	switch name {
	case ShaderGouraud:
		sh := render.NewGouraudShader(s.Mesh, u)
		sh.Diffuse = s.Diffuse
		return sh, nil
	case ShaderFlat:
		sh := render.NewFlatShader(s.Mesh, u)
		sh.Diffuse = s.Diffuse
		return sh, nil
	case ShaderPhong:
		sh := render.NewPhongShader(s.Mesh, u)
		sh.Diffuse = s.Diffuse
		sh.NormalMap, sh.Specular = s.NormalMap, s.Specular
		return sh, nil
	case ShaderShadow:
		return render.NewShadowShader(s.Mesh, u), nil
	default:
		return nil, fmt.Errorf("%w: unknown shader %q", ErrInvalidConfig, name)
	}
}
