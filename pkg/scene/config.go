// Package scene turns a Config into rendered images: it loads the model
// and textures, sets up the camera, picks a shader, runs the render pass,
// and encodes the result.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/softgl/pkg/math3d"
	"github.com/taigrr/softgl/pkg/models"
)

// ErrInvalidConfig is wrapped by every Validate error.
var ErrInvalidConfig = errors.New("invalid config")

// Shader names accepted in Config.Shader.
const (
	ShaderGouraud   = "gouraud"
	ShaderFlat      = "flat"
	ShaderPhong     = "phong"
	ShaderShadow    = "shadow"
	ShaderWireframe = "wireframe"
)

// maxDimension bounds the output size so a typo cannot allocate gigabytes.
const maxDimension = 16384

// Config describes one render. Vectors are [x, y, z] arrays in JSON.
type Config struct {
	// Paths
	Model       string `json:"model"`
	Output      string `json:"output"`
	Texture     string `json:"texture"`
	NormalMap   string `json:"normal_map"`
	SpecularMap string `json:"specular_map"`
	ShadowMap   string `json:"shadow_map"` // optional light-space depth image

	// Render settings
	Width              int         `json:"width"`
	Height             int         `json:"height"`
	Shader             string      `json:"shader"`
	Eye                *[3]float64 `json:"eye"`
	Center             *[3]float64 `json:"center"`
	Up                 *[3]float64 `json:"up"`
	Light              *[3]float64 `json:"light"`
	Background         [3]uint8    `json:"background"`
	PerspectiveCorrect bool        `json:"perspective_correct"`
	CullBackFaces      bool        `json:"cull_back_faces"`
	KeepScale          bool        `json:"keep_scale"` // skip fitting the model into [-1,1]
	Axes               bool        `json:"axes"`       // overlay the world axes
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Model       string
	Output      string
	Texture     string
	NormalMap   string
	SpecularMap string
	ShadowMap   string

	Width  int
	Height int
	Shader string

	Eye, Center, Up, Light *math3d.Vec3

	PerspectiveCorrect bool
	CullBackFaces      bool
	Axes               bool
}

// LoadConfig reads a JSON config file. Relative paths inside it are taken
// relative to the file's directory. Fields not set in the file keep their
// zero values until Resolve.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.Model, &cfg.Output, &cfg.Texture, &cfg.NormalMap, &cfg.SpecularMap, &cfg.ShadowMap} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return cfg, nil
}

// Resolve applies flags over the file values, then fills every field
// still empty with its default. When no texture is named at all, the
// <model>_diffuse.tga, _nm.tga and _spec.tga files next to the model are
// picked up if present.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&c.Model, flags.Model)
	override(&c.Output, flags.Output)
	override(&c.Texture, flags.Texture)
	override(&c.NormalMap, flags.NormalMap)
	override(&c.SpecularMap, flags.SpecularMap)
	override(&c.ShadowMap, flags.ShadowMap)
	override(&c.Shader, flags.Shader)
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	for _, v := range []struct {
		dst **[3]float64
		src *math3d.Vec3
	}{
		{&c.Eye, flags.Eye},
		{&c.Center, flags.Center},
		{&c.Up, flags.Up},
		{&c.Light, flags.Light},
	} {
		if v.src != nil {
			*v.dst = &[3]float64{v.src.X, v.src.Y, v.src.Z}
		}
	}
	c.PerspectiveCorrect = c.PerspectiveCorrect || flags.PerspectiveCorrect
	c.CullBackFaces = c.CullBackFaces || flags.CullBackFaces
	c.Axes = c.Axes || flags.Axes

	// Defaults
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 800
	}
	if c.Shader == "" {
		c.Shader = ShaderGouraud
	}
	if c.Output == "" {
		c.Output = "output.png"
	}
	if c.Eye == nil {
		c.Eye = &[3]float64{1, 1, 3}
	}
	if c.Center == nil {
		c.Center = &[3]float64{0, 0, 0}
	}
	if c.Up == nil {
		c.Up = &[3]float64{0, 1, 0}
	}
	if c.Light == nil {
		c.Light = &[3]float64{1, 1, 1}
	}

	if c.Model != "" && c.Texture == "" && c.NormalMap == "" && c.SpecularMap == "" {
		c.Texture, c.NormalMap, c.SpecularMap = models.CompanionTextures(c.Model)
	}
}

// Validate checks a resolved config.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: no model given", ErrInvalidConfig)
	}
	if c.Width <= 0 || c.Height <= 0 || c.Width > maxDimension || c.Height > maxDimension {
		return fmt.Errorf("%w: size %dx%d outside 1..%d", ErrInvalidConfig, c.Width, c.Height, maxDimension)
	}
	switch c.Shader {
	case ShaderGouraud, ShaderFlat, ShaderPhong, ShaderShadow, ShaderWireframe:
	default:
		return fmt.Errorf("%w: unknown shader %q", ErrInvalidConfig, c.Shader)
	}
	if _, err := FormatFromPath(c.Output); err != nil {
		return fmt.Errorf("%w: output: %v", ErrInvalidConfig, err)
	}
	if c.ShadowMap != "" {
		if _, err := FormatFromPath(c.ShadowMap); err != nil {
			return fmt.Errorf("%w: shadow map: %v", ErrInvalidConfig, err)
		}
	}
	if c.Eye == nil || c.Center == nil || c.Up == nil || c.Light == nil {
		return fmt.Errorf("%w: camera vectors not resolved", ErrInvalidConfig)
	}

	eye, center, up, light := c.EyeVec(), c.CenterVec(), c.UpVec(), c.LightVec()
	for name, v := range map[string]math3d.Vec3{"eye": eye, "center": center, "up": up, "light": light} {
		if !v.IsFinite() {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, name)
		}
	}
	forward := eye.Sub(center)
	if forward.Len() == 0 {
		return fmt.Errorf("%w: eye and center coincide", ErrInvalidConfig)
	}
	if up.Cross(forward).Len() < 1e-9 {
		return fmt.Errorf("%w: up is parallel to the view direction", ErrInvalidConfig)
	}
	if light.Len() == 0 {
		return fmt.Errorf("%w: light direction is zero", ErrInvalidConfig)
	}
	return nil
}

// EyeVec returns the eye position.
func (c Config) EyeVec() math3d.Vec3 { return vec(c.Eye) }

// CenterVec returns the look-at point.
func (c Config) CenterVec() math3d.Vec3 { return vec(c.Center) }

// UpVec returns the up hint.
func (c Config) UpVec() math3d.Vec3 { return vec(c.Up) }

// LightVec returns the direction towards the light.
func (c Config) LightVec() math3d.Vec3 { return vec(c.Light) }

func vec(a *[3]float64) math3d.Vec3 {
	if a == nil {
		return math3d.Vec3{}
	}
	return math3d.V3(a[0], a[1], a[2])
}

// ParseVec3 parses "x,y,z".
func ParseVec3(s string) (math3d.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math3d.Vec3{}, fmt.Errorf("vector %q: want x,y,z", s)
	}
	var out [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("vector %q: %w", s, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return math3d.Vec3{}, fmt.Errorf("vector %q: component %d is not finite", s, i)
		}
		out[i] = f
	}
	return math3d.V3(out[0], out[1], out[2]), nil
}
