// softgl - software rasterizer
// Renders OBJ and GLB models to an image file, or previews them in the
// terminal.
//
// Preview controls:
//
//	W/S, Up/Down     - Pitch
//	A/D, Left/Right  - Yaw
//	R                - Reset rotation
//	X                - Toggle wireframe
//	G                - Toggle axes
//	Esc, Ctrl+C      - Quit
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/taigrr/softgl/pkg/math3d"
	"github.com/taigrr/softgl/pkg/render"
	"github.com/taigrr/softgl/pkg/scene"
)

var (
	configPath  = flag.String("config", "", "Scene config file (JSON); flags override it")
	outputPath  = flag.String("o", "", "Output image (.png .jpg .tga .webp .bmp .tiff)")
	shaderName  = flag.String("shader", "", "Shader: gouraud, flat, phong, shadow, wireframe")
	texturePath = flag.String("texture", "", "Diffuse texture")
	normalPath  = flag.String("normal", "", "Normal map")
	specPath    = flag.String("specular", "", "Specular map")
	shadowPath  = flag.String("shadow", "", "Also write the light-space depth map here")
	width       = flag.Int("width", 0, "Output width (default 800)")
	height      = flag.Int("height", 0, "Output height (default 800)")
	eyeFlag     = flag.String("eye", "", "Camera position x,y,z (default 1,1,3)")
	centerFlag  = flag.String("center", "", "Look-at point x,y,z (default 0,0,0)")
	upFlag      = flag.String("up", "", "Up direction x,y,z (default 0,1,0)")
	lightFlag   = flag.String("light", "", "Direction towards the light x,y,z (default 1,1,1)")
	perspective = flag.Bool("perspective", false, "Perspective-correct texture coordinates")
	cull        = flag.Bool("cull", false, "Skip back-facing triangles")
	axes        = flag.Bool("axes", false, "Draw the world axes over the model")
	preview     = flag.Bool("preview", false, "Interactive terminal preview instead of writing a file")
	targetFPS   = flag.Int("fps", 30, "Preview frame rate")
	verbose     = flag.Bool("v", false, "Debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softgl - software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softgl [options] <model.obj|model.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nPreview controls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D, arrows - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  R               - Reset rotation\n")
		fmt.Fprintf(os.Stderr, "  X               - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  G               - Toggle axes\n")
		fmt.Fprintf(os.Stderr, "  Esc             - Quit\n")
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags, err := parseFlags()
	if err != nil {
		return err
	}

	var cfg scene.Config
	if *configPath != "" {
		if cfg, err = scene.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	cfg.Resolve(flags)

	if *preview {
		return runPreview(cfg, *targetFPS)
	}

	s, err := scene.Load(cfg)
	if err != nil {
		return err
	}

	fb, err := s.Render(s.Model())
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := scene.Save(cfg.Output, fb); err != nil {
		return err
	}

	if cfg.ShadowMap != "" {
		shadow, err := s.RenderShadowMap(s.Model())
		if err != nil {
			return fmt.Errorf("render shadow map: %w", err)
		}
		if err := scene.Save(cfg.ShadowMap, shadow); err != nil {
			return err
		}
	}
	return nil
}

func parseFlags() (scene.Flags, error) {
	if flag.NArg() > 1 {
		return scene.Flags{}, fmt.Errorf("expected one model, got %d arguments", flag.NArg())
	}

	flags := scene.Flags{
		Model:              flag.Arg(0),
		Output:             *outputPath,
		Texture:            *texturePath,
		NormalMap:          *normalPath,
		SpecularMap:        *specPath,
		ShadowMap:          *shadowPath,
		Width:              *width,
		Height:             *height,
		Shader:             *shaderName,
		PerspectiveCorrect: *perspective,
		CullBackFaces:      *cull,
		Axes:               *axes,
	}

	for _, v := range []struct {
		name string
		val  string
		dst  **math3d.Vec3
	}{
		{"eye", *eyeFlag, &flags.Eye},
		{"center", *centerFlag, &flags.Center},
		{"up", *upFlag, &flags.Up},
		{"light", *lightFlag, &flags.Light},
	} {
		if v.val == "" {
			continue
		}
		p, err := scene.ParseVec3(v.val)
		if err != nil {
			return scene.Flags{}, fmt.Errorf("-%s: %w", v.name, err)
		}
		*v.dst = &p
	}
	return flags, nil
}
