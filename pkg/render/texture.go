package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	"github.com/taigrr/softgl/pkg/math3d"

	_ "github.com/ftrvxmtrx/tga" // register TGA decoder
	_ "golang.org/x/image/bmp"   // register BMP decoder
)

// Texture is an RGBA image addressed in texture space: row 0 is the bottom
// of the picture, so v=0 samples the bottom edge as UV coordinates expect.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // row-major, bottom row first
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture decodes a PNG, JPEG, TGA or BMP file into a texture.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	tex := TextureFromImage(img)
	Logger().Debug("texture loaded", "path", path, "format", format, "width", tex.Width, "height", tex.Height)
	return tex, nil
}

// TextureFromImage copies img into a texture, flipping it so the top row
// of the image ends up at v=1.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	tex := NewTexture(width, height)

	for y := range height {
		for x := range width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			tex.SetPixel(x, height-1-y, Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			})
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a texel. Out-of-bounds writes are dropped.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the texel at (x, y), or transparent black outside the
// texture.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the nearest texel to uv scaled into pixel space.
// Coordinates are neither wrapped nor clamped: keeping them in [0,1) is
// the caller's job, and anything outside reads as transparent black.
func (t *Texture) Sample(uv math3d.Vec2) Color {
	return t.GetPixel(int(uv.X*float64(t.Width)), int(uv.Y*float64(t.Height)))
}

// MultiplyColor scales the RGB channels of c, clamping to [0, 255].
func MultiplyColor(c Color, intensity float64) Color {
	return Color{
		R: clampByte(float64(c.R) * intensity),
		G: clampByte(float64(c.G) * intensity),
		B: clampByte(float64(c.B) * intensity),
		A: c.A,
	}
}

// ModulateColor multiplies two colors channel by channel.
func ModulateColor(a, b Color) Color {
	return Color{
		R: uint8((int(a.R) * int(b.R)) / 255),
		G: uint8((int(a.G) * int(b.G)) / 255),
		B: uint8((int(a.B) * int(b.B)) / 255),
		A: uint8((int(a.A) * int(b.A)) / 255),
	}
}
