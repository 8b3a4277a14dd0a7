package render

import (
	"errors"
	"testing"

	"github.com/taigrr/softgl/pkg/math3d"
)

func TestWireframeDrawMesh(t *testing.T) {
	fb := NewFramebuffer(64, 64)
	w := NewWireframe(frontCamera(64), fb)

	if err := w.DrawMesh(quadMesh(), math3d.Identity(), ColorGreen); err != nil {
		t.Fatalf("DrawMesh: %v", err)
	}

	// outline corners and the shared diagonal are drawn, the interior is not
	for _, p := range [][2]int{{8, 8}, {56, 8}, {56, 56}, {8, 56}, {32, 32}} {
		if fb.GetPixel(p[0], p[1]) != ColorGreen {
			t.Errorf("pixel %v not drawn", p)
		}
	}
	if fb.GetPixel(20, 44) != (Color{}) {
		t.Error("interior pixel drawn")
	}

	bad := quadMesh()
	bad.faces[1][2] = 10
	if err := w.DrawMesh(bad, math3d.Identity(), ColorGreen); !errors.Is(err, ErrMalformedMesh) {
		t.Errorf("err = %v, want ErrMalformedMesh", err)
	}
}

func TestWireframeSkipsSegmentsBehindEye(t *testing.T) {
	fb := NewFramebuffer(32, 32)
	cam := frontCamera(32)
	w := NewWireframe(cam, fb)

	w.DrawLine3D(math3d.V3(0, 0, 0), math3d.V3(0, 0, 10), ColorWhite)
	if n := countFilled(fb); n != 0 {
		t.Errorf("segment crossing the eye plane drew %d pixels", n)
	}

	w.DrawAxes(1)
	if countFilled(fb) == 0 {
		t.Error("DrawAxes drew nothing")
	}
}
