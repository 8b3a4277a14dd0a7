package render

import (
	"math"
	"testing"

	"github.com/taigrr/softgl/pkg/math3d"
)

func TestAABBBasics(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -2, -3), math3d.V3(1, 2, 3))

	if c := box.Center(); c != (math3d.Vec3{}) {
		t.Errorf("Center() = %v, want origin", c)
	}
	if s := box.Size(); s != math3d.V3(2, 4, 6) {
		t.Errorf("Size() = %v, want (2,4,6)", s)
	}
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	moved := box.Transform(math3d.Translate(math3d.V3(5, 0, 0)))
	if moved.Min != math3d.V3(4, -1, -1) || moved.Max != math3d.V3(6, 1, 1) {
		t.Errorf("translated box = %+v", moved)
	}

	// a 45 degree turn widens the box by sqrt(2)
	rotated := box.Transform(math3d.RotateY(math.Pi / 4))
	if math.Abs(rotated.Max.X-math.Sqrt2) > 1e-9 {
		t.Errorf("rotated Max.X = %v, want %v", rotated.Max.X, math.Sqrt2)
	}
}

func TestMeshBounds(t *testing.T) {
	b := MeshBounds(quadMesh())
	if b.Min != math3d.V3(-1, -1, 0) || b.Max != math3d.V3(1, 1, 0) {
		t.Errorf("MeshBounds = %+v", b)
	}
	if got := MeshBounds(&mockMesh{}); got != (AABB{}) {
		t.Errorf("empty mesh bounds = %+v, want zero", got)
	}
}

func TestAABBFit(t *testing.T) {
	box := NewAABB(math3d.V3(10, 10, 10), math3d.V3(14, 12, 11))
	fitted := box.Transform(box.Fit())

	if c := fitted.Center(); c.Len() > 1e-9 {
		t.Errorf("fitted center = %v, want origin", c)
	}
	if s := fitted.Size(); math.Abs(s.X-2) > 1e-9 || math.Abs(s.Y-1) > 1e-9 {
		t.Errorf("fitted size = %v, want (2,1,0.5)", s)
	}

	flat := NewAABB(math3d.V3(3, 3, 3), math3d.V3(3, 3, 3))
	if c := flat.Transform(flat.Fit()).Center(); c.Len() > 1e-9 {
		t.Errorf("point box center = %v, want origin", c)
	}
}

func TestAABBOnScreen(t *testing.T) {
	cam := NewCamera(100, 100)
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	if !box.OnScreen(cam.Transform(), 100, 100) {
		t.Error("unit box at the origin should be on screen")
	}
	// slide along the camera's x axis so the box stays in front of the eye
	far := box.Transform(math3d.Translate(math3d.V3(60, 0, -20)))
	if far.OnScreen(cam.Transform(), 100, 100) {
		t.Error("box far to the side should be off screen")
	}
}
