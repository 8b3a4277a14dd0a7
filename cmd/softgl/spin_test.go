package main

import (
	"math"
	"testing"

	"github.com/taigrr/softgl/pkg/math3d"
)

func TestSpinDecays(t *testing.T) {
	s := NewSpin(60)
	s.Impulse(0, 0.5)

	for range 600 {
		s.Update()
	}
	if math.Abs(s.Yaw.Velocity) > 1e-3 {
		t.Errorf("velocity = %v, want it eased to zero", s.Yaw.Velocity)
	}
	if s.Yaw.Position <= 0.5 {
		t.Errorf("position = %v, want the impulse to have turned the model", s.Yaw.Position)
	}
	if s.Pitch.Position != 0 {
		t.Errorf("pitch moved: %v", s.Pitch.Position)
	}
}

func TestSpinReset(t *testing.T) {
	s := NewSpin(30)
	s.Impulse(1, 1)
	s.Update()
	s.Reset()

	if s.Matrix() != math3d.Identity() {
		t.Errorf("Matrix after reset = %v, want identity", s.Matrix())
	}
}
