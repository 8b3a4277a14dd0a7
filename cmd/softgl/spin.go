package main

import (
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/softgl/pkg/math3d"
)

// SpinAxis tracks an angle and an angular velocity that a spring eases
// back to zero.
type SpinAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity of Velocity itself
}

// NewSpinAxis creates an axis decaying at frequency 4, critically damped.
func NewSpinAxis(fps int) SpinAxis {
	return SpinAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update advances one frame.
func (a *SpinAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Spin is the turntable state of the viewer.
type Spin struct {
	Pitch, Yaw SpinAxis
	fps        int
}

// NewSpin creates a turntable at rest.
func NewSpin(fps int) *Spin {
	return &Spin{
		Pitch: NewSpinAxis(fps),
		Yaw:   NewSpinAxis(fps),
		fps:   fps,
	}
}

// Update advances both axes one frame.
func (s *Spin) Update() {
	s.Pitch.Update()
	s.Yaw.Update()
}

// Impulse adds angular velocity.
func (s *Spin) Impulse(pitch, yaw float64) {
	s.Pitch.Velocity += pitch
	s.Yaw.Velocity += yaw
}

// Reset stops the turntable and returns it to the starting angle.
func (s *Spin) Reset() {
	s.Pitch = NewSpinAxis(s.fps)
	s.Yaw = NewSpinAxis(s.fps)
}

// Matrix is the rotation to apply before the model matrix.
func (s *Spin) Matrix() math3d.Mat4 {
	return math3d.RotateX(s.Pitch.Position).Mul(math3d.RotateY(s.Yaw.Position))
}
