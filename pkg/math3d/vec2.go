package math3d

// Vec2 represents a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Blend2 combines three vectors with barycentric weights bar.
func Blend2(v [3]Vec2, bar Vec3) Vec2 {
	return Vec2{
		v[0].X*bar.X + v[1].X*bar.Y + v[2].X*bar.Z,
		v[0].Y*bar.X + v[1].Y*bar.Y + v[2].Y*bar.Z,
	}
}
