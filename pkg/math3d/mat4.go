package math3d

import "math"

// DepthScale is the depth range the default viewport maps z into.
const DepthScale = 255.0

// Mat4 is a 4x4 matrix stored in column-major order.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = s, s, s
	return m
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// LookAt builds the model-view matrix for a camera at eye looking at center.
//
// The camera basis is z = normalize(eye-center), x = normalize(up × z),
// y = z × x. The rows of the rotation are x, y, z and the result is composed
// with a translation by -center, so center maps to the origin.
func LookAt(eye, center, up Vec3) Mat4 {
	z := eye.Sub(center).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x).Normalize()

	return Mat4{
		x.X, y.X, z.X, 0,
		x.Y, y.Y, z.Y, 0,
		x.Z, y.Z, z.Z, 0,
		-x.Dot(center), -y.Dot(center), -z.Dot(center), 1,
	}
}

// Projection returns the one-parameter perspective matrix: identity with
// element (3,2) set to -1/distance. A zero distance yields identity
// (orthographic).
func Projection(distance float64) Mat4 {
	m := Identity()
	if distance != 0 {
		m.Set(3, 2, -1/distance)
	}
	return m
}

// Viewport maps normalized device coordinates [-1,1] onto the pixel
// rectangle [x, x+w] × [y, y+h] and z onto [0, DepthScale].
func Viewport(x, y, w, h float64) Mat4 {
	return ViewportDepth(x, y, w, h, DepthScale)
}

// ViewportDepth is Viewport with an explicit depth range [0, depth].
func ViewportDepth(x, y, w, h, depth float64) Mat4 {
	return Mat4{
		w / 2, 0, 0, 0,
		0, h / 2, 0, 0,
		0, 0, depth / 2, 0,
		x + w/2, y + h/2, depth / 2, 1,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3 as a point (w=1) and divides by the result's w.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec4(Embed(v, 1)).PerspectiveDivide()
}

// MulVec3Dir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	return m[0]*m.cofactor(0, 0) + m[4]*m.cofactor(0, 1) + m[8]*m.cofactor(0, 2) + m[12]*m.cofactor(0, 3)
}

// Inverse returns the inverse of the matrix.
// Returns identity if the matrix is singular.
func (m Mat4) Inverse() Mat4 {
	det := m.Determinant()
	if det == 0 {
		return Identity()
	}
	var inv Mat4
	for row := range 4 {
		for col := range 4 {
			// adjugate is the transposed cofactor matrix
			inv.Set(col, row, m.cofactor(row, col)/det)
		}
	}
	return inv
}

// InverseTranspose returns (m^-1)^T, the matrix that carries normals
// through m.
func (m Mat4) InverseTranspose() Mat4 {
	return m.Inverse().Transpose()
}

// cofactor returns the signed minor of element (row, col).
func (m Mat4) cofactor(row, col int) float64 {
	var sub [9]float64
	i := 0
	for c := range 4 {
		if c == col {
			continue
		}
		for r := range 4 {
			if r == row {
				continue
			}
			sub[i] = m.Get(r, c)
			i++
		}
	}
	// sub is column-major 3x3
	minor := sub[0]*(sub[4]*sub[8]-sub[7]*sub[5]) -
		sub[3]*(sub[1]*sub[8]-sub[7]*sub[2]) +
		sub[6]*(sub[1]*sub[5]-sub[4]*sub[2])
	if (row+col)%2 == 1 {
		return -minor
	}
	return minor
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row+col*4]
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	m[row+col*4] = val
}
