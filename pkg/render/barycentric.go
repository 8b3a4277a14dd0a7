package render

import (
	"math"

	"github.com/taigrr/softgl/pkg/math3d"
)

// DegenerateEpsilon is the smallest doubled signed area, in square pixels,
// a triangle may have before it is treated as degenerate.
const DegenerateEpsilon = 1e-2

// degenerate is returned for triangles with no area. Its negative weight
// makes every pixel test fail.
var degenerate = math3d.V3(-1, 1, 1)

// Barycentric returns the weights of p with respect to triangle abc in the
// xy plane; z components are ignored. The weights sum to 1 and are all
// non-negative exactly when p lies inside or on the triangle. Degenerate
// triangles yield (-1, 1, 1).
func Barycentric(a, b, c, p math3d.Vec3) math3d.Vec3 {
	u := math3d.V3(c.X-a.X, b.X-a.X, a.X-p.X).Cross(math3d.V3(c.Y-a.Y, b.Y-a.Y, a.Y-p.Y))
	if math.Abs(u.Z) < DegenerateEpsilon {
		return degenerate
	}
	return math3d.V3(1-(u.X+u.Y)/u.Z, u.Y/u.Z, u.X/u.Z)
}
