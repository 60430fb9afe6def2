package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// AABB is an axis-aligned box in the Z-up collision world.
type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// NewAABB builds a box from per-axis ranges, swapping inverted pairs.
func NewAABB(x1, x2, y1, y2, z1, z2 float32) AABB {
	return AABB{
		Min: rl.Vector3{X: min(x1, x2), Y: min(y1, y2), Z: min(z1, z2)},
		Max: rl.Vector3{X: max(x1, x2), Y: max(y1, y2), Z: max(z1, z2)},
	}
}

// NewAABBFromCenter creates an AABB from a center point and full size dimensions.
func NewAABBFromCenter(center, size rl.Vector3) AABB {
	half := rl.Vector3{X: size.X / 2, Y: size.Y / 2, Z: size.Z / 2}
	return AABB{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

func (a AABB) Valid() bool {
	return a.Min.X <= a.Max.X && a.Min.Y <= a.Max.Y && a.Min.Z <= a.Max.Z
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

func (a AABB) Center() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(a.Min, a.Max), 0.5)
}

func (a AABB) Size() rl.Vector3 {
	return rl.Vector3Subtract(a.Max, a.Min)
}

// ContainsXY reports whether p lies inside the box's horizontal footprint.
func (a AABB) ContainsXY(p rl.Vector3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X && p.Y >= a.Min.Y && p.Y <= a.Max.Y
}

func (a AABB) Contains(p rl.Vector3) bool {
	return a.ContainsXY(p) && p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// Expand grows the box by r on every side.
func (a AABB) Expand(r float32) AABB {
	e := rl.Vector3{X: r, Y: r, Z: r}
	return AABB{Min: rl.Vector3Subtract(a.Min, e), Max: rl.Vector3Add(a.Max, e)}
}

// Sweep extends the box to cover every translation between zero and delta.
func (a AABB) Sweep(delta rl.Vector3) AABB {
	return AABB{
		Min: rl.Vector3{X: a.Min.X + min(delta.X, 0), Y: a.Min.Y + min(delta.Y, 0), Z: a.Min.Z + min(delta.Z, 0)},
		Max: rl.Vector3{X: a.Max.X + max(delta.X, 0), Y: a.Max.Y + max(delta.Y, 0), Z: a.Max.Z + max(delta.Z, 0)},
	}
}

// ClosestPoint returns the point of the box nearest to p.
func (a AABB) ClosestPoint(p rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: clamp(p.X, a.Min.X, a.Max.X),
		Y: clamp(p.Y, a.Min.Y, a.Max.Y),
		Z: clamp(p.Z, a.Min.Z, a.Max.Z),
	}
}

// DistXY is the horizontal distance from p to the box footprint (0 inside).
func (a AABB) DistXY(p rl.Vector3) float32 {
	dx := max(a.Min.X-p.X, 0, p.X-a.Max.X)
	dy := max(a.Min.Y-p.Y, 0, p.Y-a.Max.Y)
	return math32.Sqrt(dx*dx + dy*dy)
}

func (a AABB) IntersectsSphere(center rl.Vector3, radius float32) bool {
	d := rl.Vector3Subtract(center, a.ClosestPoint(center))
	return rl.Vector3DotProduct(d, d) <= radius*radius
}

// penetrationFace returns the face of the box (expanded by r) through which p
// escapes with the least travel, with that travel distance.
// Face ids: 0=-X 1=+X 2=-Y 3=+Y 4=-Z 5=+Z.
func (a AABB) penetrationFace(p rl.Vector3, r float32) (face int, depth float32) {
	depth = farClip
	for i := 0; i < 3; i++ {
		lo := axis(a.Min, i) - r
		hi := axis(a.Max, i) + r
		v := axis(p, i)
		if d := v - lo; d < depth {
			depth, face = d, 2*i
		}
		if d := hi - v; d < depth {
			depth, face = d, 2*i+1
		}
	}
	return face, depth
}
