package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/exp/constraints"
)

const (
	tolerance   = 1.0e-6
	smallNumber = 1.0e-4
	farClip     = 1.0e20
)

var (
	plusX  = rl.Vector3{X: 1}
	plusZ  = rl.Vector3{Z: 1}
	minusZ = rl.Vector3{Z: -1}
)

// clamp restricts a value to a range
func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// axis returns component i (0=X, 1=Y, 2=Z) of v
func axis(v rl.Vector3, i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func setAxis(v *rl.Vector3, i int, val float32) {
	switch i {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
}

func distXYSq(a, b rl.Vector3) float32 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

func distXYLess(a, b rl.Vector3, dist float32) bool {
	return distXYSq(a, b) < dist*dist
}

func vecMin(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)}
}

func vecMax(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)}
}

func isZeroVec(v rl.Vector3) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

func isNaNVec(v rl.Vector3) bool {
	return math32.IsNaN(v.X) || math32.IsNaN(v.Y) || math32.IsNaN(v.Z)
}

// orthogonalize removes the component of v along the unit vector n
func orthogonalize(v, n rl.Vector3) rl.Vector3 {
	return rl.Vector3Subtract(v, rl.Vector3Scale(n, rl.Vector3DotProduct(v, n)))
}

// anyPerpendicular returns some unit vector perpendicular to the unit vector u
func anyPerpendicular(u rl.Vector3) rl.Vector3 {
	ref := plusZ
	if math32.Abs(u.Z) > 0.9 {
		ref = plusX
	}
	return rl.Vector3Normalize(rl.Vector3CrossProduct(u, ref))
}

// collisionEnergy is the kinetic energy removed by a contact
func collisionEnergy(vOld, vNew rl.Vector3, mass float32) float32 {
	dv := rl.Vector3Subtract(vOld, vNew)
	return 0.5 * mass * rl.Vector3DotProduct(dv, dv)
}
