package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type RaycastHit struct {
	Handle   Handle
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// Raycast returns the closest collidable primitive along a ray. Candidates
// come from the grid columns the ray passes over.
func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	if isZeroVec(direction) || maxDistance <= 0 {
		return RaycastHit{}, false
	}
	direction = rl.Vector3Normalize(direction)
	closest := RaycastHit{Handle: NoHandle, Distance: maxDistance}
	hit := false
	stamp := w.nextStamp()

	g := w.grid
	stepLen := 0.5 * min(g.DX, g.DY)
	hd := math32.Sqrt(direction.X*direction.X + direction.Y*direction.Y)
	nsteps := 1
	if hd > tolerance {
		nsteps = int(maxDistance*hd/stepLen) + 2
	}
	for i := 0; i < nsteps; i++ {
		t := min(float32(i)*stepLen/max(hd, tolerance), maxDistance)
		if t > closest.Distance {
			break
		}
		pt := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
		x, y, ok := g.Column(pt.X, pt.Y)
		if !ok {
			continue
		}
		for _, h := range g.Cell(x, y).Vals {
			p := w.store.at(h)
			if p.Counter == stamp || !p.Collidable() {
				continue
			}
			p.Counter = stamp
			if info, ok := raycastPrimitive(p, origin, direction, closest.Distance); ok && info.Distance < closest.Distance {
				closest = info
				closest.Handle = h
				hit = true
			}
		}
	}
	return closest, hit
}

func raycastPrimitive(p *Primitive, origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	switch p.Kind {
	case KindCube:
		return raycastBox(origin, direction, p.Bounds, maxDistance)
	case KindSphere:
		return raycastSphere(origin, direction, p.Points[0], p.Radius, maxDistance)
	case KindCylinder:
		return raycastCylinder(origin, direction, p.Points[0], p.Radius, p.Bounds.Min.Z, p.Bounds.Max.Z, maxDistance)
	case KindPolygon:
		if p.sides != nil {
			var best RaycastHit
			found := false
			for _, f := range p.sides {
				if h, ok := raycastPolygon(origin, direction, f, polygonNormal(f), maxDistance); ok && (!found || h.Distance < best.Distance) {
					best, found = h, true
				}
			}
			return best, found
		}
		return raycastPolygon(origin, direction, p.Vertices(), p.Normal, maxDistance)
	}
	return raycastBox(origin, direction, p.Bounds, maxDistance)
}

// raycastBox is the slab test against an axis-aligned box.
func raycastBox(origin, direction rl.Vector3, b AABB, maxDistance float32) (RaycastHit, bool) {
	tmin, tmax := float32(-farClip), float32(farClip)
	for i := 0; i < 3; i++ {
		d, o := axis(direction, i), axis(origin, i)
		lo, hi := axis(b.Min, i), axis(b.Max, i)
		if d == 0 {
			if o < lo || o > hi {
				return RaycastHit{}, false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin, tmax = max(tmin, t1), min(tmax, t2)
		if tmin > tmax {
			return RaycastHit{}, false
		}
	}
	if tmax < 0 || tmin > maxDistance {
		return RaycastHit{}, false
	}
	t := tmin
	if t < 0 {
		t = tmax
	}
	if t > maxDistance {
		return RaycastHit{}, false
	}
	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))

	// the face the point lies on gives the normal
	const epsilon = 0.001
	normal := plusZ
	for i := 0; i < 3; i++ {
		if math32.Abs(axis(point, i)-axis(b.Min, i)) < epsilon {
			normal = faceNormals[2*i]
			break
		}
		if math32.Abs(axis(point, i)-axis(b.Max, i)) < epsilon {
			normal = faceNormals[2*i+1]
			break
		}
	}
	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

func raycastSphere(origin, direction, center rl.Vector3, radius, maxDistance float32) (RaycastHit, bool) {
	oc := rl.Vector3Subtract(origin, center)
	b := rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return RaycastHit{}, false
	}
	sq := math32.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}
	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))
	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

// raycastCylinder tests a vertical capped cylinder.
func raycastCylinder(origin, direction, base rl.Vector3, radius, z1, z2, maxDistance float32) (RaycastHit, bool) {
	best := RaycastHit{Distance: farClip}
	found := false
	try := func(t float32, normal rl.Vector3) {
		if t >= 0 && t <= maxDistance && t < best.Distance {
			best = RaycastHit{Point: rl.Vector3Add(origin, rl.Vector3Scale(direction, t)), Normal: normal, Distance: t}
			found = true
		}
	}
	ox, oy := origin.X-base.X, origin.Y-base.Y
	a := direction.X*direction.X + direction.Y*direction.Y
	if a > tolerance {
		b := ox*direction.X + oy*direction.Y
		c := ox*ox + oy*oy - radius*radius
		if disc := b*b - a*c; disc >= 0 {
			sq := math32.Sqrt(disc)
			for _, t := range [2]float32{(-b - sq) / a, (-b + sq) / a} {
				z := origin.Z + t*direction.Z
				if z >= z1 && z <= z2 {
					px, py := ox+t*direction.X, oy+t*direction.Y
					try(t, rl.Vector3{X: px / radius, Y: py / radius})
				}
			}
		}
	}
	if math32.Abs(direction.Z) > tolerance {
		for _, capZ := range [2]float32{z1, z2} {
			t := (capZ - origin.Z) / direction.Z
			px, py := ox+t*direction.X, oy+t*direction.Y
			if px*px+py*py <= radius*radius {
				n := plusZ
				if capZ == z1 {
					n = minusZ
				}
				try(t, n)
			}
		}
	}
	return best, found
}

func raycastPolygon(origin, direction rl.Vector3, pts []rl.Vector3, n rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	denom := rl.Vector3DotProduct(n, direction)
	if math32.Abs(denom) < tolerance {
		return RaycastHit{}, false
	}
	t := rl.Vector3DotProduct(n, rl.Vector3Subtract(pts[0], origin)) / denom
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}
	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	if !pointInConvexPolygon(pts, point, n, tolerance) {
		return RaycastHit{}, false
	}
	if denom > 0 {
		n = rl.Vector3Scale(n, -1)
	}
	return RaycastHit{Point: point, Normal: n, Distance: t}, true
}
