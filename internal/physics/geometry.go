package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Cube face ids, in the order penetrationFace reports them.
const (
	faceNegX = iota
	facePosX
	faceNegY
	facePosY
	faceNegZ
	facePosZ
)

var faceNormals = [6]rl.Vector3{
	{X: -1}, {X: 1}, {Y: -1}, {Y: 1}, {Z: -1}, {Z: 1},
}

type cubeContact struct {
	Pos    rl.Vector3
	Normal rl.Vector3
	Face   int
}

// sphereCubeContact pushes a sphere at pos out of box b. The exit face is the
// one the segment prev->pos entered through, or the shallowest face when
// prev was already inside.
func sphereCubeContact(pos, prev rl.Vector3, r float32, b AABB) (cubeContact, bool) {
	e := b.Expand(r)
	if !e.Contains(pos) {
		return cubeContact{}, false
	}
	d := rl.Vector3Subtract(pos, prev)
	face := -1
	tEnter := float32(-farClip)
	for i := 0; i < 3; i++ {
		di := axis(d, i)
		if math32.Abs(di) < tolerance {
			continue
		}
		lo, hi := axis(e.Min, i), axis(e.Max, i)
		t1 := (lo - axis(prev, i)) / di
		t2 := (hi - axis(prev, i)) / di
		near, f := t1, 2*i
		if t2 < t1 {
			near, f = t2, 2*i+1
		}
		if near > tEnter {
			tEnter, face = near, f
		}
	}
	if face < 0 || tEnter < 0 {
		face, _ = b.penetrationFace(pos, r)
	}
	c := cubeContact{Pos: pos, Normal: faceNormals[face], Face: face}
	i := face / 2
	if face%2 == 0 {
		setAxis(&c.Pos, i, axis(e.Min, i))
	} else {
		setAxis(&c.Pos, i, axis(e.Max, i))
	}
	return c, true
}

type segment2 struct {
	a, b [2]float32
	n    [2]float32
}

func closestOnSegment2(s segment2, q [2]float32) [2]float32 {
	dx, dy := s.b[0]-s.a[0], s.b[1]-s.a[1]
	l2 := dx*dx + dy*dy
	if l2 < tolerance*tolerance {
		return s.a
	}
	t := clamp(((q[0]-s.a[0])*dx+(q[1]-s.a[1])*dy)/l2, 0, 1)
	return [2]float32{s.a[0] + t*dx, s.a[1] + t*dy}
}

// sphereConeContact resolves a sphere against a cone frustum with radius r1
// at p1 and r2 at p2. The test is exact: the frustum is symmetric about its
// axis, so the problem reduces to the plane through the axis and the sphere
// center. Without caps only the lateral surface pushes.
func sphereConeContact(c rl.Vector3, r float32, p1, p2 rl.Vector3, r1, r2 float32, caps bool) (pos, norm rl.Vector3, ok bool) {
	u := rl.Vector3Subtract(p2, p1)
	l := rl.Vector3Length(u)
	if l < tolerance {
		return c, rl.Vector3{}, false
	}
	u = rl.Vector3Scale(u, 1/l)
	w := rl.Vector3Subtract(c, p1)
	t := rl.Vector3DotProduct(w, u)
	radial := rl.Vector3Subtract(w, rl.Vector3Scale(u, t))
	rd := rl.Vector3Length(radial)
	var e rl.Vector3
	if rd > tolerance {
		e = rl.Vector3Scale(radial, 1/rd)
	} else {
		e = anyPerpendicular(u)
	}
	q := [2]float32{t, rd}

	sl := math32.Sqrt(l*l + (r2-r1)*(r2-r1))
	segs := []segment2{{a: [2]float32{0, r1}, b: [2]float32{l, r2}, n: [2]float32{-(r2 - r1) / sl, l / sl}}}
	if caps {
		segs = append(segs,
			segment2{a: [2]float32{0, 0}, b: [2]float32{0, r1}, n: [2]float32{-1, 0}},
			segment2{a: [2]float32{l, 0}, b: [2]float32{l, r2}, n: [2]float32{1, 0}},
		)
	}
	inside := t >= 0 && t <= l && rd <= r1+(r2-r1)*t/l
	best, bestDist := 0, float32(farClip)
	var bestPt [2]float32
	for i, s := range segs {
		pt := closestOnSegment2(s, q)
		dx, dy := q[0]-pt[0], q[1]-pt[1]
		if d := math32.Sqrt(dx*dx + dy*dy); d < bestDist {
			best, bestDist, bestPt = i, d, pt
		}
	}
	if !inside && bestDist >= r {
		return c, rl.Vector3{}, false
	}
	n2 := segs[best].n
	if !inside && bestDist > tolerance {
		n2 = [2]float32{(q[0] - bestPt[0]) / bestDist, (q[1] - bestPt[1]) / bestDist}
	}
	norm = rl.Vector3Add(rl.Vector3Scale(u, n2[0]), rl.Vector3Scale(e, n2[1]))
	qt := bestPt[0] + n2[0]*r
	qs := bestPt[1] + n2[1]*r
	pos = rl.Vector3Add(p1, rl.Vector3Add(rl.Vector3Scale(u, qt), rl.Vector3Scale(e, qs)))
	return pos, norm, true
}

// lineConeInterval returns the z range where the vertical line through (x, y)
// is inside the cone frustum, as the hull of the solid pieces.
func lineConeInterval(x, y float32, p1, p2 rl.Vector3, r1, r2 float32) (lo, hi float32, ok bool) {
	u := rl.Vector3Subtract(p2, p1)
	l := rl.Vector3Length(u)
	if l < tolerance {
		return 0, 0, false
	}
	u = rl.Vector3Scale(u, 1/l)
	w0 := rl.Vector3{X: x - p1.X, Y: y - p1.Y, Z: -p1.Z}
	k := (r2 - r1) / l
	a := rl.Vector3DotProduct(w0, u)
	b := u.Z
	cc := r1 + k*a
	dd := k * b
	qa := 1 - b*b - dd*dd
	qb := 2 * (w0.Z - a*b - cc*dd)
	qc := rl.Vector3DotProduct(w0, w0) - a*a - cc*cc

	// axial range: 0 <= a + b*z <= l
	tlo, thi := float32(-farClip), float32(farClip)
	if math32.Abs(b) < tolerance {
		if a < 0 || a > l {
			return 0, 0, false
		}
	} else {
		z1, z2 := -a/b, (l-a)/b
		tlo, thi = min(z1, z2), max(z1, z2)
	}

	var pieces [][2]float32
	switch {
	case math32.Abs(qa) < tolerance:
		switch {
		case math32.Abs(qb) < tolerance:
			if qc <= 0 {
				pieces = append(pieces, [2]float32{-farClip, farClip})
			}
		case qb > 0:
			pieces = append(pieces, [2]float32{-farClip, -qc / qb})
		default:
			pieces = append(pieces, [2]float32{-qc / qb, farClip})
		}
	default:
		disc := qb*qb - 4*qa*qc
		if disc < 0 {
			if qa < 0 {
				pieces = append(pieces, [2]float32{-farClip, farClip})
			}
			break
		}
		sq := math32.Sqrt(disc)
		z1, z2 := (-qb-sq)/(2*qa), (-qb+sq)/(2*qa)
		if z1 > z2 {
			z1, z2 = z2, z1
		}
		if qa > 0 {
			pieces = append(pieces, [2]float32{z1, z2})
		} else {
			pieces = append(pieces, [2]float32{-farClip, z1}, [2]float32{z2, farClip})
		}
	}
	lo, hi = farClip, -farClip
	for _, pc := range pieces {
		s, e := max(pc[0], tlo), min(pc[1], thi)
		if s > e {
			continue
		}
		lo, hi, ok = min(lo, s), max(hi, e), true
	}
	return lo, hi, ok
}

// polygonNormal computes the unit normal of a planar polygon (Newell's method).
func polygonNormal(pts []rl.Vector3) rl.Vector3 {
	var n rl.Vector3
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	if rl.Vector3Length(n) < tolerance {
		return rl.Vector3{}
	}
	return rl.Vector3Normalize(n)
}

func centroid(pts []rl.Vector3) rl.Vector3 {
	var c rl.Vector3
	for _, v := range pts {
		c = rl.Vector3Add(c, v)
	}
	return rl.Vector3Scale(c, 1/float32(len(pts)))
}

// pointInConvexPolygon tests p projected along n against a convex polygon
// whose edges are pushed outward by expand.
func pointInConvexPolygon(pts []rl.Vector3, p, n rl.Vector3, expand float32) bool {
	c := centroid(pts)
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		en := rl.Vector3CrossProduct(rl.Vector3Subtract(b, a), n)
		if rl.Vector3Length(en) < tolerance {
			continue
		}
		en = rl.Vector3Normalize(en)
		if rl.Vector3DotProduct(en, rl.Vector3Subtract(c, a)) > 0 {
			en = rl.Vector3Scale(en, -1)
		}
		if rl.Vector3DotProduct(en, rl.Vector3Subtract(p, a)) > expand {
			return false
		}
	}
	return true
}

// pointInPolygon2D is the crossing-number test in the XY plane.
func pointInPolygon2D(pts []rl.Vector3, x, y float32) bool {
	in := false
	j := len(pts) - 1
	for i := range pts {
		a, b := pts[i], pts[j]
		if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
		j = i
	}
	return in
}

// thickPolySides expands a polygon into the faces of its slab: top, bottom
// and one quad per edge.
func thickPolySides(pts []rl.Vector3, n rl.Vector3, thickness float32) [][]rl.Vector3 {
	off := rl.Vector3Scale(n, 0.5*thickness)
	np := len(pts)
	top := make([]rl.Vector3, np)
	bot := make([]rl.Vector3, np)
	for i, v := range pts {
		top[i] = rl.Vector3Add(v, off)
		bot[np-1-i] = rl.Vector3Subtract(v, off)
	}
	sides := [][]rl.Vector3{top, bot}
	for i := range pts {
		a, b := pts[i], pts[(i+1)%np]
		sides = append(sides, []rl.Vector3{
			rl.Vector3Subtract(a, off), rl.Vector3Subtract(b, off),
			rl.Vector3Add(b, off), rl.Vector3Add(a, off),
		})
	}
	return sides
}

// outwardNormal orients a face normal away from the solid's center.
func outwardNormal(face []rl.Vector3, center rl.Vector3) rl.Vector3 {
	fn := polygonNormal(face)
	if rl.Vector3DotProduct(fn, rl.Vector3Subtract(face[0], center)) < 0 {
		fn = rl.Vector3Scale(fn, -1)
	}
	return fn
}

// sphereFacesContact separates a sphere from the convex solid bounded by
// faces using the face planes. It returns the push distance and direction
// along the face of least penetration.
func sphereFacesContact(faces [][]rl.Vector3, pos rl.Vector3, r float32) (float32, rl.Vector3, bool) {
	var all []rl.Vector3
	for _, f := range faces {
		all = append(all, f...)
	}
	center := centroid(all)
	best := float32(-farClip)
	var bestN rl.Vector3
	for _, f := range faces {
		fn := outwardNormal(f, center)
		if isZeroVec(fn) {
			continue
		}
		d := rl.Vector3DotProduct(fn, rl.Vector3Subtract(pos, f[0]))
		if d > r {
			return 0, rl.Vector3{}, false
		}
		if d > best {
			best, bestN = d, fn
		}
	}
	if isZeroVec(bestN) {
		return 0, rl.Vector3{}, false
	}
	return r - best, bestN, true
}

// rect2 is a rectangle in the XY plane.
type rect2 struct {
	x1, y1, x2, y2 float32
}

// overlapsPolygon is a 2D separating-axis test of the rectangle against a
// convex polygon's XY projection.
func (r rect2) overlapsPolygon(pts []rl.Vector3) bool {
	minX, minY := float32(farClip), float32(farClip)
	maxX, maxY := float32(-farClip), float32(-farClip)
	for _, v := range pts {
		minX, maxX = min(minX, v.X), max(maxX, v.X)
		minY, maxY = min(minY, v.Y), max(maxY, v.Y)
	}
	if minX > r.x2 || maxX < r.x1 || minY > r.y2 || maxY < r.y1 {
		return false
	}
	corners := [4][2]float32{{r.x1, r.y1}, {r.x2, r.y1}, {r.x2, r.y2}, {r.x1, r.y2}}
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		nx, ny := -(b.Y - a.Y), b.X-a.X
		if nx == 0 && ny == 0 {
			continue
		}
		pmin, pmax := float32(farClip), float32(-farClip)
		for _, v := range pts {
			d := nx*v.X + ny*v.Y
			pmin, pmax = min(pmin, d), max(pmax, d)
		}
		rmin, rmax := float32(farClip), float32(-farClip)
		for _, c := range corners {
			d := nx*c[0] + ny*c[1]
			rmin, rmax = min(rmin, d), max(rmax, d)
		}
		if rmin > pmax || rmax < pmin {
			return false
		}
	}
	return true
}

// polyZRange returns the vertical range of a polygon's plane over the part
// of the rectangle that overlaps it, clipped to [zlo, zhi].
func polyZRange(pts []rl.Vector3, n rl.Vector3, r rect2, zlo, zhi float32) (z1, z2 float32, ok bool) {
	if len(pts) < 3 || !r.overlapsPolygon(pts) {
		return 0, 0, false
	}
	pz1, pz2 := float32(farClip), float32(-farClip)
	minX, minY := float32(farClip), float32(farClip)
	maxX, maxY := float32(-farClip), float32(-farClip)
	for _, v := range pts {
		pz1, pz2 = min(pz1, v.Z), max(pz2, v.Z)
		minX, maxX = min(minX, v.X), max(maxX, v.X)
		minY, maxY = min(minY, v.Y), max(maxY, v.Y)
	}
	if math32.Abs(n.Z) < 1.0e-3 {
		return max(pz1, zlo), min(pz2, zhi), true
	}
	cx1, cx2 := max(r.x1, minX), min(r.x2, maxX)
	cy1, cy2 := max(r.y1, minY), min(r.y2, maxY)
	p0 := pts[0]
	z1, z2 = farClip, -farClip
	for _, c := range [4][2]float32{{cx1, cy1}, {cx2, cy1}, {cx2, cy2}, {cx1, cy2}} {
		z := planeZAt(p0, n, c[0], c[1])
		z1, z2 = min(z1, z), max(z2, z)
	}
	z1 = clamp(z1, zlo, zhi)
	z2 = clamp(z2, zlo, zhi)
	return z1, z2, z1 <= z2
}

// planeZAt evaluates the polygon plane height at (x, y).
func planeZAt(p0, n rl.Vector3, x, y float32) float32 {
	return p0.Z - (n.X*(x-p0.X)+n.Y*(y-p0.Y))/n.Z
}
