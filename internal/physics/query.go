package physics

import (
	"log"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// CheckLegalMove reports whether a sphere of radius at height z over
// column (x, y) is clear of every static primitive in that column. On
// failure it also returns the blocking primitive.
func (w *World) CheckLegalMove(x, y int, z, radius float32) (bool, Handle) {
	g := w.grid
	if !g.Inside(x, y) {
		return true, NoHandle
	}
	c := g.Cell(x, y)
	if len(c.Vals) == 0 || z-radius > c.ZMax || z+radius < c.ZMin {
		return true, NoHandle
	}
	pos := rl.Vector3{X: g.XVal(x), Y: g.YVal(y), Z: z}
	z1, z2 := z-radius, z+radius
	for _, h := range c.Vals {
		p := w.store.at(h)
		if p.Status != StatusStatic || p.Params.NoCollision {
			continue
		}
		if z1 > p.Bounds.Max.Z || z2 < p.Bounds.Min.Z {
			continue
		}
		blocked := false
		switch p.Kind {
		case KindCube:
			blocked = p.Bounds.IntersectsSphere(pos, radius)
		case KindSphere:
			rr := p.Radius + radius
			blocked = rl.Vector3DotProduct(rl.Vector3Subtract(pos, p.Points[0]), rl.Vector3Subtract(pos, p.Points[0])) <= rr*rr
		case KindCylinder:
			blocked = distXYLess(pos, p.Points[0], p.Radius+radius)
		case KindRotatedCylinder:
			_, _, blocked = sphereConeContact(pos, radius, p.Points[0], p.Points[1], p.Radius, p.Radius2, !p.Params.OpenEnded)
		case KindPolygon:
			thick := 0.5*p.Thickness + radius
			rdist := rl.Vector3DotProduct(p.Normal, rl.Vector3Subtract(pos, p.Points[0]))
			blocked = math32.Abs(rdist) <= thick && pointInConvexPolygon(p.Vertices(), pos, p.Normal, radius)
		}
		if blocked {
			return false, h
		}
	}
	return true, NoHandle
}

// CollideMeshLargeSphere pushes a sphere out of the terrain. The sphere may
// span many columns, so every terrain sample under its footprint is
// tested. With zUp the sphere is only ever pushed upward.
func (w *World) CollideMeshLargeSphere(pos *rl.Vector3, radius float32, zUp bool) bool {
	g := w.grid
	x1, x2 := max(0, g.XPos(pos.X-radius)), min(g.NX-1, g.XPos(pos.X+radius))
	y1, y2 := max(0, g.YPos(pos.Y-radius)), min(g.NY-1, g.YPos(pos.Y+radius))
	if x1 > x2 || y1 > y2 {
		return false
	}
	if mh := w.terrain.HeightAt(pos.X, pos.Y); pos.Z-radius < mh && zUp {
		pos.Z = mh + radius
		return true
	}
	coll := false
	rsq := radius * radius
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			mpt := rl.Vector3{X: g.XVal(x), Y: g.YVal(y), Z: w.terrain.MeshHeight(x, y)}
			v := rl.Vector3Subtract(*pos, mpt)
			dsq := rl.Vector3DotProduct(v, v)
			if dsq >= rsq {
				continue
			}
			coll = true
			if zUp {
				pos.Z = max(pos.Z, mpt.Z+math32.Sqrt(max(0, rsq-distXYSq(*pos, mpt))))
				continue
			}
			mag := math32.Sqrt(dsq)
			if mag < tolerance {
				pos.Z = mpt.Z + radius
				continue
			}
			*pos = rl.Vector3Add(mpt, rl.Vector3Scale(v, radius/mag))
		}
	}
	return coll
}

// Optimize builds the z-slice index of every cell that qualifies.
func (w *World) Optimize() int {
	g := w.grid
	n := 0
	for y := 0; y < g.NY; y++ {
		for x := 0; x < g.NX; x++ {
			c := g.Cell(x, y)
			c.buildSlices(w.store, w.settings.SliceThreshold, w.settings.SliceCount)
			if c.HasSlices() {
				n++
			}
		}
	}
	log.Printf("Collision: optimized, %d of %d cells sliced", n, g.NX*g.NY)
	return n
}
