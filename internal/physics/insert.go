package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// raster maps one primitive onto grid columns. The same raster is used on
// insertion, removal and purge so a primitive always occupies the same
// columns with the same extents.
type raster struct {
	w              *World
	p              *Primitive
	x1, y1, x2, y2 int
	cb             int

	// platform travel
	pdz float32
	ds  AABB

	// spheres and cylinders
	xpos, ypos int
	rxry, crsq int

	// rotated cylinders
	vertical, horizontal bool
	rmin, rmax           float32

	// polygons
	sides [][]rl.Vector3
	deltaZ float32
}

func (w *World) newRaster(p *Primitive) raster {
	g := w.grid
	if p.PlatformID >= 0 && !isZeroVec(p.shift) {
		// rasterize from the home position so the envelope never moves
		home := *p
		home.translate(rl.Vector3Scale(p.shift, -1))
		p = &home
	}
	r := raster{w: w, p: p, ds: p.Bounds}
	if p.PlatformID >= 0 {
		rng := w.platforms.Range(p.PlatformID)
		r.ds = r.ds.Sweep(rng)
		if rng.X == 0 && rng.Y == 0 {
			r.pdz = rng.Z
		}
	}
	var rmax float32
	if !w.settings.UseCollisionBorder {
		rmax = w.settings.MaxObjectRadius
	}
	r.cb = w.collBorder
	if p.Kind == KindPolygon {
		r.cb = max(r.cb, 1)
	}
	r.x1 = max(r.cb, g.XPos(r.ds.Min.X-rmax))
	r.x2 = min(g.NX-r.cb-1, g.XPos(r.ds.Max.X+rmax))
	r.y1 = max(r.cb, g.YPos(r.ds.Min.Y-rmax))
	r.y2 = min(g.NY-r.cb-1, g.YPos(r.ds.Max.Y+rmax))

	switch p.Kind {
	case KindSphere, KindCylinder:
		c := p.Points[0]
		r.xpos, r.ypos = g.XPos(c.X), g.YPos(c.Y)
		radx := int(p.Radius/g.DX) + 1
		rady := int(p.Radius/g.DY) + 1
		r.rxry = radx * rady
		r.crsq = (radx + r.cb) * (rady + r.cb)
	case KindRotatedCylinder:
		p1, p2 := p.Points[0], p.Points[1]
		r.vertical = g.XPos(p1.X) == g.XPos(p2.X) && g.YPos(p1.Y) == g.YPos(p2.Y)
		r.horizontal = math32.Abs(p1.Z-p2.Z) < tolerance
		r.rmin, r.rmax = min(p.Radius, p.Radius2), max(p.Radius, p.Radius2)
		if r.vertical {
			r.xpos, r.ypos = g.XPos(p1.X), g.YPos(p1.Y)
			radx := int(r.rmax/g.DX) + 1
			rady := int(r.rmax/g.DY) + 1
			r.rxry = radx * rady
			r.crsq = (radx + r.cb) * (rady + r.cb)
		}
	case KindPolygon:
		if p.Thickness > thickPolyThreshold {
			r.sides = p.sides
		}
		n := p.Normal
		if math32.Abs(n.Z) > 1.0e-3 {
			dzx := g.DX * n.X / n.Z
			dzy := g.DY * n.Y / n.Z
			r.deltaZ = math32.Sqrt(dzx*dzx + dzy*dzy)
		}
	}
	return r
}

// inCore reports whether (x, y) is inside the footprint grown by one column.
func (r *raster) inCore(x, y int) bool {
	return x >= r.x1-1 && x <= r.x2+1 && y >= r.y1-1 && y <= r.y2+1
}

// each visits every column the primitive may touch.
func (r *raster) each(fn func(x, y int)) {
	for y := r.y1 - r.cb; y <= r.y2+r.cb; y++ {
		for x := r.x1 - r.cb; x <= r.x2+r.cb; x++ {
			if r.w.grid.Inside(x, y) {
				fn(x, y)
			}
		}
	}
}

// platformAdjust widens a non-cube extent by vertical platform travel.
func (r *raster) platformAdjust(z1, z2 float32) (float32, float32) {
	if r.pdz > 0 {
		z2 += r.pdz
	} else {
		z1 += r.pdz
	}
	return z1, z2
}

// extent is the vertical range the primitive occupies over column (x, y).
// core marks columns that count towards height clamping; ok is false
// for columns the primitive does not reach.
func (r *raster) extent(x, y int) (z1, z2 float32, core, ok bool) {
	g := r.w.grid
	p := r.p
	core = r.inCore(x, y)
	switch p.Kind {
	case KindCube:
		return r.ds.Min.Z, r.ds.Max.Z, core, true

	case KindSphere:
		distsq := (y-r.ypos)*(y-r.ypos) + (x-r.xpos)*(x-r.xpos)
		if distsq > r.crsq {
			return 0, 0, false, false
		}
		c := p.Points[0]
		col := g.columnRect(x, y, 0)
		dx := max(col.x1-c.X, 0, c.X-col.x2)
		dy := max(col.y1-c.Y, 0, c.Y-col.y2)
		dz := math32.Sqrt(max(0, p.Radius2-dx*dx-dy*dy))
		z1, z2 = r.platformAdjust(c.Z-dz, c.Z+dz)
		return z1, z2, core && distsq <= r.rxry, true

	case KindCylinder:
		distsq := (y-r.ypos)*(y-r.ypos) + (x-r.xpos)*(x-r.xpos)
		if distsq > r.crsq {
			return 0, 0, false, false
		}
		z1, z2 = r.platformAdjust(p.Bounds.Min.Z, p.Bounds.Max.Z)
		return z1, z2, core && distsq <= r.rxry, true

	case KindRotatedCylinder:
		z1, z2, core = r.rotatedCylinderExtent(x, y, core)
		z1, z2 = r.platformAdjust(z1, z2)
		return z1, z2, core, true

	case KindPolygon:
		zminc, zmaxc := p.Bounds.Min.Z, p.Bounds.Max.Z
		if !core {
			z1, z2 = r.platformAdjust(zminc, zmaxc)
			return z1, z2, false, true
		}
		rect := g.columnRect(x, y, float32(r.cb))
		if r.sides != nil {
			z1, z2 = farClip, -farClip
			found := false
			for _, s := range r.sides {
				n := polygonNormal(s)
				if math32.Abs(n.Z) <= 1.0e-3 {
					continue
				}
				if a, b, hit := polyZRange(s, n, rect, zminc, zmaxc); hit {
					z1, z2, found = min(z1, a), max(z2, b), true
				}
			}
			if !found {
				return 0, 0, false, false
			}
		} else {
			var hit bool
			z1, z2, hit = polyZRange(p.Vertices(), p.Normal, rect, zminc, zmaxc)
			if !hit {
				return 0, 0, false, false
			}
		}
		z1 = max(zminc, z1-r.deltaZ)
		z2 = min(zmaxc, z2+r.deltaZ)
		z1, z2 = r.platformAdjust(z1, z2)
		return z1, z2, true, true
	}
	panic(fmt.Sprintf("physics: unknown primitive kind %s", p.Kind))
}

func (r *raster) rotatedCylinderExtent(x, y int, inRect bool) (z1, z2 float32, core bool) {
	g := r.w.grid
	p := r.p
	p1, p2 := p.Points[0], p.Points[1]
	zmin0, zmax0 := p.Bounds.Min.Z, p.Bounds.Max.Z
	switch {
	case r.vertical:
		distsq := (y-r.ypos)*(y-r.ypos) + (x-r.xpos)*(x-r.xpos)
		core = inRect && distsq <= r.rxry
		if r.rmax-r.rmin < tolerance {
			return zmin0, zmax0, core
		}
		col := g.columnRect(x, y, 0)
		dx := max(col.x1-p1.X, 0, p1.X-col.x2)
		dy := max(col.y1-p1.Y, 0, p1.Y-col.y2)
		rval := min(r.rmax, math32.Sqrt(dx*dx+dy*dy))
		if rval <= r.rmin {
			return zmin0, zmax0, core
		}
		zWide, zNarrow := p1.Z, p2.Z
		if p.Radius2 > p.Radius {
			zWide, zNarrow = p2.Z, p1.Z
		}
		t := (r.rmax - rval) / (r.rmax - r.rmin)
		zs := zWide + (zNarrow-zWide)*t
		return min(zWide, zs), max(zWide, zs), core
	case r.horizontal:
		if inRect {
			q := rl.Vector3{X: g.XVal(x), Y: g.YVal(y)}
			d, t := pointLineDistXY(q, p1, p2)
			core = t >= 0 && t <= 1 && d-g.halfDXY() < r.rmax
		}
		return p1.Z - r.rmax, p1.Z + r.rmax, core
	}
	return zmin0, zmax0, inRect
}

// pointLineDistXY is the horizontal distance from q to the line p1-p2 and
// the parameter of the projection onto it.
func pointLineDistXY(q, p1, p2 rl.Vector3) (dist, t float32) {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	l2 := dx*dx + dy*dy
	if l2 < tolerance*tolerance {
		return math32.Sqrt(distXYSq(q, p1)), 0
	}
	t = ((q.X-p1.X)*dx + (q.Y-p1.Y)*dy) / l2
	px, py := p1.X+t*dx, p1.Y+t*dy
	return math32.Sqrt((q.X-px)*(q.X-px) + (q.Y-py)*(q.Y-py)), t
}

// addToMatrix registers a primitive with every column it reaches.
func (w *World) addToMatrix(h Handle) {
	p := w.store.at(h)
	r := w.newRaster(p)
	p.zSpan = [2]float32{farClip, -farClip}
	r.each(func(x, y int) {
		z1, z2, core, ok := r.extent(x, y)
		if !ok {
			return
		}
		p.zSpan[0] = min(p.zSpan[0], z1)
		p.zSpan[1] = max(p.zSpan[1], z2)
		w.addCollPoint(x, y, h, z1, z2, core)
	})
	if p.zSpan[0] > p.zSpan[1] {
		p.zSpan = [2]float32{p.Bounds.Min.Z, p.Bounds.Max.Z}
	}
}

func (w *World) addCollPoint(x, y int, h Handle, z1, z2 float32, core bool) {
	c := w.grid.Cell(x, y)
	p := w.store.at(h)
	c.Vals = append(c.Vals, h)
	if n := len(c.Vals); n > 1 && p.Status == StatusStatic && w.store.at(c.Vals[n-2]).Status == StatusDynamic {
		// statics go to the front so reverse scans reach dynamics first
		copy(c.Vals[1:], c.Vals[:n-1])
		c.Vals[0] = h
	}
	c.updateExtents(z1, z2, p.IsOccluder())
	if p.Status != StatusStatic {
		return
	}
	c.slicesDirty = true
	w.zMin = min(w.zMin, z1)
	w.zMax = max(w.zMax, z2)
	if core && w.grid.HeightClamp(x, y) < z2 && w.terrain.MeshHeight(x, y)+2*w.settings.AgentRadius > z1 {
		w.grid.setHeightClamp(x, y, z2)
	}
}

// setProps initializes a freshly allocated slot.
func (w *World) setProps(h Handle, kind Kind, radius, radius2 float32, platformID int, params Params) *Primitive {
	p := w.store.at(h)
	if platformID >= 0 && (w.platforms == nil || platformID >= w.platforms.Len()) {
		panic(fmt.Sprintf("physics: platform id %d out of range", platformID))
	}
	if params.Dynamic {
		p.Status = StatusDynamic
	} else {
		p.Status = StatusStatic
	}
	p.Kind = kind
	p.Params = params
	p.ID = h
	p.Radius = radius
	p.Radius2 = radius2
	p.PlatformID = platformID
	p.Fixed = false
	p.Counter = 0
	return p
}

// InsertCube adds a box primitive.
func (w *World) InsertCube(box AABB, params Params, platformID int) Handle {
	if !box.Valid() {
		box = NewAABB(box.Min.X, box.Max.X, box.Min.Y, box.Max.Y, box.Min.Z, box.Max.Z)
	}
	h := w.store.Allocate()
	p := w.setProps(h, KindCube, 0.5*rl.Vector3Length(box.Size()), 0, platformID, params)
	p.Bounds = box
	p.Points[0] = box.Center()
	p.NPoints = 1
	w.addToMatrix(h)
	return h
}

// InsertSphere adds a sphere primitive.
func (w *World) InsertSphere(center rl.Vector3, radius float32, params Params, platformID int) Handle {
	if radius <= 0 {
		panic(fmt.Sprintf("physics: sphere radius %g must be positive", radius))
	}
	h := w.store.Allocate()
	p := w.setProps(h, KindSphere, radius, radius*radius, platformID, params)
	p.Points[0] = center
	p.NPoints = 1
	p.computeBounds()
	w.addToMatrix(h)
	return h
}

// InsertCylinder adds a cylinder or cone frustum from p1 (radius r1) to p2
// (radius r2). Axes that are vertical with equal radii become plain
// cylinders; everything else is a rotated cylinder.
func (w *World) InsertCylinder(p1, p2 rl.Vector3, r1, r2 float32, params Params, platformID int) Handle {
	if r1 < 0 || r2 < 0 || (r1 == 0 && r2 == 0) {
		panic(fmt.Sprintf("physics: invalid cylinder radii %g %g", r1, r2))
	}
	if rl.Vector3Length(rl.Vector3Subtract(p2, p1)) < tolerance {
		panic("physics: cylinder endpoints coincide")
	}
	kind := KindRotatedCylinder
	if p1.X == p2.X && p1.Y == p2.Y && r1 == r2 {
		kind = KindCylinder
		if p1.Z > p2.Z {
			p1, p2 = p2, p1
		}
	}
	h := w.store.Allocate()
	p := w.setProps(h, kind, r1, r2, platformID, params)
	p.Points[0], p.Points[1] = p1, p2
	p.NPoints = 2
	p.computeBounds()
	w.addToMatrix(h)
	return h
}

// InsertPolygon adds a planar convex polygon, optionally thickened.
func (w *World) InsertPolygon(points []rl.Vector3, params Params, thickness float32, platformID int) Handle {
	if len(points) < 3 || len(points) > MaxPolygonPoints {
		panic(fmt.Sprintf("physics: polygon needs 3 to %d points, got %d", MaxPolygonPoints, len(points)))
	}
	n := polygonNormal(points)
	if isZeroVec(n) {
		panic("physics: degenerate polygon")
	}
	h := w.store.Allocate()
	p := w.setProps(h, KindPolygon, 0, 0, platformID, params)
	p.NPoints = copy(p.Points[:], points)
	p.Normal = n
	p.Thickness = max(thickness, 0)
	p.computeBounds()
	c := p.Center()
	for _, v := range points {
		p.Radius = max(p.Radius, rl.Vector3Length(rl.Vector3Subtract(v, c)))
	}
	if p.Thickness > thickPolyThreshold {
		p.sides = thickPolySides(points, n, p.Thickness)
	}
	w.addToMatrix(h)
	return h
}

// InsertHollowCube adds the six walls of a box as thin cubes of the given
// thickness. Walls are flush with the outside of box.
func (w *World) InsertHollowCube(box AABB, params Params, platformID int, thickness float32) [6]Handle {
	var hs [6]Handle
	size := box.Size()
	thickness = min(thickness, 0.5*min(size.X, size.Y, size.Z))
	for face := 0; face < 6; face++ {
		wall := box
		i := face / 2
		if face%2 == 0 {
			setAxis(&wall.Max, i, axis(box.Min, i)+thickness)
		} else {
			setAxis(&wall.Min, i, axis(box.Max, i)-thickness)
		}
		hs[face] = w.InsertCube(wall, params, platformID)
	}
	return hs
}

// Insert adds a primitive described by a template. Kind selects which
// template fields are read.
func (w *World) Insert(t Primitive) Handle {
	switch t.Kind {
	case KindCube:
		return w.InsertCube(t.Bounds, t.Params, t.PlatformID)
	case KindSphere:
		return w.InsertSphere(t.Points[0], t.Radius, t.Params, t.PlatformID)
	case KindCylinder, KindRotatedCylinder:
		return w.InsertCylinder(t.Points[0], t.Points[1], t.Radius, t.Radius2, t.Params, t.PlatformID)
	case KindPolygon:
		return w.InsertPolygon(t.Vertices(), t.Params, t.Thickness, t.PlatformID)
	}
	panic(fmt.Sprintf("physics: unknown primitive kind %s", t.Kind))
}

// MarkFixed makes a primitive survive ResetAll so it can be reinserted
// under the same handle.
func (w *World) MarkFixed(h Handle) {
	w.store.Get(h).Fixed = true
}

// Reinsert puts a fixed primitive back into the grid as a static.
// Non-fixed handles are ignored.
func (w *World) Reinsert(h Handle, removeOld bool) {
	p := w.store.Get(h)
	if !p.Fixed {
		return
	}
	if removeOld && p.IsLive() {
		w.scrub(h)
	}
	p.Status = StatusStatic
	p.Params.Dynamic = false
	p.ID = h
	p.Counter = 0
	w.addToMatrix(h)
}
