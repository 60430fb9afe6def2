package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// StepOptions control one narrow-phase pass.
type StepOptions struct {
	// Callbacks enables collision callbacks and platform riding.
	Callbacks bool
	Iter      int
	// Motion is the displacement of this sub-step.
	Motion rl.Vector3
}

// StepResult summarizes a narrow-phase pass.
type StepResult struct {
	Hit      bool
	Contacts int
	Vetoed   int
	// Normal is the contact normal of the last accepted contact.
	Normal rl.Vector3
}

const minBounceSpeed = 0.05

type stepDetector struct {
	w     *World
	m     *Mover
	typ   *ObjectType
	opt   StepOptions
	agent bool

	radius   float32
	pos      rl.Vector3
	pold     rl.Vector3
	z1, z2   float32
	zOld     float32
	bounced  bool
	snapshot Mover
	result   StepResult
}

func (d *stepDetector) reset() {
	d.snapshot = *d.m
	d.pos = d.m.Pos
	d.z1 = d.pos.Z - d.radius
	d.z2 = d.pos.Z + d.radius
}

// ResolveStep tests a mover against every primitive in its column and
// pushes it out of anything it penetrates, adjusting its velocity.
func (w *World) ResolveStep(m *Mover, opt StepOptions) StepResult {
	x, y, ok := w.grid.Column(m.Pos.X, m.Pos.Y)
	if !ok || m.Disabled {
		return StepResult{}
	}
	c := w.grid.Cell(x, y)
	if len(c.Vals) == 0 {
		return StepResult{}
	}
	w.ensureSlices(c)
	typ := &w.types[m.Kind]
	d := stepDetector{
		w:      w,
		m:      m,
		typ:    typ,
		opt:    opt,
		agent:  m.Kind.IsAgent(),
		radius: typ.Radius * m.scale(),
		zOld:   m.Pos.Z,
	}
	// check steps back along Motion; without one, velocity stands in for it
	d.pold = m.Pos
	if isZeroVec(opt.Motion) {
		d.pold = rl.Vector3Subtract(m.Pos, rl.Vector3Scale(m.Velocity, w.dt))
	}
	d.reset()

	// small movers entirely above or below the column skip the statics
	skipStatic := !d.agent && d.radius < w.grid.halfDXY() && (d.z1 > c.ZMax || d.z2 < c.ZMin)
	sliced := c.HasSlices()
	var slices [][]Handle
	if sliced {
		slices = c.slices
	}
	for k := len(c.Vals) - 1; k >= 0; k-- {
		if k >= len(c.Vals) {
			continue
		}
		h := c.Vals[k]
		if st := w.store.at(h).Status; st == StatusStatic && (sliced || skipStatic) {
			continue
		}
		d.check(h)
		if m.Disabled {
			return d.result
		}
	}
	if sliced && !skipStatic {
		stamp := w.nextStamp()
		n := len(slices)
		s1, s2 := c.sliceRange(d.z1, d.z2, n)
		for s := s1; s <= s2; s++ {
			for _, h := range slices[s] {
				p := w.store.at(h)
				if p.Counter == stamp {
					continue
				}
				p.Counter = stamp
				d.check(h)
				if m.Disabled {
					return d.result
				}
			}
		}
	}
	return d.result
}

// check runs one mover/primitive test and the collision response.
func (d *stepDetector) check(h Handle) {
	w, m := d.w, d.m
	p := w.store.at(h)
	if !p.Collidable() {
		return
	}
	if (m.Kind == MoverProjectile || m.Kind == MoverPlasma) && m.Source == h {
		return
	}
	if m.Self == h {
		return
	}
	if w.InvalidPair != nil && w.InvalidPair(m, p) {
		return
	}
	zminc, zmaxc := p.Bounds.Min.Z, p.Bounds.Max.Z
	if d.z1 > zmaxc || d.z2 < zminc {
		return
	}
	r := d.radius
	pos := d.pos
	playerStep := d.agent && (m.Teleported || zmaxc-d.z1 <= d.typ.StepHeight)
	var norm, pvel rl.Vector3
	if p.PlatformID >= 0 {
		pvel = w.platforms.Velocity(p.PlatformID)
	}
	mdir := rl.Vector3Subtract(d.opt.Motion, rl.Vector3Scale(pvel, w.dt))
	prev := rl.Vector3Subtract(d.pold, mdir)
	lcoll := 0
	collBot := false

	switch p.Kind {
	case KindCube:
		b := p.Bounds
		if pos.X < b.Min.X-r || pos.X > b.Max.X+r || pos.Y < b.Min.Y-r || pos.Y > b.Max.Y+r {
			break
		}
		cc, ok := sphereCubeContact(pos, prev, r, b)
		if !ok {
			break
		}
		if cc.Face != faceNegZ && cc.Face != facePosZ && playerStep {
			// agents walk over low edges; the ground resolver lifts them
			break
		}
		lcoll = 1
		m.Pos, norm = cc.Pos, cc.Normal
		collBot = cc.Face == faceNegZ
		if cc.Face == facePosZ {
			if b.ContainsXY(pos) {
				lcoll = 2
			}
			if rdist := b.DistXY(pos); rdist > 0 {
				// resting on an edge: sit on the rounded corner
				m.Pos.Z = b.Max.Z + math32.Sqrt(max(0, r*r-rdist*rdist))
			}
		}

	case KindSphere:
		center := p.Points[0]
		radius := p.Radius + r
		reff := radius
		if d.agent && p.Params.AreaTrigger {
			reff += 1.5 * d.typ.Radius
		}
		dv := rl.Vector3Subtract(pos, center)
		distSq := rl.Vector3DotProduct(dv, dv)
		if distSq > reff*reff {
			break
		}
		lcoll = 1
		dist := math32.Sqrt(distSq)
		if !d.safeNorm(dist, radius, &norm) {
			break
		}
		norm = rl.Vector3Scale(dv, 1/dist)
		if dist <= radius {
			m.Pos = rl.Vector3Add(center, rl.Vector3Scale(norm, radius))
		}

	case KindCylinder:
		center := p.Points[0]
		radius := p.Radius
		rad := distXYSq(pos, center)
		if rad > (radius+r)*(radius+r) {
			break
		}
		rad = math32.Sqrt(rad)
		lcoll = 1
		top, bot := zmaxc+r, zminc-r
		caps := !p.Params.OpenEnded
		switch {
		case caps && prev.Z > top-smallNumber && pos.Z <= top:
			if rad <= radius {
				lcoll = 2
			}
			norm = plusZ
			m.Pos.Z = top
			if rdist := rad - radius; rdist > 0 {
				m.Pos.Z = zmaxc + math32.Sqrt(max(0, r*r-rdist*rdist))
			}
		case caps && prev.Z < bot+smallNumber && pos.Z >= bot:
			norm = minusZ
			m.Pos.Z = bot
			collBot = true
		default:
			if playerStep && m.Pos.Z > zmaxc {
				norm = plusZ
				break
			}
			radius += r
			if !d.safeNorm(rad, radius, &norm) {
				break
			}
			norm = rl.Vector3{X: (pos.X - center.X) / rad, Y: (pos.Y - center.Y) / rad}
			m.Pos.X = center.X + norm.X*radius
			m.Pos.Y = center.Y + norm.Y*radius
		}

	case KindRotatedCylinder:
		np, n, ok := sphereConeContact(pos, r, p.Points[0], p.Points[1], p.Radius, p.Radius2, !p.Params.OpenEnded)
		if !ok {
			break
		}
		if playerStep && n.Z < 0.5 && np.Z-r < zmaxc && pos.Z > zmaxc {
			break
		}
		lcoll = 1
		m.Pos, norm = np, n

	case KindPolygon:
		var val float32
		var ok bool
		val, norm, ok = d.polygonContact(p, pos, prev)
		if !ok {
			break
		}
		lcoll = 1
		m.Pos = rl.Vector3Add(m.Pos, rl.Vector3Scale(norm, val))
	}

	if lcoll == 0 {
		return
	}
	if isZeroVec(norm) || isNaNVec(norm) {
		panic(fmt.Sprintf("physics: zero contact normal against %s %d", p.Kind, h))
	}
	d.respond(h, p, norm, pvel, lcoll, collBot, r)
}

// safeNorm guards the divisions used to build sphere and cylinder normals.
func (d *stepDetector) safeNorm(dist, radius float32, norm *rl.Vector3) bool {
	if dist < 10*tolerance {
		d.m.Pos.X += radius
		*norm = plusX
		return false
	}
	return true
}

// polygonContact returns the push distance and direction out of a polygon.
func (d *stepDetector) polygonContact(p *Primitive, pos, prev rl.Vector3) (float32, rl.Vector3, bool) {
	r := d.radius
	pts := p.Vertices()
	norm := p.Normal
	if rl.Vector3DotProduct(norm, rl.Vector3Subtract(prev, pts[0])) < 0 {
		norm = rl.Vector3Scale(norm, -1)
	}
	thick := 0.5*p.Thickness + r
	rdist := rl.Vector3DotProduct(norm, rl.Vector3Subtract(pos, pts[0]))
	if math32.Abs(rdist) > thick {
		return 0, norm, false
	}
	if !pointInConvexPolygon(pts, pos, norm, max(0, thick-thickPolyThreshold)) {
		return 0, norm, false
	}
	if p.Thickness <= thickPolyThreshold {
		return 1.01 * (thick - rdist), norm, true
	}
	val, fn, ok := sphereFacesContact(p.sides, pos, r)
	if !ok {
		return 0, norm, false
	}
	var all []rl.Vector3
	for _, f := range p.sides {
		all = append(all, f...)
	}
	center := centroid(all)
	intersects, inside := false, true
	for _, f := range p.sides {
		n := outwardNormal(f, center)
		rd := rl.Vector3DotProduct(n, rl.Vector3Subtract(pos, f[0]))
		if math32.Abs(rd) <= r && pointInConvexPolygon(f, pos, n, r) {
			intersects = true
			break
		}
		if rd > 0 {
			inside = false
		}
	}
	if !intersects && !inside {
		return 0, norm, false
	}
	return val, fn, true
}

// respond applies the collision response for an accepted contact.
func (d *stepDetector) respond(h Handle, p *Primitive, norm, pvel rl.Vector3, lcoll int, collBot bool, r float32) {
	w, m, typ := d.w, d.m, d.typ
	moving := false
	if p.PlatformID >= 0 {
		moving = lcoll == 2
		if w.settings.Animate && d.opt.Callbacks && d.opt.Iter == 0 {
			delta := w.platforms.LastDelta(p.PlatformID)
			if lcoll == 2 {
				m.Pos = rl.Vector3Add(m.Pos, delta)
			} else if collBot && delta.Z < 0 && d.agent {
				w.Crushes.Invoke(Crush{Primitive: h, Mover: m.Index, Kind: m.Kind, Delta: delta})
			}
		}
		if w.platforms.IsMoving(p.PlatformID) {
			m.Flags |= FlagPlatformContact
		}
	}
	v0 := m.Velocity
	staticTop := lcoll == 2 && p.TrulyStatic()
	if moving || typ.Friction < w.settings.StickThreshold {
		vOld := m.Velocity
		bounced := (typ.Elasticity != 0 || p.Params.Elasticity != 0) && d.bounce(norm, 0.5*(typ.Elasticity+p.Params.Elasticity), pvel)
		switch {
		case !bounced:
			if staticTop {
				m.Flags |= FlagStaticTopContact
				if typ.Flags&TypeDrop != 0 {
					m.Velocity = rl.Vector3{}
				}
			}
			if m.Kind != MoverDebris && !isZeroVec(m.Velocity) {
				if typ.Friction > 0 {
					m.Velocity = rl.Vector3Scale(m.Velocity, 1-min(1, (w.dt/w.settings.Timestep)*typ.Friction))
				}
				if rl.Vector3DotProduct(m.Velocity, norm) < 0 {
					m.Velocity = orthogonalize(m.Velocity, norm)
				}
			}
		case d.bounced:
			m.Velocity = vOld
		default:
			d.bounced = true
		}
	} else {
		if p.Status == StatusStatic {
			if !d.stick(staticTop) && staticTop {
				m.Flags |= FlagStaticTopContact
			}
			m.Pos = rl.Vector3Subtract(m.Pos, rl.Vector3Scale(norm, 0.1*r))
		}
		m.Velocity = rl.Vector3{}
	}

	if d.opt.Callbacks && p.Params.Callback != nil {
		energy := collisionEnergy(v0, m.Velocity, typ.Mass)
		if m.Kind == MoverPlasma {
			energy *= m.scale() * m.scale()
		}
		verdict := p.Params.Callback(Impact{
			Primitive:     h,
			CallbackIndex: p.Params.CallbackIndex,
			Mover:         m.Index,
			Kind:          m.Kind,
			Velocity:      v0,
			Position:      m.Pos,
			Energy:        energy,
		})
		if verdict == Vetoed {
			*m = d.snapshot
			d.result.Vetoed++
			return
		}
		// the callback may have grown the store
		p = w.store.at(h)
	}

	if typ.Flags&TypeDrop == 0 && !m.Kind.fragile() {
		p.ImpactTicks = w.settings.TicksPerSecond
		w.Impacts.Invoke(Impact{
			Primitive:     h,
			CallbackIndex: p.Params.CallbackIndex,
			Mover:         m.Index,
			Kind:          m.Kind,
			Velocity:      v0,
			Position:      m.Pos,
			Energy:        collisionEnergy(v0, m.Velocity, typ.Mass),
		})
	}
	if typ.Flags&TypeExplodeOnCollision != 0 {
		m.Disabled = true
	}
	if p.DestroyOnContact && p.IsLive() {
		w.Remove(h)
	}

	m.Flags |= FlagCollided
	d.result.Hit = true
	d.result.Contacts++
	d.result.Normal = norm
	d.reset()
	if typ.Friction < w.settings.StickThreshold {
		return
	}
	if m.Flags&FlagZStopped != 0 {
		m.Pos.Z = d.zOld
		d.pos.Z = d.zOld
	}
}

// bounce reflects the mover's velocity relative to the surface. It fails
// when the mover is separating or too slow to leave the surface.
func (d *stepDetector) bounce(norm rl.Vector3, elasticity float32, pvel rl.Vector3) bool {
	m := d.m
	vr := rl.Vector3Subtract(m.Velocity, pvel)
	vn := rl.Vector3DotProduct(vr, norm)
	if vn >= 0 || -vn*elasticity < minBounceSpeed {
		return false
	}
	vr = rl.Vector3Subtract(vr, rl.Vector3Scale(norm, vn*(1+elasticity)))
	m.Velocity = rl.Vector3Add(pvel, vr)
	return true
}

// stick freezes a high-friction mover where it hit. It reports whether the
// mover actually stuck; some contacts randomly let it slide.
func (d *stepDetector) stick(staticTop bool) bool {
	w, m := d.w, d.m
	f := d.typ.Friction
	stick := w.settings.StickThreshold
	if f < 2*stick || f < (2+w.rng.Float32())*stick {
		return false
	}
	if staticTop {
		m.Flags |= FlagAllStopped
	} else {
		m.Flags |= FlagXYZStopped
	}
	m.Stuck = true
	return true
}

// MultistepResolve walks a mover from lastPos to its current position in
// nsteps equal sub-steps, resolving after each. Callbacks run only on the
// final sub-step.
func (w *World) MultistepResolve(m *Mover, lastPos rl.Vector3, nsteps int) bool {
	cmove := rl.Vector3Subtract(m.Pos, lastPos)
	dist := rl.Vector3Length(cmove)
	if dist < tolerance || nsteps <= 1 {
		return w.ResolveStep(m, StepOptions{Callbacks: true, Motion: cmove}).Hit
	}
	step := rl.Vector3Scale(cmove, 1/float32(nsteps))
	m.Pos = lastPos
	hit := false
	for i := 0; i < nsteps && !m.Disabled; i++ {
		m.Pos = rl.Vector3Add(m.Pos, step)
		res := w.ResolveStep(m, StepOptions{Callbacks: i == nsteps-1, Iter: i, Motion: step})
		hit = hit || res.Hit
	}
	return hit
}
