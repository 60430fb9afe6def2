package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// GroundOutcome is the result of an agent height correction.
type GroundOutcome uint8

const (
	GroundUnchanged GroundOutcome = iota
	// GroundStepped means the agent stepped up onto a surface or landed.
	GroundStepped
	GroundFalling
	// GroundStuck means the agent was pushed back to its last position.
	GroundStuck
)

func (o GroundOutcome) String() string {
	switch o {
	case GroundUnchanged:
		return "unchanged"
	case GroundStepped:
		return "stepped"
	case GroundFalling:
		return "falling"
	case GroundStuck:
		return "stuck"
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// landingTicks is how long an agent must fall before landing is reported.
const landingTicks = 4

// FallState tracks an agent's fall between ticks.
type FallState struct {
	Counter  int
	LastDZ   float32
	LastZVel float32
}

// GroundQuery is the input and output of ResolveGroundHeight. Pos and
// ZVel are updated in place.
type GroundQuery struct {
	Pos        rl.Vector3
	LastPos    rl.Vector3
	StepHeight float32
	ZVel       float32
	Kind       MoverKind
	Mover      int
	// Self is the agent's own primitive, never treated as ground.
	Self       Handle
	Flight     bool
	OnSnow     bool
	Teleported bool
	// HeadHeight extends the agent's body above its sphere.
	HeadHeight float32
	Fall       *FallState
}

// ResolveGroundHeight places an agent on the highest walkable surface of
// its column, stepping up ledges no taller than StepHeight, and integrates
// falling when the surface is too far below.
func (w *World) ResolveGroundHeight(q *GroundQuery) GroundOutcome {
	typ := &w.types[q.Kind]
	agent := q.Kind.IsAgent()
	x, y, ok := w.grid.Column(q.Pos.X, q.Pos.Y)
	if !ok {
		w.endFall(q, false)
		q.ZVel = 0
		return GroundUnchanged
	}
	radius := typ.Radius
	step := q.StepHeight
	mh := w.terrain.HeightAt(q.Pos.X, q.Pos.Y)
	pos := q.Pos
	pos.Z = max(pos.Z, mh+radius)
	if w.Snow != nil {
		if z, ok := w.Snow.SnowHeight(pos, radius); ok {
			pos.Z = max(pos.Z, z+radius)
		}
	}
	zmu := mh
	z1, z2 := pos.Z-radius, pos.Z+radius+q.HeadHeight
	var zceil, zfloor float32
	anyColl, moved := false, false

	c := w.grid.Cell(x, y)
	for k := len(c.Vals) - 1; k >= 0; k-- {
		if k >= len(c.Vals) {
			continue
		}
		h := c.Vals[k]
		p := w.store.at(h)
		if h == q.Self || p.Status != StatusStatic || p.Params.NoCollision {
			continue
		}
		zt, zb, hit := w.columnSpan(p, pos)
		if !hit {
			continue
		}
		if p.PlatformID >= 0 {
			zt -= 1.0e-6
		}
		if zt < zb {
			panic(fmt.Sprintf("physics: inverted span %g < %g on %s %d", zt, zb, p.Kind, h))
		}
		if zt <= z1 {
			zmu = max(zmu, zt)
		}
		if anyColl {
			zceil, zfloor = max(zceil, zt), min(zfloor, zb)
		} else {
			zceil, zfloor = zt, zb
		}
		anyColl = true
		if z2 <= zb || z1 >= zt {
			continue
		}
		switch {
		case zt-z1 <= step:
			// an agent already resting on zt only differs by rounding
			if zt+radius > pos.Z+smallNumber {
				pos.Z = zt + radius
				moved = true
			}
			zmu = max(zmu, zt)
		case q.Teleported:
			pos.Z = zt + radius
			zmu = max(zmu, zt)
		case pos.Z > zb:
			w.endFall(q, false)
			q.Pos = q.LastPos
			q.ZVel = 0
			return GroundStuck
		default:
			pos.Z = zb - radius
		}
	}

	if !anyColl || z2 < zfloor {
		pos.Z = mh
		onIce := false
		if agent && w.settings.WalkOnIce {
			if wl, ok := w.terrain.WaterLevel(x, y); ok && wl > mh {
				pos.Z, onIce = wl, true
			}
		}
		pos.Z += radius
		if !onIce && w.Surface != nil {
			w.Surface.ModifyAt(pos, radius, q.Kind != MoverFire, q.Kind == MoverFire)
		}
	} else {
		zceil = max(zceil, mh)
		if z1 > zceil {
			pos.Z = zceil + radius
		} else {
			pos.Z = zmu + radius
		}
	}

	wasFalling := q.Fall != nil && q.Fall.Counter > 0
	falling := false
	switch {
	case q.Teleported || q.OnSnow:
		q.ZVel = 0
	case pos.Z-q.LastPos.Z < -step:
		falling = true
	default:
		q.ZVel = 0
	}

	outcome := GroundUnchanged
	if moved {
		outcome = GroundStepped
	}
	switch {
	case q.Flight:
		pos.Z = max(pos.Z, q.Pos.Z)
		q.ZVel = 0
		w.endFall(q, false)
	case falling:
		g := w.settings.Gravity * w.dt * typ.Gravity
		q.ZVel = max(-typ.TerminalVelocity, q.ZVel-g)
		support := pos.Z
		pos.Z = max(support, q.LastPos.Z+w.dt*q.ZVel)
		if pos.Z <= support {
			q.ZVel = 0
			outcome = GroundStepped
			w.endFall(q, true)
		} else {
			outcome = GroundFalling
			if q.Fall != nil && agent {
				q.Fall.Counter++
				q.Fall.LastDZ = pos.Z - q.LastPos.Z
				q.Fall.LastZVel = q.ZVel
			}
		}
	default:
		if wasFalling {
			outcome = GroundStepped
		}
		w.endFall(q, true)
	}
	q.Pos = pos
	return outcome
}

// endFall closes a fall, reporting a landing if it lasted long enough.
func (w *World) endFall(q *GroundQuery, landed bool) {
	f := q.Fall
	if f == nil || !q.Kind.IsAgent() {
		return
	}
	if landed && f.Counter > landingTicks && f.LastDZ < 0 && f.LastZVel < 0 {
		w.Landings.Invoke(Landing{Mover: q.Mover, Kind: q.Kind, Ticks: f.Counter, Velocity: f.LastZVel})
	}
	*f = FallState{}
}

// columnSpan returns the vertical range a primitive occupies on the
// vertical line through pos, if the line hits it.
func (w *World) columnSpan(p *Primitive, pos rl.Vector3) (zt, zb float32, hit bool) {
	switch p.Kind {
	case KindCube:
		if !p.Bounds.ContainsXY(pos) {
			return 0, 0, false
		}
		return p.Bounds.Max.Z, p.Bounds.Min.Z, true

	case KindSphere:
		c := p.Points[0]
		arg := p.Radius2 - distXYSq(pos, c)
		if arg < 0 {
			return 0, 0, false
		}
		dz := math32.Sqrt(arg)
		return c.Z + dz, c.Z - dz, true

	case KindCylinder:
		if !distXYLess(pos, p.Points[0], p.Radius) {
			return 0, 0, false
		}
		return p.Bounds.Max.Z, p.Bounds.Min.Z, true

	case KindRotatedCylinder:
		lo, hi, ok := lineConeInterval(pos.X, pos.Y, p.Points[0], p.Points[1], p.Radius, p.Radius2)
		if !ok {
			return 0, 0, false
		}
		return hi, lo, true

	case KindPolygon:
		if p.sides != nil && math32.Abs(p.Normal.Z) < 0.5 {
			found := false
			zt, zb = -farClip, farClip
			for _, f := range p.sides {
				n := polygonNormal(f)
				if math32.Abs(n.Z) <= 1.0e-3 || !pointInPolygon2D(f, pos.X, pos.Y) {
					continue
				}
				z := planeZAt(f[0], n, pos.X, pos.Y)
				zt, zb, found = max(zt, z), min(zb, z), true
			}
			return zt, zb, found && zt > zb
		}
		n := p.Normal
		if math32.Abs(n.Z) <= 1.0e-3 || !pointInPolygon2D(p.Vertices(), pos.X, pos.Y) {
			return 0, 0, false
		}
		z := planeZAt(p.Points[0], n, pos.X, pos.Y)
		half := 0.5 * p.Thickness / math32.Abs(n.Z)
		zt = min(z+half, p.Bounds.Max.Z)
		zb = max(z-half, p.Bounds.Min.Z)
		return max(zt, zb), min(zt, zb), true
	}
	return 0, 0, false
}
