package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Kind is the geometric shape of a collision primitive.
type Kind uint8

const (
	KindCube Kind = iota
	KindSphere
	KindCylinder
	KindRotatedCylinder
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindCube:
		return "cube"
	case KindSphere:
		return "sphere"
	case KindCylinder:
		return "cylinder"
	case KindRotatedCylinder:
		return "rotated-cylinder"
	case KindPolygon:
		return "polygon"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Status is the lifecycle state of a store slot.
type Status uint8

const (
	// StatusUnused slots sit on the free stack.
	StatusUnused Status = iota
	// StatusPending slots are allocated but not yet collidable, including
	// fixed slots parked by a reset until they are reinserted.
	StatusPending
	StatusStatic
	StatusDynamic
	// StatusFreed slots are removed statics still referenced by cells
	// until the next purge.
	StatusFreed
)

func (s Status) String() string {
	switch s {
	case StatusUnused:
		return "unused"
	case StatusPending:
		return "pending"
	case StatusStatic:
		return "static"
	case StatusDynamic:
		return "dynamic"
	case StatusFreed:
		return "freed"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Handle indexes a primitive in the object store.
type Handle int32

// NoHandle marks an empty handle.
const NoHandle Handle = -1

// MaxPolygonPoints bounds the vertex count of a polygon primitive.
const MaxPolygonPoints = 8

const (
	minPolyThickness   = 1.0e-4
	thickPolyThreshold = 2.0e-4
)

// Verdict is a collision callback's answer for one contact.
type Verdict uint8

const (
	Accepted Verdict = iota
	Vetoed
)

// Impact describes one contact between a mover and a primitive.
type Impact struct {
	Primitive     Handle
	CallbackIndex int
	Mover         int
	Kind          MoverKind
	Velocity      rl.Vector3
	Position      rl.Vector3
	Energy        float32
}

// CollisionFunc runs when a mover touches a primitive. Returning Vetoed
// cancels the contact and restores the mover's pre-contact state.
type CollisionFunc func(Impact) Verdict

// Params holds the surface properties of a primitive.
type Params struct {
	Elasticity  float32
	Dynamic     bool
	Occluder    bool
	NoCollision bool
	// OpenEnded cylinders have no end caps.
	OpenEnded bool
	// AreaTrigger spheres reach agents from farther away, used by landmines.
	AreaTrigger   bool
	Callback      CollisionFunc
	CallbackIndex int
}

// Primitive is one collision shape. Field meaning depends on Kind:
// cubes use Bounds only; spheres use Points[0], Radius and its square in
// Radius2; cylinders use Points[0..1] with Radius at Points[0] and
// Radius2 at Points[1];
// polygons use Points[:NPoints], Normal, Thickness and Radius as the
// distance from Center to the farthest vertex.
type Primitive struct {
	Kind       Kind
	Status     Status
	ID         Handle
	Generation uint32
	Bounds     AABB

	Points    [MaxPolygonPoints]rl.Vector3
	NPoints   int
	Radius    float32
	Radius2   float32
	Normal    rl.Vector3
	Thickness float32

	PlatformID       int
	Fixed            bool
	DestroyOnContact bool
	Params           Params

	// Counter stamps the last query that visited this primitive.
	Counter     uint32
	ImpactTicks int

	// zSpan is the vertical range including platform travel.
	zSpan [2]float32
	sides [][]rl.Vector3
	// shift is the platform displacement since insertion.
	shift rl.Vector3
}

// IsLive reports whether the primitive takes part in collision queries.
func (p *Primitive) IsLive() bool {
	return p.Status == StatusStatic || p.Status == StatusDynamic
}

func (p *Primitive) Collidable() bool {
	return p.IsLive() && !p.Params.NoCollision
}

// TrulyStatic primitives are static and not carried by a platform.
func (p *Primitive) TrulyStatic() bool {
	return p.Status == StatusStatic && p.PlatformID < 0
}

func (p *Primitive) IsOccluder() bool {
	return p.Params.Occluder && !p.Params.Dynamic
}

// Vertices returns the polygon's points.
func (p *Primitive) Vertices() []rl.Vector3 {
	return p.Points[:p.NPoints]
}

// Center is the primitive's reference point.
func (p *Primitive) Center() rl.Vector3 {
	switch p.Kind {
	case KindSphere:
		return p.Points[0]
	case KindCylinder, KindRotatedCylinder:
		return rl.Vector3Scale(rl.Vector3Add(p.Points[0], p.Points[1]), 0.5)
	case KindPolygon:
		var c rl.Vector3
		for _, v := range p.Vertices() {
			c = rl.Vector3Add(c, v)
		}
		return rl.Vector3Scale(c, 1/float32(max(p.NPoints, 1)))
	}
	return p.Bounds.Center()
}

// BoundingRadius is the radius of a sphere around Center that encloses
// the primitive.
func (p *Primitive) BoundingRadius() float32 {
	switch p.Kind {
	case KindSphere:
		return p.Radius
	case KindPolygon:
		return p.Radius + 0.5*p.Thickness
	}
	return 0.5 * rl.Vector3Length(p.Bounds.Size())
}

// ContainsPointXY reports whether the primitive's horizontal footprint
// covers (x, y).
func (p *Primitive) ContainsPointXY(x, y float32) bool {
	q := rl.Vector3{X: x, Y: y}
	switch p.Kind {
	case KindSphere, KindCylinder:
		return distXYLess(q, p.Points[0], p.Radius)
	case KindPolygon:
		return pointInPolygon2D(p.Vertices(), x, y)
	}
	return p.Bounds.ContainsXY(q)
}

// computeBounds derives Bounds from the shape parameters.
func (p *Primitive) computeBounds() {
	switch p.Kind {
	case KindSphere:
		p.Bounds = NewAABBFromCenter(p.Points[0], rl.Vector3{X: 2 * p.Radius, Y: 2 * p.Radius, Z: 2 * p.Radius})
	case KindCylinder, KindRotatedCylinder:
		p.Bounds = cylinderBounds(p.Points[0], p.Points[1], p.Radius, p.Radius2)
	case KindPolygon:
		pts := p.Vertices()
		b := AABB{Min: pts[0], Max: pts[0]}
		for _, v := range pts[1:] {
			b.Min = vecMin(b.Min, v)
			b.Max = vecMax(b.Max, v)
		}
		if p.Thickness > minPolyThickness {
			h := 0.5 * p.Thickness
			ext := rl.Vector3{X: h * math32.Abs(p.Normal.X), Y: h * math32.Abs(p.Normal.Y), Z: h * math32.Abs(p.Normal.Z)}
			b.Min = rl.Vector3Subtract(b.Min, ext)
			b.Max = rl.Vector3Add(b.Max, ext)
		}
		p.Bounds = b
	}
}

// cylinderBounds is the box around a capped cone frustum.
func cylinderBounds(p1, p2 rl.Vector3, r1, r2 float32) AABB {
	u := rl.Vector3Subtract(p2, p1)
	l := rl.Vector3Length(u)
	var e [3]float32
	for i := 0; i < 3; i++ {
		s := float32(1)
		if l > tolerance {
			c := axis(u, i) / l
			s = math32.Sqrt(max(0, 1-c*c))
		}
		e[i] = s
	}
	var b AABB
	for i := 0; i < 3; i++ {
		lo := min(axis(p1, i)-r1*e[i], axis(p2, i)-r2*e[i])
		hi := max(axis(p1, i)+r1*e[i], axis(p2, i)+r2*e[i])
		setAxis(&b.Min, i, lo)
		setAxis(&b.Max, i, hi)
	}
	return b
}

// translate moves the shape by d. Side faces are reallocated so copies
// of the primitive never share them.
func (p *Primitive) translate(d rl.Vector3) {
	for i := range p.Points {
		p.Points[i] = rl.Vector3Add(p.Points[i], d)
	}
	p.Bounds = AABB{Min: rl.Vector3Add(p.Bounds.Min, d), Max: rl.Vector3Add(p.Bounds.Max, d)}
	if p.sides != nil {
		sides := make([][]rl.Vector3, len(p.sides))
		for i, f := range p.sides {
			sides[i] = make([]rl.Vector3, len(f))
			for j, v := range f {
				sides[i][j] = rl.Vector3Add(v, d)
			}
		}
		p.sides = sides
	}
}

// reset clears a slot for reuse, keeping identity and generation.
func (p *Primitive) reset() {
	gen := p.Generation
	id := p.ID
	*p = Primitive{ID: id, Generation: gen, PlatformID: -1}
}
