package config

import (
	"collmatrix/internal/physics"
	"collmatrix/internal/platform"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

// Scene lists the geometry, platforms and movers a world starts with.
type Scene struct {
	Platforms []PlatformDef  `json:"platforms,omitempty"`
	Objects   []PrimitiveDef `json:"objects,omitempty"`
	Movers    []MoverDef     `json:"movers,omitempty"`
	Agents    []AgentDef     `json:"agents,omitempty"`
}

type PlatformDef struct {
	Range [3]float32 `json:"range"`
	Speed float32    `json:"speed"`
	Pause float32    `json:"pause,omitempty"`
}

// PrimitiveDef describes one collision primitive. Type selects which
// fields apply: cube uses Min and Max, sphere uses Center and Radius,
// cylinder uses P1, P2, Radius and Radius2, polygon uses Points and
// Thickness. hollowCube uses Min, Max and Thickness.
type PrimitiveDef struct {
	Type      string       `json:"type"`
	Min       [3]float32   `json:"min,omitempty"`
	Max       [3]float32   `json:"max,omitempty"`
	Center    [3]float32   `json:"center,omitempty"`
	P1        [3]float32   `json:"p1,omitempty"`
	P2        [3]float32   `json:"p2,omitempty"`
	Radius    float32      `json:"radius,omitempty"`
	Radius2   float32      `json:"radius2,omitempty"`
	Points    [][3]float32 `json:"points,omitempty"`
	Thickness float32      `json:"thickness,omitempty"`

	Elasticity  float32 `json:"elasticity,omitempty"`
	Dynamic     bool    `json:"dynamic,omitempty"`
	Occluder    bool    `json:"occluder,omitempty"`
	NoCollision bool    `json:"noCollision,omitempty"`
	OpenEnded   bool    `json:"openEnded,omitempty"`
	AreaTrigger bool    `json:"areaTrigger,omitempty"`
	Fixed       bool    `json:"fixed,omitempty"`
	// Platform is the index into Platforms, or nil for world geometry.
	Platform *int `json:"platform,omitempty"`
}

type MoverDef struct {
	Kind     string     `json:"kind"`
	Position [3]float32 `json:"position"`
	Velocity [3]float32 `json:"velocity,omitempty"`
}

type AgentDef struct {
	Position [3]float32 `json:"position"`
	// Velocity is the walking velocity; Z is ignored.
	Velocity [3]float32 `json:"velocity,omitempty"`
	Flight   bool       `json:"flight,omitempty"`
}

func vec(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

func (s *Scene) Validate() error {
	for i, p := range s.Platforms {
		if p.Speed <= 0 || p.Range == [3]float32{} {
			return errors.Errorf("platform %d needs a travel range and a positive speed", i)
		}
	}
	for i, o := range s.Objects {
		if o.Platform != nil && (*o.Platform < 0 || *o.Platform >= len(s.Platforms)) {
			return errors.Errorf("object %d refers to platform %d of %d", i, *o.Platform, len(s.Platforms))
		}
		switch o.Type {
		case "cube", "hollowCube":
			for k := 0; k < 3; k++ {
				if o.Min[k] > o.Max[k] {
					return errors.Errorf("object %d: min %v above max %v", i, o.Min, o.Max)
				}
			}
		case "sphere":
			if o.Radius <= 0 {
				return errors.Errorf("object %d: sphere radius %g must be positive", i, o.Radius)
			}
		case "cylinder":
			if o.Radius <= 0 && o.Radius2 <= 0 {
				return errors.Errorf("object %d: cylinder needs a radius", i)
			}
			if o.P1 == o.P2 {
				return errors.Errorf("object %d: cylinder ends coincide", i)
			}
		case "polygon":
			if n := len(o.Points); n < 3 || n > physics.MaxPolygonPoints {
				return errors.Errorf("object %d: polygon needs 3 to %d points, got %d", i, physics.MaxPolygonPoints, n)
			}
		default:
			return errors.Errorf("object %d: unknown type %q", i, o.Type)
		}
	}
	for i, m := range s.Movers {
		if _, ok := physics.ParseMoverKind(m.Kind); !ok {
			return errors.Errorf("mover %d: unknown kind %q", i, m.Kind)
		}
	}
	return nil
}

// AddPlatforms registers the scene's platforms. Call it before Populate.
func (s *Scene) AddPlatforms(reg *platform.Registry) {
	for _, p := range s.Platforms {
		reg.Add(vec(p.Range), p.Speed, p.Pause)
	}
}

// Populate inserts the scene's primitives into w and returns their
// handles. Hollow cubes contribute six handles.
func (s *Scene) Populate(w *physics.World) []physics.Handle {
	var out []physics.Handle
	for _, o := range s.Objects {
		params := physics.Params{
			Elasticity:  o.Elasticity,
			Dynamic:     o.Dynamic,
			Occluder:    o.Occluder,
			NoCollision: o.NoCollision,
			OpenEnded:   o.OpenEnded,
			AreaTrigger: o.AreaTrigger,
		}
		pid := -1
		if o.Platform != nil {
			pid = *o.Platform
		}
		var hs []physics.Handle
		switch o.Type {
		case "cube":
			box := physics.NewAABB(o.Min[0], o.Max[0], o.Min[1], o.Max[1], o.Min[2], o.Max[2])
			hs = append(hs, w.InsertCube(box, params, pid))
		case "hollowCube":
			box := physics.NewAABB(o.Min[0], o.Max[0], o.Min[1], o.Max[1], o.Min[2], o.Max[2])
			walls := w.InsertHollowCube(box, params, pid, o.Thickness)
			hs = append(hs, walls[:]...)
		case "sphere":
			hs = append(hs, w.InsertSphere(vec(o.Center), o.Radius, params, pid))
		case "cylinder":
			r2 := o.Radius2
			if r2 == 0 {
				r2 = o.Radius
			}
			hs = append(hs, w.InsertCylinder(vec(o.P1), vec(o.P2), o.Radius, r2, params, pid))
		case "polygon":
			pts := make([]rl.Vector3, len(o.Points))
			for k, v := range o.Points {
				pts[k] = vec(v)
			}
			hs = append(hs, w.InsertPolygon(pts, params, o.Thickness, pid))
		}
		if o.Fixed {
			for _, h := range hs {
				w.MarkFixed(h)
			}
		}
		out = append(out, hs...)
	}
	return out
}
