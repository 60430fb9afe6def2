package sim

import (
	"collmatrix/internal/physics"
	"collmatrix/internal/platform"

	"github.com/EngoEngine/ecs"
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// System priorities; higher runs first. Geometry moves before anything
// collides with it, and the purge runs last.
const (
	platformPriority = 30
	moverPriority    = 20
	agentPriority    = 10
	purgePriority    = 0
)

// PlatformSystem advances the platforms and drags their primitives along.
type PlatformSystem struct {
	world     *physics.World
	platforms *platform.Registry
}

func (s *PlatformSystem) Priority() int { return platformPriority }

func (s *PlatformSystem) Remove(ecs.BasicEntity) {}

func (s *PlatformSystem) Update(dt float32) {
	if s.platforms == nil {
		return
	}
	s.platforms.Advance(dt, func(id int, delta rl.Vector3) {
		s.world.ShiftPlatform(id, delta)
	})
}

// MoverSystem integrates ballistic bodies and resolves them against the
// world.
type MoverSystem struct {
	world  *physics.World
	bodies []*Body
}

func (s *MoverSystem) Priority() int { return moverPriority }

func (s *MoverSystem) Add(b *Body) {
	b.lastPos = b.Mover.Pos
	s.bodies = append(s.bodies, b)
}

func (s *MoverSystem) Remove(e ecs.BasicEntity) {
	for i, b := range s.bodies {
		if b.ID() == e.ID() {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			return
		}
	}
}

func (s *MoverSystem) Update(dt float32) {
	w := s.world
	for _, b := range s.bodies {
		m := &b.Mover
		if m.Disabled || b.Sleeping || (m.Stuck && m.Flags&physics.FlagAllStopped == physics.FlagAllStopped) {
			continue
		}
		m.Flags &^= physics.FlagStaticTopContact | physics.FlagPlatformContact | physics.FlagCollided
		typ := w.ObjectType(m.Kind)
		b.lastPos = m.Pos

		if m.Flags&physics.FlagXYZStopped == 0 {
			m.Velocity.Z -= w.Settings().Gravity * typ.Gravity * dt
			m.Velocity.Z = max(-typ.TerminalVelocity, min(typ.TerminalVelocity, m.Velocity.Z))
			m.Pos = rl.Vector3Add(m.Pos, rl.Vector3Scale(m.Velocity, dt))
		}
		if _, _, ok := w.Grid().Column(m.Pos.X, m.Pos.Y); !ok {
			// left the world
			m.Disabled = true
			continue
		}
		onGround := s.collideTerrain(m, typ)

		r := typ.Radius
		if m.Scale > 0 {
			r *= m.Scale
		}
		dist := rl.Vector3Length(rl.Vector3Subtract(m.Pos, b.lastPos))
		nsteps := min(maxSubsteps, int(math32.Ceil(dist/max(0.5*r, 1.0e-3))))
		w.MultistepResolve(m, b.lastPos, nsteps)

		b.trySleep(dt, onGround || m.Flags&physics.FlagStaticTopContact != 0)
	}
}

// collideTerrain bounces a body off the ground mesh.
func (s *MoverSystem) collideTerrain(m *physics.Mover, typ *physics.ObjectType) bool {
	w := s.world
	r := typ.Radius
	if m.Scale > 0 {
		r *= m.Scale
	}
	mh := w.Terrain().HeightAt(m.Pos.X, m.Pos.Y)
	if m.Pos.Z-r > mh {
		return false
	}
	m.Pos.Z = mh + r
	if m.Velocity.Z < 0 {
		m.Velocity.Z = -m.Velocity.Z * typ.Elasticity
		if m.Velocity.Z < 0.05 {
			m.Velocity.Z = 0
		}
	}
	f := 1 - min(1, (w.TimeStep()/w.Settings().Timestep)*typ.Friction)
	m.Velocity.X *= f
	m.Velocity.Y *= f
	return true
}

// AgentSystem walks agents, keeps them on the ground and moves their
// collision spheres with them.
type AgentSystem struct {
	world      *physics.World
	agents     []*Agent
	stepHeight float32
	headHeight float32
}

func (s *AgentSystem) Priority() int { return agentPriority }

func (s *AgentSystem) Add(a *Agent) {
	a.lastPos = a.Pos
	a.Self = s.register(a)
	s.agents = append(s.agents, a)
}

func (s *AgentSystem) Remove(e ecs.BasicEntity) {
	for i, a := range s.agents {
		if a.ID() == e.ID() {
			s.world.Remove(a.Self)
			s.agents = append(s.agents[:i], s.agents[i+1:]...)
			return
		}
	}
}

func (s *AgentSystem) register(a *Agent) physics.Handle {
	r := s.world.ObjectType(physics.MoverAgent).Radius
	return s.world.InsertSphere(a.Pos, r, physics.Params{Dynamic: true}, -1)
}

func (s *AgentSystem) Update(dt float32) {
	w := s.world
	for _, a := range s.agents {
		a.lastPos = a.Pos
		index := int(a.ID())

		m := physics.NewMover(physics.MoverAgent, index, a.Pos)
		m.Self = a.Self
		m.Velocity = rl.Vector3{X: a.Velocity.X, Y: a.Velocity.Y}
		m.Pos = rl.Vector3Add(m.Pos, rl.Vector3Scale(m.Velocity, dt))
		if _, _, ok := w.Grid().Column(m.Pos.X, m.Pos.Y); !ok {
			m.Pos = a.lastPos
		} else {
			r := w.ObjectType(physics.MoverAgent).Radius
			dist := rl.Vector3Length(rl.Vector3Subtract(m.Pos, a.lastPos))
			nsteps := min(maxSubsteps, int(math32.Ceil(dist/max(0.5*r, 1.0e-3))))
			w.MultistepResolve(&m, a.lastPos, nsteps)
		}

		q := physics.GroundQuery{
			Pos:        m.Pos,
			LastPos:    a.lastPos,
			StepHeight: s.stepHeight,
			ZVel:       a.ZVel,
			Kind:       physics.MoverAgent,
			Mover:      index,
			Self:       a.Self,
			Flight:     a.Flight,
			HeadHeight: s.headHeight,
			Fall:       &a.Fall,
		}
		a.Outcome = w.ResolveGroundHeight(&q)
		a.Pos, a.ZVel = q.Pos, q.ZVel

		// move the agent's own sphere to its new position
		w.Remove(a.Self)
		a.Self = s.register(a)
	}
}

// PurgeSystem flushes deferred static removals at the end of a tick.
type PurgeSystem struct {
	world *physics.World
}

func (s *PurgeSystem) Priority() int { return purgePriority }

func (s *PurgeSystem) Remove(ecs.BasicEntity) {}

func (s *PurgeSystem) Update(float32) {
	s.world.PurgeFreed(false)
	s.world.TickImpacts()
}
