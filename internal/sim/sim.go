// Package sim runs the collision world on a fixed tick: platforms move,
// ballistic bodies and walking agents are resolved, and deferred removals
// are purged.
package sim

import (
	"log"

	"collmatrix/internal/config"
	"collmatrix/internal/engine"
	"collmatrix/internal/physics"
	"collmatrix/internal/platform"

	"github.com/EngoEngine/ecs"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type Options struct {
	StepHeight float32
	HeadHeight float32
}

// Stats counts what happened since the simulation started.
type Stats struct {
	Impacts  int
	Crushes  int
	Landings int
}

// Sim owns an ECS world whose systems drive one collision world. It is
// not safe for concurrent use.
type Sim struct {
	World     *physics.World
	Platforms *platform.Registry
	Ticks     int
	Stats     Stats
	// Ticked fires after every step.
	Ticked engine.Event

	ecs    ecs.World
	movers *MoverSystem
	agents *AgentSystem
	byID   map[uint64]*Agent
}

// New wires the systems around w. reg may be nil when there are no
// platforms.
func New(w *physics.World, reg *platform.Registry, opt Options) *Sim {
	s := &Sim{
		World:     w,
		Platforms: reg,
		movers:    &MoverSystem{world: w},
		agents:    &AgentSystem{world: w, stepHeight: opt.StepHeight, headHeight: opt.HeadHeight},
		byID:      make(map[uint64]*Agent),
	}
	s.ecs.AddSystem(&PlatformSystem{world: w, platforms: reg})
	s.ecs.AddSystem(s.movers)
	s.ecs.AddSystem(s.agents)
	s.ecs.AddSystem(&PurgeSystem{world: w})

	w.Impacts.AddListener(func(physics.Impact) { s.Stats.Impacts++ })
	w.Crushes.AddListener(func(c physics.Crush) {
		s.Stats.Crushes++
		if a, ok := s.byID[uint64(c.Mover)]; ok {
			a.Crushed++
		}
	})
	w.Landings.AddListener(func(l physics.Landing) {
		s.Stats.Landings++
		if a, ok := s.byID[uint64(l.Mover)]; ok {
			a.Landings++
		}
	})
	return s
}

// FromConfig builds the terrain, platforms, collision world and scene
// described by cfg.
func FromConfig(cfg *config.Config) *Sim {
	reg := platform.NewRegistry()
	cfg.Scene.AddPlatforms(reg)
	ground := cfg.NewTerrain()
	w := physics.NewWorld(cfg.NewGrid(), ground, reg, cfg.Settings())
	w.Surface = ground
	cfg.ApplyObjectTypes(w)
	handles := cfg.Scene.Populate(w)
	w.Optimize()

	s := New(w, reg, Options{StepHeight: cfg.Agent.StepHeight, HeadHeight: cfg.Agent.HeadHeight})
	for _, m := range cfg.Scene.Movers {
		kind, _ := physics.ParseMoverKind(m.Kind)
		s.AddMover(kind, vec(m.Position), vec(m.Velocity))
	}
	for _, def := range cfg.Scene.Agents {
		a := s.AddAgent(vec(def.Position))
		a.Velocity = vec(def.Velocity)
		a.Flight = def.Flight
	}
	log.Printf("Sim: %d primitives, %d platforms, %d movers, %d agents", len(handles), reg.Len(), len(cfg.Scene.Movers), len(cfg.Scene.Agents))
	return s
}

func vec(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// AddMover launches a ballistic body.
func (s *Sim) AddMover(kind physics.MoverKind, pos, vel rl.Vector3) *Body {
	b := &Body{BasicEntity: ecs.NewBasic()}
	b.Mover = physics.NewMover(kind, int(b.ID()), pos)
	b.Mover.Velocity = vel
	s.movers.Add(b)
	return b
}

// AddAgent places a walking agent and registers its collision sphere.
func (s *Sim) AddAgent(pos rl.Vector3) *Agent {
	a := &Agent{BasicEntity: ecs.NewBasic(), Pos: pos}
	s.agents.Add(a)
	s.byID[a.ID()] = a
	return a
}

// Remove takes a body or agent out of the simulation.
func (s *Sim) Remove(e ecs.BasicEntity) {
	s.ecs.RemoveEntity(e)
	delete(s.byID, e.ID())
}

// Bodies returns the live ballistic bodies.
func (s *Sim) Bodies() []*Body {
	return s.movers.bodies
}

func (s *Sim) Agents() []*Agent {
	return s.agents.agents
}

// Step advances one tick.
func (s *Sim) Step() {
	s.ecs.Update(s.World.TimeStep())
	s.Ticks++
	s.Ticked.Invoke()
}

// Run advances n ticks.
func (s *Sim) Run(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}
