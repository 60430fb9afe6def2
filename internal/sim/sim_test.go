package sim

import (
	"testing"

	"collmatrix/internal/config"
	"collmatrix/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func newTestSim(t *testing.T) *Sim {
	t.Helper()
	w := physics.NewWorld(physics.NewGrid(32, 32, 0, 0, 1, 1), nil, nil, physics.DefaultSettings())
	return New(w, nil, Options{StepHeight: 0.3})
}

func TestAgentFallsAndLands(t *testing.T) {
	s := newTestSim(t)
	s.World.InsertCube(physics.NewAABB(0, 10, 0, 10, 0, 5), physics.Params{}, -1)
	a := s.AddAgent(rl.Vector3{X: 5, Y: 5, Z: 20})

	s.Run(240)

	if a.Pos.Z != 5.5 {
		t.Errorf("Expected agent on the cube at z=5.5, got %f", a.Pos.Z)
	}
	if a.Landings != 1 || s.Stats.Landings != 1 {
		t.Errorf("Expected one landing, got %d (stats %d)", a.Landings, s.Stats.Landings)
	}
	if a.Outcome != physics.GroundUnchanged {
		t.Errorf("Expected agent at rest, got %s", a.Outcome)
	}
	if s.Ticks != 240 {
		t.Errorf("Expected 240 ticks, got %d", s.Ticks)
	}
}

func TestAgentStopsAtWall(t *testing.T) {
	s := newTestSim(t)
	s.World.InsertCube(physics.NewAABB(7, 8, 0, 10, 0, 5), physics.Params{}, -1)
	a := s.AddAgent(rl.Vector3{X: 5, Y: 5, Z: 0.5})
	a.Velocity = rl.Vector3{X: 3}

	s.Run(60)

	if math32.Abs(a.Pos.X-6.5) > 1e-3 {
		t.Errorf("Expected agent against the wall at x=6.5, got %f", a.Pos.X)
	}
	if a.Pos.Z != 0.5 {
		t.Errorf("Expected agent to stay on the ground, got z=%f", a.Pos.Z)
	}
}

func TestAgentSphereFollowsAgent(t *testing.T) {
	s := newTestSim(t)
	a := s.AddAgent(rl.Vector3{X: 5, Y: 5, Z: 0.5})
	a.Velocity = rl.Vector3{Y: 6}

	s.Run(30)

	self := s.World.Get(a.Self)
	if self.Status != physics.StatusDynamic {
		t.Fatalf("Expected agent sphere to be dynamic, got %s", self.Status)
	}
	if math32.Abs(self.Points[0].Y-a.Pos.Y) > 1e-4 {
		t.Errorf("Expected sphere at y=%f, got %f", a.Pos.Y, self.Points[0].Y)
	}
	if n := s.World.Store().InUse(); n != 1 {
		t.Errorf("Expected exactly one primitive in use, got %d", n)
	}
}

func TestRemoveAgentFreesSphere(t *testing.T) {
	s := newTestSim(t)
	a := s.AddAgent(rl.Vector3{X: 5, Y: 5, Z: 0.5})
	if s.World.Store().InUse() != 1 {
		t.Fatalf("Expected agent sphere in the store")
	}

	s.Remove(a.BasicEntity)

	if s.World.Store().InUse() != 0 {
		t.Errorf("Expected agent sphere freed, %d in use", s.World.Store().InUse())
	}
	if len(s.Agents()) != 0 {
		t.Errorf("Expected no agents, got %d", len(s.Agents()))
	}
}

func TestBodySleepsOnGround(t *testing.T) {
	s := newTestSim(t)
	s.World.ObjectType(physics.MoverBall).Elasticity = 0
	b := s.AddMover(physics.MoverBall, rl.Vector3{X: 15, Y: 15, Z: 5}, rl.Vector3{})

	s.Run(180)

	if !b.Sleeping {
		t.Error("Expected ball to fall asleep on the ground")
	}
	if math32.Abs(b.Mover.Pos.Z-0.12) > 1e-4 {
		t.Errorf("Expected ball resting at z=0.12, got %f", b.Mover.Pos.Z)
	}

	b.Wake()
	b.Mover.Velocity = rl.Vector3{X: 1}
	s.Step()
	if b.Mover.Pos.X <= 15 {
		t.Errorf("Expected woken ball to move, got x=%f", b.Mover.Pos.X)
	}
}

func TestBodyLeavingGridIsDisabled(t *testing.T) {
	s := newTestSim(t)
	b := s.AddMover(physics.MoverBall, rl.Vector3{X: 31.4, Y: 5, Z: 5}, rl.Vector3{X: 60})

	s.Step()

	if !b.Mover.Disabled {
		t.Error("Expected ball outside the grid to be disabled")
	}
}

func TestImpactsCountedAndDecay(t *testing.T) {
	s := newTestSim(t)
	cube := s.World.InsertCube(physics.NewAABB(0, 10, 0, 10, 0, 5), physics.Params{}, -1)
	s.AddMover(physics.MoverBall, rl.Vector3{X: 5, Y: 5, Z: 5.1}, rl.Vector3{Z: -3})

	s.Step()

	if s.Stats.Impacts == 0 {
		t.Error("Expected the ball to hit the cube")
	}
	if n := s.World.Get(cube).ImpactTicks; n != 59 {
		t.Errorf("Expected impact timer 59 after one tick, got %d", n)
	}
}

func TestFromConfigMovesPlatforms(t *testing.T) {
	cfg := config.Default()
	cfg.Grid.NX, cfg.Grid.NY = 32, 32
	zero := 0
	cfg.Scene = config.Scene{
		Platforms: []config.PlatformDef{{Range: [3]float32{0, 0, 2}, Speed: 1}},
		Objects: []config.PrimitiveDef{
			{Type: "cube", Min: [3]float32{4, 4, 0}, Max: [3]float32{6, 6, 1}, Platform: &zero},
		},
		Movers: []config.MoverDef{{Kind: "ball", Position: [3]float32{20, 20, 3}}},
		Agents: []config.AgentDef{{Position: [3]float32{25, 25, 0.5}}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}

	s := FromConfig(cfg)
	if len(s.Bodies()) != 1 || len(s.Agents()) != 1 {
		t.Fatalf("Expected 1 body and 1 agent, got %d and %d", len(s.Bodies()), len(s.Agents()))
	}
	s.Step()

	lift := s.World.Get(0)
	if math32.Abs(lift.Bounds.Min.Z-1.0/60.0) > 1e-5 {
		t.Errorf("Expected platform cube raised by one tick of travel, got %f", lift.Bounds.Min.Z)
	}
	if !s.Platforms.IsMoving(0) {
		t.Error("Expected platform to be moving")
	}
}

func TestTickedEvent(t *testing.T) {
	s := newTestSim(t)
	n := 0
	s.Ticked.AddListener(func() { n++ })
	s.Run(3)
	if n != 3 {
		t.Errorf("Expected 3 tick events, got %d", n)
	}
}

func TestFromConfigBuildsSlices(t *testing.T) {
	cfg := config.Default()
	cfg.Grid.NX, cfg.Grid.NY = 32, 32
	for k := 0; k < 40; k++ {
		z := float32(k)
		cfg.Scene.Objects = append(cfg.Scene.Objects, config.PrimitiveDef{
			Type: "cube", Min: [3]float32{4.6, 4.6, z}, Max: [3]float32{5.4, 5.4, z + 0.5},
		})
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}

	s := FromConfig(cfg)

	if !s.World.Grid().Cell(5, 5).HasSlices() {
		t.Error("Expected the crowded column to be sliced after loading")
	}
	if s.World.Grid().Cell(10, 10).HasSlices() {
		t.Error("Expected an empty column to stay unsliced")
	}
}
