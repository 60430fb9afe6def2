package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func agentQuery(pos rl.Vector3) *GroundQuery {
	return &GroundQuery{
		Pos:        pos,
		LastPos:    pos,
		StepHeight: 0.5,
		Kind:       MoverAgent,
		Self:       NoHandle,
		Fall:       &FallState{},
	}
}

func TestAgentDropsOntoCube(t *testing.T) {
	w := newTestWorld(t)
	w.ObjectType(MoverAgent).Radius = 1
	w.InsertCube(NewAABB(0, 10, 0, 10, 0, 5), Params{}, -1)
	landings := 0
	w.Landings.AddListener(func(Landing) { landings++ })

	q := agentQuery(rl.Vector3{X: 5, Y: 5, Z: 20})
	landed := false
	for tick := 0; tick < 1000; tick++ {
		out := w.ResolveGroundHeight(q)
		q.LastPos = q.Pos
		if out == GroundStepped {
			landed = true
			break
		}
		if out != GroundFalling {
			t.Fatalf("Expected falling before landing, got %s at tick %d (z=%f)", out, tick, q.Pos.Z)
		}
		if q.Pos.Z < 6 {
			t.Fatalf("Expected agent to stay above the cube, got z=%f", q.Pos.Z)
		}
	}
	if !landed {
		t.Fatal("Expected agent to land")
	}
	if q.Pos.Z != 6 {
		t.Errorf("Expected z=6 on landing, got %f", q.Pos.Z)
	}
	if q.ZVel != 0 {
		t.Errorf("Expected zero vertical velocity on landing, got %f", q.ZVel)
	}
	if landings != 1 {
		t.Errorf("Expected one landing event, got %d", landings)
	}

	for i := 0; i < 3; i++ {
		if out := w.ResolveGroundHeight(q); out != GroundUnchanged {
			t.Errorf("Expected unchanged after landing, got %s", out)
		}
		q.LastPos = q.Pos
		if q.Pos.Z != 6 || q.ZVel != 0 {
			t.Errorf("Expected agent at rest at z=6, got z=%f vz=%f", q.Pos.Z, q.ZVel)
		}
	}
}

func TestAgentStepsUpLowLedge(t *testing.T) {
	w := newTestWorld(t)
	w.ObjectType(MoverAgent).Radius = 1
	w.InsertCube(NewAABB(4, 6, 4, 6, 0, 0.3), Params{}, -1)
	q := agentQuery(rl.Vector3{X: 5, Y: 5, Z: 1})

	if out := w.ResolveGroundHeight(q); out != GroundStepped {
		t.Errorf("Expected stepped, got %s", out)
	}
	if !approx(q.Pos.Z, 1.3) {
		t.Errorf("Expected z=1.3 on the ledge, got %f", q.Pos.Z)
	}

	q.LastPos = q.Pos
	if out := w.ResolveGroundHeight(q); out != GroundUnchanged {
		t.Errorf("Expected repeated query to be unchanged, got %s", out)
	}
	if !approx(q.Pos.Z, 1.3) {
		t.Errorf("Expected z to stay 1.3, got %f", q.Pos.Z)
	}
}

func TestAgentRestingOnLedgeIsUnchanged(t *testing.T) {
	for _, top := range []float32{0.1, 0.3, 0.7, 1.3} {
		w := newTestWorld(t)
		w.ObjectType(MoverAgent).Radius = 1
		w.InsertCube(NewAABB(4, 6, 4, 6, top-1, top), Params{}, -1)
		// a hair below the surface, as accumulated float32 motion leaves it
		q := agentQuery(rl.Vector3{X: 5, Y: 5, Z: top + 1 - 1.0e-5})

		for tick := 0; tick < 5; tick++ {
			if out := w.ResolveGroundHeight(q); out != GroundUnchanged {
				t.Errorf("Expected unchanged on a %g ledge at tick %d, got %s", top, tick, out)
			}
			q.LastPos = q.Pos
		}
		if !approx(q.Pos.Z, top+1) {
			t.Errorf("Expected z=%f, got %f", top+1, q.Pos.Z)
		}
	}
}

func TestAgentBlockedByTallWall(t *testing.T) {
	w := newTestWorld(t)
	w.ObjectType(MoverAgent).Radius = 1
	w.InsertCube(NewAABB(4, 6, 4, 6, 0, 3), Params{}, -1)
	q := agentQuery(rl.Vector3{X: 5, Y: 5, Z: 1})
	q.LastPos = rl.Vector3{X: 3, Y: 5, Z: 1}
	q.ZVel = -2

	if out := w.ResolveGroundHeight(q); out != GroundStuck {
		t.Errorf("Expected stuck, got %s", out)
	}
	if q.Pos != q.LastPos {
		t.Errorf("Expected agent restored to %v, got %v", q.LastPos, q.Pos)
	}
	if q.ZVel != 0 {
		t.Errorf("Expected zero vertical velocity, got %f", q.ZVel)
	}
}

func TestAgentTeleportLandsOnTop(t *testing.T) {
	w := newTestWorld(t)
	w.ObjectType(MoverAgent).Radius = 1
	w.InsertCube(NewAABB(4, 6, 4, 6, 0, 3), Params{}, -1)
	q := agentQuery(rl.Vector3{X: 5, Y: 5, Z: 1})
	q.Teleported = true

	w.ResolveGroundHeight(q)

	if !approx(q.Pos.Z, 4) {
		t.Errorf("Expected teleported agent on top at z=4, got %f", q.Pos.Z)
	}
}

func TestFlyingAgentKeepsAltitude(t *testing.T) {
	w := newTestWorld(t)
	q := agentQuery(rl.Vector3{X: 5, Y: 5, Z: 20})
	q.Flight = true
	q.ZVel = -5

	if out := w.ResolveGroundHeight(q); out != GroundUnchanged {
		t.Errorf("Expected unchanged while flying, got %s", out)
	}
	if q.Pos.Z != 20 || q.ZVel != 0 {
		t.Errorf("Expected z=20 vz=0, got z=%f vz=%f", q.Pos.Z, q.ZVel)
	}
}

func TestAgentOutsideGrid(t *testing.T) {
	w := newTestWorld(t)
	q := agentQuery(rl.Vector3{X: -50, Y: -50, Z: 3})
	q.ZVel = -4

	if out := w.ResolveGroundHeight(q); out != GroundUnchanged {
		t.Errorf("Expected unchanged outside the grid, got %s", out)
	}
	if q.ZVel != 0 || q.Pos.Z != 3 {
		t.Errorf("Expected position kept and velocity zeroed, got z=%f vz=%f", q.Pos.Z, q.ZVel)
	}
}

func TestAgentIgnoresOwnPrimitive(t *testing.T) {
	w := newTestWorld(t)
	w.ObjectType(MoverAgent).Radius = 1
	self := w.InsertSphere(rl.Vector3{X: 5, Y: 5, Z: 1}, 1, Params{}, -1)
	q := agentQuery(rl.Vector3{X: 5, Y: 5, Z: 1})
	q.Self = self

	if out := w.ResolveGroundHeight(q); out != GroundUnchanged {
		t.Errorf("Expected unchanged, got %s", out)
	}
	if q.Pos.Z != 1 {
		t.Errorf("Expected agent to stay on the ground at z=1, got %f", q.Pos.Z)
	}
}

func TestAgentRestsOnTerrainUnderFloatingCube(t *testing.T) {
	w := newTestWorld(t)
	w.ObjectType(MoverAgent).Radius = 0.5
	w.InsertCube(NewAABB(4, 6, 4, 6, 5, 6), Params{}, -1)
	q := agentQuery(rl.Vector3{X: 5, Y: 5, Z: 0.5})

	if out := w.ResolveGroundHeight(q); out != GroundUnchanged {
		t.Errorf("Expected unchanged under the cube, got %s", out)
	}
	if q.Pos.Z != 0.5 {
		t.Errorf("Expected agent on the terrain at z=0.5, got %f", q.Pos.Z)
	}
}
