package sim

import (
	"collmatrix/internal/physics"

	"github.com/EngoEngine/ecs"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Sleep thresholds
const (
	SleepVelocityThreshold = 0.3 // units/sec - below this, a resting body might sleep
	SleepTimeThreshold     = 0.3 // seconds of low velocity before sleeping
)

// maxSubsteps caps how finely one tick of motion is subdivided.
const maxSubsteps = 32

// Body is a ballistic mover: a ball, projectile, debris and so on.
type Body struct {
	ecs.BasicEntity
	Mover physics.Mover

	// Sleeping bodies skip simulation until woken.
	Sleeping   bool
	sleepTimer float32
	lastPos    rl.Vector3
}

// Wake forces the body out of sleep.
func (b *Body) Wake() {
	b.Sleeping = false
	b.sleepTimer = 0
	b.Mover.Flags &^= physics.FlagAllStopped
	b.Mover.Stuck = false
}

// trySleep puts a slow body resting on something to sleep.
func (b *Body) trySleep(dt float32, resting bool) {
	if b.Sleeping {
		return
	}
	if !resting || rl.Vector3Length(b.Mover.Velocity) >= SleepVelocityThreshold {
		b.sleepTimer = 0
		return
	}
	b.sleepTimer += dt
	// damp while nearly at rest to reduce jitter
	b.Mover.Velocity = rl.Vector3Scale(b.Mover.Velocity, 0.9)
	if b.sleepTimer >= SleepTimeThreshold {
		b.Sleeping = true
		b.Mover.Velocity = rl.Vector3{}
	}
}

// Agent is a walking character kept on the ground by the height resolver.
type Agent struct {
	ecs.BasicEntity
	Pos rl.Vector3
	// Velocity is the horizontal walking velocity; Z is ignored.
	Velocity rl.Vector3
	ZVel     float32
	Flight   bool
	Fall     physics.FallState
	Outcome  physics.GroundOutcome
	// Self is the dynamic sphere other movers collide with.
	Self physics.Handle

	Landings int
	Crushed  int
	lastPos  rl.Vector3
}
