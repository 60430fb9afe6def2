package physics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// MoverKind classifies the objects that move through the world.
type MoverKind uint8

const (
	MoverBall MoverKind = iota
	MoverPlayer
	MoverAgent
	MoverProjectile
	MoverLandmine
	MoverPlasma
	MoverDebris
	MoverLeaf
	MoverCharred
	MoverShrapnel
	MoverBeam
	MoverLaser
	MoverFire
	MoverSmoke
	MoverDrop
	MoverParticle

	NumMoverKinds
)

var moverKindNames = [NumMoverKinds]string{
	"ball", "player", "agent", "projectile", "landmine", "plasma", "debris", "leaf",
	"charred", "shrapnel", "beam", "laser", "fire", "smoke", "drop", "particle",
}

func (k MoverKind) String() string {
	if k < NumMoverKinds {
		return moverKindNames[k]
	}
	return fmt.Sprintf("mover(%d)", uint8(k))
}

// ParseMoverKind looks a kind up by name.
func ParseMoverKind(name string) (MoverKind, bool) {
	for i, n := range moverKindNames {
		if n == name {
			return MoverKind(i), true
		}
	}
	return 0, false
}

// IsAgent reports kinds that walk on surfaces and step up ledges.
func (k MoverKind) IsAgent() bool {
	return k == MoverPlayer || k == MoverAgent
}

// fragile kinds never mark the primitives they touch.
func (k MoverKind) fragile() bool {
	switch k {
	case MoverCharred, MoverShrapnel, MoverBeam, MoverLaser, MoverFire, MoverSmoke, MoverParticle:
		return true
	}
	return false
}

type TypeFlags uint8

const (
	// TypeDrop kinds lose all velocity on resting contact.
	TypeDrop TypeFlags = 1 << iota
	TypeFlat
	TypeExplodeOnCollision
)

// ObjectType is the physical description shared by every mover of a kind.
type ObjectType struct {
	Radius           float32
	Mass             float32
	Elasticity       float32
	Friction         float32
	Gravity          float32
	TerminalVelocity float32
	StepHeight       float32
	Flags            TypeFlags
}

func DefaultObjectTypes() [NumMoverKinds]ObjectType {
	var t [NumMoverKinds]ObjectType
	t[MoverBall] = ObjectType{Radius: 0.12, Mass: 0.5, Elasticity: 0.8, Friction: 0.02, Gravity: 1, TerminalVelocity: 30}
	t[MoverPlayer] = ObjectType{Radius: 0.5, Mass: 80, Friction: 0.2, Gravity: 1, TerminalVelocity: 40, StepHeight: 0.3}
	t[MoverAgent] = ObjectType{Radius: 0.5, Mass: 80, Friction: 0.2, Gravity: 1, TerminalVelocity: 40, StepHeight: 0.3}
	t[MoverProjectile] = ObjectType{Radius: 0.05, Mass: 0.1, Friction: 0.01, Gravity: 0.2, TerminalVelocity: 200, Flags: TypeExplodeOnCollision}
	t[MoverLandmine] = ObjectType{Radius: 0.15, Mass: 2, Elasticity: 0.1, Friction: 2.0, Gravity: 1, TerminalVelocity: 30}
	t[MoverPlasma] = ObjectType{Radius: 0.1, Mass: 0.2, Friction: 0.01, Gravity: 0.05, TerminalVelocity: 100, Flags: TypeExplodeOnCollision}
	t[MoverDebris] = ObjectType{Radius: 0.05, Mass: 0.2, Elasticity: 0.4, Friction: 0.3, Gravity: 1, TerminalVelocity: 30}
	t[MoverLeaf] = ObjectType{Radius: 0.04, Mass: 0.01, Friction: 1.5, Gravity: 0.2, TerminalVelocity: 2, Flags: TypeFlat}
	t[MoverCharred] = ObjectType{Radius: 0.05, Mass: 0.1, Elasticity: 0.2, Friction: 0.5, Gravity: 1, TerminalVelocity: 30}
	t[MoverShrapnel] = ObjectType{Radius: 0.02, Mass: 0.05, Elasticity: 0.5, Friction: 0.4, Gravity: 1, TerminalVelocity: 60}
	t[MoverBeam] = ObjectType{Radius: 0.01, Friction: 0.01, TerminalVelocity: 1000}
	t[MoverLaser] = ObjectType{Radius: 0.01, Friction: 0.01, TerminalVelocity: 1000}
	t[MoverFire] = ObjectType{Radius: 0.2, Mass: 0.01, Friction: 2.0, Gravity: 0.1, TerminalVelocity: 5}
	t[MoverSmoke] = ObjectType{Radius: 0.2, Mass: 0.01, Friction: 0.05, Gravity: -0.05, TerminalVelocity: 2}
	t[MoverDrop] = ObjectType{Radius: 0.01, Mass: 0.01, Friction: 0.1, Gravity: 1, TerminalVelocity: 10, Flags: TypeDrop}
	t[MoverParticle] = ObjectType{Radius: 0.02, Mass: 0.01, Elasticity: 0.3, Friction: 0.2, Gravity: 1, TerminalVelocity: 20}
	return t
}

// MoverFlags record what the resolver did to a mover.
type MoverFlags uint16

const (
	FlagZStopped MoverFlags = 1 << iota
	FlagXYZStopped
	FlagStaticTopContact
	FlagPlatformContact
	FlagCollided

	FlagAllStopped = FlagZStopped | FlagXYZStopped
)

// Mover is an object resolved against the world each tick.
type Mover struct {
	Index    int
	Kind     MoverKind
	Pos      rl.Vector3
	Velocity rl.Vector3
	// Scale multiplies the type radius; zero means 1.
	Scale float32
	// Source is the primitive that launched a projectile.
	Source Handle
	// Self is an agent's own primitive.
	Self       Handle
	Flags      MoverFlags
	Stuck      bool
	Disabled   bool
	Teleported bool
}

// NewMover returns a mover of kind at pos with no source or self primitive.
func NewMover(kind MoverKind, index int, pos rl.Vector3) Mover {
	return Mover{Index: index, Kind: kind, Pos: pos, Source: NoHandle, Self: NoHandle}
}

func (m *Mover) scale() float32 {
	if m.Scale <= 0 {
		return 1
	}
	return m.Scale
}
