package physics

import (
	"log"
	"math/rand/v2"

	rl "github.com/gen2brain/raylib-go/raylib"

	"collmatrix/internal/engine"
)

// Terrain supplies the ground surface under the grid.
type Terrain interface {
	// MeshHeight is the sampled ground height at column (x, y).
	MeshHeight(x, y int) float32
	// HeightAt interpolates the ground height at a world point.
	HeightAt(x, y float32) float32
	// WaterLevel reports the water surface at column (x, y), if any.
	WaterLevel(x, y int) (float32, bool)
}

// Platforms describes moving platforms that carry primitives.
type Platforms interface {
	Len() int
	// Range is the full travel vector of the platform.
	Range(id int) rl.Vector3
	Velocity(id int) rl.Vector3
	// LastDelta is the displacement applied on the most recent tick.
	LastDelta(id int) rl.Vector3
	IsMoving(id int) bool
}

// SnowSurface reports accumulated snow under an agent.
type SnowSurface interface {
	SnowHeight(pos rl.Vector3, radius float32) (float32, bool)
}

// SurfaceModifier is told where agents touch bare ground.
type SurfaceModifier interface {
	ModifyAt(pos rl.Vector3, radius float32, crush, burn bool)
}

// Crush is raised when a descending platform pushes an object down onto an agent.
type Crush struct {
	Primitive Handle
	Mover     int
	Kind      MoverKind
	Delta     rl.Vector3
}

// Landing is raised when an agent lands after a long enough fall.
type Landing struct {
	Mover    int
	Kind     MoverKind
	Ticks    int
	Velocity float32
}

// Settings tune the collision world.
type Settings struct {
	// PurgeThreshold is the number of pending static removals that triggers a purge.
	PurgeThreshold int
	// SliceThreshold is the minimum static membership for a cell to be z-sliced.
	SliceThreshold int
	SliceCount     int
	// UseCollisionBorder widens footprints by whole cells instead of by MaxObjectRadius.
	UseCollisionBorder bool
	MaxObjectRadius    float32
	// StickThreshold is the friction at and above which movers stick on contact.
	StickThreshold float32
	Gravity        float32
	Timestep       float32
	TicksPerSecond int
	// AgentRadius is the reference agent size for height clamping.
	AgentRadius float32
	WalkOnIce   bool
	// Animate enables platform riding and crush detection.
	Animate bool
	Seed    uint64
}

func DefaultSettings() Settings {
	return Settings{
		PurgeThreshold:     20,
		SliceThreshold:     32,
		SliceCount:         32,
		UseCollisionBorder: true,
		MaxObjectRadius:    0.5,
		StickThreshold:     0.9,
		Gravity:            9.81,
		Timestep:           1.0 / 60.0,
		TicksPerSecond:     60,
		AgentRadius:        0.5,
		Animate:            true,
		Seed:               1,
	}
}

// World is the collision subsystem: object store, grid and resolvers.
type World struct {
	settings  Settings
	grid      *Grid
	store     *ObjectStore
	terrain   Terrain
	platforms Platforms
	types     [NumMoverKinds]ObjectType
	rng       *rand.Rand

	dt         float32
	collBorder int
	removed    int
	stamp      uint32
	zMin, zMax float32

	// InvalidPair filters mover/primitive pairs that never collide.
	InvalidPair func(m *Mover, p *Primitive) bool
	Snow        SnowSurface
	Surface     SurfaceModifier

	Impacts  engine.EventWithArg[Impact]
	Crushes  engine.EventWithArg[Crush]
	Landings engine.EventWithArg[Landing]
}

// NewWorld builds an empty world over grid. terrain and platforms may be nil.
func NewWorld(grid *Grid, terrain Terrain, platforms Platforms, s Settings) *World {
	if terrain == nil {
		terrain = flatTerrain{}
	}
	w := &World{
		settings:  s,
		grid:      grid,
		store:     NewObjectStore(),
		terrain:   terrain,
		platforms: platforms,
		types:     DefaultObjectTypes(),
		rng:       rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15)),
		dt:        s.Timestep,
		zMin:      farClip,
		zMax:      -farClip,
	}
	if w.dt <= 0 {
		w.dt = 1.0 / 60.0
	}
	w.collBorder = int(s.MaxObjectRadius/max(grid.DX, grid.DY)) + 1
	for y := 0; y < grid.NY; y++ {
		for x := 0; x < grid.NX; x++ {
			grid.setHeightClamp(x, y, terrain.MeshHeight(x, y))
		}
	}
	log.Printf("Collision: world %dx%d cells of %.2fx%.2f, border %d", grid.NX, grid.NY, grid.DX, grid.DY, w.collBorder)
	return w
}

type flatTerrain struct{}

func (flatTerrain) MeshHeight(x, y int) float32 { return 0 }
func (flatTerrain) HeightAt(x, y float32) float32 { return 0 }
func (flatTerrain) WaterLevel(x, y int) (float32, bool) { return 0, false }

func (w *World) Grid() *Grid { return w.grid }
func (w *World) Store() *ObjectStore { return w.store }
func (w *World) Settings() Settings { return w.settings }
func (w *World) Terrain() Terrain { return w.terrain }
func (w *World) Platforms() Platforms { return w.platforms }

// ObjectType returns the mutable physical description of a mover kind.
func (w *World) ObjectType(k MoverKind) *ObjectType {
	return &w.types[k]
}

// SetTimeStep sets the duration of the current tick.
func (w *World) SetTimeStep(dt float32) {
	if dt > 0 {
		w.dt = dt
	}
}

func (w *World) TimeStep() float32 { return w.dt }

// PendingRemovals is the number of removed statics awaiting purge.
func (w *World) PendingRemovals() int { return w.removed }

// ZRange is the vertical extent of everything inserted since the last reset.
func (w *World) ZRange() (float32, float32) { return w.zMin, w.zMax }

// Get returns the primitive for an allocated handle.
func (w *World) Get(h Handle) *Primitive {
	return w.store.Get(h)
}

// TickImpacts ages the impact markers set by contacts.
func (w *World) TickImpacts() {
	w.store.Each(func(_ Handle, p *Primitive) {
		if p.ImpactTicks > 0 {
			p.ImpactTicks--
		}
	})
}

func (w *World) nextStamp() uint32 {
	w.stamp++
	if w.stamp == 0 {
		w.store.Each(func(_ Handle, p *Primitive) { p.Counter = 0 })
		w.stamp = 1
	}
	return w.stamp
}

func (w *World) ensureSlices(c *Cell) {
	if c.slicesDirty {
		c.buildSlices(w.store, w.settings.SliceThreshold, w.settings.SliceCount)
	}
}
