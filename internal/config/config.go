// Package config loads the collision world's settings from JSON.
package config

import (
	"encoding/json"
	"os"

	"collmatrix/internal/physics"
	"collmatrix/internal/terrain"

	"github.com/pkg/errors"
)

type Config struct {
	Grid    GridConfig    `json:"grid"`
	Physics PhysicsConfig `json:"physics"`
	Agent   AgentConfig   `json:"agent"`
	Terrain TerrainConfig `json:"terrain"`
	// ObjectTypes overrides the built-in mover table, keyed by kind name.
	ObjectTypes map[string]ObjectTypeDef `json:"objectTypes,omitempty"`
	Scene       Scene                    `json:"scene"`
}

type GridConfig struct {
	NX int     `json:"nx"`
	NY int     `json:"ny"`
	X0 float32 `json:"x0"`
	Y0 float32 `json:"y0"`
	DX float32 `json:"dx"`
	DY float32 `json:"dy"`
}

type PhysicsConfig struct {
	PurgeThreshold     int     `json:"purgeThreshold"`
	SliceThreshold     int     `json:"sliceThreshold"`
	SliceCount         int     `json:"sliceCount"`
	UseCollisionBorder bool    `json:"useCollisionBorder"`
	MaxObjectRadius    float32 `json:"maxObjectRadius"`
	StickThreshold     float32 `json:"stickThreshold"`
	Gravity            float32 `json:"gravity"`
	Timestep           float32 `json:"timestep"`
	TicksPerSecond     int     `json:"ticksPerSecond"`
	WalkOnIce          bool    `json:"walkOnIce"`
	Animate            bool    `json:"animate"`
	Seed               uint64  `json:"seed"`
}

type AgentConfig struct {
	Radius     float32 `json:"radius"`
	StepHeight float32 `json:"stepHeight"`
	HeadHeight float32 `json:"headHeight"`
}

type TerrainConfig struct {
	Height  float32     `json:"height"`
	Columns []ColumnDef `json:"columns,omitempty"`
	Water   []ColumnDef `json:"water,omitempty"`
}

// ColumnDef sets one terrain column to height Z.
type ColumnDef struct {
	X int     `json:"x"`
	Y int     `json:"y"`
	Z float32 `json:"z"`
}

// ObjectTypeDef overrides selected fields of a mover kind.
type ObjectTypeDef struct {
	Radius           *float32 `json:"radius,omitempty"`
	Mass             *float32 `json:"mass,omitempty"`
	Elasticity       *float32 `json:"elasticity,omitempty"`
	Friction         *float32 `json:"friction,omitempty"`
	Gravity          *float32 `json:"gravity,omitempty"`
	TerminalVelocity *float32 `json:"terminalVelocity,omitempty"`
	StepHeight       *float32 `json:"stepHeight,omitempty"`
}

// Default returns a configuration for a 64x64 grid of unit cells.
func Default() *Config {
	s := physics.DefaultSettings()
	return &Config{
		Grid: GridConfig{NX: 64, NY: 64, DX: 1, DY: 1},
		Physics: PhysicsConfig{
			PurgeThreshold:     s.PurgeThreshold,
			SliceThreshold:     s.SliceThreshold,
			SliceCount:         s.SliceCount,
			UseCollisionBorder: s.UseCollisionBorder,
			MaxObjectRadius:    s.MaxObjectRadius,
			StickThreshold:     s.StickThreshold,
			Gravity:            s.Gravity,
			Timestep:           s.Timestep,
			TicksPerSecond:     s.TicksPerSecond,
			WalkOnIce:          s.WalkOnIce,
			Animate:            s.Animate,
			Seed:               s.Seed,
		},
		Agent: AgentConfig{Radius: s.AgentRadius, StepHeight: 0.3, HeadHeight: 0},
	}
}

// Load reads a JSON file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Save writes the configuration as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write config %s", path)
}

func (c *Config) Validate() error {
	g := c.Grid
	if g.NX <= 0 || g.NY <= 0 {
		return errors.Errorf("grid size %dx%d must be positive", g.NX, g.NY)
	}
	if g.DX <= 0 || g.DY <= 0 {
		return errors.Errorf("grid spacing (%g, %g) must be positive", g.DX, g.DY)
	}
	p := c.Physics
	if p.PurgeThreshold < 1 {
		return errors.Errorf("purge threshold %d must be at least 1", p.PurgeThreshold)
	}
	if p.SliceThreshold < 0 || p.SliceCount < 0 {
		return errors.Errorf("slice threshold %d and count %d must not be negative", p.SliceThreshold, p.SliceCount)
	}
	if p.Timestep <= 0 || p.TicksPerSecond <= 0 {
		return errors.Errorf("timestep %g and ticks per second %d must be positive", p.Timestep, p.TicksPerSecond)
	}
	if p.MaxObjectRadius < 0 {
		return errors.Errorf("max object radius %g must not be negative", p.MaxObjectRadius)
	}
	if c.Agent.Radius <= 0 || c.Agent.StepHeight < 0 {
		return errors.Errorf("agent radius %g and step height %g out of range", c.Agent.Radius, c.Agent.StepHeight)
	}
	for _, col := range append(append([]ColumnDef(nil), c.Terrain.Columns...), c.Terrain.Water...) {
		if col.X < 0 || col.Y < 0 || col.X >= g.NX || col.Y >= g.NY {
			return errors.Errorf("terrain column (%d, %d) outside the grid", col.X, col.Y)
		}
	}
	for name, def := range c.ObjectTypes {
		if _, ok := physics.ParseMoverKind(name); !ok {
			return errors.Errorf("unknown object type %q", name)
		}
		if def.Radius != nil && *def.Radius <= 0 {
			return errors.Errorf("object type %q radius %g must be positive", name, *def.Radius)
		}
	}
	return errors.Wrap(c.Scene.Validate(), "scene")
}

// Settings derives the collision world settings.
func (c *Config) Settings() physics.Settings {
	p := c.Physics
	return physics.Settings{
		PurgeThreshold:     p.PurgeThreshold,
		SliceThreshold:     p.SliceThreshold,
		SliceCount:         p.SliceCount,
		UseCollisionBorder: p.UseCollisionBorder,
		MaxObjectRadius:    p.MaxObjectRadius,
		StickThreshold:     p.StickThreshold,
		Gravity:            p.Gravity,
		Timestep:           p.Timestep,
		TicksPerSecond:     p.TicksPerSecond,
		AgentRadius:        c.Agent.Radius,
		WalkOnIce:          p.WalkOnIce,
		Animate:            p.Animate,
		Seed:               p.Seed,
	}
}

func (c *Config) NewGrid() *physics.Grid {
	g := c.Grid
	return physics.NewGrid(g.NX, g.NY, g.X0, g.Y0, g.DX, g.DY)
}

// NewTerrain builds the heightfield under the grid.
func (c *Config) NewTerrain() *terrain.Heightfield {
	g := c.Grid
	h := terrain.NewFlat(g.NX, g.NY, g.X0, g.Y0, g.DX, g.DY, c.Terrain.Height)
	for _, col := range c.Terrain.Columns {
		h.Set(col.X, col.Y, col.Z)
	}
	for _, col := range c.Terrain.Water {
		h.SetWater(col.X, col.Y, col.Z)
	}
	return h
}

// ApplyObjectTypes copies the overrides into the world's mover table.
// Agents take their radius and step height from the agent section unless
// overridden.
func (c *Config) ApplyObjectTypes(w *physics.World) {
	for _, k := range []physics.MoverKind{physics.MoverPlayer, physics.MoverAgent} {
		t := w.ObjectType(k)
		t.Radius = c.Agent.Radius
		t.StepHeight = c.Agent.StepHeight
	}
	for name, def := range c.ObjectTypes {
		k, ok := physics.ParseMoverKind(name)
		if !ok {
			continue
		}
		t := w.ObjectType(k)
		set := func(dst *float32, v *float32) {
			if v != nil {
				*dst = *v
			}
		}
		set(&t.Radius, def.Radius)
		set(&t.Mass, def.Mass)
		set(&t.Elasticity, def.Elasticity)
		set(&t.Friction, def.Friction)
		set(&t.Gravity, def.Gravity)
		set(&t.TerminalVelocity, def.TerminalVelocity)
		set(&t.StepHeight, def.StepHeight)
	}
}
