// Package platform moves platforms back and forth along a fixed travel
// vector and reports their motion to the collision world.
package platform

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Platform travels between its home position and home+Range at Speed
// world units per second, pausing for Pause seconds at each end.
type Platform struct {
	Range rl.Vector3
	Speed float32
	Pause float32
	// Active platforms move; inactive ones hold their position.
	Active bool

	t         float32
	dir       float32
	wait      float32
	velocity  rl.Vector3
	lastDelta rl.Vector3
}

// Registry holds every platform, indexed by the id primitives refer to.
type Registry struct {
	platforms []*Platform
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a platform and returns its id.
func (r *Registry) Add(travel rl.Vector3, speed, pause float32) int {
	if speed <= 0 || rl.Vector3Length(travel) == 0 {
		panic(fmt.Sprintf("platform: invalid travel %v at speed %g", travel, speed))
	}
	r.platforms = append(r.platforms, &Platform{Range: travel, Speed: speed, Pause: pause, Active: true, dir: 1})
	return len(r.platforms) - 1
}

func (r *Registry) Get(id int) *Platform {
	return r.platforms[id]
}

func (r *Registry) Len() int {
	return len(r.platforms)
}

func (r *Registry) Range(id int) rl.Vector3 {
	return r.platforms[id].Range
}

func (r *Registry) Velocity(id int) rl.Vector3 {
	return r.platforms[id].velocity
}

func (r *Registry) LastDelta(id int) rl.Vector3 {
	return r.platforms[id].lastDelta
}

func (r *Registry) IsMoving(id int) bool {
	return r.platforms[id].velocity != (rl.Vector3{})
}

// Offset is the platform's current displacement from home.
func (r *Registry) Offset(id int) rl.Vector3 {
	p := r.platforms[id]
	return rl.Vector3Scale(p.Range, p.t)
}

// Advance moves every active platform by one tick of dt seconds and
// calls fn with each platform's displacement.
func (r *Registry) Advance(dt float32, fn func(id int, delta rl.Vector3)) {
	for id, p := range r.platforms {
		p.advance(dt)
		if fn != nil && p.lastDelta != (rl.Vector3{}) {
			fn(id, p.lastDelta)
		}
	}
}

func (p *Platform) advance(dt float32) {
	p.lastDelta, p.velocity = rl.Vector3{}, rl.Vector3{}
	if !p.Active || dt <= 0 {
		return
	}
	if p.wait > 0 {
		p.wait = max(0, p.wait-dt)
		return
	}
	length := rl.Vector3Length(p.Range)
	prev := p.t
	p.t += p.dir * p.Speed * dt / length
	if p.t >= 1 || p.t <= 0 {
		p.t = min(1, max(0, p.t))
		p.dir = -p.dir
		p.wait = p.Pause
	}
	p.lastDelta = rl.Vector3Scale(p.Range, p.t-prev)
	p.velocity = rl.Vector3Scale(p.lastDelta, 1/dt)
}
