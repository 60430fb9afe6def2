package physics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ShiftPlatform moves every live primitive carried by platform id by
// delta. The grid is left alone: primitives were registered over the
// platform's whole travel when inserted. Returns the number moved.
func (w *World) ShiftPlatform(id int, delta rl.Vector3) int {
	if w.platforms == nil || id < 0 || id >= w.platforms.Len() {
		panic(fmt.Sprintf("physics: platform id %d out of range", id))
	}
	if isZeroVec(delta) {
		return 0
	}
	n := 0
	w.store.Each(func(h Handle, p *Primitive) {
		if p.PlatformID != id || !p.IsLive() {
			return
		}
		p.translate(delta)
		p.shift = rl.Vector3Add(p.shift, delta)
		n++
	})
	return n
}

// PlatformOffset is how far a primitive has travelled with its platform.
func (w *World) PlatformOffset(h Handle) rl.Vector3 {
	return w.store.Get(h).shift
}
