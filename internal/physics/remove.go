package physics

import (
	"fmt"
	"log"
)

// Remove takes a primitive out of collision. Statics are only marked freed
// and stay in their cells until the next purge; dynamics are scrubbed from
// the grid and freed immediately. It returns 1 when the handle was freed
// now and 0 when the removal was deferred, the handle is negative or it was
// already freed. Out-of-range and unallocated handles panic.
func (w *World) Remove(h Handle) int {
	if h < 0 {
		return 0
	}
	p := w.store.Get(h)
	switch p.Status {
	case StatusFreed:
		return 0
	case StatusStatic:
		p.Status = StatusFreed
		w.removed++
		if w.removed >= w.settings.PurgeThreshold {
			w.PurgeFreed(false)
		}
		return 0
	}
	w.scrub(h)
	p.Status = StatusFreed
	w.store.Free(h)
	return 1
}

// scrub deletes h from every cell its raster reaches.
func (w *World) scrub(h Handle) {
	p := w.store.at(h)
	r := w.newRaster(p)
	static := p.Status == StatusStatic
	r.each(func(x, y int) {
		c := w.grid.Cell(x, y)
		if c.removeVal(h) && static {
			c.slicesDirty = true
		}
	})
}

// PurgeFreed drops freed statics from the grid once enough removals have
// accumulated, or unconditionally when force is set. Cells that lost a
// member get their extents and height clamp recomputed from the survivors.
func (w *World) PurgeFreed(force bool) {
	if w.removed == 0 || (!force && w.removed < w.settings.PurgeThreshold) {
		return
	}
	g := w.grid
	rasters := make(map[Handle]*raster)
	rasterOf := func(h Handle) *raster {
		if r, ok := rasters[h]; ok {
			return r
		}
		r := w.newRaster(w.store.at(h))
		rasters[h] = &r
		return &r
	}
	changed := 0
	for y := 0; y < g.NY; y++ {
		for x := 0; x < g.NX; x++ {
			c := g.Cell(x, y)
			keep := c.Vals[:0]
			dropped := false
			for _, h := range c.Vals {
				if s := w.store.at(h).Status; s == StatusFreed || s == StatusUnused {
					dropped = true
					continue
				}
				keep = append(keep, h)
			}
			if !dropped {
				continue
			}
			changed++
			c.Vals = keep
			c.resetExtents()
			c.slices = nil
			c.slicesDirty = true
			clampZ := w.terrain.MeshHeight(x, y)
			for _, h := range c.Vals {
				p := w.store.at(h)
				z1, z2, core, ok := rasterOf(h).extent(x, y)
				if !ok {
					continue
				}
				c.updateExtents(z1, z2, p.IsOccluder())
				if core && p.Status == StatusStatic && clampZ < z2 && w.terrain.MeshHeight(x, y)+2*w.settings.AgentRadius > z1 {
					clampZ = z2
				}
			}
			g.setHeightClamp(x, y, clampZ)
		}
	}
	freed := 0
	w.store.Each(func(h Handle, p *Primitive) {
		if p.Status == StatusFreed {
			w.store.Free(h)
			freed++
		}
	})
	log.Printf("Collision: purged %d removed objects, %d cells updated", freed, changed)
	w.removed = 0
}

// ResetAll empties the grid and frees every primitive. Fixed primitives
// keep their slots and can be brought back with Reinsert.
func (w *World) ResetAll() {
	g := w.grid
	for y := 0; y < g.NY; y++ {
		for x := 0; x < g.NX; x++ {
			g.Cell(x, y).clear()
			g.setHeightClamp(x, y, w.terrain.MeshHeight(x, y))
		}
	}
	fixed := 0
	w.store.Each(func(h Handle, p *Primitive) {
		if p.Fixed {
			fixed++
		}
		w.store.Free(h)
	})
	if w.store.InUse() != fixed {
		panic(fmt.Sprintf("physics: %d handles in use after reset, expected %d fixed", w.store.InUse(), fixed))
	}
	w.removed = 0
	w.zMin, w.zMax = farClip, -farClip
	log.Printf("Collision: reset, %d fixed objects kept", fixed)
}
