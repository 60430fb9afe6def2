// Package terrain holds the ground under the collision grid: one mesh
// height and an optional water level per column.
package terrain

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Heightfield is a regular grid of ground heights sampled at column
// centers, laid out the same way as the collision grid.
type Heightfield struct {
	NX, NY int
	X0, Y0 float32
	DX, DY float32

	heights  []float32
	water    []float32
	hasWater []bool

	// trampled and burned count agent contacts per column
	trampled []uint16
	burned   []uint16
}

// NewFlat creates a heightfield at constant height z.
func NewFlat(nx, ny int, x0, y0, dx, dy, z float32) *Heightfield {
	if nx <= 0 || ny <= 0 || dx <= 0 || dy <= 0 {
		panic(fmt.Sprintf("terrain: invalid heightfield %dx%d spacing (%g, %g)", nx, ny, dx, dy))
	}
	n := nx * ny
	h := &Heightfield{
		NX: nx, NY: ny, X0: x0, Y0: y0, DX: dx, DY: dy,
		heights:  make([]float32, n),
		water:    make([]float32, n),
		hasWater: make([]bool, n),
		trampled: make([]uint16, n),
		burned:   make([]uint16, n),
	}
	for i := range h.heights {
		h.heights[i] = z
	}
	return h
}

func (h *Heightfield) index(x, y int) int {
	return y*h.NX + x
}

func (h *Heightfield) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < h.NX && y < h.NY
}

// Set changes the ground height of one column.
func (h *Heightfield) Set(x, y int, z float32) {
	if !h.inside(x, y) {
		panic(fmt.Sprintf("terrain: column (%d, %d) outside %dx%d", x, y, h.NX, h.NY))
	}
	h.heights[h.index(x, y)] = z
}

// SetWater puts a water surface at height z over column (x, y).
func (h *Heightfield) SetWater(x, y int, z float32) {
	if !h.inside(x, y) {
		panic(fmt.Sprintf("terrain: column (%d, %d) outside %dx%d", x, y, h.NX, h.NY))
	}
	i := h.index(x, y)
	h.water[i] = z
	h.hasWater[i] = true
}

// MeshHeight returns the sampled height, clamping the indices to the grid.
func (h *Heightfield) MeshHeight(x, y int) float32 {
	x = min(max(x, 0), h.NX-1)
	y = min(max(y, 0), h.NY-1)
	return h.heights[h.index(x, y)]
}

// HeightAt interpolates the ground height bilinearly between the four
// surrounding samples.
func (h *Heightfield) HeightAt(px, py float32) float32 {
	fx := (px - h.X0) / h.DX
	fy := (py - h.Y0) / h.DY
	x0, y0 := int(math32.Floor(fx)), int(math32.Floor(fy))
	tx, ty := fx-float32(x0), fy-float32(y0)

	h00 := h.MeshHeight(x0, y0)
	h10 := h.MeshHeight(x0+1, y0)
	h01 := h.MeshHeight(x0, y0+1)
	h11 := h.MeshHeight(x0+1, y0+1)

	a := h00 + (h10-h00)*tx
	b := h01 + (h11-h01)*tx
	return a + (b-a)*ty
}

// WaterLevel reports the water surface over a column, if one was set.
func (h *Heightfield) WaterLevel(x, y int) (float32, bool) {
	if !h.inside(x, y) {
		return 0, false
	}
	i := h.index(x, y)
	return h.water[i], h.hasWater[i]
}

// ModifyAt records that something rested on the ground at pos, crushing
// or burning the vegetation of its column.
func (h *Heightfield) ModifyAt(pos rl.Vector3, radius float32, crush, burn bool) {
	x := int(math32.Floor((pos.X-h.X0)/h.DX + 0.5))
	y := int(math32.Floor((pos.Y-h.Y0)/h.DY + 0.5))
	if !h.inside(x, y) {
		return
	}
	i := h.index(x, y)
	if crush && h.trampled[i] < math.MaxUint16 {
		h.trampled[i]++
	}
	if burn && h.burned[i] < math.MaxUint16 {
		h.burned[i]++
	}
}

// Trampled is how many times agents have crushed the column's vegetation.
func (h *Heightfield) Trampled(x, y int) int {
	if !h.inside(x, y) {
		return 0
	}
	return int(h.trampled[h.index(x, y)])
}

// Burned is how many times fire has touched the column.
func (h *Heightfield) Burned(x, y int) int {
	if !h.inside(x, y) {
		return 0
	}
	return int(h.burned[h.index(x, y)])
}
