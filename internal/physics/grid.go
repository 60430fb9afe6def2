package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Cell is one column of the collision grid.
type Cell struct {
	Vals []Handle

	// ZMin/ZMax bound every member's vertical extent over this column.
	ZMin, ZMax float32
	// OccZMin/OccZMax bound the occluder members only.
	OccZMin, OccZMax float32

	slices      [][]Handle
	slicesDirty bool
	// sliceZ is the vertical range the slices were bucketed over.
	sliceZ [2]float32
}

func (c *Cell) resetExtents() {
	c.ZMin, c.ZMax = farClip, -farClip
	c.OccZMin, c.OccZMax = farClip, -farClip
}

func (c *Cell) clear() {
	c.Vals = c.Vals[:0]
	c.slices = nil
	c.slicesDirty = false
	c.resetExtents()
}

func (c *Cell) updateExtents(z1, z2 float32, occluder bool) {
	c.ZMin = min(c.ZMin, z1)
	c.ZMax = max(c.ZMax, z2)
	if occluder {
		c.OccZMin = min(c.OccZMin, z1)
		c.OccZMax = max(c.OccZMax, z2)
	}
}

// HasSlices reports whether the cell currently carries a z-slice index.
func (c *Cell) HasSlices() bool {
	return len(c.slices) > 0 && !c.slicesDirty
}

// Slices exposes the z-slice buckets, nil when not built.
func (c *Cell) Slices() [][]Handle {
	if c.slicesDirty {
		return nil
	}
	return c.slices
}

func (c *Cell) indexOf(h Handle) int {
	for i, v := range c.Vals {
		if v == h {
			return i
		}
	}
	return -1
}

func (c *Cell) removeVal(h Handle) bool {
	i := c.indexOf(h)
	if i < 0 {
		return false
	}
	c.Vals = append(c.Vals[:i], c.Vals[i+1:]...)
	return true
}

// sliceRange maps a vertical range onto slice indices. Dynamic members
// may widen ZMin/ZMax later, so the range fixed at build time is used.
func (c *Cell) sliceRange(z1, z2 float32, n int) (int, int) {
	zlo := c.sliceZ[0]
	scale := float32(n) / (c.sliceZ[1] - zlo)
	s1 := clamp(int(math32.Floor((z1-zlo)*scale)), 0, n-1)
	s2 := clamp(int(math32.Floor((z2-zlo)*scale)), 0, n-1)
	return s1, s2
}

// buildSlices buckets static members by their vertical span. Cells with
// fewer than minStatic static members stay unsliced.
func (c *Cell) buildSlices(store *ObjectStore, minStatic, n int) {
	c.slices = nil
	c.slicesDirty = false
	if n <= 0 || len(c.Vals) < minStatic || c.ZMax-c.ZMin < tolerance {
		return
	}
	count := 0
	zlo, zhi := float32(farClip), float32(-farClip)
	for _, h := range c.Vals {
		if p := store.at(h); p.Status == StatusStatic {
			count++
			zlo, zhi = min(zlo, p.zSpan[0]), max(zhi, p.zSpan[1])
		}
	}
	if count < minStatic || zhi-zlo < tolerance {
		return
	}
	c.sliceZ = [2]float32{zlo, zhi}
	c.slices = make([][]Handle, n)
	for _, h := range c.Vals {
		p := store.at(h)
		if p.Status != StatusStatic {
			continue
		}
		s1, s2 := c.sliceRange(p.zSpan[0], p.zSpan[1], n)
		for s := s1; s <= s2; s++ {
			c.slices[s] = append(c.slices[s], h)
		}
	}
}

// Grid is the fixed 2D array of cells covering the terrain.
type Grid struct {
	NX, NY int
	X0, Y0 float32
	DX, DY float32

	cells       []Cell
	heightClamp []float32
}

// NewGrid creates an nx by ny grid whose column (0, 0) is centered on (x0, y0).
func NewGrid(nx, ny int, x0, y0, dx, dy float32) *Grid {
	if nx <= 0 || ny <= 0 || dx <= 0 || dy <= 0 {
		panic(fmt.Sprintf("physics: invalid grid %dx%d with cell %gx%g", nx, ny, dx, dy))
	}
	g := &Grid{
		NX: nx, NY: ny,
		X0: x0, Y0: y0,
		DX: dx, DY: dy,
		cells:       make([]Cell, nx*ny),
		heightClamp: make([]float32, nx*ny),
	}
	for i := range g.cells {
		g.cells[i].resetExtents()
	}
	return g
}

// XPos maps a world x coordinate to a column index (may be out of range).
func (g *Grid) XPos(x float32) int {
	return int(math32.Floor((x-g.X0)/g.DX + 0.5))
}

func (g *Grid) YPos(y float32) int {
	return int(math32.Floor((y-g.Y0)/g.DY + 0.5))
}

// XVal is the world x of column center x.
func (g *Grid) XVal(x int) float32 {
	return g.X0 + float32(x)*g.DX
}

func (g *Grid) YVal(y int) float32 {
	return g.Y0 + float32(y)*g.DY
}

// CellCenter is the world position of column (x, y) at height z.
func (g *Grid) CellCenter(x, y int, z float32) rl.Vector3 {
	return rl.Vector3{X: g.XVal(x), Y: g.YVal(y), Z: z}
}

func (g *Grid) Inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.NX && y < g.NY
}

// Column returns the indices of the column holding world point (px, py).
func (g *Grid) Column(px, py float32) (x, y int, ok bool) {
	x, y = g.XPos(px), g.YPos(py)
	return x, y, g.Inside(x, y)
}

func (g *Grid) Cell(x, y int) *Cell {
	return &g.cells[y*g.NX+x]
}

// HeightClamp is the top of the highest static occupant of the column's
// core footprint, used by agent height correction.
func (g *Grid) HeightClamp(x, y int) float32 {
	return g.heightClamp[y*g.NX+x]
}

func (g *Grid) setHeightClamp(x, y int, z float32) {
	g.heightClamp[y*g.NX+x] = z
}

// columnRect is the world footprint of column (x, y) grown by pad cells.
func (g *Grid) columnRect(x, y int, pad float32) rect2 {
	hx := (0.5 + pad) * g.DX
	hy := (0.5 + pad) * g.DY
	cx, cy := g.XVal(x), g.YVal(y)
	return rect2{x1: cx - hx, y1: cy - hy, x2: cx + hx, y2: cy + hy}
}

func (g *Grid) halfDXY() float32 {
	return 0.5 * max(g.DX, g.DY)
}
