package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld(NewGrid(32, 32, 0, 0, 1, 1), nil, nil, DefaultSettings())
}

func contains(hs []Handle, h Handle) bool {
	for _, v := range hs {
		if v == h {
			return true
		}
	}
	return false
}

func TestGridColumnMapping(t *testing.T) {
	g := NewGrid(10, 10, 0, 0, 2, 2)

	if x := g.XPos(0.9); x != 0 {
		t.Errorf("Expected column 0 for x=0.9, got %d", x)
	}
	if x := g.XPos(1.1); x != 1 {
		t.Errorf("Expected column 1 for x=1.1, got %d", x)
	}
	if v := g.XVal(3); v != 6 {
		t.Errorf("Expected column 3 centered at 6, got %f", v)
	}
	if _, _, ok := g.Column(-5, 3); ok {
		t.Error("Expected point left of the grid to be outside")
	}
	if _, _, ok := g.Column(19.5, 3); ok {
		t.Error("Expected point right of the grid to be outside")
	}
}

func TestInsertCubeSetsExtents(t *testing.T) {
	w := newTestWorld(t)
	h := w.InsertCube(NewAABB(4, 6, 4, 6, 1, 3), Params{}, -1)

	c := w.Grid().Cell(5, 5)
	if !contains(c.Vals, h) {
		t.Fatalf("Expected cube in cell (5,5), got %v", c.Vals)
	}
	if c.ZMin != 1 || c.ZMax != 3 {
		t.Errorf("Expected extents [1,3], got [%f,%f]", c.ZMin, c.ZMax)
	}
	if far := w.Grid().Cell(20, 20); len(far.Vals) != 0 {
		t.Errorf("Expected distant cell to be empty, got %v", far.Vals)
	}
	if w.Get(h).Status != StatusStatic {
		t.Errorf("Expected static status, got %s", w.Get(h).Status)
	}
}

func TestOccluderExtentsInsideTotal(t *testing.T) {
	w := newTestWorld(t)
	w.InsertCube(NewAABB(4, 6, 4, 6, 0, 2), Params{Occluder: true}, -1)
	w.InsertCube(NewAABB(4, 6, 4, 6, 0, 8), Params{}, -1)

	c := w.Grid().Cell(5, 5)
	if c.OccZMin != 0 || c.OccZMax != 2 {
		t.Errorf("Expected occluder extents [0,2], got [%f,%f]", c.OccZMin, c.OccZMax)
	}
	if c.ZMax != 8 {
		t.Errorf("Expected total max 8, got %f", c.ZMax)
	}
	if c.OccZMin < c.ZMin || c.OccZMax > c.ZMax {
		t.Error("Expected occluder extents inside total extents")
	}
}

func TestStaticsOrderedBeforeDynamics(t *testing.T) {
	w := newTestWorld(t)
	dyn := w.InsertSphere(rl.Vector3{X: 5, Y: 5, Z: 10}, 0.4, Params{Dynamic: true}, -1)
	cube := w.InsertCube(NewAABB(4.6, 5.4, 4.6, 5.4, 0, 1), Params{}, -1)

	c := w.Grid().Cell(5, 5)
	if len(c.Vals) != 2 {
		t.Fatalf("Expected 2 members, got %v", c.Vals)
	}
	if c.Vals[0] != cube || c.Vals[1] != dyn {
		t.Errorf("Expected [cube dynamic] order, got %v", c.Vals)
	}
}

func TestHeightClamp(t *testing.T) {
	w := newTestWorld(t)
	w.InsertCube(NewAABB(4, 6, 4, 6, 0, 3), Params{}, -1)
	w.InsertCube(NewAABB(14, 16, 14, 16, 10, 12), Params{}, -1)

	if z := w.Grid().HeightClamp(5, 5); z != 3 {
		t.Errorf("Expected clamp 3 on grounded cube, got %f", z)
	}
	if z := w.Grid().HeightClamp(15, 15); z != 0 {
		t.Errorf("Expected floating cube to leave clamp at 0, got %f", z)
	}
}

func TestSphereExtentsCoverSphere(t *testing.T) {
	w := newTestWorld(t)
	w.InsertSphere(rl.Vector3{X: 10, Y: 10, Z: 5}, 2, Params{}, -1)

	c := w.Grid().Cell(10, 10)
	if c.ZMin != 3 || c.ZMax != 7 {
		t.Errorf("Expected center column extents [3,7], got [%f,%f]", c.ZMin, c.ZMax)
	}
	edge := w.Grid().Cell(12, 10)
	if edge.ZMin < 3 || edge.ZMax > 7 || edge.ZMax-edge.ZMin >= 4 {
		t.Errorf("Expected narrower extents at the rim, got [%f,%f]", edge.ZMin, edge.ZMax)
	}
}

func stackCubes(w *World, n int) []Handle {
	hs := make([]Handle, n)
	for k := 0; k < n; k++ {
		z := float32(k)
		hs[k] = w.InsertCube(NewAABB(4.6, 5.4, 4.6, 5.4, z, z+0.5), Params{}, -1)
	}
	return hs
}

func TestSlicesBuiltFromStatics(t *testing.T) {
	s := DefaultSettings()
	s.SliceThreshold = 4
	s.SliceCount = 4
	w := NewWorld(NewGrid(16, 16, 0, 0, 1, 1), nil, nil, s)
	hs := make([]Handle, 5)
	for k := range hs {
		z := float32(2 * k)
		hs[k] = w.InsertCube(NewAABB(4.6, 5.4, 4.6, 5.4, z, z+1), Params{}, -1)
	}

	if n := w.Optimize(); n == 0 {
		t.Fatal("Expected at least one sliced cell")
	}
	c := w.Grid().Cell(5, 5)
	sl := c.Slices()
	if len(sl) != 4 {
		t.Fatalf("Expected 4 slices, got %d", len(sl))
	}
	if !contains(sl[0], hs[0]) || contains(sl[0], hs[4]) {
		t.Errorf("Expected bottom slice to hold only low cubes, got %v", sl[0])
	}
	if !contains(sl[3], hs[4]) {
		t.Errorf("Expected top slice to hold the top cube, got %v", sl[3])
	}

	w.InsertCube(NewAABB(4.6, 5.4, 4.6, 5.4, 3, 3.5), Params{}, -1)
	if c.HasSlices() {
		t.Error("Expected static insertion to invalidate slices")
	}
}

func TestFewStaticsStayUnsliced(t *testing.T) {
	w := newTestWorld(t)
	stackCubes(w, 5)
	w.Optimize()
	if w.Grid().Cell(5, 5).HasSlices() {
		t.Error("Expected cell below the slice threshold to stay unsliced")
	}
}

func TestPrimitiveFootprint(t *testing.T) {
	w := newTestWorld(t)
	s := w.Get(w.InsertSphere(rl.Vector3{X: 10, Y: 10, Z: 5}, 2, Params{}, -1))
	if !s.ContainsPointXY(11, 10) || s.ContainsPointXY(12.5, 10) {
		t.Error("Expected sphere footprint to be its radius")
	}
	if r := s.BoundingRadius(); r != 2 {
		t.Errorf("Expected bounding radius 2, got %f", r)
	}

	sq := []rl.Vector3{{X: 3, Y: 3, Z: 2}, {X: 7, Y: 3, Z: 2}, {X: 7, Y: 7, Z: 2}, {X: 3, Y: 7, Z: 2}}
	p := w.Get(w.InsertPolygon(sq, Params{}, 0, -1))
	if !p.ContainsPointXY(5, 5) || p.ContainsPointXY(8, 5) {
		t.Error("Expected polygon footprint to be its outline")
	}
	if r := p.BoundingRadius(); r < 2.82 || r > 2.83 {
		t.Errorf("Expected bounding radius 2.83, got %f", r)
	}

	if c := w.Grid().CellCenter(3, 4, 1); c != (rl.Vector3{X: 3, Y: 4, Z: 1}) {
		t.Errorf("Expected cell center (3,4,1), got %v", c)
	}
}
