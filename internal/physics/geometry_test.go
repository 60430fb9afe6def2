package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestLineConeIntervalCylinder(t *testing.T) {
	p1, p2 := rl.Vector3{}, rl.Vector3{Z: 4}

	lo, hi, ok := lineConeInterval(0.5, 0, p1, p2, 1, 1)
	if !ok {
		t.Fatal("Expected line through the cylinder to intersect")
	}
	if !approx(lo, 0) || !approx(hi, 4) {
		t.Errorf("Expected [0,4], got [%f,%f]", lo, hi)
	}

	if _, _, ok := lineConeInterval(1.5, 0, p1, p2, 1, 1); ok {
		t.Error("Expected line outside the radius to miss")
	}
}

func TestLineConeIntervalCone(t *testing.T) {
	lo, hi, ok := lineConeInterval(1, 0, rl.Vector3{}, rl.Vector3{Z: 4}, 2, 0)
	if !ok {
		t.Fatal("Expected line to intersect the cone")
	}
	if !approx(lo, 0) || !approx(hi, 2) {
		t.Errorf("Expected [0,2], got [%f,%f]", lo, hi)
	}
}

func TestSphereConeContactLateral(t *testing.T) {
	p1, p2 := rl.Vector3{}, rl.Vector3{X: 4}

	pos, norm, ok := sphereConeContact(rl.Vector3{X: 2, Z: 1.5}, 0.6, p1, p2, 1, 1, true)
	if !ok {
		t.Fatal("Expected sphere touching the cylinder to collide")
	}
	if !approx(pos.Z, 1.6) || !approx(pos.X, 2) {
		t.Errorf("Expected sphere pushed to (2,0,1.6), got %v", pos)
	}
	if !approx(norm.Z, 1) {
		t.Errorf("Expected +Z normal, got %v", norm)
	}

	if _, _, ok := sphereConeContact(rl.Vector3{X: 2, Z: 2}, 0.6, p1, p2, 1, 1, true); ok {
		t.Error("Expected separated sphere to miss")
	}
}

func TestSphereConeContactCaps(t *testing.T) {
	p1, p2 := rl.Vector3{}, rl.Vector3{X: 4}
	c := rl.Vector3{X: 4.3}

	pos, norm, ok := sphereConeContact(c, 0.5, p1, p2, 1, 1, true)
	if !ok {
		t.Fatal("Expected sphere against the end cap to collide")
	}
	if !approx(pos.X, 4.5) || !approx(norm.X, 1) {
		t.Errorf("Expected push to x=4.5 along +X, got %v %v", pos, norm)
	}

	if _, _, ok := sphereConeContact(c, 0.5, p1, p2, 1, 1, false); ok {
		t.Error("Expected open-ended cylinder to let the sphere through")
	}
}

func TestSphereCubeContactEntryFace(t *testing.T) {
	b := NewAABB(0, 1, 0, 1, 0, 1)

	c, ok := sphereCubeContact(rl.Vector3{X: 0.05, Y: 0.5, Z: 0.5}, rl.Vector3{X: -0.5, Y: 0.5, Z: 0.5}, 0.1, b)
	if !ok {
		t.Fatal("Expected sphere entering the cube to collide")
	}
	if c.Face != faceNegX {
		t.Errorf("Expected -X face, got %d", c.Face)
	}
	if !approx(c.Pos.X, -0.1) {
		t.Errorf("Expected sphere pushed to x=-0.1, got %f", c.Pos.X)
	}

	if _, ok := sphereCubeContact(rl.Vector3{X: 2, Y: 2, Z: 2}, rl.Vector3{X: 2, Y: 2, Z: 2}, 0.1, b); ok {
		t.Error("Expected distant sphere to miss")
	}
}

func TestPointInConvexPolygonWinding(t *testing.T) {
	ccw := []rl.Vector3{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	cw := []rl.Vector3{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}

	for _, pts := range [][]rl.Vector3{ccw, cw} {
		n := polygonNormal(pts)
		if !pointInConvexPolygon(pts, rl.Vector3{X: 0.5, Y: 0.5}, n, 0) {
			t.Error("Expected center to be inside")
		}
		if pointInConvexPolygon(pts, rl.Vector3{X: 1.5, Y: 0.5}, n, 0) {
			t.Error("Expected point right of the square to be outside")
		}
		if !pointInConvexPolygon(pts, rl.Vector3{X: 1.5, Y: 0.5}, n, 0.6) {
			t.Error("Expected expanded square to contain the point")
		}
	}
}

func TestPointInPolygon2D(t *testing.T) {
	tri := []rl.Vector3{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}}
	if !pointInPolygon2D(tri, 1, 1) {
		t.Error("Expected (1,1) inside the triangle")
	}
	if pointInPolygon2D(tri, 3, 3) {
		t.Error("Expected (3,3) outside the triangle")
	}
}

func TestPolyZRangeSlope(t *testing.T) {
	ramp := []rl.Vector3{{X: 0, Y: 0, Z: 0}, {X: 4, Y: 0, Z: 4}, {X: 4, Y: 4, Z: 4}, {X: 0, Y: 4, Z: 0}}
	n := polygonNormal(ramp)

	z1, z2, ok := polyZRange(ramp, n, rect2{x1: 1, y1: 1, x2: 2, y2: 2}, -100, 100)
	if !ok {
		t.Fatal("Expected rectangle over the ramp to overlap")
	}
	if !approx(z1, 1) || !approx(z2, 2) {
		t.Errorf("Expected [1,2], got [%f,%f]", z1, z2)
	}

	if _, _, ok := polyZRange(ramp, n, rect2{x1: 10, y1: 10, x2: 11, y2: 11}, -100, 100); ok {
		t.Error("Expected distant rectangle to miss")
	}
}

func TestThickPolySidesCount(t *testing.T) {
	sq := []rl.Vector3{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	sides := thickPolySides(sq, rl.Vector3{Z: 1}, 0.5)
	if len(sides) != 6 {
		t.Fatalf("Expected 6 faces for a thick square, got %d", len(sides))
	}
	if sides[0][0].Z != 0.25 || sides[1][0].Z != -0.25 {
		t.Errorf("Expected top at 0.25 and bottom at -0.25, got %f and %f", sides[0][0].Z, sides[1][0].Z)
	}

	d, n, ok := sphereFacesContact(sides, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.3}, 0.1)
	if !ok {
		t.Fatal("Expected sphere touching the top face to collide")
	}
	if !approx(n.Z, 1) || !approx(d, 0.05) {
		t.Errorf("Expected push 0.05 along +Z, got %f along %v", d, n)
	}
}
