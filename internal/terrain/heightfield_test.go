package terrain

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestFlatHeight(t *testing.T) {
	h := NewFlat(8, 8, 0, 0, 1, 1, 2.5)
	if z := h.MeshHeight(3, 3); z != 2.5 {
		t.Errorf("Expected 2.5, got %f", z)
	}
	if z := h.HeightAt(3.3, 4.7); z != 2.5 {
		t.Errorf("Expected 2.5 between samples, got %f", z)
	}
	if z := h.MeshHeight(-4, 20); z != 2.5 {
		t.Errorf("Expected clamped lookup to return 2.5, got %f", z)
	}
}

func TestHeightAtInterpolates(t *testing.T) {
	h := NewFlat(4, 4, 0, 0, 2, 2, 0)
	h.Set(1, 0, 4)
	h.Set(1, 1, 4)

	tests := []struct {
		x, y float32
		want float32
	}{
		{0, 0, 0},
		{2, 0, 4},
		{1, 0, 2},
		{1, 1, 2},
		{3, 1, 2},
	}
	for _, tt := range tests {
		if got := h.HeightAt(tt.x, tt.y); got != tt.want {
			t.Errorf("Expected height %f at (%f, %f), got %f", tt.want, tt.x, tt.y, got)
		}
	}
}

func TestWaterLevel(t *testing.T) {
	h := NewFlat(4, 4, 0, 0, 1, 1, 0)
	if _, ok := h.WaterLevel(1, 1); ok {
		t.Error("Expected no water by default")
	}
	h.SetWater(1, 1, 0.5)
	if z, ok := h.WaterLevel(1, 1); !ok || z != 0.5 {
		t.Errorf("Expected water at 0.5, got %f (%v)", z, ok)
	}
	if _, ok := h.WaterLevel(9, 9); ok {
		t.Error("Expected no water outside the field")
	}
}

func TestModifyAtCountsContacts(t *testing.T) {
	h := NewFlat(4, 4, 0, 0, 1, 1, 0)
	h.ModifyAt(rl.Vector3{X: 2.2, Y: 0.9}, 0.5, true, false)
	h.ModifyAt(rl.Vector3{X: 1.8, Y: 1.1}, 0.5, true, true)

	if n := h.Trampled(2, 1); n != 2 {
		t.Errorf("Expected 2 trampling contacts, got %d", n)
	}
	if n := h.Burned(2, 1); n != 1 {
		t.Errorf("Expected 1 burn, got %d", n)
	}
	h.ModifyAt(rl.Vector3{X: -10}, 0.5, true, true)
}

func TestSetOutsidePanics(t *testing.T) {
	h := NewFlat(4, 4, 0, 0, 1, 1, 0)
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for column outside the field")
		}
	}()
	h.Set(4, 0, 1)
}
