package physics

import "testing"

func TestStoreAllocateGrows(t *testing.T) {
	s := NewObjectStore()
	for i := 0; i < 4; i++ {
		if h := s.Allocate(); h != Handle(i) {
			t.Errorf("Expected handle %d, got %d", i, h)
		}
	}
	if s.Len() != 4 {
		t.Errorf("Expected 4 slots after first growth, got %d", s.Len())
	}
	if h := s.Allocate(); h != 4 {
		t.Errorf("Expected handle 4 after growth, got %d", h)
	}
	if s.Len() != 12 {
		t.Errorf("Expected 12 slots (2*4+4), got %d", s.Len())
	}
	if s.InUse() != 5 || s.FreeCount() != 7 {
		t.Errorf("Expected 5 in use and 7 free, got %d and %d", s.InUse(), s.FreeCount())
	}
}

func TestStoreFreeIsLIFO(t *testing.T) {
	s := NewObjectStore()
	a := s.Allocate()
	b := s.Allocate()
	s.Free(a)
	s.Free(b)

	if h := s.Allocate(); h != b {
		t.Errorf("Expected most recently freed handle %d, got %d", b, h)
	}
	if h := s.Allocate(); h != a {
		t.Errorf("Expected handle %d next, got %d", a, h)
	}
}

func TestStoreStaleRef(t *testing.T) {
	s := NewObjectStore()
	h := s.Allocate()
	ref := s.Ref(h)
	if s.Resolve(ref) == nil {
		t.Fatal("Expected fresh ref to resolve")
	}

	s.Free(h)
	if s.Resolve(ref) != nil {
		t.Error("Expected ref to a freed slot to be stale")
	}

	h2 := s.Allocate()
	if h2 != h {
		t.Fatalf("Expected slot %d to be reused, got %d", h, h2)
	}
	if s.Resolve(ref) != nil {
		t.Error("Expected old ref to stay stale after reuse")
	}
	if s.Resolve(s.Ref(h2)) == nil {
		t.Error("Expected new ref to resolve")
	}
}

func TestStoreFixedSlotIsParked(t *testing.T) {
	s := NewObjectStore()
	h := s.Allocate()
	s.Get(h).Fixed = true
	free := s.FreeCount()

	s.Free(h)

	if s.Get(h).Status != StatusPending {
		t.Errorf("Expected fixed slot to be parked as pending, got %s", s.Get(h).Status)
	}
	if s.FreeCount() != free {
		t.Errorf("Expected free count to stay %d, got %d", free, s.FreeCount())
	}
}

func TestStoreOnRecycle(t *testing.T) {
	s := NewObjectStore()
	var recycled []Handle
	s.OnRecycle = func(h Handle) { recycled = append(recycled, h) }

	h := s.Allocate()
	if len(recycled) != 0 {
		t.Errorf("Expected no recycle on first use, got %v", recycled)
	}
	s.Free(h)
	s.Allocate()
	if len(recycled) != 1 || recycled[0] != h {
		t.Errorf("Expected recycle of %d, got %v", h, recycled)
	}
}

func TestStoreGetUnallocatedPanics(t *testing.T) {
	s := NewObjectStore()
	h := s.Allocate()
	s.Free(h)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unallocated handle")
		}
	}()
	s.Get(h)
}
