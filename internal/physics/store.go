package physics

import (
	"fmt"
	"log"
)

// Ref is a handle stamped with the generation it was issued under.
type Ref struct {
	Handle     Handle
	Generation uint32
}

// ObjectStore owns every primitive record and recycles slots through a
// stack of free handles. Slots are never moved, so handles stay stable.
type ObjectStore struct {
	objects []Primitive
	stack   []Handle
	top     int

	// OnRecycle runs when a slot is handed out again, so owners can drop
	// stale references to the previous occupant.
	OnRecycle func(h Handle)
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{}
}

// Allocate pops a free handle, growing the store when the stack is empty.
func (s *ObjectStore) Allocate() Handle {
	if s.top >= len(s.objects) {
		s.grow()
	}
	h := s.stack[s.top]
	p := &s.objects[h]
	if p.Status != StatusUnused {
		panic(fmt.Sprintf("physics: free stack handle %d has status %s", h, p.Status))
	}
	if p.Generation > 0 && s.OnRecycle != nil {
		s.OnRecycle(h)
	}
	s.stack[s.top] = NoHandle
	s.top++
	p.reset()
	p.ID = h
	p.Status = StatusPending
	return h
}

func (s *ObjectStore) grow() {
	oldSize := len(s.objects)
	newSize := 2*s.top + 4
	s.objects = append(s.objects, make([]Primitive, newSize-oldSize)...)
	s.stack = append(s.stack, make([]Handle, newSize-oldSize)...)
	for i := oldSize; i < newSize; i++ {
		s.objects[i] = Primitive{ID: NoHandle, PlatformID: -1}
		s.stack[i] = Handle(i)
	}
	if oldSize > 0 {
		log.Printf("Collision: object store grown from %d to %d slots", oldSize, newSize)
	}
}

// Free returns a handle to the free stack. Fixed handles are parked as
// pending instead so they can be reinserted under the same handle.
func (s *ObjectStore) Free(h Handle) {
	p := s.Get(h)
	p.Generation++
	p.Counter = 0
	if p.Fixed {
		p.Status = StatusPending
		return
	}
	p.Status = StatusUnused
	p.sides = nil
	if s.top == 0 {
		panic("physics: free stack overflow")
	}
	s.top--
	s.stack[s.top] = h
}

// Get returns the record for an allocated handle and panics otherwise.
func (s *ObjectStore) Get(h Handle) *Primitive {
	if h < 0 || int(h) >= len(s.objects) {
		panic(fmt.Sprintf("physics: handle %d out of range [0,%d)", h, len(s.objects)))
	}
	p := &s.objects[h]
	if p.Status == StatusUnused {
		panic(fmt.Sprintf("physics: handle %d is not allocated", h))
	}
	return p
}

// at skips validation for handles read from grid cells.
func (s *ObjectStore) at(h Handle) *Primitive {
	return &s.objects[h]
}

// Ref stamps h with its current generation.
func (s *ObjectStore) Ref(h Handle) Ref {
	return Ref{Handle: h, Generation: s.Get(h).Generation}
}

// Resolve returns the primitive behind r, or nil if the slot was freed
// since r was taken.
func (s *ObjectStore) Resolve(r Ref) *Primitive {
	if r.Handle < 0 || int(r.Handle) >= len(s.objects) {
		return nil
	}
	p := &s.objects[r.Handle]
	if p.Status == StatusUnused || p.Generation != r.Generation {
		return nil
	}
	return p
}

// Len is the number of slots.
func (s *ObjectStore) Len() int {
	return len(s.objects)
}

// InUse is the number of handles not on the free stack.
func (s *ObjectStore) InUse() int {
	return s.top
}

func (s *ObjectStore) FreeCount() int {
	return len(s.objects) - s.top
}

// FreeHandles lists the free stack from the next handle to be allocated.
func (s *ObjectStore) FreeHandles() []Handle {
	out := make([]Handle, len(s.objects)-s.top)
	copy(out, s.stack[s.top:])
	return out
}

// Each visits every allocated slot in handle order.
func (s *ObjectStore) Each(fn func(h Handle, p *Primitive)) {
	for i := range s.objects {
		if s.objects[i].Status != StatusUnused {
			fn(Handle(i), &s.objects[i])
		}
	}
}
