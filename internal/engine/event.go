package engine

// ListenerID identifies a subscription so it can be removed later.
type ListenerID int

// Event is a multi-cast notification with no payload.
type Event struct {
	inner EventWithArg[struct{}]
}

func (e *Event) AddListener(callback func()) ListenerID {
	if callback == nil {
		return 0
	}
	return e.inner.AddListener(func(struct{}) { callback() })
}

func (e *Event) RemoveListener(id ListenerID) {
	e.inner.RemoveListener(id)
}

func (e *Event) RemoveAllListeners() {
	e.inner.RemoveAllListeners()
}

func (e *Event) Invoke() {
	e.inner.Invoke(struct{}{})
}

func (e *Event) GetListenerCount() int {
	return e.inner.GetListenerCount()
}

type listener[T any] struct {
	id ListenerID
	fn func(T)
}

// EventWithArg is a multi-cast event carrying one argument. Listeners run
// in subscription order. The zero value is ready to use.
type EventWithArg[T any] struct {
	listeners []listener[T]
	nextID    ListenerID
}

// AddListener subscribes callback and returns its id (0 for a nil callback).
func (e *EventWithArg[T]) AddListener(callback func(T)) ListenerID {
	if callback == nil {
		return 0
	}
	e.nextID++
	e.listeners = append(e.listeners, listener[T]{id: e.nextID, fn: callback})
	return e.nextID
}

func (e *EventWithArg[T]) RemoveListener(id ListenerID) {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}

func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls every listener registered before the call started.
func (e *EventWithArg[T]) Invoke(arg T) {
	ls := e.listeners
	for _, l := range ls {
		l.fn(arg)
	}
}

func (e *EventWithArg[T]) GetListenerCount() int {
	return len(e.listeners)
}
