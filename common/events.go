package common

// Event dispatches a payload to registered handlers in registration order.
type Event[T any] struct {
	handlers []func(T)
}

// Add registers h. Nil handlers are ignored.
func (e *Event[T]) Add(h func(T)) {
	if e == nil || h == nil {
		return
	}
	e.handlers = append(e.handlers, h)
}

// Emit sends v to all handlers.
func (e *Event[T]) Emit(v T) {
	if e == nil || len(e.handlers) == 0 {
		return
	}
	for _, h := range e.handlers {
		h(v)
	}
}

// Clear removes every handler.
func (e *Event[T]) Clear() {
	if e == nil {
		return
	}
	e.handlers = nil
}
