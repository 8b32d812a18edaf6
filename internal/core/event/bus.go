package event

import "reflect"

// Bus is a synchronous, typed in-process dispatcher. Emit delivers to
// every subscribed handler before returning; handlers may themselves
// emit (re-entrant emission is delivered inline), so they must not
// assume a stable call stack depth. Strictly fire-and-forget: handlers
// return nothing.
//
// Single-goroutine use only: the simulation is cooperatively ticked,
// so no locking is needed.
type Bus struct {
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]any)}
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Emit delivers an event to all handlers subscribed to its type.
func Emit[T any](b *Bus, ev T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	// Snapshot the slice header: a handler subscribing during dispatch
	// must not receive the event that triggered it.
	handlers := b.handlers[t]
	for _, h := range handlers {
		h.(func(T))(ev)
	}
}
