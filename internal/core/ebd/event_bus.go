package ebd

import (
	"reflect"

	"github.com/rs/zerolog"
)

// EventType routes an event to its subscriber list. Behavior events
// are additionally keyed by the BehaviorType they concern.
type EventType string

// Behavior events, each parameterized by a BehaviorType.
const (
	EventBehaviorAdded       EventType = "behavior_added"
	EventPreBehaviorUpdated  EventType = "pre_behavior_updated"
	EventPostBehaviorUpdated EventType = "post_behavior_updated"
	EventPreBehaviorRemoved  EventType = "pre_behavior_removed"
)

// Lifecycle events. These carry no BehaviorType.
const (
	EventInitialize            EventType = "initialize"
	EventReset                 EventType = "reset"
	EventShutdown              EventType = "shutdown"
	EventPreEntityDeactivated  EventType = "pre_entity_deactivated"
	EventPostEntityDeactivated EventType = "post_entity_deactivated"
	EventError                 EventType = "error"
)

// Event is the value delivered to handlers. Entity is meaningful for
// behavior and entity-lifecycle events; Err is set only on EventError.
type Event struct {
	Type     EventType
	Behavior BehaviorType
	Entity   EntityIndex
	Err      *RuntimeError
}

// Handler processes one event. Handlers run synchronously inside the
// operation that pushed the event and may push further events.
type Handler func(Event)

type eventKey struct {
	Type     EventType
	Behavior BehaviorType
}

type subscription struct {
	fn Handler
	id uintptr
}

// Bus is the synchronous, single-threaded event dispatcher. Handlers
// fire in registration order; registering the same handler func twice
// under the same key is a no-op.
type Bus struct {
	handlers map[eventKey][]subscription
	log      zerolog.Logger
}

// NewBus creates an empty bus. Handler panics are recovered and logged
// through the given logger.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[eventKey][]subscription),
		log:      log,
	}
}

// Subscribe registers a handler under the bare event type. For
// lifecycle events this is the only form; for behavior events it acts
// as a wildcard and receives the event for every behavior type.
func (b *Bus) Subscribe(t EventType, h Handler) {
	b.SubscribeBehavior(t, "", h)
}

// SubscribeBehavior registers a handler for a behavior event on one
// behavior type. Duplicate registration of the same func is a no-op.
func (b *Bus) SubscribeBehavior(t EventType, behavior BehaviorType, h Handler) {
	key := eventKey{Type: t, Behavior: behavior}
	id := reflect.ValueOf(h).Pointer()
	for _, s := range b.handlers[key] {
		if s.id == id {
			return
		}
	}
	b.handlers[key] = append(b.handlers[key], subscription{fn: h, id: id})
}

// Push delivers the event to every subscriber of its key, in
// registration order, before returning. Nested pushes from inside a
// handler fan out the same way.
//
// A panicking handler is recovered here so the operation that pushed
// the event completes its writes; the panic is surfaced as an Error
// event with code HANDLER_PANIC (or only logged, when the panicking
// handler was itself an Error subscriber).
func (b *Bus) Push(e Event) {
	for _, s := range b.handlers[eventKey{Type: e.Type, Behavior: e.Behavior}] {
		b.invoke(s.fn, e)
	}
	if e.Behavior != "" {
		// Behavior-wildcard subscribers fire after the exact ones.
		for _, s := range b.handlers[eventKey{Type: e.Type}] {
			b.invoke(s.fn, e)
		}
	}
}

func (b *Bus) invoke(h Handler, e Event) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		b.log.Error().
			Str("event", string(e.Type)).
			Str("behavior", string(e.Behavior)).
			Uint16("entity", uint16(e.Entity)).
			Interface("panic", r).
			Msg("event handler panicked")
		if e.Type != EventError {
			b.PushError(NewBehaviorError(ErrHandlerPanic,
				"event handler panicked", e.Entity, e.Behavior))
		}
	}()
	h(e)
}

// PushError is shorthand for pushing an Error event.
func (b *Bus) PushError(err *RuntimeError) {
	b.log.Error().Str("code", err.Code).Msg(err.Message)
	b.Push(Event{Type: EventError, Entity: err.Entity, Behavior: err.Behavior, Err: err})
}
