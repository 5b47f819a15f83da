package ebd

// Registry stores one value behavior type B per entity in a sparse
// map. Mutation goes through Set so the Pre/Post event protocol wraps
// the caller's closure: subscribers to PreBehaviorUpdated observe the
// value before the closure runs, PostBehaviorUpdated after, and no
// caller ever sees a partially-written value.
type Registry[B any] struct {
	name   BehaviorType
	bus    *Bus
	values map[EntityIndex]*B

	// inSet guards against a handler or closure re-entering Set for
	// the same entity, which would interleave two mutations.
	inSet map[EntityIndex]bool
}

// NewRegistry creates a registry for behavior type B under the given
// name. The caller wires the removal path into the entity registry:
//
//	entities.OnDeactivate(reg.Remove)
func NewRegistry[B any](name BehaviorType, bus *Bus) *Registry[B] {
	return &Registry[B]{
		name:   name,
		bus:    bus,
		values: make(map[EntityIndex]*B),
		inSet:  make(map[EntityIndex]bool),
	}
}

// Name returns the behavior type this registry fires events under.
func (r *Registry[B]) Name() BehaviorType {
	return r.name
}

// Set inserts or mutates the entity's behavior through init.
//
// First insertion: default-construct B, run init, insert, fire
// BehaviorAdded. Subsequent calls: fire PreBehaviorUpdated, run init
// over the stored value in place, fire PostBehaviorUpdated.
//
// Re-entering Set for the same (entity, B) pair from a handler or from
// init itself is detected and rejected with a REENTRANT_MUTATION Error
// event; the nested mutation does not run.
func (r *Registry[B]) Set(entity EntityIndex, init func(*B)) {
	if r.inSet[entity] {
		r.bus.PushError(NewBehaviorError(ErrReentrantMutation,
			"reentrant Set on the same entity and behavior", entity, r.name))
		return
	}
	r.inSet[entity] = true
	defer delete(r.inSet, entity)

	if v, ok := r.values[entity]; ok {
		r.bus.Push(Event{Type: EventPreBehaviorUpdated, Behavior: r.name, Entity: entity})
		init(v)
		r.bus.Push(Event{Type: EventPostBehaviorUpdated, Behavior: r.name, Entity: entity})
		return
	}

	v := new(B)
	init(v)
	r.values[entity] = v
	r.bus.Push(Event{Type: EventBehaviorAdded, Behavior: r.name, Entity: entity})
}

// TryGet returns a view of the entity's behavior. The pointer is valid
// until the next Set or Remove on the same entity; callers must not
// write through it.
func (r *Registry[B]) TryGet(entity EntityIndex) (*B, bool) {
	v, ok := r.values[entity]
	return v, ok
}

// Has reports whether the entity carries this behavior.
func (r *Registry[B]) Has(entity EntityIndex) bool {
	_, ok := r.values[entity]
	return ok
}

// Remove fires PreBehaviorRemoved and deletes the record. No-op when
// absent.
func (r *Registry[B]) Remove(entity EntityIndex) {
	if _, ok := r.values[entity]; !ok {
		return
	}
	r.bus.Push(Event{Type: EventPreBehaviorRemoved, Behavior: r.name, Entity: entity})
	delete(r.values, entity)
}

// Count returns the number of entities carrying this behavior.
func (r *Registry[B]) Count() int {
	return len(r.values)
}
