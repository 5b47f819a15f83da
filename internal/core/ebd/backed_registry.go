package ebd

// BackedRegistry has the same event contract as Registry, but the
// behavior value H is a bundle of handles into pre-sized backing store
// columns rather than a stored value. The closure passed to Set writes
// through the handles directly into the columns.
//
// Presence is tracked here; the columns themselves carry no per-cell
// existence bits.
type BackedRegistry[H any] struct {
	name    BehaviorType
	bus     *Bus
	present *SparseSet

	// handle builds the column-handle bundle for one entity; reset
	// returns the entity's slot in every backing column to defaults.
	handle func(EntityIndex) H
	reset  func(EntityIndex)

	inSet map[EntityIndex]bool
}

// NewBackedRegistry creates a backed registry over capacity slots.
// handle materializes the per-entity handle bundle; reset restores the
// entity's backing columns to their documented defaults and runs on
// removal. The caller wires removal into the entity registry:
//
//	entities.OnDeactivate(reg.Remove)
func NewBackedRegistry[H any](name BehaviorType, bus *Bus, capacity int,
	handle func(EntityIndex) H, reset func(EntityIndex)) *BackedRegistry[H] {
	return &BackedRegistry[H]{
		name:    name,
		bus:     bus,
		present: NewSparseSet(capacity),
		handle:  handle,
		reset:   reset,
		inSet:   make(map[EntityIndex]bool),
	}
}

// Name returns the behavior type this registry fires events under.
func (r *BackedRegistry[H]) Name() BehaviorType {
	return r.name
}

// Set inserts or mutates the entity's behavior through init, with the
// same event protocol as Registry.Set. On first insertion the handles
// are recorded and init writes through them; on re-set the existing
// handles are reused, never reallocated.
func (r *BackedRegistry[H]) Set(entity EntityIndex, init func(H)) {
	if r.inSet[entity] {
		r.bus.PushError(NewBehaviorError(ErrReentrantMutation,
			"reentrant Set on the same entity and behavior", entity, r.name))
		return
	}
	r.inSet[entity] = true
	defer delete(r.inSet, entity)

	if r.present.Contains(entity) {
		r.bus.Push(Event{Type: EventPreBehaviorUpdated, Behavior: r.name, Entity: entity})
		init(r.handle(entity))
		r.bus.Push(Event{Type: EventPostBehaviorUpdated, Behavior: r.name, Entity: entity})
		return
	}

	r.present.Add(entity)
	init(r.handle(entity))
	r.bus.Push(Event{Type: EventBehaviorAdded, Behavior: r.name, Entity: entity})
}

// TryGet returns the entity's handle bundle for reading.
func (r *BackedRegistry[H]) TryGet(entity EntityIndex) (H, bool) {
	if !r.present.Contains(entity) {
		var zero H
		return zero, false
	}
	return r.handle(entity), true
}

// Has reports whether the entity carries this behavior.
func (r *BackedRegistry[H]) Has(entity EntityIndex) bool {
	return r.present.Contains(entity)
}

// Remove fires PreBehaviorRemoved, drops the record, and resets the
// entity's backing columns to defaults. No-op when absent.
func (r *BackedRegistry[H]) Remove(entity EntityIndex) {
	if !r.present.Contains(entity) {
		return
	}
	r.bus.Push(Event{Type: EventPreBehaviorRemoved, Behavior: r.name, Entity: entity})
	r.present.Remove(entity)
	r.reset(entity)
}

// Count returns the number of entities carrying this behavior.
func (r *BackedRegistry[H]) Count() int {
	return r.present.Size()
}

// Each visits every entity carrying this behavior in dense order.
func (r *BackedRegistry[H]) Each(fn func(EntityIndex, H)) {
	r.present.Iterate(func(e EntityIndex) bool {
		fn(e, r.handle(e))
		return true
	})
}
