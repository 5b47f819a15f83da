package ebd

import "fmt"

// EntityRegistry owns the fixed slot table. Activation scans the
// requested partition from its low end for the first inactive slot;
// deactivation runs the teardown protocol, which gives every behavior
// registry a chance to remove its record (and fire its removal events)
// before the slot flags clear.
type EntityRegistry struct {
	cfg Config
	bus *Bus

	active  []bool
	enabled []bool

	// removers run in registration order during teardown, one per
	// behavior registry. Each invokes the registry's removal path.
	removers []func(EntityIndex)
}

// NewEntityRegistry creates the slot table for the configured
// partition sizes.
func NewEntityRegistry(cfg Config, bus *Bus) *EntityRegistry {
	n := cfg.MaxEntities()
	return &EntityRegistry{
		cfg:     cfg,
		bus:     bus,
		active:  make([]bool, n),
		enabled: make([]bool, n),
	}
}

// OnDeactivate registers a behavior removal hook, called for every
// entity being torn down. Registries register exactly one.
func (r *EntityRegistry) OnDeactivate(remove func(EntityIndex)) {
	r.removers = append(r.removers, remove)
}

// Activate claims the first free slot in the scene partition. On a
// full partition it pushes a CAPACITY_EXHAUSTED Error event and
// returns ok=false.
func (r *EntityRegistry) Activate() (Entity, bool) {
	return r.activateIn(PartitionScene)
}

// ActivateGlobal claims a slot in the global partition, which survives
// Reset.
func (r *EntityRegistry) ActivateGlobal() (Entity, bool) {
	return r.activateIn(PartitionGlobal)
}

// ActivateLoading claims a scratch slot in the loading partition, used
// by the scene loader during ingest.
func (r *EntityRegistry) ActivateLoading() (Entity, bool) {
	return r.activateIn(PartitionLoading)
}

func (r *EntityRegistry) activateIn(p Partition) (Entity, bool) {
	lo, hi := r.cfg.Bounds(p)
	for i := lo; i < hi; i++ {
		if !r.active[i] {
			r.active[i] = true
			r.enabled[i] = true
			return Entity{Index: EntityIndex(i), Active: true, Enabled: true}, true
		}
	}
	r.bus.PushError(NewRuntimeError(ErrCapacityExhausted,
		fmt.Sprintf("no free slot in %s partition (%d entities)", p, hi-lo)))
	return Entity{}, false
}

// Deactivate runs the teardown protocol for one entity: emit
// PreEntityDeactivated, invoke every behavior removal path, clear the
// slot flags, emit PostEntityDeactivated. No-op for inactive slots.
func (r *EntityRegistry) Deactivate(entity EntityIndex) {
	if !r.active[entity] {
		return
	}
	r.bus.Push(Event{Type: EventPreEntityDeactivated, Entity: entity})
	for _, remove := range r.removers {
		remove(entity)
	}
	r.active[entity] = false
	r.enabled[entity] = false
	r.bus.Push(Event{Type: EventPostEntityDeactivated, Entity: entity})
}

// Get returns a snapshot handle for the slot.
func (r *EntityRegistry) Get(entity EntityIndex) Entity {
	return Entity{Index: entity, Active: r.active[entity], Enabled: r.enabled[entity]}
}

// IsActive reports whether the slot currently holds a live entity.
func (r *EntityRegistry) IsActive(entity EntityIndex) bool {
	return r.active[entity]
}

// SetEnabled flips the logical visibility flag. A visibility hint
// only: it does not affect activation or transform computation.
func (r *EntityRegistry) SetEnabled(entity EntityIndex, enabled bool) {
	if r.active[entity] {
		r.enabled[entity] = enabled
	}
}

// IsEnabled reports the visibility flag.
func (r *EntityRegistry) IsEnabled(entity EntityIndex) bool {
	return r.enabled[entity]
}

// ActiveCount returns the number of live entities in a partition.
func (r *EntityRegistry) ActiveCount(p Partition) int {
	lo, hi := r.cfg.Bounds(p)
	count := 0
	for i := lo; i < hi; i++ {
		if r.active[i] {
			count++
		}
	}
	return count
}

// Reset deactivates every entity in the loading and scene partitions.
// Global entities are untouched.
func (r *EntityRegistry) Reset() {
	r.deactivateRange(r.cfg.Bounds(PartitionLoading))
	r.deactivateRange(r.cfg.Bounds(PartitionScene))
}

// Shutdown deactivates every entity in all partitions.
func (r *EntityRegistry) Shutdown() {
	r.deactivateRange(0, r.cfg.MaxEntities())
}

func (r *EntityRegistry) deactivateRange(lo, hi int) {
	for i := lo; i < hi; i++ {
		r.Deactivate(EntityIndex(i))
	}
}

// Config returns the partition configuration the registry was built
// with.
func (r *EntityRegistry) Config() Config {
	return r.cfg
}
