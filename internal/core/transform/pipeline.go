package transform

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/rs/zerolog"

	"github.com/SteffenBlake/atomic-go/internal/core/ebd"
)

// maxIterations bounds the scatter loop. A cycle-free hierarchy
// converges in depth-of-hierarchy iterations; the cap only trips if a
// bug corrupts the child sets.
const maxIterations = 100

// HierarchyView is the read surface the pipeline needs from the
// hierarchy registry.
type HierarchyView interface {
	ChildrenOf(ebd.EntityIndex) []ebd.EntityIndex
	ParentOf(ebd.EntityIndex) (ebd.EntityIndex, bool)
}

// Pipeline owns the dirty set and drives the per-frame world transform
// recalculation. It subscribes to the transform and parent behavior
// events; each of them marks the affected entity dirty, except
// transform removal, which resets the entity's columns and drops it
// from the dirty set. The pipeline is
// the sole writer to the World and ParentWorld columns.
type Pipeline struct {
	store     *Store
	bus       *ebd.Bus
	hierarchy HierarchyView
	log       zerolog.Logger
	metrics   *ebd.Metrics

	dirty *roaring.Bitmap
}

// NewPipeline wires the pipeline into the bus. metrics may be nil.
func NewPipeline(store *Store, bus *ebd.Bus, hierarchy HierarchyView,
	log zerolog.Logger, metrics *ebd.Metrics) *Pipeline {
	p := &Pipeline{
		store:     store,
		bus:       bus,
		hierarchy: hierarchy,
		log:       log,
		metrics:   metrics,
		dirty:     roaring.New(),
	}
	bus.SubscribeBehavior(ebd.EventBehaviorAdded, ebd.BehaviorTransform, p.onTransformAdded)
	bus.SubscribeBehavior(ebd.EventPostBehaviorUpdated, ebd.BehaviorTransform, p.onTransformUpdated)
	bus.SubscribeBehavior(ebd.EventPreBehaviorRemoved, ebd.BehaviorTransform, p.onTransformRemoved)
	bus.SubscribeBehavior(ebd.EventBehaviorAdded, ebd.BehaviorParent, p.onParentChanged)
	bus.SubscribeBehavior(ebd.EventPostBehaviorUpdated, ebd.BehaviorParent, p.onParentChanged)
	bus.SubscribeBehavior(ebd.EventPreBehaviorRemoved, ebd.BehaviorParent, p.onParentRemoved)
	return p
}

func (p *Pipeline) onTransformAdded(e ebd.Event) {
	p.store.SetWorldIdentity(e.Entity)
	// A pre-existing parent edge already has a valid cached world to
	// inherit; otherwise the parent-world slot stays identity.
	if parent, ok := p.hierarchy.ParentOf(e.Entity); ok {
		p.store.CopyWorldToParentWorld(parent, e.Entity)
	} else {
		p.store.SetParentWorldIdentity(e.Entity)
	}
	p.markDirty(e.Entity)
}

func (p *Pipeline) onTransformUpdated(e ebd.Event) {
	p.markDirty(e.Entity)
}

func (p *Pipeline) onTransformRemoved(e ebd.Event) {
	p.store.ResetEntity(e.Entity)
	p.dirty.Remove(uint32(e.Entity))
}

// onParentChanged seeds the child's cached parent-world from the new
// parent's current world so the next recalculation composes against
// it even if the parent itself is clean.
func (p *Pipeline) onParentChanged(e ebd.Event) {
	if parent, ok := p.hierarchy.ParentOf(e.Entity); ok {
		p.store.CopyWorldToParentWorld(parent, e.Entity)
	}
	p.markDirty(e.Entity)
}

// onParentRemoved turns the child back into a root: cached
// parent-world reverts to identity.
func (p *Pipeline) onParentRemoved(e ebd.Event) {
	p.store.SetParentWorldIdentity(e.Entity)
	p.markDirty(e.Entity)
}

func (p *Pipeline) markDirty(entity ebd.EntityIndex) {
	p.dirty.Add(uint32(entity))
	p.metrics.SetDirtyEntities(int(p.dirty.GetCardinality()))
}

// MarkDirty queues an entity for recalculation outside the event
// plumbing.
func (p *Pipeline) MarkDirty(entity ebd.EntityIndex) {
	p.markDirty(entity)
}

// IsDirty reports whether the entity awaits recalculation.
func (p *Pipeline) IsDirty(entity ebd.EntityIndex) bool {
	return p.dirty.Contains(uint32(entity))
}

// DirtyCount returns the pending entity count.
func (p *Pipeline) DirtyCount() int {
	return int(p.dirty.GetCardinality())
}

// Clear drops all pending work, part of Reset/Shutdown teardown.
func (p *Pipeline) Clear() {
	p.dirty.Clear()
	p.metrics.SetDirtyEntities(0)
}

// Recalculate runs the per-frame protocol: synthesize local matrices,
// then iterate world composition and scatter until the dirty set
// drains. Each snapshot's entities compose W = L * P over the whole
// columns; their children inherit the fresh W as their cached P and
// join the next snapshot, so a parent is always processed before its
// descendants within one call.
//
// One PostBehaviorUpdated<world_transform> fires per touched entity
// after the loop settles. If the loop fails to converge within the
// iteration cap (an acyclic hierarchy never does), an
// ITERATION_LIMIT_EXCEEDED Error event fires and the dirty set is
// left non-empty as a host-visible signal.
func (p *Pipeline) Recalculate() {
	if p.dirty.IsEmpty() {
		return
	}
	start := time.Now()

	p.store.computeLocal()

	updated := roaring.New()
	for iter := 0; !p.dirty.IsEmpty(); iter++ {
		if iter >= maxIterations {
			p.bus.PushError(ebd.NewRuntimeError(ebd.ErrIterationLimitExceeded,
				fmt.Sprintf("world transform recalculation did not converge after %d iterations, %d entities still dirty",
					maxIterations, p.DirtyCount())))
			return
		}

		snapshot := p.dirty.Clone()
		p.dirty.Clear()
		updated.Or(snapshot)

		p.store.computeWorld()

		it := snapshot.Iterator()
		for it.HasNext() {
			parent := ebd.EntityIndex(it.Next())
			for _, child := range p.hierarchy.ChildrenOf(parent) {
				p.store.CopyWorldToParentWorld(parent, child)
				p.dirty.Add(uint32(child))
			}
		}
	}

	it := updated.Iterator()
	for it.HasNext() {
		p.bus.Push(ebd.Event{
			Type:     ebd.EventPostBehaviorUpdated,
			Behavior: ebd.BehaviorWorldTransform,
			Entity:   ebd.EntityIndex(it.Next()),
		})
	}

	p.metrics.SetDirtyEntities(0)
	p.metrics.ObserveRecalculate(time.Since(start))
	p.log.Debug().
		Uint64("updated", updated.GetCardinality()).
		Dur("elapsed", time.Since(start)).
		Msg("recalculated world transforms")
}
