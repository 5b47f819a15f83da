// Package core assembles the entity-behavior runtime into a single
// World and wraps it in the ebiten game loop the demo binary runs.
package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/SteffenBlake/atomic-go/internal/core/ebd"
	"github.com/SteffenBlake/atomic-go/internal/core/transform"
)

// World owns every registry, the backing store, the event bus, and the
// transform pipeline. One World is constructed at program start and
// Shutdown is called at exit. All access is single-threaded: the host
// calls Recalculate once per frame between simulation and rendering.
type World struct {
	cfg ebd.Config
	log zerolog.Logger

	Bus        *ebd.Bus
	Entities   *ebd.EntityRegistry
	Hierarchy  *ebd.Hierarchy
	Store      *transform.Store
	Transforms *ebd.BackedRegistry[transform.Transform]
	Pipeline   *transform.Pipeline
	Metrics    *ebd.Metrics
}

// NewWorld builds and wires a world. promReg may be nil to skip metric
// registration (tests do this to stay isolated).
func NewWorld(cfg ebd.Config, log zerolog.Logger, promReg prometheus.Registerer) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bus := ebd.NewBus(log)

	var metrics *ebd.Metrics
	if promReg != nil {
		metrics = ebd.NewMetrics(promReg, bus)
	}

	entities := ebd.NewEntityRegistry(cfg, bus)
	store := transform.NewStore(cfg.MaxEntities())
	transforms := transform.NewRegistry(bus, store)
	hierarchy := ebd.NewHierarchy(bus, entities)
	pipeline := transform.NewPipeline(store, bus, hierarchy, log, metrics)

	// Teardown order: transform record first (resets the columns),
	// then the hierarchy edge work (orphans the children).
	entities.OnDeactivate(transforms.Remove)
	entities.OnDeactivate(hierarchy.RemoveFor)

	return &World{
		cfg:        cfg,
		log:        log,
		Bus:        bus,
		Entities:   entities,
		Hierarchy:  hierarchy,
		Store:      store,
		Transforms: transforms,
		Pipeline:   pipeline,
		Metrics:    metrics,
	}, nil
}

// Initialize announces the world to subscribers.
func (w *World) Initialize() {
	w.Bus.Push(ebd.Event{Type: ebd.EventInitialize})
	w.log.Debug().Int("max_entities", w.cfg.MaxEntities()).Msg("world initialized")
}

// Activate claims a scene-partition entity.
func (w *World) Activate() (ebd.Entity, bool) {
	e, ok := w.Entities.Activate()
	w.trackEntities()
	return e, ok
}

// ActivateGlobal claims a global-partition entity, surviving Reset.
func (w *World) ActivateGlobal() (ebd.Entity, bool) {
	e, ok := w.Entities.ActivateGlobal()
	w.trackEntities()
	return e, ok
}

// ActivateLoading claims a loading-partition scratch entity.
func (w *World) ActivateLoading() (ebd.Entity, bool) {
	e, ok := w.Entities.ActivateLoading()
	w.trackEntities()
	return e, ok
}

// Deactivate tears down one entity.
func (w *World) Deactivate(entity ebd.EntityIndex) {
	w.Entities.Deactivate(entity)
	w.trackEntities()
}

// SetTransform inserts or mutates the entity's transform behavior.
func (w *World) SetTransform(entity ebd.EntityIndex, init func(transform.Transform)) {
	w.Transforms.Set(entity, init)
}

// SetParent links child under parent, fail-soft on invalid edges.
func (w *World) SetParent(child, parent ebd.EntityIndex) {
	w.Hierarchy.SetParent(child, parent)
}

// ClearParent orphans the child.
func (w *World) ClearParent(child ebd.EntityIndex) {
	w.Hierarchy.ClearParent(child)
}

// Recalculate drains the dirty set into fresh world transforms.
func (w *World) Recalculate() {
	w.Pipeline.Recalculate()
}

// WorldTransform returns the entity's 4x4 world matrix as of the last
// Recalculate.
func (w *World) WorldTransform(entity ebd.EntityIndex) transform.Mat4 {
	return w.Store.WorldMatrix(entity)
}

// Reset tears down the loading and scene partitions; global entities
// survive. The reset event fires before any entity work so external
// collaborators can flush.
func (w *World) Reset() {
	w.Bus.Push(ebd.Event{Type: ebd.EventReset})
	w.Entities.Reset()
	w.Pipeline.Clear()
	w.trackEntities()
	w.log.Debug().Msg("scene reset")
}

// Shutdown tears down every partition.
func (w *World) Shutdown() {
	w.Bus.Push(ebd.Event{Type: ebd.EventShutdown})
	w.Entities.Shutdown()
	w.Pipeline.Clear()
	w.trackEntities()
	w.log.Debug().Msg("world shut down")
}

// Stats is a point-in-time snapshot for diagnostics.
type Stats struct {
	LoadingEntities int
	SceneEntities   int
	GlobalEntities  int
	Transforms      int
	Dirty           int
}

// Stats gathers the current entity and behavior counts.
func (w *World) Stats() Stats {
	return Stats{
		LoadingEntities: w.Entities.ActiveCount(ebd.PartitionLoading),
		SceneEntities:   w.Entities.ActiveCount(ebd.PartitionScene),
		GlobalEntities:  w.Entities.ActiveCount(ebd.PartitionGlobal),
		Transforms:      w.Transforms.Count(),
		Dirty:           w.Pipeline.DirtyCount(),
	}
}

func (w *World) trackEntities() {
	if w.Metrics == nil {
		return
	}
	w.Metrics.SetActiveEntities(
		w.Entities.ActiveCount(ebd.PartitionLoading) +
			w.Entities.ActiveCount(ebd.PartitionScene) +
			w.Entities.ActiveCount(ebd.PartitionGlobal))
}
