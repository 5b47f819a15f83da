package core

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteffenBlake/atomic-go/internal/core/ebd"
	"github.com/SteffenBlake/atomic-go/internal/core/transform"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	cfg := ebd.Config{MaxLoadingEntities: 2, MaxSceneEntities: 16, MaxGlobalEntities: 4}
	w, err := NewWorld(cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	w.Initialize()
	return w
}

func Test_World_RejectsInvalidConfig(t *testing.T) {
	// Arrange
	cfg := ebd.Config{MaxLoadingEntities: -1, MaxSceneEntities: 16, MaxGlobalEntities: 4}

	// Act
	_, err := NewWorld(cfg, zerolog.Nop(), nil)

	// Assert
	assert.Error(t, err)
}

func Test_World_MetricsRegisterOnSuppliedRegistry(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()

	// Act
	w, err := NewWorld(ebd.DefaultConfig(), zerolog.Nop(), reg)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, w.Metrics)
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func Test_World_EndToEndSceneFlow(t *testing.T) {
	// Arrange
	w := newTestWorld(t)
	parent, ok := w.Activate()
	require.True(t, ok)
	child, ok := w.Activate()
	require.True(t, ok)

	// Act: the scene-loader shape — activate, set behaviors, link
	w.SetTransform(parent.Index, func(tr transform.Transform) {
		tr.SetPosition(transform.Vec3{X: 100})
	})
	w.SetParent(child.Index, parent.Index)
	w.SetTransform(child.Index, func(tr transform.Transform) {
		tr.SetPosition(transform.Vec3{X: 10})
	})
	w.Recalculate()

	// Assert
	assert.InDelta(t, 110, w.WorldTransform(child.Index)[12], 1e-4)
	stats := w.Stats()
	assert.Equal(t, 2, stats.SceneEntities)
	assert.Equal(t, 2, stats.Transforms)
	assert.Equal(t, 0, stats.Dirty)
}

func Test_World_ResetKeepsGlobalPartitionReadable(t *testing.T) {
	// Arrange
	w := newTestWorld(t)
	scene, _ := w.Activate()
	global, _ := w.ActivateGlobal()
	w.SetTransform(scene.Index, func(tr transform.Transform) {
		tr.SetPosition(transform.Vec3{X: 5})
	})
	w.SetTransform(global.Index, func(tr transform.Transform) {
		tr.SetPosition(transform.Vec3{X: 77})
	})
	w.Recalculate()

	// Act
	w.Reset()

	// Assert: global entity still active, clean, world intact
	assert.False(t, w.Entities.IsActive(scene.Index))
	assert.True(t, w.Entities.IsActive(global.Index))
	assert.True(t, w.Transforms.Has(global.Index))
	assert.False(t, w.Pipeline.IsDirty(global.Index))
	assert.InDelta(t, 77, w.WorldTransform(global.Index)[12], 1e-4)
	assert.InDelta(t, 0, w.WorldTransform(scene.Index)[12], 1e-4)
}

func Test_World_ShutdownClearsEverything(t *testing.T) {
	// Arrange
	w := newTestWorld(t)
	scene, _ := w.Activate()
	global, _ := w.ActivateGlobal()
	w.SetTransform(global.Index, func(tr transform.Transform) {
		tr.SetPosition(transform.Vec3{X: 77})
	})
	var order []ebd.EventType
	w.Bus.Subscribe(ebd.EventShutdown, func(e ebd.Event) { order = append(order, e.Type) })
	w.Bus.Subscribe(ebd.EventPreEntityDeactivated, func(e ebd.Event) { order = append(order, e.Type) })

	// Act
	w.Shutdown()

	// Assert: event precedes entity work, all partitions cleared
	require.NotEmpty(t, order)
	assert.Equal(t, ebd.EventShutdown, order[0])
	assert.False(t, w.Entities.IsActive(scene.Index))
	assert.False(t, w.Entities.IsActive(global.Index))
	assert.Equal(t, 0, w.Transforms.Count())
	assert.Equal(t, 0, w.Pipeline.DirtyCount())
}

func Test_World_RemovalEventsPrecedePostEntityDeactivated(t *testing.T) {
	// Arrange
	w := newTestWorld(t)
	e, _ := w.Activate()
	w.SetTransform(e.Index, func(tr transform.Transform) {
		tr.SetPosition(transform.Vec3{X: 1})
	})
	var order []ebd.EventType
	w.Bus.SubscribeBehavior(ebd.EventPreBehaviorRemoved, ebd.BehaviorTransform, func(ev ebd.Event) {
		order = append(order, ev.Type)
	})
	w.Bus.Subscribe(ebd.EventPostEntityDeactivated, func(ev ebd.Event) {
		order = append(order, ev.Type)
	})

	// Act
	w.Deactivate(e.Index)

	// Assert
	assert.Equal(t, []ebd.EventType{ebd.EventPreBehaviorRemoved, ebd.EventPostEntityDeactivated}, order)
}

func Test_World_PersistenceShapedSubscriberSeesAllBehaviors(t *testing.T) {
	// Arrange: a wildcard PostBehaviorUpdated subscriber, the
	// persistence collaborator shape
	w := newTestWorld(t)
	e, _ := w.Activate()
	var touched []ebd.BehaviorType
	w.Bus.Subscribe(ebd.EventPostBehaviorUpdated, func(ev ebd.Event) {
		touched = append(touched, ev.Behavior)
	})
	w.SetTransform(e.Index, func(tr transform.Transform) {
		tr.SetPosition(transform.Vec3{X: 1})
	})

	// Act: second set fires the update pair; recalculate fires the
	// world-transform update
	w.SetTransform(e.Index, func(tr transform.Transform) {
		tr.SetPosition(transform.Vec3{X: 2})
	})
	w.Recalculate()

	// Assert
	assert.Equal(t, []ebd.BehaviorType{ebd.BehaviorTransform, ebd.BehaviorWorldTransform}, touched)
}
