package ebd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{MaxLoadingEntities: 4, MaxSceneEntities: 8, MaxGlobalEntities: 4}
}

func Test_EntityRegistry_ActivateUsesScenePartitionLowEnd(t *testing.T) {
	// Arrange
	cfg := testConfig()
	reg := NewEntityRegistry(cfg, newTestBus())

	// Act
	first, ok1 := reg.Activate()
	second, ok2 := reg.Activate()

	// Assert
	require.True(t, ok1)
	require.True(t, ok2)
	lo, _ := cfg.Bounds(PartitionScene)
	assert.Equal(t, EntityIndex(lo), first.Index)
	assert.Equal(t, EntityIndex(lo+1), second.Index)
	assert.True(t, first.Active)
	assert.True(t, first.Enabled)
}

func Test_EntityRegistry_PartitionsDoNotOverlap(t *testing.T) {
	// Arrange
	cfg := testConfig()
	reg := NewEntityRegistry(cfg, newTestBus())

	// Act
	loading, _ := reg.ActivateLoading()
	scene, _ := reg.Activate()
	global, _ := reg.ActivateGlobal()

	// Assert
	assert.Equal(t, PartitionLoading, cfg.PartitionOf(loading.Index))
	assert.Equal(t, PartitionScene, cfg.PartitionOf(scene.Index))
	assert.Equal(t, PartitionGlobal, cfg.PartitionOf(global.Index))
}

func Test_EntityRegistry_FullPartitionEmitsCapacityExhausted(t *testing.T) {
	// Arrange
	bus := newTestBus()
	reg := NewEntityRegistry(testConfig(), bus)
	var codes []string
	bus.Subscribe(EventError, func(e Event) { codes = append(codes, e.Err.Code) })
	for i := 0; i < 4; i++ {
		_, ok := reg.ActivateGlobal()
		require.True(t, ok)
	}

	// Act
	_, ok := reg.ActivateGlobal()

	// Assert
	assert.False(t, ok)
	assert.Equal(t, []string{ErrCapacityExhausted}, codes)
}

func Test_EntityRegistry_SlotReuseAfterDeactivate(t *testing.T) {
	// Arrange
	reg := NewEntityRegistry(testConfig(), newTestBus())
	first, _ := reg.Activate()

	// Act
	reg.Deactivate(first.Index)
	second, ok := reg.Activate()

	// Assert
	require.True(t, ok)
	assert.Equal(t, first.Index, second.Index)
}

func Test_EntityRegistry_DeactivateRunsTeardownProtocolInOrder(t *testing.T) {
	// Arrange
	bus := newTestBus()
	reg := NewEntityRegistry(testConfig(), bus)
	var order []string
	bus.Subscribe(EventPreEntityDeactivated, func(Event) { order = append(order, "pre") })
	bus.Subscribe(EventPostEntityDeactivated, func(Event) { order = append(order, "post") })
	reg.OnDeactivate(func(EntityIndex) { order = append(order, "remove-a") })
	reg.OnDeactivate(func(EntityIndex) { order = append(order, "remove-b") })
	e, _ := reg.Activate()

	// Act
	reg.Deactivate(e.Index)

	// Assert
	assert.Equal(t, []string{"pre", "remove-a", "remove-b", "post"}, order)
	assert.False(t, reg.IsActive(e.Index))
	assert.False(t, reg.IsEnabled(e.Index))
}

func Test_EntityRegistry_DeactivateInactiveIsNoOp(t *testing.T) {
	// Arrange
	bus := newTestBus()
	reg := NewEntityRegistry(testConfig(), bus)
	fired := 0
	bus.Subscribe(EventPreEntityDeactivated, func(Event) { fired++ })

	// Act
	reg.Deactivate(5)

	// Assert
	assert.Equal(t, 0, fired)
}

func Test_EntityRegistry_EnabledFlagIsIndependentOfActivation(t *testing.T) {
	// Arrange
	reg := NewEntityRegistry(testConfig(), newTestBus())
	e, _ := reg.Activate()

	// Act
	reg.SetEnabled(e.Index, false)

	// Assert
	assert.True(t, reg.IsActive(e.Index))
	assert.False(t, reg.IsEnabled(e.Index))
}

func Test_EntityRegistry_ResetClearsSceneAndLoadingOnly(t *testing.T) {
	// Arrange
	reg := NewEntityRegistry(testConfig(), newTestBus())
	loading, _ := reg.ActivateLoading()
	scene, _ := reg.Activate()
	global, _ := reg.ActivateGlobal()

	// Act
	reg.Reset()

	// Assert
	assert.False(t, reg.IsActive(loading.Index))
	assert.False(t, reg.IsActive(scene.Index))
	assert.True(t, reg.IsActive(global.Index))
}

func Test_EntityRegistry_ShutdownClearsAllPartitions(t *testing.T) {
	// Arrange
	reg := NewEntityRegistry(testConfig(), newTestBus())
	loading, _ := reg.ActivateLoading()
	scene, _ := reg.Activate()
	global, _ := reg.ActivateGlobal()

	// Act
	reg.Shutdown()

	// Assert
	assert.False(t, reg.IsActive(loading.Index))
	assert.False(t, reg.IsActive(scene.Index))
	assert.False(t, reg.IsActive(global.Index))
	assert.Equal(t, 0, reg.ActiveCount(PartitionGlobal))
}
