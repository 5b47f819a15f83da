package ebd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHierarchy(t *testing.T) (*Bus, *EntityRegistry, *Hierarchy) {
	t.Helper()
	bus := newTestBus()
	entities := NewEntityRegistry(testConfig(), bus)
	hier := NewHierarchy(bus, entities)
	entities.OnDeactivate(hier.RemoveFor)
	return bus, entities, hier
}

func activateN(t *testing.T, entities *EntityRegistry, n int) []EntityIndex {
	t.Helper()
	out := make([]EntityIndex, n)
	for i := range out {
		e, ok := entities.Activate()
		require.True(t, ok)
		out[i] = e.Index
	}
	return out
}

func Test_Hierarchy_SetParentLinksBothDirections(t *testing.T) {
	// Arrange
	_, entities, hier := newTestHierarchy(t)
	es := activateN(t, entities, 2)
	parent, child := es[0], es[1]

	// Act
	hier.SetParent(child, parent)

	// Assert
	got, ok := hier.ParentOf(child)
	require.True(t, ok)
	assert.Equal(t, parent, got)
	assert.Equal(t, []EntityIndex{child}, hier.ChildrenOf(parent))
}

func Test_Hierarchy_RapidReparentingKeepsChildSetsConsistent(t *testing.T) {
	// Arrange
	_, entities, hier := newTestHierarchy(t)
	es := activateN(t, entities, 4)
	a, b, c, child := es[0], es[1], es[2], es[3]

	// Act: move child A -> B -> C before any recalculation
	hier.SetParent(child, a)
	hier.SetParent(child, b)
	hier.SetParent(child, c)

	// Assert: only C's child set contains the child
	assert.Empty(t, hier.ChildrenOf(a))
	assert.Empty(t, hier.ChildrenOf(b))
	assert.Equal(t, []EntityIndex{child}, hier.ChildrenOf(c))
	got, _ := hier.ParentOf(child)
	assert.Equal(t, c, got)
}

func Test_Hierarchy_CycleIsRejectedFailSoft(t *testing.T) {
	// Arrange
	bus, entities, hier := newTestHierarchy(t)
	es := activateN(t, entities, 3)
	grandparent, parent, child := es[0], es[1], es[2]
	hier.SetParent(parent, grandparent)
	hier.SetParent(child, parent)
	var codes []string
	bus.Subscribe(EventError, func(e Event) { codes = append(codes, e.Err.Code) })

	// Act: linking the grandparent under its own descendant must fail
	hier.SetParent(grandparent, child)

	// Assert
	assert.Equal(t, []string{ErrInvalidParent}, codes)
	_, ok := hier.ParentOf(grandparent)
	assert.False(t, ok, "grandparent stays a root")
	assert.Empty(t, hier.ChildrenOf(child))
}

func Test_Hierarchy_SelfParentIsRejected(t *testing.T) {
	// Arrange
	bus, entities, hier := newTestHierarchy(t)
	es := activateN(t, entities, 1)
	var codes []string
	bus.Subscribe(EventError, func(e Event) { codes = append(codes, e.Err.Code) })

	// Act
	hier.SetParent(es[0], es[0])

	// Assert
	assert.Equal(t, []string{ErrInvalidParent}, codes)
}

func Test_Hierarchy_InactiveParentIsRejected(t *testing.T) {
	// Arrange
	bus, entities, hier := newTestHierarchy(t)
	es := activateN(t, entities, 2)
	parent, child := es[0], es[1]
	entities.Deactivate(parent)
	var codes []string
	bus.Subscribe(EventError, func(e Event) { codes = append(codes, e.Err.Code) })

	// Act
	hier.SetParent(child, parent)

	// Assert
	assert.Equal(t, []string{ErrInvalidParent}, codes)
	_, ok := hier.ParentOf(child)
	assert.False(t, ok)
}

func Test_Hierarchy_RejectedMoveLeavesExistingEdgeIntact(t *testing.T) {
	// Arrange
	_, entities, hier := newTestHierarchy(t)
	es := activateN(t, entities, 3)
	oldParent, child, inactive := es[0], es[1], es[2]
	hier.SetParent(child, oldParent)
	entities.Deactivate(inactive)

	// Act
	hier.SetParent(child, inactive)

	// Assert
	got, ok := hier.ParentOf(child)
	require.True(t, ok)
	assert.Equal(t, oldParent, got)
	assert.Equal(t, []EntityIndex{child}, hier.ChildrenOf(oldParent))
}

func Test_Hierarchy_ClearParentOrphansChild(t *testing.T) {
	// Arrange
	_, entities, hier := newTestHierarchy(t)
	es := activateN(t, entities, 2)
	parent, child := es[0], es[1]
	hier.SetParent(child, parent)

	// Act
	hier.ClearParent(child)

	// Assert
	_, ok := hier.ParentOf(child)
	assert.False(t, ok)
	assert.Empty(t, hier.ChildrenOf(parent))
}

func Test_Hierarchy_DeactivateParentOrphansChildrenButKeepsThemActive(t *testing.T) {
	// Arrange
	_, entities, hier := newTestHierarchy(t)
	es := activateN(t, entities, 3)
	parent, child1, child2 := es[0], es[1], es[2]
	hier.SetParent(child1, parent)
	hier.SetParent(child2, parent)

	// Act
	entities.Deactivate(parent)

	// Assert
	assert.True(t, entities.IsActive(child1))
	assert.True(t, entities.IsActive(child2))
	_, ok1 := hier.ParentOf(child1)
	_, ok2 := hier.ParentOf(child2)
	assert.False(t, ok1)
	assert.False(t, ok2)
}

func Test_Hierarchy_DeactivateChildLeavesParentChildSet(t *testing.T) {
	// Arrange
	_, entities, hier := newTestHierarchy(t)
	es := activateN(t, entities, 2)
	parent, child := es[0], es[1]
	hier.SetParent(child, parent)

	// Act
	entities.Deactivate(child)

	// Assert
	assert.Empty(t, hier.ChildrenOf(parent))
}

func Test_Hierarchy_ParentEventsFireThroughBus(t *testing.T) {
	// Arrange
	bus, entities, hier := newTestHierarchy(t)
	es := activateN(t, entities, 3)
	a, b, child := es[0], es[1], es[2]
	var fired []EventType
	for _, et := range []EventType{EventBehaviorAdded, EventPreBehaviorUpdated, EventPostBehaviorUpdated, EventPreBehaviorRemoved} {
		et := et
		bus.SubscribeBehavior(et, BehaviorParent, func(Event) { fired = append(fired, et) })
	}

	// Act
	hier.SetParent(child, a)
	hier.SetParent(child, b)
	hier.ClearParent(child)

	// Assert
	assert.Equal(t, []EventType{
		EventBehaviorAdded,
		EventPreBehaviorUpdated, EventPostBehaviorUpdated,
		EventPreBehaviorRemoved,
	}, fired)
}
