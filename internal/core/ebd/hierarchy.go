package ebd

import "fmt"

// Hierarchy maintains the parent-of relation: each entity holds at
// most one Parent behavior, each parent a sparse set of children, and
// the two stay bidirectionally consistent through any sequence of
// moves. Cycles are rejected before anything is written.
type Hierarchy struct {
	bus      *Bus
	entities *EntityRegistry
	parents  *Registry[Parent]

	// children is lazily allocated per parent slot.
	children []*SparseSet
}

// NewHierarchy creates the hierarchy index. Its deactivation hook is
// registered with the entity registry by the caller:
//
//	entities.OnDeactivate(hier.RemoveFor)
func NewHierarchy(bus *Bus, entities *EntityRegistry) *Hierarchy {
	return &Hierarchy{
		bus:      bus,
		entities: entities,
		parents:  NewRegistry[Parent](BehaviorParent, bus),
		children: make([]*SparseSet, entities.Config().MaxEntities()),
	}
}

// SetParent links child under parent. The operation is a full move:
// the child leaves its previous parent's child set (whatever chain of
// rapid re-parenting preceded this call) before it enters the new
// one, so at any point exactly one child set contains it.
//
// An inactive parent, or an edge that would make child an ancestor of
// itself, is rejected fail-soft: an INVALID_PARENT Error event fires
// and the existing edge is left unchanged.
func (h *Hierarchy) SetParent(child, parent EntityIndex) {
	if !h.entities.IsActive(parent) {
		h.bus.PushError(NewEntityError(ErrInvalidParent,
			fmt.Sprintf("parent %d is not active", parent), child))
		return
	}
	if child == parent || h.isAncestor(child, parent) {
		h.bus.PushError(NewEntityError(ErrInvalidParent,
			fmt.Sprintf("entity %d is an ancestor of %d, edge would form a cycle", child, parent), child))
		return
	}

	if prev, ok := h.parents.TryGet(child); ok {
		if prev.Index == parent {
			// Same edge re-set still fires the update protocol.
			h.parents.Set(child, func(p *Parent) { p.Index = parent })
			return
		}
		h.childSet(prev.Index).Remove(child)
	}
	h.childSet(parent).Add(child)
	h.parents.Set(child, func(p *Parent) { p.Index = parent })
}

// ClearParent removes the child's parent edge. No-op for roots.
func (h *Hierarchy) ClearParent(child EntityIndex) {
	prev, ok := h.parents.TryGet(child)
	if !ok {
		return
	}
	h.childSet(prev.Index).Remove(child)
	h.parents.Remove(child)
}

// ParentOf returns the child's parent, if any.
func (h *Hierarchy) ParentOf(child EntityIndex) (EntityIndex, bool) {
	p, ok := h.parents.TryGet(child)
	if !ok {
		return 0, false
	}
	return p.Index, true
}

// ChildrenOf returns the parent's children as a fresh slice, in dense
// order.
func (h *Hierarchy) ChildrenOf(parent EntityIndex) []EntityIndex {
	set := h.children[parent]
	if set == nil {
		return nil
	}
	return set.ToSlice()
}

// HasChildren reports whether the entity parents anything.
func (h *Hierarchy) HasChildren(parent EntityIndex) bool {
	set := h.children[parent]
	return set != nil && set.Size() > 0
}

// RemoveFor is the deactivation hook: the dying entity leaves its own
// parent's child set, and each of its children is orphaned (parent
// edge cleared, child kept active).
func (h *Hierarchy) RemoveFor(entity EntityIndex) {
	h.ClearParent(entity)
	if set := h.children[entity]; set != nil {
		for _, child := range set.ToSlice() {
			h.ClearParent(child)
		}
	}
}

// isAncestor walks the parent chain upward from 'of' and reports
// whether it passes through ancestor. The chain is acyclic by
// construction, so the walk terminates.
func (h *Hierarchy) isAncestor(ancestor, of EntityIndex) bool {
	cur := of
	for {
		p, ok := h.parents.TryGet(cur)
		if !ok {
			return false
		}
		if p.Index == ancestor {
			return true
		}
		cur = p.Index
	}
}

func (h *Hierarchy) childSet(parent EntityIndex) *SparseSet {
	if h.children[parent] == nil {
		h.children[parent] = NewSparseSet(h.entities.Config().MaxEntities())
	}
	return h.children[parent]
}
