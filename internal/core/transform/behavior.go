package transform

import "github.com/SteffenBlake/atomic-go/internal/core/ebd"

// Transform is the backed behavior handle bundle: field accessors that
// read and write the entity's slot in the store columns directly. The
// closure passed to the registry's Set writes through one of these.
type Transform struct {
	s *Store
	i ebd.EntityIndex
}

// Position returns the local position.
func (t Transform) Position() Vec3 {
	return Vec3{X: t.s.PosX[t.i], Y: t.s.PosY[t.i], Z: t.s.PosZ[t.i]}
}

// SetPosition writes the local position columns.
func (t Transform) SetPosition(v Vec3) {
	t.s.PosX[t.i], t.s.PosY[t.i], t.s.PosZ[t.i] = v.X, v.Y, v.Z
}

// Rotation returns the local rotation quaternion.
func (t Transform) Rotation() Quat {
	return Quat{X: t.s.RotX[t.i], Y: t.s.RotY[t.i], Z: t.s.RotZ[t.i], W: t.s.RotW[t.i]}
}

// SetRotation writes the rotation columns. Callers supply unit
// quaternions.
func (t Transform) SetRotation(q Quat) {
	t.s.RotX[t.i], t.s.RotY[t.i], t.s.RotZ[t.i], t.s.RotW[t.i] = q.X, q.Y, q.Z, q.W
}

// Scale returns the local scale.
func (t Transform) Scale() Vec3 {
	return Vec3{X: t.s.SclX[t.i], Y: t.s.SclY[t.i], Z: t.s.SclZ[t.i]}
}

// SetScale writes the scale columns. Negative components mirror.
func (t Transform) SetScale(v Vec3) {
	t.s.SclX[t.i], t.s.SclY[t.i], t.s.SclZ[t.i] = v.X, v.Y, v.Z
}

// Anchor returns the pivot the rotation and scale are applied around.
func (t Transform) Anchor() Vec3 {
	return Vec3{X: t.s.AncX[t.i], Y: t.s.AncY[t.i], Z: t.s.AncZ[t.i]}
}

// SetAnchor writes the anchor columns.
func (t Transform) SetAnchor(v Vec3) {
	t.s.AncX[t.i], t.s.AncY[t.i], t.s.AncZ[t.i] = v.X, v.Y, v.Z
}

// NewRegistry builds the backed transform registry over the store's
// columns. Handles are cheap index bundles; re-set never reallocates.
// The caller wires removal into the entity registry.
func NewRegistry(bus *ebd.Bus, store *Store) *ebd.BackedRegistry[Transform] {
	return ebd.NewBackedRegistry(ebd.BehaviorTransform, bus, store.Len(),
		func(i ebd.EntityIndex) Transform { return Transform{s: store, i: i} },
		store.ResetEntity)
}
