// Package transform implements the transform pipeline: columnar
// backing storage for transform inputs, batched local and world
// matrix computation, and dirty-driven propagation through the
// hierarchy.
package transform

import "github.com/SteffenBlake/atomic-go/internal/core/ebd"

// MatCells is the number of stored matrix cells per entity: rows 0..3
// by columns 0..2 of a row-vector affine 4x4. The rightmost column is
// constant (0,0,0,1) and never stored or recomputed.
const MatCells = 12

// Identity cells within the 12-cell layout (r*3+c).
const (
	cell00 = 0
	cell11 = 4
	cell22 = 8
	cellTX = 9
	cellTY = 10
	cellTZ = 11
)

// Vec3 is a 3-component vector over the column scalar type.
type Vec3 struct {
	X, Y, Z float32
}

// Quat is a rotation quaternion. The zero rotation is (0,0,0,1).
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// Store is the singleton owning the dense transform columns, each
// sized to the full slot table. Column defaults: position and anchor
// 0, rotation identity quaternion, scale 1, local/world/parent-world
// identity matrix.
//
// The pipeline is the sole writer to the World and ParentWorld
// columns; every other subsystem reads them.
type Store struct {
	n int

	PosX, PosY, PosZ       []float32
	RotX, RotY, RotZ, RotW []float32
	SclX, SclY, SclZ       []float32
	AncX, AncY, AncZ       []float32

	Local       [MatCells][]float32
	World       [MatCells][]float32
	ParentWorld [MatCells][]float32

	// quaternion product scratch, filled once per entity per local
	// pass and consumed by the row assembly pipelines
	qxx, qyy, qzz []float32
	qxy, qxz, qyz []float32
	qwx, qwy, qwz []float32
}

// NewStore allocates columns for n entity slots, all at defaults.
func NewStore(n int) *Store {
	s := &Store{n: n}
	alloc := func() []float32 { return make([]float32, n) }
	s.PosX, s.PosY, s.PosZ = alloc(), alloc(), alloc()
	s.RotX, s.RotY, s.RotZ, s.RotW = alloc(), alloc(), alloc(), alloc()
	s.SclX, s.SclY, s.SclZ = alloc(), alloc(), alloc()
	s.AncX, s.AncY, s.AncZ = alloc(), alloc(), alloc()
	for c := 0; c < MatCells; c++ {
		s.Local[c] = alloc()
		s.World[c] = alloc()
		s.ParentWorld[c] = alloc()
	}
	s.qxx, s.qyy, s.qzz = alloc(), alloc(), alloc()
	s.qxy, s.qxz, s.qyz = alloc(), alloc(), alloc()
	s.qwx, s.qwy, s.qwz = alloc(), alloc(), alloc()
	for i := 0; i < n; i++ {
		s.ResetEntity(ebd.EntityIndex(i))
	}
	return s
}

// Len returns the column length.
func (s *Store) Len() int {
	return s.n
}

// ResetEntity restores every column slot of one entity to its default.
func (s *Store) ResetEntity(i ebd.EntityIndex) {
	s.PosX[i], s.PosY[i], s.PosZ[i] = 0, 0, 0
	s.RotX[i], s.RotY[i], s.RotZ[i], s.RotW[i] = 0, 0, 0, 1
	s.SclX[i], s.SclY[i], s.SclZ[i] = 1, 1, 1
	s.AncX[i], s.AncY[i], s.AncZ[i] = 0, 0, 0
	setIdentity(&s.Local, i)
	setIdentity(&s.World, i)
	setIdentity(&s.ParentWorld, i)
}

// SetWorldIdentity resets the entity's world matrix slot.
func (s *Store) SetWorldIdentity(i ebd.EntityIndex) {
	setIdentity(&s.World, i)
}

// SetParentWorldIdentity resets the entity's cached parent-world slot.
func (s *Store) SetParentWorldIdentity(i ebd.EntityIndex) {
	setIdentity(&s.ParentWorld, i)
}

func setIdentity(m *[MatCells][]float32, i ebd.EntityIndex) {
	for c := 0; c < MatCells; c++ {
		m[c][i] = 0
	}
	m[cell00][i] = 1
	m[cell11][i] = 1
	m[cell22][i] = 1
}

// CopyWorldToParentWorld scatters the parent's world matrix into the
// child's cached parent-world slot.
func (s *Store) CopyWorldToParentWorld(parent, child ebd.EntityIndex) {
	for c := 0; c < MatCells; c++ {
		s.ParentWorld[c][child] = s.World[c][parent]
	}
}

// Mat4 is a row-vector affine matrix in row-major order, the expanded
// form of the 12 stored cells.
type Mat4 [16]float32

// WorldMatrix assembles the entity's full 4x4 world transform,
// reinstating the implicit (0,0,0,1) column.
func (s *Store) WorldMatrix(i ebd.EntityIndex) Mat4 {
	return expand(&s.World, i)
}

// LocalMatrix assembles the entity's full 4x4 local transform.
func (s *Store) LocalMatrix(i ebd.EntityIndex) Mat4 {
	return expand(&s.Local, i)
}

func expand(m *[MatCells][]float32, i ebd.EntityIndex) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 3; c++ {
			out[r*4+c] = m[r*3+c][i]
		}
	}
	out[15] = 1
	return out
}
