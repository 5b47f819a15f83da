//go:build transformscalar

package transform

// Portable scalar compute strategy: one pass per entity with local
// temporaries, no column scratch. Selected with the transformscalar
// build tag; semantics match the batched strategy cell for cell.

func (s *Store) computeLocal() {
	for i := 0; i < s.n; i++ {
		x, y, z, w := s.RotX[i], s.RotY[i], s.RotZ[i], s.RotW[i]
		xx, yy, zz := x*x, y*y, z*z
		xy, xz, yz := x*y, x*z, y*z
		wx, wy, wz := w*x, w*y, w*z

		sx, sy, sz := s.SclX[i], s.SclY[i], s.SclZ[i]
		l := &s.Local
		l[0][i] = sx * (1 - 2*(yy+zz))
		l[1][i] = sx * 2 * (xy + wz)
		l[2][i] = sx * 2 * (xz - wy)
		l[3][i] = sy * 2 * (xy - wz)
		l[4][i] = sy * (1 - 2*(xx+zz))
		l[5][i] = sy * 2 * (yz + wx)
		l[6][i] = sz * 2 * (xz + wy)
		l[7][i] = sz * 2 * (yz - wx)
		l[8][i] = sz * (1 - 2*(xx+yy))

		ax, ay, az := s.AncX[i], s.AncY[i], s.AncZ[i]
		l[cellTX][i] = s.PosX[i] + ax - (ax*l[0][i] + ay*l[3][i] + az*l[6][i])
		l[cellTY][i] = s.PosY[i] + ay - (ax*l[1][i] + ay*l[4][i] + az*l[7][i])
		l[cellTZ][i] = s.PosZ[i] + az - (ax*l[2][i] + ay*l[5][i] + az*l[8][i])
	}
}

func (s *Store) computeWorld() {
	for i := 0; i < s.n; i++ {
		l, p, w := &s.Local, &s.ParentWorld, &s.World
		for c := 0; c < 3; c++ {
			for r := 0; r < 3; r++ {
				w[r*3+c][i] = l[r*3][i]*p[c][i] + l[r*3+1][i]*p[3+c][i] + l[r*3+2][i]*p[6+c][i]
			}
			w[9+c][i] = l[9][i]*p[c][i] + l[10][i]*p[3+c][i] + l[11][i]*p[6+c][i] + p[9+c][i]
		}
	}
}
