//go:build !transformscalar

package transform

// Batched compute strategy: the local and world synthesis run as
// independent scalar pipelines over whole columns, one tight
// branch-free loop per output cell. Each loop body is a pure
// multiply-add chain over parallel slices, the shape the compiler's
// auto-vectorizer turns into SIMD lanes.

// computeLocal synthesizes L = T(-anchor) * S * R * T(anchor) *
// T(position) for every slot, as 12 stored cells per entity.
func (s *Store) computeLocal() {
	n := s.n

	// Quaternion products, one pipeline per scratch column.
	x, y, z, w := s.RotX, s.RotY, s.RotZ, s.RotW
	for i := 0; i < n; i++ {
		s.qxx[i] = x[i] * x[i]
	}
	for i := 0; i < n; i++ {
		s.qyy[i] = y[i] * y[i]
	}
	for i := 0; i < n; i++ {
		s.qzz[i] = z[i] * z[i]
	}
	for i := 0; i < n; i++ {
		s.qxy[i] = x[i] * y[i]
	}
	for i := 0; i < n; i++ {
		s.qxz[i] = x[i] * z[i]
	}
	for i := 0; i < n; i++ {
		s.qyz[i] = y[i] * z[i]
	}
	for i := 0; i < n; i++ {
		s.qwx[i] = w[i] * x[i]
	}
	for i := 0; i < n; i++ {
		s.qwy[i] = w[i] * y[i]
	}
	for i := 0; i < n; i++ {
		s.qwz[i] = w[i] * z[i]
	}

	// Rotation rows scaled per-row: the upper 3x3 of L.
	l := &s.Local
	for i := 0; i < n; i++ {
		l[0][i] = s.SclX[i] * (1 - 2*(s.qyy[i]+s.qzz[i]))
	}
	for i := 0; i < n; i++ {
		l[1][i] = s.SclX[i] * 2 * (s.qxy[i] + s.qwz[i])
	}
	for i := 0; i < n; i++ {
		l[2][i] = s.SclX[i] * 2 * (s.qxz[i] - s.qwy[i])
	}
	for i := 0; i < n; i++ {
		l[3][i] = s.SclY[i] * 2 * (s.qxy[i] - s.qwz[i])
	}
	for i := 0; i < n; i++ {
		l[4][i] = s.SclY[i] * (1 - 2*(s.qxx[i]+s.qzz[i]))
	}
	for i := 0; i < n; i++ {
		l[5][i] = s.SclY[i] * 2 * (s.qyz[i] + s.qwx[i])
	}
	for i := 0; i < n; i++ {
		l[6][i] = s.SclZ[i] * 2 * (s.qxz[i] + s.qwy[i])
	}
	for i := 0; i < n; i++ {
		l[7][i] = s.SclZ[i] * 2 * (s.qyz[i] - s.qwx[i])
	}
	for i := 0; i < n; i++ {
		l[8][i] = s.SclZ[i] * (1 - 2*(s.qxx[i]+s.qyy[i]))
	}

	// Translation row: position + anchor - anchor through the scaled
	// rotation.
	for i := 0; i < n; i++ {
		l[cellTX][i] = s.PosX[i] + s.AncX[i] -
			(s.AncX[i]*l[0][i] + s.AncY[i]*l[3][i] + s.AncZ[i]*l[6][i])
	}
	for i := 0; i < n; i++ {
		l[cellTY][i] = s.PosY[i] + s.AncY[i] -
			(s.AncX[i]*l[1][i] + s.AncY[i]*l[4][i] + s.AncZ[i]*l[7][i])
	}
	for i := 0; i < n; i++ {
		l[cellTZ][i] = s.PosZ[i] + s.AncZ[i] -
			(s.AncX[i]*l[2][i] + s.AncY[i]*l[5][i] + s.AncZ[i]*l[8][i])
	}
}

// computeWorld multiplies W = L * P over the columns, one pipeline per
// output cell.
func (s *Store) computeWorld() {
	n := s.n
	l, p, w := &s.Local, &s.ParentWorld, &s.World
	for c := 0; c < 3; c++ {
		p0, p1, p2, pt := p[c], p[3+c], p[6+c], p[9+c]
		for r := 0; r < 3; r++ {
			l0, l1, l2, out := l[r*3], l[r*3+1], l[r*3+2], w[r*3+c]
			for i := 0; i < n; i++ {
				out[i] = l0[i]*p0[i] + l1[i]*p1[i] + l2[i]*p2[i]
			}
		}
		l0, l1, l2, out := l[9], l[10], l[11], w[9+c]
		for i := 0; i < n; i++ {
			out[i] = l0[i]*p0[i] + l1[i]*p1[i] + l2[i]*p2[i] + pt[i]
		}
	}
}
