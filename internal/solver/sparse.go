package solver

import (
	"fmt"
	"math"
	"sort"
)

// csrMatrix is a square sparse matrix in compressed sparse row form. The
// stencil operator has at most five entries per row, so CSR keeps storage
// and multiply cost linear in the cell count.
type csrMatrix struct {
	n      int
	rowPtr []int
	colIdx []int
	values []float64
}

// mulVec computes dst = M * x.
func (m *csrMatrix) mulVec(dst, x []float64) {
	for i := 0; i < m.n; i++ {
		sum := 0.0
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			sum += m.values[k] * x[m.colIdx[k]]
		}
		dst[i] = sum
	}
}

func mod(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// newStencilMatrix assembles the implicit drift-diffusion operator for an
// nz x ny grid flattened row-major: per cell, 1+4a+b on the diagonal, -a
// on the i±1 and j+1 neighbours and -(a+b) on the j-1 neighbour, indices
// wrapped modulo the grid size (periodic boundary). Every column sums to
// exactly 1, which is what makes the periodic solve charge-conserving.
func newStencilMatrix(nz, ny int, a, b float64) (*csrMatrix, error) {
	diag := 1 + 4*a + b
	if diag == 0 || math.IsNaN(diag) || math.IsInf(diag, 0) {
		return nil, fmt.Errorf("%w: degenerate stencil, 1+4a+b = %v", ErrSingularSystem, diag)
	}

	n := nz * ny
	m := &csrMatrix{
		n:      n,
		rowPtr: make([]int, n+1),
		colIdx: make([]int, 0, 5*n),
		values: make([]float64, 0, 5*n),
	}

	type entry struct {
		col int
		val float64
	}
	row := make([]entry, 0, 5)
	for i := 0; i < nz; i++ {
		for j := 0; j < ny; j++ {
			row = row[:0]
			row = append(row,
				entry{i*ny + j, diag},
				entry{i*ny + mod(j-1, ny), -(a + b)},
				entry{i*ny + mod(j+1, ny), -a},
				entry{mod(i-1, nz)*ny + j, -a},
				entry{mod(i+1, nz)*ny + j, -a},
			)
			sort.Slice(row, func(p, q int) bool { return row[p].col < row[q].col })
			// Tiny grids alias neighbours onto the same column; merge them.
			for _, e := range row {
				if k := len(m.colIdx); k > m.rowPtr[i*ny+j] && m.colIdx[k-1] == e.col {
					m.values[k-1] += e.val
					continue
				}
				m.colIdx = append(m.colIdx, e.col)
				m.values = append(m.values, e.val)
			}
			m.rowPtr[i*ny+j+1] = len(m.colIdx)
		}
	}
	return m, nil
}
