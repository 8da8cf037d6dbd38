package solver

import "driftchamber/internal/chamber"

// BoundaryPolicy corrects the grid after each implicit solve. The periodic
// stencil lets charge leaving one edge reappear at the opposite edge;
// policies exist to mitigate that artifact, and isolating them here lets a
// proper absorbing boundary replace the damping trick without touching the
// solve itself.
type BoundaryPolicy interface {
	Apply(g *chamber.Grid)
}

// DampedPeriodic zeroes every cell within Margin (physical units) of each
// edge after the solve. The hard zero is a deliberate, lossy approximation
// carried over from the reference model, not a clean boundary condition;
// charge that drifts into the margin is simply discarded. A zero margin
// leaves the wrap-around fully charge-conserving.
type DampedPeriodic struct {
	Margin float64
}

func (d DampedPeriodic) Apply(g *chamber.Grid) {
	if d.Margin <= 0 {
		return
	}
	m := int(d.Margin / g.Spacing)
	if m <= 0 {
		return
	}
	for i := 0; i < g.Nz; i++ {
		for j := 0; j < g.Ny; j++ {
			if i < m || i >= g.Nz-m || j < m || j >= g.Ny-m {
				g.Set(i, j, 0)
			}
		}
	}
}
