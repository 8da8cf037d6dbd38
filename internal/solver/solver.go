// Package solver advances the chamber's charge-density grid through time
// with an implicit finite-difference scheme for the drift-diffusion PDE
// ∂q/∂t = D∇²q − (1/μ)E∇q. Each step solves the sparse system M·q' = q.
package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"driftchamber/internal/chamber"
)

// solveTolerance is the relative residual at which the iterative solve is
// considered converged.
const solveTolerance = 1e-12

// Parameters are the physical constants of one run. Immutable per run;
// change them through Solver.SetParameters so the cached matrix is rebuilt.
type Parameters struct {
	Diffusivity float64 // D
	Field       float64 // E
	Mobility    float64 // μ
	Dt          float64 // timestep
	Spacing     float64 // Δx, must match the grid's

	// DampingMargin is the physical depth of the boundary strip zeroed
	// after each solve. Zero disables damping.
	DampingMargin float64
}

// Validate reports unusable geometry or physics parameters.
func (p Parameters) Validate() error {
	if p.Diffusivity <= 0 {
		return fmt.Errorf("%w: diffusivity %v", chamber.ErrInvalidGrid, p.Diffusivity)
	}
	if p.Mobility <= 0 {
		return fmt.Errorf("%w: mobility %v", chamber.ErrInvalidGrid, p.Mobility)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("%w: timestep %v", chamber.ErrInvalidGrid, p.Dt)
	}
	if p.Spacing <= 0 {
		return fmt.Errorf("%w: spacing %v", chamber.ErrInvalidGrid, p.Spacing)
	}
	if p.Field < 0 || p.DampingMargin < 0 {
		return fmt.Errorf("%w: field %v, damping margin %v", chamber.ErrInvalidGrid, p.Field, p.DampingMargin)
	}
	return nil
}

// Alpha is the diffusion coefficient a = D·Δt/Δx².
func (p Parameters) Alpha() float64 {
	return p.Diffusivity * p.Dt / (p.Spacing * p.Spacing)
}

// Beta is the drift coefficient b = Δt·E/(2μΔx).
func (p Parameters) Beta() float64 {
	return p.Dt * p.Field / (2 * p.Mobility * p.Spacing)
}

// Solver owns the cached stencil matrix and the scratch vectors of the
// iterative solve. It is the sole writer of a grid during a run and is not
// safe for concurrent use.
type Solver struct {
	params   Parameters
	boundary BoundaryPolicy

	// mat is assembled lazily and reused across steps: with constant
	// parameters only the right-hand side changes.
	mat          *csrMatrix
	matNz, matNy int

	x, r, rhat, p, v, t []float64
}

// New returns a Solver for the given parameters. A nil boundary policy
// defaults to DampedPeriodic with the parameters' margin.
func New(params Parameters, boundary BoundaryPolicy) (*Solver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if boundary == nil {
		boundary = DampedPeriodic{Margin: params.DampingMargin}
	}
	return &Solver{params: params, boundary: boundary}, nil
}

// Params returns the current run parameters.
func (s *Solver) Params() Parameters { return s.params }

// SetParameters swaps in new physics parameters and invalidates the
// cached matrix.
func (s *Solver) SetParameters(params Parameters) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.params = params
	s.mat = nil
	if dp, ok := s.boundary.(DampedPeriodic); ok && dp.Margin != params.DampingMargin {
		s.boundary = DampedPeriodic{Margin: params.DampingMargin}
	}
	return nil
}

// SetBoundary replaces the boundary policy.
func (s *Solver) SetBoundary(boundary BoundaryPolicy) { s.boundary = boundary }

// Step advances g by one timestep in place and returns g's error state.
// The solve couples every cell to its four periodic neighbours, then the
// boundary policy applies its correction.
func (s *Solver) Step(g *chamber.Grid) error {
	if g == nil || g.Nz <= 0 || g.Ny <= 0 {
		return fmt.Errorf("%w: nil or empty grid", chamber.ErrInvalidGrid)
	}
	if math.Abs(g.Spacing-s.params.Spacing) > 1e-12 {
		return fmt.Errorf("%w: grid spacing %v does not match solver spacing %v",
			chamber.ErrInvalidGrid, g.Spacing, s.params.Spacing)
	}

	if s.mat == nil || s.matNz != g.Nz || s.matNy != g.Ny {
		mat, err := newStencilMatrix(g.Nz, g.Ny, s.params.Alpha(), s.params.Beta())
		if err != nil {
			return err
		}
		s.mat, s.matNz, s.matNy = mat, g.Nz, g.Ny
	}

	if err := s.solve(s.mat, g.Cells()); err != nil {
		return err
	}
	s.boundary.Apply(g)
	return nil
}

func (s *Solver) ensureScratch(n int) {
	if len(s.x) != n {
		s.x = make([]float64, n)
		s.r = make([]float64, n)
		s.rhat = make([]float64, n)
		s.p = make([]float64, n)
		s.v = make([]float64, n)
		s.t = make([]float64, n)
	}
}

// solve runs BiCGSTAB on M·x = q and writes the solution back into q. The
// stencil matrix is nonsymmetric because of the drift term, so conjugate
// gradients do not apply; BiCGSTAB handles the general case and converges
// in a handful of iterations on this strictly diagonally dominant system.
func (s *Solver) solve(m *csrMatrix, q []float64) error {
	n := m.n
	s.ensureScratch(n)

	bnorm := floats.Norm(q, 2)
	if bnorm == 0 {
		return nil
	}
	tol := solveTolerance * bnorm

	x := s.x
	copy(x, q) // M is close to identity for small a, b
	m.mulVec(s.t, x)
	r := s.r
	floats.SubTo(r, q, s.t)
	copy(s.rhat, r)

	rho, alpha, omega := 1.0, 1.0, 1.0
	for i := range s.p {
		s.p[i] = 0
		s.v[i] = 0
	}

	maxIter := 4*n + 100
	for iter := 0; iter < maxIter; iter++ {
		if floats.Norm(r, 2) <= tol {
			copy(q, x)
			return nil
		}
		rhoNext := floats.Dot(s.rhat, r)
		if rhoNext == 0 {
			return fmt.Errorf("%w: bicgstab breakdown (rho=0)", ErrSingularSystem)
		}
		if iter == 0 {
			copy(s.p, r)
		} else {
			beta := (rhoNext / rho) * (alpha / omega)
			floats.AddScaled(s.p, -omega, s.v)
			floats.Scale(beta, s.p)
			floats.Add(s.p, r)
		}
		m.mulVec(s.v, s.p)
		den := floats.Dot(s.rhat, s.v)
		if den == 0 {
			return fmt.Errorf("%w: bicgstab breakdown (rhat·v=0)", ErrSingularSystem)
		}
		alpha = rhoNext / den

		// r becomes the intermediate residual of the half step.
		floats.AddScaled(r, -alpha, s.v)
		if floats.Norm(r, 2) <= tol {
			floats.AddScaled(x, alpha, s.p)
			copy(q, x)
			return nil
		}

		m.mulVec(s.t, r)
		tt := floats.Dot(s.t, s.t)
		if tt == 0 {
			return fmt.Errorf("%w: bicgstab breakdown (t·t=0)", ErrSingularSystem)
		}
		omega = floats.Dot(s.t, r) / tt
		if omega == 0 {
			return fmt.Errorf("%w: bicgstab stagnation (omega=0)", ErrSingularSystem)
		}

		floats.AddScaled(x, alpha, s.p)
		floats.AddScaled(x, omega, r)
		floats.AddScaled(r, -omega, s.t)
		rho = rhoNext
	}
	return fmt.Errorf("%w: no convergence in %d iterations", ErrSingularSystem, maxIter)
}
