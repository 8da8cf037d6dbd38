package solver

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"driftchamber/internal/chamber"
)

func testParams() Parameters {
	return Parameters{
		Diffusivity: 0.01,
		Field:       1.0,
		Mobility:    1.0,
		Dt:          0.1,
		Spacing:     0.1,
	}
}

func newTestSolver(t *testing.T, p Parameters) *Solver {
	t.Helper()
	s, err := New(p, nil)
	if err != nil {
		t.Fatalf("new solver: %v", err)
	}
	return s
}

func TestParametersValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Parameters)
	}{
		{"zero diffusivity", func(p *Parameters) { p.Diffusivity = 0 }},
		{"negative mobility", func(p *Parameters) { p.Mobility = -1 }},
		{"zero timestep", func(p *Parameters) { p.Dt = 0 }},
		{"zero spacing", func(p *Parameters) { p.Spacing = 0 }},
		{"negative field", func(p *Parameters) { p.Field = -1 }},
		{"negative margin", func(p *Parameters) { p.DampingMargin = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			if _, err := New(p, nil); !errors.Is(err, chamber.ErrInvalidGrid) {
				t.Fatalf("got %v, want ErrInvalidGrid", err)
			}
		})
	}
}

func TestCoefficients(t *testing.T) {
	p := testParams()
	if a := p.Alpha(); math.Abs(a-0.1) > 1e-15 {
		t.Errorf("alpha %v, want 0.1", a)
	}
	if b := p.Beta(); math.Abs(b-0.5) > 1e-15 {
		t.Errorf("beta %v, want 0.5", b)
	}
}

func TestStencilConservesColumnSums(t *testing.T) {
	m, err := newStencilMatrix(7, 9, 0.3, 0.2)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	x := make([]float64, m.n)
	rng := rand.New(rand.NewSource(1))
	sum := 0.0
	for i := range x {
		x[i] = rng.Float64()
		sum += x[i]
	}
	dst := make([]float64, m.n)
	m.mulVec(dst, x)
	got := 0.0
	for _, v := range dst {
		got += v
	}
	if math.Abs(got-sum) > 1e-12*sum {
		t.Errorf("sum(Mx) = %v, want %v: columns do not sum to 1", got, sum)
	}
}

func TestStepChargeConservationPeriodic(t *testing.T) {
	g, _ := chamber.NewDims(12, 16, 0.1)
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < g.Nz; i++ {
		for j := 0; j < g.Ny; j++ {
			g.Set(i, j, rng.Float64())
		}
	}
	before := g.Total()

	s := newTestSolver(t, testParams()) // margin 0: pure periodic wrap
	if err := s.Step(g); err != nil {
		t.Fatalf("step: %v", err)
	}
	if after := g.Total(); math.Abs(after-before) > 1e-9*before {
		t.Errorf("total charge %v after step, want %v (periodic wrap conserves charge)", after, before)
	}
}

func TestStepBoundaryDampingZeroesMargin(t *testing.T) {
	p := testParams()
	p.DampingMargin = 0.2 // two cells at 0.1 spacing
	g, _ := chamber.NewDims(10, 10, 0.1)
	g.Set(1, 5, 1.0) // inside the bottom margin

	s := newTestSolver(t, p)
	if err := s.Step(g); err != nil {
		t.Fatalf("step: %v", err)
	}
	if got := g.At(1, 5); got != 0 {
		t.Errorf("cell in damping margin holds %v after step, want exactly 0", got)
	}
	for j := 0; j < g.Ny; j++ {
		if g.At(0, j) != 0 || g.At(g.Nz-1, j) != 0 {
			t.Fatalf("edge row not zeroed at j=%d", j)
		}
	}
}

// The hard-zero margin is a documented lossy approximation: damping
// deliberately destroys the charge it clips, it does not relocate it.
func TestStepBoundaryDampingIsLossy(t *testing.T) {
	p := testParams()
	p.DampingMargin = 0.2
	g, _ := chamber.NewDims(10, 10, 0.1)
	g.Set(1, 5, 1.0)

	s := newTestSolver(t, p)
	if err := s.Step(g); err != nil {
		t.Fatalf("step: %v", err)
	}
	if total := g.Total(); total >= 1.0 {
		t.Errorf("total %v after damped step, want < 1.0", total)
	}
}

func TestStepDeterministic(t *testing.T) {
	run := func() []float64 {
		g, _ := chamber.NewDims(10, 10, 0.1)
		g.Set(5, 5, 1.0)
		g.Set(2, 7, 0.25)
		s := newTestSolver(t, testParams())
		if err := s.Step(g); err != nil {
			t.Fatalf("step: %v", err)
		}
		out := make([]float64, len(g.Cells()))
		copy(out, g.Cells())
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cell %d differs between identical runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestStepSpreadsCenterCharge(t *testing.T) {
	g, _ := chamber.NewDims(10, 10, 0.1)
	g.Set(5, 5, 1.0)

	s := newTestSolver(t, testParams())
	if err := s.Step(g); err != nil {
		t.Fatalf("step: %v", err)
	}

	center := g.At(5, 5)
	if center >= 1.0 || center <= 0 {
		t.Errorf("center charge %v after step, want in (0, 1)", center)
	}
	for _, n := range [][2]int{{4, 5}, {6, 5}, {5, 4}, {5, 6}} {
		if q := g.At(n[0], n[1]); q <= 0 {
			t.Errorf("neighbour (%d,%d) has charge %v, want > 0", n[0], n[1], q)
		}
	}

	// The solution must satisfy the stencil relation at the center:
	// (1+4a+b)q'[c] - a(up+down+right) - (a+b)left = 1.
	a, b := testParams().Alpha(), testParams().Beta()
	lhs := (1+4*a+b)*g.At(5, 5) -
		a*(g.At(4, 5)+g.At(6, 5)+g.At(5, 6)) -
		(a+b)*g.At(5, 4)
	if math.Abs(lhs-1.0) > 1e-9 {
		t.Errorf("stencil relation at center gives %v, want 1", lhs)
	}
}

func TestStepSpacingMismatch(t *testing.T) {
	g, _ := chamber.NewDims(10, 10, 0.5)
	s := newTestSolver(t, testParams())
	if err := s.Step(g); !errors.Is(err, chamber.ErrInvalidGrid) {
		t.Fatalf("got %v, want ErrInvalidGrid", err)
	}
}

func TestSetParametersRebuildsMatrix(t *testing.T) {
	g, _ := chamber.NewDims(8, 8, 0.1)
	g.Set(4, 4, 1.0)
	s := newTestSolver(t, testParams())
	if err := s.Step(g); err != nil {
		t.Fatalf("step: %v", err)
	}

	p := testParams()
	p.Diffusivity = 0.05
	if err := s.SetParameters(p); err != nil {
		t.Fatalf("set parameters: %v", err)
	}

	// Same initial grid stepped under the new parameters must match a
	// fresh solver built with them.
	g1, _ := chamber.NewDims(8, 8, 0.1)
	g1.Set(4, 4, 1.0)
	if err := s.Step(g1); err != nil {
		t.Fatalf("step after reconfigure: %v", err)
	}

	g2, _ := chamber.NewDims(8, 8, 0.1)
	g2.Set(4, 4, 1.0)
	fresh := newTestSolver(t, p)
	if err := fresh.Step(g2); err != nil {
		t.Fatalf("fresh step: %v", err)
	}
	for i := range g1.Cells() {
		if g1.Cells()[i] != g2.Cells()[i] {
			t.Fatalf("reconfigured solver diverges from fresh solver at cell %d", i)
		}
	}
}

func TestZeroGridStaysZero(t *testing.T) {
	g, _ := chamber.NewDims(6, 6, 0.1)
	s := newTestSolver(t, testParams())
	if err := s.Step(g); err != nil {
		t.Fatalf("step: %v", err)
	}
	if g.Total() != 0 {
		t.Errorf("zero grid gained charge %v", g.Total())
	}
}
