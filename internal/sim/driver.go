// Package sim orchestrates a drift-chamber run: it pulls the solver
// forward one timestep at a time and hands read-only grid snapshots to
// whatever consumes them (renderer, storage, tests). Production is
// strictly pull-based: nothing is buffered beyond the live grid, and the
// consumer controls pacing.
package sim

import (
	"context"
	"fmt"

	"driftchamber/internal/chamber"
	"driftchamber/internal/solver"
)

// StepError carries the step index and simulation time of a failed solve.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error { return e.Wrapped }

// Driver advances a grid with a solver. Not safe for concurrent use: the
// solver is the sole writer of the grid, and consumers only ever see
// detached snapshots. Restart by constructing a new Driver.
type Driver struct {
	grid   *chamber.Grid
	solver *solver.Solver

	step int
	time float64
	err  error
}

// New returns a Driver owning g for the duration of the run.
func New(g *chamber.Grid, s *solver.Solver) *Driver {
	return &Driver{grid: g, solver: s}
}

// Step returns the number of completed steps.
func (d *Driver) Step() int { return d.step }

// Time returns the simulated time of the last completed step.
func (d *Driver) Time() float64 { return d.time }

// Next runs one solver step to completion and returns the resulting
// snapshot. Once a step fails the driver stays failed.
func (d *Driver) Next() (chamber.Snapshot, error) {
	if d.err != nil {
		return chamber.Snapshot{}, d.err
	}
	if err := d.solver.Step(d.grid); err != nil {
		d.err = &StepError{Step: d.step, Time: d.time, Wrapped: err}
		return chamber.Snapshot{}, d.err
	}
	d.step++
	d.time += d.solver.Params().Dt
	return d.grid.Snapshot(d.step, d.time), nil
}

// Result collects the snapshots of a finite run.
type Result struct {
	Snapshots []chamber.Snapshot
	Times     []float64
	Totals    []float64
	Steps     int
}

// Run pulls exactly n snapshots, in increasing time order. n = 0 yields an
// empty result. Cancelling ctx stops the run with the snapshots taken so
// far and the context's error.
func (d *Driver) Run(ctx context.Context, n int) (*Result, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative step count %d", chamber.ErrInvalidGrid, n)
	}
	res := &Result{
		Snapshots: make([]chamber.Snapshot, 0, n),
		Times:     make([]float64, 0, n),
		Totals:    make([]float64, 0, n),
	}
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}
		snap, err := d.Next()
		if err != nil {
			return res, err
		}
		res.Snapshots = append(res.Snapshots, snap)
		res.Times = append(res.Times, snap.Time)
		res.Totals = append(res.Totals, snap.Total)
		res.Steps++
	}
	return res, nil
}

// RunWithCallback streams up to n snapshots into fn without retaining
// them. fn returning false stops the run early without error.
func (d *Driver) RunWithCallback(ctx context.Context, n int, fn func(chamber.Snapshot) bool) error {
	if n < 0 {
		return fmt.Errorf("%w: negative step count %d", chamber.ErrInvalidGrid, n)
	}
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		snap, err := d.Next()
		if err != nil {
			return err
		}
		if !fn(snap) {
			return nil
		}
	}
	return nil
}
