// Package chamber holds the 2-D charge-density grid for the drift chamber
// gas volume and the initial ionization deposit along a muon track.
package chamber

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidGrid indicates non-positive grid dimensions, spacing, or
// otherwise unusable geometry parameters.
var ErrInvalidGrid = errors.New("chamber: invalid grid")

// Grid is the charge density q[i][j] over the chamber cross-section,
// stored row-major: i indexes z (height, Nz rows), j indexes y (width,
// Ny columns). The solver is the sole writer while a run is in progress.
type Grid struct {
	Nz, Ny  int
	Spacing float64 // cell size, cm (square cells)

	cells []float64
}

// New builds a zero grid covering height x width cm at the given spacing,
// truncating partial cells like the reference geometry does.
func New(height, width, spacing float64) (*Grid, error) {
	if spacing <= 0 {
		return nil, fmt.Errorf("%w: spacing %v", ErrInvalidGrid, spacing)
	}
	return NewDims(int(height/spacing), int(width/spacing), spacing)
}

// NewDims builds a zero grid with explicit cell counts.
func NewDims(nz, ny int, spacing float64) (*Grid, error) {
	if nz <= 0 || ny <= 0 || spacing <= 0 {
		return nil, fmt.Errorf("%w: %dx%d cells, spacing %v", ErrInvalidGrid, nz, ny, spacing)
	}
	return &Grid{
		Nz:      nz,
		Ny:      ny,
		Spacing: spacing,
		cells:   make([]float64, nz*ny),
	}, nil
}

// Height is the physical z extent in cm.
func (g *Grid) Height() float64 { return float64(g.Nz) * g.Spacing }

// Width is the physical y extent in cm.
func (g *Grid) Width() float64 { return float64(g.Ny) * g.Spacing }

func (g *Grid) index(i, j int) int { return i*g.Ny + j }

// At returns the charge density in cell (i, j).
func (g *Grid) At(i, j int) float64 { return g.cells[g.index(i, j)] }

// Set assigns the charge density in cell (i, j).
func (g *Grid) Set(i, j int, q float64) { g.cells[g.index(i, j)] = q }

// Cells exposes the flattened charge values. Callers other than the solver
// must treat the slice as read-only.
func (g *Grid) Cells() []float64 { return g.cells }

// Total is the summed charge density over all cells.
func (g *Grid) Total() float64 { return floats.Sum(g.cells) }

// Reset zeroes every cell.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}

// Snapshot is a read-only copy of the grid at a given step, safe to hand
// to a renderer while the run continues.
type Snapshot struct {
	Step    int
	Time    float64
	Nz, Ny  int
	Spacing float64
	Cells   []float64
	Total   float64
}

// At returns the charge density in cell (i, j) of the snapshot.
func (s Snapshot) At(i, j int) float64 { return s.Cells[i*s.Ny+j] }

// Snapshot copies the current state.
func (g *Grid) Snapshot(step int, time float64) Snapshot {
	cells := make([]float64, len(g.cells))
	copy(cells, g.cells)
	return Snapshot{
		Step:    step,
		Time:    time,
		Nz:      g.Nz,
		Ny:      g.Ny,
		Spacing: g.Spacing,
		Cells:   cells,
		Total:   g.Total(),
	}
}
