package chamber

import (
	"fmt"
	"math"

	"driftchamber/internal/montecarlo"
	"driftchamber/internal/muon"
)

// DefaultIonizationRate is the mean number of electrons liberated per cm
// of muon track in the chamber gas.
const DefaultIonizationRate = 94.0

// Ionizer deposits the initial ionization track of an incident muon onto
// a grid. The energy loss over each cell crossing is drawn from a Moyal
// distribution, the standard approximation for straggling of high-energy
// radiation in matter.
type Ionizer struct {
	sampler *montecarlo.Sampler

	// Rate is the mean ionization yield in electrons per cm.
	Rate float64
}

// NewIonizer returns an Ionizer drawing straggling variates from sampler.
func NewIonizer(sampler *montecarlo.Sampler) *Ionizer {
	return &Ionizer{sampler: sampler, Rate: DefaultIonizationRate}
}

// Deposit walks m's track cell by cell from its entry point and writes the
// liberated charge density into g. The walk stops when the track leaves
// the chamber. Returns ErrMissedChamber when the muon never enters.
func (iz *Ionizer) Deposit(g *Grid, m *muon.Muon) error {
	yEntry, zEntry, err := m.EntryPoint(muon.Chamber{Width: g.Width(), Height: g.Height()})
	if err != nil {
		return err
	}

	// Track position in grid units.
	y := yEntry / g.Spacing
	z := zEntry / g.Spacing
	dy := math.Sin(m.Zenith) * math.Sin(m.Azimuth)
	dz := math.Cos(m.Zenith) // negative: the track heads down
	right := dy > 0

	// One crossing per iteration; the cap only guards against a stalled
	// walk from a degenerate direction.
	for n := 0; n < 4*(g.Nz+g.Ny); n++ {
		zNext := math.Ceil(z - 1)
		t := (zNext - z) / dz
		if dy != 0 {
			var yNext float64
			if right {
				yNext = math.Floor(y + 1)
			} else {
				yNext = math.Ceil(y - 1)
			}
			t = math.Min(t, (yNext-y)/dy)
		}
		if !(t > 0) {
			return nil
		}
		y += t * dy
		z += t * dz
		if z < 0 || y < 0 || y > float64(g.Ny) {
			return nil
		}

		// Segment length back in cm; electron count is quantised, and
		// downward fluctuations below zero deposit nothing.
		d := t * g.Spacing
		loc := iz.Rate * d
		ne, err := iz.sampler.Sample(montecarlo.Moyal(loc, math.Sqrt(loc)))
		if err != nil {
			return fmt.Errorf("ionization straggling: %w", err)
		}
		electrons := math.Floor(ne)
		if electrons < 0 {
			electrons = 0
		}

		j := int(math.Floor(y))
		if right {
			j = int(math.Ceil(y - 1))
		}
		i := int(math.Floor(z))
		if i >= 0 && i < g.Nz && j >= 0 && j < g.Ny {
			g.Set(i, j, electrons/(g.Spacing*g.Spacing))
		}
	}
	return nil
}
