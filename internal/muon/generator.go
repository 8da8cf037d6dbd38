package muon

import (
	"fmt"
	"math"

	"driftchamber/internal/montecarlo"
)

// Energy spectrum and charge-sign parameters for sea-level cosmic muons.
const (
	energyLogMean  = 6.55 // log-normal mu, GeV
	energyLogSigma = 1.8  // log-normal sigma

	// PositiveChargeProbability is the sea-level muon charge ratio
	// expressed as P(charge = +1).
	PositiveChargeProbability = 0.53
)

// maxIncidentRetries bounds GenerateIncident's regenerate-on-miss loop.
const maxIncidentRetries = 1000

// Plane is the horizontal generation plane muons originate from, centred
// above the chamber.
type Plane struct {
	Width  float64 // x extent, cm
	Length float64 // y extent, cm
	Height float64 // cm above the chamber floor
}

// DefaultPlane spans well beyond the chamber footprint so oblique tracks
// still have a chance to enter from the sides.
func DefaultPlane() Plane {
	return Plane{Width: 100, Length: 80, Height: 60}
}

// Generator produces incident muons by composing independent variates:
// zenith by accept/reject on cos², everything else through inverse CDFs.
type Generator struct {
	sampler *montecarlo.Sampler
	plane   Plane
	chamber Chamber

	zenith  montecarlo.General
	azimuth montecarlo.Invertible
	energy  montecarlo.Invertible
	xpos    montecarlo.Invertible
	ypos    montecarlo.Invertible
}

// NewGenerator returns a Generator dropping muons from plane onto ch.
func NewGenerator(sampler *montecarlo.Sampler, plane Plane, ch Chamber) (*Generator, error) {
	if plane.Height < ch.Height {
		return nil, fmt.Errorf("%w: plane at %v cm, chamber top at %v cm", ErrPlaneTooLow, plane.Height, ch.Height)
	}
	// The y interval is centred on the chamber so tracks from either side
	// are equally likely.
	yOff := (ch.Width - plane.Length) / 2
	return &Generator{
		sampler: sampler,
		plane:   plane,
		chamber: ch,
		zenith:  montecarlo.CosSquared(),
		azimuth: montecarlo.Uniform(0, 2*math.Pi),
		energy:  montecarlo.LogNormal(energyLogMean, energyLogSigma),
		xpos:    montecarlo.Uniform(-plane.Width/2, plane.Width/2),
		ypos:    montecarlo.Uniform(yOff, yOff+plane.Length),
	}, nil
}

// SetZenithBound overrides the rejection bound on the cos² zenith
// density. The density's true maximum is 1; a looser bound only wastes
// candidates, a tighter one biases the tails.
func (g *Generator) SetZenithBound(bound float64) {
	if bound > 0 {
		g.zenith.Bound = bound
	}
}

// Generate produces one muon. The sampler calls are independent, so the
// order of draws affects only which uniforms are consumed, not the
// resulting distribution.
func (g *Generator) Generate() (*Muon, error) {
	zen, err := g.sampler.SampleGeneral(g.zenith)
	if err != nil {
		return nil, fmt.Errorf("muon zenith: %w", err)
	}
	azi, err := g.sampler.Sample(g.azimuth)
	if err != nil {
		return nil, fmt.Errorf("muon azimuth: %w", err)
	}
	energy, err := g.sampler.Sample(g.energy)
	if err != nil {
		return nil, fmt.Errorf("muon energy: %w", err)
	}
	x, err := g.sampler.Sample(g.xpos)
	if err != nil {
		return nil, fmt.Errorf("muon x: %w", err)
	}
	y, err := g.sampler.Sample(g.ypos)
	if err != nil {
		return nil, fmt.Errorf("muon y: %w", err)
	}
	charge := -1
	if g.sampler.Uniform() < PositiveChargeProbability {
		charge = 1
	}
	return &Muon{
		Energy:  energy,
		Charge:  charge,
		Zenith:  zen,
		Azimuth: azi,
		X:       x,
		Y:       y,
		Height:  g.plane.Height,
	}, nil
}

// GenerateIncident generates muons until one actually crosses the chamber,
// returning it along with its entry point. Sampling failures propagate
// immediately; only ErrMissedChamber triggers a retry.
func (g *Generator) GenerateIncident() (m *Muon, y, z float64, err error) {
	for i := 0; i < maxIncidentRetries; i++ {
		m, err = g.Generate()
		if err != nil {
			return nil, 0, 0, err
		}
		y, z, err = m.EntryPoint(g.chamber)
		if err == nil {
			return m, y, z, nil
		}
	}
	return nil, 0, 0, fmt.Errorf("%w: no incident muon in %d tries", ErrMissedChamber, maxIncidentRetries)
}
