// Package muon generates cosmic-ray muons and intersects their tracks with
// the drift chamber cross-section. Coordinates are in cm relative to an
// origin at the bottom-left corner of the chamber; y runs across the
// chamber, z runs up.
package muon

import (
	"fmt"
	"math"
)

// Chamber is the 2-D cross-section a muon may traverse.
type Chamber struct {
	Width  float64 // y extent, cm
	Height float64 // z extent, cm
}

// Muon is one incident cosmic-ray muon. Immutable once generated.
type Muon struct {
	Energy  float64 // GeV
	Charge  int     // +1 or -1
	Zenith  float64 // radians in [π/2, 3π/2), cos²-distributed
	Azimuth float64 // radians in [0, 2π), uniform
	X       float64 // cm on the generation plane, into the page
	Y       float64 // cm on the generation plane, across the chamber
	Height  float64 // cm, height of the generation plane
}

func (m *Muon) String() string {
	return fmt.Sprintf("cosmic-ray muon: %.0f GeV, charge %+de, zenith %.2f rad, azimuth %.2f rad, y %.2f cm",
		m.Energy, m.Charge, m.Zenith, m.Azimuth, m.Y)
}

// slopeY is the horizontal y-velocity per unit path parameter.
func (m *Muon) slopeY() float64 {
	return math.Sin(m.Zenith) * math.Sin(m.Azimuth)
}

// EntryPoint returns the (y, z) coordinates where the muon's straight-line
// path first crosses into ch. Candidate crossings are the top edge and both
// side edges; a crossing counts only if it lies on the chamber boundary.
// Returns ErrMissedChamber when no candidate qualifies.
func (m *Muon) EntryPoint(ch Chamber) (y, z float64, err error) {
	dy := m.slopeY()
	dz := math.Cos(m.Zenith)
	candidates := []float64{
		(ch.Height - m.Height) / dz,
		-m.Y / dy,
		(ch.Width - m.Y) / dy,
	}
	t0 := math.Inf(1)
	hit := false
	for _, t := range candidates {
		zc := m.Height + t*dz
		yc := m.Y + t*dy
		if zc < 0 || zc > ch.Height || yc < 0 || yc > ch.Width {
			continue
		}
		if t < t0 {
			t0 = t
			hit = true
		}
	}
	if !hit {
		return 0, 0, fmt.Errorf("%w: %v", ErrMissedChamber, m)
	}
	return m.Y + t0*dy, m.Height + t0*dz, nil
}
