package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"driftchamber/internal/chamber"
)

// maxCols and maxRows bound the rendered heatmap; larger grids are
// downsampled by taking the densest cell per block so thin ionization
// tracks stay visible.
const (
	maxCols = 60
	maxRows = 26
)

// colorRamp runs cold to hot over three decades of charge density.
var colorRamp = []lipgloss.Color{
	"17", "18", "19", "20", "26", "32", "38", "44", "50", "220", "208", "202", "196",
}

var emptyCellStyle = lipgloss.NewStyle().Background(lipgloss.Color("234"))

// renderHeatmap draws the snapshot as coloured cells, z up.
func renderHeatmap(snap chamber.Snapshot, peak float64) string {
	if snap.Nz == 0 || snap.Ny == 0 {
		return ""
	}
	strideZ := (snap.Nz + maxRows - 1) / maxRows
	strideY := (snap.Ny + maxCols - 1) / maxCols
	if peak <= 0 {
		peak = 1
	}

	var b strings.Builder
	for top := snap.Nz - strideZ; top >= -strideZ+1; top -= strideZ {
		for left := 0; left < snap.Ny; left += strideY {
			q := blockMax(snap, top, left, strideZ, strideY)
			b.WriteString(cellStyle(q, peak).Render("  "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func blockMax(snap chamber.Snapshot, i0, j0, sz, sy int) float64 {
	q := 0.0
	for i := i0; i < i0+sz; i++ {
		if i < 0 || i >= snap.Nz {
			continue
		}
		for j := j0; j < j0+sy && j < snap.Ny; j++ {
			q = math.Max(q, snap.At(i, j))
		}
	}
	return q
}

// cellStyle maps q onto the ramp with a log scale: densities spread over
// orders of magnitude, and a linear map would wash out the diffusing tail.
func cellStyle(q, peak float64) lipgloss.Style {
	if q <= 0 {
		return emptyCellStyle
	}
	frac := 1 + math.Log10(q/peak)/3 // bottom of the ramp 3 decades down
	if frac < 0 {
		frac = 0
	}
	idx := int(frac * float64(len(colorRamp)-1))
	if idx >= len(colorRamp) {
		idx = len(colorRamp) - 1
	}
	return lipgloss.NewStyle().Background(colorRamp[idx])
}
