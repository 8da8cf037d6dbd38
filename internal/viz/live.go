// Package viz renders drift-chamber runs in the terminal. It is a thin
// consumer of the engine: it pulls snapshots from a sim.Driver at frame
// rate and never touches the live grid.
package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"driftchamber/internal/chamber"
	"driftchamber/internal/sim"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type TickMsg time.Time

// Model animates a chamber run.
type Model struct {
	driver    *sim.Driver
	snap      chamber.Snapshot
	muonInfo  string
	frameRate int
	peak      float64 // initial deposit maximum, fixes the colour scale
	totals    []float64
	running   bool
	err       error
}

// NewModel wraps a driver whose grid already carries the initial
// ionization deposit.
func NewModel(driver *sim.Driver, initial chamber.Snapshot, muonInfo string, frameRate int) Model {
	peak := 0.0
	for _, q := range initial.Cells {
		if q > peak {
			peak = q
		}
	}
	if frameRate <= 0 {
		frameRate = 30
	}
	return Model{
		driver:    driver,
		snap:      initial,
		muonInfo:  muonInfo,
		frameRate: frameRate,
		peak:      peak,
		totals:    append(make([]float64, 0, historyCapacity), initial.Total),
		running:   true,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.err = nil
		}
		return m, nil

	case TickMsg:
		if m.running && m.err == nil {
			snap, err := m.driver.Next()
			if err != nil {
				m.err = err
				m.running = false
			} else {
				m.snap = snap
				if len(m.totals) == historyCapacity {
					m.totals = m.totals[1:]
				}
				m.totals = append(m.totals, snap.Total)
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	s := headerStyle.Render("drift chamber") + "\n"
	s += labelStyle.Render("muon   ") + valueStyle.Render(m.muonInfo) + "\n\n"
	s += renderHeatmap(m.snap, m.peak)
	s += fmt.Sprintf("\n%s %s    %s %s    %s %s\n",
		labelStyle.Render("step"), valueStyle.Render(fmt.Sprintf("%d", m.snap.Step)),
		labelStyle.Render("t"), valueStyle.Render(fmt.Sprintf("%.2e s", m.snap.Time)),
		labelStyle.Render("charge"), valueStyle.Render(fmt.Sprintf("%.4g", m.snap.Total)))

	if len(m.totals) > 1 {
		s += graphStyle.Render(asciigraph.Plot(m.totals,
			asciigraph.Height(6), asciigraph.Width(60), asciigraph.Caption("total charge")))
	}
	if m.err != nil {
		s += "\n" + errStyle.Render(fmt.Sprintf("run halted: %v", m.err))
	}
	s += helpStyle.Render("\nspace pause · q quit")
	return s
}

// Run starts the live view and blocks until the user quits.
func Run(driver *sim.Driver, initial chamber.Snapshot, muonInfo string, frameRate int) error {
	p := tea.NewProgram(NewModel(driver, initial, muonInfo, frameRate))
	_, err := p.Run()
	return err
}
