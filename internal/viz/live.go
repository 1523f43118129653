package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/tgisim/internal/metrics"
	"github.com/san-kum/tgisim/internal/pkpd"
	"github.com/san-kum/tgisim/internal/sim"
)

const (
	canvasWidth     = 24
	canvasHeight    = 12
	historyCapacity = 4096
	maxSpeed        = 512
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// LiveModel plays a run back while it is being integrated. Every tick
// advances the run by speed windows.
type LiveModel struct {
	name      string
	run       *sim.Run
	interval  time.Duration
	speed     int
	running   bool
	canvas    *Canvas
	initial   float64
	diameters []float64
	exposures []float64
	err       error
}

func NewLiveModel(name string, run *sim.Run, fps, speed int) LiveModel {
	if fps <= 0 {
		fps = 30
	}
	if speed <= 0 {
		speed = 1
	}
	first := run.Last()
	return LiveModel{
		name:      name,
		run:       run,
		interval:  time.Second / time.Duration(fps),
		speed:     speed,
		running:   true,
		canvas:    NewCanvas(canvasWidth, canvasHeight),
		initial:   first.Diameter,
		diameters: append(make([]float64, 0, historyCapacity), first.Diameter),
		exposures: append(make([]float64, 0, historyCapacity), first.Exposure),
	}
}

func (m LiveModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd {
	return m.tick()
}

// Err reports the failure that stopped the run, if any.
func (m LiveModel) Err() error { return m.err }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *LiveModel) advance() {
	for i := 0; i < m.speed && !m.run.Done(); i++ {
		if err := m.run.Step(); err != nil {
			m.err = err
			return
		}
		s := m.run.Last()
		m.diameters = append(m.diameters, s.Diameter)
		m.exposures = append(m.exposures, s.Exposure)
	}
}

func (m *LiveModel) draw() {
	m.canvas.Clear()
	cx, cy := canvasWidth, canvasHeight*2
	rmax := float64(min(cx, cy) - 2)

	d := m.run.Last().Diameter
	scale := max(m.initial, d)
	if scale <= 0 {
		return
	}
	m.canvas.DrawCircle(cx, cy, int(rmax*m.initial/scale))
	m.canvas.FillDisc(cx, cy, int(rmax*d/scale))
}

func (m LiveModel) status() string {
	switch {
	case m.err != nil:
		return Warning.Render("FAILED")
	case m.run.Done():
		return StatusDone.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m LiveModel) View() string {
	m.draw()
	s := m.run.Last()

	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	b.WriteString(fmt.Sprintf("%s  x%d\n", m.status(), m.speed))
	b.WriteString(ProgressBar(float64(m.run.Index())/float64(m.run.Steps()), 40) + "\n\n")

	if len(m.diameters) > 1 {
		chart := asciigraph.Plot(m.diameters, asciigraph.Height(5), asciigraph.Width(40), asciigraph.Caption("diameter [cm]"))
		b.WriteString(graphStyle.Render(chart) + "\n")
		chart = asciigraph.Plot(m.exposures, asciigraph.Height(5), asciigraph.Width(40), asciigraph.Caption("exposure [mg/L]"))
		b.WriteString(graphStyle.Render(chart) + "\n")
	}

	b.WriteString(MetricLabel.Render("day") + MetricValue.Render(fmt.Sprintf("%.1f", s.Time)) + "\n")
	b.WriteString(MetricLabel.Render("treatment") + Badge(s.Active) + "\n")
	b.WriteString(MetricLabel.Render("diameter") + MetricValue.Render(fmt.Sprintf("%.4f cm", s.Diameter)) + "\n")
	b.WriteString(MetricLabel.Render("volume") + MetricValue.Render(fmt.Sprintf("%.4g cm³", pkpd.SphereVolume(s.Diameter))) + "\n")
	exposure := MetricValue.Render(fmt.Sprintf("%.4g mg/L", s.Exposure))
	if s.Exposure > metrics.DefaultToxicThreshold {
		exposure += " " + Warning.Render("TOXIC")
	}
	b.WriteString(MetricLabel.Render("exposure") + exposure + "\n")
	b.WriteString(MetricLabel.Render("time on treatment") + MetricValue.Render(fmt.Sprintf("%.1f d", s.Clock)) + "\n")
	if m.err != nil {
		b.WriteString("\n" + Warning.Render(m.err.Error()) + "\n")
	}
	b.WriteString(helpStyle.Render(KeyHint.Render("SP:Pause +/-:Speed Q:Quit")))

	canvasView := canvasStyle.Render(m.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(b.String()))
}
