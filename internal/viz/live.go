// Package viz renders a live terminal view of an integration in
// progress: one accepted step per animation tick, with component
// traces and controller statistics alongside.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/odeflow/internal/operator"
	"github.com/san-kum/odeflow/internal/stepper"
	"github.com/san-kum/odeflow/internal/vec"
)

const (
	graphWidth      = 64
	graphHeight     = 12
	historyCapacity = 600
)

type TickMsg time.Time

// Model drives one integrator from t0 toward tEnd, one accepted step
// per tick.
type Model struct {
	op   operator.Operator
	opts stepper.Options
	s    *stepper.Stepper

	y0     vec.Vector
	t0     float64
	tEnd   float64
	name   string
	yDim   int
	lambda int

	running bool
	done    bool
	failErr error

	trace    [][]float64
	stepHist []float64
	selected int
}

func NewModel(op operator.Operator, opts stepper.Options, y0 vec.Vector, t0, tEnd float64, name string) (*Model, error) {
	opts.Interpolate = false
	s, err := stepper.New(op, opts)
	if err != nil {
		return nil, err
	}
	s.SetInitialValue(y0, t0)

	m := &Model{
		op:       op,
		opts:     opts,
		s:        s,
		y0:       y0.Clone(),
		t0:       t0,
		tEnd:     tEnd,
		name:     name,
		yDim:     len(y0),
		running:  true,
		trace:    make([][]float64, len(y0)),
		stepHist: make([]float64, 0, historyCapacity),
	}
	for i := range m.trace {
		m.trace[i] = make([]float64, 0, historyCapacity)
	}
	m.record()
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.done {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % m.yDim
		}
	case TickMsg:
		if m.running && !m.done {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// step advances the integrator by one accepted step and records the
// new state.
func (m *Model) step() {
	t, _, err := m.s.Integrate(m.tEnd, true)
	if err != nil {
		m.failErr = err
		m.running = false
		m.done = true
		return
	}
	m.record()
	if t >= m.tEnd {
		m.done = true
		m.running = false
	}
}

func (m *Model) record() {
	y := m.s.Y()
	for i := range m.trace {
		m.trace[i] = append(m.trace[i], y[i])
		if len(m.trace[i]) > historyCapacity {
			m.trace[i] = m.trace[i][1:]
		}
	}

	if dt := m.s.Stats().LastStep; dt > 0 {
		m.stepHist = append(m.stepHist, dt)
		if len(m.stepHist) > historyCapacity {
			m.stepHist = m.stepHist[1:]
		}
	}
}

func (m *Model) reset() {
	m.s.SetInitialValue(m.y0, m.t0)
	for i := range m.trace {
		m.trace[i] = m.trace[i][:0]
	}
	m.stepHist = m.stepHist[:0]
	m.failErr = nil
	m.done = false
	m.running = true
	m.record()
}

func (m *Model) View() string {
	var left strings.Builder
	left.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	if len(m.trace[m.selected]) > 1 {
		chart := asciigraph.Plot(m.trace[m.selected],
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption(fmt.Sprintf("y[%d]", m.selected)))
		left.WriteString(graphStyle.Render(chart))
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(m.opts.Method) + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	stats := m.s.Stats()
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.4f / %.4f", m.s.T(), m.tEnd)) + "\n")
	s.WriteString(labelStyle.Render("Step size") + valueStyle.Render(fmt.Sprintf("%.3e", stats.LastStep)) + "\n")
	s.WriteString(labelStyle.Render("Accepted") + valueStyle.Render(fmt.Sprintf("%d", stats.Accepted)) + "\n")
	s.WriteString(labelStyle.Render("Rejected") + valueStyle.Render(fmt.Sprintf("%d", stats.Rejected)) + "\n")
	s.WriteString(labelStyle.Render("Evaluations") + valueStyle.Render(fmt.Sprintf("%d", stats.Evaluations)) + "\n")

	if len(m.stepHist) > 1 {
		s.WriteString("\n" + labelStyle.Render("dt history") + "\n")
		s.WriteString(valueStyle.Render(Sparkline(m.stepHist, 30)) + "\n")
	}

	s.WriteString("\nCOMPONENTS\n")
	y := m.s.Y()
	for i := 0; i < m.yDim; i++ {
		line := fmt.Sprintf("y[%d] = %+.6f", i, y[i])
		if i == m.selected {
			s.WriteString(activeStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("\nSP:Pause R:Reset Tab:Component Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, left.String(), statsStyle.Render(s.String()))
}

func (m *Model) statusLine() string {
	switch {
	case m.failErr != nil:
		return statusFailed.Render("FAILED: " + m.failErr.Error())
	case m.done:
		return statusRunning.Render("DONE")
	case m.running:
		return statusRunning.Render("RUNNING")
	default:
		return statusPaused.Render("PAUSED")
	}
}
