package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pgdyn/internal/experiment"
)

const (
	graphWidth      = 60
	graphHeight     = 12
	sparkWidth      = 24
	historyCapacity = 2000
)

type TickMsg time.Time

// LiveModel advances a comparison one output interval per tick and shows
// the latest row.
type LiveModel struct {
	cfg     experiment.Config
	entries []experiment.Entry
	comp    *experiment.Comparison
	frame   time.Duration

	row      experiment.Row
	times    []float64
	history  map[string][]float64
	columns  []string
	running  bool
	logScale bool
	err      error
}

// NewLiveModel builds the comparison eagerly so construction errors are
// reported before the program starts.
func NewLiveModel(cfg experiment.Config, entries []experiment.Entry, frame time.Duration) (*LiveModel, error) {
	if frame <= 0 {
		frame = time.Second / 30
	}
	m := &LiveModel{
		cfg:      cfg,
		entries:  entries,
		frame:    frame,
		running:  true,
		logScale: true,
	}
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *LiveModel) reset() error {
	comp, err := experiment.NewComparison(m.cfg, m.entries)
	if err != nil {
		return err
	}
	m.comp = comp
	m.columns = comp.Columns()
	m.row = experiment.Row{}
	m.times = m.times[:0]
	m.history = make(map[string][]float64)
	m.err = nil
	return nil
}

func (m *LiveModel) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *LiveModel) Init() tea.Cmd {
	return m.tick()
}

func (m *LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "l":
			m.logScale = !m.logScale
		}
	case TickMsg:
		if m.running && m.err == nil && !m.comp.Done() {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the grid once and records the new row.
func (m *LiveModel) step() {
	row, err := m.comp.Advance()
	if err != nil {
		m.err = err
		return
	}
	m.row = row
	if len(m.times) >= historyCapacity {
		m.times = m.times[1:]
		for k := range m.history {
			m.history[k] = m.history[k][1:]
		}
	}
	m.times = append(m.times, row.Time)

	j := 0
	for _, s := range row.States {
		for _, v := range s {
			col := m.columns[j]
			m.history[col] = append(m.history[col], v)
			j++
		}
	}
}

// Populations returns the recorded history of every population column.
func (m *LiveModel) Populations() []Series {
	out := make([]Series, 0)
	for _, e := range m.entries {
		for _, i := range e.Variant.Populations() {
			col := e.Variant.Name + "." + e.Variant.Labels[i]
			out = append(out, Series{Name: col, Times: m.times, Values: m.history[col]})
		}
	}
	return out
}

func (m *LiveModel) Elapsed() float64 { return m.comp.Elapsed() }

func (m *LiveModel) Err() error { return m.err }

func (m *LiveModel) View() string {
	var s strings.Builder

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.err != nil:
		status = StatusFailed.Render("FAILED")
	case m.comp.Done():
		status = StatusPaused.Render("DONE")
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}

	s.WriteString(HeaderStyle.Render("PUBLIC GOOD DYNAMICS") + "\n")
	s.WriteString(fmt.Sprintf("%s  t=%6.2f / %.2f  %s\n\n",
		status, m.comp.Elapsed(), m.cfg.MaxTime, ProgressBar(m.comp.Elapsed()/m.cfg.MaxTime, 20)))

	if len(m.times) > 1 {
		caption := "populations"
		if m.logScale {
			caption = "log10 populations"
		}
		s.WriteString(PlotASCII(m.Populations(), graphWidth, graphHeight, caption, m.logScale) + "\n\n")
	}

	panels := make([]string, 0, len(m.entries))
	for i, e := range m.entries {
		var p strings.Builder
		p.WriteString(Title.Render(e.Variant.Name) + "\n")
		for k, label := range e.Variant.Labels {
			val := "-"
			if i < len(m.row.States) {
				val = fmt.Sprintf("%.6e", m.row.States[i][k])
			}
			p.WriteString(MetricLabel.Render(label) + MetricValue.Render(val) + "\n")
		}
		sub := e.Variant.Name + "." + e.Variant.Labels[e.Variant.Substrate]
		p.WriteString(Sparkline(m.history[sub], sparkWidth))
		panels = append(panels, Panel.Render(p.String()))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...) + "\n")

	if len(m.row.States) > 0 {
		s.WriteString(Subtle.Render(m.row.String()) + "\n")
	}
	if m.err != nil {
		s.WriteString(StatusFailed.Render(m.err.Error()) + "\n")
	}

	s.WriteString(KeyHint.Render("\nSP:Pause R:Restart L:Log scale Q:Quit"))
	return s.String()
}

// RunLive starts the live view on the terminal.
func RunLive(m *LiveModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
