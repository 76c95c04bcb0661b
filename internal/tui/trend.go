package tui

import (
	"fmt"

	"velofit/internal/service"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Trend chart modes
type trendMode int

const (
	trendModeLoad trendMode = iota
	trendModeFitness
	trendModeStrain
)

// TrendModel is the trend chart screen model
type TrendModel struct {
	queryService *service.QueryService
	points       []service.TrendPoint
	mode         trendMode
	days         int
	viewport     viewport.Model
	ready        bool
	loading      bool
	err          error
}

// NewTrendModel creates a new trend model
func NewTrendModel(qs *service.QueryService) TrendModel {
	return TrendModel{
		queryService: qs,
		days:         90,
		loading:      true,
	}
}

// Init initializes the trend screen
func (m TrendModel) Init() tea.Cmd {
	return m.loadTrend
}

type trendLoadedMsg struct {
	points []service.TrendPoint
	err    error
}

func (m TrendModel) loadTrend() tea.Msg {
	points, err := m.queryService.GetTrend(m.days)
	return trendLoadedMsg{points: points, err: err}
}

// Update handles messages
func (m TrendModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case trendLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.points = msg.points
		m.refreshContent()

	case tea.WindowSizeMsg:
		// Leave room for the app chrome and the help line
		height := msg.Height - 8
		if height < 5 {
			height = 5
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refreshContent()

	case tea.KeyMsg:
		switch msg.String() {
		case "l":
			m.mode = trendModeLoad
			m.refreshContent()
		case "f":
			m.mode = trendModeFitness
			m.refreshContent()
		case "d":
			m.mode = trendModeStrain
			m.refreshContent()
		case "tab":
			m.mode = (m.mode + 1) % 3
			m.refreshContent()
		case "-":
			if m.days > 30 {
				m.days -= 30
				m.loading = true
				return m, m.loadTrend
			}
		case "+", "=":
			if m.days < 360 {
				m.days += 30
				m.loading = true
				return m, m.loadTrend
			}
		case "r":
			m.loading = true
			return m, m.loadTrend
		}
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *TrendModel) refreshContent() {
	if !m.ready || len(m.points) < 2 {
		return
	}
	content := lipgloss.JoinVertical(lipgloss.Left, m.renderChart(), m.renderLatest())
	m.viewport.SetContent(content)
}

// View renders the trend screen
func (m TrendModel) View() string {
	if m.loading {
		return "\n  Loading trend..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.points) < 2 {
		return "\n  Not enough history to chart. Press 's' to sync with Strava."
	}

	help := statusStyle.Render("\n  l: load  f: fitness  d: daily strain  +/-: window  r: refresh")

	if !m.ready {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderChart(), m.renderLatest(), help)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), help)
}

func (m TrendModel) renderChart() string {
	var title string
	var series [][]float64
	var legend string

	switch m.mode {
	case trendModeLoad:
		title = fmt.Sprintf("Training vs Recovery Load - last %d days", m.days)
		tl := make([]float64, len(m.points))
		rl := make([]float64, len(m.points))
		for i, p := range m.points {
			tl[i] = p.TotalTL
			rl[i] = p.TotalRL
		}
		series = [][]float64{tl, rl}
		legend = "green: training load  red: recovery load"

	case trendModeFitness:
		title = fmt.Sprintf("CTL vs ATL - last %d days", m.days)
		ctl := make([]float64, len(m.points))
		atl := make([]float64, len(m.points))
		for i, p := range m.points {
			ctl[i] = p.CTL
			atl[i] = p.ATL
		}
		series = [][]float64{ctl, atl}
		legend = "green: fitness (CTL)  red: fatigue (ATL)"

	case trendModeStrain:
		title = fmt.Sprintf("Daily Strain - last %d days", m.days)
		strain := make([]float64, len(m.points))
		for i, p := range m.points {
			strain[i] = p.Strain
		}
		series = [][]float64{strain}
	}

	var graph string
	if len(series) == 1 {
		graph = asciigraph.Plot(series[0],
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Precision(0),
		)
	} else {
		graph = asciigraph.PlotMany(series,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Precision(0),
			asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		)
	}

	lines := []string{cardTitleStyle.Render(title), graph}
	if legend != "" {
		lines = append(lines, "", statusStyle.Render(legend))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m TrendModel) renderLatest() string {
	latest := m.points[len(m.points)-1]

	line := fmt.Sprintf("  %s   TL %.1f   RL %.1f   Form %+.1f   CTL %.0f   ATL %.0f   TSB %+.0f",
		latest.Date, latest.TotalTL, latest.TotalRL, latest.Form,
		latest.CTL, latest.ATL, latest.TSB)

	return statusStyle.Render(line)
}
