package tui

import (
	"fmt"

	"velofit/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	data         *service.DashboardData
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService) DashboardModel {
	return DashboardModel{
		queryService: qs,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.GetDashboardData()
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{data: data}
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil {
		return "\n  No data available. Press 's' to sync with Strava."
	}

	var sections []string

	// Top row: the two load models side by side
	loadCard := m.renderLoadCard()
	fitnessCard := m.renderFitnessCard()
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, loadCard, "  ", fitnessCard)
	sections = append(sections, topRow)

	weekCard := m.renderWeekCard()
	sections = append(sections, weekCard)

	activities := m.renderRecentActivities()
	sections = append(sections, activities)

	help := statusStyle.Render("Press 'r' to refresh, 's' to sync, '3' for trends, '4' for projections")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderLoadCard shows the three energy systems with their training load,
// recovery load, and form, plus the overall status.
func (m DashboardModel) renderLoadCard() string {
	title := cardTitleStyle.Render("Training Load")

	state := m.data.LoadState

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s %7s %7s %7s", "System", "Load", "Recov", "Form"))
	systems := []struct {
		name string
		tl   float64
		rl   float64
		form float64
	}{
		{"Low", state.Low.TL, state.Low.RL, m.data.FormLow},
		{"High", state.High.TL, state.High.RL, m.data.FormHigh},
		{"Peak", state.Peak.TL, state.Peak.RL, m.data.FormPeak},
	}

	lines := []string{header}
	for _, s := range systems {
		style := trendUpStyle
		if s.form < 0 {
			style = trendDownStyle
		}
		lines = append(lines, fmt.Sprintf(" %-10s %7.1f %7.1f %s",
			s.name, s.tl, s.rl, style.Render(fmt.Sprintf("%7.1f", s.form))))
	}

	lines = append(lines, "")
	lines = append(lines, RenderMetric("Overall form", fmt.Sprintf("%.1f", m.data.OverallForm), ""))

	statusLine := StatusStyle(m.data.Status).Render(m.data.Status.String())
	lines = append(lines, RenderMetric("Status", statusLine, ""))
	lines = append(lines, "")

	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)
	lines = append(lines, mutedStyle.Render(m.data.Status.Description()))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderFitnessCard() string {
	title := cardTitleStyle.Render("Fitness")

	lines := []string{
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.0f", m.data.CTL), ""),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.0f", m.data.ATL), ""),
		RenderMetric("Form (TSB)", fmt.Sprintf("%+.0f", m.data.TSB), ""),
	}

	if m.data.Signature != nil {
		lines = append(lines, "")
		lines = append(lines, RenderMetric("FTP", fmt.Sprintf("%dW", m.data.Signature.FTP), ""))
		lines = append(lines, RenderMetric("Peak power", fmt.Sprintf("%.0fW", m.data.Signature.PeakPower), ""))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(34).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderWeekCard() string {
	title := cardTitleStyle.Render("This Week")

	lines := []string{
		RenderMetric("Weekly strain avg", fmt.Sprintf("%.0f", m.data.WeekStrainAvg), ""),
		RenderMetric("Rides", fmt.Sprintf("%d", m.data.WeekRideCount), ""),
		RenderMetric("Time", formatDuration(m.data.WeekTime), ""),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderRecentActivities() string {
	title := cardTitleStyle.Render("Recent Activities")

	if len(m.data.RecentActivities) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No activities yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-24s  %9s  %6s  %5s",
		"Date", "Name", "Distance", "Time", "NP"))

	rows := []string{header}
	for i, a := range m.data.RecentActivities {
		if i >= 5 {
			break
		}

		row := tableRowStyle.Render(fmt.Sprintf("%-10s  %-24s  %9s  %6s  %5s",
			a.StartDateLocal.Format("Jan 02"),
			truncateName(a.Name, 24),
			formatKm(a.Distance),
			formatDuration(a.MovingTime),
			formatWatts(a.WeightedAverageWatts),
		))
		rows = append(rows, row)
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}
