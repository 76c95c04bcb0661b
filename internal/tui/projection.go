package tui

import (
	"fmt"

	"velofit/internal/analysis"
	"velofit/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const projectionWeeks = 4

// ProjectionModel is the plan projection screen model
type ProjectionModel struct {
	queryService *service.QueryService
	options      []service.ProjectionOption
	cursor       int
	projection   []analysis.ProjectedDay
	loading      bool
	err          error
}

// NewProjectionModel creates a new projection model
func NewProjectionModel(qs *service.QueryService) ProjectionModel {
	return ProjectionModel{
		queryService: qs,
		loading:      true,
	}
}

// Init initializes the projection screen
func (m ProjectionModel) Init() tea.Cmd {
	return m.loadOptions
}

type projectionOptionsMsg struct {
	options []service.ProjectionOption
	err     error
}

type projectionResultMsg struct {
	projection []analysis.ProjectedDay
	err        error
}

func (m ProjectionModel) loadOptions() tea.Msg {
	weekAvg, err := m.queryService.WeeklyStrainAverage()
	if err != nil {
		return projectionOptionsMsg{err: err}
	}
	return projectionOptionsMsg{options: service.ProjectionOptions(weekAvg)}
}

// project simulates the selected weekly plan repeated for the preview window
func (m ProjectionModel) project() tea.Msg {
	opt := m.options[m.cursor]

	plan := make([]analysis.PlannedWorkout, 0, len(opt.Week)*projectionWeeks)
	for i := 0; i < projectionWeeks; i++ {
		plan = append(plan, opt.Week...)
	}

	projection, err := m.queryService.ProjectPlan(plan, len(plan))
	return projectionResultMsg{projection: projection, err: err}
}

// Update handles messages
func (m ProjectionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectionOptionsMsg:
		m.loading = false
		m.err = msg.err
		m.options = msg.options
		m.cursor = 0
		m.projection = nil
		if m.err == nil && len(m.options) > 0 {
			return m, m.project
		}

	case projectionResultMsg:
		m.err = msg.err
		m.projection = msg.projection

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				return m, m.project
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
				return m, m.project
			}
		case "r":
			m.loading = true
			return m, m.loadOptions
		}
	}
	return m, nil
}

// View renders the projection screen
func (m ProjectionModel) View() string {
	if m.loading {
		return "\n  Loading projections..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.options) == 0 {
		return "\n  No projections available."
	}

	var sections []string

	sections = append(sections, m.renderOptions())
	if len(m.projection) > 0 {
		sections = append(sections, m.renderProjection())
	}

	help := statusStyle.Render("\n  j/k: choose plan  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ProjectionModel) renderOptions() string {
	title := cardTitleStyle.Render("Plan Projection")

	lines := []string{title}
	for i, opt := range m.options {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-14s %s", cursor, opt.Name, opt.Description)
		if i == m.cursor {
			lines = append(lines, tableSelectedStyle.Render(row))
		} else {
			lines = append(lines, tableRowStyle.Render(row))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderProjection shows the simulated end of each projected week
func (m ProjectionModel) renderProjection() string {
	title := cardTitleStyle.Render(fmt.Sprintf("Next %d weeks on this plan", projectionWeeks))

	header := tableHeaderStyle.Render(fmt.Sprintf("%-8s %8s %8s %8s %8s  %-12s",
		"Week", "Strain", "Load", "Recov", "Form", "Status"))

	lines := []string{title, header}
	for w := 0; w < projectionWeeks; w++ {
		start := w * 7
		end := start + 7
		if end > len(m.projection) {
			end = len(m.projection)
		}
		if start >= end {
			break
		}

		var weekStrain float64
		for _, d := range m.projection[start:end] {
			weekStrain += d.Strain.Total
		}

		last := m.projection[end-1]
		tl := last.State.TotalTL()
		rl := last.State.TotalRL()

		row := fmt.Sprintf(" %-8s %8.0f %8.1f %8.1f %+8.1f  %s",
			fmt.Sprintf("Week %d", w+1),
			weekStrain, tl, rl, tl-rl,
			StatusStyle(last.Status).Render(last.Status.String()))
		lines = append(lines, row)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Render(content)
}
