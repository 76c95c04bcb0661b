package tui

import (
	"fmt"

	"velofit/internal/analysis"
	"velofit/internal/service"
	"velofit/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ActivitiesModel is the activities list screen model
type ActivitiesModel struct {
	queryService *service.QueryService
	activities   []store.Activity
	cursor       int
	offset       int
	total        int
	pageSize     int
	detail       *service.ActivityDetail
	loading      bool
	err          error
}

// NewActivitiesModel creates a new activities model
func NewActivitiesModel(qs *service.QueryService) ActivitiesModel {
	return ActivitiesModel{
		queryService: qs,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the activities screen
func (m ActivitiesModel) Init() tea.Cmd {
	return m.loadPage
}

type activitiesLoadedMsg struct {
	activities []store.Activity
	total      int
	err        error
}

type activityDetailMsg struct {
	detail *service.ActivityDetail
	err    error
}

func (m ActivitiesModel) loadPage() tea.Msg {
	activities, total, err := m.queryService.ListActivities(m.pageSize, m.offset)
	if err != nil {
		return activitiesLoadedMsg{err: err}
	}
	return activitiesLoadedMsg{activities: activities, total: total}
}

// Update handles messages
func (m ActivitiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activitiesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.activities = msg.activities
		m.total = msg.total

	case activityDetailMsg:
		m.err = msg.err
		m.detail = msg.detail

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if m.cursor < len(m.activities) {
				id := m.activities[m.cursor].ID
				return m, func() tea.Msg {
					detail, err := m.queryService.GetActivityDetail(id)
					return activityDetailMsg{detail: detail, err: err}
				}
			}
		case "esc":
			m.detail = nil
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				// Go to previous page
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.activities)-1 {
				m.cursor++
			} else if m.offset+len(m.activities) < m.total {
				// Go to next page
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset -= m.pageSize
				if m.offset < 0 {
					m.offset = 0
				}
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		}
	}
	return m, nil
}

// View renders the activities list
func (m ActivitiesModel) View() string {
	if m.loading {
		return "\n  Loading activities..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.activities) == 0 {
		return "\n  No activities found. Press 's' to sync with Strava."
	}

	var sections []string

	// Title with pagination info
	startNum := m.offset + 1
	endNum := m.offset + len(m.activities)
	title := cardTitleStyle.Render(fmt.Sprintf("Activities (%d-%d of %d)", startNum, endNum, m.total))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-24s  %-12s  %9s  %6s  %5s  %5s",
		"Date", "Name", "Type", "Distance", "Time", "NP", "HR"))
	sections = append(sections, header)

	for i, a := range m.activities {
		hr := "-"
		if a.AverageHeartrate != nil && *a.AverageHeartrate > 0 {
			hr = fmt.Sprintf("%.0f", *a.AverageHeartrate)
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-10s  %-24s  %-12s  %9s  %6s  %5s  %5s",
			cursor,
			a.StartDateLocal.Format("Jan 02"),
			truncateName(a.Name, 24),
			a.Type,
			formatKm(a.Distance),
			formatDuration(a.MovingTime),
			formatWatts(a.WeightedAverageWatts),
			hr,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	if m.detail != nil {
		sections = append(sections, m.renderDetail())
	}

	help := statusStyle.Render("\n  enter: power zones  esc: close  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDetail shows the selected activity's time-in-zone distribution
func (m ActivitiesModel) renderDetail() string {
	d := m.detail
	title := cardTitleStyle.Render(truncateName(d.Activity.Name, 40))

	lines := []string{title}

	if d.ZoneFractions == nil {
		reason := "No power stream stored for this activity."
		if d.FTP <= 0 {
			reason = "Set an FTP to see power zones."
		}
		lines = append(lines, statusStyle.Render(reason))
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	lines = append(lines, statusStyle.Render(fmt.Sprintf("Time in zone at %dW FTP", d.FTP)))
	for i, zone := range analysis.PowerZones {
		frac := d.ZoneFractions[i]
		bar := RenderProgressBar(frac, 24)
		lines = append(lines, fmt.Sprintf(" %-10s %s %4.0f%%", zone.Name, bar, frac*100))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
