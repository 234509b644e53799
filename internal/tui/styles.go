package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Priority colors, same scale ClickUp uses
	PriorityUrgent = lipgloss.Color("#FF6B6B") // P1
	PriorityHigh   = lipgloss.Color("#FFB347") // P2
	PriorityNormal = lipgloss.Color("#FFE66D") // P3
	PriorityLow    = lipgloss.Color("#6C757D") // P4 / none

	Overdue   = lipgloss.Color("#FF6B6B")
	Primary   = lipgloss.Color("#4ECDC4")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	TaskRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TaskRowSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Bold(true).
				Foreground(Primary)

	OverdueStyle = lipgloss.NewStyle().
			Foreground(Overdue)

	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Overdue).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	InputStyle = lipgloss.NewStyle().
			Padding(1, 1)
)

func priorityColor(p *int) lipgloss.Color {
	if p == nil {
		return PriorityLow
	}
	switch *p {
	case 1:
		return PriorityUrgent
	case 2:
		return PriorityHigh
	case 3:
		return PriorityNormal
	default:
		return PriorityLow
	}
}
