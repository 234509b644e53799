package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/taskdeck/internal/model"
)

// View renders the widget surface. There is always something on screen:
// fresh tasks, stale tasks with their age, or a short error line.
func (m Model) View() string {
	var b strings.Builder

	title := "TaskDeck"
	if m.loading {
		title += "  ⟳"
	}
	b.WriteString(HeaderStyle.Render(title))
	b.WriteString("\n\n")

	if m.state == stateAdd {
		b.WriteString(InputStyle.Render("Add task (enter to create, esc to cancel)\n\n" + m.input.View()))
		b.WriteString("\n")
		return b.String()
	}

	now := time.Now()
	switch {
	case len(m.timeline.Tasks) == 0 && m.timeline.Err != "":
		b.WriteString(ErrorStyle.Render("✗ " + m.timeline.Err))
		b.WriteString("\n")
	case len(m.timeline.Tasks) == 0 && !m.loading:
		b.WriteString(TaskRowStyle.Render("No open tasks. 🎉"))
		b.WriteString("\n")
	default:
		for i, t := range m.timeline.Tasks {
			b.WriteString(m.renderTask(i, t, now))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTask(index int, t model.Task, now time.Time) string {
	dot := lipgloss.NewStyle().Foreground(priorityColor(t.Priority)).Render("●")

	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Local().Format("Jan 2")
		if t.Overdue(now) {
			due = OverdueStyle.Render("⚠ " + due)
		} else {
			due = MutedStyle.Render(due)
		}
	}

	name := t.Name
	if maxLen := m.width - 20; maxLen > 10 {
		name = truncateName(name, maxLen)
	}

	row := fmt.Sprintf("%s %s  %s", dot, name, due)
	if index == m.cursor {
		return TaskRowSelectedStyle.Render("▸ " + row)
	}
	return TaskRowStyle.Render("  " + row)
}

// truncateName shortens a task name to max characters on a rune boundary.
func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func (m Model) renderFooter() string {
	if m.notice != "" {
		return FooterStyle.Render(m.notice)
	}

	parts := []string{"r refresh", "x done", "a add", "q quit"}
	line := strings.Join(parts, " · ")
	if m.timeline.LastUpdated != nil {
		line += " · updated " + m.timeline.LastUpdated.Local().Format("15:04")
	}
	return FooterStyle.Render(line)
}
