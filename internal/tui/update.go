package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update routes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case timelineMsg:
		m.timeline = timelineOf(msg)
		m.loading = false
		if m.cursor >= len(m.timeline.Tasks) {
			m.cursor = max(0, len(m.timeline.Tasks)-1)
		}
		next := refreshFresh
		if m.timeline.Failed() {
			next = refreshRetry
		}
		return m, scheduleTick(next)

	case tickMsg:
		m.loading = true
		return m, m.refreshCmd()

	case mutationMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, nil
		}
		// Mutation landed; re-sync so the cache catches up.
		m.notice = ""
		m.loading = true
		return m, m.refreshCmd()

	case tea.KeyMsg:
		if m.state == stateAdd {
			return m.updateAdd(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.timeline.Tasks)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Refresh):
		m.loading = true
		m.notice = ""
		return m, m.refreshCmd()

	case key.Matches(msg, keys.Done):
		if m.cursor < len(m.timeline.Tasks) {
			task := m.timeline.Tasks[m.cursor]
			m.notice = "Closing \"" + task.Name + "\"..."
			return m, m.markDoneCmd(task.ID)
		}

	case key.Matches(msg, keys.Add):
		m.state = stateAdd
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case key.Matches(msg, keys.Open):
		if m.cursor < len(m.timeline.Tasks) {
			m.notice = m.timeline.Tasks[m.cursor].URL()
		}
	}

	return m, nil
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.state = stateList
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		name := strings.TrimSpace(m.input.Value())
		m.state = stateList
		m.input.Blur()
		if name == "" {
			return m, nil
		}
		m.notice = "Creating \"" + name + "\"..."
		return m, m.createTaskCmd(name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
