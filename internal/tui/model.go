package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/taskdeck/internal/sync"
)

// Refresh cadence mirrors the widget timeline policy: quarter hour after a
// good sync, five minutes after a failed one.
const (
	refreshFresh   = 15 * time.Minute
	refreshRetry   = 5 * time.Minute
	refreshTimeout = 30 * time.Second
)

type uiState int

const (
	stateList uiState = iota
	stateAdd
)

// Model is the widget view: the synchronized task list with refresh, mark
// done and quick add.
type Model struct {
	syncer *sync.Syncer

	state    uiState
	timeline sync.Timeline
	cursor   int
	loading  bool
	notice   string

	input  textinput.Model
	width  int
	height int
}

// NewModel creates the widget model.
func NewModel(syncer *sync.Syncer) Model {
	input := textinput.New()
	input.Placeholder = "New task name..."
	input.CharLimit = 200

	return Model{
		syncer:  syncer,
		state:   stateList,
		loading: true,
		input:   input,
	}
}

// Init starts the first refresh.
func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// Messages

type timelineMsg sync.Timeline

type tickMsg time.Time

type mutationMsg struct {
	action string
	err    error
}

// Commands

func (m Model) refreshCmd() tea.Cmd {
	syncer := m.syncer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return timelineMsg(syncer.Refresh(ctx))
	}
}

func (m Model) markDoneCmd(taskID string) tea.Cmd {
	syncer := m.syncer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return mutationMsg{action: "done", err: syncer.MarkDone(ctx, taskID)}
	}
}

func (m Model) createTaskCmd(name string) tea.Cmd {
	syncer := m.syncer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		_, err := syncer.CreateInDefaultList(ctx, name)
		return mutationMsg{action: "create", err: err}
	}
}

func timelineOf(msg timelineMsg) sync.Timeline {
	return sync.Timeline(msg)
}

func scheduleTick(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
