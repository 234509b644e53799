package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Priority levels as ClickUp reports them
const (
	PriorityUrgent = 1
	PriorityHigh   = 2
	PriorityNormal = 3
	PriorityLow    = 4
)

// Status is a task status as reported by ClickUp. Workspaces can define
// arbitrary statuses, so unrecognized values are carried through verbatim
// rather than collapsed into a catch-all.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in progress"
	StatusClosed     Status = "closed"
)

// ParseStatus normalizes the three well-known statuses and keeps anything
// else exactly as the API sent it.
func ParseStatus(raw string) Status {
	switch strings.ToLower(raw) {
	case "open":
		return StatusOpen
	case "in progress":
		return StatusInProgress
	case "closed":
		return StatusClosed
	}
	return Status(raw)
}

// Known reports whether the status is one of the well-known values.
func (s Status) Known() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusClosed
}

// Task is a single ClickUp task.
type Task struct {
	ID          string
	Name        string
	Description string
	DueDate     *time.Time
	Status      Status
	Priority    *int
	Assignees   []Assignee
}

// URL returns the task's web URL.
func (t Task) URL() string {
	return "https://app.clickup.com/t/" + t.ID
}

// Overdue reports whether the task's due date is strictly in the past.
// Tasks without a due date are never overdue.
func (t Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now)
}

// taskJSON is the wire shape shared by the ClickUp API and the task cache.
type taskJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	DueDate     json.RawMessage `json:"due_date,omitempty"`
	Status      statusJSON      `json:"status"`
	Priority    *priorityJSON   `json:"priority,omitempty"`
	Assignees   []Assignee      `json:"assignees,omitempty"`
}

type statusJSON struct {
	Status string `json:"status"`
}

type priorityJSON struct {
	Priority *int `json:"priority"`
}

// UnmarshalJSON decodes the ClickUp task shape. Due dates arrive as epoch
// milliseconds, either as a JSON number or a quoted string.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.ID = raw.ID
	t.Name = raw.Name
	t.Description = raw.Description
	t.Status = ParseStatus(raw.Status.Status)
	t.Assignees = raw.Assignees

	t.Priority = nil
	if raw.Priority != nil && raw.Priority.Priority != nil {
		p := *raw.Priority.Priority
		t.Priority = &p
	}

	due, err := parseDueDate(raw.DueDate)
	if err != nil {
		return fmt.Errorf("task %s: %w", raw.ID, err)
	}
	t.DueDate = due
	return nil
}

// MarshalJSON encodes the same wire shape, with due dates as millisecond
// numbers. Unrecognized statuses round-trip through their raw string.
func (t Task) MarshalJSON() ([]byte, error) {
	raw := taskJSON{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Status:      statusJSON{Status: string(t.Status)},
		Assignees:   t.Assignees,
	}
	if t.Priority != nil {
		p := *t.Priority
		raw.Priority = &priorityJSON{Priority: &p}
	}
	if t.DueDate != nil {
		ms := t.DueDate.UnixMilli()
		raw.DueDate = json.RawMessage(strconv.FormatInt(ms, 10))
	}
	return json.Marshal(raw)
}

func parseDueDate(raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	s := string(raw)
	if strings.HasPrefix(s, `"`) {
		var err error
		if s, err = strconv.Unquote(s); err != nil {
			return nil, fmt.Errorf("invalid due_date %s", raw)
		}
		if s == "" {
			return nil, nil
		}
	}

	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid due_date %q", s)
	}
	d := time.UnixMilli(ms).UTC()
	return &d, nil
}
