package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/existflow/taskdeck/internal/model"
)

func tp(t time.Time) *time.Time { return &t }

func TestSortTasksOverdueFirst(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "future", DueDate: tp(now.Add(24 * time.Hour))},
		{ID: "none"},
		{ID: "overdue", DueDate: tp(now.Add(-24 * time.Hour))},
	}

	SortTasks(tasks, now)

	assert.Equal(t, "overdue", tasks[0].ID)
	assert.Equal(t, "future", tasks[1].ID)
	assert.Equal(t, "none", tasks[2].ID)
}

func TestSortTasksDueDateAscending(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "c", DueDate: tp(now.Add(72 * time.Hour))},
		{ID: "a", DueDate: tp(now.Add(1 * time.Hour))},
		{ID: "b", DueDate: tp(now.Add(48 * time.Hour))},
	}

	SortTasks(tasks, now)

	assert.Equal(t, []string{"a", "b", "c"}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestSortTasksOverdueOrderedAmongThemselves(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "yesterday", DueDate: tp(now.Add(-24 * time.Hour))},
		{ID: "lastweek", DueDate: tp(now.Add(-7 * 24 * time.Hour))},
	}

	SortTasks(tasks, now)

	assert.Equal(t, "lastweek", tasks[0].ID)
	assert.Equal(t, "yesterday", tasks[1].ID)
}

func TestSortTasksNoDueDateKeepsFetchOrder(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "first"},
		{ID: "second"},
		{ID: "third"},
	}

	SortTasks(tasks, now)

	assert.Equal(t, []string{"first", "second", "third"},
		[]string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestSortTasksIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "none"},
		{ID: "overdue", DueDate: tp(now.Add(-time.Hour))},
		{ID: "soon", DueDate: tp(now.Add(time.Hour))},
	}

	SortTasks(tasks, now)
	first := []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}
	SortTasks(tasks, now)
	second := []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}

	assert.Equal(t, first, second)
}
