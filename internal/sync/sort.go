package sync

import (
	"sort"
	"time"

	"github.com/existflow/taskdeck/internal/model"
)

// SortTasks orders tasks in place: overdue before everything else, then by
// due date ascending; a task without a due date sorts after any task that
// has one. Ties (two tasks without due dates) keep their fetch order — the
// sort is stable, so the comparator reports them as equal.
func SortTasks(tasks []model.Task, now time.Time) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return taskLess(tasks[i], tasks[j], now)
	})
}

func taskLess(a, b model.Task, now time.Time) bool {
	aOverdue, bOverdue := a.Overdue(now), b.Overdue(now)
	if aOverdue != bOverdue {
		return aOverdue
	}

	switch {
	case a.DueDate != nil && b.DueDate != nil:
		return a.DueDate.Before(*b.DueDate)
	case a.DueDate != nil:
		return true
	default:
		// b has a due date and a does not, or neither has one.
		return false
	}
}
