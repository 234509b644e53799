package sync

import (
	"context"
	"errors"
	"strings"

	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/store"
)

// ErrNoListSelected is returned locally, before any network call, when task
// creation is attempted without a default list selection.
var ErrNoListSelected = errors.New("no default list selected, task creation is disabled")

// MarkDone closes a single task. On success the caller should refresh its
// view; the cache itself only changes on the next Sync.
func (s *Syncer) MarkDone(ctx context.Context, taskID string) error {
	credential, ok := s.creds.Token()
	if !ok {
		return ErrNotSignedIn
	}

	if err := s.api.SetTaskStatus(ctx, credential, taskID, model.StatusClosed); err != nil {
		return err
	}
	logger.Info("task closed", logger.F("task", taskID))
	return nil
}

// CreateTask creates a task in the given list. An empty list id is rejected
// before any network I/O.
func (s *Syncer) CreateTask(ctx context.Context, listID, name string, assigneeIDs []int) (model.Task, error) {
	if strings.TrimSpace(listID) == "" {
		return model.Task{}, ErrNoListSelected
	}

	credential, ok := s.creds.Token()
	if !ok {
		return model.Task{}, ErrNotSignedIn
	}

	task, err := s.api.CreateTask(ctx, credential, listID, name, assigneeIDs)
	if err != nil {
		return model.Task{}, err
	}
	logger.Info("task created", logger.F("task", task.ID), logger.F("list", listID))
	return task, nil
}

// CreateInDefaultList creates a task in the persisted default list,
// pre-assigned to the synced user when known.
func (s *Syncer) CreateInDefaultList(ctx context.Context, name string) (model.Task, error) {
	sel, ok, err := s.store.ListSelection()
	if err != nil || !ok {
		return model.Task{}, ErrNoListSelected
	}

	var assignees []int
	if id, ok, err := s.store.Identity(); err == nil && ok && id.UserID != 0 {
		assignees = []int{id.UserID}
	}
	return s.CreateTask(ctx, sel.ListID, name, assignees)
}

// SelectList persists the default list for task creation.
func (s *Syncer) SelectList(sel store.ListSelection) error {
	return s.store.SaveListSelection(sel)
}
