package sync

import (
	"context"
	"time"

	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
)

// Timeline is what a consumer surface renders. It always holds something:
// fresh tasks, stale cached tasks, or an error message — never nothing.
type Timeline struct {
	Tasks       []model.Task `json:"tasks"`
	Err         string       `json:"error,omitempty"`
	LastUpdated *time.Time   `json:"last_updated,omitempty"`

	// Stale marks tasks served from the cache after a failed live fetch.
	// Rendering does not change; retry scheduling does.
	Stale bool `json:"stale,omitempty"`
}

// Failed reports whether the live fetch behind this timeline failed, even
// when cached tasks mask the error message. Consumers key the shorter retry
// interval on it.
func (t Timeline) Failed() bool {
	return t.Err != "" || t.Stale
}

// ReadWithFallback downgrades a sync failure into stale-but-present data
// whenever the cache holds any. Only when the live fetch failed AND the
// cache is empty does the error message surface.
func (s *Syncer) ReadWithFallback(tasks []model.Task, syncErr error) Timeline {
	if syncErr == nil {
		now := s.now()
		if tasks == nil {
			tasks = []model.Task{}
		}
		return Timeline{Tasks: tasks, LastUpdated: &now}
	}

	entry, err := s.cache.Read()
	if err != nil {
		logger.Warn("cache read failed", logger.F("error", err))
	}
	if entry != nil && len(entry.Tasks) > 0 {
		fetchedAt := entry.FetchedAt
		logger.Info("serving stale tasks",
			logger.F("count", len(entry.Tasks)),
			logger.F("fetchedAt", fetchedAt))
		return Timeline{Tasks: entry.Tasks, LastUpdated: &fetchedAt, Stale: true}
	}

	return Timeline{Tasks: []model.Task{}, Err: syncErr.Error()}
}

// Refresh runs a sync and folds the result through the fallback reader.
func (s *Syncer) Refresh(ctx context.Context) Timeline {
	tasks, err := s.Sync(ctx)
	if err != nil {
		logger.Warn("sync failed", logger.F("error", err))
	}
	return s.ReadWithFallback(tasks, err)
}
