package store

import (
	"encoding/json"
	"time"

	"github.com/existflow/taskdeck/internal/model"
)

const (
	keyCachedTasks = "cached_tasks"
	keyIdentity    = "widget_config"
	keyDefaultList = "default_list"
)

// CacheEntry is the last successfully synchronized task list. It is the
// single source of truth when a live fetch fails, so readers never delete
// it except on fresh overwrite or an explicit clear.
type CacheEntry struct {
	Tasks     []model.Task `json:"tasks"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Identity is the resolved team/user pair, shared with the widget process so
// it can skip re-resolution when it already has a cache to fall back on.
type Identity struct {
	TeamID string `json:"teamId,omitempty"`
	UserID int    `json:"userId,omitempty"`
}

// ListSelection is the user-chosen target for task creation. Absence means
// task creation is disabled.
type ListSelection struct {
	ListID   string `json:"listId"`
	ListName string `json:"listName"`
}

// Cache reads and writes the shared task cache.
type Cache struct {
	store *Store
}

// NewCache wraps the store.
func NewCache(s *Store) *Cache {
	return &Cache{store: s}
}

// Write overwrites the cache entry. All-or-nothing: the entry is encoded
// fully before the single upsert.
func (c *Cache) Write(tasks []model.Task, fetchedAt time.Time) error {
	entry := CacheEntry{Tasks: tasks, FetchedAt: fetchedAt.UTC()}
	if entry.Tasks == nil {
		entry.Tasks = []model.Task{}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return &StorageError{Op: "encode cache", Err: err}
	}
	return c.store.Save(keyCachedTasks, data)
}

// Read returns the cache entry, or nil when no sync has ever succeeded.
func (c *Cache) Read() (*CacheEntry, error) {
	data, ok, err := c.store.Get(keyCachedTasks)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, &StorageError{Op: "decode cache", Err: err}
	}
	return &entry, nil
}

// Clear drops the cached tasks (user-triggered only).
func (c *Cache) Clear() error {
	return c.store.Delete(keyCachedTasks)
}

// SaveIdentity persists the resolved team/user pair.
func (s *Store) SaveIdentity(id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return &StorageError{Op: "encode identity", Err: err}
	}
	return s.Save(keyIdentity, data)
}

// Identity loads the shared team/user pair.
func (s *Store) Identity() (Identity, bool, error) {
	data, ok, err := s.Get(keyIdentity)
	if err != nil || !ok {
		return Identity{}, false, err
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, false, &StorageError{Op: "decode identity", Err: err}
	}
	return id, true, nil
}

// SaveListSelection persists the default list for task creation.
func (s *Store) SaveListSelection(sel ListSelection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return &StorageError{Op: "encode list selection", Err: err}
	}
	return s.Save(keyDefaultList, data)
}

// ListSelection loads the default list selection.
func (s *Store) ListSelection() (ListSelection, bool, error) {
	data, ok, err := s.Get(keyDefaultList)
	if err != nil || !ok {
		return ListSelection{}, false, err
	}
	var sel ListSelection
	if err := json.Unmarshal(data, &sel); err != nil {
		return ListSelection{}, false, &StorageError{Op: "decode list selection", Err: err}
	}
	return sel, true, nil
}

// ClearListSelection disables task creation again. Idempotent.
func (s *Store) ClearListSelection() error {
	return s.Delete(keyDefaultList)
}
