// Package sync orchestrates the task pipeline: resolve the user and team,
// fetch open tasks through the rate-limited client, sort, and persist to the
// process-shared cache.
package sync

import (
	"context"
	"errors"
	"time"

	"github.com/existflow/taskdeck/internal/clickup"
	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/store"
)

var (
	// ErrNotSignedIn means no credential is stored (or storage is down,
	// which is treated the same way).
	ErrNotSignedIn = errors.New("not signed in")

	// ErrNoTeams means the credential resolves to zero workspaces.
	ErrNoTeams = errors.New("no teams found")
)

// Syncer ties the API client to the shared store. Construct one per process
// and pass it around; it owns no background goroutines.
type Syncer struct {
	api   *clickup.Client
	creds *store.Credentials
	cache *store.Cache
	store *store.Store

	now func() time.Time
}

// New creates a Syncer.
func New(api *clickup.Client, creds *store.Credentials, st *store.Store) *Syncer {
	return &Syncer{
		api:   api,
		creds: creds,
		cache: store.NewCache(st),
		store: st,
		now:   time.Now,
	}
}

// Sync resolves user → team → open tasks, sorts them, and overwrites the
// cache entry. On any failure the existing cache entry is left untouched and
// the typed error goes back to the caller.
func (s *Syncer) Sync(ctx context.Context) ([]model.Task, error) {
	credential, ok := s.creds.Token()
	if !ok {
		return nil, ErrNotSignedIn
	}

	user, err := s.api.AuthorizedUser(ctx, credential)
	if err != nil {
		return nil, err
	}

	teams, err := s.api.Teams(ctx, credential)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, ErrNoTeams
	}
	team := teams[0]

	tasks, err := s.api.TeamTasks(ctx, credential, team.ID, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	SortTasks(tasks, now)

	// Cache and identity writes are best effort: a storage hiccup must not
	// turn a successful fetch into a failure.
	if err := s.cache.Write(tasks, now); err != nil {
		logger.Warn("cache write failed", logger.F("error", err))
	}
	if err := s.store.SaveIdentity(store.Identity{TeamID: team.ID, UserID: user.ID}); err != nil {
		logger.Warn("identity write failed", logger.F("error", err))
	}

	logger.Info("sync complete",
		logger.F("team", team.ID),
		logger.F("user", user.ID),
		logger.F("tasks", len(tasks)))
	return tasks, nil
}

// ClearCache drops the cached tasks. Only the user triggers this.
func (s *Syncer) ClearCache() error {
	return s.cache.Clear()
}

// CachedEntry exposes the raw cache entry for status surfaces.
func (s *Syncer) CachedEntry() (*store.CacheEntry, error) {
	return s.cache.Read()
}

// Lists resolves every list in the first team: folderless lists of each
// space, then the lists inside each folder. Used to pick the task-creation
// target.
func (s *Syncer) Lists(ctx context.Context) ([]model.List, error) {
	credential, ok := s.creds.Token()
	if !ok {
		return nil, ErrNotSignedIn
	}

	teamID, err := s.teamID(ctx, credential)
	if err != nil {
		return nil, err
	}

	spaces, err := s.api.Spaces(ctx, credential, teamID)
	if err != nil {
		return nil, err
	}

	var lists []model.List
	for _, space := range spaces {
		direct, err := s.api.FolderlessLists(ctx, credential, space.ID)
		if err != nil {
			return nil, err
		}
		lists = append(lists, direct...)

		folders, err := s.api.Folders(ctx, credential, space.ID)
		if err != nil {
			return nil, err
		}
		for _, folder := range folders {
			lists = append(lists, folder.Lists...)
		}
	}
	return lists, nil
}

// teamID prefers the identity remembered by the last sync over a fresh
// round trip.
func (s *Syncer) teamID(ctx context.Context, credential string) (string, error) {
	if id, ok, err := s.store.Identity(); err == nil && ok && id.TeamID != "" {
		return id.TeamID, nil
	}

	teams, err := s.api.Teams(ctx, credential)
	if err != nil {
		return "", err
	}
	if len(teams) == 0 {
		return "", ErrNoTeams
	}
	return teams[0].ID, nil
}
