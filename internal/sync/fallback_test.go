package sync

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/taskdeck/internal/model"
	"github.com/existflow/taskdeck/internal/store"
)

func TestReadWithFallbackSuccess(t *testing.T) {
	s, _ := newTestSyncer(t, newFakeClickUp())
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	tl := s.ReadWithFallback([]model.Task{{ID: "1", Name: "fresh"}}, nil)

	assert.Empty(t, tl.Err)
	assert.False(t, tl.Failed())
	require.Len(t, tl.Tasks, 1)
	assert.Equal(t, "fresh", tl.Tasks[0].Name)
	require.NotNil(t, tl.LastUpdated)
	assert.Equal(t, fixed, *tl.LastUpdated)
}

func TestReadWithFallbackSuccessNilTasks(t *testing.T) {
	s, _ := newTestSyncer(t, newFakeClickUp())

	tl := s.ReadWithFallback(nil, nil)

	assert.NotNil(t, tl.Tasks)
	assert.Empty(t, tl.Tasks)
	assert.Empty(t, tl.Err)
}

func TestReadWithFallbackServesStaleCache(t *testing.T) {
	s, st := newTestSyncer(t, newFakeClickUp())
	fetchedAt := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.NewCache(st).Write([]model.Task{{ID: "1", Name: "stale"}}, fetchedAt))

	tl := s.ReadWithFallback(nil, errors.New("connection refused"))

	assert.Empty(t, tl.Err, "a populated cache suppresses the error")
	assert.True(t, tl.Stale)
	assert.True(t, tl.Failed(), "the failure must survive for retry scheduling")
	require.Len(t, tl.Tasks, 1)
	assert.Equal(t, "stale", tl.Tasks[0].Name)
	require.NotNil(t, tl.LastUpdated)
	assert.Equal(t, fetchedAt, *tl.LastUpdated)
}

func TestReadWithFallbackEmptyCacheSurfacesError(t *testing.T) {
	s, _ := newTestSyncer(t, newFakeClickUp())

	tl := s.ReadWithFallback(nil, errors.New("connection refused"))

	assert.Equal(t, "connection refused", tl.Err)
	assert.True(t, tl.Failed())
	assert.NotNil(t, tl.Tasks)
	assert.Empty(t, tl.Tasks)
	assert.Nil(t, tl.LastUpdated)
}

func TestReadWithFallbackCacheWithZeroTasksSurfacesError(t *testing.T) {
	s, st := newTestSyncer(t, newFakeClickUp())
	require.NoError(t, store.NewCache(st).Write(nil, time.Now()))

	tl := s.ReadWithFallback(nil, errors.New("rate limited"))

	assert.Equal(t, "rate limited", tl.Err)
	assert.Empty(t, tl.Tasks)
}

func TestRefresh(t *testing.T) {
	fake := newFakeClickUp()
	fake.tasksBody = `{"tasks": [{"id": "1", "name": "live", "status": {"status": "open"}}]}`
	s, _ := newTestSyncer(t, fake)

	tl := s.Refresh(context.Background())
	assert.Empty(t, tl.Err)
	require.Len(t, tl.Tasks, 1)
	assert.Equal(t, "live", tl.Tasks[0].Name)

	// Break the upstream: the fresh entry keeps serving.
	fake.tasksStatus = http.StatusServiceUnavailable
	tl = s.Refresh(context.Background())
	assert.Empty(t, tl.Err)
	require.Len(t, tl.Tasks, 1)
	assert.Equal(t, "live", tl.Tasks[0].Name)
}

// A warm cache masks the error message but must not mask the failure itself,
// or every consumer keeps the slow refresh cadence while the API is down.
func TestRefreshWithWarmCacheStillReportsFailure(t *testing.T) {
	fake := newFakeClickUp()
	fake.tasksBody = `{"tasks": [{"id": "1", "name": "cached", "status": {"status": "open"}}]}`
	s, _ := newTestSyncer(t, fake)

	tl := s.Refresh(context.Background())
	require.False(t, tl.Failed())

	fake.tasksStatus = http.StatusInternalServerError
	fake.tasksBody = `boom`

	tl = s.Refresh(context.Background())
	assert.Empty(t, tl.Err, "cached tasks suppress the message")
	assert.True(t, tl.Stale)
	assert.True(t, tl.Failed())
	require.Len(t, tl.Tasks, 1)
	assert.Equal(t, "cached", tl.Tasks[0].Name)
}
