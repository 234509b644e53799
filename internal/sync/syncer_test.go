package sync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/taskdeck/internal/clickup"
	"github.com/existflow/taskdeck/internal/store"
)

// fakeClickUp serves a one-user, one-team workspace.
type fakeClickUp struct {
	mux *http.ServeMux

	tasksBody   string
	tasksStatus int
	requests    []string
}

func newFakeClickUp() *fakeClickUp {
	f := &fakeClickUp{
		mux:         http.NewServeMux(),
		tasksBody:   `{"tasks": []}`,
		tasksStatus: http.StatusOK,
	}
	f.mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL.Path)
		_, _ = w.Write([]byte(`{"user": {"id": 42, "username": "yannick"}}`))
	})
	f.mux.HandleFunc("/team", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL.Path)
		_, _ = w.Write([]byte(`{"teams": [{"id": "T1", "name": "Existflow"}]}`))
	})
	f.mux.HandleFunc("/team/T1/task", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL.Path)
		w.WriteHeader(f.tasksStatus)
		_, _ = w.Write([]byte(f.tasksBody))
	})
	return f
}

func (f *fakeClickUp) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mux.ServeHTTP(w, r)
}

// newTestSyncer wires a Syncer against a fake API with a signed-in user and a
// fresh temp store.
func newTestSyncer(t *testing.T, fake *fakeClickUp) (*Syncer, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "taskdeck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	creds, err := store.NewCredentials(st, dir)
	require.NoError(t, err)
	require.NoError(t, creds.SetAPIKey("pk_test"))

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	api := clickup.New(srv.URL, clickup.WithMinInterval(time.Millisecond))
	return New(api, creds, st), st
}

func TestSyncHappyPath(t *testing.T) {
	fake := newFakeClickUp()
	fake.tasksBody = `{"tasks": [
		{"id": "2", "name": "later", "status": {"status": "open"}, "due_date": "1893456000000"},
		{"id": "1", "name": "overdue", "status": {"status": "open"}, "due_date": "946684800000"}
	]}`

	s, st := newTestSyncer(t, fake)
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	tasks, err := s.Sync(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "overdue", tasks[0].Name)
	assert.Equal(t, "later", tasks[1].Name)

	// pipeline order: user, then team, then tasks
	assert.Equal(t, []string{"/user", "/team", "/team/T1/task"}, fake.requests)

	entry, err := store.NewCache(st).Read()
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, fixed, entry.FetchedAt)
	require.Len(t, entry.Tasks, 2)
	assert.Equal(t, "1", entry.Tasks[0].ID)

	id, ok, err := st.Identity()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, store.Identity{TeamID: "T1", UserID: 42}, id)
}

func TestSyncNotSignedIn(t *testing.T) {
	fake := newFakeClickUp()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "taskdeck.db"))
	require.NoError(t, err)
	defer st.Close()

	creds, err := store.NewCredentials(st, dir)
	require.NoError(t, err)

	srv := httptest.NewServer(fake)
	defer srv.Close()
	api := clickup.New(srv.URL, clickup.WithMinInterval(time.Millisecond))

	_, err = New(api, creds, st).Sync(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Empty(t, fake.requests, "no network traffic without a credential")
}

func TestSyncNoTeams(t *testing.T) {
	fake := newFakeClickUp()
	fake.mux = http.NewServeMux()
	fake.mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user": {"id": 42, "username": "yannick"}}`))
	})
	fake.mux.HandleFunc("/team", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"teams": []}`))
	})

	s, _ := newTestSyncer(t, fake)
	_, err := s.Sync(context.Background())
	assert.ErrorIs(t, err, ErrNoTeams)
}

func TestSyncFailureLeavesCacheUntouched(t *testing.T) {
	fake := newFakeClickUp()
	fake.tasksBody = `{"tasks": [{"id": "1", "name": "keep me", "status": {"status": "open"}}]}`

	s, st := newTestSyncer(t, fake)
	_, err := s.Sync(context.Background())
	require.NoError(t, err)

	fake.tasksStatus = http.StatusInternalServerError
	fake.tasksBody = `boom`
	_, err = s.Sync(context.Background())
	require.ErrorIs(t, err, clickup.ErrServerError)

	entry, err := store.NewCache(st).Read()
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Len(t, entry.Tasks, 1)
	assert.Equal(t, "keep me", entry.Tasks[0].Name)
}

func TestClearCache(t *testing.T) {
	fake := newFakeClickUp()
	fake.tasksBody = `{"tasks": [{"id": "1", "name": "x", "status": {"status": "open"}}]}`

	s, _ := newTestSyncer(t, fake)
	_, err := s.Sync(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.ClearCache())
	entry, err := s.CachedEntry()
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestListsResolvesSpacesAndFolders(t *testing.T) {
	fake := newFakeClickUp()
	fake.mux.HandleFunc("/team/T1/space", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"spaces": [{"id": "S1", "name": "Eng"}]}`))
	})
	fake.mux.HandleFunc("/space/S1/list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lists": [{"id": "L1", "name": "Inbox"}]}`))
	})
	fake.mux.HandleFunc("/space/S1/folder", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"folders": [{"id": "F1", "name": "Sprints", "lists": [{"id": "L2", "name": "Sprint 12"}]}]}`))
	})

	s, _ := newTestSyncer(t, fake)
	lists, err := s.Lists(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "Inbox", lists[0].Name)
	assert.Equal(t, "Sprint 12", lists[1].Name)
}

func TestListsPrefersStoredIdentity(t *testing.T) {
	fake := newFakeClickUp()
	fake.mux.HandleFunc("/team/T9/space", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"spaces": []}`))
	})

	s, st := newTestSyncer(t, fake)
	require.NoError(t, st.SaveIdentity(store.Identity{TeamID: "T9", UserID: 42}))

	_, err := s.Lists(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, fake.requests, "/team", "a stored identity skips team resolution")
}
