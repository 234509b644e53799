package clickup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithMinInterval(time.Millisecond))
}

func TestStatusTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		code   int
		expect error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"server error", http.StatusInternalServerError, ErrServerError},
		{"bad gateway", http.StatusBadGateway, ErrServerError},
		{"teapot", http.StatusTeapot, ErrInvalidResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
			})

			_, err := c.Teams(context.Background(), "pk_test")
			assert.ErrorIs(t, err, tc.expect)
		})
	}
}

func TestAuthorizedUser(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "pk_test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"user": {"id": 42, "username": "yannick"}}`))
	})

	user, err := c.AuthorizedUser(context.Background(), "pk_test")
	require.NoError(t, err)
	assert.Equal(t, 42, user.ID)
	assert.Equal(t, "yannick", user.Username)
}

func TestTeamTasksQuery(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/team/T1/task", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "42", q.Get("assignees[]"))
		assert.Equal(t, "open", q.Get("statuses[]"))
		assert.Equal(t, "true", q.Get("subtasks"))
		_, _ = w.Write([]byte(`{"tasks": [{"id": "1", "name": "a", "status": {"status": "open"}}]}`))
	})

	tasks, err := c.TeamTasks(context.Background(), "pk_test", "T1", 42)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "1", tasks[0].ID)
}

func TestDecodeErrorCarriesPath(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		// teams must be an array
		_, _ = w.Write([]byte(`{"teams": "oops"}`))
	})

	_, err := c.Teams(context.Background(), "pk_test")
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "teams", decodeErr.Path)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, WithMinInterval(time.Millisecond))
	_, err := c.Teams(context.Background(), "pk_test")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.NotNil(t, netErr.Cause)
}

func TestRateLimitRemainingBookkeeping(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "73")
		_, _ = w.Write([]byte(`{"teams": []}`))
	})

	assert.Equal(t, -1, c.RateLimitRemaining())
	_, err := c.Teams(context.Background(), "pk_test")
	require.NoError(t, err)
	assert.Equal(t, 73, c.RateLimitRemaining())
}

func TestAdmissionGateSpacesRequests(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(`{"teams": []}`))
	}))
	defer srv.Close()

	const interval = 40 * time.Millisecond
	c := New(srv.URL, WithMinInterval(interval))

	for i := 0; i < 3; i++ {
		_, err := c.Teams(context.Background(), "pk_test")
		require.NoError(t, err)
	}

	require.Len(t, stamps, 3)
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		assert.GreaterOrEqual(t, gap, interval-2*time.Millisecond,
			"gap %d was %v, below the minimum interval", i, gap)
	}
}

func TestAdmissionGateSerializesConcurrentCallers(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(`{"teams": []}`))
	}))
	defer srv.Close()

	const interval = 30 * time.Millisecond
	c := New(srv.URL, WithMinInterval(interval))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Teams(context.Background(), "pk_test")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, stamps, 4)
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		assert.GreaterOrEqual(t, gap, interval-2*time.Millisecond,
			"concurrent callers must not share an admission slot")
	}
}

func TestAdmissionGateHonorsCancellation(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"teams": []}`))
	})
	// Claim the slot, then cancel while the next call is waiting.
	c.interval = time.Hour
	_, err := c.Teams(context.Background(), "pk_test")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.Teams(ctx, "pk_test")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout)
}

func TestSetTaskStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/task/42", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "closed", body["status"])
		_, _ = w.Write([]byte(`{}`))
	})

	err := c.SetTaskStatus(context.Background(), "pk_test", "42", "closed")
	require.NoError(t, err)
}

func TestCreateTask(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/list/L1/task", r.URL.Path)

		var body struct {
			Name      string `json:"name"`
			Assignees []int  `json:"assignees"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "New task", body.Name)
		assert.Equal(t, []int{42}, body.Assignees)

		_, _ = w.Write([]byte(`{"id": "new1", "name": "New task", "status": {"status": "open"}}`))
	})

	task, err := c.CreateTask(context.Background(), "pk_test", "L1", "New task", []int{42})
	require.NoError(t, err)
	assert.Equal(t, "new1", task.ID)
}

func TestCreateTaskEmptyAssignees(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// assignees must be a present, empty array — not null
		assert.Equal(t, "[]", string(body["assignees"]))
		_, _ = w.Write([]byte(`{"id": "new2", "name": "x", "status": {"status": "open"}}`))
	})

	_, err := c.CreateTask(context.Background(), "pk_test", "L1", "x", nil)
	require.NoError(t, err)
}

func TestNoRetries(t *testing.T) {
	var calls int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Teams(context.Background(), "pk_test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrServerError))
	assert.Equal(t, 1, calls, "the client must never retry on its own")
}
