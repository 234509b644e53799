package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/model"
)

const (
	// DefaultBaseURL is the ClickUp v2 API endpoint.
	DefaultBaseURL = "https://api.clickup.com/api/v2"

	// minRequestInterval keeps the client at or below ClickUp's
	// 100 requests/minute budget. Per process, best effort only: the main
	// app and the widget process each carry their own clock.
	minRequestInterval = 600 * time.Millisecond

	requestTimeout = 10 * time.Second
)

// Client issues rate-limited calls against the ClickUp API. All callers that
// share one Client serialize through the same admission gate, so the gap
// between any two outbound requests is at least the minimum interval.
type Client struct {
	baseURL    string
	httpClient *http.Client
	interval   time.Duration

	mu          sync.Mutex
	lastRequest time.Time
	remaining   int // last seen X-RateLimit-Remaining, bookkeeping only
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMinInterval overrides the admission gate interval.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) { c.interval = d }
}

// New creates a client for the given base URL. Pass DefaultBaseURL outside
// of tests.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		interval:   minRequestInterval,
		remaining:  -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RateLimitRemaining returns the quota reported by the last response, or -1
// before any request has completed.
func (c *Client) RateLimitRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// admit blocks until the minimum interval since the previous request has
// passed, then claims the slot. The lock is held across the sleep so two
// callers cannot both pass the check for the same slot.
func (c *Client) admit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elapsed := time.Since(c.lastRequest); elapsed < c.interval {
		t := time.NewTimer(c.interval - elapsed)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.lastRequest = time.Now()
	return nil
}

// call issues one authenticated request and returns the raw response body.
// No retries: every failure maps to the typed taxonomy and is returned as-is.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, credential string, body any) ([]byte, error) {
	if err := c.admit(ctx); err != nil {
		return nil, &NetworkError{Cause: err, Timeout: errors.Is(err, context.DeadlineExceeded)}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("Authorization", credential)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Cause: err, Timeout: isTimeout(err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			c.mu.Lock()
			c.remaining = n
			c.mu.Unlock()
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Cause: err, Timeout: isTimeout(err)}
	}

	if err := statusError(resp.StatusCode); err != nil {
		logger.Debug("API call failed",
			logger.F("method", method),
			logger.F("path", path),
			logger.F("status", resp.StatusCode))
		return nil, err
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, credential string, out any) error {
	data, err := c.call(ctx, http.MethodGet, path, query, credential, nil)
	if err != nil {
		return err
	}
	return decodeBody(data, out)
}

// decodeBody unmarshals a successful response, naming the failing field when
// the decoder can.
func decodeBody(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		path := ""
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			path = typeErr.Field
			if path == "" {
				path = typeErr.Struct
			}
		}
		return &DecodeError{Path: path, Cause: err}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Response wrappers for the ClickUp API.
type userResponse struct {
	User model.User `json:"user"`
}

type teamsResponse struct {
	Teams []model.Team `json:"teams"`
}

type tasksResponse struct {
	Tasks []model.Task `json:"tasks"`
}

type spacesResponse struct {
	Spaces []model.Space `json:"spaces"`
}

type foldersResponse struct {
	Folders []model.Folder `json:"folders"`
}

type listsResponse struct {
	Lists []model.List `json:"lists"`
}

// AuthorizedUser returns the user the credential belongs to.
func (c *Client) AuthorizedUser(ctx context.Context, credential string) (model.User, error) {
	var resp userResponse
	if err := c.getJSON(ctx, "/user", nil, credential, &resp); err != nil {
		return model.User{}, err
	}
	return resp.User, nil
}

// Teams returns the workspaces visible to the credential.
func (c *Client) Teams(ctx context.Context, credential string) ([]model.Team, error) {
	var resp teamsResponse
	if err := c.getJSON(ctx, "/team", nil, credential, &resp); err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

// TeamTasks returns the user's open tasks in a team, subtasks included.
// Order is whatever the API returned; sorting is the synchronizer's job.
func (c *Client) TeamTasks(ctx context.Context, credential, teamID string, userID int) ([]model.Task, error) {
	query := url.Values{}
	query.Set("assignees[]", strconv.Itoa(userID))
	query.Set("statuses[]", string(model.StatusOpen))
	query.Set("subtasks", "true")

	var resp tasksResponse
	if err := c.getJSON(ctx, "/team/"+teamID+"/task", query, credential, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// Spaces returns the spaces of a team.
func (c *Client) Spaces(ctx context.Context, credential, teamID string) ([]model.Space, error) {
	var resp spacesResponse
	if err := c.getJSON(ctx, "/team/"+teamID+"/space", nil, credential, &resp); err != nil {
		return nil, err
	}
	return resp.Spaces, nil
}

// Folders returns the folders of a space, each with its lists.
func (c *Client) Folders(ctx context.Context, credential, spaceID string) ([]model.Folder, error) {
	var resp foldersResponse
	if err := c.getJSON(ctx, "/space/"+spaceID+"/folder", nil, credential, &resp); err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

// FolderlessLists returns the lists that hang directly off a space.
func (c *Client) FolderlessLists(ctx context.Context, credential, spaceID string) ([]model.List, error) {
	var resp listsResponse
	if err := c.getJSON(ctx, "/space/"+spaceID+"/list", nil, credential, &resp); err != nil {
		return nil, err
	}
	return resp.Lists, nil
}

// SetTaskStatus updates a single task's status.
func (c *Client) SetTaskStatus(ctx context.Context, credential, taskID string, status model.Status) error {
	body := map[string]string{"status": string(status)}
	_, err := c.call(ctx, http.MethodPut, "/task/"+taskID, nil, credential, body)
	return err
}

// CreateTask creates a task in a list, optionally pre-assigned.
func (c *Client) CreateTask(ctx context.Context, credential, listID, name string, assigneeIDs []int) (model.Task, error) {
	body := struct {
		Name      string `json:"name"`
		Assignees []int  `json:"assignees"`
	}{Name: name, Assignees: assigneeIDs}
	if body.Assignees == nil {
		body.Assignees = []int{}
	}

	data, err := c.call(ctx, http.MethodPost, "/list/"+listID+"/task", nil, credential, body)
	if err != nil {
		return model.Task{}, err
	}
	var task model.Task
	if err := decodeBody(data, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}
