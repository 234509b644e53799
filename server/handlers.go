package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/existflow/taskdeck/internal/clickup"
	"github.com/existflow/taskdeck/internal/logger"
	tasksync "github.com/existflow/taskdeck/internal/sync"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleSync runs a live sync and answers with the timeline. Always 200 with
// a body: fresh tasks, stale tasks, or an error string — consumers render
// whatever comes back.
func (s *Server) handleSync(c echo.Context) error {
	timeline := s.syncer.Refresh(c.Request().Context())
	return c.JSON(http.StatusOK, timeline)
}

// handleCachedTasks serves the cache without touching the network.
func (s *Server) handleCachedTasks(c echo.Context) error {
	entry, err := s.syncer.CachedEntry()
	if err != nil {
		logger.Warn("cache read failed", logger.F("error", err))
	}
	if entry == nil {
		return c.JSON(http.StatusOK, tasksync.Timeline{Tasks: nil})
	}
	fetchedAt := entry.FetchedAt
	return c.JSON(http.StatusOK, tasksync.Timeline{Tasks: entry.Tasks, LastUpdated: &fetchedAt})
}

func (s *Server) handleMarkDone(c echo.Context) error {
	taskID := c.Param("id")
	if err := s.syncer.MarkDone(c.Request().Context(), taskID); err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}
	// Tell the consumer to refresh; the cache changes on the next sync.
	return c.JSON(http.StatusOK, map[string]bool{"refresh": true})
}

type createTaskRequest struct {
	ListID    string `json:"list_id"`
	Name      string `json:"name"`
	Assignees []int  `json:"assignees"`
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	// Fall back to the persisted default list when the caller names none.
	if req.ListID == "" {
		if sel, ok, _ := s.store.ListSelection(); ok {
			req.ListID = sel.ListID
		}
	}

	task, err := s.syncer.CreateTask(c.Request().Context(), req.ListID, req.Name, req.Assignees)
	if err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]any{"task": task, "refresh": true})
}

// handleOAuthLogin redirects the browser into the ClickUp consent screen
// with a fresh state value.
func (s *Server) handleOAuthLogin(c echo.Context) error {
	state := uuid.New().String()

	s.mu.Lock()
	now := time.Now()
	for k, issued := range s.states {
		if now.Sub(issued) > stateTTL {
			delete(s.states, k)
		}
	}
	s.states[state] = now
	s.mu.Unlock()

	return c.Redirect(http.StatusFound, s.oauth.AuthorizationURL(state))
}

// handleOAuthCallback finishes the flow: validates state, exchanges the code
// and stores the token.
func (s *Server) handleOAuthCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.String(http.StatusBadRequest, "Missing authorization code.")
	}

	if state := c.QueryParam("state"); state != "" {
		s.mu.Lock()
		issued, known := s.states[state]
		delete(s.states, state)
		s.mu.Unlock()
		if !known || time.Since(issued) > stateTTL {
			return c.String(http.StatusBadRequest, "Unknown or expired OAuth state.")
		}
	}

	token, err := s.oauth.ExchangeCode(c.Request().Context(), code)
	if err != nil {
		logger.Error("OAuth exchange failed", logger.F("error", err))
		return c.String(http.StatusBadGateway, "Token exchange failed: "+err.Error())
	}

	if err := s.creds.SetOAuthToken(token); err != nil {
		logger.Error("token store failed", logger.F("error", err))
		return c.String(http.StatusInternalServerError, "Could not store the token.")
	}

	logger.Info("OAuth sign-in complete")
	return c.String(http.StatusOK, "Signed in! You can close this window and return to TaskDeck.")
}

// statusFor maps pipeline errors onto HTTP statuses for the trigger surface.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tasksync.ErrNotSignedIn), errors.Is(err, clickup.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, clickup.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tasksync.ErrNoListSelected):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
