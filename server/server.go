// Package server exposes the pipeline's three verbs (sync, done, create)
// over local HTTP, plus the OAuth redirect callback. It is the trigger
// surface for widgets, hotkeys and deep links; it holds no state of its own
// beyond the in-flight OAuth states.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/existflow/taskdeck/internal/clickup"
	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/internal/store"
	tasksync "github.com/existflow/taskdeck/internal/sync"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const stateTTL = 10 * time.Minute

// Server is the local trigger server
type Server struct {
	echo   *echo.Echo
	syncer *tasksync.Syncer
	store  *store.Store
	creds  *store.Credentials
	oauth  *clickup.OAuth

	mu     sync.Mutex
	states map[string]time.Time // pending OAuth state -> issued at

	refreshEvery time.Duration
	stopRefresh  chan struct{}
}

// New creates a server around an already constructed pipeline.
func New(syncer *tasksync.Syncer, st *store.Store, creds *store.Credentials, oauth *clickup.OAuth) *Server {
	s := &Server{
		syncer:      syncer,
		store:       st,
		creds:       creds,
		oauth:       oauth,
		states:      make(map[string]time.Time),
		stopRefresh: make(chan struct{}),
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Request logging through the shared logger
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("HTTP",
				logger.F("method", c.Request().Method),
				logger.F("uri", c.Request().RequestURI),
				logger.F("status", c.Response().Status),
				logger.F("duration", time.Since(start).String()))
			return err
		}
	})
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/health", s.handleHealth)

	api := e.Group("/api/v1")
	api.POST("/sync", s.handleSync)
	api.GET("/tasks", s.handleCachedTasks)
	api.POST("/tasks", s.handleCreateTask)
	api.POST("/tasks/:id/done", s.handleMarkDone)

	e.GET("/oauth/login", s.handleOAuthLogin)
	e.GET("/oauth/callback", s.handleOAuthCallback)

	s.echo = e
}

// StartPeriodicRefresh syncs on an interval until Close. After a failure the
// next attempt comes sooner, mirroring the widget's shorter retry timeline.
func (s *Server) StartPeriodicRefresh(every time.Duration) {
	s.refreshEvery = every
	go func() {
		delay := every
		for {
			select {
			case <-time.After(delay):
			case <-s.stopRefresh:
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			timeline := s.syncer.Refresh(ctx)
			cancel()

			if timeline.Failed() {
				delay = every / 3
				logger.Warn("periodic refresh failed",
					logger.F("error", timeline.Err),
					logger.F("stale", timeline.Stale))
			} else {
				delay = every
				logger.Info("periodic refresh done", logger.F("tasks", len(timeline.Tasks)))
			}
		}
	}()
}

// Start listens on addr and blocks.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Close stops the refresh loop and shuts the listener down.
func (s *Server) Close() error {
	close(s.stopRefresh)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
