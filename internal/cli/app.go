package cli

import (
	"fmt"

	"github.com/existflow/taskdeck/internal/clickup"
	"github.com/existflow/taskdeck/internal/config"
	"github.com/existflow/taskdeck/internal/store"
	"github.com/existflow/taskdeck/internal/sync"
)

// app bundles the explicitly constructed services every command needs. No
// package-level singletons: each invocation builds one and closes it.
type app struct {
	cfg    *config.Config
	store  *store.Store
	creds  *store.Credentials
	api    *clickup.Client
	syncer *sync.Syncer
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.OpenDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to open shared store: %w", err)
	}

	dir, err := config.Dir()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	creds, err := store.NewCredentials(st, dir)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = clickup.DefaultBaseURL
	}
	api := clickup.New(baseURL)

	return &app{
		cfg:    cfg,
		store:  st,
		creds:  creds,
		api:    api,
		syncer: sync.New(api, creds, st),
	}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
}

func (a *app) oauth() *clickup.OAuth {
	return clickup.NewOAuth(clickup.OAuthConfig{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		RedirectURI:  a.cfg.RedirectURI,
	})
}
