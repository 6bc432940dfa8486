package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rananjaysingh20/work-tracker-cli/internal/api"
	"github.com/rananjaysingh20/work-tracker-cli/internal/config"
	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
	"github.com/rananjaysingh20/work-tracker-cli/internal/query"
	"github.com/rananjaysingh20/work-tracker-cli/internal/session"
)

// app bundles the process-wide context every command needs: config, the API
// client, the session store and the query cache. It is built once per
// invocation and passed explicitly instead of living in ambient globals.
type app struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Store
	cache   *query.Cache
}

// newApp loads configuration and wires client, session and cache together.
func newApp() (*app, error) {
	base, err := config.BaseDir()
	if err != nil {
		return nil, err
	}

	cfgPath := os.Getenv("WORKTRACKER_CONFIG")
	if cfgPath == "" {
		cfgPath = filepath.Join(base, "config.yaml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.API.URL, api.WithTimeout(cfg.API.Timeout))
	store := session.NewStore(config.TokenPath(base), client)

	return &app{
		cfg:     cfg,
		client:  client,
		session: store,
		cache:   query.New(),
	}, nil
}

// requireSession resolves the persisted token into a logged-in session, or
// fails with a hint to log in.
func (a *app) requireSession(ctx context.Context) (*model.User, error) {
	a.session.Check(ctx)
	if a.session.State() != session.StateLoggedIn {
		return nil, errors.New("not logged in (run 'worktracker login')")
	}
	return a.session.User(), nil
}

// fail prints a user-facing error and exits non-zero.
func fail(err error) {
	fmt.Fprintln(os.Stderr, api.Detail(err, err.Error()))
	os.Exit(1)
}
