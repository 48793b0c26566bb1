// Package wiring builds the application from settings: it selects the
// catalog source and the document store and connects them to the core
// services.
package wiring

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/arrivals/internal/adapters/driven/auth"
	"github.com/custodia-labs/arrivals/internal/adapters/driven/catalog/feed"
	"github.com/custodia-labs/arrivals/internal/adapters/driven/catalog/jsonapi"
	configfile "github.com/custodia-labs/arrivals/internal/adapters/driven/config/file"
	"github.com/custodia-labs/arrivals/internal/adapters/driven/oauth"
	"github.com/custodia-labs/arrivals/internal/adapters/driven/storage/drive"
	storagefile "github.com/custodia-labs/arrivals/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/arrivals/internal/adapters/driven/storage/github"
	"github.com/custodia-labs/arrivals/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/arrivals/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/arrivals/internal/adapters/driving/cli"
	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
	"github.com/custodia-labs/arrivals/internal/core/services"
	"github.com/custodia-labs/arrivals/internal/logger"
)

// DefaultDataDir returns $XDG_DATA_HOME/arrivals.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "arrivals")
}

// Options configures Build.
type Options struct {
	// ConfigDir holds config.toml. Empty selects the XDG default.
	ConfigDir string

	// GitHubBaseURL overrides the GitHub API endpoint.
	GitHubBaseURL string
}

// App holds the wired services.
type App struct {
	ConfigStore *configfile.ConfigStore
	Settings    *services.SettingsService
	Tracker     *services.SnapshotTracker

	// The fields below are nil when SetupErr is set.
	Reconciler *services.ReconcileService
	History    *services.HistoryService
	Scheduler  *services.Scheduler
	Watcher    *configfile.Watcher

	// SetupErr explains why the reconcile services could not be built.
	SetupErr error

	closers []func() error
}

// Build loads settings and wires every service they allow. Only a broken
// config file is fatal; incomplete settings are reported in SetupErr so
// that the settings commands keep working.
func Build(ctx context.Context, opts Options) (*App, error) {
	configStore, err := configfile.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	app := &App{
		ConfigStore: configStore,
		Settings:    services.NewSettingsService(configStore),
		Tracker:     services.NewSnapshotTracker(),
	}

	settings, err := app.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		app.SetupErr = err
		return app, nil
	}

	if err := app.wire(ctx, settings, opts); err != nil {
		app.Close() //nolint:errcheck
		app.closers = nil
		app.SetupErr = err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context, settings *domain.AppSettings, opts Options) error {
	source, err := NewCatalogSource(settings.Catalog)
	if err != nil {
		return err
	}

	docs, runs, err := a.newStores(ctx, settings, opts)
	if err != nil {
		return err
	}

	logger.Debug("Catalog %s at %s, store %s key %s",
		settings.Catalog.Type, settings.Catalog.URL, settings.Store.Backend, settings.Store.Key)

	a.Reconciler = services.NewReconcileService(source, docs, settings.Store.Key,
		services.WithSkipUnchanged(settings.Store.SkipUnchanged))
	a.History = services.NewHistoryService(docs, settings.Store.Key)
	a.Scheduler = services.NewScheduler(a.Settings.SchedulerConfig(), runs, a.Reconciler, a.Tracker)
	a.Watcher = configfile.NewWatcher(a.ConfigStore, a.reloadConfig)
	return nil
}

// reloadConfig applies a changed config file to the running scheduler.
func (a *App) reloadConfig() {
	a.Scheduler.UpdateConfig(a.Settings.SchedulerConfig())
	logger.Info("Configuration reloaded; store and catalog changes apply after a restart")
}

// NewCatalogSource builds the catalog adapter selected by settings.
func NewCatalogSource(cfg domain.CatalogSettings) (driven.CatalogSource, error) {
	switch cfg.Type {
	case domain.CatalogTypeJSON:
		return jsonapi.New(cfg.URL, jsonapi.WithRate(cfg.Rate))
	case domain.CatalogTypeFeed:
		return feed.New(cfg.URL, cfg.Rate)
	default:
		return nil, fmt.Errorf("%w: catalog type %q", domain.ErrUnsupportedType, cfg.Type)
	}
}

// newStores builds the document store and the run log. The run log is
// always local: it lives in SQLite unless the backend is memory.
func (a *App) newStores(
	ctx context.Context,
	settings *domain.AppSettings,
	opts Options,
) (driven.DocumentStore, driven.SchedulerStore, error) {
	backend := settings.Store.Backend
	if backend == domain.StoreBackendMemory {
		return memory.NewDocumentStore(), memory.NewSchedulerStore(), nil
	}

	dataDir := settings.Store.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, err
	}
	a.closers = append(a.closers, db.Close)

	var docs driven.DocumentStore
	switch backend {
	case domain.StoreBackendSQLite:
		docs = db.DocumentStore()
	case domain.StoreBackendFile:
		docs, err = storagefile.NewStore(dataDir)
	case domain.StoreBackendGitHub:
		client := github.NewClient(github.Config{
			Owner:   settings.GitHub.Owner,
			Repo:    settings.GitHub.Repo,
			Branch:  settings.GitHub.Branch,
			BaseURL: opts.GitHubBaseURL,
		}, auth.NewPATProvider(settings.GitHub.Token))
		docs = github.NewStore(client)
	case domain.StoreBackendDrive:
		svc, svcErr := drive.NewService(ctx, driveTokenSource(ctx, settings.Drive))
		if svcErr != nil {
			return nil, nil, fmt.Errorf("connecting to Google Drive: %w", svcErr)
		}
		docs = drive.NewStore(svc, settings.Drive.FolderID)
	default:
		err = fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, backend)
	}
	if err != nil {
		return nil, nil, err
	}
	return docs, db.SchedulerStore(), nil
}

// driveTokenSource prefers the refresh token issued by drive-login over a
// static access token.
func driveTokenSource(ctx context.Context, cfg domain.DriveSettings) oauth2.TokenSource {
	if cfg.CanRefresh() {
		oauthCfg := oauth.DriveConfig(cfg.ClientID, cfg.ClientSecret, "")
		return oauth.RefreshTokenSource(ctx, oauthCfg, cfg.RefreshToken)
	}
	return auth.NewTokenSource(ctx, auth.NewOAuthProvider(cfg.Token))
}

// Seed loads the stored history into the snapshot tracker.
func (a *App) Seed(ctx context.Context) error {
	if a.History == nil {
		return nil
	}
	return a.History.Seed(ctx, a.Tracker)
}

// Services returns the ports for the command line.
func (a *App) Services() cli.Services {
	s := cli.Services{
		Snapshot: a.Tracker,
		Observer: a.Tracker,
		Settings: a.Settings,
		Seeder:   a,
		SetupErr: a.SetupErr,
	}
	// Typed nils must not leak into interfaces.
	if a.Reconciler != nil {
		s.Reconciler = a.Reconciler
		s.History = a.History
		s.Scheduler = a.Scheduler
		s.Watcher = a.Watcher
	}
	return s
}

// Close releases every resource opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
