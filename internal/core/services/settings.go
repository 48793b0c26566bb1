package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyCatalogType        = "catalog.type"
	KeyCatalogURL         = "catalog.url"
	KeyCatalogRate        = "catalog.rate"
	KeyStoreBackend       = "store.backend"
	KeyStoreKey           = "store.key"
	KeyStoreSkipUnchanged = "store.skip_unchanged"
	KeyStoreDataDir       = "store.data_dir"
	KeyGitHubOwner        = "github.owner"
	KeyGitHubRepo         = "github.repo"
	KeyGitHubBranch       = "github.branch"
	KeyGitHubToken        = "github.token"
	KeyDriveFolderID      = "drive.folder_id"
	KeyDriveToken         = "drive.token"
	KeyDriveClientID      = "drive.client_id"
	KeyDriveClientSecret  = "drive.client_secret"
	KeyDriveRefreshToken  = "drive.refresh_token"
	KeySchedulerEnabled   = "scheduler.enabled"
	KeyReconcileEnabled   = "scheduler.catalog_reconcile.enabled"
	KeyReconcileInterval  = "scheduler.catalog_reconcile.interval"
)

// envFallbacks maps config keys to the environment variables consulted
// when the key is not set in the config file.
var envFallbacks = map[string]string{
	KeyCatalogURL:   "API_URL",
	KeyStoreKey:     "DB_FILE",
	KeyGitHubOwner:  "GH_USERNAME",
	KeyGitHubRepo:   "GH_REPO",
	KeyGitHubBranch: "GH_REPO_BRANCH",
	KeyGitHubToken:  "GH_TOKEN",
	KeyDriveToken:   "DRIVE_TOKEN",
}

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindFloat
	kindDuration
	kindCatalogType
	kindBackend
)

var settingKeys = []struct {
	key    string
	kind   keyKind
	secret bool
}{
	{KeyCatalogType, kindCatalogType, false},
	{KeyCatalogURL, kindString, false},
	{KeyCatalogRate, kindFloat, false},
	{KeyStoreBackend, kindBackend, false},
	{KeyStoreKey, kindString, false},
	{KeyStoreSkipUnchanged, kindBool, false},
	{KeyStoreDataDir, kindString, false},
	{KeyGitHubOwner, kindString, false},
	{KeyGitHubRepo, kindString, false},
	{KeyGitHubBranch, kindString, false},
	{KeyGitHubToken, kindString, true},
	{KeyDriveFolderID, kindString, false},
	{KeyDriveToken, kindString, true},
	{KeyDriveClientID, kindString, false},
	{KeyDriveClientSecret, kindString, true},
	{KeyDriveRefreshToken, kindString, true},
	{KeySchedulerEnabled, kindBool, false},
	{KeyReconcileEnabled, kindBool, false},
	{KeyReconcileInterval, kindDuration, false},
}

// IsSecretKey returns true for keys whose values must not be echoed.
func IsSecretKey(key string) bool {
	for _, k := range settingKeys {
		if k.key == key {
			return k.secret
		}
	}
	return false
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// Environment fallbacks are read with os.Getenv.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Catalog: domain.CatalogSettings{
			Type: s.getCatalogType(defaults.Catalog.Type),
			URL:  s.getString(KeyCatalogURL, defaults.Catalog.URL),
			Rate: s.getFloat(KeyCatalogRate, defaults.Catalog.Rate),
		},
		Store: domain.StoreSettings{
			Backend:       s.getBackend(defaults.Store.Backend),
			Key:           s.getString(KeyStoreKey, defaults.Store.Key),
			SkipUnchanged: s.getBool(KeyStoreSkipUnchanged, defaults.Store.SkipUnchanged),
			DataDir:       s.getString(KeyStoreDataDir, defaults.Store.DataDir),
		},
		GitHub: domain.GitHubSettings{
			Owner:  s.getString(KeyGitHubOwner, defaults.GitHub.Owner),
			Repo:   s.getString(KeyGitHubRepo, defaults.GitHub.Repo),
			Branch: s.getString(KeyGitHubBranch, defaults.GitHub.Branch),
			Token:  s.getString(KeyGitHubToken, defaults.GitHub.Token),
		},
		Drive: domain.DriveSettings{
			FolderID:     s.getString(KeyDriveFolderID, defaults.Drive.FolderID),
			Token:        s.getString(KeyDriveToken, defaults.Drive.Token),
			ClientID:     s.getString(KeyDriveClientID, defaults.Drive.ClientID),
			ClientSecret: s.getString(KeyDriveClientSecret, defaults.Drive.ClientSecret),
			RefreshToken: s.getString(KeyDriveRefreshToken, defaults.Drive.RefreshToken),
		},
	}

	return settings, nil
}

// Save persists application settings. Empty secrets are not written so
// that environment fallbacks keep working.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyCatalogType, settings.Catalog.Type.String()},
		{KeyCatalogURL, settings.Catalog.URL},
		{KeyCatalogRate, settings.Catalog.Rate},
		{KeyStoreBackend, settings.Store.Backend.String()},
		{KeyStoreKey, settings.Store.Key},
		{KeyStoreSkipUnchanged, settings.Store.SkipUnchanged},
		{KeyStoreDataDir, settings.Store.DataDir},
		{KeyGitHubOwner, settings.GitHub.Owner},
		{KeyGitHubRepo, settings.GitHub.Repo},
		{KeyGitHubBranch, settings.GitHub.Branch},
		{KeyGitHubToken, settings.GitHub.Token},
		{KeyDriveFolderID, settings.Drive.FolderID},
		{KeyDriveToken, settings.Drive.Token},
		{KeyDriveClientID, settings.Drive.ClientID},
		{KeyDriveClientSecret, settings.Drive.ClientSecret},
		{KeyDriveRefreshToken, settings.Drive.RefreshToken},
	}

	for _, v := range values {
		if str, ok := v.value.(string); ok && str == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return s.configStore.Save()
}

// Set parses value according to key and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := keyKindOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindString:
		parsed = value
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %s must be a positive duration like 30m or 1h", domain.ErrInvalidInput, key)
		}
		parsed = value
	case kindCatalogType:
		if !domain.CatalogType(value).IsValid() {
			return fmt.Errorf("%w: catalog type %q", domain.ErrUnsupportedType, value)
		}
		parsed = value
	case kindBackend:
		if !domain.StoreBackend(value).IsValid() {
			return fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, value)
		}
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return s.configStore.Save()
}

// Keys returns the settable keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// IsSecret reports whether the value of key must not be echoed.
func (s *SettingsService) IsSecret(key string) bool {
	return IsSecretKey(key)
}

// Validate checks if current settings can run a reconcile cycle.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// SchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) SchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	defaults.Enabled = s.getBool(KeySchedulerEnabled, defaults.Enabled)

	taskCfg := defaults.TaskConfigs[domain.TaskIDCatalogReconcile]
	taskCfg.Enabled = s.getBool(KeyReconcileEnabled, taskCfg.Enabled)
	if interval := s.configStore.GetString(KeyReconcileInterval); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil && d > 0 {
			taskCfg.Interval = d
		}
	}
	defaults.TaskConfigs[domain.TaskIDCatalogReconcile] = taskCfg

	return defaults
}

// Helper methods for reading config with env fallbacks and defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := strings.TrimSpace(s.configStore.GetString(key)); val != "" {
		return val
	}
	if env, ok := envFallbacks[key]; ok {
		if val := strings.TrimSpace(s.getenv(env)); val != "" {
			return val
		}
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getCatalogType(defaultVal domain.CatalogType) domain.CatalogType {
	t := domain.CatalogType(s.configStore.GetString(KeyCatalogType))
	if !t.IsValid() {
		return defaultVal
	}
	return t
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	b := domain.StoreBackend(s.configStore.GetString(KeyStoreBackend))
	if !b.IsValid() {
		return defaultVal
	}
	return b
}

func keyKindOf(key string) (keyKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return 0, false
}
