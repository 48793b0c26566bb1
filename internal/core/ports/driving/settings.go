package driving

import "github.com/custodia-labs/arrivals/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with environment
	// fallbacks and defaults applied.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single key, validating its value, and persists it.
	Set(key, value string) error

	// Keys returns the settable keys in display order.
	Keys() []string

	// IsSecret reports whether the value of key must not be echoed.
	IsSecret(key string) bool

	// Validate checks if current settings can run a reconcile cycle.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// SchedulerConfig returns the daemon configuration.
	SchedulerConfig() domain.SchedulerConfig
}
