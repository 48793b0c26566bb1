package domain

import (
	"fmt"
	"net/url"
)

const unknownDescription = "Unknown"

// CatalogType selects the catalog source adapter.
type CatalogType string

// Available catalog types.
const (
	// CatalogTypeJSON reads the product list endpoint.
	CatalogTypeJSON CatalogType = "json"

	// CatalogTypeFeed reads an RSS or Atom feed.
	CatalogTypeFeed CatalogType = "feed"
)

// IsValid returns true if the catalog type is recognised.
func (t CatalogType) IsValid() bool {
	switch t {
	case CatalogTypeJSON, CatalogTypeFeed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t CatalogType) String() string {
	return string(t)
}

// Description returns a human-readable description of the catalog type.
func (t CatalogType) Description() string {
	switch t {
	case CatalogTypeJSON:
		return "JSON product list"
	case CatalogTypeFeed:
		return "RSS/Atom feed"
	default:
		return unknownDescription
	}
}

// StoreBackend selects where the history document lives.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendFile keeps the document in the local data directory.
	StoreBackendFile StoreBackend = "file"

	// StoreBackendSQLite keeps the document in the local SQLite database.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendGitHub keeps the document as a file in a GitHub repository.
	StoreBackendGitHub StoreBackend = "github"

	// StoreBackendDrive keeps the document as a file in Google Drive.
	StoreBackendDrive StoreBackend = "drive"

	// StoreBackendMemory keeps the document for the life of the process.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendFile, StoreBackendSQLite, StoreBackendGitHub, StoreBackendDrive, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// IsRemote returns true if the backend is reached over the network.
func (b StoreBackend) IsRemote() bool {
	return b == StoreBackendGitHub || b == StoreBackendDrive
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendFile:
		return "Local JSON file"
	case StoreBackendSQLite:
		return "Local SQLite database"
	case StoreBackendGitHub:
		return "GitHub repository file"
	case StoreBackendDrive:
		return "Google Drive file"
	case StoreBackendMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// CatalogSettings configures the catalog source.
type CatalogSettings struct {
	// Type selects the adapter.
	Type CatalogType

	// URL is the catalog endpoint.
	URL string

	// Rate is the maximum number of requests per second.
	Rate float64
}

// StoreSettings configures the document store.
type StoreSettings struct {
	// Backend selects the adapter.
	Backend StoreBackend

	// Key names the history document within the backend.
	Key string

	// SkipUnchanged skips the write when a cycle found nothing new today.
	SkipUnchanged bool

	// DataDir holds local stores.
	DataDir string
}

// GitHubSettings configures the GitHub store.
type GitHubSettings struct {
	Owner  string
	Repo   string
	Branch string
	Token  string
}

// IsConfigured returns true if a repository and token are set.
func (g GitHubSettings) IsConfigured() bool {
	return g.Owner != "" && g.Repo != "" && g.Token != ""
}

// DriveSettings configures the Google Drive store.
type DriveSettings struct {
	// FolderID is the parent folder for the document. Empty means the root.
	FolderID string

	// Token is an OAuth access token with Drive file scope. It is used
	// only when no refresh token is configured.
	Token string

	// ClientID and ClientSecret identify the OAuth client used to sign in
	// and to refresh access tokens.
	ClientID     string
	ClientSecret string

	// RefreshToken is issued by "settings drive-login".
	RefreshToken string
}

// CanRefresh returns true if access tokens can be obtained from a refresh
// token.
func (d DriveSettings) CanRefresh() bool {
	return d.RefreshToken != "" && d.ClientID != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	Catalog CatalogSettings
	Store   StoreSettings
	GitHub  GitHubSettings
	Drive   DriveSettings
}

// DefaultDocumentKey is the document key used when none is configured.
const DefaultDocumentKey = "db.json"

// DefaultAppSettings returns settings with sensible defaults.
// The catalog URL has no default and must be configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Catalog: CatalogSettings{
			Type: CatalogTypeJSON,
			Rate: 1,
		},
		Store: StoreSettings{
			Backend: StoreBackendFile,
			Key:     DefaultDocumentKey,
		},
		GitHub: GitHubSettings{
			Branch: "main",
		},
	}
}

// Validate checks that the settings are usable for a reconcile cycle.
func (s *AppSettings) Validate() error {
	if !s.Catalog.Type.IsValid() {
		return fmt.Errorf("%w: catalog type %q", ErrUnsupportedType, s.Catalog.Type)
	}
	if s.Catalog.URL == "" {
		return fmt.Errorf("%w: catalog.url is required", ErrInvalidInput)
	}
	if u, err := url.Parse(s.Catalog.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: catalog.url %q is not an absolute URL", ErrInvalidInput, s.Catalog.URL)
	}
	if s.Catalog.Rate <= 0 {
		return fmt.Errorf("%w: catalog.rate must be positive", ErrInvalidInput)
	}
	if !s.Store.Backend.IsValid() {
		return fmt.Errorf("%w: store backend %q", ErrUnsupportedType, s.Store.Backend)
	}
	if s.Store.Key == "" {
		return fmt.Errorf("%w: store.key is required", ErrInvalidInput)
	}
	switch s.Store.Backend {
	case StoreBackendGitHub:
		if s.GitHub.Owner == "" || s.GitHub.Repo == "" {
			return fmt.Errorf("%w: github.owner and github.repo are required", ErrInvalidInput)
		}
		if s.GitHub.Token == "" {
			return fmt.Errorf("%w: github.token", ErrAuthRequired)
		}
	case StoreBackendDrive:
		if s.Drive.Token == "" && !s.Drive.CanRefresh() {
			return fmt.Errorf("%w: run 'arrivals settings drive-login' or set drive.token", ErrAuthRequired)
		}
	}
	return nil
}

// AllStoreBackends returns all available store backends.
func AllStoreBackends() []StoreBackend {
	return []StoreBackend{
		StoreBackendFile,
		StoreBackendSQLite,
		StoreBackendGitHub,
		StoreBackendDrive,
		StoreBackendMemory,
	}
}

// AllCatalogTypes returns all available catalog types.
func AllCatalogTypes() []CatalogType {
	return []CatalogType{CatalogTypeJSON, CatalogTypeFeed}
}
