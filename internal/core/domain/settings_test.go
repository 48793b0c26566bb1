package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogType_IsValid(t *testing.T) {
	assert.True(t, CatalogTypeJSON.IsValid())
	assert.True(t, CatalogTypeFeed.IsValid())
	assert.False(t, CatalogType("").IsValid())
	assert.False(t, CatalogType("xml").IsValid())
	assert.Equal(t, unknownDescription, CatalogType("xml").Description())
}

func TestStoreBackend_IsValid(t *testing.T) {
	for _, b := range AllStoreBackends() {
		assert.True(t, b.IsValid(), b)
		assert.NotEqual(t, unknownDescription, b.Description())
	}
	assert.False(t, StoreBackend("s3").IsValid())
	assert.True(t, StoreBackendGitHub.IsRemote())
	assert.True(t, StoreBackendDrive.IsRemote())
	assert.False(t, StoreBackendFile.IsRemote())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, CatalogTypeJSON, s.Catalog.Type)
	assert.Equal(t, 1.0, s.Catalog.Rate)
	assert.Equal(t, StoreBackendFile, s.Store.Backend)
	assert.Equal(t, DefaultDocumentKey, s.Store.Key)
	assert.False(t, s.Store.SkipUnchanged)
	assert.Equal(t, "main", s.GitHub.Branch)
}

func TestAppSettings_Validate(t *testing.T) {
	valid := func() AppSettings {
		s := DefaultAppSettings()
		s.Catalog.URL = "https://shop.example/api/products"
		return s
	}

	tests := []struct {
		name    string
		mutate  func(*AppSettings)
		wantErr error
	}{
		{"defaults with url", func(*AppSettings) {}, nil},
		{"missing url", func(s *AppSettings) { s.Catalog.URL = "" }, ErrInvalidInput},
		{"relative url", func(s *AppSettings) { s.Catalog.URL = "/api" }, ErrInvalidInput},
		{"bad catalog type", func(s *AppSettings) { s.Catalog.Type = "xml" }, ErrUnsupportedType},
		{"zero rate", func(s *AppSettings) { s.Catalog.Rate = 0 }, ErrInvalidInput},
		{"bad backend", func(s *AppSettings) { s.Store.Backend = "s3" }, ErrUnsupportedType},
		{"missing key", func(s *AppSettings) { s.Store.Key = "" }, ErrInvalidInput},
		{"github without repo", func(s *AppSettings) { s.Store.Backend = StoreBackendGitHub }, ErrInvalidInput},
		{"github without token", func(s *AppSettings) {
			s.Store.Backend = StoreBackendGitHub
			s.GitHub.Owner = "octo"
			s.GitHub.Repo = "plants"
		}, ErrAuthRequired},
		{"github configured", func(s *AppSettings) {
			s.Store.Backend = StoreBackendGitHub
			s.GitHub = GitHubSettings{Owner: "octo", Repo: "plants", Branch: "main", Token: "ghp_x"}
		}, nil},
		{"drive without token", func(s *AppSettings) { s.Store.Backend = StoreBackendDrive }, ErrAuthRequired},
		{"drive refresh token without client", func(s *AppSettings) {
			s.Store.Backend = StoreBackendDrive
			s.Drive.RefreshToken = "1//refresh"
		}, ErrAuthRequired},
		{"drive with refresh token", func(s *AppSettings) {
			s.Store.Backend = StoreBackendDrive
			s.Drive = DriveSettings{ClientID: "client.apps.googleusercontent.com", RefreshToken: "1//refresh"}
		}, nil},
		{"drive with access token", func(s *AppSettings) {
			s.Store.Backend = StoreBackendDrive
			s.Drive.Token = "ya29.token"
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGitHubSettings_IsConfigured(t *testing.T) {
	assert.False(t, GitHubSettings{}.IsConfigured())
	assert.True(t, GitHubSettings{Owner: "o", Repo: "r", Token: "t"}.IsConfigured())
}
