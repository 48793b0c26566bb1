package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	drivenoauth "github.com/custodia-labs/arrivals/internal/adapters/driven/oauth"
	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// setupDriveLoginTest points the sign-in at a fake token endpoint and
// replaces the browser with a client that follows the redirect.
func setupDriveLoginTest(t *testing.T, tokenBody string, redirect func(authURL *url.URL) url.Values) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.FormValue("code") != "4/auth-code" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`)) //nolint:errcheck
			return
		}
		w.Write([]byte(tokenBody)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	oldOpen, oldConfig, oldTimeout := openBrowser, driveOAuthConfig, driveLoginTimeout
	t.Cleanup(func() {
		openBrowser, driveOAuthConfig, driveLoginTimeout = oldOpen, oldConfig, oldTimeout
	})

	driveLoginTimeout = 5 * time.Second
	driveOAuthConfig = func(clientID, clientSecret, redirectURL string) *oauth2.Config {
		cfg := drivenoauth.DriveConfig(clientID, clientSecret, redirectURL)
		cfg.Endpoint = oauth2.Endpoint{TokenURL: srv.URL, AuthURL: srv.URL + "/auth", AuthStyle: oauth2.AuthStyleInParams}
		return cfg
	}
	openBrowser = func(raw string) error {
		u, err := url.Parse(raw)
		if err != nil {
			return err
		}
		params := redirect(u)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			target := u.Query().Get("redirect_uri") + "?" + params.Encode()
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return
			}
			if resp, err := http.DefaultClient.Do(req); err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
}

func approve(u *url.URL) url.Values {
	return url.Values{"state": {u.Query().Get("state")}, "code": {"4/auth-code"}}
}

func TestDriveLogin_SavesRefreshToken(t *testing.T) {
	ts, cleanup := setupCLITest()
	defer cleanup()
	setupDriveLoginTest(t, `{"access_token":"ya29.a","refresh_token":"1//refresh","token_type":"Bearer","expires_in":3600}`, approve)

	out, err := executeCommand(t, "settings", "drive-login", "--client-id", "client.apps.googleusercontent.com", "--client-secret", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, "client.apps.googleusercontent.com", ts.settings.set["drive.client_id"])
	assert.Equal(t, "s3cret", ts.settings.set["drive.client_secret"])
	assert.Equal(t, "1//refresh", ts.settings.set["drive.refresh_token"])
	assert.Contains(t, out, "code_challenge_method=S256")
	assert.Contains(t, out, "Refresh token saved.")
	assert.Contains(t, out, "settings set store.backend drive")
}

func TestDriveLogin_UsesStoredClient(t *testing.T) {
	ts, cleanup := setupCLITest()
	defer cleanup()
	ts.settings.settings.Store.Backend = domain.StoreBackendDrive
	ts.settings.settings.Drive.ClientID = "stored-client"
	setupDriveLoginTest(t, `{"access_token":"ya29.a","refresh_token":"1//refresh","token_type":"Bearer"}`, approve)

	out, err := executeCommand(t, "settings", "drive-login")

	require.NoError(t, err)
	assert.Contains(t, out, "client_id=stored-client")
	assert.NotContains(t, ts.settings.set, "drive.client_secret")
	assert.NotContains(t, out, "settings set store.backend drive")
}

func TestDriveLogin_RequiresClientID(t *testing.T) {
	_, cleanup := setupCLITest()
	defer cleanup()

	_, err := executeCommand(t, "settings", "drive-login")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDriveLogin_StateMismatch(t *testing.T) {
	ts, cleanup := setupCLITest()
	defer cleanup()
	setupDriveLoginTest(t, `{}`, func(*url.URL) url.Values {
		return url.Values{"state": {"forged"}, "code": {"4/auth-code"}}
	})

	_, err := executeCommand(t, "settings", "drive-login", "--client-id", "id")

	assert.ErrorContains(t, err, "state mismatch")
	assert.Empty(t, ts.settings.set)
}

func TestDriveLogin_NoRefreshToken(t *testing.T) {
	ts, cleanup := setupCLITest()
	defer cleanup()
	setupDriveLoginTest(t, `{"access_token":"ya29.a","token_type":"Bearer"}`, approve)

	_, err := executeCommand(t, "settings", "drive-login", "--client-id", "id")

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.Empty(t, ts.settings.set)
}
