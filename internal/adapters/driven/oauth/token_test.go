package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

func tokenServer(t *testing.T, handler func(form url.Values) (int, string)) *oauth2.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseForm()) {
			return
		}
		status, body := handler(r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	cfg := DriveConfig("client-id", "client-secret", "http://127.0.0.1:9999/callback")
	cfg.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	return cfg
}

func TestDriveConfig(t *testing.T) {
	cfg := DriveConfig("id", "secret", "http://127.0.0.1:1/callback")

	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/drive.file"}, cfg.Scopes)
	assert.Contains(t, cfg.Endpoint.TokenURL, "googleapis.com")
}

func TestAuthCodeURL(t *testing.T) {
	cfg := DriveConfig("id", "secret", "http://127.0.0.1:1/callback")

	raw := AuthCodeURL(cfg, "state-1", oauth2.GenerateVerifier())

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "http://127.0.0.1:1/callback", q.Get("redirect_uri"))
}

func TestExchangeCode(t *testing.T) {
	var form url.Values
	cfg := tokenServer(t, func(f url.Values) (int, string) {
		form = f
		return http.StatusOK, `{"access_token":"ya29.access","refresh_token":"1//refresh","token_type":"Bearer","expires_in":3600}`
	})

	tok, err := ExchangeCode(context.Background(), cfg, "4/code", "verifier-123")

	require.NoError(t, err)
	assert.Equal(t, "ya29.access", tok.AccessToken)
	assert.Equal(t, "1//refresh", tok.RefreshToken)
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "4/code", form.Get("code"))
	assert.Equal(t, "verifier-123", form.Get("code_verifier"))
	assert.Equal(t, "client-id", form.Get("client_id"))
}

func TestExchangeCode_NoRefreshToken(t *testing.T) {
	cfg := tokenServer(t, func(url.Values) (int, string) {
		return http.StatusOK, `{"access_token":"ya29.access","token_type":"Bearer","expires_in":3600}`
	})

	_, err := ExchangeCode(context.Background(), cfg, "4/code", "v")

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestExchangeCode_InvalidGrant(t *testing.T) {
	cfg := tokenServer(t, func(url.Values) (int, string) {
		return http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Bad Request"}`
	})

	_, err := ExchangeCode(context.Background(), cfg, "4/code", "v")

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestRefreshTokenSource(t *testing.T) {
	calls := 0
	cfg := tokenServer(t, func(f url.Values) (int, string) {
		calls++
		assert.Equal(t, "refresh_token", f.Get("grant_type"))
		assert.Equal(t, "1//refresh", f.Get("refresh_token"))
		return http.StatusOK, `{"access_token":"ya29.fresh","token_type":"Bearer","expires_in":3600}`
	})

	ts := RefreshTokenSource(context.Background(), cfg, "1//refresh")

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "ya29.fresh", tok.AccessToken)

	_, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "a valid token must be reused")
}

func TestRefreshTokenSource_Revoked(t *testing.T) {
	cfg := tokenServer(t, func(url.Values) (int, string) {
		return http.StatusBadRequest, `{"error":"invalid_grant"}`
	})

	_, err := RefreshTokenSource(context.Background(), cfg, "1//revoked").Token()

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestRefreshTokenSource_RateLimited(t *testing.T) {
	cfg := tokenServer(t, func(url.Values) (int, string) {
		return http.StatusTooManyRequests, `{"error":"rate_limit_exceeded"}`
	})

	_, err := RefreshTokenSource(context.Background(), cfg, "1//r").Token()

	assert.ErrorIs(t, err, domain.ErrRateLimited)
}
