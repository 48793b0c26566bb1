// Package oauth obtains and refreshes Google OAuth tokens for the Drive
// store.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// exchangeTimeout bounds a code exchange.
const exchangeTimeout = 30 * time.Second

// DriveConfig returns the OAuth client configuration for Drive file access.
func DriveConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}
}

// AuthCodeURL returns the consent page URL for a PKCE sign-in. Offline
// access with a forced prompt makes the provider issue a refresh token on
// every sign-in.
func AuthCodeURL(cfg *oauth2.Config, state, verifier string) string {
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier))
}

// ExchangeCode trades an authorization code for tokens. A response without
// a refresh token is an error since nothing could be stored.
func ExchangeCode(ctx context.Context, cfg *oauth2.Config, code, verifier string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, wrapError(err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token issued", domain.ErrAuthInvalid)
	}
	return tok, nil
}

// RefreshTokenSource returns a token source that obtains access tokens
// from refreshToken and reuses them until they expire. ctx must outlive
// the source.
func RefreshTokenSource(ctx context.Context, cfg *oauth2.Config, refreshToken string) oauth2.TokenSource {
	return &errorMappingSource{
		src: cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}),
	}
}

type errorMappingSource struct {
	src oauth2.TokenSource
}

func (s *errorMappingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, wrapError(err)
	}
	return tok, nil
}

// wrapError maps provider errors to domain errors.
func wrapError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		switch rerr.ErrorCode {
		case "invalid_grant", "invalid_client", "unauthorized_client":
			return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, rerr.ErrorCode)
		}
		if rerr.Response != nil && rerr.Response.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}
	}
	return fmt.Errorf("token request: %w", err)
}
