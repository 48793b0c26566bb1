package driven

import (
	"context"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// TokenProvider provides access tokens for authenticated store backends.
type TokenProvider interface {
	// GetToken returns the access token.
	// Returns empty string for backends that need no credentials.
	GetToken(ctx context.Context) (string, error)

	// AuthMethod returns the authentication method (pat, oauth, none).
	AuthMethod() domain.AuthMethod

	// IsAuthenticated returns true if a token is available.
	// Always true for NullTokenProvider.
	IsAuthenticated() bool
}
