package auth

import (
	"context"
	"fmt"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
)

// Ensure StaticTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*StaticTokenProvider)(nil)

// StaticTokenProvider serves a token taken from settings or the
// environment. Static tokens are never refreshed.
type StaticTokenProvider struct {
	token  string
	method domain.AuthMethod
}

// NewPATProvider creates a provider for a personal access token.
func NewPATProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token, method: domain.AuthMethodPAT}
}

// NewOAuthProvider creates a provider for a pre-issued OAuth access token.
func NewOAuthProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token, method: domain.AuthMethodOAuth}
}

// GetToken returns the token, or domain.ErrAuthRequired when none is set.
func (p *StaticTokenProvider) GetToken(_ context.Context) (string, error) {
	if p.token == "" {
		return "", fmt.Errorf("%w: no %s token configured", domain.ErrAuthRequired, p.method)
	}
	return p.token, nil
}

// AuthMethod returns the configured method.
func (p *StaticTokenProvider) AuthMethod() domain.AuthMethod {
	return p.method
}

// IsAuthenticated returns true if a token is set.
func (p *StaticTokenProvider) IsAuthenticated() bool {
	return p.token != ""
}
