package domain

// AuthMethod identifies how a backend authenticates.
type AuthMethod string

// Supported authentication methods.
const (
	// AuthMethodPAT is a personal access token, as used by the GitHub store.
	AuthMethodPAT AuthMethod = "pat"

	// AuthMethodOAuth is a pre-issued OAuth access token, as used by the Drive store.
	AuthMethodOAuth AuthMethod = "oauth"
)

// String returns the string representation.
func (m AuthMethod) String() string {
	return string(m)
}
