// Package auth provides driven.TokenProvider implementations for the
// remote store backends and an adapter to oauth2.TokenSource.
package auth
