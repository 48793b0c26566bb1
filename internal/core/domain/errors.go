package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown catalog type or store backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrCycleInProgress indicates a reconcile cycle for the same document
	// key is already running in this process.
	ErrCycleInProgress = errors.New("reconcile cycle in progress")

	// Cycle Errors.

	// ErrSourceFetch indicates the catalog could not be fetched.
	ErrSourceFetch = errors.New("catalog fetch failed")

	// ErrStoreRead indicates the history document could not be read.
	ErrStoreRead = errors.New("history read failed")

	// ErrStoreWrite indicates the history document could not be written.
	ErrStoreWrite = errors.New("history write failed")

	// ErrMalformedHistory indicates the stored history is not a valid document.
	ErrMalformedHistory = errors.New("malformed history")

	// Authentication Errors.

	// ErrAuthRequired indicates a backend requires a token but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
