package drive

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// wrapError attaches the matching domain error to a Google API error.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w", operation, err)
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w: %w", operation, domain.ErrAuthInvalid, err)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w: %w", operation, domain.ErrNotFound, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: %w", operation, domain.ErrRateLimited, err)
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
