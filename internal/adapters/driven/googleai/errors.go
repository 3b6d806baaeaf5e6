package googleai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// StatusCode returns the HTTP status of a Google API error, or 0.
func StatusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsRateLimited returns true if the error indicates rate limiting or exhausted quota.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// Message extracts a readable message from a Google API error.
func Message(err error) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return fmt.Sprintf("status %d: %s", gerr.Code, gerr.Message)
	}
	return err.Error()
}

// WrapError wraps err with kind and adds a rate limit marker so callers
// can match on domain errors. Generation deadlines map to ErrGenerationTimeout.
func WrapError(kind error, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(kind, domain.ErrGeneration) && errors.Is(err, context.DeadlineExceeded):
		return domain.GenerationFailure("gemini", err)
	case IsRateLimited(err):
		return fmt.Errorf("%w: %w: gemini: %s", kind, domain.ErrRateLimited, Message(err))
	case IsUnauthorized(err):
		return fmt.Errorf("%w: gemini: unauthorised (check %s): %s",
			kind, domain.AIProviderGemini.APIKeyEnv(), Message(err))
	default:
		return fmt.Errorf("%w: gemini: %w", kind, err)
	}
}
