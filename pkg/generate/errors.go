package generate

import (
	"fmt"
	"time"
)

// ProviderError represents a failure reported by the upstream model
// provider. It includes the HTTP status code when one is available.
type ProviderError struct {
	// Provider is the name of the generator that returned the error.
	Provider string

	// StatusCode is the upstream HTTP status code (0 if not applicable).
	StatusCode int

	// Message is the error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents a generation request that exceeded its bounded
// deadline.
type TimeoutError struct {
	// Provider is the name of the generator where the timeout occurred.
	Provider string

	// Timeout is the configured deadline.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}
