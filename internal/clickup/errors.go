package clickup

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the API failure taxonomy. The client never retries;
// every failure goes back to the caller untouched.
var (
	ErrInvalidURL      = errors.New("invalid API URL")
	ErrInvalidResponse = errors.New("invalid API response")
	ErrUnauthorized    = errors.New("unauthorized, check your API token")
	ErrNotFound        = errors.New("resource not found")
	ErrRateLimited     = errors.New("rate limited by ClickUp API")
	ErrServerError     = errors.New("ClickUp server error")

	// ErrMissingToken is returned by the OAuth exchange when a 2xx response
	// carries no access_token.
	ErrMissingToken = errors.New("no access token in response")
)

// NetworkError wraps transport-level failures (DNS, connection reset,
// timeout). The cause is kept for diagnostics.
type NetworkError struct {
	Cause   error
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request timeout: %v", e.Cause)
	}
	return fmt.Sprintf("network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// DecodeError reports a malformed body on an otherwise successful response,
// with the field path that failed when the decoder can name one.
type DecodeError struct {
	Path  string
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to decode response at %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("failed to decode response: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// statusError maps an HTTP status code to the typed taxonomy. 2xx maps to nil.
func statusError(code int) error {
	switch {
	case code >= 200 && code <= 299:
		return nil
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= 500 && code <= 599:
		return ErrServerError
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrInvalidResponse, code)
	}
}
