package entrez

import (
	"errors"
	"fmt"
)

// Common errors returned by the Entrez client.
var (
	// ErrRateLimited indicates the E-utilities rate limit has been exceeded.
	ErrRateLimited = errors.New("Entrez rate limit exceeded")

	// ErrAPIError indicates a general E-utilities error.
	ErrAPIError = errors.New("Entrez API error")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Entrez")

	// ErrInvalidResponse indicates an unexpected E-utilities response.
	ErrInvalidResponse = errors.New("invalid response from Entrez")
)

// APIError represents an error reported by an E-utilities endpoint.
type APIError struct {
	StatusCode int
	Endpoint   string // "esearch" or "efetch"
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Entrez %s error (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("Entrez %s error: %s", e.Endpoint, e.Message)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
