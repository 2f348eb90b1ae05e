package video

import (
	"errors"
	"fmt"
)

// Common errors returned by the video client.
var (
	// ErrNotFound indicates the provider has no such video or no usable transcript.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates the provider rejected the request with 429.
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with video provider")

	// ErrInvalidResponse indicates an unexpected provider response.
	ErrInvalidResponse = errors.New("invalid response from video provider")

	// ErrUnsupportedHost indicates the URL is not hosted by a known video provider.
	ErrUnsupportedHost = errors.New("unsupported video host")
)

// APIError represents a non-success HTTP status from a provider.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("video provider error (status %d): %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error indicates the resource was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
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
