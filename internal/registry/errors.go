package registry

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a structured error response from the registry.
// Callers can use errors.As to extract the structured information:
//
//	var apiErr *registry.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.StatusCode == http.StatusUnauthorized { ... }
//	}
type APIError struct {
	// Code is the registry error code (e.g., "unauthorized", "not_found").
	Code string `json:"code"`
	// Message is the human-readable error description from the server.
	Message string `json:"message"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a registry rejection of the session.
// Classification is keyed on the structured status code, never on message text.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}
