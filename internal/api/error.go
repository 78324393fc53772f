package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mitchellh/mapstructure"
)

// Error is the single failure shape every backend call resolves to.
// Status carries the HTTP status code; Status == 0 means no HTTP response
// was obtained at all (DNS, connection refused, broken transport).
type Error struct {
	Status  int
	Message string
	// Details holds the parsed error body as the backend sent it, or a
	// {"cause": ...} wrapper for transport failures.
	Details any
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: network error: %s", e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// DecodeDetails maps a structured error payload onto dst, for callers that
// know the backend's detail shape (e.g. field validation lists).
func (e *Error) DecodeDetails(dst any) error {
	return mapstructure.Decode(e.Details, dst)
}

// IsNotFound reports whether err is a backend 404. Lookup-style callers use
// this to branch into a create fallback instead of failing.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsTransport reports whether err never reached the backend.
func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 0
}

// messageFromBody extracts a human-readable message from a parsed error
// body, trying the conventional fields in priority order.
func messageFromBody(body any, statusText string) string {
	if m, ok := body.(map[string]any); ok {
		if s, ok := m["message"].(string); ok && s != "" {
			return s
		}
		if s, ok := m["detail"].(string); ok && s != "" {
			return s
		}
	}
	if statusText != "" {
		return statusText
	}
	return "Request failed"
}
