package supabase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// messageFields are checked in order; the auth API uses error_description
// and msg, PostgREST uses message.
var messageFields = []string{"error_description", "msg", "message", "error"}

// APIError is a non-2xx answer from the auth or REST API.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("supabase: status %d", e.Status)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Message)
}

// Field returns a string field of the JSON error body, or "".
func (e *APIError) Field(name string) string {
	if !gjson.ValidBytes(e.Body) {
		return ""
	}
	return gjson.GetBytes(e.Body, name).String()
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Body: body}
	if gjson.ValidBytes(body) {
		for _, field := range messageFields {
			if v := gjson.GetBytes(body, field); v.Type == gjson.String && v.Str != "" {
				apiErr.Message = v.Str
				break
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Message = text
	}
	return apiErr
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether the service rejected the bearer token.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
