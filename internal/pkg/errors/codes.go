package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Auth errors (2000-2999)
	ErrAuthMissingCredentials = 2000
	ErrAuthInvalidCredentials = 2001
	ErrAuthRegisterFailed     = 2002
	ErrAuthWeakPassword       = 2003
	ErrAuthPasswordMismatch   = 2004
	ErrAuthSessionExpired     = 2005
	ErrAuthNotConfigured      = 2006
	ErrAuthMissingFields      = 2007

	// Catalog errors (3000-3999)
	ErrModelMissingFields       = 3000
	ErrModelScoreOutOfRange     = 3001
	ErrModelInvalidCapabilities = 3002
	ErrModelNotFound            = 3003
	ErrCompareSelectionRequired = 3004
	ErrCompareSameModel         = 3005
	ErrModelLoadFailed          = 3006
	ErrModelCreateFailed        = 3007
	ErrModelUpdateFailed        = 3008
	ErrModelDeleteFailed        = 3009
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Auth errors
	ErrAuthMissingCredentials: {ErrAuthMissingCredentials, http.StatusBadRequest, "Email and password are required"},
	ErrAuthInvalidCredentials: {ErrAuthInvalidCredentials, http.StatusUnauthorized, "Login failed. Check your email and password."},
	ErrAuthRegisterFailed:     {ErrAuthRegisterFailed, http.StatusBadRequest, "Registration failed. Please try again."},
	ErrAuthWeakPassword:       {ErrAuthWeakPassword, http.StatusBadRequest, "Password must be at least 6 characters"},
	ErrAuthPasswordMismatch:   {ErrAuthPasswordMismatch, http.StatusBadRequest, "Password and confirmation do not match"},
	ErrAuthSessionExpired:     {ErrAuthSessionExpired, http.StatusUnauthorized, "Session expired. Please log in again."},
	ErrAuthNotConfigured:      {ErrAuthNotConfigured, http.StatusServiceUnavailable, "Auth service is not configured. Set supabase.url and supabase.anon_key."},
	ErrAuthMissingFields:      {ErrAuthMissingFields, http.StatusBadRequest, "All fields are required"},

	// Catalog errors
	ErrModelMissingFields:       {ErrModelMissingFields, http.StatusBadRequest, "All required fields must be filled"},
	ErrModelScoreOutOfRange:     {ErrModelScoreOutOfRange, http.StatusBadRequest, "Benchmark score must be between 0-100"},
	ErrModelInvalidCapabilities: {ErrModelInvalidCapabilities, http.StatusBadRequest, "Capabilities must be valid JSON"},
	ErrModelNotFound:            {ErrModelNotFound, http.StatusNotFound, "Model not found"},
	ErrCompareSelectionRequired: {ErrCompareSelectionRequired, http.StatusBadRequest, "Pick 2 models to compare"},
	ErrCompareSameModel:         {ErrCompareSameModel, http.StatusBadRequest, "Pick 2 different models"},
	ErrModelLoadFailed:          {ErrModelLoadFailed, http.StatusBadGateway, "Failed to load models"},
	ErrModelCreateFailed:        {ErrModelCreateFailed, http.StatusBadGateway, "Failed to add model"},
	ErrModelUpdateFailed:        {ErrModelUpdateFailed, http.StatusBadGateway, "Failed to update model"},
	ErrModelDeleteFailed:        {ErrModelDeleteFailed, http.StatusBadGateway, "Failed to delete model"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
