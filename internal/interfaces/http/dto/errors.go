package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeConfiguration is used when the service is missing upstream credentials
	ErrCodeConfiguration = "ERR_CONFIGURATION"
)

// Input error codes
const (
	// ErrCodeValidation is used for request field validation failures
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeMethodNotAllowed is used when the HTTP method does not match the route
	ErrCodeMethodNotAllowed = "ERR_METHOD_NOT_ALLOWED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when no order matches the lookup
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Upstream error codes
const (
	// ErrCodeUpstreamUnavailable is used when the fulfillment platform cannot be reached
	ErrCodeUpstreamUnavailable = "ERR_UPSTREAM_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:      http.StatusInternalServerError,
	ErrCodeConfiguration: http.StatusInternalServerError,

	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeMethodNotAllowed: http.StatusMethodNotAllowed,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeUpstreamUnavailable: http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
