package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ValidationError reports missing or invalid required input. It is raised
// before any request leaves the process.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NetworkError wraps a transport-level failure (DNS, refused connection,
// timeout). Its message names the likely cause instead of surfacing the raw
// transport error.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string { return e.Message }

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError represents a non-2xx response from the MoonBound API. Message is
// already resolved per the extraction priority in apiMessage, so Error
// returns it verbatim for inline display.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsStatus returns true if err (or any wrapped error) is an APIError with the
// given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// IsValidation returns true if err is a local input-validation failure, i.e.
// no request was issued.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// apiMessage resolves the user-facing message for a non-2xx response.
// Priority: a plain-text body, then the JSON "message" field, then "detail",
// else a synthesized "HTTP <status>".
func apiMessage(status int, contentType string, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Sprintf("HTTP %d", status)
	}
	if !strings.Contains(contentType, "application/json") {
		return text
	}
	if msg := gjson.GetBytes(body, "message").String(); msg != "" {
		return msg
	}
	if msg := gjson.GetBytes(body, "detail").String(); msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP %d", status)
}
