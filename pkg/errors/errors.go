// Package errors defines the error types returned by the client, option and model packages.
package errors

import (
	"fmt"
	"strings"

	"github.com/jamesprial/go-redd/pkg/types"
)

// bodyPreviewLimit caps how much of a response body is echoed in error messages.
const bodyPreviewLimit = 200

// joinParts joins error message parts with the specified separator.
func joinParts(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// ConfigError indicates a problem with an option value at construction time.
type ConfigError struct {
	// Field contains the name of the option that caused the error
	Field string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, msg)
	}
	return fmt.Sprintf("config error: %s", msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// StateError indicates an operation was attempted on a value that cannot perform it.
type StateError struct {
	// Operation is the name of the operation that was attempted
	Operation string
	// Message contains the detailed error message
	Message string
}

func (e *StateError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("state error during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("state error: %s", e.Message)
}

// RequestError indicates the request never produced a response (transport failure,
// cancelled context, malformed URL).
type RequestError struct {
	// Operation is the HTTP verb or client operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("request error: %s", msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ResponseError is returned when the server answered but the answer cannot be used.
// It carries the raw response for diagnostics.
type ResponseError struct {
	// Response is the raw response that triggered the error
	Response *types.Response
	// Message contains the detailed error message
	Message string
}

func (e *ResponseError) Error() string {
	var parts []string
	parts = append(parts, "response error")

	if e.Response != nil && e.Response.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status code %d", e.Response.StatusCode))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Response != nil && len(e.Response.Body) > 0 {
		parts = append(parts, fmt.Sprintf("body: %q", preview(e.Response.Body)))
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + ": " + joinParts(parts[1:], ", ")
}

// StatusCode returns the HTTP status of the response, or 0 when none is attached.
func (e *ResponseError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Retryable reports whether the failure was a server error (status 500-599).
// Client errors, authentication failures included, are never retryable.
// Nothing in this module retries; the classification is for callers.
func (e *ResponseError) Retryable() bool {
	code := e.StatusCode()
	return code >= 500 && code < 600
}

// JSONError is a ResponseError raised when a response body is not valid JSON.
// errors.As matches a *JSONError against both *JSONError and *ResponseError.
type JSONError struct {
	ResponseError
	// Cause is the error reported by the JSON parser
	Cause error
}

// NewJSONError builds a JSONError for the given response and parser failure.
func NewJSONError(resp *types.Response, cause error) *JSONError {
	msg := "invalid JSON"
	if cause != nil {
		msg = "invalid JSON: " + cause.Error()
	}
	return &JSONError{
		ResponseError: ResponseError{Response: resp, Message: msg},
		Cause:         cause,
	}
}

func (e *JSONError) Error() string {
	return "json " + e.ResponseError.Error()
}

// Body returns the raw, unparsed response body.
func (e *JSONError) Body() string {
	return e.Response.Text()
}

func (e *JSONError) Unwrap() error {
	return e.Cause
}

// As lets errors.As treat a JSONError as its embedded ResponseError.
func (e *JSONError) As(target any) bool {
	if t, ok := target.(**ResponseError); ok {
		*t = &e.ResponseError
		return true
	}
	return false
}

// AttributeError is returned when a model does not carry the requested attribute.
type AttributeError struct {
	// Model names the model kind that was queried
	Model string
	// Name is the attribute that was requested
	Name string
}

func (e *AttributeError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("attribute error: %s has no attribute %q", e.Model, e.Name)
	}
	return fmt.Sprintf("attribute error: no attribute %q", e.Name)
}

func preview(body []byte) string {
	if len(body) <= bodyPreviewLimit {
		return string(body)
	}
	return string(body[:bodyPreviewLimit]) + "..."
}
