// Package errors provides the error taxonomy of the Algorithmia client.
//
// Every failed call made through the requester surfaces as an [*Error]
// carrying a machine-readable [Code], a human-readable message and, when the
// service answered at all, the raw response (status, headers, body).
//
// # Error Codes
//
// Codes mirror the service's status and message conventions:
//   - UNAUTHORIZED: HTTP 401
//   - NOT_FOUND: HTTP 404, and HTTP 400 without a body
//   - INTERNAL_SERVER_ERROR: HTTP 500 without an algorithm stack trace
//   - API_KEY_INVALID: service message "authorization required"
//   - JSON_PARSE: service message about unparseable JSON input
//   - UNKNOWN: everything else the service reports
//
// Two codes never come from the service: NETWORK for transport failures and
// INVALID_INPUT for request bodies that cannot be encoded.
//
// # Usage
//
//	resp, err := req.Get(ctx, "/v1/data/.my/photos", nil, nil)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Directory does not exist
//	}
//
//	var apiErr *errors.Error
//	if stderrors.As(err, &apiErr) && apiErr.HasResponse() {
//	    fmt.Println(apiErr.Status, string(apiErr.Body))
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Service errors, classified from the response
	ErrCodeUnauthorized   Code = "UNAUTHORIZED"
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeInternalServer Code = "INTERNAL_SERVER_ERROR"
	ErrCodeAPIKeyInvalid  Code = "API_KEY_INVALID"
	ErrCodeJSONParse      Code = "JSON_PARSE"
	ErrCodeUnknown        Code = "UNKNOWN"

	// Client-side errors, raised before or instead of a response
	ErrCodeNetwork      Code = "NETWORK"
	ErrCodeInvalidInput Code = "INVALID_INPUT"
)

// Error is a structured error with a code, the raw response and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message

	// Raw response. Status is 0 when no response was received.
	Status int
	Header http.Header
	Body   []byte

	Cause error // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HasResponse reports whether the error carries a response from the service.
func (e *Error) HasResponse() bool {
	return e.Status != 0
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// FromResponse creates an Error that carries the raw response.
// The body is kept as-is; callers must not mutate it afterwards.
func FromResponse(code Code, message string, status int, header http.Header, body []byte) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Header:  header,
		Body:    body,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
