// Package errors provides shared error types for the Wikimedia API clients.
package errors

import (
	stderrors "errors"
	"fmt"
)

// RequestError indicates the upstream call itself failed: the transport returned
// an error or the response status was not 2xx. Operations pair it with their
// neutral result (0, nil or an empty list).
type RequestError struct {
	Service    string // "toolforge", "sparql", "campaigns", "commons"
	Action     string // operation name, e.g. "upload_count"
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Service, e.Action, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: request failed: %v", e.Service, e.Action, e.Err)
	}
	return fmt.Sprintf("%s %s: request failed", e.Service, e.Action)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewStatusError creates a RequestError for a non-2xx response.
func NewStatusError(service, action, url string, statusCode int) *RequestError {
	return &RequestError{
		Service:    service,
		Action:     action,
		URL:        url,
		StatusCode: statusCode,
	}
}

// DecodeError indicates a response body could not be decoded into the expected shape.
type DecodeError struct {
	Service string
	Action  string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %s: failed to decode response: %v", e.Service, e.Action, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsRequestFailure returns true if err is, or wraps, a RequestError.
func IsRequestFailure(err error) bool {
	var re *RequestError
	return stderrors.As(err, &re)
}

// IsDecode returns true if err is, or wraps, a DecodeError.
func IsDecode(err error) bool {
	var de *DecodeError
	return stderrors.As(err, &de)
}

// StatusCode extracts the HTTP status from a RequestError, or 0.
func StatusCode(err error) int {
	var re *RequestError
	if stderrors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
