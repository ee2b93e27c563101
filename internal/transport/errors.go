// SPDX-License-Identifier: MIT

package transport

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrTimeout      = errors.New("api: request timed out")
	ErrAuthRequired = errors.New("api: authentication required")
	ErrAPI          = errors.New("api: request failed")
	ErrBadResponse  = errors.New("api: invalid response format")
	ErrUnavailable  = errors.New("api: host unreachable or transport failure")
)

// APIError wraps the sentinel errors with call context. Message is the
// backend-supplied error string for structured failures; Snippet is a
// sanitized excerpt of non-JSON bodies (HTML fatal pages are never
// JSON-parsed, only excerpted).
type APIError struct {
	Sentinel    error
	Method      string
	Path        string
	Status      int
	ContentType string
	Message     string
	Snippet     string
	Err         error // nested lower-level error (e.g. net.Error)
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%v: %s %s", e.Sentinel, e.Method, e.Path)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.ContentType != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.ContentType)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Snippet != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Snippet)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}
