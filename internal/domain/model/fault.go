package model

import (
	"fmt"
	"net/http"
)

// FetchErrorKind classifies why a page could not be retrieved.
type FetchErrorKind string

const (
	FetchTimeout    FetchErrorKind = "timeout"
	FetchConnection FetchErrorKind = "connection"
	FetchHTTPStatus FetchErrorKind = "http_status"
	FetchUnknown    FetchErrorKind = "unknown"
)

// FetchError is returned by a PageFetcher once its attempts are exhausted
// or the failure is not worth retrying.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Attempts   int
	Err        error

	retryable bool
}

// NewFetchError builds a FetchError. retryable marks transient failures.
func NewFetchError(kind FetchErrorKind, statusCode int, err error, retryable bool) *FetchError {
	return &FetchError{Kind: kind, StatusCode: statusCode, Err: err, retryable: retryable}
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchHTTPStatus:
		return fmt.Sprintf("http status error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case FetchTimeout:
		return fmt.Sprintf("timeout: %v", e.Err)
	case FetchConnection:
		return fmt.Sprintf("connection error: %v", e.Err)
	default:
		return fmt.Sprintf("unknown error: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed.
func (e *FetchError) Retryable() bool {
	return e.retryable
}
