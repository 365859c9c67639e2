package entity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// FetchError means a source could not be reached: network failure, timeout or a non-2xx status.
type FetchError struct {
	Source string
	URL    string
	// HTTP status code, 0 when no response was received.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: fetch %s: status %d: %v", e.Source, e.URL, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s: fetch %s: %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure looks transient.
func (e *FetchError) Retryable() bool {
	switch {
	case e.StatusCode >= 500 && e.StatusCode < 600,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode == http.StatusRequestTimeout:
		return true
	case e.StatusCode != 0:
		return false
	}

	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error

	if errors.As(e.Err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(e.Err, syscall.ECONNREFUSED) ||
		errors.Is(e.Err, syscall.ECONNRESET) ||
		errors.Is(e.Err, syscall.ETIMEDOUT) ||
		errors.Is(e.Err, syscall.ENETUNREACH)
}

// ParseError means a source answered with a payload that could not be parsed.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DataShapeError means a payload parsed fine but is semantically invalid,
// e.g. an article whose author links and avatars do not line up.
type DataShapeError struct {
	Source string
	// Identifies the offending item, usually its link or id.
	Item    string
	Field   string
	Message string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("%s: invalid %s of %q: %s", e.Source, e.Field, e.Item, e.Message)
}

func IsFetchError(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}

func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

func IsDataShapeError(err error) bool {
	var target *DataShapeError
	return errors.As(err, &target)
}
