package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch did not produce a payload.
type Kind int

const (
	// NetworkFailure covers DNS, TLS, connection and timeout errors.
	NetworkFailure Kind = iota + 1
	// UnexpectedStatus is a terminal response other than 200 OK.
	UnexpectedStatus
	// TooManyRedirects means the redirect chain exceeded the configured cap.
	TooManyRedirects
	// FilesystemFailure means the payload arrived but could not be persisted.
	FilesystemFailure
)

func (k Kind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case UnexpectedStatus:
		return "unexpected status"
	case TooManyRedirects:
		return "too many redirects"
	case FilesystemFailure:
		return "filesystem failure"
	}
	return "unknown"
}

// Error is returned for every failed fetch. Callers should prefer the predicate
// functions (IsNetworkFailure, IsUnexpectedStatus, ...) over asserting on this type.
type Error struct {
	kind       Kind
	url        string
	statusCode int
	err        error
}

func (e *Error) Error() string {
	switch {
	case e.kind == UnexpectedStatus:
		return fmt.Sprintf("fetch %s: %s: HTTP %d", e.url, e.kind, e.statusCode)
	case e.err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.url, e.kind, e.err)
	}
	return fmt.Sprintf("fetch %s: %s", e.url, e.kind)
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the failure classification.
func (e *Error) Kind() Kind { return e.kind }

// URL returns the URL originally requested, before any redirect.
func (e *Error) URL() string { return e.url }

// StatusCode returns the terminal HTTP status, or 0 when no response was received.
func (e *Error) StatusCode() int { return e.statusCode }

func newError(kind Kind, url string, status int, err error) *Error {
	return &Error{kind: kind, url: url, statusCode: status, err: err}
}

// Filesystem wraps a persist error for url so it reports as FilesystemFailure.
func Filesystem(url string, err error) *Error {
	return newError(FilesystemFailure, url, 0, err)
}

// KindOf returns the Kind carried by err, or 0 when err is not a fetch error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind
	}
	return 0
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.statusCode
	}
	return 0
}

// IsNetworkFailure reports whether err is a transport-level fetch failure.
func IsNetworkFailure(err error) bool { return KindOf(err) == NetworkFailure }

// IsUnexpectedStatus reports whether err is a non-200 terminal response.
func IsUnexpectedStatus(err error) bool { return KindOf(err) == UnexpectedStatus }

// IsTooManyRedirects reports whether err is a redirect-cap failure.
func IsTooManyRedirects(err error) bool { return KindOf(err) == TooManyRedirects }

// IsFilesystemFailure reports whether err is a persist failure.
func IsFilesystemFailure(err error) bool { return KindOf(err) == FilesystemFailure }
