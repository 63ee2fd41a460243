package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Sentinel errors every data source maps its failures onto, so the retry
// executor and resolvers classify uniformly instead of per-call-site.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnavailable      = errors.New("unavailable")
)

// HTTPError carries a status code from the REST fallback surface.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d from %s", e.StatusCode, e.URL)
}

// ErrorClass buckets a failure for retry and fallback decisions.
type ErrorClass int

const (
	// ClassRetryable covers transient failures: network trouble, 5xx,
	// unavailable, deadline exceeded.
	ClassRetryable ErrorClass = iota
	// ClassPermission covers permission-denied and unauthenticated
	// failures. Terminal for retries, but they trigger fallback paths.
	ClassPermission
	// ClassTerminal covers everything else: validation errors, not-found,
	// malformed requests. Retrying cannot help.
	ClassTerminal
)

// Classify buckets err. Unknown errors land in ClassTerminal: retrying a
// failure we cannot name just delays the fallback path.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassTerminal
	}

	if errors.Is(err, ErrPermissionDenied) {
		return ClassPermission
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return ClassRetryable
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == 401 || httpErr.StatusCode == 403:
			return ClassPermission
		case httpErr.StatusCode == 429 || httpErr.StatusCode >= 500:
			return ClassRetryable
		default:
			return ClassTerminal
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassRetryable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ClassRetryable
	}

	// Driver errors reach us as strings; match the known phrasings
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "insufficient privilege"),
		strings.Contains(msg, "unauthenticated"),
		strings.Contains(msg, "password authentication failed"):
		return ClassPermission
	case strings.Contains(msg, "unavailable"),
		strings.Contains(msg, "deadline-exceeded"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "timeout"):
		return ClassRetryable
	}

	return ClassTerminal
}

// IsRetryable reports whether the retry executor should try again.
func IsRetryable(err error) bool {
	return Classify(err) == ClassRetryable
}

// IsPermissionDenied reports whether err is in the permission class.
func IsPermissionDenied(err error) bool {
	return Classify(err) == ClassPermission
}
