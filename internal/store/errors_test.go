package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"permission sentinel", fmt.Errorf("write: %w", ErrPermissionDenied), ClassPermission},
		{"unavailable sentinel", fmt.Errorf("read: %w", ErrUnavailable), ClassRetryable},
		{"deadline exceeded", context.DeadlineExceeded, ClassRetryable},
		{"http 503", &HTTPError{StatusCode: 503, URL: "http://x/api/products"}, ClassRetryable},
		{"http 429", &HTTPError{StatusCode: 429, URL: "http://x/api/products"}, ClassRetryable},
		{"http 403", &HTTPError{StatusCode: 403, URL: "http://x/api/products"}, ClassPermission},
		{"http 401", &HTTPError{StatusCode: 401, URL: "http://x/api/products"}, ClassPermission},
		{"http 400", &HTTPError{StatusCode: 400, URL: "http://x/api/products"}, ClassTerminal},
		{"driver permission string", errors.New("pq: permission denied for table documents"), ClassPermission},
		{"driver unavailable string", errors.New("dial tcp: connection refused"), ClassRetryable},
		{"grpc-ish deadline string", errors.New("rpc error: code = deadline-exceeded"), ClassRetryable},
		{"validation error", errors.New("field Rate must be numeric"), ClassTerminal},
		{"not found", fmt.Errorf("doc: %w", ErrNotFound), ClassTerminal},
	}

	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("%s: Classify(%v) = %d, want %d", tc.name, tc.err, got, tc.want)
		}
	}
}

func TestClassifyHelpers(t *testing.T) {
	if !IsRetryable(ErrUnavailable) {
		t.Error("ErrUnavailable should be retryable")
	}
	if IsRetryable(ErrPermissionDenied) {
		t.Error("Permission errors must short-circuit retries")
	}
	if !IsPermissionDenied(fmt.Errorf("kv set: %w", ErrPermissionDenied)) {
		t.Error("Wrapped permission error should still classify as permission")
	}
}
