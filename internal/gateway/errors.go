// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package gateway

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrRetriesExhausted wraps the last attempt's error once every retry
// has failed. Callers receive it alongside an empty result set, never
// instead of one.
var ErrRetriesExhausted = errors.New("all retry attempts failed")

// TransportError is a network-level failure (connect, timeout, TLS).
// Always retryable.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError is a failure reported by the provider itself (5xx,
// quota, malformed response envelope). Retryable up to the attempt cap,
// then degraded to an empty result.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// DataShapeError marks one malformed place or review record. The record
// is dropped with a warning; the surrounding call succeeds.
type DataShapeError struct {
	Provider string
	Field    string
	Err      error
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("%s malformed record (%s): %v", e.Provider, e.Field, e.Err)
}

func (e *DataShapeError) Unwrap() error { return e.Err }

// IsRetryable reports whether a failed attempt should be retried.
// Transport and provider errors are retryable; data-shape errors and
// context cancellation are not. Timeouts surface as context deadline
// errors from the per-attempt context and are treated as transport
// failures, so they retry too.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	// An open breaker stays open for its whole timeout; retrying inside
	// one call cannot help.
	if errors.Is(err, gobreaker.ErrOpenState) {
		return false
	}
	var shapeErr *DataShapeError
	if errors.As(err, &shapeErr) {
		return false
	}
	return true
}
