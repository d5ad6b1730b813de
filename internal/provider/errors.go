package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrTransient marks failures worth retrying: rate limiting, upstream
// overload, network hiccups. Everything else is treated as permanent.
var ErrTransient = errors.New("transient provider failure")

// ErrPermanent marks failures that retrying cannot fix: bad credentials,
// malformed responses, missing resources.
var ErrPermanent = errors.New("permanent provider failure")

// retryableStatus reports whether an HTTP status code indicates a failure
// that a later attempt may succeed on.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// StatusError converts a non-2xx HTTP status into a classified error.
func StatusError(provider string, status int) error {
	kind := ErrPermanent
	if retryableStatus(status) {
		kind = ErrTransient
	}
	return fmt.Errorf("%s: unexpected status %d: %w", provider, status, kind)
}

// Transient wraps err so that IsTransient reports true for it.
func Transient(provider string, err error) error {
	return fmt.Errorf("%s: %v: %w", provider, err, ErrTransient)
}

// Permanent wraps err so that retries are not attempted for it.
func Permanent(provider string, err error) error {
	return fmt.Errorf("%s: %v: %w", provider, err, ErrPermanent)
}

// IsTransient reports whether err should be retried. Network-level errors
// without an explicit classification count as transient; context
// cancellation never does.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrPermanent) {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
