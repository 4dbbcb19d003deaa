// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP retry and backoff helpers shared by every
// component that talks to the network.
package httputil

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"time"
)

// BackoffPolicy computes the wait before retry attempt n (0-based). Both
// retry layers in the system are expressed through this interface so each
// can be unit-tested with injected attempt indices instead of real clocks.
type BackoffPolicy interface {
	Delay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay each attempt: Factor * 2^attempt.
// It is the transport-level policy applied to transient HTTP failures.
type ExponentialBackoff struct {
	Factor time.Duration
}

// Delay returns Factor * 2^attempt.
func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return time.Duration(math.Pow(2, float64(attempt))) * b.Factor
}

// ConstantBackoff waits the same duration before every attempt. It is the
// application-level policy used between checksum-retry downloads.
type ConstantBackoff struct {
	Pause time.Duration
}

// Delay returns Pause regardless of attempt.
func (b ConstantBackoff) Delay(int) time.Duration {
	return b.Pause
}

// DefaultMaxRetries is used when callers pass a non-positive retry count.
const DefaultMaxRetries = 5

// DoWithRetry executes an HTTP request, retrying transient failures with
// the given backoff policy. Transient means: connection errors, request
// timeouts, and 5xx or 429 responses. Definitive responses (2xx-4xx other
// than 429) are returned to the caller immediately; a 404 is never retried.
//
// On each retried response the body is drained and closed before sleeping.
// If the context is cancelled during a backoff wait the function returns
// ctx.Err(). After exhausting retries the last response (or error) is
// returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, backoff BackoffPolicy) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))

		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= maxRetries {
			return resp, err
		}

		if err != nil && !retryableError(ctx, err) {
			return nil, err
		}

		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff.Delay(attempt)):
		}
	}
}

// retryableStatus reports whether a response status indicates a transient
// server-side condition.
func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

// retryableError reports whether a request error is worth retrying.
// Cancellation of the caller's context is final. Per-request timeouts are
// transient; they wrap context.DeadlineExceeded, so the timeout check must
// come before the context sentinels.
func retryableError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// url.Error wraps connection resets, refused connections, DNS
	// failures; all transient from the caller's point of view.
	return true
}

// IsTimeout reports whether err is a network timeout.
func IsTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
