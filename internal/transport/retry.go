package transport

import (
	"context"
	"errors"
	"net"
	"time"
)

// RetryPolicy controls how many times a request is attempted and how
// long to pause between attempts. The delay is fixed rather than
// exponential: the upstream source fails in short bursts, and a second
// attempt one second later usually lands on a healthy node.
type RetryPolicy struct {
	MaxAttempts       int
	Delay             time.Duration
	PerAttemptTimeout time.Duration
}

// DefaultRetryPolicy matches the source's observed failure profile:
// three attempts, one second apart, ten seconds per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		Delay:             time.Second,
		PerAttemptTimeout: 10 * time.Second,
	}
}

// retryable reports whether a response status warrants another attempt.
// Server-side failures and auth rejections are worth retrying (auth
// after the session has been refreshed); other client errors are not.
func retryable(status int) bool {
	if status >= 500 {
		return true
	}
	return status == 401 || status == 403
}

// wait sleeps for the policy delay unless the context is cancelled
// first, in which case it returns the context error.
func (p RetryPolicy) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.Delay):
		return nil
	}
}

// isRetryableError reports whether a transport-level error (as opposed
// to an HTTP status) is worth another attempt: timeouts and connection
// failures are, malformed URLs and cancelled contexts are not.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// isTimeout reports whether an error was a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
